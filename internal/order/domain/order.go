package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const StatusNew = "new"

// Order is the write-once record handed to the order log. Items are snapshots, so later
// catalog edits never change a historical order.
type Order struct {
	OrderID     string          `json:"orderId"`
	Name        string          `json:"name"`
	Phone       string          `json:"phone"`
	Location    string          `json:"location"`
	Items       []OrderItem     `json:"items"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	DeliveryFee decimal.Decimal `json:"deliveryFee"`
	Total       decimal.Decimal `json:"total"`
	Status      string          `json:"status"`
	Notes       string          `json:"notes,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

type OrderItem struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type CreateOrderRequest struct {
	Name        string
	Phone       string
	Location    string
	Notes       string
	DeliveryFee decimal.Decimal
	Items       []OrderItem
}
