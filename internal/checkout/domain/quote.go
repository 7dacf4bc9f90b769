package domain

import (
	"github.com/shopspring/decimal"
)

var (
	FreeDeliveryThreshold = decimal.NewFromInt(10000)
	StandardDeliveryFee   = decimal.NewFromInt(300)
)

// DeliveryFee is free from the threshold upwards, inclusive.
func DeliveryFee(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(FreeDeliveryThreshold) {
		return decimal.Zero
	}
	return StandardDeliveryFee
}

type QuoteLine struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

type Quote struct {
	Lines       []QuoteLine     `json:"lines"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	DeliveryFee decimal.Decimal `json:"deliveryFee"`
	Total       decimal.Decimal `json:"total"`
}

// NewQuote prices lines in order. Line totals are recomputed from unit price and quantity.
func NewQuote(lines []QuoteLine) Quote {
	out := make([]QuoteLine, len(lines))
	subtotal := decimal.Zero

	for i, l := range lines {
		l.LineTotal = l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
		out[i] = l
		subtotal = subtotal.Add(l.LineTotal)
	}

	fee := DeliveryFee(subtotal)
	return Quote{
		Lines:       out,
		Subtotal:    subtotal,
		DeliveryFee: fee,
		Total:       subtotal.Add(fee),
	}
}
