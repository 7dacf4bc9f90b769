package domain

import (
	"io"
	"time"

	catalog "github.com/dwikikusuma/boutique-storefront/internal/catalog/domain"
	order "github.com/dwikikusuma/boutique-storefront/internal/order/domain"
	"github.com/shopspring/decimal"
)

// LowStockThreshold marks products with this many items or fewer.
const LowStockThreshold = 3

// ProductInput is an admin create or update. An empty ID means create.
type ProductInput struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal
	Category    catalog.Category
	Subcategory string
	ImageURL    string
	Stock       int
	Featured    bool
	Tags        []string
}

// Image is an uploaded product photo. It replaces ProductInput.ImageURL when present.
type Image struct {
	Filename string
	Content  io.Reader
}

type Stats struct {
	TotalProducts int             `json:"totalProducts"`
	LowStock      int             `json:"lowStock"`
	TotalValue    decimal.Decimal `json:"totalValue"`
	Featured      int             `json:"featured"`
}

// ComputeStats summarises a product list.
func ComputeStats(products []catalog.Product) Stats {
	s := Stats{TotalProducts: len(products), TotalValue: decimal.Zero}
	for _, p := range products {
		if p.Stock <= LowStockThreshold {
			s.LowStock++
		}
		if p.Featured {
			s.Featured++
		}
		s.TotalValue = s.TotalValue.Add(p.Price.Mul(decimal.NewFromInt(int64(p.Stock))))
	}
	return s
}

type Overview struct {
	Stats    Stats             `json:"stats"`
	Featured []catalog.Product `json:"featured"`
	Orders   []order.Order     `json:"orders"`
}

type Session struct {
	Token     string
	Username  string
	ExpiresAt time.Time
}
