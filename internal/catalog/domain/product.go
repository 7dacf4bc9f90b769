package domain

import "github.com/shopspring/decimal"

type Category string

const (
	CategoryJewelry Category = "jewelry"
	CategoryBags    Category = "bags"
	CategoryMakeup  Category = "makeup"

	// CategoryAll is the catalog filter that matches every product.
	CategoryAll Category = "all"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryJewelry, CategoryBags, CategoryMakeup:
		return true
	}
	return false
}

type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    Category        `json:"category"`
	Subcategory string          `json:"subcategory"`
	Images      []string        `json:"images"`
	Stock       int             `json:"stock"`
	Featured    bool            `json:"featured"`
	Tags        []string        `json:"tags"`
}

// PrimaryImage returns the first image URL, or "" when the product has none.
func (p Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

type CategoryInfo struct {
	ID          Category `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Image       string   `json:"image"`
}
