package app

import (
	"context"

	"github.com/dwikikusuma/boutique-storefront/internal/catalog/domain"
)

type ProductRepo interface {
	List(ctx context.Context) ([]domain.Product, error)
	Categories(ctx context.Context) ([]domain.CategoryInfo, error)
}
