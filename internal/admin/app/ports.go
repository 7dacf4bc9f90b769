package app

import (
	"context"
	"errors"
	"io"

	catalog "github.com/dwikikusuma/boutique-storefront/internal/catalog/domain"
	order "github.com/dwikikusuma/boutique-storefront/internal/order/domain"
)

// ErrNotConfigured is returned by image uploaders that have no destination.
var ErrNotConfigured = errors.New("image upload not configured")

type ImageUploader interface {
	Upload(ctx context.Context, filename string, content io.Reader) (string, error)
}

type CatalogSource interface {
	Products(ctx context.Context) ([]catalog.Product, error)
}

// OrderLister never fails; an unavailable log reads as no orders.
type OrderLister interface {
	ListOrders(ctx context.Context) []order.Order
}
