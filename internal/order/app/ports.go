package app

import (
	"context"

	"github.com/dwikikusuma/boutique-storefront/internal/order/domain"
)

// OrderLog is the external record keeper of submitted orders.
type OrderLog interface {
	Append(ctx context.Context, order domain.Order) error
	Fetch(ctx context.Context) ([]domain.Order, error)
}
