package app

import (
	"context"

	"github.com/dwikikusuma/boutique-storefront/internal/cart/domain"
)

// CartRepo persists one cart per buyer session. Load returns an empty cart when the session
// has nothing stored.
type CartRepo interface {
	Load(ctx context.Context, sessionID string) (domain.Cart, error)
	Save(ctx context.Context, sessionID string, cart domain.Cart) error
	Delete(ctx context.Context, sessionID string) error
}
