package app

import (
	"context"

	"github.com/dwikikusuma/boutique-storefront/internal/checkout/domain"
	"github.com/shopspring/decimal"
)

// CartLine is the checkout's read model of one cart entry.
type CartLine struct {
	ProductID string
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
}

type CartPort interface {
	Lines(ctx context.Context, sessionID string) ([]CartLine, error)
	ClearAndClose(ctx context.Context, sessionID string) error
}

// OrderPlacer records a confirmed checkout without waiting for the record keeper.
// It returns the id of the order it handed off.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, form domain.FormData, quote domain.Quote) (string, error)
}

// Opener hands the chat deep link to the buyer's client.
type Opener interface {
	Open(ctx context.Context, sessionID, url string) error
}

// StoreInfo is the shop identity used for the prefill, the message and the deep link.
type StoreInfo struct {
	Name       string
	Phone      string
	PhonePlain string
	Location   string
	ChatBase   string
}
