package adapter

import (
	"context"

	cartapp "github.com/dwikikusuma/boutique-storefront/internal/cart/app"
	checkoutapp "github.com/dwikikusuma/boutique-storefront/internal/checkout/app"
)

type CartServicePort struct {
	svc *cartapp.Service
}

var _ checkoutapp.CartPort = (*CartServicePort)(nil)

func NewCartServicePort(svc *cartapp.Service) *CartServicePort {
	return &CartServicePort{svc: svc}
}

func (p *CartServicePort) Lines(ctx context.Context, sessionID string) ([]checkoutapp.CartLine, error) {
	cart, err := p.svc.GetCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	lines := make([]checkoutapp.CartLine, 0, len(cart.Items))
	for _, it := range cart.Items {
		lines = append(lines, checkoutapp.CartLine{
			ProductID: it.ID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.Price,
		})
	}
	return lines, nil
}

func (p *CartServicePort) ClearAndClose(ctx context.Context, sessionID string) error {
	_, err := p.svc.ClearAndClose(ctx, sessionID)
	return err
}
