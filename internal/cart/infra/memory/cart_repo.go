package memory

import (
	"context"
	"sync"

	"github.com/dwikikusuma/boutique-storefront/internal/cart/domain"
)

type CartRepo struct {
	mu    sync.RWMutex
	carts map[string]domain.Cart
}

func NewCartRepo() *CartRepo {
	return &CartRepo{carts: make(map[string]domain.Cart)}
}

func (r *CartRepo) Load(ctx context.Context, sessionID string) (domain.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.carts[sessionID].Clone(), nil
}

func (r *CartRepo) Save(ctx context.Context, sessionID string, cart domain.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.carts[sessionID] = cart.Clone()
	return nil
}

func (r *CartRepo) Delete(ctx context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, sessionID)
	return nil
}
