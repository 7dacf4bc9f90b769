package app

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dwikikusuma/boutique-storefront/internal/cart/domain"
	catalog "github.com/dwikikusuma/boutique-storefront/internal/catalog/domain"
)

// Store owns the cart of a single session. All mutations are serialized by mu and written
// through to the repo; a failed write leaves the in-memory cart unchanged.
type Store struct {
	sessionID string
	repo      CartRepo

	mu   sync.Mutex
	cart domain.Cart

	lastUsed atomic.Int64 // unix nanos

	// refs is guarded by Service.mu.
	refs int
}

func newStore(sessionID string, repo CartRepo, cart domain.Cart) *Store {
	st := &Store{
		sessionID: sessionID,
		repo:      repo,
		cart:      cart,
	}
	st.touch(time.Now())
	return st
}

func (s *Store) AddItem(ctx context.Context, p catalog.Product) (domain.Cart, error) {
	return s.mutate(ctx, func(c *domain.Cart) { c.AddItem(p) })
}

func (s *Store) UpdateQuantity(ctx context.Context, productID string, quantity int) (domain.Cart, error) {
	return s.mutate(ctx, func(c *domain.Cart) { c.UpdateQuantity(productID, quantity) })
}

func (s *Store) RemoveItem(ctx context.Context, productID string) (domain.Cart, error) {
	return s.mutate(ctx, func(c *domain.Cart) { c.RemoveItem(productID) })
}

func (s *Store) Clear(ctx context.Context) (domain.Cart, error) {
	return s.mutate(ctx, func(c *domain.Cart) { c.Clear() })
}

func (s *Store) Open(ctx context.Context) (domain.Cart, error) {
	return s.mutate(ctx, func(c *domain.Cart) { c.Open() })
}

func (s *Store) Close(ctx context.Context) (domain.Cart, error) {
	return s.mutate(ctx, func(c *domain.Cart) { c.Close() })
}

// ClearAndClose empties the cart and hides it in one write, as done after a confirmed checkout.
func (s *Store) ClearAndClose(ctx context.Context) (domain.Cart, error) {
	return s.mutate(ctx, func(c *domain.Cart) {
		c.Clear()
		c.Close()
	})
}

// Snapshot returns a copy of the current cart.
func (s *Store) Snapshot() domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch(time.Now())
	return s.cart.Clone()
}

func (s *Store) mutate(ctx context.Context, fn func(c *domain.Cart)) (domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.cart.Clone()
	fn(&next)

	if err := s.persist(ctx, next); err != nil {
		return s.cart.Clone(), err
	}

	s.cart = next
	s.touch(time.Now())
	return next.Clone(), nil
}

// persist drops the row of an empty closed cart; it loads back as the zero cart.
func (s *Store) persist(ctx context.Context, next domain.Cart) error {
	if next.IsEmpty() && !next.IsOpen {
		if err := s.repo.Delete(ctx, s.sessionID); err != nil {
			return fmt.Errorf("delete cart: %w", err)
		}
		return nil
	}
	if err := s.repo.Save(ctx, s.sessionID, next); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

func (s *Store) touch(now time.Time) {
	s.lastUsed.Store(now.UnixNano())
}

func (s *Store) idleSince(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, s.lastUsed.Load()))
}
