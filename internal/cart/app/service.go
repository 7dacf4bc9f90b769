package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dwikikusuma/boutique-storefront/internal/cart/domain"
	catalog "github.com/dwikikusuma/boutique-storefront/internal/catalog/domain"
)

var ErrInvalidSession = errors.New("invalid session")

const defaultIdleTTL = 30 * time.Minute

// Service hands out the single Store of each session. Stores are hydrated from the repo on
// first use and dropped from memory once idle for idleTTL and not pinned by an in-flight call;
// the repo keeps the durable copy.
type Service struct {
	repo    CartRepo
	log     *slog.Logger
	idleTTL time.Duration

	mu     sync.Mutex
	stores map[string]*Store
}

func NewService(repo CartRepo, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		repo:    repo,
		log:     log,
		idleTTL: defaultIdleTTL,
		stores:  make(map[string]*Store),
	}
}

// Store returns the owned store for sessionID, loading it from the repo if needed. Returning a
// cached store counts as use, so it is not swept while callers keep working with it.
func (s *Service) Store(ctx context.Context, sessionID string) (*Store, error) {
	return s.lookup(ctx, sessionID, false)
}

// acquire is Store plus a pin that keeps the store cached until release is called.
func (s *Service) acquire(ctx context.Context, sessionID string) (*Store, func(), error) {
	st, err := s.lookup(ctx, sessionID, true)
	if err != nil {
		return nil, nil, err
	}
	release := func() {
		s.mu.Lock()
		st.refs--
		s.mu.Unlock()
	}
	return st, release, nil
}

func (s *Service) lookup(ctx context.Context, sessionID string, pin bool) (*Store, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, ErrInvalidSession
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.stores[sessionID]
	if ok {
		st.touch(time.Now())
	} else {
		cart, err := s.repo.Load(ctx, sessionID)
		if err != nil {
			return nil, fmt.Errorf("load cart: %w", err)
		}
		st = newStore(sessionID, s.repo, cart)
		s.stores[sessionID] = st
	}
	if pin {
		st.refs++
	}
	s.sweepLocked(time.Now())
	return st, nil
}

func (s *Service) GetCart(ctx context.Context, sessionID string) (domain.Cart, error) {
	st, release, err := s.acquire(ctx, sessionID)
	if err != nil {
		return domain.Cart{}, err
	}
	defer release()
	return st.Snapshot(), nil
}

func (s *Service) AddItem(ctx context.Context, sessionID string, p catalog.Product) (domain.Cart, error) {
	return s.mutate(ctx, sessionID, func(st *Store) (domain.Cart, error) { return st.AddItem(ctx, p) })
}

func (s *Service) UpdateQuantity(ctx context.Context, sessionID, productID string, quantity int) (domain.Cart, error) {
	return s.mutate(ctx, sessionID, func(st *Store) (domain.Cart, error) { return st.UpdateQuantity(ctx, productID, quantity) })
}

func (s *Service) RemoveItem(ctx context.Context, sessionID, productID string) (domain.Cart, error) {
	return s.mutate(ctx, sessionID, func(st *Store) (domain.Cart, error) { return st.RemoveItem(ctx, productID) })
}

func (s *Service) ClearCart(ctx context.Context, sessionID string) (domain.Cart, error) {
	return s.mutate(ctx, sessionID, func(st *Store) (domain.Cart, error) { return st.Clear(ctx) })
}

func (s *Service) OpenCart(ctx context.Context, sessionID string) (domain.Cart, error) {
	return s.mutate(ctx, sessionID, func(st *Store) (domain.Cart, error) { return st.Open(ctx) })
}

func (s *Service) CloseCart(ctx context.Context, sessionID string) (domain.Cart, error) {
	return s.mutate(ctx, sessionID, func(st *Store) (domain.Cart, error) { return st.Close(ctx) })
}

func (s *Service) ClearAndClose(ctx context.Context, sessionID string) (domain.Cart, error) {
	return s.mutate(ctx, sessionID, func(st *Store) (domain.Cart, error) { return st.ClearAndClose(ctx) })
}

func (s *Service) mutate(ctx context.Context, sessionID string, fn func(st *Store) (domain.Cart, error)) (domain.Cart, error) {
	st, release, err := s.acquire(ctx, sessionID)
	if err != nil {
		return domain.Cart{}, err
	}
	defer release()
	return fn(st)
}

// Close releases every cached store. The service must not be used afterwards.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log.Info("cart service closing", slog.Int("stores", len(s.stores)))
	s.stores = make(map[string]*Store)
}

func (s *Service) sweepLocked(now time.Time) {
	for id, st := range s.stores {
		if st.refs == 0 && st.idleSince(now) > s.idleTTL {
			delete(s.stores, id)
		}
	}
}
