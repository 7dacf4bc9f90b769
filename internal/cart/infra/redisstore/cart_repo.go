package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dwikikusuma/boutique-storefront/internal/cart/domain"
	"github.com/go-redis/redis/v8"
)

// CartRepo stores each cart as one JSON value under <namespace>:cart:<session>. Every save
// refreshes the TTL, so an active buyer's cart survives reloads while abandoned carts expire.
type CartRepo struct {
	client    *redis.Client
	namespace string
	ttl       time.Duration
}

func NewCartRepo(client *redis.Client, namespace string, ttl time.Duration) *CartRepo {
	if namespace == "" {
		namespace = "storefront"
	}
	return &CartRepo{client: client, namespace: namespace, ttl: ttl}
}

func (r *CartRepo) key(sessionID string) string {
	return fmt.Sprintf("%s:cart:%s", r.namespace, sessionID)
}

func (r *CartRepo) Load(ctx context.Context, sessionID string) (domain.Cart, error) {
	raw, err := r.client.Get(ctx, r.key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Cart{}, nil
	}
	if err != nil {
		return domain.Cart{}, err
	}

	var cart domain.Cart
	if err := json.Unmarshal(raw, &cart); err != nil {
		return domain.Cart{}, fmt.Errorf("decode cart %s: %w", sessionID, err)
	}
	return cart, nil
}

func (r *CartRepo) Save(ctx context.Context, sessionID string, cart domain.Cart) error {
	raw, err := json.Marshal(cart)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key(sessionID), raw, r.ttl).Err()
}

func (r *CartRepo) Delete(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, r.key(sessionID)).Err()
}
