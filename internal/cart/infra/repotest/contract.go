// Package repotest holds the behaviour every cart repository must share.
package repotest

import (
	"context"
	"testing"

	"github.com/dwikikusuma/boutique-storefront/internal/cart/app"
	"github.com/dwikikusuma/boutique-storefront/internal/cart/domain"
	catalog "github.com/dwikikusuma/boutique-storefront/internal/catalog/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Run(t *testing.T, repo app.CartRepo) {
	t.Helper()
	ctx := context.Background()

	t.Run("unknown session loads empty", func(t *testing.T) {
		cart, err := repo.Load(ctx, uuid.NewString())
		require.NoError(t, err)
		assert.True(t, cart.IsEmpty())
		assert.False(t, cart.IsOpen)
	})

	t.Run("save then load keeps order, quantities and prices", func(t *testing.T) {
		sid := uuid.NewString()
		cart := domain.Cart{IsOpen: true}
		cart.AddItem(catalog.Product{
			ID: "BG-003", Name: "Satin Scarf", Price: decimal.RequireFromString("2500"),
			Category: catalog.CategoryBags, Images: []string{"https://img/1.jpg"}, Tags: []string{"satin"},
		})
		cart.AddItem(catalog.Product{ID: "JW-001", Name: "Necklace", Price: decimal.RequireFromString("3499.99"), Category: catalog.CategoryJewelry})
		cart.AddItem(catalog.Product{ID: "BG-003", Name: "Satin Scarf", Price: decimal.RequireFromString("2500"), Category: catalog.CategoryBags})

		require.NoError(t, repo.Save(ctx, sid, cart))

		got, err := repo.Load(ctx, sid)
		require.NoError(t, err)
		require.Len(t, got.Items, 2)
		assert.True(t, got.IsOpen)
		assert.Equal(t, "BG-003", got.Items[0].ID)
		assert.Equal(t, 2, got.Items[0].Quantity)
		assert.Equal(t, []string{"https://img/1.jpg"}, got.Items[0].Images)
		assert.Equal(t, "JW-001", got.Items[1].ID)
		assert.True(t, cart.TotalPrice().Equal(got.TotalPrice()))
	})

	t.Run("save overwrites previous state", func(t *testing.T) {
		sid := uuid.NewString()
		cart := domain.Cart{}
		cart.AddItem(catalog.Product{ID: "a", Price: decimal.NewFromInt(1), Category: catalog.CategoryMakeup})
		require.NoError(t, repo.Save(ctx, sid, cart))

		cart.Clear()
		require.NoError(t, repo.Save(ctx, sid, cart))

		got, err := repo.Load(ctx, sid)
		require.NoError(t, err)
		assert.True(t, got.IsEmpty())
	})

	t.Run("delete removes the cart", func(t *testing.T) {
		sid := uuid.NewString()
		cart := domain.Cart{IsOpen: true}
		cart.AddItem(catalog.Product{ID: "a", Price: decimal.NewFromInt(1), Category: catalog.CategoryMakeup})
		require.NoError(t, repo.Save(ctx, sid, cart))

		require.NoError(t, repo.Delete(ctx, sid))

		got, err := repo.Load(ctx, sid)
		require.NoError(t, err)
		assert.True(t, got.IsEmpty())
		assert.False(t, got.IsOpen)
	})
}
