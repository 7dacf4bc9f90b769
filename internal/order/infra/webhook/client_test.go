package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dwikikusuma/boutique-storefront/internal/order/app"
	"github.com/dwikikusuma/boutique-storefront/internal/order/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleOrder() domain.Order {
	return domain.Order{
		OrderID:  "1740823200000",
		Name:     "Amina",
		Phone:    "+254712345678",
		Location: "Eastleigh 1st Ave",
		Items: []domain.OrderItem{
			{ID: "JW-001", Name: "Gold Hoops", Quantity: 2, Price: decimal.NewFromInt(1500)},
		},
		Subtotal:    decimal.NewFromInt(3000),
		DeliveryFee: decimal.NewFromInt(300),
		Total:       decimal.NewFromInt(3300),
		Status:      domain.StatusNew,
		CreatedAt:   time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestAppendPostsOrder(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client())
	require.NoError(t, c.Append(context.Background(), sampleOrder()))

	assert.Equal(t, "appendOrder", got["action"])
	order := got["order"].(map[string]any)
	assert.Equal(t, "1740823200000", order["orderId"])
	assert.Equal(t, float64(3300), order["total"])
	assert.Equal(t, float64(300), order["deliveryFee"])
	assert.Equal(t, "new", order["status"])
	assert.Equal(t, "2025-03-01T10:00:00Z", order["createdAt"])
	items := order["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, float64(1500), items[0].(map[string]any)["price"])
}

func TestAppendReportsFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	err := NewClient(srv.URL, srv.Client()).Append(context.Background(), sampleOrder())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestNotConfigured(t *testing.T) {
	c := NewClient("", nil)

	assert.ErrorIs(t, c.Append(context.Background(), sampleOrder()), app.ErrNotConfigured)
	_, err := c.Fetch(context.Background())
	assert.ErrorIs(t, err, app.ErrNotConfigured)
}

func TestFetchNormalizesRecords(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "getOrders", r.URL.Query().Get("action"))
		assert.Equal(t, "abc", r.URL.Query().Get("key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"orders":[
			{"OrderID":"1","CustomerName":"Amina","Phone":"+254712345678","Location":"Eastleigh","Items":"Gold Hoops x2","Total":"3,300"},
			{"orderId":"2","name":"Zara","items":[{"name":"Satin Scarf","quantity":1,"price":2500}],"total":2500},
			"junk"
		]}`)
	}))
	defer srv.Close()

	orders, err := NewClient(srv.URL+"?key=abc", srv.Client()).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 2)

	assert.Equal(t, "1", orders[0].OrderID)
	assert.Equal(t, "Amina", orders[0].Name)
	assert.True(t, orders[0].Total.Equal(decimal.NewFromInt(3300)))
	require.Len(t, orders[0].Items, 1)
	assert.Equal(t, "Gold Hoops x2", orders[0].Items[0].Name)

	assert.Equal(t, "Zara", orders[1].Name)
	require.Len(t, orders[1].Items, 1)
	assert.Equal(t, 1, orders[1].Items[0].Quantity)
	assert.True(t, orders[1].Items[0].Price.Equal(decimal.NewFromInt(2500)))
}

func TestFetchErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"bad status", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusInternalServerError) }},
		{"bad json", func(w http.ResponseWriter, r *http.Request) { _, _ = io.WriteString(w, "<html>") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := NewClient(srv.URL, srv.Client()).Fetch(context.Background())
			assert.Error(t, err)
		})
	}
}

func TestFetchAcceptsBareArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"orderId":"9"}]`)
	}))
	defer srv.Close()

	orders, err := NewClient(srv.URL, srv.Client()).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "9", orders[0].OrderID)
}
