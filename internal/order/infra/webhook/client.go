package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/dwikikusuma/boutique-storefront/internal/order/app"
	"github.com/dwikikusuma/boutique-storefront/internal/order/domain"
)

const (
	actionAppend = "appendOrder"
	actionFetch  = "getOrders"

	maxErrorBody = 512
)

// Client talks to the spreadsheet webhook that records orders. An empty URL makes every call
// fail with app.ErrNotConfigured.
type Client struct {
	url  string
	http *http.Client
}

var _ app.OrderLog = (*Client)(nil)

func NewClient(webhookURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{url: webhookURL, http: httpClient}
}

type appendRequest struct {
	Action string    `json:"action"`
	Order  wireOrder `json:"order"`
}

type wireOrder struct {
	OrderID     string      `json:"orderId"`
	Name        string      `json:"name"`
	Phone       string      `json:"phone"`
	Location    string      `json:"location"`
	Items       []wireItem  `json:"items"`
	Subtotal    json.Number `json:"subtotal"`
	DeliveryFee json.Number `json:"deliveryFee"`
	Total       json.Number `json:"total"`
	Status      string      `json:"status"`
	Notes       string      `json:"notes,omitempty"`
	CreatedAt   string      `json:"createdAt"`
}

type wireItem struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Quantity int         `json:"quantity"`
	Price    json.Number `json:"price"`
}

func toWire(o domain.Order) wireOrder {
	items := make([]wireItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, wireItem{
			ID:       it.ID,
			Name:     it.Name,
			Quantity: it.Quantity,
			Price:    json.Number(it.Price.String()),
		})
	}

	return wireOrder{
		OrderID:     o.OrderID,
		Name:        o.Name,
		Phone:       o.Phone,
		Location:    o.Location,
		Items:       items,
		Subtotal:    json.Number(o.Subtotal.String()),
		DeliveryFee: json.Number(o.DeliveryFee.String()),
		Total:       json.Number(o.Total.String()),
		Status:      o.Status,
		Notes:       o.Notes,
		CreatedAt:   o.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func (c *Client) Append(ctx context.Context, order domain.Order) error {
	if c.url == "" {
		return app.ErrNotConfigured
	}

	body, err := json.Marshal(appendRequest{Action: actionAppend, Order: toWire(order)})
	if err != nil {
		return fmt.Errorf("encode order: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build append request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("append order: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError("append order", resp)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *Client) Fetch(ctx context.Context) ([]domain.Order, error) {
	if c.url == "" {
		return nil, app.ErrNotConfigured
	}

	u, err := url.Parse(c.url)
	if err != nil {
		return nil, fmt.Errorf("parse webhook url: %w", err)
	}
	q := u.Query()
	q.Set("action", actionFetch)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build fetch request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch orders: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError("fetch orders", resp)
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()

	var payload any
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}

	return decodeRecords(payload), nil
}

// decodeRecords accepts {"orders":[...]} or a bare array; anything else is an empty list.
func decodeRecords(payload any) []domain.Order {
	var records []any
	switch v := payload.(type) {
	case map[string]any:
		records, _ = v["orders"].([]any)
	case []any:
		records = v
	}

	orders := make([]domain.Order, 0, len(records))
	for _, r := range records {
		m, ok := r.(map[string]any)
		if !ok {
			continue
		}
		orders = append(orders, Normalize(m))
	}
	return orders
}

func statusError(op string, resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return fmt.Errorf("%s: unexpected status %d: %s", op, resp.StatusCode, bytes.TrimSpace(b))
}
