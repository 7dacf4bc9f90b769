package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	adminapp "github.com/dwikikusuma/boutique-storefront/internal/admin/app"
	"github.com/dwikikusuma/boutique-storefront/internal/admin/infra/cloudinary"
	cartapp "github.com/dwikikusuma/boutique-storefront/internal/cart/app"
	"github.com/dwikikusuma/boutique-storefront/internal/cart/infra/memory"
	catalogapp "github.com/dwikikusuma/boutique-storefront/internal/catalog/app"
	"github.com/dwikikusuma/boutique-storefront/internal/catalog/infra/static"
	checkoutapp "github.com/dwikikusuma/boutique-storefront/internal/checkout/app"
	"github.com/dwikikusuma/boutique-storefront/internal/checkout/infra/adapter"
	orderapp "github.com/dwikikusuma/boutique-storefront/internal/order/app"
	"github.com/dwikikusuma/boutique-storefront/internal/order/infra/webhook"
	"github.com/dwikikusuma/boutique-storefront/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sheet struct {
	mu       sync.Mutex
	appended []map[string]any
}

func (s *sheet) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		_, _ = io.WriteString(w, `{"orders":[{"OrderID":"1","CustomerName":"Amina","Total":5300}]}`)
		return
	}
	var body map[string]any
	_ = json.NewDecoder(r.Body).Decode(&body)
	s.mu.Lock()
	s.appended = append(s.appended, body)
	s.mu.Unlock()
}

type harness struct {
	srv        *httptest.Server
	client     *http.Client
	sheet      *sheet
	dispatcher *orderapp.Dispatcher
}

func newHarness(t *testing.T, ready ...ReadyFunc) *harness {
	t.Helper()
	log := logger.Discard()

	sh := &sheet{}
	sheetSrv := httptest.NewServer(sh)
	t.Cleanup(sheetSrv.Close)

	repo, err := static.Load("")
	require.NoError(t, err)
	catalog := catalogapp.NewService(repo)

	carts := cartapp.NewService(memory.NewCartRepo(), log)

	logClient := webhook.NewClient(sheetSrv.URL, sheetSrv.Client())
	orders := orderapp.NewService(logClient, log)
	dispatcher := orderapp.NewDispatcher(logClient, log, time.Second)

	checkout := checkoutapp.NewService(
		adapter.NewCartServicePort(carts),
		adapter.NewOrderDispatcher(orders, dispatcher),
		adapter.NewLogOpener(log),
		checkoutapp.StoreInfo{Name: "Hafsa's Boutique", Phone: "+254", PhonePlain: "254700000000", Location: "Eastleigh", ChatBase: "https://wa.me"},
		log,
	)

	admin := adminapp.NewService(catalog, cloudinary.NewClient("", "", nil), orders, log)

	srv := httptest.NewServer(NewServer(Deps{
		Catalog:  catalog,
		Carts:    carts,
		Checkout: checkout,
		Admin:    admin,
		Auth:     adminapp.NewAuth("admin", "hafsa2025"),
		Log:      log,
		Service:  "storefront-test",
		Ready:    ready,
	}).Handler())
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{Jar: jar, Transport: srv.Client().Transport}

	return &harness{srv: srv, client: client, sheet: sh, dispatcher: dispatcher}
}

func (h *harness) do(t *testing.T, method, path string, body any) (*http.Response, []byte) {
	t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, h.srv.URL+path, rd)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := h.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, b
}

func TestHealthAndReadiness(t *testing.T) {
	h := newHarness(t)
	resp, _ := h.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = h.do(t, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	down := newHarness(t, func(context.Context) error { return errors.New("redis down") })
	resp, _ = down.do(t, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestCatalogRoutes(t *testing.T) {
	h := newHarness(t)

	resp, body := h.do(t, http.MethodGet, "/api/products?category=bags", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list struct {
		Products []struct {
			ID string `json:"id"`
		} `json:"products"`
	}
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list.Products, 3)
	assert.Equal(t, "BG-001", list.Products[0].ID)

	resp, _ = h.do(t, http.MethodGet, "/api/products", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = h.do(t, http.MethodGet, "/api/products?category=shoes", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "INVALID_ARGUMENT")

	resp, _ = h.do(t, http.MethodGet, "/api/products/BG-003", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = h.do(t, http.MethodGet, "/api/products/NOPE", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = h.do(t, http.MethodGet, "/api/categories", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"jewelry"`)
}

type cartBody struct {
	Items []struct {
		ID        string          `json:"id"`
		Quantity  int             `json:"quantity"`
		LineTotal decimal.Decimal `json:"lineTotal"`
	} `json:"items"`
	IsOpen      bool            `json:"isOpen"`
	TotalItems  int             `json:"totalItems"`
	TotalPrice  decimal.Decimal `json:"totalPrice"`
	DeliveryFee decimal.Decimal `json:"deliveryFee"`
}

func decodeCart(t *testing.T, b []byte) cartBody {
	t.Helper()
	var c cartBody
	require.NoError(t, json.Unmarshal(b, &c))
	return c
}

func TestCartRoutes(t *testing.T) {
	h := newHarness(t)

	resp, body := h.do(t, http.MethodGet, "/api/cart", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decodeCart(t, body).Items)

	for i := 0; i < 2; i++ {
		resp, body = h.do(t, http.MethodPost, "/api/cart/items", map[string]string{"productId": "BG-003"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	c := decodeCart(t, body)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 2, c.Items[0].Quantity)
	assert.True(t, c.TotalPrice.Equal(decimal.NewFromInt(5000)))
	assert.True(t, c.DeliveryFee.Equal(decimal.NewFromInt(300)))
	assert.False(t, c.IsOpen)

	_, body = h.do(t, http.MethodPost, "/api/cart/items", map[string]string{"productId": "JW-001"})
	assert.Equal(t, 3, decodeCart(t, body).TotalItems)

	resp, body = h.do(t, http.MethodPut, "/api/cart/items/BG-003", map[string]int{"quantity": 5})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	c = decodeCart(t, body)
	assert.Equal(t, 6, c.TotalItems)
	assert.True(t, c.DeliveryFee.IsZero())

	_, body = h.do(t, http.MethodPut, "/api/cart/items/BG-003", map[string]int{"quantity": 0})
	c = decodeCart(t, body)
	require.Len(t, c.Items, 1)
	assert.Equal(t, "JW-001", c.Items[0].ID)

	_, body = h.do(t, http.MethodPost, "/api/cart/open", nil)
	assert.True(t, decodeCart(t, body).IsOpen)
	_, body = h.do(t, http.MethodPost, "/api/cart/close", nil)
	assert.False(t, decodeCart(t, body).IsOpen)

	_, body = h.do(t, http.MethodDelete, "/api/cart/items/JW-001", nil)
	assert.Empty(t, decodeCart(t, body).Items)

	resp, _ = h.do(t, http.MethodPost, "/api/cart/items", map[string]string{"productId": "NOPE"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = h.do(t, http.MethodPost, "/api/cart/items", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp, _ = h.do(t, http.MethodPut, "/api/cart/items/JW-001", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCartIsPerSession(t *testing.T) {
	a := newHarness(t)
	_, _ = a.do(t, http.MethodPost, "/api/cart/items", map[string]string{"productId": "BG-003"})

	other := &http.Client{}
	resp, err := other.Get(a.srv.URL + "/api/cart")
	require.NoError(t, err)
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	assert.Empty(t, decodeCart(t, b).Items)
}

func TestCheckoutRoutes(t *testing.T) {
	h := newHarness(t)

	_, _ = h.do(t, http.MethodPost, "/api/cart/items", map[string]string{"productId": "BG-003"})
	_, _ = h.do(t, http.MethodPost, "/api/cart/items", map[string]string{"productId": "BG-003"})

	resp, _ := h.do(t, http.MethodPost, "/api/checkout/confirm", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body := h.do(t, http.MethodPost, "/api/checkout", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Contains(t, string(body), `"step":"form"`)
	assert.Contains(t, string(body), `"phone":"+254"`)

	resp, _ = h.do(t, http.MethodPost, "/api/checkout/confirm", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, body = h.do(t, http.MethodPost, "/api/checkout/preview", map[string]string{"name": "A", "phone": "0712", "location": "Eastleigh"})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	var verr errorBody
	require.NoError(t, json.Unmarshal(body, &verr))
	assert.Equal(t, "validation failed", verr.Error)
	assert.Equal(t, "Name must be at least 2 characters", verr.Fields["name"])
	assert.Equal(t, "Enter valid Kenyan phone (+254...)", verr.Fields["phone"])
	assert.NotContains(t, verr.Fields, "location")

	resp, body = h.do(t, http.MethodPost, "/api/checkout/preview", map[string]string{
		"name": "Amina Khan", "phone": "254712345678", "location": "123 Market St, Eastleigh",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var view checkoutapp.View
	require.NoError(t, json.Unmarshal(body, &view))
	assert.Equal(t, "preview", string(view.Step))
	assert.Contains(t, view.Message, "Satin Scarf x2 - Ksh 5,000")
	assert.Contains(t, view.Message, "*TOTAL: Ksh 5,300*")

	resp, body = h.do(t, http.MethodPost, "/api/checkout/confirm", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var receipt checkoutapp.Receipt
	require.NoError(t, json.Unmarshal(body, &receipt))
	assert.True(t, strings.HasPrefix(receipt.ChatURL, "https://wa.me/254700000000?text="))
	assert.NotEmpty(t, receipt.OrderID)

	_, body = h.do(t, http.MethodGet, "/api/cart", nil)
	assert.Empty(t, decodeCart(t, body).Items)

	require.NoError(t, h.dispatcher.Wait(context.Background()))
	h.sheet.mu.Lock()
	defer h.sheet.mu.Unlock()
	require.Len(t, h.sheet.appended, 1)
	order := h.sheet.appended[0]["order"].(map[string]any)
	assert.Equal(t, float64(5300), order["total"])
	assert.Equal(t, receipt.OrderID, order["orderId"])
}

func TestCheckoutBackRoute(t *testing.T) {
	h := newHarness(t)

	_, _ = h.do(t, http.MethodPost, "/api/checkout", nil)
	resp, body := h.do(t, http.MethodPost, "/api/checkout/back", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"step":"closed"`)

	resp, _ = h.do(t, http.MethodGet, "/api/checkout", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func login(t *testing.T, h *harness) {
	t.Helper()
	resp, _ := h.do(t, http.MethodPost, "/api/admin/login", map[string]string{"username": "admin", "password": "hafsa2025"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAdminAuth(t *testing.T) {
	h := newHarness(t)

	resp, _ := h.do(t, http.MethodGet, "/api/admin/stats", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body := h.do(t, http.MethodPost, "/api/admin/login", map[string]string{"username": "admin", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, string(body), "invalid credentials")

	login(t, h)
	resp, _ = h.do(t, http.MethodGet, "/api/admin/stats", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = h.do(t, http.MethodPost, "/api/admin/logout", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = h.do(t, http.MethodGet, "/api/admin/stats", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAdminBearerToken(t *testing.T) {
	h := newHarness(t)
	resp, body := h.do(t, http.MethodPost, "/api/admin/login", map[string]string{"username": "admin", "password": "hafsa2025"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var lr loginResponse
	require.NoError(t, json.Unmarshal(body, &lr))

	req, _ := http.NewRequest(http.MethodGet, h.srv.URL+"/api/admin/products", nil)
	req.Header.Set("Authorization", "Bearer "+lr.Token)
	r2, err := h.srv.Client().Do(req)
	require.NoError(t, err)
	defer r2.Body.Close()
	assert.Equal(t, http.StatusOK, r2.StatusCode)
}

func TestAdminProducts(t *testing.T) {
	h := newHarness(t)
	login(t, h)

	resp, body := h.do(t, http.MethodGet, "/api/admin/products?q=scarf", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "BG-003")
	assert.NotContains(t, string(body), "JW-001")

	resp, body = h.do(t, http.MethodPost, "/api/admin/products", map[string]any{
		"name": "Silk Wrap", "price": 1200, "category": "bags", "stock": 2, "imageUrl": "https://img.example/w.jpg",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(body, &created))
	assert.True(t, strings.HasPrefix(created.ID, "SILK-WRAP-"))

	resp, _ = h.do(t, http.MethodPost, "/api/admin/products", map[string]any{"name": "", "category": "bags"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = h.do(t, http.MethodPut, "/api/admin/products/BG-003", map[string]any{
		"name": "Satin Scarf", "price": "2700", "category": "bags", "stock": 1,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = h.do(t, http.MethodPut, "/api/admin/products/NOPE", map[string]any{"name": "x", "category": "bags"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = h.do(t, http.MethodGet, "/api/admin/stats", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"totalProducts":9`)

	resp, _ = h.do(t, http.MethodDelete, "/api/admin/products/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = h.do(t, http.MethodGet, "/api/admin/products/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = h.do(t, http.MethodGet, "/api/products/BG-003", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"price":"2500"`)
}

func TestAdminUploadNotConfigured(t *testing.T) {
	h := newHarness(t)
	login(t, h)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("name", "Clutch"))
	require.NoError(t, mw.WriteField("category", "bags"))
	require.NoError(t, mw.WriteField("price", "3000"))
	fw, err := mw.CreateFormFile("image", "clutch.jpg")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("pixels"))
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, h.srv.URL+"/api/admin/products", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := h.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	_, body := h.do(t, http.MethodGet, "/api/admin/products?q=clutch", nil)
	assert.NotContains(t, string(body), "CLUTCH-")
}

func TestAdminOrdersAndOverview(t *testing.T) {
	h := newHarness(t)
	login(t, h)

	resp, body := h.do(t, http.MethodGet, "/api/admin/orders", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"orderId":"1"`)
	assert.Contains(t, string(body), `"name":"Amina"`)

	resp, body = h.do(t, http.MethodGet, "/api/admin/overview", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"totalProducts":8`)
	assert.Contains(t, string(body), `"orders":[`)
}
