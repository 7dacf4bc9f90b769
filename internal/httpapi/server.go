package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	adminapp "github.com/dwikikusuma/boutique-storefront/internal/admin/app"
	cartapp "github.com/dwikikusuma/boutique-storefront/internal/cart/app"
	catalogapp "github.com/dwikikusuma/boutique-storefront/internal/catalog/app"
	checkoutapp "github.com/dwikikusuma/boutique-storefront/internal/checkout/app"
	"github.com/dwikikusuma/boutique-storefront/pkg/telemetry"
)

// ReadyFunc reports whether a backing store is reachable.
type ReadyFunc func(ctx context.Context) error

type Deps struct {
	Catalog  *catalogapp.Service
	Carts    *cartapp.Service
	Checkout *checkoutapp.Service
	Admin    *adminapp.Service
	Auth     *adminapp.Auth
	Log      *slog.Logger

	Service      string
	SecureCookie bool
	Ready        []ReadyFunc
}

type Server struct {
	catalog  *catalogapp.Service
	carts    *cartapp.Service
	checkout *checkoutapp.Service
	admin    *adminapp.Service
	auth     *adminapp.Auth
	log      *slog.Logger

	service string
	secure  bool
	ready   []ReadyFunc
}

func NewServer(d Deps) *Server {
	log := d.Log
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		catalog:  d.Catalog,
		carts:    d.Carts,
		checkout: d.Checkout,
		admin:    d.Admin,
		auth:     d.Auth,
		log:      log,
		service:  d.Service,
		secure:   d.SecureCookie,
		ready:    d.Ready,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.HandleFunc("GET /readyz", s.handleReady)

	api := http.NewServeMux()

	api.HandleFunc("GET /api/categories", s.handleCategories)
	api.HandleFunc("GET /api/products", s.handleProducts)
	api.HandleFunc("GET /api/products/{id}", s.handleProduct)

	api.HandleFunc("GET /api/cart", s.handleGetCart)
	api.HandleFunc("DELETE /api/cart", s.handleClearCart)
	api.HandleFunc("POST /api/cart/items", s.handleAddItem)
	api.HandleFunc("PUT /api/cart/items/{id}", s.handleUpdateQuantity)
	api.HandleFunc("DELETE /api/cart/items/{id}", s.handleRemoveItem)
	api.HandleFunc("POST /api/cart/open", s.handleOpenCart)
	api.HandleFunc("POST /api/cart/close", s.handleCloseCart)

	api.HandleFunc("POST /api/checkout", s.handleBeginCheckout)
	api.HandleFunc("GET /api/checkout", s.handleCheckoutState)
	api.HandleFunc("POST /api/checkout/preview", s.handlePreview)
	api.HandleFunc("POST /api/checkout/back", s.handleBack)
	api.HandleFunc("POST /api/checkout/confirm", s.handleConfirm)

	mux.Handle("/api/", withSession(s.secure, api))

	mux.HandleFunc("POST /api/admin/login", s.handleLogin)
	mux.HandleFunc("POST /api/admin/logout", s.handleLogout)
	mux.Handle("GET /api/admin/products", s.requireAdmin(s.handleAdminList))
	mux.Handle("POST /api/admin/products", s.requireAdmin(s.handleAdminCreate))
	mux.Handle("GET /api/admin/products/{id}", s.requireAdmin(s.handleAdminGet))
	mux.Handle("PUT /api/admin/products/{id}", s.requireAdmin(s.handleAdminUpdate))
	mux.Handle("DELETE /api/admin/products/{id}", s.requireAdmin(s.handleAdminDelete))
	mux.Handle("GET /api/admin/stats", s.requireAdmin(s.handleAdminStats))
	mux.Handle("GET /api/admin/orders", s.requireAdmin(s.handleAdminOrders))
	mux.Handle("GET /api/admin/overview", s.requireAdmin(s.handleAdminOverview))

	return telemetry.Middleware(s.service, s.logRequests(mux))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	for _, check := range s.ready {
		if err := check(ctx); err != nil {
			s.log.Warn("readiness check failed", slog.Any("err", err))
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		defer func() {
			if p := recover(); p != nil {
				s.log.Error("handler panicked", slog.String("path", r.URL.Path), slog.Any("panic", p))
				writeJSON(rec, http.StatusInternalServerError, errorBody{Error: "internal error", Code: "INTERNAL"})
			}
			s.log.Debug("http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rec.status),
				slog.Duration("took", time.Since(start)),
			)
		}()

		next.ServeHTTP(rec, r)
	})
}
