package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	adminapp "github.com/dwikikusuma/boutique-storefront/internal/admin/app"
	"github.com/dwikikusuma/boutique-storefront/internal/admin/infra/cloudinary"

	cartapp "github.com/dwikikusuma/boutique-storefront/internal/cart/app"
	"github.com/dwikikusuma/boutique-storefront/internal/cart/infra/memory"
	"github.com/dwikikusuma/boutique-storefront/internal/cart/infra/redisstore"
	"github.com/dwikikusuma/boutique-storefront/internal/cart/infra/sqlstore"

	catalogapp "github.com/dwikikusuma/boutique-storefront/internal/catalog/app"
	"github.com/dwikikusuma/boutique-storefront/internal/catalog/infra/static"

	checkoutapp "github.com/dwikikusuma/boutique-storefront/internal/checkout/app"
	checkoutadapter "github.com/dwikikusuma/boutique-storefront/internal/checkout/infra/adapter"

	"github.com/dwikikusuma/boutique-storefront/internal/httpapi"

	orderapp "github.com/dwikikusuma/boutique-storefront/internal/order/app"
	"github.com/dwikikusuma/boutique-storefront/internal/order/infra/webhook"

	"github.com/dwikikusuma/boutique-storefront/pkg/cache"
	"github.com/dwikikusuma/boutique-storefront/pkg/config"
	"github.com/dwikikusuma/boutique-storefront/pkg/logger"
	"github.com/dwikikusuma/boutique-storefront/pkg/shutdown"
	"github.com/dwikikusuma/boutique-storefront/pkg/sqldb"
	"github.com/dwikikusuma/boutique-storefront/pkg/telemetry"
	"golang.org/x/sync/errgroup"
)

const serviceName = "storefront"

func main() {
	cfg := config.Load()
	log := logger.New(logger.Options{Service: serviceName, Env: cfg.AppEnv, Level: cfg.LogLevel, AddSource: true})

	ctx, cancel := shutdown.WithSignals(context.Background(), log)
	defer cancel()

	shutdownTracing, err := telemetry.Init(telemetry.Options{Service: serviceName, Env: cfg.AppEnv, Enabled: cfg.OTelEnabled})
	if err != nil {
		log.Error("telemetry init failed", slog.Any("err", err))
		os.Exit(1)
	}

	// Catalog
	catalogRepo, err := static.Load(cfg.CatalogPath)
	if err != nil {
		log.Error("catalog load failed", slog.Any("err", err), slog.String("path", cfg.CatalogPath))
		os.Exit(1)
	}
	catalogSvc := catalogapp.NewService(catalogRepo)

	// Cart
	cartRepo, ready, closeRepo := mustCartRepo(ctx, cfg, log)
	defer closeRepo()
	cartSvc := cartapp.NewService(cartRepo, log)
	defer cartSvc.Close()

	// Orders
	httpClient := telemetry.NewHTTPClient(&http.Client{Timeout: 30 * time.Second})
	orderLog := webhook.NewClient(cfg.OrderLog.WebhookURL, httpClient)
	if cfg.OrderLog.WebhookURL == "" {
		log.Warn("ORDER_LOG_WEBHOOK_URL not set, orders will not be recorded")
	}
	orderSvc := orderapp.NewService(orderLog, log)
	dispatcher := orderapp.NewDispatcher(orderLog, log, cfg.OrderLog.Timeout)

	// Checkout (adapters)
	checkoutSvc := checkoutapp.NewService(
		checkoutadapter.NewCartServicePort(cartSvc),
		checkoutadapter.NewOrderDispatcher(orderSvc, dispatcher),
		checkoutadapter.NewLogOpener(log),
		checkoutapp.StoreInfo{
			Name:       cfg.Store.Name,
			Phone:      cfg.Store.Phone,
			PhonePlain: cfg.Store.PhonePlain,
			Location:   cfg.Store.Location,
			ChatBase:   cfg.Store.ChatBase,
		},
		log,
	)

	// Admin
	uploader := cloudinary.NewClient(cfg.Cloudinary.CloudName, cfg.Cloudinary.UploadPreset, httpClient)
	if !uploader.Configured() {
		log.Warn("cloudinary not configured, product image uploads disabled")
	}
	adminSvc := adminapp.NewService(catalogSvc, uploader, orderSvc, log)
	auth := adminapp.NewAuth(cfg.Admin.Username, cfg.Admin.Password)

	api := httpapi.NewServer(httpapi.Deps{
		Catalog:      catalogSvc,
		Carts:        cartSvc,
		Checkout:     checkoutSvc,
		Admin:        adminSvc,
		Auth:         auth,
		Log:          log,
		Service:      serviceName,
		SecureCookie: cfg.AppEnv == "prod",
		Ready:        ready,
	})

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	server := &http.Server{
		Addr:              addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("http server starting", slog.String("addr", addr), slog.String("cart_store", cfg.Cart.Store))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown requested")

		stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer stopCancel()

		if err := server.Shutdown(stopCtx); err != nil {
			log.Error("http shutdown error", slog.Any("err", err))
		}
		if err := dispatcher.Wait(stopCtx); err != nil {
			log.Warn("pending order log appends abandoned", slog.Any("err", err))
		}
		if err := shutdownTracing(stopCtx); err != nil {
			log.Error("telemetry shutdown error", slog.Any("err", err))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("server stopped with error", slog.Any("err", err))
		os.Exit(1)
	}
	log.Info("bye")
}

// mustCartRepo builds the cart repository selected by CART_STORE, with its readiness probe
// and closer.
func mustCartRepo(ctx context.Context, cfg config.Config, log *slog.Logger) (cartapp.CartRepo, []httpapi.ReadyFunc, func()) {
	switch cfg.Cart.Store {
	case "redis":
		client, err := cache.NewRedisClient(cfg.Redis.URL)
		if err != nil {
			log.Error("redis connect failed", slog.Any("err", err))
			os.Exit(1)
		}
		probe := func(ctx context.Context) error { return client.Ping(ctx).Err() }
		return redisstore.NewCartRepo(client, cfg.Redis.Namespace, cfg.Cart.TTL),
			[]httpapi.ReadyFunc{probe},
			func() { _ = client.Close() }

	case "sql":
		db, err := sqldb.Open(sqldb.Config{Driver: cfg.SQL.Driver, DSN: cfg.SQL.DSN})
		if err != nil {
			log.Error("db open failed", slog.Any("err", err), slog.String("driver", cfg.SQL.Driver))
			os.Exit(1)
		}
		repo := sqlstore.NewCartRepo(db)
		if err := repo.Migrate(ctx); err != nil {
			log.Error("cart schema migration failed", slog.Any("err", err))
			os.Exit(1)
		}
		return repo, []httpapi.ReadyFunc{db.PingContext}, func() { _ = db.Close() }

	case "memory", "":
		return memory.NewCartRepo(), nil, func() {}

	default:
		log.Error("unknown CART_STORE", slog.String("cart_store", cfg.Cart.Store))
		os.Exit(1)
		return nil, nil, nil
	}
}
