package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/storefront/internal/address"
	"github.com/example/storefront/internal/api"
	"github.com/example/storefront/internal/auth"
	"github.com/example/storefront/internal/catalog"
	"github.com/example/storefront/internal/config"
	"github.com/example/storefront/internal/orders"
	"github.com/example/storefront/internal/review"
	"github.com/example/storefront/internal/store/dynamostore"
	"github.com/example/storefront/internal/store/memstore"
	"github.com/example/storefront/internal/store/mongostore"
	"github.com/example/storefront/internal/store/pgstore"
	"github.com/example/storefront/internal/user"
	"github.com/example/storefront/pkg/logger"
)

// ports bundles the persistence interfaces the services run on,
// regardless of which backend provides them.
type ports struct {
	users     user.Store
	products  catalog.Store
	orders    orders.Store
	reviews   review.Store
	addresses address.Store
	close     func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Service: "storefront-api",
		Env:     cfg.AppEnv,
		Level:   cfg.LogLevel,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stores, err := openStores(ctx, cfg)
	if err != nil {
		log.Error("failed to open store backend", "backend", cfg.StoreBackend, "error", err)
		os.Exit(1)
	}
	defer stores.close()
	log.Info("store backend ready", "backend", cfg.StoreBackend)

	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.AccessExpiry, cfg.RefreshExpiry)

	userSvc := user.NewService(stores.users)
	catalogSvc := catalog.NewService(stores.products)
	orderSvc := orders.NewService(stores.products, stores.orders, log)
	reviewSvc := review.NewService(stores.reviews, stores.orders, stores.users)
	addressSvc := address.NewService(stores.addresses)

	router := api.NewRouter(api.Handlers{
		Auth:      api.NewAuthHandlers(userSvc, tokens),
		Products:  api.NewProductHandlers(catalogSvc),
		Orders:    api.NewOrderHandlers(orderSvc),
		Reviews:   api.NewReviewHandlers(reviewSvc),
		Addresses: api.NewAddressHandlers(addressSvc),
	}, tokens, log)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server started", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
}

func openStores(ctx context.Context, cfg config.Config) (*ports, error) {
	switch cfg.StoreBackend {
	case "mongo":
		client, err := mongostore.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		stores := mongostore.New(client.Database(cfg.MongoDB))
		if err := stores.EnsureIndexes(ctx); err != nil {
			return nil, err
		}
		return &ports{
			users:     stores.Users,
			products:  stores.Products,
			orders:    stores.Orders,
			reviews:   stores.Reviews,
			addresses: stores.Addresses,
			close: func() {
				disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = client.Disconnect(disconnectCtx)
			},
		}, nil

	case "dynamo":
		client, err := dynamostore.NewClient(ctx, cfg.DynamoRegion)
		if err != nil {
			return nil, err
		}
		stores := dynamostore.New(client, cfg.DynamoTable)
		return &ports{
			users:     stores.Users,
			products:  stores.Products,
			orders:    stores.Orders,
			reviews:   stores.Reviews,
			addresses: stores.Addresses,
			close:     func() {},
		}, nil

	case "postgres":
		db, err := pgstore.Connect(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		stores := pgstore.New(db)
		if err := stores.Migrate(ctx); err != nil {
			return nil, err
		}
		return &ports{
			users:     stores.Users,
			products:  stores.Products,
			orders:    stores.Orders,
			reviews:   stores.Reviews,
			addresses: stores.Addresses,
			close:     func() { _ = db.Close() },
		}, nil

	case "memory":
		mem := memstore.New()
		return &ports{
			users:     mem.Users(),
			products:  mem.Products(),
			orders:    mem.Orders(),
			reviews:   mem.Reviews(),
			addresses: mem.Addresses(),
			close:     func() {},
		}, nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
