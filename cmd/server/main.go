package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"vibex-storefront/internal/apiclient"
	"vibex-storefront/internal/auth"
	"vibex-storefront/internal/checkout"
	"vibex-storefront/internal/config"
	"vibex-storefront/internal/database"
	"vibex-storefront/internal/gateway"
	"vibex-storefront/internal/handlers"
	"vibex-storefront/internal/middleware"
	"vibex-storefront/internal/tokens"
)

const (
	janitorInterval = 5 * time.Minute
	shutdownTimeout = 10 * time.Second
)

func main() {
	cfg := config.Load()
	logger := config.NewLogger(cfg)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openTokenStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	sealer, err := tokens.NewSealer(cfg.TokenSecret, cfg.RefreshTokenTTL)
	if err != nil {
		return fmt.Errorf("token sealer: %w", err)
	}
	store = tokens.Sealed(store, sealer)

	services := gateway.New(cfg.GatewayURL,
		apiclient.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout}),
		apiclient.WithLogger(logger),
	)
	manager := auth.NewManager(store, services.Auth, cfg.AccessTokenTTL, cfg.RefreshTokenTTL, logger)

	registry := checkout.NewRegistry(cfg.CheckoutIdleTTL, logger)
	go registry.Run(ctx, time.Minute)

	if !cfg.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handlers.NewRouter(handlers.RouterConfig{
		Logger:         logger,
		Sessions:       middleware.NewSessionStore(cfg.SessionSecret, !cfg.Development, cfg.RefreshTokenTTL),
		AllowedOrigins: cfg.AllowedOrigins,
		Maintenance:    cfg.MaintenanceMode,
		Services:       services,
		Manager:        manager,
		Registry:       registry,
		Checkout: checkout.Options{
			Debounce:            cfg.PreviewDebounce,
			FallbackShippingFee: cfg.ShippingFallbackFee,
			Logger:              logger,
		},
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("storefront BFF listening", "addr", srv.Addr, "gateway", cfg.GatewayURL, "token_store", cfg.TokenStore)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	registry.Close()
	return nil
}

// openTokenStore builds the backend named by TOKEN_STORE and starts its janitor.
func openTokenStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (tokens.Store, func(), error) {
	switch cfg.TokenStore {
	case config.TokenStoreMemory:
		store := tokens.NewMemoryStore()
		go janitor(ctx, logger, "memory", func(context.Context) (int64, error) {
			return int64(store.Sweep()), nil
		})
		return store, func() {}, nil

	case config.TokenStorePostgres:
		db, err := database.Connect(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, nil, err
		}
		if err := database.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		queries := database.NewTokenQueries(db)
		go janitor(ctx, logger, "postgres", queries.PurgeExpired)
		return tokens.NewSQLStore(queries), closeDB(db, logger), nil

	case config.TokenStoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		// Redis expires keys itself.
		return tokens.NewRedisStore(client), func() { client.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown TOKEN_STORE %q", cfg.TokenStore)
}

func closeDB(db *sql.DB, logger *slog.Logger) func() {
	return func() {
		if err := db.Close(); err != nil {
			logger.Error("failed to close database", "err", err)
		}
	}
}

// janitor purges expired tokens until ctx is done.
func janitor(ctx context.Context, logger *slog.Logger, store string, purge func(context.Context) (int64, error)) {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := purge(ctx)
			if err != nil {
				logger.Error("failed to purge expired tokens", "store", store, "err", err)
				continue
			}
			if n > 0 {
				logger.Debug("purged expired tokens", "store", store, "count", n)
			}
		}
	}
}
