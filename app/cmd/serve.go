package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Rakhulsr/go-bookstore/app/configs"
	"github.com/Rakhulsr/go-bookstore/app/models/migrations"
	"github.com/Rakhulsr/go-bookstore/app/repositories"
	"github.com/Rakhulsr/go-bookstore/app/routes"
	"github.com/Rakhulsr/go-bookstore/app/services"
	"github.com/Rakhulsr/go-bookstore/app/utils/renderer"
	"github.com/Rakhulsr/go-bookstore/app/utils/sessions"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 15 * time.Second

// openStorage returns the durable storage selected by STORAGE_DRIVER and a
// function releasing it.
func openStorage(ctx context.Context, env configs.ENV) (repositories.Storage, func(), error) {
	switch env.StorageDriver {
	case "redis":
		client, err := configs.NewRedisClient(ctx, env)
		if err != nil {
			return nil, nil, err
		}
		return repositories.NewRedisStorage(client, env.StorageTTL), func() { _ = client.Close() }, nil

	case "mysql":
		db, err := configs.OpenConnection(env)
		if err != nil {
			return nil, nil, err
		}
		if err := migrations.AutoMigrate(db); err != nil {
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		release := func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		return repositories.NewGormStorage(db), release, nil

	default:
		log.Warn().Msg("Using in-memory storage, carts are lost on restart")
		return repositories.NewMemoryStorage(), func() {}, nil
	}
}

func newPaymentRedirector(env configs.ENV, orders *services.HTTPOrderClient) services.PaymentRedirector {
	if env.PaymentProvider == "midtrans" {
		return services.NewSnapRedirector(configs.NewMidtransClient(env), env.AppURL)
	}
	return orders
}

// Serve runs the HTTP server until ctx is cancelled or the process receives
// SIGINT or SIGTERM. Pending cart pushes are flushed before it returns.
func Serve(ctx context.Context, env configs.ENV) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	keys, err := configs.LoadSessionKeys(env)
	if err != nil {
		return err
	}

	storage, release, err := openStorage(ctx, env)
	if err != nil {
		return err
	}
	defer release()

	validate := validator.New()
	api := services.NewAPIClient(env.APIBaseURL, env.APITimeout)
	orders := services.NewHTTPOrderClient(api)

	registry := services.NewCartRegistry(services.RegistryOptions{
		Storage:  storage,
		Remote:   services.NewHTTPCartClient(api),
		Validate: validate,
		Debounce: env.CartSyncDebounce,
	})

	router := routes.NewRouter(routes.Dependencies{
		Render:       renderer.New(env.IsProduction()),
		Sessions:     sessions.NewCookieSessionStore(env.IsProduction(), keys.KeyPairs()...),
		Registry:     registry,
		Cart:         services.NewCartService(services.NewHTTPCatalogClient(api)),
		Checkout:     services.NewCheckoutService(orders, newPaymentRedirector(env, orders), validate),
		Validate:     validate,
		Identities:   sessions.NewIdentityVerifier(keys.IdentityKey, env.IdentityAssertionTTL),
		CSRFKey:      keys.CSRFKey,
		SecureCookie: env.IsProduction(),
	})

	server := &http.Server{
		Addr:              ":" + env.AppPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go sweepIdleCarts(ctx, registry, env.CartIdleTTL)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Str("storage", env.StorageDriver).Msg("Server starting")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		log.Info().Msg("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown")
	}
	registry.FlushAll(shutdownCtx)
	log.Info().Int("carts", registry.Len()).Msg("Pending cart pushes flushed")
	return nil
}

func sweepIdleCarts(ctx context.Context, registry *services.CartRegistry, idle time.Duration) {
	ticker := time.NewTicker(idle / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := registry.Sweep(ctx, idle); n > 0 {
				log.Debug().Int("swept", n).Int("active", registry.Len()).Msg("Idle carts released")
			}
		}
	}
}
