package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/kinerjahub/internal/auth"
	"github.com/geocoder89/kinerjahub/internal/config"
	"github.com/geocoder89/kinerjahub/internal/db"
	httpx "github.com/geocoder89/kinerjahub/internal/http"
	"github.com/geocoder89/kinerjahub/internal/http/middlewares"
	"github.com/geocoder89/kinerjahub/internal/observability"
	"github.com/geocoder89/kinerjahub/internal/redisclient"
	"github.com/geocoder89/kinerjahub/internal/repo/memory"
	"github.com/geocoder89/kinerjahub/internal/repo/postgres"
	"github.com/geocoder89/kinerjahub/internal/security"
	"github.com/geocoder89/kinerjahub/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// Load the config set up
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	if cfg.UsingFallbackSecrets {
		log.Warn("JWT secrets not configured, using built-in fallback secrets", "env", cfg.Env)
	}

	ctx := context.Background()

	tracing := cfg.OTELEndpoint != ""
	if tracing {
		shutdownTracer, err := observability.InitTracer(ctx, "kinerjahub-api", cfg.OTELEndpoint)
		if err != nil {
			log.Error("tracer init failed", "err", err)
			os.Exit(1)
		}
		defer func() {
			sctx, cancel := config.WithTimeout(5 * time.Second)
			defer cancel()
			_ = shutdownTracer(sctx)
		}()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(reg)

	hasher := security.NewBcryptHasher(cfg.BcryptCost)

	stores, closeStores, err := openStores(ctx, cfg, prom, hasher, log)
	if err != nil {
		log.Error("store init failed", "storage", cfg.Storage, "err", err)
		os.Exit(1)
	}
	defer closeStores()

	var limiter middlewares.Limiter
	if cfg.RedisAddr != "" {
		rdb := redisclient.New(redisclient.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()

		pctx, cancel := config.WithTimeout(2 * time.Second)
		if err := rdb.Ping(pctx); err != nil {
			log.Warn("redis unreachable, rate limiter will fail open until it recovers", "addr", cfg.RedisAddr, "err", err)
		}
		cancel()

		limiter = middlewares.NewRedisRateLimiter(rdb.Raw(), cfg.AuthRateLimit, cfg.AuthRateWindow)
	}

	router := httpx.NewRouter(log, cfg, httpx.Deps{
		Stores:      stores,
		Tokens:      auth.NewManager(cfg.JWTSecret, cfg.JWTRefreshSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL),
		Hasher:      hasher,
		AuthLimiter: limiter,
		Prom:        prom,
		Gatherer:    reg,
		Tracing:     tracing,
	})

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env, "storage", cfg.Storage)
		err := srv.ListenAndServe()

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		sctx, cancel := config.WithTimeout(10 * time.Second)
		defer cancel()

		if err := srv.Shutdown(sctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}

// openStores builds the configured store. The memory store is seeded on start
// so a fresh process has accounts to log in with.
func openStores(ctx context.Context, cfg config.Config, prom *observability.Prom, hasher security.PasswordHasher, log *slog.Logger) (service.Stores, func(), error) {
	if cfg.Storage == config.StorageMemory {
		stores := memory.NewStore().Stores()
		if err := db.Seed(ctx, stores, hasher, log); err != nil {
			return service.Stores{}, nil, err
		}
		return stores, func() {}, nil
	}

	pool, err := db.NewPool(ctx, cfg.DBURL)
	if err != nil {
		return service.Stores{}, nil, err
	}

	if cfg.DBAutoMigrate {
		if err := db.Migrate(ctx, pool); err != nil {
			pool.Close()
			return service.Stores{}, nil, err
		}
		log.Info("schema migrated")
	}

	return postgres.NewStores(pool, prom), pool.Close, nil
}
