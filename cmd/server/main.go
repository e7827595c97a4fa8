// Package main is the entrypoint for the Listing Shield API server.
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

	"github.com/kiranshivaraju/listingshield/internal/admin"
	"github.com/kiranshivaraju/listingshield/internal/api"
	"github.com/kiranshivaraju/listingshield/internal/api/handler"
	mw "github.com/kiranshivaraju/listingshield/internal/api/middleware"
	"github.com/kiranshivaraju/listingshield/internal/api/response"
	"github.com/kiranshivaraju/listingshield/internal/cache"
	"github.com/kiranshivaraju/listingshield/internal/cacheadmin"
	"github.com/kiranshivaraju/listingshield/internal/compliance"
	"github.com/kiranshivaraju/listingshield/internal/config"
	"github.com/kiranshivaraju/listingshield/internal/platform"
	"github.com/kiranshivaraju/listingshield/internal/policyjob"
	"github.com/kiranshivaraju/listingshield/internal/store"
)

const shutdownTimeout = 30 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config, fail fast on invalid config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded",
		"env", cfg.Server.Env,
		"platform_configured", cfg.Platform.HasClientKeys(),
		"local_jwt_verification", cfg.Platform.JWTSecret != "",
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Connect to database
	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	slog.Info("database connected")

	// 3. Run migrations
	if err := store.RunMigrations(cfg.Database.URL, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("database migrations applied")

	// 4. Create Redis cache
	redisCache, err := cache.NewRedisCache(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("create redis cache: %w", err)
	}
	defer redisCache.Close()

	if err := redisCache.Ping(ctx); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	slog.Info("redis connected")

	// 5. Create store, platform client and services
	pgStore := store.NewPostgresStore(pool)
	platformClient := platform.NewHTTPClient(cfg.Platform)
	identities := platform.NewResolver(cfg.Platform.JWTSecret, platformClient)

	checker := compliance.NewCachedAnalyzer(compliance.NewAnalyzer(pgStore), pgStore, cfg.Cache.TTL)
	jobs := policyjob.NewService(platformClient, pgStore)
	caches := cacheadmin.NewManager(pgStore)
	functions := admin.NewService(cfg.Platform, identities, platformClient, pgStore)

	// 6. Build router with dependencies
	deps := api.Dependencies{
		Auth:        mw.NewAuth(identities, pgStore),
		RateLimit:   mw.NewRateLimit(redisCache, cfg.Server.RateLimitPerMinute),
		CORSOrigins: cfg.Server.CORSAllowedOrigins,

		HealthHandler:     healthHandler(pgStore, redisCache),
		ComplianceCheck:   handler.NewComplianceCheckHandler(checker),
		StartJobHandler:   handler.NewStartJobHandler(jobs),
		ListJobsHandler:   handler.NewListJobsHandler(jobs),
		LatestJobHandler:  handler.NewLatestJobHandler(jobs),
		GetJobHandler:     handler.NewGetJobHandler(jobs),
		CacheStatsHandler: handler.NewCacheStatsHandler(caches),
		CacheCleanup:      handler.NewCacheCleanupHandler(caches),
		CacheClear:        handler.NewCacheClearHandler(caches),
		GetUserProfile:    handler.NewGetUserProfileHandler(functions),
		MakeAdmin:         handler.NewMakeAdminHandler(functions),
	}

	router := api.NewRouter(deps)

	// 7. Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining connections...")
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

// pinger is satisfied by both the store and the Redis cache.
type pinger interface {
	Ping(ctx context.Context) error
}

// healthHandler checks database and cache connectivity.
func healthHandler(db, c pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{
			"database": "ok",
			"cache":    "ok",
		}

		if err := db.Ping(r.Context()); err != nil {
			slog.Warn("database health check failed", "error", err)
			checks["database"] = "degraded"
		}
		if err := c.Ping(r.Context()); err != nil {
			slog.Warn("cache health check failed", "error", err)
			checks["cache"] = "degraded"
		}

		degraded := checks["database"] != "ok" || checks["cache"] != "ok"
		if degraded {
			response.Error(w, http.StatusServiceUnavailable, "DEGRADED",
				"One or more services degraded", checks)
			return
		}

		response.JSON(w, map[string]any{
			"status":   "ok",
			"services": checks,
		})
	}
}
