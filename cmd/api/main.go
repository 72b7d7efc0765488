// Copyright (c) 2026 Opsboard. All rights reserved.
// Author: huynh.tran.dev@gmail.com

// Command api is the entry point for the Opsboard HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Seed the bootstrap owner account (idempotent).
//  7. Wire HTTP handlers.
//  8. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/huynhtran/opsboard/internal/api"
	"github.com/huynhtran/opsboard/internal/platform/config"
	"github.com/huynhtran/opsboard/internal/platform/constants"
	"github.com/huynhtran/opsboard/internal/platform/migration"
	pgstore "github.com/huynhtran/opsboard/internal/platform/postgres"
	redisstore "github.com/huynhtran/opsboard/internal/platform/redis"
	"github.com/huynhtran/opsboard/internal/platform/sec"
	"github.com/huynhtran/opsboard/internal/users/account"
	"github.com/huynhtran/opsboard/internal/users/auth"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", "opsboard"))
	slog.SetDefault(log)

	log.Info("[Opsboard] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", "opsboard"))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// appCtx lives for the whole process and is cancelled on shutdown. It
	// owns background work such as the rate limiter's cleanup loop.
	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	// startupCtx bounds the dial/migrate/seed calls only, so misconfiguration
	// is caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(appCtx, 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Security Core ──────────────────────────────────────────────────
	codec, err := sec.NewSessionCodec([]byte(cfg.SessionSecret), cfg.SessionLifetime())
	must(log, err, "initialize session codec")

	// ── 7. Domain Wiring ──────────────────────────────────────────────────
	userRepository := auth.NewUserRepository(pool)
	auditRepository := auth.NewAuditRepository(pool)
	lockoutRepository := auth.NewLockoutRepository(rdb)
	lockoutTracker := auth.NewLockoutTracker(lockoutRepository, cfg.MaxFailedAttempts, cfg.LockoutDuration())

	authService := auth.NewService(userRepository, lockoutTracker, auditRepository, codec, log, time.Now)
	authHandler := auth.NewHandler(authService)

	auditLogRepository := account.NewAuditLogRepository(pool)
	accountService := account.NewService(userRepository, auditRepository, auditLogRepository, log, time.Now)
	accountHandler := account.NewHandler(accountService)

	// ── 8. Bootstrap Owner ────────────────────────────────────────────────
	if cfg.BootstrapPassphrase != "" {
		_, err = authService.SeedOwner(startupCtx, cfg.BootstrapUsername, cfg.BootstrapPassphrase)
		must(log, err, "seed bootstrap owner")
	} else {
		log.Warn("bootstrap passphrase not set, skipping owner seeding")
	}

	// ── 9. Health Handlers ────────────────────────────────────────────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckLockoutStore: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
	}, log)

	// ── 10. HTTP Server ───────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      authHandler,
		Account:   accountHandler,
	}

	server := api.NewServer(appCtx, cfg, log, authService, handlers)

	// ── 11. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
