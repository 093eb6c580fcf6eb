// Copyright (c) 2026 Murmur. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Murmur HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Open the durable store (PostgreSQL or SQLite) and migrate it.
//  4. Connect to Redis.
//  5. Start the live delivery dispatcher.
//  6. Wire HTTP handlers.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
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

	"github.com/taibuivan/murmur/internal/account"
	"github.com/taibuivan/murmur/internal/api"
	"github.com/taibuivan/murmur/internal/conversation"
	"github.com/taibuivan/murmur/internal/delivery"
	"github.com/taibuivan/murmur/internal/platform/config"
	"github.com/taibuivan/murmur/internal/platform/constants"
	"github.com/taibuivan/murmur/internal/platform/migration"
	pgstore "github.com/taibuivan/murmur/internal/platform/postgres"
	redisstore "github.com/taibuivan/murmur/internal/platform/redis"
	"github.com/taibuivan/murmur/internal/platform/sec"
	"github.com/taibuivan/murmur/internal/platform/sqlite"
	"github.com/taibuivan/murmur/internal/session"
)

// stores bundles the repositories of whichever driver is configured.
type stores struct {
	accounts account.Repository
	tokens   session.TokenRepository
	messages conversation.MessageRepository
	ping     func(ctx context.Context) error
	close    func()
}

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	log := rawLog.With(slog.String("app", "murmur"))
	slog.SetDefault(log)

	log.Info("[Murmur] service_initializing", slog.String("service", constants.AppName))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", "murmur"))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("version", constants.AppVersion),
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("store_driver", cfg.StoreDriver),
	)

	// Cancelled on SIGINT/SIGTERM. Request contexts derive from it, so open
	// streams end when shutdown begins.
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	startupCtx, startupCancel := context.WithTimeout(rootCtx, 30*time.Second)
	defer startupCancel()

	// ── 3. Durable Store ──────────────────────────────────────────────────
	store, err := openStores(startupCtx, cfg, log)
	must(log, err, "open store")
	defer store.close()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Token Signer ───────────────────────────────────────────────────
	tokenService, err := sec.NewTokenService(cfg.JWTSecret, constants.AuthIssuer)
	must(log, err, "initialize token service")

	// ── 6. Live Delivery ──────────────────────────────────────────────────
	broker := delivery.NewRedisBroker(rdb, log)
	dispatcher := delivery.NewDispatcher(broker, log, delivery.DispatcherConfig{
		QueueSize: cfg.DeliveryQueueSize,
		Workers:   cfg.DeliveryWorkers,
		Timeout:   cfg.DeliveryTimeout,
	})
	dispatcher.Run(rootCtx)
	defer dispatcher.Close()

	// ── 7. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers([]api.Check{
		{Name: cfg.StoreDriver, Probe: store.ping},
		{Name: "redis", Probe: func(ctx context.Context) error { return redisstore.Ping(ctx, rdb) }},
	}, log)

	// ── 8. Domain Wiring ──────────────────────────────────────────────────
	sessionManager := session.NewManager(store.accounts, store.tokens, tokenService)
	conversationService := conversation.NewService(store.accounts, store.messages, dispatcher)

	// ── 9. HTTP Server ────────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:     liveness,
		Readiness:    readiness,
		Session:      session.NewHandler(sessionManager),
		Conversation: conversation.NewHandler(conversationService),
		Stream:       delivery.NewStreamHandler(broker, constants.StreamKeepAlive),
	}

	server := api.NewServer(rootCtx, cfg, log, tokenService, handlers)
	server.SetBaseContext(rootCtx)

	// ── 10. Graceful Shutdown ─────────────────────────────────────────────
	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case <-rootCtx.Done():
		log.Info("shutdown signal received")
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
		stop()
	}

	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
	}

	log.Info("server stopped cleanly")
}

// openStores connects to the configured driver and migrates its schema.
func openStores(ctx context.Context, cfg *config.Config, log *slog.Logger) (*stores, error) {
	switch cfg.StoreDriver {
	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.DatabaseURL, log)
		if err != nil {
			return nil, err
		}
		return &stores{
			accounts: account.NewSQLiteRepository(db),
			tokens:   session.NewSQLiteTokenRepository(db),
			messages: conversation.NewSQLiteMessageRepository(db),
			ping:     func(ctx context.Context) error { return sqlite.Ping(ctx, db) },
			close: func() {
				log.Info("closing sqlite database")
				if err := db.Close(); err != nil {
					log.Error("sqlite close error", slog.Any("error", err))
				}
			},
		}, nil

	case config.DriverPostgres:
		pool, err := pgstore.NewPool(ctx, cfg.DatabaseURL, log)
		if err != nil {
			return nil, err
		}
		if err := migration.RunPostgres(cfg.DatabaseURL, log); err != nil {
			pool.Close()
			return nil, err
		}
		return &stores{
			accounts: account.NewPostgresRepository(pool),
			tokens:   session.NewPostgresTokenRepository(pool),
			messages: conversation.NewPostgresMessageRepository(pool),
			ping:     func(ctx context.Context) error { return pgstore.Ping(ctx, pool) },
			close: func() {
				log.Info("closing postgres pool")
				pool.Close()
			},
		}, nil

	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned
// and handled explicitly.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
