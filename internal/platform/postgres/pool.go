// Copyright (c) 2026 Murmur. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package postgres opens the pgx connection pool behind the Postgres stores.
//
// Domain packages own their SQL; this package only decides how connections
// are made, bounded and checked.
package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"

	"github.com/taibuivan/murmur/internal/platform/constants"
)

// Pool sizing for short point reads and single-row writes. History reads are
// one indexed join per request, so a small warm pool is enough.
const (
	maxConns          = 20
	minConns          = 2
	maxConnLifetime   = 30 * time.Minute
	maxConnIdleTime   = 5 * time.Minute
	healthCheckPeriod = time.Minute
	connectTimeout    = 5 * time.Second
	pingTimeout       = 2 * time.Second
)

// NewPool parses dsn, applies Murmur's pool settings and verifies the
// database is reachable before returning.
//
// Queries slower than the request timeout are cancelled server-side through
// statement_timeout, and pgx warnings are forwarded to logger.
func NewPool(ctx context.Context, dsn string, logger *slog.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: invalid DSN: %w", err)
	}

	poolConfig.MaxConns = maxConns
	poolConfig.MinConns = minConns
	poolConfig.MaxConnLifetime = maxConnLifetime
	poolConfig.MaxConnIdleTime = maxConnIdleTime
	poolConfig.HealthCheckPeriod = healthCheckPeriod

	connConfig := poolConfig.ConnConfig
	connConfig.ConnectTimeout = connectTimeout
	connConfig.RuntimeParams["application_name"] = constants.AppName
	connConfig.RuntimeParams["statement_timeout"] = strconv.FormatInt(constants.GlobalRequestTimeout.Milliseconds(), 10)
	connConfig.Tracer = &tracelog.TraceLog{
		Logger:   slogTracer(logger),
		LogLevel: tracelog.LogLevelWarn,
	}

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to create pool: %w", err)
	}

	if err := Ping(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("postgres_pool_connected",
		slog.String("host", connConfig.Host),
		slog.String("database", connConfig.Database),
		slog.Int("max_conns", int(poolConfig.MaxConns)),
	)

	return pool, nil
}

// Ping verifies that the pool can reach the database.
func Ping(ctx context.Context, pool *pgxpool.Pool) error {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		return fmt.Errorf("postgres: ping failed: %w", err)
	}

	return nil
}

// slogTracer forwards pgx trace events to logger at the matching level.
func slogTracer(logger *slog.Logger) tracelog.LoggerFunc {
	return func(ctx context.Context, level tracelog.LogLevel, msg string, data map[string]any) {
		attributes := make([]slog.Attr, 0, len(data))
		for key, value := range data {
			attributes = append(attributes, slog.Any(key, value))
		}

		slogLevel := slog.LevelDebug
		switch level {
		case tracelog.LogLevelError:
			slogLevel = slog.LevelError
		case tracelog.LogLevelWarn:
			slogLevel = slog.LevelWarn
		case tracelog.LogLevelInfo:
			slogLevel = slog.LevelInfo
		}

		logger.LogAttrs(ctx, slogLevel, "pgx_"+msg, attributes...)
	}
}
