// Copyright (c) 2026 Murmur. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sqlite opens the embedded SQLite store used for local development
// and tests.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/taibuivan/murmur/internal/platform/migration"

	// Registers the "sqlite" driver.
	_ "modernc.org/sqlite"
)

// MemoryDSN is a private in-memory database living as long as its handle.
const MemoryDSN = ":memory:"

// Open opens dsn, enables foreign keys and applies migrations.
//
// The handle is limited to one connection: SQLite serializes writers anyway,
// and an in-memory database exists only on the connection that created it.
func Open(ctx context.Context, dsn string, logger *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: enable foreign keys: %w", err)
	}

	if err := migration.RunSQLite(ctx, db, logger); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Info("sqlite store opened", slog.String("dsn", dsn))
	return db, nil
}

// Ping verifies that the SQLite handle is usable.
func Ping(ctx context.Context, db *sql.DB) error {
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite: ping failed: %w", err)
	}
	return nil
}
