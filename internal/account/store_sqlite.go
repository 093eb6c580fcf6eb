// Copyright (c) 2026 Murmur. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"database/sql"
	"time"

	"github.com/taibuivan/murmur/internal/platform/dberr"
)

// SQLiteRepository implements [Repository] on database/sql with the modernc driver.
//
// Timestamps are stored as Unix nanoseconds.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite implementation of [Repository].
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Create persists a new account row.
func (repository *SQLiteRepository) Create(ctx context.Context, account *Account) error {
	const query = `
		INSERT INTO accounts (id, username, password_hash, created_at)
		VALUES (?, ?, ?, ?)`

	_, err := repository.db.ExecContext(ctx, query,
		account.ID,
		account.Username,
		account.PasswordHash,
		account.CreatedAt.UnixNano(),
	)

	return dberr.Wrap(err, "sqlite_account_repo_create_failed")
}

// FindByID retrieves an account by its primary key.
func (repository *SQLiteRepository) FindByID(ctx context.Context, id string) (*Account, error) {
	const query = `
		SELECT id, username, password_hash, created_at
		FROM accounts
		WHERE id = ?`

	return repository.scanOne(repository.db.QueryRowContext(ctx, query, id), "sqlite_account_repo_find_by_id_failed")
}

// FindByUsername retrieves an account by its unique username.
func (repository *SQLiteRepository) FindByUsername(ctx context.Context, username string) (*Account, error) {
	const query = `
		SELECT id, username, password_hash, created_at
		FROM accounts
		WHERE username = ?`

	return repository.scanOne(repository.db.QueryRowContext(ctx, query, username), "sqlite_account_repo_find_by_username_failed")
}

func (repository *SQLiteRepository) scanOne(row *sql.Row, action string) (*Account, error) {
	var createdAt int64

	account := &Account{}
	err := row.Scan(
		&account.ID,
		&account.Username,
		&account.PasswordHash,
		&createdAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, action)
	}

	account.CreatedAt = time.Unix(0, createdAt).UTC()
	return account, nil
}
