// Copyright (c) 2026 Murmur. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/murmur/internal/platform/dberr"
)

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL implementation of [Repository].
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Create persists a new account row.
func (repository *PostgresRepository) Create(ctx context.Context, account *Account) error {
	const query = `
		INSERT INTO accounts (id, username, password_hash, created_at)
		VALUES ($1, $2, $3, $4)`

	_, err := repository.pool.Exec(ctx, query,
		account.ID,
		account.Username,
		account.PasswordHash,
		account.CreatedAt,
	)

	return dberr.Wrap(err, "postgres_account_repo_create_failed")
}

// FindByID retrieves an account by its primary key.
func (repository *PostgresRepository) FindByID(ctx context.Context, id string) (*Account, error) {
	const query = `
		SELECT id, username, password_hash, created_at
		FROM accounts
		WHERE id = $1`

	account := &Account{}
	err := repository.pool.QueryRow(ctx, query, id).Scan(
		&account.ID,
		&account.Username,
		&account.PasswordHash,
		&account.CreatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "postgres_account_repo_find_by_id_failed")
	}

	return account, nil
}

// FindByUsername retrieves an account by its unique username.
func (repository *PostgresRepository) FindByUsername(ctx context.Context, username string) (*Account, error) {
	const query = `
		SELECT id, username, password_hash, created_at
		FROM accounts
		WHERE username = $1`

	account := &Account{}
	err := repository.pool.QueryRow(ctx, query, username).Scan(
		&account.ID,
		&account.Username,
		&account.PasswordHash,
		&account.CreatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "postgres_account_repo_find_by_username_failed")
	}

	return account, nil
}
