// Copyright (c) 2026 Murmur. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/murmur/internal/platform/dberr"
)

// PostgresTokenRepository implements [TokenRepository] using pgx.
type PostgresTokenRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresTokenRepository creates a new PostgreSQL implementation of [TokenRepository].
func NewPostgresTokenRepository(pool *pgxpool.Pool) *PostgresTokenRepository {
	return &PostgresTokenRepository{pool: pool}
}

// Create inserts a new refresh token row.
func (repository *PostgresTokenRepository) Create(ctx context.Context, token *RefreshToken) error {
	const query = `
		INSERT INTO refresh_tokens (id, token_hash, account_id, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := repository.pool.Exec(ctx, query,
		token.ID,
		token.TokenHash,
		token.AccountID,
		token.CreatedAt,
		token.ExpiresAt,
	)

	return dberr.Wrap(err, "postgres_token_repo_create_failed")
}

// Consume revokes an active token in a single conditional statement.
func (repository *PostgresTokenRepository) Consume(ctx context.Context, tokenHash string, now time.Time) (string, error) {
	const query = `
		UPDATE refresh_tokens
		SET revoked_at = $2
		WHERE token_hash = $1 AND revoked_at IS NULL AND expires_at > $2
		RETURNING account_id`

	var accountID string
	if err := repository.pool.QueryRow(ctx, query, tokenHash, now).Scan(&accountID); err != nil {
		return "", dberr.Wrap(err, "postgres_token_repo_consume_failed")
	}

	return accountID, nil
}

// FindByHash retrieves a token by digest.
func (repository *PostgresTokenRepository) FindByHash(ctx context.Context, tokenHash string) (*RefreshToken, error) {
	const query = `
		SELECT id, token_hash, account_id, created_at, expires_at, revoked_at
		FROM refresh_tokens
		WHERE token_hash = $1`

	token := &RefreshToken{}
	err := repository.pool.QueryRow(ctx, query, tokenHash).Scan(
		&token.ID,
		&token.TokenHash,
		&token.AccountID,
		&token.CreatedAt,
		&token.ExpiresAt,
		&token.RevokedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "postgres_token_repo_find_by_hash_failed")
	}

	return token, nil
}
