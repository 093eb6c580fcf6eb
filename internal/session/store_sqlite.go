// Copyright (c) 2026 Murmur. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"database/sql"
	"time"

	"github.com/taibuivan/murmur/internal/platform/dberr"
)

// SQLiteTokenRepository implements [TokenRepository] on database/sql.
//
// Timestamps are stored as Unix nanoseconds.
type SQLiteTokenRepository struct {
	db *sql.DB
}

// NewSQLiteTokenRepository creates a new SQLite implementation of [TokenRepository].
func NewSQLiteTokenRepository(db *sql.DB) *SQLiteTokenRepository {
	return &SQLiteTokenRepository{db: db}
}

// Create inserts a new refresh token row.
func (repository *SQLiteTokenRepository) Create(ctx context.Context, token *RefreshToken) error {
	const query = `
		INSERT INTO refresh_tokens (id, token_hash, account_id, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?)`

	_, err := repository.db.ExecContext(ctx, query,
		token.ID,
		token.TokenHash,
		token.AccountID,
		token.CreatedAt.UnixNano(),
		token.ExpiresAt.UnixNano(),
	)

	return dberr.Wrap(err, "sqlite_token_repo_create_failed")
}

// Consume revokes an active token in a single conditional statement.
func (repository *SQLiteTokenRepository) Consume(ctx context.Context, tokenHash string, now time.Time) (string, error) {
	const query = `
		UPDATE refresh_tokens
		SET revoked_at = ?
		WHERE token_hash = ? AND revoked_at IS NULL AND expires_at > ?
		RETURNING account_id`

	var accountID string
	err := repository.db.QueryRowContext(ctx, query, now.UnixNano(), tokenHash, now.UnixNano()).Scan(&accountID)
	if err != nil {
		return "", dberr.Wrap(err, "sqlite_token_repo_consume_failed")
	}

	return accountID, nil
}

// FindByHash retrieves a token by digest.
func (repository *SQLiteTokenRepository) FindByHash(ctx context.Context, tokenHash string) (*RefreshToken, error) {
	const query = `
		SELECT id, token_hash, account_id, created_at, expires_at, revoked_at
		FROM refresh_tokens
		WHERE token_hash = ?`

	var (
		createdAt int64
		expiresAt int64
		revokedAt sql.NullInt64
	)

	token := &RefreshToken{}
	err := repository.db.QueryRowContext(ctx, query, tokenHash).Scan(
		&token.ID,
		&token.TokenHash,
		&token.AccountID,
		&createdAt,
		&expiresAt,
		&revokedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "sqlite_token_repo_find_by_hash_failed")
	}

	token.CreatedAt = time.Unix(0, createdAt).UTC()
	token.ExpiresAt = time.Unix(0, expiresAt).UTC()
	if revokedAt.Valid {
		revoked := time.Unix(0, revokedAt.Int64).UTC()
		token.RevokedAt = &revoked
	}

	return token, nil
}
