// Copyright (c) 2026 Murmur. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"time"
)

// TokenRepository defines the data access contract for refresh tokens.
//
// Rows are never deleted; revoked and expired tokens remain for audit and
// reuse detection.
type TokenRepository interface {
	// Create persists a newly issued refresh token.
	Create(ctx context.Context, token *RefreshToken) error

	// Consume atomically revokes the token with the given digest if it is still
	// active at now, and returns its owning account ID.
	//
	// Returns [dberr.ErrNotFound] if no active token matches. Of any number of
	// concurrent calls with the same digest at most one succeeds.
	Consume(ctx context.Context, tokenHash string, now time.Time) (string, error)

	// FindByHash returns the token with the given digest regardless of state.
	//
	// Returns [dberr.ErrNotFound] if it was never issued.
	FindByHash(ctx context.Context, tokenHash string) (*RefreshToken, error)
}

var (
	_ TokenRepository = (*PostgresTokenRepository)(nil)
	_ TokenRepository = (*SQLiteTokenRepository)(nil)
)
