// Copyright (c) 2026 Murmur. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package session owns identity verification and the access/refresh token
// lifecycle: registration, login and refresh-token rotation.
//
// # Token Lifecycle
//
// A refresh token is Issued and immediately Active. From Active it becomes
// Expired once its expiry passes, or Revoked exactly once when it is exchanged.
// Neither terminal state can be left.
package session

import "time"

// Token lifetimes and sizes.
const (
	AccessTokenTTL    = 15 * time.Minute
	RefreshTokenTTL   = 30 * 24 * time.Hour
	RefreshTokenBytes = 64
)

// RefreshToken is the persisted record of a single-use refresh token.
//
// Only the SHA-256 digest of the value handed to the client is stored.
type RefreshToken struct {
	ID        string
	TokenHash string
	AccountID string
	CreatedAt time.Time
	ExpiresAt time.Time
	RevokedAt *time.Time
}

// Active reports whether the token is neither revoked nor expired at now.
func (token *RefreshToken) Active(now time.Time) bool {
	return token.RevokedAt == nil && now.Before(token.ExpiresAt)
}
