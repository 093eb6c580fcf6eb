// Copyright (c) 2026 Murmur. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/murmur/internal/session"
)

func TestRefreshToken_Active(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	revoked := now.Add(-time.Minute)

	tests := []struct {
		name   string
		token  session.RefreshToken
		active bool
	}{
		{"fresh", session.RefreshToken{ExpiresAt: now.Add(time.Hour)}, true},
		{"expired", session.RefreshToken{ExpiresAt: now.Add(-time.Hour)}, false},
		{"expires_exactly_now", session.RefreshToken{ExpiresAt: now}, false},
		{"revoked", session.RefreshToken{ExpiresAt: now.Add(time.Hour), RevokedAt: &revoked}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.active, tt.token.Active(now))
		})
	}
}
