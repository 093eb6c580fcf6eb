// Copyright (c) 2026 Murmur. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ctxutil_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/murmur/internal/platform/ctxutil"
	"github.com/taibuivan/murmur/internal/platform/sec"
)

/*
TestContext_RequestID verifies the correlation value round-trips.
*/
func TestContext_RequestID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, ctxutil.GetRequestID(ctx))

	ctx = ctxutil.WithRequestID(ctx, "req-1")
	assert.Equal(t, "req-1", ctxutil.GetRequestID(ctx))
}

/*
TestContext_Logger verifies the default fallback and an attached logger.
*/
func TestContext_Logger(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, slog.Default(), ctxutil.GetLogger(ctx))

	logger := slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))
	ctx = ctxutil.WithLogger(ctx, logger)
	assert.Equal(t, logger, ctxutil.GetLogger(ctx))
}

/*
TestContext_AuthUser verifies the caller is stored and the logger is tagged
with its user id.
*/
func TestContext_AuthUser(t *testing.T) {
	var buffer bytes.Buffer
	ctx := ctxutil.WithLogger(context.Background(), slog.New(slog.NewJSONHandler(&buffer, nil)))

	assert.Nil(t, ctxutil.GetAuthUser(ctx))
	_, ok := ctxutil.AuthUserID(ctx)
	assert.False(t, ok)

	ctx = ctxutil.WithAuthUser(ctx, &sec.AuthClaims{UserID: "user-123", Username: "alice"})

	claims := ctxutil.GetAuthUser(ctx)
	require.NotNil(t, claims)
	assert.Equal(t, "alice", claims.Username)

	id, ok := ctxutil.AuthUserID(ctx)
	assert.True(t, ok)
	assert.Equal(t, "user-123", id)

	ctxutil.GetLogger(ctx).Info("probe")
	assert.Contains(t, buffer.String(), `"user_id":"user-123"`)
}
