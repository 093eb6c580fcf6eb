// Copyright (c) 2026 Murmur. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package ctxutil carries request-scoped values through [context.Context]:
// the correlation id, the request logger and the authenticated caller.
//
// Keys are unexported struct types, so no other package can read or
// overwrite these values except through the helpers below.
package ctxutil

import (
	"context"
	"log/slog"

	"github.com/taibuivan/murmur/internal/platform/sec"
)

type (
	requestIDKey struct{}
	loggerKey    struct{}
	callerKey    struct{}
)

// # Request Tracing

// WithRequestID attaches the X-Request-ID correlation value.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// GetRequestID returns the correlation value, or "" outside a request.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// # Structured Logging

// WithLogger attaches the request logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// GetLogger returns the request logger, falling back to [slog.Default].
func GetLogger(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return slog.Default()
}

// # Caller Identity

// WithAuthUser attaches the verified caller and tags the request logger with
// its user_id, so every later log line in the request names the account.
func WithAuthUser(ctx context.Context, claims *sec.AuthClaims) context.Context {
	ctx = context.WithValue(ctx, callerKey{}, claims)
	if claims == nil {
		return ctx
	}
	return WithLogger(ctx, GetLogger(ctx).With(slog.String("user_id", claims.UserID)))
}

// GetAuthUser returns the verified caller, or nil for anonymous requests.
func GetAuthUser(ctx context.Context) *sec.AuthClaims {
	claims, _ := ctx.Value(callerKey{}).(*sec.AuthClaims)
	return claims
}

// AuthUserID returns the caller's account id and whether one is present.
func AuthUserID(ctx context.Context) (string, bool) {
	claims := GetAuthUser(ctx)
	if claims == nil || claims.UserID == "" {
		return "", false
	}
	return claims.UserID, true
}
