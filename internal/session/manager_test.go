// Copyright (c) 2026 Murmur. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/murmur/internal/account"
	"github.com/taibuivan/murmur/internal/platform/ctxutil"
	"github.com/taibuivan/murmur/internal/platform/sec"
	"github.com/taibuivan/murmur/internal/platform/sqlite"
	"github.com/taibuivan/murmur/internal/session"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (clock *fakeClock) Now() time.Time {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	return clock.now
}

func (clock *fakeClock) Advance(d time.Duration) {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	clock.now = clock.now.Add(d)
}

type fixture struct {
	manager  *session.Manager
	accounts *account.SQLiteRepository
	tokens   *session.SQLiteTokenRepository
	signer   *sec.TokenService
	clock    *fakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := sqlite.Open(context.Background(), sqlite.MemoryDSN, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	signer, err := sec.NewTokenService("session-test-secret-0123456789abc", "murmur.test")
	require.NoError(t, err)

	clock := &fakeClock{now: time.Now().UTC()}
	accounts := account.NewSQLiteRepository(db)
	tokens := session.NewSQLiteTokenRepository(db)

	return &fixture{
		manager:  session.NewManager(accounts, tokens, signer, session.WithClock(clock.Now)),
		accounts: accounts,
		tokens:   tokens,
		signer:   signer,
		clock:    clock,
	}
}

/*
TestManager_RegisterThenLogin verifies a registered account can log in and
that both results carry a verifiable access token.
*/
func TestManager_RegisterThenLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	registered, err := f.manager.Register(ctx, "alice", "secret1")
	require.NoError(t, err)
	require.True(t, registered.Success)
	assert.NotEmpty(t, registered.RefreshToken)

	claims, err := f.signer.VerifyToken(registered.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.NotEmpty(t, claims.UserID)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, f.clock.Now().Add(session.AccessTokenTTL), claims.ExpiresAt.Time, time.Second)

	loggedIn, err := f.manager.Login(ctx, "alice", "secret1")
	require.NoError(t, err)
	require.True(t, loggedIn.Success)
	assert.Equal(t, session.ReasonNone, loggedIn.Reason)
	assert.NotEqual(t, registered.RefreshToken, loggedIn.RefreshToken)

	stored, err := f.accounts.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", stored.PasswordHash)
	assert.Equal(t, stored.ID, claims.UserID)
}

/*
TestManager_LongPassword verifies a password longer than bcrypt's 72-byte
input limit registers and logs in.
*/
func TestManager_LongPassword(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	password := strings.Repeat("p", 100)

	registered, err := f.manager.Register(ctx, "alice", password)
	require.NoError(t, err)
	require.True(t, registered.Success)

	loggedIn, err := f.manager.Login(ctx, "alice", password)
	require.NoError(t, err)
	assert.True(t, loggedIn.Success)

	rejected, err := f.manager.Login(ctx, "alice", strings.Repeat("p", 99)+"q")
	require.NoError(t, err)
	assert.False(t, rejected.Success)
	assert.Equal(t, session.ReasonInvalidCredentials, rejected.Reason)
}

/*
TestManager_RefreshIgnoresAccessToken verifies the access token passed to
Refresh is never inspected, whatever its shape.
*/
func TestManager_RefreshIgnoresAccessToken(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	registered, err := f.manager.Register(ctx, "alice", "secret1")
	require.NoError(t, err)
	require.True(t, registered.Success)

	rotated, err := f.manager.Refresh(ctx, "not.a.jwt", registered.RefreshToken)
	require.NoError(t, err)
	assert.True(t, rotated.Success)
}

/*
TestManager_RegisterDuplicate verifies that a second registration of the same
username is rejected, including a visually identical non-NFC spelling.
*/
func TestManager_RegisterDuplicate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	first, err := f.manager.Register(ctx, "r\u00e9my", "secret1")
	require.NoError(t, err)
	require.True(t, first.Success)

	tests := []struct {
		name     string
		username string
		success  bool
	}{
		{"exact_duplicate", "r\u00e9my", false},
		{"decomposed_duplicate", "re\u0301my", false},
		{"different_case", "R\u00e9my", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := f.manager.Register(ctx, tt.username, "secret1")
			require.NoError(t, err)
			assert.Equal(t, tt.success, result.Success)
			if !tt.success {
				assert.Equal(t, session.ReasonUsernameTaken, result.Reason)
				assert.Empty(t, result.AccessToken)
				assert.Empty(t, result.RefreshToken)
			}
		})
	}
}

/*
TestManager_RegisterInvalidInput verifies the manager rejects out-of-range input on its own.
*/
func TestManager_RegisterInvalidInput(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"short_username", "al", "secret1"},
		{"long_username", strings.Repeat("a", 51), "secret1"},
		{"short_password", "alice", "12345"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := f.manager.Register(ctx, tt.username, tt.password)
			require.NoError(t, err)
			assert.False(t, result.Success)
			assert.Equal(t, session.ReasonInvalidInput, result.Reason)
		})
	}
}

/*
TestManager_LoginIndistinguishable verifies an unknown username and a wrong
password produce the same rejection.
*/
func TestManager_LoginIndistinguishable(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.manager.Register(ctx, "alice", "secret1")
	require.NoError(t, err)

	wrongPassword, err := f.manager.Login(ctx, "alice", "wrong-password")
	require.NoError(t, err)

	unknownUser, err := f.manager.Login(ctx, "mallory", "secret1")
	require.NoError(t, err)

	assert.Equal(t, session.AuthResult{Reason: session.ReasonInvalidCredentials}, wrongPassword)
	assert.Equal(t, wrongPassword, unknownUser)
}

/*
TestManager_RefreshRotates verifies the single-use rotation chain.
*/
func TestManager_RefreshRotates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	registered, err := f.manager.Register(ctx, "alice", "secret1")
	require.NoError(t, err)

	// ── 1. First exchange succeeds ────────────────────────────────────────
	rotated, err := f.manager.Refresh(ctx, registered.AccessToken, registered.RefreshToken)
	require.NoError(t, err)
	require.True(t, rotated.Success)
	assert.NotEqual(t, registered.RefreshToken, rotated.RefreshToken)

	// ── 2. The consumed record is revoked ─────────────────────────────────
	record, err := f.tokens.FindByHash(ctx, sec.HashToken(registered.RefreshToken))
	require.NoError(t, err)
	require.NotNil(t, record.RevokedAt)
	assert.False(t, record.Active(f.clock.Now()))

	// ── 3. Replaying it fails ─────────────────────────────────────────────
	replayed, err := f.manager.Refresh(ctx, registered.AccessToken, registered.RefreshToken)
	require.NoError(t, err)
	assert.False(t, replayed.Success)
	assert.Equal(t, session.ReasonInvalidRefreshToken, replayed.Reason)

	// ── 4. The new token continues the chain ──────────────────────────────
	next, err := f.manager.Refresh(ctx, "", rotated.RefreshToken)
	require.NoError(t, err)
	assert.True(t, next.Success)
}

/*
TestManager_RefreshRejects covers unknown, empty and expired refresh tokens.
*/
func TestManager_RefreshRejects(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	registered, err := f.manager.Register(ctx, "alice", "secret1")
	require.NoError(t, err)

	for _, token := range []string{"", "never-issued"} {
		result, err := f.manager.Refresh(ctx, registered.AccessToken, token)
		require.NoError(t, err)
		assert.Equal(t, session.ReasonInvalidRefreshToken, result.Reason)
	}

	f.clock.Advance(session.RefreshTokenTTL + time.Second)

	expired, err := f.manager.Refresh(ctx, registered.AccessToken, registered.RefreshToken)
	require.NoError(t, err)
	assert.False(t, expired.Success)
	assert.Equal(t, session.ReasonInvalidRefreshToken, expired.Reason)

	// Expiry does not revoke.
	record, err := f.tokens.FindByHash(ctx, sec.HashToken(registered.RefreshToken))
	require.NoError(t, err)
	assert.Nil(t, record.RevokedAt)
}

/*
TestManager_RefreshReuseLogged verifies a replayed token is reported.
*/
func TestManager_RefreshReuseLogged(t *testing.T) {
	f := newFixture(t)

	var buffer bytes.Buffer
	ctx := ctxutil.WithLogger(context.Background(), slog.New(slog.NewJSONHandler(&buffer, nil)))

	registered, err := f.manager.Register(ctx, "alice", "secret1")
	require.NoError(t, err)

	_, err = f.manager.Refresh(ctx, "", registered.RefreshToken)
	require.NoError(t, err)
	assert.NotContains(t, buffer.String(), "refresh_token_reuse_detected")

	_, err = f.manager.Refresh(ctx, "", registered.RefreshToken)
	require.NoError(t, err)
	assert.Contains(t, buffer.String(), "refresh_token_reuse_detected")
}

/*
TestManager_ConcurrentRegister verifies exactly one of many racing
registrations of one username wins.
*/
func TestManager_ConcurrentRegister(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	const attempts = 8
	results := make([]session.AuthResult, attempts)
	errs := make([]error, attempts)

	var wg sync.WaitGroup
	for i := range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = f.manager.Register(ctx, "contested", "secret1")
		}()
	}
	wg.Wait()

	successes := 0
	for i := range attempts {
		require.NoError(t, errs[i])
		if results[i].Success {
			successes++
		} else {
			assert.Equal(t, session.ReasonUsernameTaken, results[i].Reason)
		}
	}
	assert.Equal(t, 1, successes)
}

/*
TestManager_ConcurrentRefresh verifies exactly one of many racing exchanges
of one refresh token wins.
*/
func TestManager_ConcurrentRefresh(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	registered, err := f.manager.Register(ctx, "alice", "secret1")
	require.NoError(t, err)

	const attempts = 8
	results := make([]session.AuthResult, attempts)
	errs := make([]error, attempts)

	var wg sync.WaitGroup
	for i := range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = f.manager.Refresh(ctx, registered.AccessToken, registered.RefreshToken)
		}()
	}
	wg.Wait()

	successes := 0
	for i := range attempts {
		require.NoError(t, errs[i])
		if results[i].Success {
			successes++
		}
	}
	assert.Equal(t, 1, successes)
}
