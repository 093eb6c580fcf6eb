// Copyright (c) 2026 Murmur. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/taibuivan/murmur/internal/account"
	"github.com/taibuivan/murmur/internal/platform/ctxutil"
	"github.com/taibuivan/murmur/internal/platform/dberr"
	"github.com/taibuivan/murmur/internal/platform/sec"
	"github.com/taibuivan/murmur/pkg/textnorm"
	"github.com/taibuivan/murmur/pkg/uuidv7"
)

// TokenSigner mints signed access tokens.
type TokenSigner interface {
	GenerateAccessToken(userID, username, tokenID string, timeToLive time.Duration, now time.Time) (string, error)
}

// Manager implements registration, login and refresh-token rotation.
//
// # Review Process
//
// This type is critical for security. Any changes to hashing, token issuance
// or rotation must be reviewed with the same care as a schema change.
//
// # Error Contract
//
// Every operation returns ([AuthResult], error). Domain rejections are carried
// in the result; the error is non-nil only for infrastructure faults.
type Manager struct {
	accounts account.Repository
	tokens   TokenRepository
	signer   TokenSigner
	clock    func() time.Time
}

// Option configures a [Manager].
type Option func(*Manager)

// WithClock replaces the wall clock used for every issued and compared timestamp.
func WithClock(clock func() time.Time) Option {
	return func(manager *Manager) {
		manager.clock = clock
	}
}

// NewManager constructs a new [Manager] with its stores and token signer.
func NewManager(accounts account.Repository, tokens TokenRepository, signer TokenSigner, options ...Option) *Manager {
	manager := &Manager{
		accounts: accounts,
		tokens:   tokens,
		signer:   signer,
		clock:    time.Now,
	}
	for _, option := range options {
		option(manager)
	}
	return manager
}

// Register creates an account and opens its first session.
//
// # Business Rules
//   - Usernames are NFC-normalized, 3 to 50 characters, and unique.
//   - Passwords are at least 6 characters and stored only as a bcrypt hash.
//   - Losing a concurrent race for the same username yields UsernameTaken.
func (manager *Manager) Register(context context.Context, username, password string) (AuthResult, error) {
	username = textnorm.Username(username)

	// ── 1. Input Bounds ───────────────────────────────────────────────────

	usernameLength := textnorm.RuneLen(username)
	if usernameLength < account.MinUsernameLength || usernameLength > account.MaxUsernameLength ||
		textnorm.RuneLen(password) < account.MinPasswordLength {
		return rejected(ReasonInvalidInput), nil
	}

	// ── 2. Uniqueness Check ───────────────────────────────────────────────

	_, err := manager.accounts.FindByUsername(context, username)
	if err == nil {
		return rejected(ReasonUsernameTaken), nil
	}
	if !errors.Is(err, dberr.ErrNotFound) {
		return AuthResult{}, fmt.Errorf("session_register_lookup_failed: %w", err)
	}

	// ── 3. Security ───────────────────────────────────────────────────────

	hashedPassword, err := sec.HashPassword(password)
	if err != nil {
		return AuthResult{}, fmt.Errorf("session_register_hash_failed: %w", err)
	}

	// ── 4. Persistence ────────────────────────────────────────────────────

	created := &account.Account{
		ID:           uuidv7.New(),
		Username:     username,
		PasswordHash: hashedPassword,
		CreatedAt:    manager.clock().UTC(),
	}

	if err := manager.accounts.Create(context, created); err != nil {
		// The unique index is the arbiter when two registrations race.
		if errors.Is(err, dberr.ErrConflict) {
			return rejected(ReasonUsernameTaken), nil
		}
		return AuthResult{}, fmt.Errorf("session_register_create_failed: %w", err)
	}

	// ── 5. Session ────────────────────────────────────────────────────────

	return manager.issueSession(context, created)
}

// Login verifies credentials and opens a new session.
//
// An unknown username and a wrong password produce the same result and cost
// the same bcrypt work.
func (manager *Manager) Login(context context.Context, username, password string) (AuthResult, error) {

	// ── 1. Fetch Account ──────────────────────────────────────────────────

	found, err := manager.accounts.FindByUsername(context, textnorm.Username(username))
	if err != nil {
		if !errors.Is(err, dberr.ErrNotFound) {
			return AuthResult{}, fmt.Errorf("session_login_lookup_failed: %w", err)
		}
		sec.BurnPasswordCheck(password)
		return rejected(ReasonInvalidCredentials), nil
	}

	// ── 2. Security Verification ──────────────────────────────────────────

	if !sec.CheckPasswordHash(password, found.PasswordHash) {
		return rejected(ReasonInvalidCredentials), nil
	}

	// ── 3. Session ────────────────────────────────────────────────────────

	return manager.issueSession(context, found)
}

// Refresh exchanges an active refresh token for a new token pair.
//
// The second argument is the client's current access token. It is an opaque
// passthrough: never parsed or validated, and it may already be expired.
// The refresh token is consumed with a single conditional update, so two
// concurrent exchanges of one token yield exactly one success.
func (manager *Manager) Refresh(context context.Context, _, refreshToken string) (AuthResult, error) {
	if refreshToken == "" {
		return rejected(ReasonInvalidRefreshToken), nil
	}

	// ── 1. Rotation (Consume Old Token) ───────────────────────────────────

	tokenHash := sec.HashToken(refreshToken)
	accountID, err := manager.tokens.Consume(context, tokenHash, manager.clock().UTC())
	if err != nil {
		if !errors.Is(err, dberr.ErrNotFound) {
			return AuthResult{}, fmt.Errorf("session_refresh_consume_failed: %w", err)
		}
		manager.detectReuse(context, tokenHash)
		return rejected(ReasonInvalidRefreshToken), nil
	}

	// ── 2. Find Account ───────────────────────────────────────────────────

	owner, err := manager.accounts.FindByID(context, accountID)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return rejected(ReasonInvalidRefreshToken), nil
		}
		return AuthResult{}, fmt.Errorf("session_refresh_account_lookup_failed: %w", err)
	}

	// ── 3. Issue New Tokens ───────────────────────────────────────────────

	return manager.issueSession(context, owner)
}

// detectReuse logs when a token that was already exchanged is presented again.
func (manager *Manager) detectReuse(context context.Context, tokenHash string) {
	token, err := manager.tokens.FindByHash(context, tokenHash)
	if err != nil || token.RevokedAt == nil {
		return
	}

	ctxutil.GetLogger(context).WarnContext(context, "refresh_token_reuse_detected",
		slog.String("account_id", token.AccountID),
		slog.String("token_id", token.ID),
		slog.Time("revoked_at", *token.RevokedAt),
	)
}

// issueSession mints an access token and persists a fresh refresh token.
func (manager *Manager) issueSession(context context.Context, owner *account.Account) (AuthResult, error) {
	now := manager.clock().UTC()

	// ── 1. Access Token ───────────────────────────────────────────────────

	accessToken, err := manager.signer.GenerateAccessToken(owner.ID, owner.Username, uuidv7.New(), AccessTokenTTL, now)
	if err != nil {
		return AuthResult{}, fmt.Errorf("session_access_token_failed: %w", err)
	}

	// ── 2. Refresh Token ──────────────────────────────────────────────────

	refreshToken, err := sec.GenerateSecureToken(RefreshTokenBytes)
	if err != nil {
		return AuthResult{}, fmt.Errorf("session_refresh_token_failed: %w", err)
	}

	record := &RefreshToken{
		ID:        uuidv7.New(),
		TokenHash: sec.HashToken(refreshToken),
		AccountID: owner.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(RefreshTokenTTL),
	}

	if err := manager.tokens.Create(context, record); err != nil {
		return AuthResult{}, fmt.Errorf("session_refresh_token_persist_failed: %w", err)
	}

	return AuthResult{
		Success:      true,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
