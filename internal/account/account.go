// Copyright (c) 2026 Murmur. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package account defines the Account entity and its storage contract.
//
// # Architecture
//
// Accounts are shared by the session and conversation packages. Neither holds
// references to the other's records; relationships are resolved by queries
// against the store.
package account

import "time"

// Username and password bounds, counted in Unicode code points.
const (
	MinUsernameLength = 3
	MaxUsernameLength = 50
	MinPasswordLength = 6
)

// Account represents a registered user.
//
// # Rules
//   - ID is a UUIDv7 string and never changes.
//   - Username is unique, case-sensitive and stored in NFC form.
//   - PasswordHash is a salted bcrypt hash; the raw password is never stored.
type Account struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}
