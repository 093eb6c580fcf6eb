// Copyright (c) 2026 Murmur. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import "context"

// Repository defines the data access contract for accounts.
//
// # Implementations
//
// PostgreSQL ([PostgresRepository]) in production, SQLite ([SQLiteRepository])
// for local development and tests.
type Repository interface {
	// FindByID returns the account with the given ID.
	//
	// Returns [dberr.ErrNotFound] if the account does not exist.
	FindByID(ctx context.Context, id string) (*Account, error)

	// FindByUsername returns the account with the given (already normalized) username.
	//
	// Returns [dberr.ErrNotFound] if the username is available.
	FindByUsername(ctx context.Context, username string) (*Account, error)

	// Create persists a brand-new account.
	//
	// Returns [dberr.ErrConflict] if the username is already taken.
	Create(ctx context.Context, account *Account) error
}

var (
	_ Repository = (*PostgresRepository)(nil)
	_ Repository = (*SQLiteRepository)(nil)
)
