// Copyright (c) 2026 Murmur. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package conversation

import "context"

// MessageRepository defines the data access contract for messages.
//
// Messages are append-only: there is no update or delete.
type MessageRepository interface {
	// Create persists a new message.
	Create(ctx context.Context, message *Message) error

	// ListBetween returns every message exchanged between the two accounts, in
	// either direction, ordered by sent time and then insertion order.
	ListBetween(ctx context.Context, firstID, secondID string) ([]HistoryEntry, error)
}

var (
	_ MessageRepository = (*PostgresMessageRepository)(nil)
	_ MessageRepository = (*SQLiteMessageRepository)(nil)
)
