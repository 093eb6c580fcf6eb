// Copyright (c) 2026 Murmur. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package conversation

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/murmur/internal/platform/dberr"
)

// PostgresMessageRepository implements [MessageRepository] using pgx.
type PostgresMessageRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresMessageRepository creates a new PostgreSQL implementation of [MessageRepository].
func NewPostgresMessageRepository(pool *pgxpool.Pool) *PostgresMessageRepository {
	return &PostgresMessageRepository{pool: pool}
}

// Create inserts a message row. The identity column records insertion order.
func (repository *PostgresMessageRepository) Create(ctx context.Context, message *Message) error {
	const query = `
		INSERT INTO messages (id, sender_id, receiver_id, content, sent_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := repository.pool.Exec(ctx, query,
		message.ID,
		message.SenderID,
		message.ReceiverID,
		message.Content,
		message.SentAt,
	)

	return dberr.Wrap(err, "postgres_message_repo_create_failed")
}

// ListBetween reads the pair's history with one joined query.
func (repository *PostgresMessageRepository) ListBetween(ctx context.Context, firstID, secondID string) ([]HistoryEntry, error) {
	const query = `
		SELECT m.id, m.sender_id, m.receiver_id, m.content, m.sent_at, a.username
		FROM messages m
		JOIN accounts a ON a.id = m.sender_id
		WHERE (m.sender_id = $1 AND m.receiver_id = $2)
		   OR (m.sender_id = $2 AND m.receiver_id = $1)
		ORDER BY m.sent_at ASC, m.seq ASC`

	rows, err := repository.pool.Query(ctx, query, firstID, secondID)
	if err != nil {
		return nil, dberr.Wrap(err, "postgres_message_repo_list_failed")
	}

	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (HistoryEntry, error) {
		var entry HistoryEntry
		err := row.Scan(
			&entry.ID,
			&entry.SenderID,
			&entry.ReceiverID,
			&entry.Content,
			&entry.SentAt,
			&entry.SenderUsername,
		)
		return entry, err
	})
	if err != nil {
		return nil, dberr.Wrap(err, "postgres_message_repo_scan_failed")
	}

	return entries, nil
}
