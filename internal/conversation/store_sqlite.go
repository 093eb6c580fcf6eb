// Copyright (c) 2026 Murmur. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package conversation

import (
	"context"
	"database/sql"
	"time"

	"github.com/taibuivan/murmur/internal/platform/dberr"
)

// SQLiteMessageRepository implements [MessageRepository] on database/sql.
type SQLiteMessageRepository struct {
	db *sql.DB
}

// NewSQLiteMessageRepository creates a new SQLite implementation of [MessageRepository].
func NewSQLiteMessageRepository(db *sql.DB) *SQLiteMessageRepository {
	return &SQLiteMessageRepository{db: db}
}

// Create inserts a message row. The rowid records insertion order.
func (repository *SQLiteMessageRepository) Create(ctx context.Context, message *Message) error {
	const query = `
		INSERT INTO messages (id, sender_id, receiver_id, content, sent_at)
		VALUES (?, ?, ?, ?, ?)`

	_, err := repository.db.ExecContext(ctx, query,
		message.ID,
		message.SenderID,
		message.ReceiverID,
		message.Content,
		message.SentAt.UnixNano(),
	)

	return dberr.Wrap(err, "sqlite_message_repo_create_failed")
}

// ListBetween reads the pair's history with one joined query.
func (repository *SQLiteMessageRepository) ListBetween(ctx context.Context, firstID, secondID string) ([]HistoryEntry, error) {
	const query = `
		SELECT m.id, m.sender_id, m.receiver_id, m.content, m.sent_at, a.username
		FROM messages m
		JOIN accounts a ON a.id = m.sender_id
		WHERE (m.sender_id = ? AND m.receiver_id = ?)
		   OR (m.sender_id = ? AND m.receiver_id = ?)
		ORDER BY m.sent_at ASC, m.rowid ASC`

	rows, err := repository.db.QueryContext(ctx, query, firstID, secondID, secondID, firstID)
	if err != nil {
		return nil, dberr.Wrap(err, "sqlite_message_repo_list_failed")
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var (
			entry  HistoryEntry
			sentAt int64
		)
		if err := rows.Scan(
			&entry.ID,
			&entry.SenderID,
			&entry.ReceiverID,
			&entry.Content,
			&sentAt,
			&entry.SenderUsername,
		); err != nil {
			return nil, dberr.Wrap(err, "sqlite_message_repo_scan_failed")
		}
		entry.SentAt = time.Unix(0, sentAt).UTC()
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "sqlite_message_repo_rows_failed")
	}

	return entries, nil
}
