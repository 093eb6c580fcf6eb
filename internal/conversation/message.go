// Copyright (c) 2026 Murmur. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package conversation owns direct-message persistence, history retrieval and
// the hand-off of new messages to live delivery.
package conversation

import "time"

// Content bounds, counted in Unicode code points.
const (
	MinContentLength = 1
	MaxContentLength = 2000
)

// Message is one directed communication between two distinct accounts.
type Message struct {
	ID         string
	SenderID   string
	ReceiverID string
	Content    string
	SentAt     time.Time
}

// HistoryEntry is a stored message joined with its sender's username.
type HistoryEntry struct {
	Message
	SenderUsername string
}

// MessageView is the client-facing shape of a message, used both for history
// rows and for live-delivery payloads.
type MessageView struct {
	ID             string    `json:"id"`
	SenderUsername string    `json:"sender_username"`
	Content        string    `json:"content"`
	SentAt         time.Time `json:"sent_at"`
	IsMe           bool      `json:"is_me"`
}
