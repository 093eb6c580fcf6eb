// Copyright (c) 2026 Murmur. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package conversation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/taibuivan/murmur/internal/account"
	"github.com/taibuivan/murmur/internal/platform/constants"
	"github.com/taibuivan/murmur/internal/platform/dberr"
	"github.com/taibuivan/murmur/pkg/textnorm"
	"github.com/taibuivan/murmur/pkg/uuidv7"
)

// Notifier hands an event to live delivery without waiting for it.
//
// Enqueue reports whether the event was accepted; a false return means it was
// dropped and is never retried.
type Notifier interface {
	Enqueue(recipientID, event string, payload any) bool
}

// Service implements message sending and history retrieval.
//
// # Delivery Contract
//
// A message is stored before anything is pushed. Live delivery is best-effort:
// a full queue or a broker outage never fails or delays SendMessage.
type Service struct {
	accounts account.Repository
	messages MessageRepository
	notifier Notifier
	clock    func() time.Time
}

// Option configures a [Service].
type Option func(*Service)

// WithClock replaces the wall clock used to stamp sent messages.
func WithClock(clock func() time.Time) Option {
	return func(service *Service) {
		service.clock = clock
	}
}

// NewService constructs a new [Service].
func NewService(accounts account.Repository, messages MessageRepository, notifier Notifier, options ...Option) *Service {
	service := &Service{
		accounts: accounts,
		messages: messages,
		notifier: notifier,
		clock:    time.Now,
	}
	for _, option := range options {
		option(service)
	}
	return service
}

// SendMessage stores a message from senderID to receiverUsername and pushes a
// ReceiveMessage event to the receiver.
//
// # Business Rules
//  1. The sender must exist.
//  2. Sending to oneself is rejected.
//  3. The receiver must exist.
//  4. Content is 1 to 2000 characters.
func (service *Service) SendMessage(context context.Context, senderID, receiverUsername, content string) (SendResult, error) {

	// ── 1. Resolve Sender ─────────────────────────────────────────────────

	sender, err := service.accounts.FindByID(context, senderID)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return SendResult{Reason: ReasonSenderNotFound}, nil
		}
		return SendResult{}, fmt.Errorf("conversation_sender_lookup_failed: %w", err)
	}

	// ── 2. Self Check ─────────────────────────────────────────────────────

	receiverUsername = textnorm.Username(receiverUsername)
	if receiverUsername == sender.Username {
		return SendResult{Reason: ReasonSelfMessageNotAllowed}, nil
	}

	// ── 3. Resolve Receiver ───────────────────────────────────────────────

	receiver, err := service.accounts.FindByUsername(context, receiverUsername)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return SendResult{Reason: ReasonReceiverNotFound}, nil
		}
		return SendResult{}, fmt.Errorf("conversation_receiver_lookup_failed: %w", err)
	}

	// ── 4. Content Bounds ─────────────────────────────────────────────────

	if length := textnorm.RuneLen(content); length < MinContentLength || length > MaxContentLength {
		return SendResult{Reason: ReasonInvalidContent}, nil
	}

	// ── 5. Persistence ────────────────────────────────────────────────────

	// Postgres keeps microseconds; the pushed view must equal the stored row.
	message := &Message{
		ID:         uuidv7.New(),
		SenderID:   sender.ID,
		ReceiverID: receiver.ID,
		Content:    content,
		SentAt:     service.clock().UTC().Truncate(time.Microsecond),
	}

	if err := service.messages.Create(context, message); err != nil {
		return SendResult{}, fmt.Errorf("conversation_message_persist_failed: %w", err)
	}

	// ── 6. Live Delivery (best-effort) ────────────────────────────────────

	service.notifier.Enqueue(receiver.ID, constants.EventReceiveMessage, MessageView{
		ID:             message.ID,
		SenderUsername: sender.Username,
		Content:        message.Content,
		SentAt:         message.SentAt,
		IsMe:           false,
	})

	return SendResult{Success: true}, nil
}

// GetConversation returns the viewer's history with otherUsername, oldest first.
//
// An unknown username yields an empty slice, not an error.
func (service *Service) GetConversation(context context.Context, viewerID, otherUsername string) ([]MessageView, error) {
	other, err := service.accounts.FindByUsername(context, textnorm.Username(otherUsername))
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return []MessageView{}, nil
		}
		return nil, fmt.Errorf("conversation_other_lookup_failed: %w", err)
	}

	entries, err := service.messages.ListBetween(context, viewerID, other.ID)
	if err != nil {
		// A viewer id no store can match has no history.
		if errors.Is(err, dberr.ErrNotFound) {
			return []MessageView{}, nil
		}
		return nil, fmt.Errorf("conversation_history_failed: %w", err)
	}

	views := make([]MessageView, 0, len(entries))
	for _, entry := range entries {
		views = append(views, MessageView{
			ID:             entry.ID,
			SenderUsername: entry.SenderUsername,
			Content:        entry.Content,
			SentAt:         entry.SentAt,
			IsMe:           entry.SenderID == viewerID,
		})
	}

	return views, nil
}
