// Copyright (c) 2026 Murmur. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/murmur/internal/platform/constants"
)

// subscriptionBuffer bounds how far a slow stream may fall behind.
const subscriptionBuffer = 32

// RedisBroker publishes and subscribes to per-recipient Redis pub/sub channels.
type RedisBroker struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRedisBroker constructs a [RedisBroker] on an existing client.
func NewRedisBroker(client *redis.Client, logger *slog.Logger) *RedisBroker {
	return &RedisBroker{client: client, logger: logger}
}

// ChannelFor returns the pub/sub channel name for a recipient.
func ChannelFor(recipientID string) string {
	return constants.RedisPrefixDelivery + recipientID
}

// Publish sends the envelope to the recipient's channel.
//
// Publishing to a channel nobody is subscribed to is not an error.
func (broker *RedisBroker) Publish(ctx context.Context, recipientID string, envelope Envelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("redis_broker_marshal_failed: %w", err)
	}

	if err := broker.client.Publish(ctx, ChannelFor(recipientID), payload).Err(); err != nil {
		return fmt.Errorf("redis_broker_publish_failed: %w", err)
	}

	return nil
}

// Subscribe listens on the recipient's channel until ctx is cancelled.
//
// The returned channel is closed when the subscription ends. Envelopes that
// arrive while the buffer is full wait; malformed payloads are skipped.
func (broker *RedisBroker) Subscribe(ctx context.Context, recipientID string) (<-chan Envelope, error) {
	pubsub := broker.client.Subscribe(ctx, ChannelFor(recipientID))

	// Wait for the subscription confirmation so no event is missed after return.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("redis_broker_subscribe_failed: %w", err)
	}

	out := make(chan Envelope, subscriptionBuffer)

	go func() {
		defer close(out)
		defer func() { _ = pubsub.Close() }()

		messages := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case message, ok := <-messages:
				if !ok {
					return
				}

				var envelope Envelope
				if err := json.Unmarshal([]byte(message.Payload), &envelope); err != nil {
					broker.logger.Warn("delivery_malformed_envelope",
						slog.String("channel", message.Channel),
						slog.Any("error", err),
					)
					continue
				}

				select {
				case out <- envelope:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}
