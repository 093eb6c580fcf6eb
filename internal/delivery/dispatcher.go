// Copyright (c) 2026 Murmur. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package delivery pushes live events to connected clients.
//
// # Architecture
//
//	SendMessage ──Enqueue──▶ Dispatcher (bounded queue, N workers)
//	                              │ Publish
//	                              ▼
//	                        Redis channel delivery:user:<id>
//	                              │ Subscribe
//	                              ▼
//	                        StreamHandler (SSE) ──▶ client
//
// Delivery is best-effort end to end: a full queue drops the event, a failed
// publish is logged and discarded, and a client that is not connected simply
// misses it. History retrieval is the source of truth.
package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Envelope is the wire shape of a live event.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Publisher sends an envelope to one recipient's channel.
type Publisher interface {
	Publish(ctx context.Context, recipientID string, envelope Envelope) error
}

// DispatcherConfig sizes a [Dispatcher].
type DispatcherConfig struct {
	QueueSize int
	Workers   int
	Timeout   time.Duration
}

type job struct {
	recipientID string
	event       string
	payload     any
}

// Dispatcher decouples event producers from the publisher with a bounded
// queue drained by a fixed pool of workers.
//
// # Concurrency
//
// Enqueue is safe for concurrent use and never blocks. Close must be called
// at most once, after which Enqueue rejects everything.
type Dispatcher struct {
	publisher Publisher
	logger    *slog.Logger
	config    DispatcherConfig

	queue  chan job
	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher constructs a [Dispatcher]. Workers start with [Dispatcher.Run].
func NewDispatcher(publisher Publisher, logger *slog.Logger, config DispatcherConfig) *Dispatcher {
	if config.QueueSize < 1 {
		config.QueueSize = 1
	}
	if config.Workers < 1 {
		config.Workers = 1
	}
	if config.Timeout <= 0 {
		config.Timeout = 2 * time.Second
	}

	return &Dispatcher{
		publisher: publisher,
		logger:    logger,
		config:    config,
		queue:     make(chan job, config.QueueSize),
	}
}

// Run starts the worker pool and returns immediately.
//
// Workers keep draining after ctx is cancelled until [Dispatcher.Close].
func (dispatcher *Dispatcher) Run(ctx context.Context) {
	for id := range dispatcher.config.Workers {
		dispatcher.wg.Add(1)
		go dispatcher.work(ctx, id)
	}

	dispatcher.logger.Info("delivery_dispatcher_started",
		slog.Int("workers", dispatcher.config.Workers),
		slog.Int("queue_size", dispatcher.config.QueueSize),
	)
}

// Enqueue schedules an event for recipientID without blocking.
//
// It returns false when the dispatcher is closed or the queue is full.
func (dispatcher *Dispatcher) Enqueue(recipientID, event string, payload any) bool {
	dispatcher.mu.RLock()
	defer dispatcher.mu.RUnlock()

	if dispatcher.closed {
		return false
	}

	select {
	case dispatcher.queue <- job{recipientID: recipientID, event: event, payload: payload}:
		return true
	default:
		dispatcher.logger.Warn("delivery_dropped",
			slog.String("recipient_id", recipientID),
			slog.String("event", event),
			slog.String("reason", "queue_full"),
		)
		return false
	}
}

// Close stops intake, lets the workers drain what is queued and waits for them.
func (dispatcher *Dispatcher) Close() {
	dispatcher.mu.Lock()
	if !dispatcher.closed {
		dispatcher.closed = true
		close(dispatcher.queue)
	}
	dispatcher.mu.Unlock()

	dispatcher.wg.Wait()
	dispatcher.logger.Info("delivery_dispatcher_stopped")
}

func (dispatcher *Dispatcher) work(ctx context.Context, id int) {
	defer dispatcher.wg.Done()

	// Queued events are still attempted during shutdown.
	base := context.WithoutCancel(ctx)

	for next := range dispatcher.queue {
		if err := dispatcher.deliver(base, next); err != nil {
			dispatcher.logger.Warn("delivery_failed",
				slog.Int("worker", id),
				slog.String("recipient_id", next.recipientID),
				slog.String("event", next.event),
				slog.Any("error", err),
			)
		}
	}
}

func (dispatcher *Dispatcher) deliver(ctx context.Context, next job) error {
	data, err := json.Marshal(next.payload)
	if err != nil {
		return fmt.Errorf("delivery_marshal_failed: %w", err)
	}

	publishCtx, cancel := context.WithTimeout(ctx, dispatcher.config.Timeout)
	defer cancel()

	return dispatcher.publisher.Publish(publishCtx, next.recipientID, Envelope{Event: next.event, Data: data})
}
