// Copyright (c) 2026 Murmur. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package delivery

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/taibuivan/murmur/internal/platform/apperr"
	"github.com/taibuivan/murmur/internal/platform/ctxutil"
	requestutil "github.com/taibuivan/murmur/internal/platform/request"
	"github.com/taibuivan/murmur/internal/platform/respond"
)

// Subscriber opens a live event feed for one recipient.
//
// The returned channel must close once ctx is cancelled.
type Subscriber interface {
	Subscribe(ctx context.Context, recipientID string) (<-chan Envelope, error)
}

// StreamHandler serves the authenticated caller's live events as Server-Sent Events.
type StreamHandler struct {
	subscriber Subscriber
	keepAlive  time.Duration
}

// NewStreamHandler constructs a [StreamHandler].
func NewStreamHandler(subscriber Subscriber, keepAlive time.Duration) *StreamHandler {
	return &StreamHandler{subscriber: subscriber, keepAlive: keepAlive}
}

// ServeHTTP handles GET /api/v1/stream.
//
// # Flow
//  1. Resolve the caller from the authenticated context.
//  2. Subscribe to the caller's channel.
//  3. Write each envelope as an SSE frame, with periodic keep-alive comments.
//  4. Return when the client disconnects or the subscription ends.
func (handler *StreamHandler) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	logger := ctxutil.GetLogger(request.Context())

	// ── 1. Identity ───────────────────────────────────────────────────────

	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 2. Subscription ───────────────────────────────────────────────────

	ctx, cancel := context.WithCancel(request.Context())
	defer cancel()

	events, err := handler.subscriber.Subscribe(ctx, userID)
	if err != nil {
		respond.Error(writer, request, apperr.Internal(err))
		return
	}

	controller := http.NewResponseController(writer)

	// The server-wide write timeout would otherwise cut the stream.
	_ = controller.SetWriteDeadline(time.Time{})

	header := writer.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")
	writer.WriteHeader(http.StatusOK)

	if _, err := fmt.Fprint(writer, ": connected\n\n"); err != nil {
		return
	}
	if err := controller.Flush(); err != nil {
		logger.ErrorContext(ctx, "stream_flush_unsupported", slog.Any("error", err))
		return
	}

	logger.InfoContext(ctx, "stream_opened")
	defer logger.InfoContext(ctx, "stream_closed")

	// ── 3. Event Loop ─────────────────────────────────────────────────────

	ticker := time.NewTicker(handler.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			if _, err := fmt.Fprint(writer, ": keep-alive\n\n"); err != nil {
				return
			}

		case envelope, ok := <-events:
			if !ok {
				return
			}
			if _, err := fmt.Fprintf(writer, "event: %s\ndata: %s\n\n", envelope.Event, envelope.Data); err != nil {
				return
			}
		}

		if err := controller.Flush(); err != nil {
			return
		}
	}
}
