// Copyright (c) 2026 Murmur. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package delivery_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/murmur/internal/delivery"
	"github.com/taibuivan/murmur/internal/platform/ctxutil"
	"github.com/taibuivan/murmur/internal/platform/sec"
)

type fakeSubscriber struct {
	events      chan delivery.Envelope
	err         error
	recipientID string
}

func (subscriber *fakeSubscriber) Subscribe(ctx context.Context, recipientID string) (<-chan delivery.Envelope, error) {
	subscriber.recipientID = recipientID
	return subscriber.events, subscriber.err
}

func authenticated(request *http.Request, userID string) *http.Request {
	return request.WithContext(ctxutil.WithAuthUser(request.Context(), &sec.AuthClaims{UserID: userID}))
}

/*
TestStreamHandler_WritesFrames verifies envelopes are framed as SSE events.
*/
func TestStreamHandler_WritesFrames(t *testing.T) {
	subscriber := &fakeSubscriber{events: make(chan delivery.Envelope, 2)}
	handler := delivery.NewStreamHandler(subscriber, time.Hour)

	subscriber.events <- delivery.Envelope{Event: "ReceiveMessage", Data: json.RawMessage(`{"content":"hi"}`)}
	close(subscriber.events)

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, authenticated(httptest.NewRequest(http.MethodGet, "/stream", nil), "user-1"))

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "text/event-stream", recorder.Header().Get("Content-Type"))
	assert.Equal(t, "user-1", subscriber.recipientID)
	assert.Contains(t, recorder.Body.String(), "event: ReceiveMessage\ndata: {\"content\":\"hi\"}\n\n")
	assert.True(t, recorder.Flushed)
}

/*
TestStreamHandler_KeepAlive verifies idle streams receive comment frames and
end when the client goes away.
*/
func TestStreamHandler_KeepAlive(t *testing.T) {
	subscriber := &fakeSubscriber{events: make(chan delivery.Envelope)}
	handler := delivery.NewStreamHandler(subscriber, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 80*time.Millisecond)
	defer cancel()

	recorder := httptest.NewRecorder()
	request := authenticated(httptest.NewRequest(http.MethodGet, "/stream", nil).WithContext(ctx), "user-1")
	handler.ServeHTTP(recorder, request)

	assert.Contains(t, recorder.Body.String(), ": keep-alive\n\n")
}

/*
TestStreamHandler_Errors covers anonymous callers and subscription failures.
*/
func TestStreamHandler_Errors(t *testing.T) {
	t.Run("anonymous", func(t *testing.T) {
		handler := delivery.NewStreamHandler(&fakeSubscriber{}, time.Hour)
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/stream", nil))
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("subscribe_failed", func(t *testing.T) {
		handler := delivery.NewStreamHandler(&fakeSubscriber{err: errors.New("redis down")}, time.Hour)
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, authenticated(httptest.NewRequest(http.MethodGet, "/stream", nil), "user-1"))
		require.Equal(t, http.StatusInternalServerError, recorder.Code)
		assert.NotContains(t, recorder.Body.String(), "redis down")
	})
}
