// Copyright (c) 2026 Murmur. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package conversation

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/murmur/internal/platform/apperr"
	requestutil "github.com/taibuivan/murmur/internal/platform/request"
	"github.com/taibuivan/murmur/internal/platform/respond"
	"github.com/taibuivan/murmur/internal/platform/validate"
)

// Handler implements the messaging HTTP endpoints. Every route requires an
// authenticated caller.
type Handler struct {
	service *Service
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] configured with messaging routes.
//
// # Endpoints
//   - POST /           : Sends a message.
//   - GET  /{username} : Returns the caller's history with username.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/", handler.send)
	router.Get("/{username}", handler.history)

	return router
}

type sendRequest struct {
	ReceiverUsername string `json:"receiver_username"`
	Content          string `json:"content"`
}

// send handles POST /api/v1/messages.
//
// # Returns
//   - 204 once the message is stored.
//   - 400 for invalid content or a self-addressed message.
//   - 404 if the receiver does not exist.
func (handler *Handler) send(writer http.ResponseWriter, request *http.Request) {
	// ── 1. Identity ───────────────────────────────────────────────────────

	senderID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 2. Payload Extraction & Validation ────────────────────────────────

	var input sendRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.
		Required("receiver_username", input.ReceiverUsername).
		Required("content", input.Content).
		Length("content", input.Content, MinContentLength, MaxContentLength)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 3. Application Execution ──────────────────────────────────────────

	result, err := handler.service.SendMessage(request.Context(), senderID, input.ReceiverUsername, input.Content)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if !result.Success {
		respond.Error(writer, request, reasonError(result.Reason))
		return
	}

	respond.NoContent(writer)
}

// history handles GET /api/v1/messages/{username}.
func (handler *Handler) history(writer http.ResponseWriter, request *http.Request) {
	viewerID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	views, err := handler.service.GetConversation(request.Context(), viewerID, requestutil.Param(request, "username"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, views)
}

func reasonError(reason Reason) *apperr.AppError {
	switch reason {
	case ReasonSenderNotFound:
		return apperr.Unauthorized("Sender account no longer exists").WithCode("SENDER_NOT_FOUND")
	case ReasonSelfMessageNotAllowed:
		return apperr.ValidationError("You cannot send a message to yourself").WithCode("SELF_MESSAGE_NOT_ALLOWED")
	case ReasonReceiverNotFound:
		return apperr.NotFound("Receiver").WithCode("RECEIVER_NOT_FOUND")
	default:
		return apperr.ValidationError("Content must be between 1 and 2000 characters").WithCode("INVALID_CONTENT")
	}
}
