// Copyright (c) 2026 Murmur. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/murmur/internal/account"
	"github.com/taibuivan/murmur/internal/platform/apperr"
	requestutil "github.com/taibuivan/murmur/internal/platform/request"
	"github.com/taibuivan/murmur/internal/platform/respond"
	"github.com/taibuivan/murmur/internal/platform/validate"
	"github.com/taibuivan/murmur/pkg/textnorm"
)

// Handler implements the authentication HTTP endpoints.
//
// Handlers contain no business logic: they validate the payload, call the
// [Manager] and translate its [AuthResult] into a response.
type Handler struct {
	manager *Manager
}

// NewHandler constructs a new [Handler] with its manager dependency.
func NewHandler(manager *Manager) *Handler {
	return &Handler{manager: manager}
}

// Routes returns a [chi.Router] configured with authentication routes.
//
// # Endpoints
//   - POST /register : Creates an account and returns a token pair.
//   - POST /login    : Verifies credentials and returns a token pair.
//   - POST /refresh  : Rotates a refresh token.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Post("/refresh", handler.refresh)

	return router
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// register handles POST /api/v1/auth/register.
//
// # Returns
//   - 200 with a token pair on success.
//   - 400 if validation rules fail.
//   - 409 if the username is taken.
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	// ── 1. Payload Extraction ─────────────────────────────────────────────

	var input credentialsRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 2. Boundary Validation ────────────────────────────────────────────

	validator := &validate.Validator{}
	validator.
		Required("username", input.Username).
		Length("username", textnorm.Username(input.Username), account.MinUsernameLength, account.MaxUsernameLength).
		Length("password", input.Password, account.MinPasswordLength, 0)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 3. Application Execution ──────────────────────────────────────────

	result, err := handler.manager.Register(request.Context(), input.Username, input.Password)
	handler.write(writer, request, result, err)
}

// login handles POST /api/v1/auth/login.
//
// # Returns
//   - 200 with a token pair on success.
//   - 401 for bad credentials, without revealing which part was wrong.
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input credentialsRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required("username", input.Username).Required("password", input.Password)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.manager.Login(request.Context(), input.Username, input.Password)
	handler.write(writer, request, result, err)
}

// refresh handles POST /api/v1/auth/refresh.
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	var input refreshRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required("refresh_token", input.RefreshToken)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.manager.Refresh(request.Context(), input.AccessToken, input.RefreshToken)
	handler.write(writer, request, result, err)
}

func (handler *Handler) write(writer http.ResponseWriter, request *http.Request, result AuthResult, err error) {
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if !result.Success {
		respond.Error(writer, request, reasonError(result.Reason))
		return
	}

	respond.OK(writer, tokenResponse{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
	})
}

// reasonError maps a rejection onto its client-facing error.
func reasonError(reason Reason) *apperr.AppError {
	switch reason {
	case ReasonUsernameTaken:
		return apperr.Conflict("Username is already taken").WithCode("USERNAME_TAKEN")
	case ReasonInvalidCredentials:
		return apperr.Unauthorized("Invalid username or password").WithCode("INVALID_CREDENTIALS")
	case ReasonInvalidRefreshToken:
		return apperr.Unauthorized("Invalid or expired refresh token").WithCode("INVALID_REFRESH_TOKEN")
	default:
		return apperr.ValidationError("Invalid username or password format")
	}
}
