// Copyright (c) 2026 Murmur. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/taibuivan/murmur/internal/conversation"
	"github.com/taibuivan/murmur/internal/platform/config"
	"github.com/taibuivan/murmur/internal/platform/constants"
	"github.com/taibuivan/murmur/internal/platform/middleware"
	"github.com/taibuivan/murmur/internal/session"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
type Handlers struct {
	// Liveness is the /health handler; always 200 if the process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler; 200 when all deps are healthy.
	Readiness http.HandlerFunc

	// Session handles registration, login and refresh.
	Session *session.Handler

	// Conversation handles sending messages and reading history.
	Conversation *conversation.Handler

	// Stream serves live events over Server-Sent Events.
	Stream http.Handler
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
//
// The stream route is exempt from the request timeout and also accepts its
// bearer token from the access_token query parameter.
func NewServer(context context.Context, cfg *config.Config, log *slog.Logger, verifier middleware.TokenVerifier, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.RateLimit(context, cfg.RateLimitRPS, cfg.RateLimitBurst))
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	// Unauthenticated health probes for container orchestration.
	r.Group(func(probes chi.Router) {
		probes.Use(chimw.Timeout(constants.GlobalRequestTimeout))
		probes.Get("/health", h.Liveness)
		probes.Get("/ready", h.Readiness)
	})

	// # Application API
	// Domain-specific route groups mounted under versioned prefix.
	r.Route("/api/v1", func(api chi.Router) {
		api.Group(func(rest chi.Router) {
			rest.Use(chimw.Timeout(constants.GlobalRequestTimeout))
			rest.Use(middleware.Authenticate(verifier))

			rest.Mount("/auth", h.Session.Routes())

			rest.Group(func(protected chi.Router) {
				protected.Use(middleware.RequireAuth)
				protected.Mount("/messages", h.Conversation.Routes())
			})
		})

		api.Group(func(live chi.Router) {
			live.Use(middleware.TokenFromQuery)
			live.Use(middleware.Authenticate(verifier))
			live.Use(middleware.RequireAuth)
			live.Get("/stream", h.Stream.ServeHTTP)
		})
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// Handler exposes the composed router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
//
// Open streams are not tracked by Shutdown; the caller cancels their
// contexts through the server's base context.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}

// SetBaseContext makes every request context derive from ctx, so cancelling
// ctx ends long-lived streams.
func (s *Server) SetBaseContext(ctx context.Context) {
	s.httpServer.BaseContext = func(_ net.Listener) context.Context { return ctx }
}
