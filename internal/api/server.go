// Copyright (c) 2026 Yomira. All rights reserved.
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
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/taibuivan/authpanel/internal/platform/apperr"
	"github.com/taibuivan/authpanel/internal/platform/config"
	"github.com/taibuivan/authpanel/internal/platform/constants"
	"github.com/taibuivan/authpanel/internal/platform/middleware"
	"github.com/taibuivan/authpanel/internal/platform/respond"
	"github.com/taibuivan/authpanel/internal/users/account"
	"github.com/taibuivan/authpanel/internal/users/auth"
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

// Handlers groups all HTTP handler sets.
type Handlers struct {
	// Liveness is the /health handler; always 200 while the process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler; 200 when all dependencies are healthy.
	Readiness http.HandlerFunc

	// Auth handles registration, login and password recovery.
	Auth *auth.Handler

	// Account handles the signed-in area.
	Account *account.Handler

	// Shell serves the browser application for every other GET.
	Shell http.Handler
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
//
// The rate limiter cleanup goroutines stop when ctx is cancelled.
func NewServer(ctx context.Context, cfg *config.Config, log *slog.Logger, verifier middleware.TokenVerifier, h Handlers) *Server {
	r := chi.NewRouter()

	globalLimiter := middleware.DefaultRateLimiter()
	credentialLimiter := middleware.CredentialRateLimiter()
	go globalLimiter.Run(ctx)
	go credentialLimiter.Run(ctx)

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.ClientIP(cfg.TrustedProxies))
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(middleware.PanicRecovery())
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(globalLimiter.Handler)
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	// Unauthenticated health probes for container orchestration.
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)

	// # Application API
	r.Route("/api", func(api chi.Router) {
		api.NotFound(apiNotFound)
		api.MethodNotAllowed(apiMethodNotAllowed)

		// Public credential endpoints carry the tighter budget.
		api.Group(func(public chi.Router) {
			public.Use(credentialLimiter.Handler)
			h.Auth.MountRoutes(public)
		})

		api.Group(func(guarded chi.Router) {
			guarded.Use(middleware.Authenticate(verifier))
			h.Account.MountRoutes(guarded)
		})
	})

	// # Application Shell
	r.NotFound(h.Shell.ServeHTTP)

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
			ErrorLog:          slog.NewLogLogger(log.Handler(), slog.LevelError),
		},
	}
}

// Handler exposes the composed router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func apiNotFound(writer http.ResponseWriter, request *http.Request) {
	respond.Error(writer, request, apperr.NotFound("Endpoint"))
}

func apiMethodNotAllowed(writer http.ResponseWriter, request *http.Request) {
	respond.JSON(writer, http.StatusMethodNotAllowed, respond.ErrorEnvelope{
		Error: "Method not allowed",
		Code:  "METHOD_NOT_ALLOWED",
	})
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests until ctx ends.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
