// Package api assembles the HTTP server: routes, middleware chain, and the
// unauthenticated status, login, and metrics endpoints.
package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/castboard/castboard/pkg/agency"
	"github.com/castboard/castboard/pkg/auth"
	"github.com/castboard/castboard/pkg/httputil"
	"github.com/castboard/castboard/pkg/middleware"
	"github.com/castboard/castboard/pkg/observability"
)

// Server represents the Castboard API server
type Server struct {
	router    *mux.Router
	handler   http.Handler
	store     agency.Store
	guard     *middleware.Guard
	exchanger *auth.Exchanger
	logger    *observability.Logger
	metrics   *observability.Metrics
}

// Options configures optional server collaborators
type Options struct {
	// Exchanger enables the /login code-exchange route when non-nil
	Exchanger *auth.Exchanger

	// Metrics enables the /metrics endpoint and request metrics when non-nil
	Metrics *observability.Metrics

	// CORSOrigins lists allowed origins; empty means allow all
	CORSOrigins []string
}

// NewServer creates the API server with all routes registered
func NewServer(store agency.Store, verifier auth.Verifier, logger *observability.Logger, opts Options) *Server {
	s := &Server{
		router:    mux.NewRouter(),
		store:     store,
		guard:     middleware.NewGuard(verifier),
		exchanger: opts.Exchanger,
		logger:    logger,
		metrics:   opts.Metrics,
	}

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	s.setupRoutes()

	// The metrics middleware rides inside the router: mux attaches the
	// matched route to the request it hands to Use middleware, so the
	// template label (/actors/{id}) is available there and nowhere
	// outside.
	if s.metrics != nil {
		s.router.Use(httputil.MetricsMiddleware(s.metrics))
	}

	// The rest of the chain wraps the router rather than using mux.Use
	// so CORS preflights and unmatched paths still pass through it.
	s.handler = httputil.Chain(
		httputil.RequestIDMiddleware,
		httputil.LoggingMiddleware(logger),
		httputil.CORSMiddleware(origins),
		httputil.RecoveryMiddleware(logger),
	)(s.router)

	return s
}

// setupRoutes configures all the API routes
func (s *Server) setupRoutes() {
	// Unmatched paths and method mismatches return the same failure
	// envelope as every other error.
	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteNotFound(w, "")
	})
	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteMethodNotAllowed(w, "")
	})

	s.router.HandleFunc("/", s.getStatus).Methods("GET")
	s.router.HandleFunc("/healthz", s.getStatus).Methods("GET")

	if s.exchanger != nil {
		s.router.HandleFunc("/login", s.loginCallback).Methods("GET")
	}

	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics.Handler()).Methods("GET")
	}

	handlers := agency.NewHandlers(s.store, s.guard)
	handlers.RegisterRoutes(s.router)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// The logger rides the request context so handlers can annotate it
	// with the request ID.
	ctx := observability.WithLogger(r.Context(), s.logger)
	s.handler.ServeHTTP(w, r.WithContext(ctx))
}

// getStatus reports API liveness
func (s *Server) getStatus(w http.ResponseWriter, r *http.Request) {
	httputil.WriteSuccess(w, map[string]interface{}{
		"message": "Castboard API is running!",
	})
}

// loginCallback exchanges an authorization code for tokens at the identity
// provider. Convenience route for obtaining a token during development.
func (s *Server) loginCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		httputil.WriteBadRequest(w, "no code provided")
		return
	}

	tokens, err := s.exchanger.Exchange(r.Context(), code)
	if err != nil {
		s.logger.WithError(err).Warn("code exchange failed")
		httputil.WriteBadRequest(w, "failed to exchange authorization code")
		return
	}

	httputil.WriteSuccess(w, map[string]interface{}{
		"access_token": tokens.AccessToken,
		"id_token":     tokens.IDToken,
		"token_type":   tokens.TokenType,
		"expires_in":   tokens.ExpiresIn,
	})
}
