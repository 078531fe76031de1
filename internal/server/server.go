// package server contains middleware & handlers for the splitify web service
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/splitify/internal/shared"
	"github.com/desertthunder/splitify/internal/tasks"
)

const shutdownTimeout = 10 * time.Second

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
// Common middleware includes logging, CORS, panic recovery, etc.
type Middleware func(http.Handler) http.Handler

// Handler defines the interface for HTTP request handlers in the splitify service.
// Implementations handle specific endpoints (split runs, playlist listing).
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the path patterns this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
// Implementations register handlers, apply middleware, and configure the HTTP server.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

// Server exposes the split pipeline over HTTP.
type Server struct {
	config  shared.ServerConfig
	router  *BasicRouter
	handler http.Handler
	logger  *log.Logger
}

// NewServer registers every route. CORS and request logging wrap the whole router so preflight
// requests are answered before method matching.
func NewServer(config shared.ServerConfig, catalogs CatalogFactory, opts tasks.Options, logger *log.Logger) *Server {
	router := NewBasicRouter()
	router.Use(Recoverer(logger))

	router.Handle(http.MethodGet, "/health", http.HandlerFunc(healthHandler))
	router.Handler(NewProcessHandler(catalogs, opts, logger))
	router.Handler(NewPlaylistsHandler(catalogs, logger))

	var handler http.Handler = router
	handler = CORS(config.AllowedOrigins)(handler)
	handler = RequestLogger(logger)(handler)

	return &Server{config: config, router: router, handler: handler, logger: logger}
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Addr(),
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", srv.Addr, "routes", s.router.Routes())
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		s.logger.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	}
}

var _ Router = (*BasicRouter)(nil)
