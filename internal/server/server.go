// package server contains the router, middleware & handlers for the playback relay
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/playrelay/internal/models"
	"github.com/desertthunder/playrelay/internal/relay"
	"github.com/desertthunder/playrelay/internal/shared"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Handler is an http.Handler that knows the route patterns it serves.
//
// Patterns use the [http.ServeMux] syntax including the method, e.g. "GET /login".
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the patterns this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

// Relay is the part of [relay.Relay] the handlers depend on.
type Relay interface {
	BeginLogin() string
	CompleteLogin(ctx context.Context, code string) (string, error)
	PlayTrack(ctx context.Context, cmd relay.PlaybackCommand) (relay.Outcome, error)
}

// Status reports whether the relay holds credentials.
type Status interface {
	Authenticated() bool
}

// History lists recorded plays, newest first, and looks them up by id.
type History interface {
	Recent(ctx context.Context, limit int) ([]models.Play, error)
	Get(ctx context.Context, id string) (*models.Play, error)
}

// Opts configures a [Server].
type Opts struct {
	Relay   Relay
	Status  Status
	History History // nil when play history is disabled
	Config  shared.ServerConfig
	Logger  *log.Logger
}

// Server serves the login, callback, play, health, and history endpoints.
type Server struct {
	router     *BasicRouter
	httpServer *http.Server
	logger     *log.Logger
}

// New builds the router and its middleware stack.
func New(opts Opts) *Server {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	logger := opts.Logger.WithPrefix("server")

	router := NewBasicRouter()
	router.Use(
		Recover(logger),
		RequestID(),
		Logging(logger),
	)
	router.Handler(NewAuthHandler(opts.Relay, logger))
	router.Handler(NewStatusHandler(opts.Status, opts.History, logger))

	// Only play commands are limited: a rejected /callback would discard its one-time code.
	limit := RateLimit(opts.Config.RateLimit, opts.Config.RateBurst)
	router.Handle(http.MethodPost, "/play", limit(NewPlayHandler(opts.Relay, logger)))

	return &Server{
		router: router,
		httpServer: &http.Server{
			Addr:              opts.Config.Addr(),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Addr returns the address the server listens on.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// ServeHTTP implements [http.Handler].
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Start listens and serves until [Server.Shutdown] is called.
func (s *Server) Start() error {
	s.logger.Info("listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down")
	return s.httpServer.Shutdown(ctx)
}
