// Package web serves the browser front end: a single page backed by a
// per-visitor collection.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/lepinkainen/booklist/internal/catalog"
	"github.com/lepinkainen/booklist/internal/ratelimit"
	"github.com/lepinkainen/booklist/internal/session"
)

// CookieName names the session cookie.
const CookieName = "booklist_session"

const (
	defaultSearchRate    = 5
	defaultSweepInterval = time.Minute
	searchLimiterIdle    = time.Minute
	shutdownTimeout      = 10 * time.Second
)

//go:embed templates/*.html
var templateFS embed.FS

// Server handles the web front end.
type Server struct {
	catalog  *catalog.Adapter
	store    session.Store
	metrics  *Metrics
	policy   *bluemonday.Policy
	page     *template.Template
	searches *ratelimit.Keyed
	locks    *sessionLocks
	sweep    time.Duration
	secure   bool
}

// Sweeper is implemented by session stores that must drop expired
// sessions themselves. Redis expires keys on its own.
type Sweeper interface {
	Sweep() int
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics sets the metrics collectors.
func WithMetrics(m *Metrics) Option {
	return func(s *Server) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithSearchRate limits searches per client address per second.
func WithSearchRate(rps int) Option {
	return func(s *Server) {
		s.searches = ratelimit.NewKeyed("search", rps)
	}
}

// WithSweepInterval sets how often expired sessions and idle search
// limiters are dropped.
func WithSweepInterval(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.sweep = d
		}
	}
}

// WithSecureCookie marks the session cookie Secure, for deployments behind TLS.
func WithSecureCookie(secure bool) Option {
	return func(s *Server) {
		s.secure = secure
	}
}

// NewServer creates a Server.
func NewServer(adapter *catalog.Adapter, store session.Store, opts ...Option) *Server {
	s := &Server{
		catalog:  adapter,
		store:    store,
		metrics:  NewMetrics(),
		policy:   bluemonday.StrictPolicy(),
		page:     template.Must(template.ParseFS(templateFS, "templates/index.html")),
		searches: ratelimit.NewKeyed("search", defaultSearchRate),
		locks:    newSessionLocks(),
		sweep:    defaultSweepInterval,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Handler returns the routed handler with all middlewares applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /search", s.handleSearch)
	mux.HandleFunc("POST /favorites", s.handleAddFavorite)
	mux.HandleFunc("POST /favorites/remove", s.handleRemoveFavorite)
	mux.HandleFunc("POST /books", s.handleCreateBook)
	mux.HandleFunc("POST /books/remove", s.handleRemoveBook)
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.Handle("GET /metrics", s.metrics.Handler())

	return Chain(mux, RequestID, Recovery, Logging, s.metrics.Instrument)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go s.janitor(ctx)

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Web front end listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen on %s: %w", addr, err)
	case <-ctx.Done():
	}

	slog.Info("Shutting down web front end")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// janitor drops expired sessions and idle search limiters until ctx ends.
func (s *Server) janitor(ctx context.Context) {
	ticker := time.NewTicker(s.sweep)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweepOnce()
		}
	}
}

func (s *Server) sweepOnce() {
	sessions := 0
	if sw, ok := s.store.(Sweeper); ok {
		sessions = sw.Sweep()
	}
	limiters := s.searches.Prune(searchLimiterIdle)
	if sessions > 0 || limiters > 0 {
		slog.Debug("Swept idle state", "sessions", sessions, "search_limiters", limiters)
	}
}

// clientKey identifies the remote client for inbound rate limiting.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}
