// Package api serves stored verses and topic collections over HTTP.
//
// Book and collection path segments are free-form names; they are matched
// against the stored identifiers with the entity resolver, so "/bibles/First
// Samuel/chapters" reads the chapters of 1SA.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/FocuswithJustin/synopsis/core/resolve"
	"github.com/FocuswithJustin/synopsis/internal/cache"
	"github.com/FocuswithJustin/synopsis/internal/logging"
	"github.com/FocuswithJustin/synopsis/internal/store"
)

// Config holds server configuration.
type Config struct {
	// CacheTTL bounds how long directory listings are reused. Zero disables
	// caching.
	CacheTTL       time.Duration
	RequestTimeout time.Duration
	RateLimit      RateLimiterConfig // RequestsPerMinute 0 disables limiting
	Auth           AuthConfig
}

// Server is the HTTP read path over a document store.
type Server struct {
	store    *store.Store
	resolver *resolve.Resolver
	listings *cache.TTLCache[string, []string]
	limiter  *RateLimiter
	router   chi.Router
}

// New creates a server. A nil resolver uses resolve.New(nil).
func New(st *store.Store, resolver *resolve.Resolver, cfg Config) (*Server, error) {
	if err := ValidateAuthConfig(cfg.Auth); err != nil {
		return nil, err
	}
	if resolver == nil {
		resolver = resolve.New(nil)
	}
	s := &Server{
		store:    st,
		resolver: resolver,
		listings: cache.New[string, []string](cfg.CacheTTL),
	}
	if cfg.RateLimit.RequestsPerMinute > 0 {
		s.limiter = NewRateLimiter(cfg.RateLimit)
	}
	s.router = s.routes(cfg)
	return s, nil
}

func (s *Server) routes(cfg Config) chi.Router {
	r := chi.NewRouter()
	r.Use(logging.CombinedMiddleware)
	r.Use(chimiddleware.Recoverer)
	if cfg.RequestTimeout > 0 {
		r.Use(chimiddleware.Timeout(cfg.RequestTimeout))
	}
	if s.limiter != nil {
		r.Use(s.limiter.Middleware)
	}
	r.Use(AuthMiddleware(cfg.Auth))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "no route for "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", r.Method+" not allowed")
	})

	r.Get("/health", s.handleHealth)
	r.Get("/sources", s.handleSources)
	r.Route("/bibles", func(r chi.Router) {
		r.Get("/", s.handleBooks)
		r.Get("/{book}/chapters", s.handleChapters)
		r.Get("/{book}/chapters/{chapter}", s.handleChapter)
		r.Get("/{book}/chapters/{chapter}/verses/{verses}", s.handleVerses)
	})
	r.Route("/resolve", func(r chi.Router) {
		r.Get("/book", s.handleResolveBook)
		r.Get("/collection", s.handleResolveCollection)
	})
	r.Get("/{language}/{version}/topics", s.handleTopics)
	r.Get("/{language}/{version}/topics/{id}", s.handleTopic)
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// InvalidateCache drops every cached directory listing.
func (s *Server) InvalidateCache() {
	s.listings.Invalidate()
}

// Close releases background resources.
func (s *Server) Close() {
	if s.limiter != nil {
		s.limiter.Close()
	}
}

// Serve runs srv until ctx is done, then shuts it down within grace. A nil
// srv.ErrorLog is routed to the structured logger.
func Serve(ctx context.Context, srv *http.Server, grace time.Duration) error {
	if srv.ErrorLog == nil {
		srv.ErrorLog = slog.NewLogLogger(logging.GetLogger().Handler(), slog.LevelError)
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logging.Info("server_shutdown", "grace_ms", grace.Milliseconds())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
