// internal/server/server.go
package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"newsiq/internal/aggregate"
	"newsiq/internal/article"
)

// FeedService is the syndication side of the pipeline.
type FeedService interface {
	Fetch(ctx context.Context, category string, limit int) ([]article.Article, error)
	Search(ctx context.Context, query string, limit int) []article.Article
	Batch(ctx context.Context, categories []string, limit int) []article.Article
}

// Aggregator merges the external feed with the internal source.
type Aggregator interface {
	Aggregate(ctx context.Context, category string, limit int, selected []article.SourceType) aggregate.Result
}

// ArticleStore serves the internal source's own listing endpoint.
type ArticleStore interface {
	Articles(ctx context.Context, category string, limit int) ([]article.Article, error)
}

type Config struct {
	AllowedOrigin  string
	RequestTimeout time.Duration
	DefaultLimit   int
	Version        string
}

type Server struct {
	logger     *log.Logger
	feeds      FeedService
	aggregator Aggregator
	store      ArticleStore
	config     Config
	now        func() time.Time
}

// NewServer wires the handlers. store may be nil when the internal source is
// a remote service; /api/news then answers 503.
func NewServer(logger *log.Logger, feeds FeedService, aggregator Aggregator, store ArticleStore, config Config) *Server {
	if config.DefaultLimit <= 0 {
		config.DefaultLimit = 20
	}
	return &Server{
		logger:     logger,
		feeds:      feeds,
		aggregator: aggregator,
		store:      store,
		config:     config,
		now:        time.Now,
	}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/api/news", s.handleInternalNews)
	mux.HandleFunc("/api/news/toi", s.handleFeedNews)
	mux.HandleFunc("/api/news/combined", s.handleCombinedNews)
	mux.HandleFunc("/api/metrics", s.handleMetrics)
	mux.HandleFunc("/feed.xml", s.handleRSS)

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		s.logger.Printf("404 error for path: %s", r.URL.Path)
		RespondWithError(w, http.StatusNotFound, "not found")
	})

	var h http.Handler = mux
	h = s.timeoutMiddleware(h)
	h = gzipMiddleware(h)
	h = s.corsMiddleware(h)
	h = s.logMiddleware(h)
	h = requestIDMiddleware(h)
	return h
}

// Start serves until the server fails or ctx is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Printf("Starting server on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Printf("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
