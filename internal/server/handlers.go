// internal/server/handlers.go
package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"newsiq/internal/aggregate"
	"newsiq/internal/article"
	"newsiq/internal/category"
	"newsiq/internal/rss"
)

const (
	feedSourceName     = "Times of India"
	combinedLimit      = 30
	batchDefaultLimit  = 10
	maxBatchCategories = 20
	maxBatchBodyBytes  = 64 << 10
)

var defaultSelectors = []string{"toi", "custom"}

// newsResponse is the envelope shared by every news endpoint.
type newsResponse struct {
	Success       bool                 `json:"success"`
	Source        string               `json:"source,omitempty"`
	Sources       []string             `json:"sources,omitempty"`
	Category      string               `json:"category,omitempty"`
	Categories    []string             `json:"categories,omitempty"`
	Count         int                  `json:"count"`
	Data          []article.Article    `json:"data"`
	Partial       bool                 `json:"partial,omitempty"`
	FailedSources []article.SourceType `json:"failedSources,omitempty"`
	Error         string               `json:"error,omitempty"`
	Message       string               `json:"message,omitempty"`
	Timestamp     time.Time            `json:"timestamp"`
}

type metrics struct {
	TotalNews     int                        `json:"totalNews"`
	PositiveNews  int                        `json:"positiveNews"`
	NegativeNews  int                        `json:"negativeNews"`
	NeutralNews   int                        `json:"neutralNews"`
	ActiveSources int                        `json:"activeSources"`
	AvgSentiment  float64                    `json:"avgSentiment"`
	Sources       map[article.SourceType]int `json:"sources"`
}

type metricsResponse struct {
	Success       bool                 `json:"success"`
	Data          *metrics             `json:"data,omitempty"`
	FailedSources []article.SourceType `json:"failedSources,omitempty"`
	Error         string               `json:"error,omitempty"`
	Timestamp     time.Time            `json:"timestamp"`
}

type batchRequest struct {
	Categories []string `json:"categories"`
	Limit      int      `json:"limit"`
}

func (s *Server) success(data []article.Article) newsResponse {
	if data == nil {
		data = []article.Article{}
	}
	return newsResponse{
		Success:   true,
		Count:     len(data),
		Data:      data,
		Timestamp: s.now().UTC(),
	}
}

func (s *Server) failure(errMsg, message string) newsResponse {
	return newsResponse{
		Success:   false,
		Error:     errMsg,
		Message:   message,
		Data:      []article.Article{},
		Timestamp: s.now().UTC(),
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		RespondWithError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": s.config.Version,
	})
}

// handleInternalNews serves the internal source's own listing.
func (s *Server) handleInternalNews(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		RespondWithError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.store == nil {
		RespondWithJSON(w, http.StatusServiceUnavailable, s.failure("Internal news store is not configured", ""))
		return
	}

	q := r.URL.Query()
	cat := stringParam(q, "category", "all")
	limit := intParam(q, "limit", s.config.DefaultLimit)

	articles, err := s.store.Articles(r.Context(), cat, limit)
	if err != nil {
		s.logger.Printf("Error listing internal news: %v request_id=%s", err, getRequestID(r.Context()))
		RespondWithJSON(w, http.StatusInternalServerError, s.failure("Failed to fetch news", err.Error()))
		return
	}

	resp := s.success(articles)
	resp.Category = cat
	RespondWithJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFeedNews(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleFeedGet(w, r)
	case http.MethodPost:
		s.handleFeedBatch(w, r)
	default:
		RespondWithError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleFeedGet searches across the search categories when search is set,
// otherwise fetches one category.
func (s *Server) handleFeedGet(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	cat := stringParam(q, "category", category.DefaultFeedKey)
	limit := intParam(q, "limit", s.config.DefaultLimit)

	var articles []article.Article
	if search := stringParam(q, "search", ""); search != "" {
		articles = s.feeds.Search(r.Context(), search, limit)
	} else {
		var err error
		articles, err = s.feeds.Fetch(r.Context(), cat, limit)
		if err != nil {
			s.logger.Printf("Feed API error: %v request_id=%s", err, getRequestID(r.Context()))
			RespondWithJSON(w, http.StatusInternalServerError, s.failure("Failed to fetch Times of India news", err.Error()))
			return
		}
	}

	resp := s.success(articles)
	resp.Source = feedSourceName
	resp.Category = cat
	RespondWithJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFeedBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBatchBodyBytes))
	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		RespondWithJSON(w, http.StatusBadRequest, s.failure("Invalid request body", err.Error()))
		return
	}

	categories := req.Categories
	if len(categories) == 0 {
		categories = []string{category.DefaultFeedKey}
	}
	if len(categories) > maxBatchCategories {
		RespondWithJSON(w, http.StatusBadRequest, s.failure("Too many categories", ""))
		return
	}
	limit := req.Limit
	if limit <= 0 {
		limit = batchDefaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	resp := s.success(s.feeds.Batch(r.Context(), categories, limit))
	resp.Sources = []string{feedSourceName}
	resp.Categories = categories
	RespondWithJSON(w, http.StatusOK, resp)
}

func (s *Server) combined(r *http.Request) (aggregate.Result, string, []string) {
	q := r.URL.Query()
	cat := stringParam(q, "category", category.AllNews)
	limit := intParam(q, "limit", combinedLimit)
	selectors := listParam(q, "sources", defaultSelectors)
	return s.aggregator.Aggregate(r.Context(), cat, limit, aggregate.ParseSelectors(selectors)), cat, selectors
}

func (s *Server) handleCombinedNews(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		RespondWithError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	result, cat, selectors := s.combined(r)

	resp := s.success(result.Articles)
	resp.Sources = selectors
	resp.Category = cat
	status := http.StatusOK
	switch result.Outcome() {
	case aggregate.Partial:
		resp.Partial = true
		resp.FailedSources = result.FailedSources()
	case aggregate.Failed:
		if len(result.Branches) > 0 {
			resp = s.failure("Failed to fetch combined news", "")
			resp.Sources = selectors
			resp.Category = cat
			resp.FailedSources = result.FailedSources()
			status = http.StatusBadGateway
		}
	}
	RespondWithJSON(w, status, resp)
}

// handleMetrics reports the sentiment distribution of the current combined feed.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		RespondWithError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	result, _, _ := s.combined(r)
	if result.Outcome() == aggregate.Failed && len(result.Branches) > 0 {
		RespondWithJSON(w, http.StatusBadGateway, metricsResponse{
			Success:       false,
			Error:         "Failed to fetch metrics",
			FailedSources: result.FailedSources(),
			Timestamp:     s.now().UTC(),
		})
		return
	}

	RespondWithJSON(w, http.StatusOK, metricsResponse{
		Success:       true,
		Data:          computeMetrics(result.Articles),
		FailedSources: result.FailedSources(),
		Timestamp:     s.now().UTC(),
	})
}

func computeMetrics(articles []article.Article) *metrics {
	m := &metrics{Sources: make(map[article.SourceType]int)}
	names := make(map[string]struct{})
	for _, a := range articles {
		m.TotalNews++
		switch a.Sentiment {
		case article.Positive:
			m.PositiveNews++
		case article.Negative:
			m.NegativeNews++
		default:
			m.NeutralNews++
		}
		m.Sources[a.SourceType]++
		names[a.Source.Name] = struct{}{}
	}
	m.ActiveSources = len(names)
	if m.TotalNews > 0 {
		m.AvgSentiment = float64(m.PositiveNews) / float64(m.TotalNews)
	}
	return m
}

// handleRSS re-syndicates the combined feed. Partial results are published
// as they are; only a total failure is an error.
func (s *Server) handleRSS(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	result, cat, _ := s.combined(r)
	if result.Outcome() == aggregate.Failed && len(result.Branches) > 0 {
		s.logger.Printf("Error building RSS feed: all sources failed request_id=%s", getRequestID(r.Context()))
		http.Error(w, "Bad gateway", http.StatusBadGateway)
		return
	}

	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	link := scheme + "://" + r.Host + "/"

	doc := rss.FromArticles("NewsIQ: "+cat, link, "Combined news with sentiment", result.Articles, s.now())
	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	if err := doc.Encode(w); err != nil {
		s.logger.Printf("Error writing RSS XML response: %v", err)
	}
}
