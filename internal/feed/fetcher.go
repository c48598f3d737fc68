package feed

import (
	"context"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"

	"newsiq/internal/article"
	"newsiq/internal/category"
	securitynet "newsiq/internal/security/netutil"
)

const maxFeedBytes = 5 << 20

// SearchCategories are the feed keys fanned out by Search.
var SearchCategories = []string{"top-stories", "business", "technology", "sports", "entertainment"}

// searchFetchCount is fetched per category before filtering, independent of the result limit.
const searchFetchCount = 10

// Fetcher retrieves syndicated feeds and normalizes their items.
// It keeps no state between calls and never retries.
type Fetcher struct {
	logger     *log.Logger
	client     *http.Client
	registry   *Registry
	normalizer *Normalizer
	userAgent  string
}

func NewFetcher(logger *log.Logger, registry *Registry, normalizer *Normalizer) *Fetcher {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &Fetcher{
		logger: logger,
		client: &http.Client{Timeout: 30 * time.Second, Transport: transport, CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return fmt.Errorf("stopped after 5 redirects")
			}
			return nil
		}},
		registry:   registry,
		normalizer: normalizer,
		userAgent:  "NewsIQ/1.0",
	}
}

// Name identifies the upstream in logs and failure reports.
func (f *Fetcher) Name() string {
	return f.normalizer.profile.ID
}

// Fetch returns up to limit articles for cat, which may be a canonical
// category or a feed key. Only the first limit items are normalized.
func (f *Fetcher) Fetch(ctx context.Context, cat string, limit int) ([]article.Article, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}

	key := category.ResolveFeedKey(cat)
	location := f.registry.Location(key)
	f.logger.Printf("Fetching %s feed from: %s", key, location)

	items, err := f.retrieve(ctx, location)
	if err != nil {
		return nil, &FetchError{Source: f.Name(), Location: location, Err: err}
	}

	if len(items) > limit {
		items = items[:limit]
	}
	articles := make([]article.Article, 0, len(items))
	for i, item := range items {
		articles = append(articles, f.normalizer.Normalize(item, key, i))
	}
	return articles, nil
}

func (f *Fetcher) retrieve(ctx context.Context, location string) ([]*gofeed.Item, error) {
	u, err := url.Parse(location)
	if err != nil {
		return nil, fmt.Errorf("invalid feed location: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid feed location: unsupported scheme %q", u.Scheme)
	}
	if err := securitynet.CheckURL(ctx, u); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml;q=0.9, */*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error fetching feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected response status %d", resp.StatusCode)
	}

	// gofeed parsers hold per-document state, so each fetch gets its own.
	parsed, err := gofeed.NewParser().Parse(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, fmt.Errorf("error parsing feed: %w", err)
	}
	if parsed == nil {
		return nil, fmt.Errorf("error parsing feed: empty document")
	}
	return parsed.Items, nil
}

// FetchAll fetches every category concurrently. Results are returned in the
// order of categories regardless of completion order.
func (f *Fetcher) FetchAll(ctx context.Context, categories []string, limit int) []FetchResult {
	results := make([]FetchResult, len(categories))
	var wg sync.WaitGroup
	for i, cat := range categories {
		wg.Add(1)
		go func(i int, cat string) {
			defer wg.Done()
			articles, err := f.Fetch(ctx, cat, limit)
			if err != nil {
				f.logger.Printf("Error fetching category %s: %v", cat, err)
			}
			results[i] = FetchResult{Category: cat, Articles: articles, Error: err}
		}(i, cat)
	}
	wg.Wait()
	return results
}

// collect concatenates successful branches. A cancelled context yields nothing.
func collect(ctx context.Context, results []FetchResult) []article.Article {
	if ctx.Err() != nil {
		return nil
	}
	var all []article.Article
	for _, r := range results {
		if r.Error == nil {
			all = append(all, r.Articles...)
		}
	}
	return all
}

// Search fetches SearchCategories, keeps articles whose title or description
// contains query (case-insensitively), dedupes by title and caps at limit.
// Failed categories are skipped; if all fail the result is empty.
func (f *Fetcher) Search(ctx context.Context, query string, limit int) []article.Article {
	pool := collect(ctx, f.FetchAll(ctx, SearchCategories, searchFetchCount))

	term := strings.ToLower(query)
	matched := make([]article.Article, 0, len(pool))
	for _, a := range pool {
		if strings.Contains(strings.ToLower(a.Title), term) || strings.Contains(strings.ToLower(a.Description), term) {
			matched = append(matched, a)
		}
	}
	return article.Truncate(article.Dedupe(matched), limit)
}

// Batch fetches limit articles from each category, dedupes the union by title
// and caps it at limit per requested category.
func (f *Fetcher) Batch(ctx context.Context, categories []string, limit int) []article.Article {
	if len(categories) == 0 || limit <= 0 {
		return []article.Article{}
	}
	pool := collect(ctx, f.FetchAll(ctx, categories, limit))
	return article.Truncate(article.Dedupe(pool), limit*len(categories))
}
