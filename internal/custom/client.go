// Package custom reads articles from a remote internal news service that
// answers GET /api/news with a {success, data} JSON envelope.
package custom

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"newsiq/internal/article"
	"newsiq/internal/category"
)

const maxBodyBytes = 2 << 20

// ErrUnsuccessful is returned when the service answers with success=false.
var ErrUnsuccessful = errors.New("internal news service reported failure")

type envelope struct {
	Success bool     `json:"success"`
	Data    []record `json:"data"`
	Error   string   `json:"error,omitempty"`
}

// record is an article as the remote service sends it. Dates stay textual so
// one odd timestamp cannot fail the whole response.
type record struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	PublishedAt string         `json:"publishedAt"`
	Source      article.Source `json:"source"`
	Category    string         `json:"category"`
	Sentiment   string         `json:"sentiment"`
	URL         string         `json:"url"`
	Image       string         `json:"image"`
	Author      string         `json:"author"`
	Content     string         `json:"content"`
}

type Client struct {
	baseURL string
	client  *http.Client
	logger  *log.Logger
	now     func() time.Time
}

func NewClient(baseURL string, logger *log.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
		now:     time.Now,
	}
}

// Articles fetches up to limit articles for cat from the remote service.
func (c *Client) Articles(ctx context.Context, cat string, limit int) ([]article.Article, error) {
	q := url.Values{}
	q.Set("category", cat)
	q.Set("limit", strconv.Itoa(limit))
	endpoint := c.baseURL + "/api/news?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Printf("Fetching internal news from: %s", endpoint)
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error fetching internal news: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected response status %d", resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&env); err != nil {
		return nil, fmt.Errorf("error decoding internal news: %w", err)
	}
	if !env.Success {
		if env.Error != "" {
			return nil, fmt.Errorf("%w: %s", ErrUnsuccessful, env.Error)
		}
		return nil, ErrUnsuccessful
	}

	records := env.Data
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	now := c.now().UTC()
	seen := make(map[string]struct{}, len(records))
	out := make([]article.Article, 0, len(records))
	for i, r := range records {
		a := conform(r, i, now)
		if _, dup := seen[a.ID]; dup {
			a.ID = remoteID(i)
			for n := 1; ; n++ {
				if _, dup = seen[a.ID]; !dup {
					break
				}
				a.ID = remoteID(i) + "-" + strconv.Itoa(n)
			}
		}
		seen[a.ID] = struct{}{}
		out = append(out, a)
	}
	return out, nil
}

func remoteID(ordinal int) string {
	return "custom-remote-" + strconv.Itoa(ordinal)
}

// conform forces a remote record into the canonical article shape.
// Unparseable dates become now.
func conform(r record, ordinal int, now time.Time) article.Article {
	a := article.Article{
		ID:          strings.TrimSpace(r.ID),
		Title:       strings.TrimSpace(r.Title),
		Description: r.Description,
		Source:      r.Source,
		Category:    category.Normalize(r.Category),
		Sentiment:   article.ParseSentiment(r.Sentiment),
		URL:         r.URL,
		Image:       r.Image,
		Author:      r.Author,
		Content:     r.Content,
		SourceType:  article.SourceInternal,
	}
	if a.ID == "" {
		a.ID = remoteID(ordinal)
	}
	if a.Title == "" {
		a.Title = "No Title"
	}
	if t, ok := article.ParseDate(r.PublishedAt); ok {
		a.PublishedAt = t
	} else {
		a.PublishedAt = now
	}
	return a
}
