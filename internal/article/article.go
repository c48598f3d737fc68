// Package article holds the canonical article record shared by every news source.
package article

import (
	"strings"
	"time"
)

type Sentiment string

const (
	Positive Sentiment = "positive"
	Negative Sentiment = "negative"
	Neutral  Sentiment = "neutral"
)

// ParseSentiment maps stored or remote values onto the three known sentiments.
// Anything unrecognised becomes Neutral.
func ParseSentiment(s string) Sentiment {
	switch Sentiment(strings.ToLower(strings.TrimSpace(s))) {
	case Positive:
		return Positive
	case Negative:
		return Negative
	default:
		return Neutral
	}
}

// SourceType tags the provenance of an article.
type SourceType string

const (
	SourceExternalFeed SourceType = "external-feed"
	SourceInternal     SourceType = "internal"
)

type Source struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// Article is built fresh for every request and never modified afterwards.
type Article struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	PublishedAt time.Time  `json:"publishedAt"`
	Source      Source     `json:"source"`
	Category    string     `json:"category"`
	Sentiment   Sentiment  `json:"sentiment"`
	URL         string     `json:"url"`
	Image       string     `json:"image,omitempty"`
	Author      string     `json:"author,omitempty"`
	Content     string     `json:"content,omitempty"`
	SourceType  SourceType `json:"sourceType"`
	Priority    int        `json:"priority,omitempty"`
}

func titleKey(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// Dedupe drops every article whose lowercased, trimmed title was already seen.
// The first occurrence wins and input order is preserved.
func Dedupe(articles []Article) []Article {
	seen := make(map[string]struct{}, len(articles))
	out := make([]Article, 0, len(articles))
	for _, a := range articles {
		key := titleKey(a.Title)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, a)
	}
	return out
}

// Truncate returns at most limit articles. A non-positive limit returns none.
func Truncate(articles []Article, limit int) []Article {
	if limit <= 0 {
		return articles[:0]
	}
	if len(articles) > limit {
		return articles[:limit]
	}
	return articles
}
