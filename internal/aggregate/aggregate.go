// Package aggregate merges articles from several independently queried
// sources into one ranked, deduplicated feed.
package aggregate

import (
	"context"
	"errors"
	"log"
	"sort"
	"strings"
	"sync"

	"newsiq/internal/article"
	"newsiq/internal/category"
)

// ErrSourceUnavailable is recorded for a selected source that is not configured.
var ErrSourceUnavailable = errors.New("source not configured")

// Source yields canonical articles for a category.
type Source interface {
	Articles(ctx context.Context, category string, limit int) ([]article.Article, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, category string, limit int) ([]article.Article, error)

func (f SourceFunc) Articles(ctx context.Context, category string, limit int) ([]article.Article, error) {
	return f(ctx, category, limit)
}

// FeedFetcher is the part of feed.Fetcher the external branch needs.
type FeedFetcher interface {
	Fetch(ctx context.Context, category string, limit int) ([]article.Article, error)
}

// ExternalFeed maps the canonical category to a feed key before fetching.
func ExternalFeed(f FeedFetcher) Source {
	return SourceFunc(func(ctx context.Context, cat string, limit int) ([]article.Article, error) {
		return f.Fetch(ctx, category.ToFeedKey(cat), limit)
	})
}

// priorities is a fixed policy; lower sorts first.
var priorities = map[article.SourceType]int{
	article.SourceExternalFeed: 1,
	article.SourceInternal:     2,
}

// ParseSelectors turns request selectors into source types, dropping unknown
// and repeated values. "toi" and "custom" are accepted as aliases.
func ParseSelectors(raw []string) []article.SourceType {
	seen := make(map[article.SourceType]bool, len(raw))
	out := make([]article.SourceType, 0, len(raw))
	for _, s := range raw {
		var st article.SourceType
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "toi", string(article.SourceExternalFeed):
			st = article.SourceExternalFeed
		case "custom", string(article.SourceInternal):
			st = article.SourceInternal
		default:
			continue
		}
		if !seen[st] {
			seen[st] = true
			out = append(out, st)
		}
	}
	return out
}

// Aggregator fans out to its sources concurrently and merges the outcomes.
type Aggregator struct {
	logger  *log.Logger
	sources map[article.SourceType]Source
}

// New builds an aggregator. Either source may be nil; selecting a nil source
// records ErrSourceUnavailable for that branch.
func New(logger *log.Logger, external, internal Source) *Aggregator {
	sources := make(map[article.SourceType]Source, 2)
	if external != nil {
		sources[article.SourceExternalFeed] = external
	}
	if internal != nil {
		sources[article.SourceInternal] = internal
	}
	return &Aggregator{logger: logger, sources: sources}
}

// Aggregate queries the selected sources, each for ceil(limit/n) articles,
// tags them with source priority, orders by priority then recency, drops
// title duplicates and truncates to limit. A failing source contributes
// nothing and is recorded in the result; Aggregate itself never fails.
func (a *Aggregator) Aggregate(ctx context.Context, cat string, limit int, selected []article.SourceType) Result {
	result := Result{Articles: []article.Article{}}
	if len(selected) == 0 || limit <= 0 {
		return result
	}
	budget := (limit + len(selected) - 1) / len(selected)

	branches := make([]BranchResult, len(selected))
	var wg sync.WaitGroup
	for i, st := range selected {
		wg.Add(1)
		go func(i int, st article.SourceType) {
			defer wg.Done()
			branches[i] = a.fetchBranch(ctx, st, cat, budget)
		}(i, st)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		for i := range branches {
			branches[i].Articles = nil
			if branches[i].Err == nil {
				branches[i].Err = err
			}
		}
		result.Branches = branches
		return result
	}

	var merged []article.Article
	for _, b := range branches {
		if b.Err != nil {
			a.logger.Printf("Failed to fetch %s news: %v", b.Source, b.Err)
			continue
		}
		merged = append(merged, b.Articles...)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].Priority != merged[j].Priority {
			return merged[i].Priority < merged[j].Priority
		}
		return merged[i].PublishedAt.After(merged[j].PublishedAt)
	})

	result.Articles = article.Truncate(article.Dedupe(merged), limit)
	result.Branches = branches
	return result
}

func (a *Aggregator) fetchBranch(ctx context.Context, st article.SourceType, cat string, budget int) BranchResult {
	br := BranchResult{Source: st}
	src, ok := a.sources[st]
	if !ok {
		br.Err = ErrSourceUnavailable
		return br
	}

	articles, err := src.Articles(ctx, cat, budget)
	if err != nil {
		br.Err = err
		return br
	}

	tagged := make([]article.Article, len(articles))
	for i, art := range articles {
		art.SourceType = st
		art.Priority = priorities[st]
		tagged[i] = art
	}
	br.Articles = tagged
	return br
}
