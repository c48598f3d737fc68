package aggregate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsiq/internal/article"
)

var now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

var discard = log.New(io.Discard, "", 0)

func art(id, title string, age time.Duration) article.Article {
	return article.Article{ID: id, Title: title, PublishedAt: now.Add(-age), Sentiment: article.Neutral, Category: "General"}
}

// stubSource records the limit it was asked for and returns fixed articles.
type stubSource struct {
	mu       sync.Mutex
	articles []article.Article
	err      error
	delay    time.Duration
	limits   []int
	cats     []string
}

func (s *stubSource) Articles(ctx context.Context, cat string, limit int) ([]article.Article, error) {
	s.mu.Lock()
	s.limits = append(s.limits, limit)
	s.cats = append(s.cats, cat)
	s.mu.Unlock()
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	if len(s.articles) > limit {
		return s.articles[:limit], nil
	}
	return s.articles, nil
}

var both = []article.SourceType{article.SourceExternalFeed, article.SourceInternal}

func TestAggregatePartialFailure(t *testing.T) {
	external := &stubSource{articles: []article.Article{
		art("e1", "One", 5*time.Hour),
		art("e2", "Two", 1*time.Hour),
		art("e3", "Three", 3*time.Hour),
		art("e4", "two", 2*time.Hour),
		art("e5", "Five", 4*time.Hour),
	}}
	internal := &stubSource{err: errors.New("connection refused")}

	res := New(discard, external, internal).Aggregate(context.Background(), "All News", 10, both)

	ids := make([]string, 0, len(res.Articles))
	for _, a := range res.Articles {
		ids = append(ids, a.ID)
		assert.Equal(t, article.SourceExternalFeed, a.SourceType)
		assert.Equal(t, 1, a.Priority)
	}
	assert.Equal(t, []string{"e2", "e3", "e5", "e1"}, ids, "sorted by recency with the older duplicate title dropped")
	assert.Equal(t, Partial, res.Outcome())
	assert.Equal(t, []article.SourceType{article.SourceInternal}, res.FailedSources())
}

func TestAggregatePriorityBeforeRecency(t *testing.T) {
	external := &stubSource{articles: []article.Article{art("old", "Older external story", time.Hour)}, delay: 30 * time.Millisecond}
	internal := &stubSource{articles: []article.Article{art("new", "Fresh internal story", 0)}}

	res := New(discard, external, internal).Aggregate(context.Background(), "All News", 10, []article.SourceType{article.SourceInternal, article.SourceExternalFeed})

	require.Len(t, res.Articles, 2)
	assert.Equal(t, "old", res.Articles[0].ID)
	assert.Equal(t, 1, res.Articles[0].Priority)
	assert.Equal(t, "new", res.Articles[1].ID)
	assert.Equal(t, 2, res.Articles[1].Priority)
	assert.Equal(t, article.SourceInternal, res.Articles[1].SourceType)
	assert.Equal(t, Complete, res.Outcome())
}

func TestAggregateCrossSourceDedupe(t *testing.T) {
	external := &stubSource{articles: []article.Article{art("e1", "Storm Hits Coast", 2*time.Hour)}}
	internal := &stubSource{articles: []article.Article{art("i1", "  STORM hits COAST  ", 0)}}

	res := New(discard, external, internal).Aggregate(context.Background(), "World", 10, both)

	require.Len(t, res.Articles, 1)
	assert.Equal(t, "e1", res.Articles[0].ID)
}

func TestAggregateBudgetAndLimit(t *testing.T) {
	var many []article.Article
	for i := 0; i < 20; i++ {
		many = append(many, art(fmt.Sprintf("a%d", i), fmt.Sprintf("Story %d", i), time.Duration(i)*time.Minute))
	}
	external := &stubSource{articles: many}
	internal := &stubSource{articles: many}

	res := New(discard, external, internal).Aggregate(context.Background(), "Technology", 5, both)

	assert.Equal(t, []int{3}, external.limits)
	assert.Equal(t, []int{3}, internal.limits)
	assert.Equal(t, []string{"Technology"}, internal.cats)
	assert.Len(t, res.Articles, 3, "internal copies share titles with external ones")

	single := &stubSource{articles: many}
	res = New(discard, single, nil).Aggregate(context.Background(), "Technology", 7, []article.SourceType{article.SourceExternalFeed})
	assert.Equal(t, []int{7}, single.limits)
	assert.Len(t, res.Articles, 7)
}

func TestAggregateAllFailed(t *testing.T) {
	external := &stubSource{err: errors.New("timeout")}

	res := New(discard, external, nil).Aggregate(context.Background(), "All News", 10, both)

	assert.NotNil(t, res.Articles)
	assert.Empty(t, res.Articles)
	assert.Equal(t, Failed, res.Outcome())
	require.Len(t, res.Branches, 2)
	assert.ErrorIs(t, res.Branches[1].Err, ErrSourceUnavailable)
}

func TestAggregateNoSelection(t *testing.T) {
	res := New(discard, &stubSource{}, &stubSource{}).Aggregate(context.Background(), "All News", 10, nil)
	assert.Empty(t, res.Articles)
	assert.Equal(t, Complete, res.Outcome())
}

func TestAggregateCancelled(t *testing.T) {
	external := &stubSource{articles: []article.Article{art("e1", "A", 0)}, delay: time.Second}
	internal := &stubSource{articles: []article.Article{art("i1", "B", 0)}}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	res := New(discard, external, internal).Aggregate(ctx, "All News", 10, both)

	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.Empty(t, res.Articles)
	assert.Equal(t, Failed, res.Outcome())
}

func TestExternalFeedMapsCategory(t *testing.T) {
	var got string
	fetcher := fetchFunc(func(ctx context.Context, cat string, limit int) ([]article.Article, error) {
		got = cat
		return nil, nil
	})

	_, err := ExternalFeed(fetcher).Articles(context.Background(), "Technology", 3)
	require.NoError(t, err)
	assert.Equal(t, "technology", got)

	_, _ = ExternalFeed(fetcher).Articles(context.Background(), "Gardening", 3)
	assert.Equal(t, "top-stories", got)
}

type fetchFunc func(ctx context.Context, cat string, limit int) ([]article.Article, error)

func (f fetchFunc) Fetch(ctx context.Context, cat string, limit int) ([]article.Article, error) {
	return f(ctx, cat, limit)
}

func TestParseSelectors(t *testing.T) {
	assert.Equal(t, both, ParseSelectors([]string{"toi", "custom"}))
	assert.Equal(t, []article.SourceType{article.SourceInternal}, ParseSelectors([]string{" Custom ", "internal", "bogus"}))
	assert.Equal(t, []article.SourceType{article.SourceExternalFeed}, ParseSelectors([]string{"external-feed", "toi"}))
	assert.Empty(t, ParseSelectors(nil))
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "complete", Complete.String())
	assert.Equal(t, "partial", Partial.String())
	assert.Equal(t, "failed", Failed.String())
}
