package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsiq/internal/article"
)

const rssHeader = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/" xmlns:dc="http://purl.org/dc/elements/1.1/">
<channel>
	<title>Sample Feed</title>
	<link>http://example.com/</link>
	<description>Sample</description>
`

const rssFooter = `</channel>
</rss>`

func rssItem(title, description string, day int) string {
	return fmt.Sprintf(`	<item>
		<title>%s</title>
		<link>http://example.com/%d</link>
		<pubDate>Mon, %02d Jan 2024 10:00:00 +0000</pubDate>
		<description><![CDATA[%s]]></description>
		<content:encoded><![CDATA[<p>Body</p><img src="http://img.example/%d.jpg">]]></content:encoded>
		<dc:creator>Desk %d</dc:creator>
	</item>
`, title, day, day, description, day, day)
}

func rssDocument(items ...string) string {
	return rssHeader + strings.Join(items, "") + rssFooter
}

// sampleRSS holds five entries.
var sampleRSS = rssDocument(
	rssItem("Chipmaker posts record growth", "Shares surge", 1),
	rssItem("Outage hits payments", "Crash reported", 2),
	rssItem("Parliament adjourns", "Session ends", 3),
	rssItem("New phone launched", "Specs revealed", 4),
	rssItem("Rain expected", "Forecast update", 5),
)

func newTestFetcher(feeds map[string]string) *Fetcher {
	registry := NewRegistry(feeds, nil, "top-stories")
	return NewFetcher(log.New(io.Discard, "", 0), registry, newTestNormalizer())
}

func TestFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, sampleRSS)
	}))
	defer server.Close()

	f := newTestFetcher(map[string]string{"technology": server.URL, "top-stories": server.URL})

	articles, err := f.Fetch(context.Background(), "technology", 3)
	require.NoError(t, err)
	require.Len(t, articles, 3)

	ids := map[string]bool{}
	for _, a := range articles {
		assert.Equal(t, "Technology", a.Category)
		assert.Contains(t, []article.Sentiment{article.Positive, article.Negative, article.Neutral}, a.Sentiment)
		assert.False(t, ids[a.ID], "duplicate id %s", a.ID)
		ids[a.ID] = true
	}

	first := articles[0]
	assert.Equal(t, "Chipmaker posts record growth", first.Title)
	assert.Equal(t, "Shares surge", first.Description)
	assert.Equal(t, "http://example.com/1", first.URL)
	assert.Equal(t, "http://img.example/1.jpg", first.Image)
	assert.Equal(t, "Desk 1", first.Author)
	assert.Equal(t, article.Positive, first.Sentiment)
	assert.Equal(t, 2024, first.PublishedAt.Year())
	assert.Equal(t, article.Negative, articles[1].Sentiment)
}

func TestFetchCanonicalCategory(t *testing.T) {
	var path atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path.Store(r.URL.Path)
		fmt.Fprint(w, sampleRSS)
	}))
	defer server.Close()

	f := newTestFetcher(map[string]string{
		"top-stories": server.URL + "/top",
		"sports":      server.URL + "/sports",
	})

	articles, err := f.Fetch(context.Background(), "Sports", 10)
	require.NoError(t, err)
	assert.Len(t, articles, 5)
	assert.Equal(t, "/sports", path.Load())
	assert.Equal(t, "Sports", articles[0].Category)

	articles, err = f.Fetch(context.Background(), "unheard-of", 1)
	require.NoError(t, err)
	assert.Equal(t, "/top", path.Load())
	assert.Equal(t, "General", articles[0].Category)
}

func TestFetchErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}},
		{"not a feed", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "This is not XML content at all.")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			f := newTestFetcher(map[string]string{"top-stories": server.URL})
			articles, err := f.Fetch(context.Background(), "top-stories", 5)

			assert.Nil(t, articles)
			var fetchErr *FetchError
			require.True(t, errors.As(err, &fetchErr))
			assert.Equal(t, server.URL, fetchErr.Location)
			assert.Equal(t, "the-times-of-india", fetchErr.Source)
			assert.NotNil(t, fetchErr.Unwrap())
		})
	}
}

func TestFetchInvalidLimit(t *testing.T) {
	f := newTestFetcher(map[string]string{"top-stories": "http://127.0.0.1:1/"})
	_, err := f.Fetch(context.Background(), "top-stories", 0)
	assert.ErrorIs(t, err, ErrInvalidLimit)
}

func TestFetchCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, sampleRSS)
	}))
	defer server.Close()

	f := newTestFetcher(map[string]string{"top-stories": server.URL})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.Fetch(ctx, "top-stories", 5)
	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.ErrorIs(t, err, context.Canceled)
}

// newCategoryServer serves a different feed document per path; "/down" fails.
func newCategoryServer(t *testing.T, docs map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		doc, ok := docs[r.URL.Path]
		if !ok {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, doc)
	}))
}

func TestSearch(t *testing.T) {
	server := newCategoryServer(t, map[string]string{
		"/top": rssDocument(
			rssItem("Election results announced", "Counting ends", 1),
			rssItem("Monsoon arrives early", "Farmers cheer the election-year rain", 2),
		),
		"/business": rssDocument(
			rssItem("ELECTION results announced ", "Markets react", 3),
			rssItem("Bank merger approved", "Regulator nod", 4),
		),
		"/technology": rssDocument(
			rssItem("AI chip unveiled", "Election security tools demoed", 5),
		),
		"/sports": rssDocument(
			rssItem("Cup final tonight", "Tickets sold out", 6),
		),
	})
	defer server.Close()

	f := newTestFetcher(map[string]string{
		"top-stories":   server.URL + "/top",
		"business":      server.URL + "/business",
		"technology":    server.URL + "/technology",
		"sports":        server.URL + "/sports",
		"entertainment": server.URL + "/down",
	})

	results := f.Search(context.Background(), "election", 10)

	titles := make([]string, 0, len(results))
	for _, a := range results {
		titles = append(titles, a.Title)
	}
	assert.Equal(t, []string{"Election results announced", "Monsoon arrives early", "AI chip unveiled"}, titles)

	limited := f.Search(context.Background(), "ELECTION", 2)
	assert.Len(t, limited, 2)

	ids := map[string]bool{}
	for _, a := range f.Search(context.Background(), "", 50) {
		assert.False(t, ids[a.ID], "duplicate id %s", a.ID)
		ids[a.ID] = true
	}
}

func TestSearchAllFail(t *testing.T) {
	server := newCategoryServer(t, nil)
	defer server.Close()

	f := newTestFetcher(map[string]string{"top-stories": server.URL + "/down"})
	results := f.Search(context.Background(), "anything", 10)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestSearchCancelled(t *testing.T) {
	server := newCategoryServer(t, map[string]string{"/top": sampleRSS})
	defer server.Close()

	f := newTestFetcher(map[string]string{"top-stories": server.URL + "/top"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Empty(t, f.Search(ctx, "", 10))
}

func TestBatch(t *testing.T) {
	server := newCategoryServer(t, map[string]string{
		"/world": rssDocument(
			rssItem("Summit opens", "Leaders meet", 1),
			rssItem("Shared headline", "From world", 2),
		),
		"/science": rssDocument(
			rssItem("shared headline", "From science", 3),
			rssItem("Comet spotted", "Bright tail", 4),
		),
	})
	defer server.Close()

	f := newTestFetcher(map[string]string{
		"top-stories": server.URL + "/down",
		"world":       server.URL + "/world",
		"science":     server.URL + "/science",
	})

	results := f.Batch(context.Background(), []string{"world", "science", "politics"}, 2)

	titles := make([]string, 0, len(results))
	for _, a := range results {
		titles = append(titles, a.Title)
	}
	assert.Equal(t, []string{"Summit opens", "Shared headline", "Comet spotted"}, titles)
	assert.Empty(t, f.Batch(context.Background(), nil, 2))
}

func TestFetchAllPreservesOrder(t *testing.T) {
	server := newCategoryServer(t, map[string]string{
		"/a": rssDocument(rssItem("A", "a", 1)),
		"/b": rssDocument(rssItem("B", "b", 2)),
	})
	defer server.Close()

	f := newTestFetcher(map[string]string{
		"top-stories": server.URL + "/down",
		"world":       server.URL + "/a",
		"science":     server.URL + "/b",
	})

	results := f.FetchAll(context.Background(), []string{"science", "health", "world"}, 5)
	require.Len(t, results, 3)
	assert.Equal(t, "science", results[0].Category)
	assert.NoError(t, results[0].Error)
	assert.Error(t, results[1].Error)
	assert.Equal(t, "world", results[2].Category)
	assert.Equal(t, "A", results[2].Articles[0].Title)
}

func TestSearchFetchesConcurrently(t *testing.T) {
	const delay = 100 * time.Millisecond

	var inFlight, peak int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&inFlight, 1)
		defer atomic.AddInt32(&inFlight, -1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(delay)
		fmt.Fprint(w, rssDocument(rssItem("Story from "+r.URL.Path, "slow feed", 1)))
	}))
	defer server.Close()

	feeds := make(map[string]string, len(SearchCategories))
	for _, key := range SearchCategories {
		feeds[key] = server.URL + "/" + key
	}
	f := newTestFetcher(feeds)

	start := time.Now()
	results := f.Search(context.Background(), "story", 50)
	elapsed := time.Since(start)

	assert.Len(t, results, len(SearchCategories))
	assert.Less(t, elapsed, 3*delay, "search took %v for %d categories", elapsed, len(SearchCategories))
	assert.Greater(t, atomic.LoadInt32(&peak), int32(1))

	start = time.Now()
	batch := f.Batch(context.Background(), SearchCategories, 1)
	assert.Len(t, batch, len(SearchCategories))
	assert.Less(t, time.Since(start), 3*delay)
}
