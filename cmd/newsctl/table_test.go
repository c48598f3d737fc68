package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsiq/internal/article"
)

func TestPrintTable(t *testing.T) {
	articles := []article.Article{
		{
			Title:       "Markets rally as budget clears parliament",
			PublishedAt: time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC),
			Category:    "Business",
			Sentiment:   article.Positive,
			SourceType:  article.SourceExternalFeed,
		},
		{
			Title:       "मुंबई में भारी बारिश",
			PublishedAt: time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC),
			Category:    "World",
			Sentiment:   article.Neutral,
			SourceType:  article.SourceInternal,
		},
	}

	var buf bytes.Buffer
	printTable(&buf, articles)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Contains(t, lines[0], "TITLE")
	assert.Contains(t, lines[2], "Markets rally")
	assert.Contains(t, lines[2], "external-feed")
	assert.Contains(t, lines[3], "internal")
	assert.Equal(t, "2 articles", lines[4])

	// The title column starts at the same cell offset on every row.
	prefix := func(line, title string) int {
		return runewidth.StringWidth(line[:strings.Index(line, title)])
	}
	assert.Equal(t, prefix(lines[2], "Markets"), prefix(lines[3], "मुंबई"))
}

func TestCellTruncates(t *testing.T) {
	got := cell("a-very-long-category-name", 10)
	assert.Equal(t, 10, runewidth.StringWidth(got))
	assert.True(t, strings.HasSuffix(got, "..."))
}
