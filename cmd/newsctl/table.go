package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"newsiq/internal/article"
)

const (
	titleWidth    = 60
	categoryWidth = 14
	sourceWidth   = 14
	timeLayout    = "2006-01-02 15:04"
)

// printTable writes one row per article. Widths are measured in terminal
// cells so wide scripts stay aligned.
func printTable(w io.Writer, articles []article.Article) {
	header := row("PUBLISHED", "SOURCE", "CATEGORY", "SENTIMENT", "TITLE")
	fmt.Fprintln(w, header)
	fmt.Fprintln(w, strings.Repeat("-", runewidth.StringWidth(header)))
	for _, a := range articles {
		fmt.Fprintln(w, row(
			a.PublishedAt.Local().Format(timeLayout),
			string(a.SourceType),
			a.Category,
			string(a.Sentiment),
			a.Title,
		))
	}
	fmt.Fprintf(w, "%d articles\n", len(articles))
}

func row(published, source, cat, sentiment, title string) string {
	return strings.Join([]string{
		runewidth.FillRight(published, len(timeLayout)),
		cell(source, sourceWidth),
		cell(cat, categoryWidth),
		cell(sentiment, 9),
		runewidth.Truncate(title, titleWidth, "..."),
	}, "  ")
}

func cell(s string, width int) string {
	return runewidth.FillRight(runewidth.Truncate(s, width, "..."), width)
}
