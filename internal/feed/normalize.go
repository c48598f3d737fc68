package feed

import (
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"newsiq/internal/article"
	"newsiq/internal/category"
	"newsiq/internal/sentiment"
)

const untitled = "No Title"

// Normalizer turns raw feed items into articles. It never fails: missing or
// malformed fields fall back to documented defaults.
type Normalizer struct {
	profile Profile
	now     func() time.Time
}

func NewNormalizer(profile Profile, now func() time.Time) *Normalizer {
	if now == nil {
		now = time.Now
	}
	return &Normalizer{profile: profile, now: now}
}

// Normalize converts item, fetched for feedKey, at position ordinal in its feed.
func (n *Normalizer) Normalize(item *gofeed.Item, feedKey string, ordinal int) article.Article {
	if item == nil {
		item = &gofeed.Item{}
	}
	processedAt := n.now().UTC()

	raw := item.Content
	if raw == "" {
		raw = item.Description
	}

	title := strings.TrimSpace(item.Title)
	if title == "" {
		title = untitled
	}

	description := item.Description
	if description == "" {
		description = stripTags(item.Content)
	}

	return article.Article{
		ID:          fmt.Sprintf("%s-%s-%d-%d", n.profile.IDPrefix, feedKey, processedAt.UnixMilli(), ordinal),
		Title:       title,
		Description: cleanDescription(description, n.profile.Boilerplate),
		PublishedAt: publishedAt(item, processedAt),
		Source:      article.Source{Name: n.profile.Name, ID: n.profile.ID},
		Category:    category.ToCanonical(feedKey),
		Sentiment:   sentiment.Classify(item.Title + " " + item.Description),
		URL:         item.Link,
		Image:       extractImage(raw, n.profile.CDNImage),
		Author:      n.author(item),
		Content:     cleanContent(item.Content),
		SourceType:  article.SourceExternalFeed,
	}
}

func (n *Normalizer) author(item *gofeed.Item) string {
	if item.Author != nil && strings.TrimSpace(item.Author.Name) != "" {
		return strings.TrimSpace(item.Author.Name)
	}
	for _, p := range item.Authors {
		if p != nil && strings.TrimSpace(p.Name) != "" {
			return strings.TrimSpace(p.Name)
		}
	}
	if dc := item.DublinCoreExt; dc != nil {
		for _, c := range dc.Creator {
			if c = strings.TrimSpace(c); c != "" {
				return c
			}
		}
	}
	return n.profile.DefaultAuthor
}

// publishedAt prefers parsed dates, then the textual fields, then fallback.
func publishedAt(item *gofeed.Item, fallback time.Time) time.Time {
	if item.PublishedParsed != nil {
		return item.PublishedParsed.UTC()
	}
	if item.UpdatedParsed != nil {
		return item.UpdatedParsed.UTC()
	}
	for _, s := range []string{item.Published, item.Updated} {
		if t, ok := article.ParseDate(s); ok {
			return t
		}
	}
	return fallback
}
