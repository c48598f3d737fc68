// Package category translates between the dashboard's canonical categories
// and the feed keys used by the syndication source.
package category

import "strings"

const (
	// DefaultFeedKey is returned for canonical names with no feed of their own.
	DefaultFeedKey = "top-stories"
	// DefaultCategory is returned for feed keys with no canonical counterpart.
	DefaultCategory = "General"
	// AllNews is the dashboard's catch-all selection.
	AllNews = "All News"
)

var canonicalToFeedKey = map[string]string{
	AllNews:         "top-stories",
	"Technology":    "technology",
	"Sports":        "sports",
	"Business":      "business",
	"Entertainment": "entertainment",
	"Health":        "health",
	"Science":       "science",
	"Politics":      "politics",
	"World":         "world",
	"Education":     "education",
}

var feedKeyToCanonical = map[string]string{
	"top-stories":   "General",
	"business":      "Business",
	"technology":    "Technology",
	"sports":        "Sports",
	"entertainment": "Entertainment",
	"world":         "World",
	"politics":      "Politics",
	"science":       "Science",
	"health":        "Health",
	"education":     "Education",
	"mumbai":        "Mumbai",
	"delhi":         "Delhi",
	"bangalore":     "Bangalore",
	"chennai":       "Chennai",
	"kolkata":       "Kolkata",
}

// canonical holds the lowercased form of every canonical category.
var canonical = func() map[string]string {
	m := make(map[string]string, len(feedKeyToCanonical))
	for _, c := range feedKeyToCanonical {
		m[strings.ToLower(c)] = c
	}
	return m
}()

// ToFeedKey maps a canonical category to its feed key, or DefaultFeedKey.
func ToFeedKey(canonicalCategory string) string {
	if key, ok := canonicalToFeedKey[canonicalCategory]; ok {
		return key
	}
	return DefaultFeedKey
}

// ToCanonical maps a feed key to its canonical category, or DefaultCategory.
func ToCanonical(feedKey string) string {
	if c, ok := feedKeyToCanonical[feedKey]; ok {
		return c
	}
	return DefaultCategory
}

// IsCanonical reports whether name is a canonical category that maps to a feed.
func IsCanonical(name string) bool {
	_, ok := canonicalToFeedKey[name]
	return ok
}

// ResolveFeedKey accepts either a canonical name or a feed key. Canonical
// names are mapped forward; anything else is treated as a feed key.
func ResolveFeedKey(name string) string {
	name = strings.TrimSpace(name)
	if IsCanonical(name) {
		return canonicalToFeedKey[name]
	}
	if name == "" {
		return DefaultFeedKey
	}
	return strings.ToLower(name)
}

// Normalize returns the canonical spelling of name when it names a canonical
// category in any letter case, and DefaultCategory otherwise.
func Normalize(name string) string {
	if c, ok := canonical[strings.ToLower(strings.TrimSpace(name))]; ok {
		return c
	}
	return DefaultCategory
}
