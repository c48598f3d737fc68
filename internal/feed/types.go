package feed

import (
	"errors"
	"fmt"
	"regexp"

	"newsiq/internal/article"
)

// ErrInvalidLimit is returned when a fetch asks for fewer than one article.
var ErrInvalidLimit = errors.New("limit must be greater than zero")

// FetchError reports a transport or parse failure for one feed location.
type FetchError struct {
	Source   string
	Location string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s feed %s: %v", e.Source, e.Location, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// FetchResult is the outcome of one branch of a multi-category fetch.
type FetchResult struct {
	Category string
	Articles []article.Article
	Error    error
}

// Profile describes the source-specific details the normalizer needs.
type Profile struct {
	Name          string
	ID            string
	IDPrefix      string
	DefaultAuthor string
	// Boilerplate matches phrases removed from descriptions.
	Boilerplate *regexp.Regexp
	// CDNImage matches bare image URLs on the source's image host.
	CDNImage *regexp.Regexp
}

// TimesOfIndia is the profile of the default syndication source.
var TimesOfIndia = Profile{
	Name:          "Times of India",
	ID:            "the-times-of-india",
	IDPrefix:      "toi",
	DefaultAuthor: "Times of India",
	Boilerplate:   regexp.MustCompile(`(?i)Read more at Times of India|TOI\.com|\(PTI\)|\(ANI\)`),
	CDNImage:      regexp.MustCompile(`(?i)https://static\.toiimg\.com/[^"\s]+`),
}
