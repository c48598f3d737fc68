package feed

import (
	"bytes"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

const (
	maxDescriptionLen = 200
	ellipsis          = "..."
)

var imgSrcPattern = regexp.MustCompile(`(?i)<img[^>]+src="([^">]+)"`)

// Applied in order; ad containers go before class attributes are stripped.
var contentPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script>`),
	regexp.MustCompile(`(?is)<style\b[^>]*>.*?</style>`),
	regexp.MustCompile(`(?is)<iframe\b[^>]*>.*?</iframe>`),
	regexp.MustCompile(`(?i)<div class="(ad|ads|advertisement)[^>]*>.*?</div>`),
	regexp.MustCompile(`(?i)class="[^"]*"`),
	regexp.MustCompile(`(?i)style="[^"]*"`),
}

// extractImage returns the first <img src> in content, else the first bare
// URL matching cdn, else "".
func extractImage(content string, cdn *regexp.Regexp) string {
	if content == "" {
		return ""
	}
	if m := imgSrcPattern.FindStringSubmatch(content); m != nil && m[1] != "" {
		return m[1]
	}
	if cdn != nil {
		return cdn.FindString(content)
	}
	return ""
}

// stripTags drops markup and keeps text exactly as written, entities included.
func stripTags(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		tt := z.Next()
		raw := z.Raw()
		// A tag cut off before its closing '>' is kept as text.
		if tt == html.TextToken || !bytes.HasSuffix(raw, []byte(">")) {
			b.Write(raw)
		}
		if tt == html.ErrorToken {
			return b.String()
		}
	}
}

func cleanDescription(s string, boilerplate *regexp.Regexp) string {
	if s == "" {
		return ""
	}
	clean := stripTags(s)
	if boilerplate != nil {
		clean = boilerplate.ReplaceAllString(clean, "")
	}
	clean = strings.TrimSpace(clean)
	return truncateRunes(clean, maxDescriptionLen)
}

// truncateRunes caps s at max code points, ending in an ellipsis when cut.
func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	keep := max - utf8.RuneCountInString(ellipsis)
	i := 0
	for pos := range s {
		if i == keep {
			return s[:pos] + ellipsis
		}
		i++
	}
	return s
}

func cleanContent(s string) string {
	if s == "" {
		return ""
	}
	for _, p := range contentPatterns {
		s = p.ReplaceAllString(s, "")
	}
	return strings.TrimSpace(s)
}
