package feed

import (
	"strings"
	"sync"
)

// Registry resolves feed keys to feed locations. City feeds live in their own
// table and are consulted before the top-level table.
type Registry struct {
	mu         sync.RWMutex
	feeds      map[string]string
	cities     map[string]string
	defaultKey string
}

// NewRegistry builds a registry. defaultKey must be present in feeds.
func NewRegistry(feeds, cities map[string]string, defaultKey string) *Registry {
	r := &Registry{
		feeds:      make(map[string]string, len(feeds)),
		cities:     make(map[string]string, len(cities)),
		defaultKey: defaultKey,
	}
	r.Override(feeds, cities)
	return r
}

// DefaultRegistry returns the Times of India RSS registry.
func DefaultRegistry() *Registry {
	const cityFeed = "https://timesofindia.indiatimes.com/rssfeeds/2177298.cms"
	return NewRegistry(
		map[string]string{
			"top-stories":   "https://timesofindia.indiatimes.com/rssfeeds/-2128936835.cms",
			"business":      "https://timesofindia.indiatimes.com/rssfeeds/1221656.cms",
			"technology":    "https://timesofindia.indiatimes.com/rssfeeds/4719148.cms",
			"sports":        "https://timesofindia.indiatimes.com/rssfeeds/5880659.cms",
			"entertainment": "https://timesofindia.indiatimes.com/rssfeeds/-2128672765.cms",
			"world":         "https://timesofindia.indiatimes.com/rssfeeds/3907413.cms",
			"politics":      "https://timesofindia.indiatimes.com/rssfeeds/1052732854.cms",
			"science":       "https://timesofindia.indiatimes.com/rssfeeds/-2128672761.cms",
			"health":        "https://timesofindia.indiatimes.com/rssfeeds/3908999.cms",
			"education":     "https://timesofindia.indiatimes.com/rssfeeds/913168846.cms",
		},
		map[string]string{
			"mumbai":    cityFeed,
			"delhi":     cityFeed,
			"bangalore": cityFeed,
			"chennai":   cityFeed,
			"kolkata":   cityFeed,
		},
		"top-stories",
	)
}

// Override adds or replaces locations. Empty locations are ignored.
func (r *Registry) Override(feeds, cities map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, v := range feeds {
		if v = strings.TrimSpace(v); v != "" {
			r.feeds[strings.ToLower(strings.TrimSpace(k))] = v
		}
	}
	for k, v := range cities {
		if v = strings.TrimSpace(v); v != "" {
			r.cities[strings.ToLower(strings.TrimSpace(k))] = v
		}
	}
}

// Location returns the feed location for key: city table first, then the
// top-level table, then the default key's location.
func (r *Registry) Location(key string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if loc, ok := r.cities[key]; ok {
		return loc
	}
	if loc, ok := r.feeds[key]; ok {
		return loc
	}
	return r.feeds[r.defaultKey]
}

// Known reports whether key has its own entry in either table.
func (r *Registry) Known(key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, city := r.cities[key]
	_, top := r.feeds[key]
	return city || top
}
