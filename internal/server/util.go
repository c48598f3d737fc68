// internal/server/util.go
package server

import (
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// maxLimit caps any caller-supplied limit.
const maxLimit = 100

// RespondWithError sends a JSON error response.
func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, map[string]string{"error": message})
}

// RespondWithJSON sends a JSON response with the given status code and payload.
// If the payload is nil, no body is sent.
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			log.Printf("Error encoding JSON response: %v", err)
		}
	}
}

// intParam reads a positive integer query parameter. Missing, malformed and
// non-positive values fall back to def; values above maxLimit are clamped.
func intParam(q url.Values, name string, def int) int {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	if n > maxLimit {
		return maxLimit
	}
	return n
}

// stringParam returns a trimmed query parameter or def when it is empty.
func stringParam(q url.Values, name, def string) string {
	if v := strings.TrimSpace(q.Get(name)); v != "" {
		return v
	}
	return def
}

// listParam splits a comma separated parameter, dropping empty elements.
func listParam(q url.Values, name string, def []string) []string {
	raw := q.Get(name)
	if strings.TrimSpace(raw) == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
