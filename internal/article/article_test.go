package article

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupe(t *testing.T) {
	in := []Article{
		{ID: "a", Title: "Storm Hits Coast"},
		{ID: "b", Title: "  STORM hits COAST  "},
		{ID: "c", Title: "Markets Rally"},
		{ID: "d", Title: "markets rally"},
	}

	out := Dedupe(in)

	if assert.Len(t, out, 2) {
		assert.Equal(t, "a", out[0].ID)
		assert.Equal(t, "c", out[1].ID)
	}
}

func TestDedupeEmpty(t *testing.T) {
	assert.Empty(t, Dedupe(nil))
}

func TestTruncate(t *testing.T) {
	in := []Article{{ID: "1"}, {ID: "2"}, {ID: "3"}}

	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"below length", 2, 2},
		{"equal length", 3, 3},
		{"above length", 10, 3},
		{"zero", 0, 0},
		{"negative", -1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, Truncate(in, tt.limit), tt.want)
		})
	}
}

func TestParseSentiment(t *testing.T) {
	assert.Equal(t, Positive, ParseSentiment("Positive"))
	assert.Equal(t, Negative, ParseSentiment(" negative "))
	assert.Equal(t, Neutral, ParseSentiment("neutral"))
	assert.Equal(t, Neutral, ParseSentiment("mixed"))
	assert.Equal(t, Neutral, ParseSentiment(""))
}
