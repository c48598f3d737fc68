// Package sentiment scores headlines with a keyword heuristic.
//
// Each cue group is a case-insensitive, word-bounded alternation. A text is
// positive when positive cue matches strictly outnumber negative ones,
// negative in the opposite case and neutral otherwise.
package sentiment

import (
	"regexp"

	"newsiq/internal/article"
)

var positivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(good|great|excellent|positive|success|win|won|growth|profit|achievement|record|breakthrough)\b`),
	regexp.MustCompile(`(?i)\b(improve|better|boost|rise|gain|surge|increase|up|high|peak|best)\b`),
	regexp.MustCompile(`(?i)\b(happy|joy|celebrate|celebration|congratulation|award|honor|praise)\b`),
	regexp.MustCompile(`(?i)\b(breakthrough|innovation|advance|progress|solution|resolve|recover)\b`),
}

var negativePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(bad|poor|negative|failure|loss|lost|decline|fall|down|low|worse|worst)\b`),
	regexp.MustCompile(`(?i)\b(crisis|problem|issue|error|mistake|fault|flaw|defect|bug|crash|fail)\b`),
	regexp.MustCompile(`(?i)\b(sad|angry|protest|strike|violence|attack|kill|death|murder|accident)\b`),
	regexp.MustCompile(`(?i)\b(scam|fraud|corruption|bribe|cheat|steal|theft|robbery|arrest|jail)\b`),
	regexp.MustCompile(`(?i)\b(disease|virus|pandemic|epidemic|infection|sick|illness|hospital)\b`),
}

// Classify returns the sentiment of text. Empty text is neutral.
func Classify(text string) article.Sentiment {
	if text == "" {
		return article.Neutral
	}

	pos, neg := Score(text)
	switch {
	case pos > neg:
		return article.Positive
	case neg > pos:
		return article.Negative
	default:
		return article.Neutral
	}
}

// Score counts every positive and negative cue match in text.
func Score(text string) (positive, negative int) {
	return countMatches(positivePatterns, text), countMatches(negativePatterns, text)
}

func countMatches(patterns []*regexp.Regexp, text string) int {
	n := 0
	for _, p := range patterns {
		n += len(p.FindAllStringIndex(text, -1))
	}
	return n
}
