package domain

import "strings"

// SentimentLabel is the closed label domain the analytics core works with.
type SentimentLabel string

const (
	Positive SentimentLabel = "positive"
	Negative SentimentLabel = "negative"
	Neutral  SentimentLabel = "neutral"
)

// labelAliases collapses classifier vocabularies into the closed domain.
var labelAliases = map[string]SentimentLabel{
	"positive":      Positive,
	"very_positive": Positive,
	"pos":           Positive,
	"negative":      Negative,
	"very_negative": Negative,
	"neg":           Negative,
	"neutral":       Neutral,
	"other":         Neutral,
}

// ParseLabel maps a raw classifier label into the closed domain.
// Unrecognized labels become Neutral and ok is false.
func ParseLabel(raw string) (label SentimentLabel, ok bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.ReplaceAll(key, " ", "_")
	if l, found := labelAliases[key]; found {
		return l, true
	}
	return Neutral, false
}

// Valid reports whether l belongs to the closed domain.
func (l SentimentLabel) Valid() bool {
	return l == Positive || l == Negative || l == Neutral
}
