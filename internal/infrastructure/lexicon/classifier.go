// Package lexicon provides an offline Persian sentiment classifier backed by
// an embedded seed lexicon.
//
// Each token found in the lexicon contributes its score; a score is flipped
// when the next token is a negating copula ("خوب نبود"). The average score
// decides the label. Unknown tokens are ignored, so texts without lexicon
// hits are neutral.
package lexicon

import (
	"context"
	_ "embed"
	"strconv"
	"strings"
	"unicode"

	"ReviewPulse/internal/domain"
	"ReviewPulse/internal/ports"
)

//go:embed lexicon.tsv
var lexiconRaw string

const zwnj = '\u200c'

var negators = map[string]struct{}{
	"نیست": {}, "نبود": {}, "نیستند": {}, "نبودند": {}, "نشد": {}, "نمیشه": {}, "نه": {},
}

// Classifier labels texts without any network round trip.
type Classifier struct {
	lexicon map[string]float64
}

var _ ports.Classifier = (*Classifier)(nil)

// New parses the embedded lexicon.
func New() *Classifier {
	return &Classifier{lexicon: parseLexicon(lexiconRaw)}
}

// parseLexicon parses tab-separated "word\tscore" lines.
func parseLexicon(raw string) map[string]float64 {
	m := make(map[string]float64, 64)
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line[0] == '#' {
			continue
		}
		parts := strings.SplitN(line, "\t", 2)
		if len(parts) != 2 {
			continue
		}
		score, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			continue
		}
		m[strings.TrimSpace(parts[0])] = score
	}
	return m
}

// Classify labels every text; it only fails when ctx is already done.
func (c *Classifier) Classify(ctx context.Context, texts []string) ([]domain.SentimentLabel, error) {
	if err := ctx.Err(); err != nil {
		return nil, ports.NewCollaboratorError("lexicon", ports.FailureTimeout, err)
	}
	labels := make([]domain.SentimentLabel, len(texts))
	for i, text := range texts {
		labels[i] = c.label(text)
	}
	return labels, nil
}

func (c *Classifier) label(text string) domain.SentimentLabel {
	score, hits := c.score(text)
	switch {
	case hits == 0:
		return domain.Neutral
	case score > 0:
		return domain.Positive
	case score < 0:
		return domain.Negative
	default:
		return domain.Neutral
	}
}

func (c *Classifier) score(text string) (float64, int) {
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return r != zwnj && !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})

	var sum float64
	hits := 0
	for i, tok := range tokens {
		s, ok := c.lexicon[tok]
		if !ok {
			continue
		}
		if i+1 < len(tokens) {
			if _, neg := negators[tokens[i+1]]; neg {
				s = -s
			}
		}
		sum += s
		hits++
	}
	if hits == 0 {
		return 0, 0
	}
	return sum / float64(hits), hits
}
