package analytics

import (
	"math"

	"ReviewPulse/internal/domain"
)

// Matcher decides which aspects a normalized review touches.
type Matcher struct {
	table domain.KeywordTable
}

// NewMatcher copies the keyword table so later edits by the caller are not observed.
func NewMatcher(table domain.KeywordTable) *Matcher {
	return &Matcher{table: table.Clone()}
}

// Match returns the touched aspects in canonical order.
func (m *Matcher) Match(text string) []domain.Aspect {
	var touched []domain.Aspect
	for _, aspect := range domain.Aspects {
		for _, kw := range m.table[aspect] {
			if ContainsWord(text, kw) {
				touched = append(touched, aspect)
				break
			}
		}
	}
	return touched
}

// Aggregator turns labeled reviews into per-aspect positive ratios.
type Aggregator struct {
	matcher *Matcher
}

// NewAggregator wires an aggregator to its matcher.
func NewAggregator(matcher *Matcher) *Aggregator {
	return &Aggregator{matcher: matcher}
}

// Aggregate scores every aspect. Aspects without evidence get
// domain.NoEvidenceScore and a zero mention count.
func (a *Aggregator) Aggregate(reviews []domain.AnnotatedReview) (domain.AspectScores, domain.AspectMentions) {
	total := make(map[domain.Aspect]int, len(domain.Aspects))
	positive := make(map[domain.Aspect]int, len(domain.Aspects))

	for _, r := range reviews {
		for _, aspect := range a.matcher.Match(r.Normalized) {
			total[aspect]++
			if r.Label == domain.Positive {
				positive[aspect]++
			}
		}
	}

	scores := make(domain.AspectScores, len(domain.Aspects))
	mentions := make(domain.AspectMentions, len(domain.Aspects))
	for _, aspect := range domain.Aspects {
		mentions[aspect] = total[aspect]
		if total[aspect] == 0 {
			scores[aspect] = domain.NoEvidenceScore
			continue
		}
		scores[aspect] = round2(float64(positive[aspect]) / float64(total[aspect]))
	}
	return scores, mentions
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
