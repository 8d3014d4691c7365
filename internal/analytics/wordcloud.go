package analytics

import (
	"slices"
	"strings"
	"unicode/utf8"

	"ReviewPulse/internal/domain"
)

const defaultCloudSize = 10

// WordCloud counts the most frequent informative tokens of a restaurant.
type WordCloud struct {
	stopwords StopwordSet
	size      int
}

// NewWordCloud merges the extra cloud stopwords into a copy of the base set.
func NewWordCloud(stopwords, extra StopwordSet, size int) *WordCloud {
	if size <= 0 {
		size = defaultCloudSize
	}
	merged := make(StopwordSet, len(stopwords)+len(extra))
	for w := range stopwords {
		merged[w] = struct{}{}
	}
	for w := range extra {
		merged[w] = struct{}{}
	}
	return &WordCloud{stopwords: merged, size: size}
}

// Build returns the top tokens, most frequent first, ties by word.
func (c *WordCloud) Build(texts []string) []domain.WordCount {
	counts := map[string]int{}
	for _, text := range texts {
		for _, tok := range strings.Fields(text) {
			tok = strings.ToLower(tok)
			if utf8.RuneCountInString(tok) <= 1 || c.stopwords.Contains(tok) {
				continue
			}
			counts[tok]++
		}
	}

	cloud := make([]domain.WordCount, 0, len(counts))
	for w, n := range counts {
		cloud = append(cloud, domain.WordCount{Word: w, Count: n})
	}
	slices.SortFunc(cloud, func(a, b domain.WordCount) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		return strings.Compare(a.Word, b.Word)
	})
	if len(cloud) > c.size {
		cloud = cloud[:c.size]
	}
	return cloud
}
