package analytics

import (
	"math"
	"regexp"
	"slices"
	"strings"
)

const (
	defaultThemeTopN     = 6
	defaultThemeFeatures = 50
)

// tokenPattern keeps runs of at least two word characters.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// ThemeExtractor ranks the most characteristic terms of one polarity subset
// by summed TF-IDF weight.
type ThemeExtractor struct {
	stopwords   StopwordSet
	topN        int
	maxFeatures int
}

// NewThemeExtractor falls back to 6 themes over a 50 term vocabulary for
// non-positive limits.
func NewThemeExtractor(stopwords StopwordSet, topN, maxFeatures int) *ThemeExtractor {
	if topN <= 0 {
		topN = defaultThemeTopN
	}
	if maxFeatures <= 0 {
		maxFeatures = defaultThemeFeatures
	}
	return &ThemeExtractor{stopwords: stopwords, topN: topN, maxFeatures: maxFeatures}
}

type termWeight struct {
	term   string
	weight float64
}

func cmpTermWeight(a, b termWeight) int {
	if a.weight != b.weight {
		if a.weight > b.weight {
			return -1
		}
		return 1
	}
	return strings.Compare(a.term, b.term)
}

// Extract returns at most topN themes for docs, highest weight first.
// An empty subset or a subset with no usable vocabulary yields an empty list.
func (e *ThemeExtractor) Extract(docs []string) []string {
	themes := []string{}
	if len(docs) == 0 {
		return themes
	}

	tokenized := make([][]string, len(docs))
	corpusFreq := map[string]int{}
	for i, doc := range docs {
		tokens := e.tokenize(doc)
		tokenized[i] = tokens
		for _, tok := range tokens {
			corpusFreq[tok]++
		}
	}

	vocab := e.vocabulary(corpusFreq)
	if len(vocab) == 0 {
		return themes
	}

	docFreq := make(map[string]int, len(vocab))
	termFreqs := make([]map[string]int, len(docs))
	for i, tokens := range tokenized {
		tf := map[string]int{}
		for _, tok := range tokens {
			if _, ok := vocab[tok]; ok {
				tf[tok]++
			}
		}
		for term := range tf {
			docFreq[term]++
		}
		termFreqs[i] = tf
	}

	n := float64(len(docs))
	idf := make(map[string]float64, len(vocab))
	for term := range vocab {
		idf[term] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}

	summed := make(map[string]float64, len(vocab))
	for _, tf := range termFreqs {
		var norm float64
		weights := make(map[string]float64, len(tf))
		for term, count := range tf {
			w := float64(count) * idf[term]
			weights[term] = w
			norm += w * w
		}
		if norm == 0 {
			continue
		}
		norm = math.Sqrt(norm)
		for term, w := range weights {
			summed[term] += w / norm
		}
	}

	ranked := make([]termWeight, 0, len(summed))
	for term, w := range summed {
		ranked = append(ranked, termWeight{term: term, weight: w})
	}
	slices.SortStableFunc(ranked, cmpTermWeight)

	if len(ranked) > e.topN {
		ranked = ranked[:e.topN]
	}
	for _, tw := range ranked {
		themes = append(themes, tw.term)
	}
	return themes
}

func (e *ThemeExtractor) tokenize(doc string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(doc), -1)
	tokens := raw[:0]
	for _, tok := range raw {
		if e.stopwords.Contains(tok) {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// vocabulary keeps the maxFeatures most frequent terms, ties broken by term.
func (e *ThemeExtractor) vocabulary(corpusFreq map[string]int) map[string]struct{} {
	type termCount struct {
		term  string
		count int
	}
	counts := make([]termCount, 0, len(corpusFreq))
	for term, c := range corpusFreq {
		counts = append(counts, termCount{term: term, count: c})
	}
	slices.SortFunc(counts, func(a, b termCount) int {
		if a.count != b.count {
			return b.count - a.count
		}
		return strings.Compare(a.term, b.term)
	})
	if len(counts) > e.maxFeatures {
		counts = counts[:e.maxFeatures]
	}

	vocab := make(map[string]struct{}, len(counts))
	for _, tc := range counts {
		vocab[tc.term] = struct{}{}
	}
	return vocab
}
