package analytics

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// StopwordSet is an immutable membership table for filtered tokens.
type StopwordSet map[string]struct{}

// NewStopwordSet builds a set from any number of word lists.
func NewStopwordSet(lists ...[]string) StopwordSet {
	set := StopwordSet{}
	for _, list := range lists {
		for _, w := range list {
			w = strings.ToLower(strings.TrimSpace(w))
			if w != "" {
				set[w] = struct{}{}
			}
		}
	}
	return set
}

// Contains reports whether word is filtered.
func (s StopwordSet) Contains(word string) bool {
	_, ok := s[word]
	return ok
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

// CountWord counts non-overlapping whole-word occurrences of word in text.
// A boundary is any position whose neighbour on that side is not a letter,
// number or underscore, so ZWNJ and punctuation both separate words.
func CountWord(text, word string) int {
	if word == "" {
		return 0
	}
	count := 0
	for offset := 0; offset <= len(text)-len(word); {
		idx := strings.Index(text[offset:], word)
		if idx < 0 {
			break
		}
		start := offset + idx
		end := start + len(word)
		if atBoundary(text, start, end) {
			count++
			offset = end
			continue
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		offset = start + size
	}
	return count
}

// ContainsWord reports whether word occurs in text as a whole word.
func ContainsWord(text, word string) bool {
	return CountWord(text, word) > 0
}

func atBoundary(text string, start, end int) bool {
	if start > 0 {
		if r, _ := utf8.DecodeLastRuneInString(text[:start]); isWordRune(r) {
			return false
		}
	}
	if end < len(text) {
		if r, _ := utf8.DecodeRuneInString(text[end:]); isWordRune(r) {
			return false
		}
	}
	return true
}
