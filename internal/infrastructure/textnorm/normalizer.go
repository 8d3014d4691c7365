package textnorm

import (
	"context"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"ReviewPulse/internal/ports"
)

const zwnj = '\u200c'

// letterFolds maps Arabic code points to their Persian counterparts.
var letterFolds = map[rune]rune{
	'ي': 'ی',
	'ى': 'ی',
	'ك': 'ک',
	'٠': '0', '١': '1', '٢': '2', '٣': '3', '٤': '4',
	'٥': '5', '٦': '6', '٧': '7', '٨': '8', '٩': '9',
	'۰': '0', '۱': '1', '۲': '2', '۳': '3', '۴': '4',
	'۵': '5', '۶': '6', '۷': '7', '۸': '8', '۹': '9',
}

// isDiacritic matches Arabic harakat, superscript alef and tatweel.
func isDiacritic(r rune) bool {
	return (r >= 0x064B && r <= 0x065F) || r == 0x0670 || r == 0x0640
}

// Normalizer is the local text cleaner: HTML is stripped, Unicode is
// NFKC-composed, Arabic letters are folded to Persian, diacritics and
// punctuation are dropped and tokens are re-joined with single spaces.
type Normalizer struct{}

var _ ports.Normalizer = (*Normalizer)(nil)

// New returns a local normalizer.
func New() *Normalizer {
	return &Normalizer{}
}

// Normalize never fails on well-formed UTF-8 input.
func (n *Normalizer) Normalize(_ context.Context, text string) (string, error) {
	return Clean(text), nil
}

// Clean applies the local normalization rules to text.
func Clean(text string) string {
	if strings.ContainsRune(text, '<') {
		text = stripHTML(text)
	}

	t := transform.Chain(
		norm.NFKC,
		runes.Remove(runes.Predicate(isDiacritic)),
		runes.Map(foldRune),
	)
	folded, _, err := transform.String(t, text)
	if err != nil {
		folded = text
	}

	tokens := strings.FieldsFunc(strings.ToLower(folded), isSeparator)
	out := tokens[:0]
	for _, tok := range tokens {
		tok = strings.Trim(tok, string(zwnj))
		if tok != "" {
			out = append(out, tok)
		}
	}
	return strings.Join(out, " ")
}

func foldRune(r rune) rune {
	if folded, ok := letterFolds[r]; ok {
		return folded
	}
	return r
}

// isSeparator splits on everything that cannot be part of a word. ZWNJ is
// kept inside compound words such as "بی‌مزه".
func isSeparator(r rune) bool {
	if r == zwnj || r == '_' {
		return false
	}
	return !unicode.IsLetter(r) && !unicode.IsNumber(r) && !unicode.IsMark(r)
}

func stripHTML(text string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return text
	}
	doc.Find("script, style").Remove()
	var parts []string
	doc.Find("body").Contents().Each(func(_ int, s *goquery.Selection) {
		if chunk := strings.TrimSpace(s.Text()); chunk != "" {
			parts = append(parts, chunk)
		}
	})
	if len(parts) == 0 {
		return strings.TrimSpace(doc.Text())
	}
	return strings.Join(parts, " ")
}
