package domain

import "fmt"

// Aspect names a facet of the restaurant experience.
type Aspect string

const (
	AspectTaste     Aspect = "taste"
	AspectDelivery  Aspect = "delivery"
	AspectPackaging Aspect = "packaging"
	AspectPrice     Aspect = "price"
	AspectPortion   Aspect = "portion"
	AspectService   Aspect = "service"
)

// NoEvidenceScore is reported for an aspect that no review mentioned.
const NoEvidenceScore = 0.5

// Aspects is the fixed enumeration in canonical order.
var Aspects = []Aspect{
	AspectTaste,
	AspectDelivery,
	AspectPackaging,
	AspectPrice,
	AspectPortion,
	AspectService,
}

// ParseAspect validates a configured aspect name.
func ParseAspect(name string) (Aspect, error) {
	for _, a := range Aspects {
		if string(a) == name {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown aspect %q", name)
}

// AspectScores maps every aspect to a positive ratio in [0,1] or NoEvidenceScore.
type AspectScores map[Aspect]float64

// AspectMentions counts the reviews that touched each aspect.
type AspectMentions map[Aspect]int

// KeywordTable is the immutable aspect→keywords configuration.
type KeywordTable map[Aspect][]string

// Clone returns a deep copy so callers cannot mutate a shared table.
func (t KeywordTable) Clone() KeywordTable {
	out := make(KeywordTable, len(t))
	for aspect, kws := range t {
		out[aspect] = append([]string(nil), kws...)
	}
	return out
}
