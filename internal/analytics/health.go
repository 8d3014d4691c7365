package analytics

import (
	"fmt"
	"math"
)

// HealthWeights blends the three health inputs; they must sum to 1.
type HealthWeights struct {
	Sentiment float64
	Rating    float64
	Delivery  float64
}

// DefaultHealthWeights favours customer sentiment over the stored rating.
func DefaultHealthWeights() HealthWeights {
	return HealthWeights{Sentiment: 0.6, Rating: 0.3, Delivery: 0.1}
}

// Validate rejects negative weights or weights not summing to 1.
func (w HealthWeights) Validate() error {
	if w.Sentiment < 0 || w.Rating < 0 || w.Delivery < 0 {
		return fmt.Errorf("health weights must be non-negative")
	}
	if sum := w.Sentiment + w.Rating + w.Delivery; math.Abs(sum-1) > 1e-6 {
		return fmt.Errorf("health weights sum to %.3f, want 1.0", sum)
	}
	return nil
}

// HealthScorer collapses sentiment, rating and delivery into 0..100.
type HealthScorer struct {
	weights HealthWeights
}

// NewHealthScorer builds a scorer with the given weights.
func NewHealthScorer(weights HealthWeights) HealthScorer {
	return HealthScorer{weights: weights}
}

// Score takes the positive ratio and delivery score in [0,1] and the rating
// in [0,5]. The result is truncated and capped at 100.
func (h HealthScorer) Score(positiveRatio, rating, delivery float64) int {
	raw := positiveRatio*100*h.weights.Sentiment +
		rating/5*100*h.weights.Rating +
		delivery*100*h.weights.Delivery
	score := int(math.Floor(raw + 1e-9))
	if score > 100 {
		score = 100
	}
	return score
}
