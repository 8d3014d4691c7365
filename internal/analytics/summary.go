package analytics

import "ReviewPulse/internal/domain"

// Summarize counts labels and derives percentages floored to one decimal,
// so positive and negative percentages never add up past 100.
func Summarize(reviews []domain.AnnotatedReview) domain.SentimentSummary {
	s := domain.SentimentSummary{TotalReviews: len(reviews)}
	for _, r := range reviews {
		switch r.Label {
		case domain.Positive:
			s.PositiveCount++
		case domain.Negative:
			s.NegativeCount++
		default:
			s.NeutralCount++
		}
	}
	s.PositivePercentage = percent(s.PositiveCount, s.TotalReviews)
	s.NegativePercentage = percent(s.NegativeCount, s.TotalReviews)
	s.NeutralPercentage = percent(s.NeutralCount, s.TotalReviews)
	return s
}

func percent(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(count*1000/total) / 10
}
