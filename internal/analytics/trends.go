package analytics

import (
	"sort"
	"time"

	"ReviewPulse/internal/domain"
)

const dateLayout = "2006-01-02"

// TrendBuilder buckets labeled reviews into a daily polarity series.
type TrendBuilder struct {
	fillGaps bool
}

// NewTrendBuilder returns a builder; fillGaps adds zero points for calendar
// days between the first and last reviewed day.
func NewTrendBuilder(fillGaps bool) TrendBuilder {
	return TrendBuilder{fillGaps: fillGaps}
}

// Build returns one point per reviewed date in ascending order. Neutral
// reviews still make their date appear.
func (b TrendBuilder) Build(reviews []domain.AnnotatedReview) []domain.TrendPoint {
	points := []domain.TrendPoint{}
	if len(reviews) == 0 {
		return points
	}

	byDate := map[string]*domain.TrendPoint{}
	for _, r := range reviews {
		day := r.Review.CreatedAt.Format(dateLayout)
		p, ok := byDate[day]
		if !ok {
			p = &domain.TrendPoint{Date: day}
			byDate[day] = p
		}
		switch r.Label {
		case domain.Positive:
			p.Positive++
		case domain.Negative:
			p.Negative++
		}
	}

	for _, p := range byDate {
		points = append(points, *p)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })

	if b.fillGaps {
		points = fillMissingDays(points)
	}
	return points
}

func fillMissingDays(points []domain.TrendPoint) []domain.TrendPoint {
	if len(points) < 2 {
		return points
	}
	first, err := time.Parse(dateLayout, points[0].Date)
	if err != nil {
		return points
	}
	last, err := time.Parse(dateLayout, points[len(points)-1].Date)
	if err != nil {
		return points
	}

	filled := make([]domain.TrendPoint, 0, int(last.Sub(first).Hours()/24)+1)
	idx := 0
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		key := day.Format(dateLayout)
		if idx < len(points) && points[idx].Date == key {
			filled = append(filled, points[idx])
			idx++
			continue
		}
		filled = append(filled, domain.TrendPoint{Date: key})
	}
	return filled
}
