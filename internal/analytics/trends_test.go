package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ReviewPulse/internal/domain"
)

func reviewOn(day string, label domain.SentimentLabel) domain.AnnotatedReview {
	ts, err := time.Parse("2006-01-02 15:04", day+" 13:30")
	if err != nil {
		panic(err)
	}
	return domain.AnnotatedReview{
		Review: domain.Review{CommentText: "x", CreatedAt: ts},
		Label:  label,
	}
}

func trendFixture() []domain.AnnotatedReview {
	return []domain.AnnotatedReview{
		reviewOn("2024-01-02", domain.Positive),
		reviewOn("2024-01-01", domain.Negative),
		reviewOn("2024-01-01", domain.Positive),
		reviewOn("2024-01-04", domain.Neutral),
	}
}

func TestTrendBuilderBuild(t *testing.T) {
	t.Parallel()

	got := NewTrendBuilder(false).Build(trendFixture())

	assert.Equal(t, []domain.TrendPoint{
		{Date: "2024-01-01", Positive: 1, Negative: 1},
		{Date: "2024-01-02", Positive: 1, Negative: 0},
		{Date: "2024-01-04", Positive: 0, Negative: 0},
	}, got)
}

func TestTrendBuilderFillGaps(t *testing.T) {
	t.Parallel()

	got := NewTrendBuilder(true).Build(trendFixture())

	require.Len(t, got, 4)
	assert.Equal(t, domain.TrendPoint{Date: "2024-01-03"}, got[2])
	assert.Equal(t, "2024-01-04", got[3].Date)
}

func TestTrendBuilderSumsMatchLabels(t *testing.T) {
	t.Parallel()

	reviews := trendFixture()
	got := NewTrendBuilder(false).Build(reviews)

	var pos, neg int
	for i, p := range got {
		pos += p.Positive
		neg += p.Negative
		if i > 0 {
			assert.Less(t, got[i-1].Date, p.Date)
		}
	}
	assert.Equal(t, 2, pos)
	assert.Equal(t, 1, neg)
}

func TestTrendBuilderEmpty(t *testing.T) {
	t.Parallel()

	got := NewTrendBuilder(true).Build(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
