package analytics

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ReviewPulse/internal/domain"
)

func negativeSeries(counts ...int) []domain.TrendPoint {
	points := make([]domain.TrendPoint, len(counts))
	for i, c := range counts {
		points[i] = domain.TrendPoint{Date: fmt.Sprintf("2024-01-%02d", i+1), Negative: c}
	}
	return points
}

func TestAlertEngineSpikes(t *testing.T) {
	t.Parallel()

	engine := NewAlertEngine(testKeywords(), DefaultAlertConfig())

	tests := []struct {
		name   string
		series []int
		want   []string
	}{
		{name: "outlier day flagged", series: []int{1, 1, 1, 1, 10}, want: []string{"2024-01-05"}},
		{name: "two flat points", series: []int{1, 1}},
		{name: "two points never flag", series: []int{0, 10}},
		{name: "single point", series: []int{50}},
		{name: "flat series", series: []int{5, 5, 5}},
		{name: "floor blocks low volume", series: []int{0, 0, 0, 0, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			alerts := engine.Spikes(negativeSeries(tt.series...))
			var dates []string
			for _, a := range alerts {
				assert.Equal(t, domain.AlertNegativeSpike, a.Type)
				dates = append(dates, a.Date)
			}
			assert.Equal(t, tt.want, dates)
		})
	}
}

func TestSpikeMessage(t *testing.T) {
	t.Parallel()

	alerts := NewAlertEngine(testKeywords(), DefaultAlertConfig()).Spikes(negativeSeries(1, 1, 1, 1, 10))
	require.Len(t, alerts, 1)
	assert.Equal(t, "Negative reviews on 2024-01-05 are unusually high (10).", alerts[0].Message)
	assert.Equal(t, 10, alerts[0].Count)
}

func TestAlertEngineRepeatedIssues(t *testing.T) {
	t.Parallel()

	engine := NewAlertEngine(testKeywords(), DefaultAlertConfig())
	alerts := engine.RepeatedIssues([]domain.AnnotatedReview{
		annotated("پیک دیر", domain.Negative),
		annotated("پیک دیر", domain.Negative),
		annotated("پیک خیلی دیر اومد", domain.Negative),
		annotated("پیک دیر", domain.Positive),
		annotated("طعم بد طعم بد", domain.Negative),
	})

	require.Len(t, alerts, 2)
	assert.Equal(t, domain.RepeatedIssueAlert("دیر", 3), alerts[0])
	assert.Equal(t, domain.RepeatedIssueAlert("پیک", 3), alerts[1])
	assert.Equal(t, "The issue 'دیر' appeared 3 times in negative reviews.", alerts[0].Message)
}

func TestAlertEngineRepeatedIssuesNoNegatives(t *testing.T) {
	t.Parallel()

	engine := NewAlertEngine(testKeywords(), DefaultAlertConfig())
	assert.Empty(t, engine.RepeatedIssues([]domain.AnnotatedReview{
		annotated("پیک دیر پیک دیر پیک دیر", domain.Positive),
	}))
}

func TestAlertEngineDetectOrder(t *testing.T) {
	t.Parallel()

	engine := NewAlertEngine(testKeywords(), DefaultAlertConfig())
	reviews := []domain.AnnotatedReview{
		annotated("دیر دیر دیر", domain.Negative),
	}
	alerts := engine.Detect(negativeSeries(1, 1, 1, 1, 10), reviews)

	require.Len(t, alerts, 2)
	assert.Equal(t, domain.AlertNegativeSpike, alerts[0].Type)
	assert.Equal(t, domain.AlertRepeatedIssue, alerts[1].Type)
}

func TestSmartAlerts(t *testing.T) {
	t.Parallel()

	scores := domain.AspectScores{
		domain.AspectDelivery: 0.3,
		domain.AspectTaste:    domain.NoEvidenceScore,
		domain.AspectPrice:    0.2,
	}
	mentions := domain.AspectMentions{
		domain.AspectDelivery: 2,
		domain.AspectPrice:    1,
	}

	got := SmartAlerts(DefaultAspectWarnings(), scores, mentions)
	assert.Equal(t, []string{"تاخیر در ارسال", "قیمت بالا نسبت به کیفیت"}, got)
	assert.Empty(t, SmartAlerts(DefaultAspectWarnings(), domain.AspectScores{}, domain.AspectMentions{}))
}
