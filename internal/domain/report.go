package domain

import "fmt"

// SentimentSummary is the overall label distribution for one restaurant.
type SentimentSummary struct {
	TotalReviews       int     `json:"total_reviews"`
	PositiveCount      int     `json:"positive_count"`
	NegativeCount      int     `json:"negative_count"`
	NeutralCount       int     `json:"neutral_count"`
	PositivePercentage float64 `json:"positive_percentage"`
	NegativePercentage float64 `json:"negative_percentage"`
	NeutralPercentage  float64 `json:"neutral_percentage"`
}

// PositiveRatio returns the positive fraction in [0,1].
func (s SentimentSummary) PositiveRatio() float64 {
	if s.TotalReviews == 0 {
		return 0
	}
	return float64(s.PositiveCount) / float64(s.TotalReviews)
}

// TrendPoint is one calendar day of sentiment counts.
type TrendPoint struct {
	Date     string `json:"date"`
	Positive int    `json:"positive"`
	Negative int    `json:"negative"`
}

// AlertType tags the Alert variant.
type AlertType string

const (
	AlertNegativeSpike AlertType = "negative_spike"
	AlertRepeatedIssue AlertType = "repeated_issue"
)

// Alert is either a negative spike on a date or a repeated keyword issue.
type Alert struct {
	Type    AlertType `json:"type"`
	Message string    `json:"message"`
	Date    string    `json:"date,omitempty"`
	Keyword string    `json:"keyword,omitempty"`
	Count   int       `json:"count"`
}

// NegativeSpikeAlert builds the spike variant.
func NegativeSpikeAlert(date string, count int) Alert {
	return Alert{
		Type:    AlertNegativeSpike,
		Message: fmt.Sprintf("Negative reviews on %s are unusually high (%d).", date, count),
		Date:    date,
		Count:   count,
	}
}

// RepeatedIssueAlert builds the repeated keyword variant.
func RepeatedIssueAlert(keyword string, count int) Alert {
	return Alert{
		Type:    AlertRepeatedIssue,
		Message: fmt.Sprintf("The issue '%s' appeared %d times in negative reviews.", keyword, count),
		Keyword: keyword,
		Count:   count,
	}
}

// WordCount is one word cloud entry.
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// RestaurantReport is the terminal per-restaurant record. It is built once
// per run and never mutated afterwards.
type RestaurantReport struct {
	RestaurantID      int64            `json:"restaurant_id"`
	RestaurantName    string           `json:"restaurant_name"`
	Category          string           `json:"category"`
	Location          string           `json:"location"`
	AvgRating         float64          `json:"avg_rating"`
	PriceRange        string           `json:"price_range"`
	SentimentAnalysis SentimentSummary `json:"sentiment_analysis"`
	PositiveTopics    []string         `json:"main_positive_topics"`
	NegativeTopics    []string         `json:"main_negative_topics"`
	AspectScores      AspectScores     `json:"aspect_based_analysis"`
	AspectMentions    AspectMentions   `json:"aspect_mentions"`
	AISummary         string           `json:"ai_summary"`
	TimeTrends        []TrendPoint     `json:"time_trends"`
	Alerts            []Alert          `json:"alerts"`
	SmartAlerts       []string         `json:"smart_alerts"`
	WordCloud         []WordCount      `json:"word_cloud"`
	HealthScore       int              `json:"health_score"`
}
