package ports

import (
	"context"
	"time"

	"ReviewPulse/internal/domain"
)

// DatasetSource loads the restaurants and reviews of one run.
type DatasetSource interface {
	Load(ctx context.Context) (domain.Dataset, error)
}

// Classifier labels a batch of normalized texts, one label per text.
type Classifier interface {
	Classify(ctx context.Context, texts []string) ([]domain.SentimentLabel, error)
}

// Normalizer cleans raw comment text before matching and classification.
type Normalizer interface {
	Normalize(ctx context.Context, text string) (string, error)
}

// SummaryRequest carries everything a summarization strategy may use.
type SummaryRequest struct {
	RestaurantName string
	PositiveTopics []string
	NegativeTopics []string
	Alerts         []domain.Alert
	Trend          []domain.TrendPoint
	Comments       []string
}

// Summarizer produces the short natural-language report summary.
type Summarizer interface {
	Summarize(ctx context.Context, req SummaryRequest) (string, error)
}

// ReportSink writes the complete report array of a run.
type ReportSink interface {
	Write(ctx context.Context, reports []domain.RestaurantReport) error
}

// ReportRepository persists reports for the serving boundary.
type ReportRepository interface {
	SaveReports(ctx context.Context, reports []domain.RestaurantReport) error
	LoadReports(ctx context.Context) ([]domain.RestaurantReport, error)
}

// HistoryRecord is one restaurant outcome within a run.
type HistoryRecord struct {
	RunID          string
	RestaurantID   int64
	RestaurantName string
	HealthScore    int
	TotalReviews   int
	PositiveShare  float64
	NegativeShare  float64
	AlertCount     int
	CreatedAt      time.Time
}

// HistoryStore keeps per-run outcomes for trend inspection across runs.
type HistoryStore interface {
	Record(ctx context.Context, records []HistoryRecord) error
	ForRestaurant(ctx context.Context, restaurantID int64, limit int) ([]HistoryRecord, error)
}

// AlertPublisher fans alerts and report-ready events out to subscribers.
type AlertPublisher interface {
	PublishReport(ctx context.Context, runID string, report domain.RestaurantReport) error
}

// Notifier streams alert digests to Telegram or other channels.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
