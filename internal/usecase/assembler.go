package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ReviewPulse/internal/analytics"
	"ReviewPulse/internal/domain"
	"ReviewPulse/internal/metrics"
	"ReviewPulse/internal/ports"
	"ReviewPulse/internal/summarizer"
)

var (
	// ErrNormalization aborts a run when text normalization fails.
	ErrNormalization = errors.New("normalization failed")
	// ErrClassification aborts a run when sentiment classification fails.
	ErrClassification = errors.New("classification failed")
)

// AnalysisSettings carries the immutable tunables of the analytics core.
type AnalysisSettings struct {
	Keywords       domain.KeywordTable
	Stopwords      analytics.StopwordSet
	CloudStopwords analytics.StopwordSet
	ThemeTopN      int
	MaxFeatures    int
	FillGaps       bool
	Alerts         analytics.AlertConfig
	Warnings       []analytics.AspectWarning
	Health         analytics.HealthWeights
	WordCloudSize  int
	MaxComments    int
}

// DefaultAnalysisSettings mirrors the configuration defaults.
func DefaultAnalysisSettings(keywords domain.KeywordTable, stopwords []string) AnalysisSettings {
	return AnalysisSettings{
		Keywords:       keywords,
		Stopwords:      analytics.NewStopwordSet(stopwords),
		CloudStopwords: analytics.NewStopwordSet(),
		ThemeTopN:      6,
		MaxFeatures:    50,
		Alerts:         analytics.DefaultAlertConfig(),
		Warnings:       analytics.DefaultAspectWarnings(),
		Health:         analytics.DefaultHealthWeights(),
		WordCloudSize:  10,
		MaxComments:    15,
	}
}

// Timeouts bound each collaborator call. Zero disables the bound.
type Timeouts struct {
	Normalize time.Duration
	Classify  time.Duration
	Summarize time.Duration
}

// AssemblerDeps wires collaborators into the report assembler.
type AssemblerDeps struct {
	Normalizer ports.Normalizer
	Classifier ports.Classifier
	Summarizer ports.Summarizer
	Settings   AnalysisSettings
	Timeouts   Timeouts
	Metrics    *metrics.Metrics
}

// Assembler builds one RestaurantReport from a restaurant and its reviews.
// It is safe for concurrent use: every component it holds is read-only.
type Assembler struct {
	normalizer ports.Normalizer
	classifier ports.Classifier
	summarizer ports.Summarizer
	timeouts   Timeouts
	metrics    *metrics.Metrics

	aggregator  *analytics.Aggregator
	themes      *analytics.ThemeExtractor
	trend       analytics.TrendBuilder
	alerts      *analytics.AlertEngine
	warnings    []analytics.AspectWarning
	health      analytics.HealthScorer
	cloud       *analytics.WordCloud
	maxComments int
}

// NewAssembler constructs the per-restaurant report builder.
func NewAssembler(deps AssemblerDeps) *Assembler {
	s := deps.Settings

	return &Assembler{
		normalizer:  deps.Normalizer,
		classifier:  deps.Classifier,
		summarizer:  deps.Summarizer,
		timeouts:    deps.Timeouts,
		metrics:     deps.Metrics,
		aggregator:  analytics.NewAggregator(analytics.NewMatcher(s.Keywords)),
		themes:      analytics.NewThemeExtractor(s.Stopwords, s.ThemeTopN, s.MaxFeatures),
		trend:       analytics.NewTrendBuilder(s.FillGaps),
		alerts:      analytics.NewAlertEngine(s.Keywords, s.Alerts),
		warnings:    s.Warnings,
		health:      analytics.NewHealthScorer(s.Health),
		cloud:       analytics.NewWordCloud(s.Stopwords, s.CloudStopwords, s.WordCloudSize),
		maxComments: s.MaxComments,
	}
}

// Assemble returns ok=false for a restaurant without reviews.
func (a *Assembler) Assemble(ctx context.Context, restaurant domain.Restaurant, reviews []domain.Review) (domain.RestaurantReport, bool, error) {
	if len(reviews) == 0 {
		return domain.RestaurantReport{}, false, nil
	}

	annotated, err := a.annotate(ctx, restaurant.ID, reviews)
	if err != nil {
		return domain.RestaurantReport{}, false, err
	}

	var positiveDocs, negativeDocs, texts, comments []string
	for _, r := range annotated {
		texts = append(texts, r.Normalized)
		comments = append(comments, r.Review.CommentText)
		switch r.Label {
		case domain.Positive:
			positiveDocs = append(positiveDocs, r.Normalized)
		case domain.Negative:
			negativeDocs = append(negativeDocs, r.Normalized)
		}
	}

	summary := analytics.Summarize(annotated)
	scores, mentions := a.aggregator.Aggregate(annotated)
	positiveTopics := a.themes.Extract(positiveDocs)
	negativeTopics := a.themes.Extract(negativeDocs)
	trend := a.trend.Build(annotated)
	alerts := a.alerts.Detect(trend, annotated)

	report := domain.RestaurantReport{
		RestaurantID:      restaurant.ID,
		RestaurantName:    restaurant.Name,
		Category:          restaurant.Category,
		Location:          restaurant.Location,
		AvgRating:         restaurant.Rating,
		PriceRange:        restaurant.PriceRange,
		SentimentAnalysis: summary,
		PositiveTopics:    positiveTopics,
		NegativeTopics:    negativeTopics,
		AspectScores:      scores,
		AspectMentions:    mentions,
		TimeTrends:        orEmpty(trend),
		Alerts:            orEmpty(alerts),
		SmartAlerts:       orEmpty(analytics.SmartAlerts(a.warnings, scores, mentions)),
		WordCloud:         orEmpty(a.cloud.Build(texts)),
		HealthScore:       a.health.Score(summary.PositiveRatio(), restaurant.Rating, scores[domain.AspectDelivery]),
	}

	if len(comments) > a.maxComments && a.maxComments > 0 {
		comments = comments[:a.maxComments]
	}
	report.AISummary = a.summarize(ctx, ports.SummaryRequest{
		RestaurantName: restaurant.Name,
		PositiveTopics: positiveTopics,
		NegativeTopics: negativeTopics,
		Alerts:         report.Alerts,
		Trend:          report.TimeTrends,
		Comments:       comments,
	})

	return report, true, nil
}

func (a *Assembler) annotate(ctx context.Context, restaurantID int64, reviews []domain.Review) ([]domain.AnnotatedReview, error) {
	normalized := make([]string, len(reviews))
	for i, r := range reviews {
		cctx, cancel := withTimeout(ctx, a.timeouts.Normalize)
		text, err := a.normalizer.Normalize(cctx, r.CommentText)
		cancel()
		if err != nil {
			a.metrics.RecordCollaboratorFailure("normalizer", err)
			return nil, fmt.Errorf("%w: restaurant %d: %w", ErrNormalization, restaurantID, err)
		}
		normalized[i] = text
	}

	cctx, cancel := withTimeout(ctx, a.timeouts.Classify)
	labels, err := a.classifier.Classify(cctx, normalized)
	cancel()
	if err == nil && len(labels) != len(normalized) {
		err = ports.NewCollaboratorError("classifier", ports.FailureMalformed,
			fmt.Errorf("got %d labels for %d texts", len(labels), len(normalized)))
	}
	if err != nil {
		a.metrics.RecordCollaboratorFailure("classifier", err)
		return nil, fmt.Errorf("%w: restaurant %d: %w", ErrClassification, restaurantID, err)
	}

	annotated := make([]domain.AnnotatedReview, len(reviews))
	for i, r := range reviews {
		label := labels[i]
		if !label.Valid() {
			label = domain.Neutral
		}
		annotated[i] = domain.AnnotatedReview{Review: r, Normalized: normalized[i], Label: label}
	}
	return annotated, nil
}

func (a *Assembler) summarize(ctx context.Context, req ports.SummaryRequest) string {
	if a.summarizer == nil {
		return ""
	}
	cctx, cancel := withTimeout(ctx, a.timeouts.Summarize)
	defer cancel()

	out, err := a.summarizer.Summarize(cctx, req)
	if err != nil {
		a.metrics.RecordCollaboratorFailure("summarizer", err)
		return summarizer.FailurePrefix + err.Error()
	}
	return out
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
