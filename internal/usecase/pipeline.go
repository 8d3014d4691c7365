package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"ReviewPulse/internal/domain"
	"ReviewPulse/internal/metrics"
	"ReviewPulse/internal/ports"
)

// PipelineDeps wires all driven adapters into the orchestration pipeline.
// Only Source and Assembler are required.
type PipelineDeps struct {
	Source     ports.DatasetSource
	Assembler  *Assembler
	Sinks      []ports.ReportSink
	Repository ports.ReportRepository
	History    ports.HistoryStore
	Publisher  ports.AlertPublisher
	Notifier   ports.Notifier
	Metrics    *metrics.Metrics
	Workers    int
	Logger     *slog.Logger
	Now        func() time.Time
	NewRunID   func() string
}

// Pipeline implements one analysis run over the whole dataset.
type Pipeline struct {
	source     ports.DatasetSource
	assembler  *Assembler
	sinks      []ports.ReportSink
	repository ports.ReportRepository
	history    ports.HistoryStore
	publisher  ports.AlertPublisher
	notifier   ports.Notifier
	metrics    *metrics.Metrics
	workers    int
	logger     *slog.Logger
	now        func() time.Time
	newRunID   func() string
}

// RunResult describes the outcome of one run.
type RunResult struct {
	RunID   string
	Reports []domain.RestaurantReport
	Skipped []int64
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	p := &Pipeline{
		source:     deps.Source,
		assembler:  deps.Assembler,
		sinks:      deps.Sinks,
		repository: deps.Repository,
		history:    deps.History,
		publisher:  deps.Publisher,
		notifier:   deps.Notifier,
		metrics:    deps.Metrics,
		workers:    deps.Workers,
		logger:     deps.Logger,
		now:        deps.Now,
		newRunID:   deps.NewRunID,
	}
	if p.workers < 1 {
		p.workers = 1
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	if p.now == nil {
		p.now = time.Now
	}
	if p.newRunID == nil {
		p.newRunID = uuid.NewString
	}
	return p
}

// Run loads the dataset, builds every report on a bounded worker pool and
// hands the ordered result to the configured sinks.
func (p *Pipeline) Run(ctx context.Context) (result RunResult, err error) {
	defer func() { p.metrics.RecordRun(err) }()

	if p.source == nil || p.assembler == nil {
		return RunResult{}, fmt.Errorf("pipeline is missing a dataset source or assembler")
	}

	result.RunID = p.newRunID()
	logger := p.logger.With("run_id", result.RunID)

	dataset, err := p.source.Load(ctx)
	if err != nil {
		return result, fmt.Errorf("load dataset: %w", err)
	}
	logger.Info("dataset loaded", "restaurants", len(dataset.Restaurants), "reviews", len(dataset.Reviews))

	reports, skipped, err := p.build(ctx, dataset)
	if err != nil {
		return result, err
	}
	result.Reports, result.Skipped = reports, skipped
	logger.Info("reports built", "reports", len(reports), "skipped", len(skipped))

	for _, sink := range p.sinks {
		if err := sink.Write(ctx, reports); err != nil {
			return result, fmt.Errorf("write reports: %w", err)
		}
	}

	if p.repository != nil {
		if err := p.repository.SaveReports(ctx, reports); err != nil {
			return result, fmt.Errorf("save reports: %w", err)
		}
	}

	p.recordHistory(ctx, logger, result.RunID, reports)
	p.publish(ctx, logger, result.RunID, reports)
	p.notify(ctx, logger, reports)

	return result, nil
}

func (p *Pipeline) build(ctx context.Context, dataset domain.Dataset) ([]domain.RestaurantReport, []int64, error) {
	grouped := dataset.ReviewsByRestaurant()
	slots := make([]*domain.RestaurantReport, len(dataset.Restaurants))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, restaurant := range dataset.Restaurants {
		reviews := grouped[restaurant.ID]
		if len(reviews) == 0 {
			continue
		}
		g.Go(func() error {
			started := time.Now()
			report, ok, err := p.assembler.Assemble(gctx, restaurant, reviews)
			if err != nil {
				return err
			}
			if ok {
				p.metrics.RecordReport(report, time.Since(started))
				slots[i] = &report
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	reports := make([]domain.RestaurantReport, 0, len(slots))
	var skipped []int64
	for i, slot := range slots {
		if slot == nil {
			skipped = append(skipped, dataset.Restaurants[i].ID)
			p.metrics.RecordSkipped()
			p.logger.Debug("restaurant skipped, no reviews", "restaurant_id", dataset.Restaurants[i].ID)
			continue
		}
		reports = append(reports, *slot)
	}
	return reports, skipped, nil
}

func (p *Pipeline) recordHistory(ctx context.Context, logger *slog.Logger, runID string, reports []domain.RestaurantReport) {
	if p.history == nil || len(reports) == 0 {
		return
	}
	now := p.now()
	records := make([]ports.HistoryRecord, len(reports))
	for i, r := range reports {
		records[i] = ports.HistoryRecord{
			RunID:          runID,
			RestaurantID:   r.RestaurantID,
			RestaurantName: r.RestaurantName,
			HealthScore:    r.HealthScore,
			TotalReviews:   r.SentimentAnalysis.TotalReviews,
			PositiveShare:  r.SentimentAnalysis.PositivePercentage,
			NegativeShare:  r.SentimentAnalysis.NegativePercentage,
			AlertCount:     len(r.Alerts),
			CreatedAt:      now,
		}
	}
	if err := p.history.Record(ctx, records); err != nil {
		logger.Warn("record run history failed", "error", err)
	}
}

func (p *Pipeline) publish(ctx context.Context, logger *slog.Logger, runID string, reports []domain.RestaurantReport) {
	if p.publisher == nil {
		return
	}
	for _, r := range reports {
		if err := p.publisher.PublishReport(ctx, runID, r); err != nil {
			logger.Warn("publish report failed", "restaurant_id", r.RestaurantID, "error", err)
		}
	}
}

func (p *Pipeline) notify(ctx context.Context, logger *slog.Logger, reports []domain.RestaurantReport) {
	if p.notifier == nil {
		return
	}
	digest := BuildDigest(reports)
	if digest == "" {
		return
	}
	if err := p.notifier.PublishDigest(ctx, digest); err != nil {
		logger.Warn("publish digest failed", "error", err)
	}
}

// BuildDigest lists every restaurant that raised alerts or aspect warnings.
// It returns "" when there is nothing to report.
func BuildDigest(reports []domain.RestaurantReport) string {
	var b strings.Builder
	for _, r := range reports {
		if len(r.Alerts) == 0 && len(r.SmartAlerts) == 0 {
			continue
		}
		fmt.Fprintf(&b, "%s (health score %d)\n", r.RestaurantName, r.HealthScore)
		for _, a := range r.Alerts {
			fmt.Fprintf(&b, "- %s\n", a.Message)
		}
		for _, w := range r.SmartAlerts {
			fmt.Fprintf(&b, "- %s\n", w)
		}
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}
