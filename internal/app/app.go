package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/nats-io/nats.go"

	"ReviewPulse/internal/analytics"
	"ReviewPulse/internal/config"
	"ReviewPulse/internal/infrastructure/events"
	"ReviewPulse/internal/infrastructure/history"
	"ReviewPulse/internal/infrastructure/lexicon"
	"ReviewPulse/internal/infrastructure/llm"
	"ReviewPulse/internal/infrastructure/ml"
	"ReviewPulse/internal/infrastructure/scheduler"
	"ReviewPulse/internal/infrastructure/storage"
	"ReviewPulse/internal/infrastructure/telegram"
	"ReviewPulse/internal/infrastructure/textnorm"
	"ReviewPulse/internal/logging"
	"ReviewPulse/internal/metrics"
	"ReviewPulse/internal/ports"
	"ReviewPulse/internal/server"
	"ReviewPulse/internal/summarizer"
	"ReviewPulse/internal/usecase"
)

const (
	dbConnectAttempts = 5
	dbConnectInterval = 2 * time.Second
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg     config.Config
	logger  *slog.Logger
	metrics *metrics.Metrics

	db      *sql.DB
	history *history.Store
	nc      *nats.Conn
}

// New prepares shared infrastructure. Optional stores are opened only when
// configured.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	m, err := metrics.New()
	if err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}
	a := &Application{cfg: cfg, logger: baseLogger, metrics: m}

	if cfg.Database.DSN != "" {
		db, err := storage.OpenPostgres(ctx, cfg.Database.DSN, dbConnectAttempts, dbConnectInterval)
		if err != nil {
			return nil, err
		}
		a.db = db
		if err := storage.NewPostgresRepository(db).EnsureSchema(ctx); err != nil {
			a.Close()
			return nil, err
		}
	}

	if cfg.History.Path != "" {
		store, err := history.Open(cfg.History.Path, os.Stderr)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.history = store
	}

	return a, nil
}

// Close releases every opened connection.
func (a *Application) Close() error {
	var errs []error
	if a.nc != nil {
		if err := a.nc.Drain(); err != nil {
			errs = append(errs, err)
		}
		a.nc = nil
	}
	if a.history != nil {
		errs = append(errs, a.history.Close())
		a.history = nil
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
		a.db = nil
	}
	return errors.Join(errs...)
}

// Metrics exposes the collectors for the CLI metrics listener.
func (a *Application) Metrics() *metrics.Metrics {
	return a.metrics
}

// Run performs a single pipeline execution.
func (a *Application) Run(ctx context.Context) (usecase.RunResult, error) {
	pipeline, err := a.buildPipeline()
	if err != nil {
		return usecase.RunResult{}, err
	}
	return pipeline.Run(ctx)
}

// RunEvery repeats the pipeline on the ticker scheduler until ctx is done.
func (a *Application) RunEvery(ctx context.Context, interval time.Duration) error {
	pipeline, err := a.buildPipeline()
	if err != nil {
		return err
	}

	sched := usecase.NewScheduler(scheduler.NewTickerScheduler(interval), pipeline, a.logger.With("component", "scheduler"))
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	return sched.Stop(stopCtx)
}

// Serve loads the report snapshot and serves it until ctx is done.
func (a *Application) Serve(ctx context.Context) error {
	var loader server.ReportLoader = storage.NewFileStore(a.cfg.Output.Path, a.cfg.Output.Format)
	if a.cfg.Server.Source == config.SourcePostgres {
		if a.db == nil {
			return errors.New("server.source postgres requires database.dsn")
		}
		loader = storage.NewPostgresRepository(a.db)
	}

	snapshot := server.NewSnapshot(loader)
	n, err := snapshot.Reload(ctx)
	if err != nil {
		return err
	}

	logger := a.logger.With("component", "server")
	srv := server.NewServer(a.cfg.Server, snapshot, a.metrics, logger)
	logger.Info("serving reports", "addr", a.cfg.Server.Addr, "restaurants", n, "source", a.cfg.Server.Source)

	return runHTTP(ctx, srv.ListenAndServe, srv.Shutdown, a.cfg.Server.ShutdownTimeout)
}

// ServeMetrics exposes /metrics on addr until ctx is done.
func (a *Application) ServeMetrics(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", a.metrics.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	a.logger.Info("metrics listener started", "addr", addr)
	return runHTTP(ctx, srv.ListenAndServe, srv.Shutdown, a.cfg.Server.ShutdownTimeout)
}

// History lists recorded runs of one restaurant, newest first.
func (a *Application) History(ctx context.Context, restaurantID int64, limit int) ([]ports.HistoryRecord, error) {
	if a.history == nil {
		return nil, errors.New("history.path is not configured")
	}
	return a.history.ForRestaurant(ctx, restaurantID, limit)
}

func runHTTP(ctx context.Context, listen func() error, shutdown func(context.Context) error, grace time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		if err := listen(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

func (a *Application) buildPipeline() (*usecase.Pipeline, error) {
	cfg := a.cfg

	keywords, err := cfg.Analysis.KeywordTable()
	if err != nil {
		return nil, err
	}

	var mlClient *ml.Client
	if cfg.ML.InferenceURL != "" {
		mlClient = ml.NewClient(cfg.ML.InferenceURL, cfg.ML.APIKey, ml.WithBatchSize(cfg.Classifier.BatchSize))
	}

	var classifier ports.Classifier = lexicon.New()
	if cfg.Classifier.Mode == config.ModeHTTP {
		if mlClient == nil {
			return nil, errors.New("classifier.mode http requires ml.inferenceUrl")
		}
		classifier = mlClient
	}

	normalizer, err := a.buildNormalizer(mlClient)
	if err != nil {
		return nil, err
	}

	summary, err := a.buildSummarizer(mlClient)
	if err != nil {
		return nil, err
	}

	assembler := usecase.NewAssembler(usecase.AssemblerDeps{
		Normalizer: normalizer,
		Classifier: classifier,
		Summarizer: summary,
		Settings: usecase.AnalysisSettings{
			Keywords:       keywords,
			Stopwords:      analytics.NewStopwordSet(cfg.Analysis.Stopwords),
			CloudStopwords: analytics.NewStopwordSet(cfg.Analysis.CloudStopwords),
			ThemeTopN:      cfg.Analysis.Themes.TopN,
			MaxFeatures:    cfg.Analysis.Themes.MaxFeatures,
			FillGaps:       cfg.Analysis.Trend.FillGaps,
			Alerts:         cfg.Analysis.AlertConfig(),
			Warnings:       analytics.DefaultAspectWarnings(),
			Health:         cfg.Analysis.HealthWeights(),
			WordCloudSize:  cfg.Analysis.WordCloud.TopN,
			MaxComments:    cfg.Summarizer.MaxComments,
		},
		Timeouts: usecase.Timeouts{
			Normalize: cfg.Normalizer.Timeout,
			Classify:  cfg.Classifier.Timeout,
			Summarize: cfg.Summarizer.Timeout,
		},
		Metrics: a.metrics,
	})

	deps := usecase.PipelineDeps{
		Source:    storage.NewJSONDataset(cfg.Input.Path, cfg.Input.Location(), a.logger.With("component", "dataset")),
		Assembler: assembler,
		Sinks:     []ports.ReportSink{storage.NewFileStore(cfg.Output.Path, cfg.Output.Format)},
		Metrics:   a.metrics,
		Workers:   cfg.Workers,
		Logger:    a.logger.With("component", "pipeline"),
	}
	if a.db != nil {
		deps.Repository = storage.NewPostgresRepository(a.db)
	}
	if a.history != nil {
		deps.History = a.history
	}
	if cfg.NATS.URL != "" {
		if a.nc == nil {
			nc, err := events.Connect(cfg.NATS.URL, a.logger.With("component", "events"))
			if err != nil {
				return nil, err
			}
			a.nc = nc
		}
		deps.Publisher = events.NewNATSPublisher(a.nc, cfg.NATS.Subject)
	}
	if tg := cfg.Notifications.Telegram; tg.BotToken != "" && tg.ChatID != "" {
		deps.Notifier = telegram.NewNotifier(tg.BotToken, tg.ChatID)
	}

	return usecase.NewPipeline(deps), nil
}

func (a *Application) buildNormalizer(mlClient *ml.Client) (ports.Normalizer, error) {
	cfg := a.cfg.Normalizer

	var normalizer ports.Normalizer = textnorm.New()
	if cfg.Mode == config.ModeHTTP {
		if mlClient == nil {
			return nil, errors.New("normalizer.mode http requires ml.inferenceUrl")
		}
		normalizer = mlClient
		if cfg.FallbackLocal {
			normalizer = textnorm.NewFallback(mlClient, textnorm.New(), a.logger.With("component", "normalizer"))
		}
	}
	if cfg.CacheTTL > 0 {
		normalizer = textnorm.NewCached(normalizer, cfg.CacheTTL)
	}
	return normalizer, nil
}

func (a *Application) buildSummarizer(mlClient *ml.Client) (ports.Summarizer, error) {
	cfg := a.cfg

	registry := summarizer.NewRegistry(summarizer.Template{})
	if mlClient != nil {
		registry.Register(summarizer.NewSeq2Seq(mlClient, cfg.Summarizer.MaxLength))
	}
	if cfg.ChatGPT.APIKey != "" {
		registry.Register(summarizer.NewChat(llm.NewChatGPTClient(cfg.ChatGPT), cfg.Summarizer.MaxComments))
	}

	strategy, err := registry.Resolve(cfg.Summarizer.Strategy)
	if err != nil {
		return nil, err
	}

	onError := func(err error) { a.metrics.RecordCollaboratorFailure(strategy.Name(), err) }
	return summarizer.NewResilient(strategy, cfg.Summarizer.Fallback, a.logger.With("component", "summarizer"), onError), nil
}
