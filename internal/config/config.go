package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"

	"ReviewPulse/internal/analytics"
	"ReviewPulse/internal/domain"
)

const (
	defaultTimezone   = "UTC"
	configPathEnv     = "REVIEWPULSE_CONFIG"
	workersEnv        = "REVIEWPULSE_WORKERS"
	serverAddrEnv     = "REVIEWPULSE_SERVER_ADDR"
	databaseDSNEnv    = "DATABASE_DSN"
	chatGPTAPIKeyEnv  = "CHATGPT_API_KEY"
	chatGPTModelEnv   = "CHATGPT_MODEL"
	mlAPIKeyEnv       = "ML_API_KEY"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
	natsURLEnv        = "NATS_URL"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatJS   = "js"
)

// Collaborator modes.
const (
	ModeHTTP    = "http"
	ModeLexicon = "lexicon"
	ModeLocal   = "local"
)

// Summarizer strategies.
const (
	StrategyChat     = "chat"
	StrategySeq2Seq  = "seq2seq"
	StrategyTemplate = "template"
)

// Report sources for the serving boundary.
const (
	SourceFile     = "file"
	SourcePostgres = "postgres"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Input         InputConfig        `yaml:"input"`
	Output        OutputConfig       `yaml:"output"`
	Analysis      AnalysisConfig     `yaml:"analysis"`
	Classifier    ClassifierConfig   `yaml:"classifier"`
	Normalizer    NormalizerConfig   `yaml:"normalizer"`
	Summarizer    SummarizerConfig   `yaml:"summarizer"`
	ML            MLConfig           `yaml:"ml"`
	ChatGPT       ChatGPTConfig      `yaml:"chatgpt"`
	Server        ServerConfig       `yaml:"server"`
	Metrics       MetricsConfig      `yaml:"metrics"`
	Database      DatabaseConfig     `yaml:"database"`
	History       HistoryConfig      `yaml:"history"`
	NATS          NATSConfig         `yaml:"nats"`
	Notifications NotificationConfig `yaml:"notifications"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Workers       int                `yaml:"workers"`
}

// LoggingConfig selects slog level and handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// InputConfig points at the review dataset.
type InputConfig struct {
	Path     string         `yaml:"path"`
	Timezone string         `yaml:"timezone"`
	location *time.Location `yaml:"-"`
}

// Location resolves the timezone applied to timestamps without an offset.
func (i InputConfig) Location() *time.Location {
	if i.location != nil {
		return i.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// OutputConfig describes where the report array is written.
type OutputConfig struct {
	Path   string `yaml:"path"`
	Format string `yaml:"format"`
}

// AnalysisConfig groups every tunable of the analytics core.
type AnalysisConfig struct {
	Aspects        map[string][]string `yaml:"aspects"`
	Stopwords      []string            `yaml:"stopwords"`
	CloudStopwords []string            `yaml:"cloudStopwords"`
	Themes         ThemesConfig        `yaml:"themes"`
	Trend          TrendConfig         `yaml:"trend"`
	Alerts         AlertsConfig        `yaml:"alerts"`
	Health         HealthConfig        `yaml:"health"`
	WordCloud      WordCloudConfig     `yaml:"wordCloud"`
}

// ThemesConfig bounds TF-IDF theme extraction.
type ThemesConfig struct {
	TopN        int `yaml:"topN"`
	MaxFeatures int `yaml:"maxFeatures"`
}

// TrendConfig controls the daily series.
type TrendConfig struct {
	FillGaps bool `yaml:"fillGaps"`
}

// AlertsConfig tunes spike and repeated-issue detection.
type AlertsConfig struct {
	SpikeK          float64 `yaml:"spikeK"`
	SpikeFloor      int     `yaml:"spikeFloor"`
	RepeatThreshold int     `yaml:"repeatThreshold"`
}

// HealthConfig holds the health score weights.
type HealthConfig struct {
	Sentiment float64 `yaml:"sentiment"`
	Rating    float64 `yaml:"rating"`
	Delivery  float64 `yaml:"delivery"`
}

// WordCloudConfig bounds the word cloud.
type WordCloudConfig struct {
	TopN int `yaml:"topN"`
}

// ClassifierConfig selects the sentiment collaborator.
type ClassifierConfig struct {
	Mode      string        `yaml:"mode"`
	BatchSize int           `yaml:"batchSize"`
	Timeout   time.Duration `yaml:"timeout"`
}

// NormalizerConfig selects the text normalization collaborator.
type NormalizerConfig struct {
	Mode          string        `yaml:"mode"`
	FallbackLocal bool          `yaml:"fallbackLocal"`
	CacheTTL      time.Duration `yaml:"cacheTTL"`
	Timeout       time.Duration `yaml:"timeout"`
}

// SummarizerConfig selects the summary strategy.
type SummarizerConfig struct {
	Strategy    string        `yaml:"strategy"`
	Timeout     time.Duration `yaml:"timeout"`
	Fallback    bool          `yaml:"fallback"`
	MaxComments int           `yaml:"maxComments"`
	MaxLength   int           `yaml:"maxLength"`
}

// MLConfig describes neural-service integration parameters.
type MLConfig struct {
	InferenceURL string `yaml:"inferenceUrl"`
	APIKey       string `yaml:"apiKey"`
}

// ChatGPTConfig defines how to contact the ChatGPT API.
type ChatGPTConfig struct {
	Endpoint          string  `yaml:"endpoint"`
	Model             string  `yaml:"model"`
	APIKey            string  `yaml:"apiKey"`
	SystemPrompt      string  `yaml:"systemPrompt"`
	MaxTokens         int     `yaml:"maxTokens"`
	Temperature       float64 `yaml:"temperature"`
	RequestsPerSecond float64 `yaml:"requestsPerSecond"`
}

// ServerConfig drives the read-only HTTP boundary.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	Source          string        `yaml:"source"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// MetricsConfig exposes Prometheus collectors during batch runs.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// DatabaseConfig describes Postgres connection details. Empty DSN disables it.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// HistoryConfig points at the sqlite run history. Empty path disables it.
type HistoryConfig struct {
	Path string `yaml:"path"`
}

// NATSConfig wires alert publishing. Empty URL disables it.
type NATSConfig struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// SchedulerConfig defines how often `analyze --every` re-runs.
type SchedulerConfig struct {
	Interval time.Duration `yaml:"interval"`
}

// Load reads YAML configuration (if present), applies environment overrides
// and validates the result.
func Load() (Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			fileCfg, err := parse(raw)
			if err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = fileCfg
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// parse decodes raw YAML on top of the defaults, so omitted keys keep
// their default values.
func parse(raw []byte) (Config, error) {
	cfg := defaultConfig()
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}

	if v := os.Getenv(chatGPTAPIKeyEnv); v != "" {
		c.ChatGPT.APIKey = v
	}

	if v := os.Getenv(chatGPTModelEnv); v != "" {
		c.ChatGPT.Model = v
	}

	if v := os.Getenv(mlAPIKeyEnv); v != "" {
		c.ML.APIKey = v
	}

	if v := os.Getenv(natsURLEnv); v != "" {
		c.NATS.URL = v
	}

	c.Workers = getEnvAsInt(workersEnv, c.Workers)
	if v := os.Getenv(serverAddrEnv); v != "" {
		c.Server.Addr = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Input.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Input.location = loc
}

// Validate rejects settings the pipeline cannot run with.
func (c Config) Validate() error {
	var errs []error

	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be >= 1, got %d", c.Workers))
	}
	if c.Input.Path == "" {
		errs = append(errs, errors.New("input.path is required"))
	}
	if c.Output.Format != FormatJSON && c.Output.Format != FormatJS {
		errs = append(errs, fmt.Errorf("output.format %q is not json or js", c.Output.Format))
	}

	switch c.Classifier.Mode {
	case ModeLexicon:
	case ModeHTTP:
		if c.ML.InferenceURL == "" {
			errs = append(errs, errors.New("classifier.mode http requires ml.inferenceUrl"))
		}
	default:
		errs = append(errs, fmt.Errorf("classifier.mode %q is not http or lexicon", c.Classifier.Mode))
	}

	switch c.Normalizer.Mode {
	case ModeLocal:
	case ModeHTTP:
		if c.ML.InferenceURL == "" {
			errs = append(errs, errors.New("normalizer.mode http requires ml.inferenceUrl"))
		}
	default:
		errs = append(errs, fmt.Errorf("normalizer.mode %q is not http or local", c.Normalizer.Mode))
	}

	switch c.Summarizer.Strategy {
	case StrategyTemplate:
	case StrategySeq2Seq:
		if c.ML.InferenceURL == "" {
			errs = append(errs, errors.New("summarizer.strategy seq2seq requires ml.inferenceUrl"))
		}
	case StrategyChat:
		if c.ChatGPT.APIKey == "" {
			errs = append(errs, fmt.Errorf("summarizer.strategy chat requires %s", chatGPTAPIKeyEnv))
		}
	default:
		errs = append(errs, fmt.Errorf("summarizer.strategy %q is unknown", c.Summarizer.Strategy))
	}

	switch c.Server.Source {
	case SourceFile:
	case SourcePostgres:
		if c.Database.DSN == "" {
			errs = append(errs, errors.New("server.source postgres requires database.dsn"))
		}
	default:
		errs = append(errs, fmt.Errorf("server.source %q is not file or postgres", c.Server.Source))
	}

	if _, err := c.Analysis.KeywordTable(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Analysis.HealthWeights().Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Analysis.Alerts.SpikeK <= 0 {
		errs = append(errs, errors.New("analysis.alerts.spikeK must be positive"))
	}

	return errors.Join(errs...)
}

// KeywordTable converts the configured aspect lists into the domain table.
func (a AnalysisConfig) KeywordTable() (domain.KeywordTable, error) {
	table := make(domain.KeywordTable, len(a.Aspects))
	for name, keywords := range a.Aspects {
		aspect, err := domain.ParseAspect(name)
		if err != nil {
			return nil, fmt.Errorf("analysis.aspects: %w", err)
		}
		cleaned := make([]string, 0, len(keywords))
		for _, kw := range keywords {
			if kw = strings.TrimSpace(kw); kw != "" {
				cleaned = append(cleaned, kw)
			}
		}
		table[aspect] = cleaned
	}
	return table, nil
}

// HealthWeights converts the configured weights.
func (a AnalysisConfig) HealthWeights() analytics.HealthWeights {
	return analytics.HealthWeights{
		Sentiment: a.Health.Sentiment,
		Rating:    a.Health.Rating,
		Delivery:  a.Health.Delivery,
	}
}

// AlertConfig converts the configured detector thresholds.
func (a AnalysisConfig) AlertConfig() analytics.AlertConfig {
	return analytics.AlertConfig{
		SpikeK:          a.Alerts.SpikeK,
		SpikeFloor:      a.Alerts.SpikeFloor,
		RepeatThreshold: a.Alerts.RepeatThreshold,
	}
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Input:   InputConfig{Path: "data/dataset.json", Timezone: defaultTimezone, location: tz},
		Output:  OutputConfig{Path: "data/analysis_results.json", Format: FormatJSON},
		Analysis: AnalysisConfig{
			Aspects:        defaultAspects(),
			Stopwords:      append([]string(nil), defaultStopwords...),
			CloudStopwords: append([]string(nil), defaultCloudStopwords...),
			Themes:         ThemesConfig{TopN: 6, MaxFeatures: 50},
			Alerts:         AlertsConfig{SpikeK: 2, SpikeFloor: 3, RepeatThreshold: 2},
			Health:         HealthConfig{Sentiment: 0.6, Rating: 0.3, Delivery: 0.1},
			WordCloud:      WordCloudConfig{TopN: 10},
		},
		Classifier: ClassifierConfig{Mode: ModeLexicon, BatchSize: 32, Timeout: 30 * time.Second},
		Normalizer: NormalizerConfig{Mode: ModeLocal, CacheTTL: 10 * time.Minute, Timeout: 10 * time.Second},
		Summarizer: SummarizerConfig{
			Strategy:    StrategyTemplate,
			Timeout:     30 * time.Second,
			Fallback:    true,
			MaxComments: 15,
			MaxLength:   150,
		},
		ML: MLConfig{InferenceURL: "", APIKey: ""},
		ChatGPT: ChatGPTConfig{
			Endpoint:          "https://api.openai.com/v1/chat/completions",
			Model:             "gpt-4o-mini",
			APIKey:            "",
			SystemPrompt:      "تو یک تحلیل‌گر حرفه‌ای نظرات مشتریان رستوران هستی. خلاصه‌ای کوتاه و کاربردی به فارسی بنویس.",
			MaxTokens:         300,
			Temperature:       0.3,
			RequestsPerSecond: 1,
		},
		Server: ServerConfig{
			Addr:            ":8000",
			Source:          SourceFile,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		NATS:      NATSConfig{Subject: "reviewpulse"},
		Scheduler: SchedulerConfig{Interval: 24 * time.Hour},
		Workers:   4,
	}
}
