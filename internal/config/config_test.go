package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ReviewPulse/internal/domain"
)

func TestDefaultConfigIsValid(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	require.NoError(t, cfg.Validate())

	table, err := cfg.Analysis.KeywordTable()
	require.NoError(t, err)
	assert.Len(t, table, len(domain.Aspects))
	assert.Contains(t, table[domain.AspectDelivery], "پیک")
	assert.Contains(t, table[domain.AspectService], "پیک")
}

func TestParseKeepsDefaultsForOmittedKeys(t *testing.T) {
	t.Parallel()

	raw := []byte(`
workers: 8
output:
  format: js
analysis:
  aspects:
    price: ["قیمت"]
  trend:
    fillGaps: true
summarizer:
  timeout: 5s
`)
	cfg, err := parse(raw)
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, FormatJS, cfg.Output.Format)
	assert.Equal(t, "data/analysis_results.json", cfg.Output.Path)
	assert.True(t, cfg.Analysis.Trend.FillGaps)
	assert.Equal(t, []string{"قیمت"}, cfg.Analysis.Aspects["price"])
	assert.NotEmpty(t, cfg.Analysis.Aspects["taste"])
	assert.Equal(t, 5*time.Second, cfg.Summarizer.Timeout)
	assert.Equal(t, StrategyTemplate, cfg.Summarizer.Strategy)
}

func TestParseRejectsBrokenYAML(t *testing.T) {
	t.Parallel()

	_, err := parse([]byte("workers: [oops"))
	assert.Error(t, err)
}

func TestLoadAppliesFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("input:\n  path: reviews.json\n  timezone: Asia/Tehran\n"), 0o600))

	t.Setenv(configPathEnv, path)
	t.Setenv(chatGPTAPIKeyEnv, "sk-test")
	t.Setenv(natsURLEnv, "nats://localhost:4222")
	t.Setenv(workersEnv, "2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "reviews.json", cfg.Input.Path)
	assert.Equal(t, "Asia/Tehran", cfg.Input.Location().String())
	assert.Equal(t, "sk-test", cfg.ChatGPT.APIKey)
	assert.Equal(t, "nats://localhost:4222", cfg.NATS.URL)
	assert.Equal(t, 2, cfg.Workers)
}

func TestLoadFallsBackOnMissingFile(t *testing.T) {
	t.Setenv(configPathEnv, filepath.Join(t.TempDir(), "absent.yaml"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, defaultConfig().Input.Path, cfg.Input.Path)
	assert.Equal(t, "UTC", cfg.Input.Location().String())
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{name: "workers", mutate: func(c *Config) { c.Workers = 0 }, want: "workers must be >= 1"},
		{name: "format", mutate: func(c *Config) { c.Output.Format = "xml" }, want: "output.format"},
		{name: "chat without key", mutate: func(c *Config) { c.Summarizer.Strategy = StrategyChat }, want: chatGPTAPIKeyEnv},
		{name: "http classifier without url", mutate: func(c *Config) { c.Classifier.Mode = ModeHTTP }, want: "ml.inferenceUrl"},
		{name: "unknown aspect", mutate: func(c *Config) { c.Analysis.Aspects["ambience"] = []string{"x"} }, want: "unknown aspect"},
		{name: "weights", mutate: func(c *Config) { c.Analysis.Health.Delivery = 0.5 }, want: "health weights"},
		{name: "postgres source without dsn", mutate: func(c *Config) { c.Server.Source = SourcePostgres }, want: "database.dsn"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := defaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
