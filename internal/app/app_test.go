package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ReviewPulse/internal/config"
	"ReviewPulse/internal/infrastructure/storage"
	"ReviewPulse/internal/logging"
)

const fixture = `{
  "restaurants": [
    {"restaurant_id": 1, "name": "پیتزا نمونه", "category": "fast_food", "location": "تهران", "price_range": "$$", "rating": 4.2},
    {"restaurant_id": 2, "name": "بدون نظر", "rating": 3.0}
  ],
  "reviews": [
    {"restaurant_id": 1, "comment_text": "غذا خیلی خوشمزه و عالی بود", "user_rating": 5, "created_at": "2024-05-01 12:00:00"},
    {"restaurant_id": 1, "comment_text": "پیتزا سرد بود و پیک دیر رسید", "user_rating": 2, "created_at": "2024-05-02 19:30:00"},
    {"restaurant_id": 1, "comment_text": "<p>قیمت منصفانه</p>", "user_rating": 4, "created_at": "2024-05-02"}
  ]
}`

func loadTestConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()

	input := filepath.Join(dir, "dataset.json")
	require.NoError(t, os.WriteFile(input, []byte(fixture), 0o644))

	yaml := "input:\n  path: " + input + "\n" +
		"output:\n  path: " + filepath.Join(dir, "out", "results.js") + "\n  format: js\n" +
		"history:\n  path: " + filepath.Join(dir, "history.db") + "\n" +
		"workers: 2\n"
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(yaml), 0o644))

	t.Setenv("REVIEWPULSE_CONFIG", cfgPath)
	for _, key := range []string{"DATABASE_DSN", "NATS_URL", "TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "CHATGPT_API_KEY", "ML_API_KEY"} {
		t.Setenv(key, "")
	}

	cfg, err := config.Load()
	require.NoError(t, err)
	return cfg
}

func TestRunWritesReportsAndHistory(t *testing.T) {
	cfg := loadTestConfig(t)
	ctx := context.Background()

	application, err := New(ctx, cfg, logging.New("error", "text"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.Close() })

	result, err := application.Run(ctx)
	require.NoError(t, err)
	require.Len(t, result.Reports, 1)
	assert.Equal(t, []int64{2}, result.Skipped)

	report := result.Reports[0]
	assert.Equal(t, "پیتزا نمونه", report.RestaurantName)
	assert.Equal(t, 3, report.SentimentAnalysis.TotalReviews)
	assert.NotEmpty(t, report.AISummary)
	assert.LessOrEqual(t, report.HealthScore, 100)

	written, err := storage.NewFileStore(cfg.Output.Path, cfg.Output.Format).LoadReports(ctx)
	require.NoError(t, err)
	assert.Equal(t, result.Reports, written)

	records, err := application.History(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, result.RunID, records[0].RunID)
	assert.Equal(t, report.HealthScore, records[0].HealthScore)
}

func TestHistoryRequiresPath(t *testing.T) {
	cfg := loadTestConfig(t)
	cfg.History.Path = ""

	application, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer application.Close()

	_, err = application.History(context.Background(), 1, 5)
	assert.ErrorContains(t, err, "history.path")
}

func TestUnknownSummarizerStrategy(t *testing.T) {
	cfg := loadTestConfig(t)
	cfg.Summarizer.Strategy = "chat"

	application, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer application.Close()

	_, err = application.Run(context.Background())
	assert.ErrorContains(t, err, "summarizer chat is not registered")
}
