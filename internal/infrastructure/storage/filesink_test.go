package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ReviewPulse/internal/domain"
)

func sampleReports() []domain.RestaurantReport {
	return []domain.RestaurantReport{
		{
			RestaurantID:   7,
			RestaurantName: "پیتزا شب",
			PositiveTopics: []string{"خوشمزه"},
			NegativeTopics: []string{},
			AspectScores:   domain.AspectScores{domain.AspectTaste: 1},
			AISummary:      "<خوب>",
			HealthScore:    88,
		},
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	t.Parallel()

	for _, format := range []string{"json", "js"} {
		t.Run(format, func(t *testing.T) {
			t.Parallel()
			dir := t.TempDir()
			store := NewFileStore(filepath.Join(dir, "out", "reports."+format), format)

			require.NoError(t, store.Write(context.Background(), sampleReports()))

			raw, err := os.ReadFile(filepath.Join(dir, "out", "reports."+format))
			require.NoError(t, err)
			assert.Contains(t, string(raw), "پیتزا شب")
			assert.Contains(t, string(raw), "<خوب>")
			if format == "js" {
				assert.True(t, strings.HasPrefix(string(raw), "window.restaurantData = ["))
				assert.True(t, strings.HasSuffix(string(raw), "];\n"))
			}

			back, err := store.LoadReports(context.Background())
			require.NoError(t, err)
			assert.Equal(t, sampleReports(), back)

			entries, err := os.ReadDir(filepath.Join(dir, "out"))
			require.NoError(t, err)
			assert.Len(t, entries, 1)
		})
	}
}

func TestEncodeEmptyIsArray(t *testing.T) {
	t.Parallel()

	raw, err := Encode(nil, "json")
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(raw))
}

func TestEncodeIsDeterministic(t *testing.T) {
	t.Parallel()

	a, err := Encode(sampleReports(), "json")
	require.NoError(t, err)
	b, err := Encode(sampleReports(), "json")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
