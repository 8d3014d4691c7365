package history

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ReviewPulse/internal/ports"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"), io.Discard)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStoreRecordAndQuery(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, store.Record(ctx, []ports.HistoryRecord{
		{RunID: "run-1", RestaurantID: 1, RestaurantName: "A", HealthScore: 70, TotalReviews: 10, CreatedAt: base},
		{RunID: "run-1", RestaurantID: 2, RestaurantName: "B", HealthScore: 40, TotalReviews: 4, CreatedAt: base},
	}))
	require.NoError(t, store.Record(ctx, []ports.HistoryRecord{
		{RunID: "run-2", RestaurantID: 1, RestaurantName: "A", HealthScore: 75, TotalReviews: 12, AlertCount: 1, CreatedAt: base.Add(24 * time.Hour)},
	}))

	got, err := store.ForRestaurant(ctx, 1, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "run-2", got[0].RunID)
	assert.Equal(t, 75, got[0].HealthScore)
	assert.Equal(t, 1, got[0].AlertCount)
	assert.Equal(t, "run-1", got[1].RunID)

	limited, err := store.ForRestaurant(ctx, 1, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	none, err := store.ForRestaurant(ctx, 99, 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStoreRecordEmpty(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	assert.NoError(t, store.Record(context.Background(), nil))
}
