package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStoreRecordAndRecent(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, outcome := range []string{"success", "failed", "success"} {
		require.NoError(t, store.Record(ctx, Record{
			BuildID:     "build-" + string(rune('a'+i)),
			StartedAt:   base.Add(time.Duration(i) * time.Minute),
			Duration:    1500 * time.Millisecond,
			Outcome:     outcome,
			Pages:       10 + i,
			Assets:      3,
			Collections: map[string]int{"deployment": i},
			GitCommit:   "abc123",
		}))
	}

	recent, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "build-c", recent[0].BuildID)
	assert.Equal(t, "build-b", recent[1].BuildID)
	assert.Equal(t, "failed", recent[1].Outcome)
	assert.Equal(t, 1500*time.Millisecond, recent[0].Duration)
	assert.Equal(t, map[string]int{"deployment": 2}, recent[0].Collections)
	assert.True(t, recent[0].StartedAt.Equal(base.Add(2*time.Minute)))
	assert.Equal(t, "abc123", recent[0].GitCommit)
}

func TestSQLiteStoreRejectsDuplicateBuildID(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	r := Record{BuildID: "same", StartedAt: time.Now(), Outcome: "success"}
	require.NoError(t, store.Record(context.Background(), r))
	require.Error(t, store.Record(context.Background(), r))
}

func TestSQLiteStorePersistsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.db")
	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Record(context.Background(), Record{BuildID: "x", StartedAt: time.Now(), Outcome: "success"}))
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())

	_, err = store.Recent(context.Background(), 1)
	require.ErrorIs(t, err, ErrClosed)

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()
	recent, err := reopened.Recent(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Nil(t, recent[0].Collections)
}
