package main

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestRanking(t *testing.T) *SQLiteRanking {
	t.Helper()
	store, err := OpenRanking(filepath.Join(t.TempDir(), "ranking.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRankingIncrementAndTopN(t *testing.T) {
	store := openTestRanking(t)
	ctx := context.Background()

	for _, name := range []string{"Drake", "Nelson", "Nelson", "Nelson", "Blake", "Blake"} {
		require.NoError(t, store.Increment(ctx, name))
	}

	list, err := store.TopN(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"Nelson", int64(3), "Blake", int64(2), "Drake", int64(1)}, list)

	top, err := store.TopN(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"Nelson", int64(3), "Blake", int64(2)}, top)
}

func TestRankingRemove(t *testing.T) {
	store := openTestRanking(t)
	ctx := context.Background()

	require.NoError(t, store.Increment(ctx, "Nelson"))
	require.NoError(t, store.Increment(ctx, "Drake"))
	require.NoError(t, store.Remove(ctx, "Nelson"))
	require.NoError(t, store.Remove(ctx, "Nobody"))

	list, err := store.TopN(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"Drake", int64(1)}, list)
}

func TestRankingEmpty(t *testing.T) {
	store := openTestRanking(t)

	list, err := store.TopN(context.Background(), 10)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestRankingPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ranking.db")
	ctx := context.Background()

	store, err := OpenRanking(path)
	require.NoError(t, err)
	require.NoError(t, store.Increment(ctx, "Nelson"))
	require.NoError(t, store.Close())

	store, err = OpenRanking(path)
	require.NoError(t, err)
	defer store.Close()
	list, err := store.TopN(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"Nelson", int64(1)}, list)
}

// publishRecorder collects lists handed to the publish callback
type publishRecorder struct {
	mu    sync.Mutex
	lists [][]interface{}
}

func (p *publishRecorder) publish(list []interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lists = append(p.lists, list)
}

func (p *publishRecorder) last() []interface{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.lists) == 0 {
		return nil
	}
	return p.lists[len(p.lists)-1]
}

func TestRankingWorkerPublishes(t *testing.T) {
	store := openTestRanking(t)
	require.NoError(t, store.Increment(context.Background(), "Veteran"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rec := &publishRecorder{}
	w := NewRankingWorker(store, 10, zerolog.Nop())
	w.Start(ctx, rec.publish)

	// initial list is loaded synchronously
	assert.Equal(t, []interface{}{"Veteran", int64(1)}, w.Latest())
	assert.Equal(t, []interface{}{"Veteran", int64(1)}, rec.last())

	w.Increment("Nelson")
	w.Increment("Nelson")
	w.Remove("Veteran")

	want := []interface{}{"Nelson", int64(2)}
	assert.Eventually(t, func() bool {
		return assert.ObjectsAreEqual(want, rec.last())
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, want, w.Latest())

	cancel()
	w.Wait()
}

func TestRankingWorkerDropsWhenFull(t *testing.T) {
	store := openTestRanking(t)
	w := NewRankingWorker(store, 10, zerolog.Nop())

	// not started, so nothing drains the queue
	for i := 0; i < rankingQueueSize+10; i++ {
		w.Increment("Nelson")
	}
	assert.Len(t, w.ops, rankingQueueSize)
	assert.Nil(t, w.Latest())
}
