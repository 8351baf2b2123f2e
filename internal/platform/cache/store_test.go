package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_GetOrLoad_DeduplicatesConcurrentLoads(t *testing.T) {
	t.Parallel()

	store := NewStore[string](time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) (string, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return "summary", nil
	}

	const workers = 32
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)
	results := make(chan string, workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, err := store.GetOrLoad(context.Background(), "team:7:5", loader)
			if err != nil {
				results <- "error: " + err.Error()
				return
			}
			results <- v
		}()
	}

	close(start)
	wg.Wait()
	close(results)
	for v := range results {
		assert.Equal(t, "summary", v)
	}
	assert.EqualValues(t, 1, calls.Load())
}

func TestStore_GetOrLoad_DoesNotCacheErrors(t *testing.T) {
	t.Parallel()

	store := NewStore[int](time.Minute)
	boom := errors.New("storage down")
	calls := 0
	loader := func(context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, boom
		}
		return 42, nil
	}

	_, err := store.GetOrLoad(context.Background(), "k", loader)
	require.ErrorIs(t, err, boom)

	v, err := store.GetOrLoad(context.Background(), "k", loader)
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 2, calls)
}

func TestStore_ExpiresEntriesAfterTTL(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 9, 15, 0, 0, 0, time.UTC)
	store := NewStore[string](time.Minute)
	store.now = func() time.Time { return now }

	store.Set(context.Background(), "k", "v")
	_, ok := store.Get(context.Background(), "k")
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok = store.Get(context.Background(), "k")
	assert.False(t, ok)
}

func TestStore_GetOrLoad_IgnoresCallerCancellation(t *testing.T) {
	t.Parallel()

	type ctxKey struct{}
	ctx, cancel := context.WithCancel(context.WithValue(context.Background(), ctxKey{}, "req-1"))
	cancel()

	store := NewStore[string](time.Minute)
	loader := func(loadCtx context.Context) (string, error) {
		if err := loadCtx.Err(); err != nil {
			return "", err
		}
		return loadCtx.Value(ctxKey{}).(string), nil
	}

	v, err := store.GetOrLoad(ctx, "team:7:5", loader)
	require.NoError(t, err)
	assert.Equal(t, "req-1", v)

	cached, ok := store.Get(context.Background(), "team:7:5")
	assert.True(t, ok)
	assert.Equal(t, "req-1", cached)
}
