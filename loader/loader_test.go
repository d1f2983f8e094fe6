// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package loader

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu    sync.Mutex
	calls [][]int
}

func (r *recorder) fetch(_ context.Context, keys []int) (map[int]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := append([]int(nil), keys...)
	sort.Ints(cp)
	r.calls = append(r.calls, cp)

	out := make(map[int]string, len(keys))
	for _, k := range keys {
		if k < 0 {
			continue
		}
		out[k] = string(rune('a' + k))
	}
	return out, nil
}

func (r *recorder) batches() [][]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]int(nil), r.calls...)
}

func TestLoader_CoalescesThunks(t *testing.T) {
	rec := &recorder{}
	l := New[int, string]("test", rec.fetch)
	ctx := context.Background()

	t1 := l.LoadThunk(ctx, 1)
	t2 := l.LoadThunk(ctx, 2)
	t3 := l.LoadThunk(ctx, 1)

	v1, err := t1()
	require.NoError(t, err)
	v2, err := t2()
	require.NoError(t, err)
	v3, err := t3()
	require.NoError(t, err)

	assert.Equal(t, "b", v1)
	assert.Equal(t, "c", v2)
	assert.Equal(t, "b", v3)
	assert.Equal(t, [][]int{{1, 2}}, rec.batches())
	assert.Equal(t, 1, l.Fetches())
}

func TestLoader_CachesResults(t *testing.T) {
	rec := &recorder{}
	l := New[int, string]("test", rec.fetch)
	ctx := context.Background()

	_, err := l.Load(ctx, 3)
	require.NoError(t, err)
	v, err := l.Load(ctx, 3)
	require.NoError(t, err)

	assert.Equal(t, "d", v)
	assert.Equal(t, 1, l.Fetches())
}

func TestLoader_MissingKeyIsZero(t *testing.T) {
	rec := &recorder{}
	l := New[int, string]("test", rec.fetch)

	v, err := l.Load(context.Background(), -1)
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestLoader_ErrorReachesEveryWaiter(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	l := New[int, string]("test", func(context.Context, []int) (map[int]string, error) {
		calls++
		return nil, boom
	})
	ctx := context.Background()

	t1 := l.LoadThunk(ctx, 1)
	t2 := l.LoadThunk(ctx, 2)

	_, err1 := t1()
	_, err2 := t2()
	assert.ErrorIs(t, err1, boom)
	assert.ErrorIs(t, err2, boom)
	assert.Equal(t, 1, calls)

	// errors are cached too
	_, err := l.Load(ctx, 1)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestLoader_PanicBecomesError(t *testing.T) {
	l := New[int, string]("test", func(context.Context, []int) (map[int]string, error) {
		panic("bad fetch")
	})

	_, err := l.Load(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad fetch")
}

func TestLoader_LoadMany(t *testing.T) {
	rec := &recorder{}
	l := New[int, string]("test", rec.fetch)

	values, err := l.LoadMany(context.Background(), []int{4, 0, 4, -1})
	require.NoError(t, err)

	assert.Equal(t, []string{"e", "a", "e", ""}, values)
	assert.Equal(t, [][]int{{-1, 0, 4}}, rec.batches())
}

func TestLoader_PrefetchThenLoadFromCache(t *testing.T) {
	rec := &recorder{}
	l := New[int, string]("test", rec.fetch)
	ctx := context.Background()

	l.Prefetch(ctx, []int{1, 2, 3})
	require.Equal(t, 1, l.Fetches())

	for _, k := range []int{3, 2, 1} {
		_, err := l.Load(ctx, k)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, l.Fetches())
}

func TestLoader_ConcurrentPrefetchSingleFetch(t *testing.T) {
	rec := &recorder{}
	l := New[int, string]("test", rec.fetch)
	ctx := context.Background()
	keys := []int{1, 2, 3, 4, 5}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Prefetch(ctx, keys)
			_, err := l.LoadMany(ctx, keys)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, l.Fetches())
}

func TestLoader_WaitWindowJoinsGoroutines(t *testing.T) {
	rec := &recorder{}
	l := New[int, string]("test", rec.fetch, WithWait(50*time.Millisecond))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(k int) {
			defer wg.Done()
			_, err := l.Load(ctx, k)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, [][]int{{0, 1, 2, 3, 4}}, rec.batches())
}

func TestLoader_MaxBatch(t *testing.T) {
	rec := &recorder{}
	l := New[int, string]("test", rec.fetch, WithMaxBatch(2))

	_, err := l.LoadMany(context.Background(), []int{1, 2, 3, 4, 5})
	require.NoError(t, err)

	assert.Equal(t, [][]int{{1, 2}, {3, 4}, {5}}, rec.batches())
}

func TestLoader_Prime(t *testing.T) {
	rec := &recorder{}
	l := New[int, string]("test", rec.fetch)
	ctx := context.Background()

	l.Prime(7, "primed")
	v, err := l.Load(ctx, 7)
	require.NoError(t, err)

	assert.Equal(t, "primed", v)
	assert.Zero(t, l.Fetches())
}

func TestLoader_ContextCancelled(t *testing.T) {
	release := make(chan struct{})
	l := New[int, string]("test", func(context.Context, []int) (map[int]string, error) {
		<-release
		return nil, nil
	}, WithWait(time.Millisecond))
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	th := l.LoadThunk(ctx, 1)
	cancel()

	_, err := th()
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoader_Clear(t *testing.T) {
	rec := &recorder{}
	l := New[int, string]("test", rec.fetch)
	ctx := context.Background()

	_, err := l.Load(ctx, 1)
	require.NoError(t, err)
	l.Clear()
	_, err = l.Load(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, 2, l.Fetches())
}

type callerKey struct{}

func TestLoader_BatchUsesOpeningContext(t *testing.T) {
	var seen []string
	l := New[int, string]("test", func(ctx context.Context, keys []int) (map[int]string, error) {
		seen = append(seen, ctx.Value(callerKey{}).(string))
		return map[int]string{}, nil
	})

	first := context.WithValue(context.Background(), callerKey{}, "first")
	second := context.WithValue(context.Background(), callerKey{}, "second")

	t1 := l.LoadThunk(first, 1)
	t2 := l.LoadThunk(second, 2)
	_, err := t2()
	require.NoError(t, err)
	_, err = t1()
	require.NoError(t, err)

	assert.Equal(t, []string{"first"}, seen)
}
