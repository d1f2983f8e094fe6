// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package loader

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/danielhkuo/starwars-api/metrics"
)

// BatchFunc fetches all keys in one round trip. Keys absent from the
// returned map resolve to the zero value of V.
type BatchFunc[K comparable, V any] func(ctx context.Context, keys []K) (map[K]V, error)

// Thunk blocks until the value of one key is available
type Thunk[V any] func() (V, error)

type Option func(*options)

type options struct {
	wait     time.Duration
	maxBatch int
}

// WithWait keeps a batch open for d after its first key so that callers on
// other goroutines can join it. With no wait, a batch is dispatched on the
// first demand for any of its values.
func WithWait(d time.Duration) Option {
	return func(o *options) { o.wait = d }
}

// WithMaxBatch dispatches a batch as soon as it holds n keys
func WithMaxBatch(n int) Option {
	return func(o *options) { o.maxBatch = n }
}

// Loader coalesces lookups of one key-space into batched fetches and caches
// every result for its lifetime. Create one per request.
type Loader[K comparable, V any] struct {
	name  string
	fetch BatchFunc[K, V]
	opts  options

	mu      sync.Mutex
	cache   map[K]*entry[K, V]
	pending *batch[K, V]

	fetches atomic.Int64
}

type entry[K comparable, V any] struct {
	batch *batch[K, V]
	done  chan struct{}
	value V
	err   error
}

type batch[K comparable, V any] struct {
	ctx        context.Context
	keys       []K
	entries    []*entry[K, V]
	timer      *time.Timer
	dispatched bool // guarded by Loader.mu
}

func New[K comparable, V any](name string, fetch BatchFunc[K, V], opts ...Option) *Loader[K, V] {
	l := &Loader[K, V]{
		name:  name,
		fetch: fetch,
		cache: make(map[K]*entry[K, V]),
	}
	for _, opt := range opts {
		opt(&l.opts)
	}
	return l
}

// Name returns the key-space label used in metrics
func (l *Loader[K, V]) Name() string {
	return l.name
}

// Fetches returns how many batched fetches this loader has issued
func (l *Loader[K, V]) Fetches() int {
	return int(l.fetches.Load())
}

// enqueue adds key to the pending batch unless it is already known.
// Must hold l.mu. Returns a batch that reached its size limit.
// The batch fetches with the context of the caller that opened it, so every
// caller of one Loader must share that context's lifetime (one request).
func (l *Loader[K, V]) enqueue(ctx context.Context, key K) (*entry[K, V], *batch[K, V]) {
	if e, ok := l.cache[key]; ok {
		return e, nil
	}

	b := l.pending
	if b == nil {
		b = &batch[K, V]{ctx: ctx}
		l.pending = b
		if l.opts.wait > 0 {
			b.timer = time.AfterFunc(l.opts.wait, func() { l.dispatch(b) })
		}
	}

	e := &entry[K, V]{batch: b, done: make(chan struct{})}
	l.cache[key] = e
	b.keys = append(b.keys, key)
	b.entries = append(b.entries, e)

	if l.opts.maxBatch > 0 && len(b.keys) >= l.opts.maxBatch {
		l.pending = nil
		return e, b
	}
	return e, nil
}

// LoadThunk registers key and returns a thunk for its value. Keys registered
// before any thunk is called share one fetch.
func (l *Loader[K, V]) LoadThunk(ctx context.Context, key K) Thunk[V] {
	l.mu.Lock()
	e, full := l.enqueue(ctx, key)
	l.mu.Unlock()

	if full != nil {
		l.dispatch(full)
	}
	return l.thunk(ctx, e)
}

// Load returns the value for key, fetching it with whatever else is pending
func (l *Loader[K, V]) Load(ctx context.Context, key K) (V, error) {
	return l.LoadThunk(ctx, key)()
}

// LoadMany registers all keys at once and returns their values in order.
// The first error wins.
func (l *Loader[K, V]) LoadMany(ctx context.Context, keys []K) ([]V, error) {
	thunks := l.enqueueAll(ctx, keys)

	values := make([]V, len(keys))
	for i, th := range thunks {
		v, err := th()
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

// Prefetch registers all keys under one lock and dispatches the pending
// batch. Values are then served from the cache.
func (l *Loader[K, V]) Prefetch(ctx context.Context, keys []K) {
	l.enqueueAll(ctx, keys)
	l.Flush()
}

func (l *Loader[K, V]) enqueueAll(ctx context.Context, keys []K) []Thunk[V] {
	var full []*batch[K, V]
	entries := make([]*entry[K, V], len(keys))

	l.mu.Lock()
	for i, key := range keys {
		e, b := l.enqueue(ctx, key)
		entries[i] = e
		if b != nil {
			full = append(full, b)
		}
	}
	l.mu.Unlock()

	for _, b := range full {
		l.dispatch(b)
	}

	thunks := make([]Thunk[V], len(entries))
	for i, e := range entries {
		thunks[i] = l.thunk(ctx, e)
	}
	return thunks
}

// Flush dispatches the pending batch now
func (l *Loader[K, V]) Flush() {
	l.mu.Lock()
	b := l.pending
	l.mu.Unlock()

	if b != nil {
		l.dispatch(b)
	}
}

// Prime stores a value for key unless the key is already cached
func (l *Loader[K, V]) Prime(key K, value V) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.cache[key]; ok {
		return
	}
	e := &entry[K, V]{done: make(chan struct{}), value: value}
	close(e.done)
	l.cache[key] = e
}

// Clear forgets every cached result. Loads already in flight still complete.
func (l *Loader[K, V]) Clear() {
	l.mu.Lock()
	l.cache = make(map[K]*entry[K, V])
	l.mu.Unlock()
}

func (l *Loader[K, V]) thunk(ctx context.Context, e *entry[K, V]) Thunk[V] {
	return func() (V, error) {
		select {
		case <-e.done:
			return e.value, e.err
		default:
		}

		if l.opts.wait <= 0 {
			l.dispatch(e.batch)
		}

		select {
		case <-e.done:
			return e.value, e.err
		case <-ctx.Done():
			var zero V
			return zero, ctx.Err()
		}
	}
}

// dispatch runs the batch fetch once and resolves every entry in it
func (l *Loader[K, V]) dispatch(b *batch[K, V]) {
	l.mu.Lock()
	if b.dispatched {
		l.mu.Unlock()
		return
	}
	b.dispatched = true
	if l.pending == b {
		l.pending = nil
	}
	if b.timer != nil {
		b.timer.Stop()
	}
	l.mu.Unlock()

	l.fetches.Add(1)
	metrics.LoaderBatches.WithLabelValues(l.name).Inc()
	metrics.LoaderKeys.WithLabelValues(l.name).Add(float64(len(b.keys)))

	values, err := l.safeFetch(b.ctx, b.keys)
	if err != nil {
		metrics.LoaderErrors.WithLabelValues(l.name).Inc()
	}

	for i, key := range b.keys {
		e := b.entries[i]
		if err != nil {
			e.err = err
		} else {
			e.value = values[key]
		}
		close(e.done)
	}
}

func (l *Loader[K, V]) safeFetch(ctx context.Context, keys []K) (values map[K]V, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("loader %s: panic in batch fetch: %v", l.name, r)
		}
	}()
	return l.fetch(ctx, keys)
}
