package loader

import (
	"context"
	"time"

	"github.com/hanpama/membergraph/internal/eventbus"
	"github.com/hanpama/membergraph/internal/events"
)

// BatchFunc loads the values for keys in one backend call. Keys with no value
// are left out of the returned map.
type BatchFunc[K comparable, V any] func(ctx context.Context, keys []K) (map[K]V, error)

// Thunk yields the value of a single Load. The first call on an unresolved
// key dispatches the loader's pending batch.
type Thunk[V any] func() (V, error)

// ThunkMany yields the values of a LoadMany aligned to the requested keys.
type ThunkMany[V any] func() ([]V, error)

type entry[V any] struct {
	value    V
	err      error
	resolved bool
}

type options struct {
	maxBatch int
}

type Option func(*options)

// WithMaxBatch caps the number of keys sent in one BatchFunc call. A dispatch
// with more pending keys issues one call per chunk. n <= 0 means unlimited.
func WithMaxBatch(n int) Option { return func(o *options) { o.maxBatch = n } }

// Loader batches and caches lookups of one entity kind for one operation.
type Loader[K comparable, V any] struct {
	name     string
	fetch    BatchFunc[K, V]
	missing  func() V
	maxBatch int

	entries map[K]*entry[V]
	pending []K
	batches int
}

// NewLoader returns a loader for a single-value kind. Missing keys resolve to
// the zero value of V.
func NewLoader[K comparable, V any](name string, fetch BatchFunc[K, V], opts ...Option) *Loader[K, V] {
	return newLoader(name, fetch, func() V { var zero V; return zero }, opts)
}

// NewGroupLoader returns a loader for a one-to-many kind. Missing keys
// resolve to an empty, non-nil slice.
func NewGroupLoader[K comparable, V any](name string, fetch BatchFunc[K, []V], opts ...Option) *Loader[K, []V] {
	return newLoader(name, fetch, func() []V { return []V{} }, opts)
}

func newLoader[K comparable, V any](name string, fetch BatchFunc[K, V], missing func() V, opts []Option) *Loader[K, V] {
	var o options
	for _, f := range opts {
		f(&o)
	}
	return &Loader[K, V]{
		name:     name,
		fetch:    fetch,
		missing:  missing,
		maxBatch: o.maxBatch,
		entries:  make(map[K]*entry[V]),
	}
}

// Name identifies the loader in events and errors.
func (l *Loader[K, V]) Name() string { return l.name }

// Batches returns how many BatchFunc calls the loader has made.
func (l *Loader[K, V]) Batches() int { return l.batches }

// Pending returns the number of keys waiting for the next dispatch.
func (l *Loader[K, V]) Pending() int { return len(l.pending) }

// Load registers key and returns a thunk for its value.
func (l *Loader[K, V]) Load(ctx context.Context, key K) Thunk[V] {
	e := l.enqueue(key)
	return func() (V, error) {
		if !e.resolved {
			l.Dispatch(ctx)
		}
		return e.value, e.err
	}
}

// LoadMany registers every key and returns a thunk for the values in key
// order. Missing keys yield the missing value at their position. If any key
// resolved to an error the thunk returns that error and no values.
func (l *Loader[K, V]) LoadMany(ctx context.Context, keys []K) ThunkMany[V] {
	thunks := make([]Thunk[V], len(keys))
	for i, k := range keys {
		thunks[i] = l.Load(ctx, k)
	}
	return func() ([]V, error) {
		out := make([]V, len(thunks))
		for i, th := range thunks {
			v, err := th()
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	}
}

// Prime stores value for key without a fetch. It reports false and leaves the
// cache unchanged when key already has an entry.
func (l *Loader[K, V]) Prime(key K, value V) bool {
	if _, ok := l.entries[key]; ok {
		return false
	}
	l.entries[key] = &entry[V]{value: value, resolved: true}
	return true
}

// Clear drops a resolved entry so the next Load fetches it again. Pending
// entries are left alone.
func (l *Loader[K, V]) Clear(key K) {
	if e, ok := l.entries[key]; ok && e.resolved {
		delete(l.entries, key)
	}
}

// Dispatch resolves every pending key.
func (l *Loader[K, V]) Dispatch(ctx context.Context) {
	for len(l.pending) > 0 {
		n := len(l.pending)
		if l.maxBatch > 0 && n > l.maxBatch {
			n = l.maxBatch
		}
		keys := append([]K(nil), l.pending[:n]...)
		l.pending = l.pending[n:]
		l.run(ctx, keys)
	}
	l.pending = nil
}

func (l *Loader[K, V]) enqueue(key K) *entry[V] {
	if e, ok := l.entries[key]; ok {
		return e
	}
	e := &entry[V]{}
	l.entries[key] = e
	l.pending = append(l.pending, key)
	return e
}

func (l *Loader[K, V]) run(ctx context.Context, keys []K) {
	start := time.Now()
	l.batches++
	values, err := l.fetch(ctx, keys)
	for _, k := range keys {
		e := l.entries[k]
		switch v, ok := values[k]; {
		case err != nil:
			e.err = err
		case ok:
			e.value = v
		default:
			e.value = l.missing()
		}
		e.resolved = true
	}
	eventbus.Publish(ctx, events.LoaderBatch{
		Loader:   l.name,
		Keys:     len(keys),
		Duration: time.Since(start),
		Err:      err,
	})
}
