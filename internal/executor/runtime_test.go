package executor_test

import (
	"context"
	"sync"

	executor "github.com/hanpama/membergraph/internal/executor"
)

type resolveFunc func(ctx context.Context, source any, args map[string]any) (any, error)

func returns(v any) resolveFunc {
	return func(context.Context, any, map[string]any) (any, error) { return v, nil }
}

func fails(err error) resolveFunc {
	return func(context.Context, any, map[string]any) (any, error) { return nil, err }
}

// call records one resolution. Batch is 0 for sync fields and counts flushes
// from 1 for async ones.
type call struct {
	Kind       string
	ObjectType string
	Field      string
	Args       map[string]any
	Batch      int
}

// fakeRuntime resolves "Type.field" entries and logs every call. Async tasks
// are resolved in task order; missing entries resolve to null.
type fakeRuntime struct {
	mu        sync.Mutex
	resolvers map[string]resolveFunc
	calls     []call
	batches   int
}

var _ executor.Runtime = (*fakeRuntime)(nil)

func newFakeRuntime(resolvers map[string]resolveFunc) *fakeRuntime {
	return &fakeRuntime{resolvers: resolvers}
}

func (r *fakeRuntime) resolve(ctx context.Context, kind, typ, field string, source any, args map[string]any, batch int) (any, error) {
	r.mu.Lock()
	f := r.resolvers[typ+"."+field]
	r.calls = append(r.calls, call{Kind: kind, ObjectType: typ, Field: field, Args: args, Batch: batch})
	r.mu.Unlock()
	if f == nil {
		return nil, nil
	}
	return f(ctx, source, args)
}

func (r *fakeRuntime) ResolveSync(ctx context.Context, objectType, field string, source any, args map[string]any) (any, error) {
	return r.resolve(ctx, "sync", objectType, field, source, args, 0)
}

func (r *fakeRuntime) BatchResolveAsync(ctx context.Context, tasks []executor.AsyncResolveTask) []executor.AsyncResolveResult {
	r.mu.Lock()
	r.batches++
	batch := r.batches
	r.mu.Unlock()

	out := make([]executor.AsyncResolveResult, len(tasks))
	for i, t := range tasks {
		v, err := r.resolve(ctx, "async", t.ObjectType, t.Field, t.Source, t.Args, batch)
		out[i] = executor.AsyncResolveResult{Value: v, Error: err}
	}
	return out
}

func (r *fakeRuntime) SerializeLeafValue(_ context.Context, _ string, value any) (any, error) {
	return value, nil
}

func (r *fakeRuntime) log() []call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]call(nil), r.calls...)
}
