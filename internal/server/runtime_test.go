package server

import (
	"context"
	"sync"

	"github.com/hanpama/membergraph/internal/executor"
)

type fieldFunc func(ctx context.Context, source any, args map[string]any) (any, error)

func constant(v any) fieldFunc {
	return func(context.Context, any, map[string]any) (any, error) { return v, nil }
}

// stubRuntime serves "Type.field" entries and counts resolutions. Fields
// without an entry resolve to null.
type stubRuntime struct {
	mu     sync.Mutex
	fields map[string]fieldFunc
	calls  int
}

func newStubRuntime() *stubRuntime {
	return &stubRuntime{fields: map[string]fieldFunc{}}
}

func (r *stubRuntime) set(key string, f fieldFunc) {
	r.mu.Lock()
	r.fields[key] = f
	r.mu.Unlock()
}

func (r *stubRuntime) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func (r *stubRuntime) resolve(ctx context.Context, key string, source any, args map[string]any) (any, error) {
	r.mu.Lock()
	f := r.fields[key]
	r.calls++
	r.mu.Unlock()
	if f == nil {
		return nil, nil
	}
	return f(ctx, source, args)
}

func (r *stubRuntime) ResolveSync(ctx context.Context, objectType, field string, source any, args map[string]any) (any, error) {
	return r.resolve(ctx, objectType+"."+field, source, args)
}

func (r *stubRuntime) BatchResolveAsync(ctx context.Context, tasks []executor.AsyncResolveTask) []executor.AsyncResolveResult {
	out := make([]executor.AsyncResolveResult, len(tasks))
	for i, t := range tasks {
		v, err := r.resolve(ctx, t.ObjectType+"."+t.Field, t.Source, t.Args)
		out[i] = executor.AsyncResolveResult{Value: v, Error: err}
	}
	return out
}

func (r *stubRuntime) SerializeLeafValue(_ context.Context, _ string, value any) (any, error) {
	return value, nil
}
