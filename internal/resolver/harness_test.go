package resolver

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hanpama/membergraph/internal/executor"
	"github.com/hanpama/membergraph/internal/language"
	"github.com/hanpama/membergraph/internal/model"
	"github.com/hanpama/membergraph/internal/store"
	"github.com/hanpama/membergraph/internal/store/memstore"
)

var fixtures = &store.Fixtures{
	Users: []store.UserFixture{
		{
			Ref: "alice", Name: "Alice", Balance: 120.5,
			Profile: &store.ProfileFixture{YearOfBirth: 1991, MemberTypeID: model.MemberTypeBusiness},
			Posts:   []store.PostFixture{{Title: "Hello", Content: "First"}, {Title: "Again", Content: "Second"}},
		},
		{
			Ref: "bob", Name: "Bob", Balance: 10,
			Profile: &store.ProfileFixture{IsMale: true, YearOfBirth: 1985, MemberTypeID: model.MemberTypeBasic},
		},
		{Ref: "carol", Name: "Carol"},
	},
	Subscriptions: []store.SubscriptionFixture{
		{Subscriber: "alice", Author: "bob"},
		{Subscriber: "carol", Author: "bob"},
		{Subscriber: "bob", Author: "alice"},
	},
}

type harness struct {
	t      *testing.T
	mem    *memstore.Store
	ids    map[string]string
	rt     *Runtime
	exec   *executor.Executor
	schema *language.Schema
}

// newHarness seeds a memstore with the fixtures. st wraps the memstore when
// not nil.
func newHarness(t *testing.T, wrap func(*memstore.Store) store.Store) *harness {
	t.Helper()
	mem := memstore.New()
	ids, err := store.Seed(context.Background(), mem, fixtures)
	require.NoError(t, err)
	mem.ResetCalls()

	var st store.Store = mem
	if wrap != nil {
		st = wrap(mem)
	}
	doc, sch, err := LoadSchema()
	require.NoError(t, err)
	rt := New(st)
	return &harness{t: t, mem: mem, ids: ids, rt: rt, exec: executor.NewExecutor(rt, sch), schema: doc}
}

// run executes query as one operation with its own loaders.
func (h *harness) run(query string, vars map[string]any) *executor.ExecutionResult {
	h.t.Helper()
	doc, errs := language.ParseAndValidate(h.schema, query)
	require.Empty(h.t, errs)
	return h.exec.ExecuteRequest(h.rt.Scope(context.Background()), doc, "", vars, nil)
}

// data runs query, requires no errors and returns the data as JSON.
func (h *harness) data(query string, vars map[string]any) string {
	h.t.Helper()
	res := h.run(query, vars)
	require.Empty(h.t, res.Errors)
	b, err := json.Marshal(res.Data)
	require.NoError(h.t, err)
	return string(b)
}

func (h *harness) calls(entity, op string) int {
	return len(h.mem.CallsTo(entity, op))
}
