package executor

import (
	"context"

	language "github.com/hanpama/membergraph/internal/language"
)

// Runtime is the host integration surface the Executor calls for field
// resolution, depth-wise batching and leaf serialization.
//
// Contract
//   - At each depth the Executor drains synchronous fields through ResolveSync,
//     then calls BatchResolveAsync once with every async task collected at that
//     depth. The next depth starts only after those results are completed.
//   - ResolveSync is never invoked for async fields, and BatchResolveAsync is
//     only invoked with at least one task.
//   - Errors become located GraphQL errors. An error that implements
//     Extensions() map[string]any contributes its extensions.
//   - For root fields objectType is the root type name and source is the
//     initial value passed to ExecuteRequest.
//   - args holds coerced Go values; absent nullable arguments are omitted.
type Runtime interface {
	// ResolveSync resolves a synchronous field value immediately. Return
	// (nil, nil) to produce null.
	ResolveSync(ctx context.Context, objectType string, field string, source any, args map[string]any) (any, error)

	// BatchResolveAsync resolves one execution depth of async field tasks.
	//
	// Requirements:
	// - Return len(results) == len(tasks).
	// - results[i] corresponds to tasks[i].
	// - Report failures per element without failing the whole batch.
	BatchResolveAsync(ctx context.Context, tasks []AsyncResolveTask) []AsyncResolveResult

	// SerializeLeafValue serializes a scalar or enum value to a JSON-safe Go
	// value. Enums serialize to their symbolic name.
	SerializeLeafValue(ctx context.Context, scalarOrEnumTypeName string, value any) (any, error)
}

type AsyncResolveTask struct {
	// ObjectType is the parent GraphQL object type name for the field.
	ObjectType string
	// Field is the GraphQL field name to resolve.
	Field string
	// Source is the parent object value.
	Source any
	// Args are the field arguments, coerced to Go values per the schema.
	Args map[string]any
	// Fields are the merged AST nodes for this response key. Resolvers read
	// sub-selections from them.
	Fields []*language.Field
	Path   Path
}

type AsyncResolveResult struct {
	// Value is the resolved raw value prior to completion, or nil on error.
	Value any
	// Error contains a failure specific to this element; other elements in the
	// same batch are unaffected.
	Error error
}
