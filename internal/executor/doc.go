// Package executor implements a breadth-first, batch-friendly GraphQL executor
// with explicit runtime hooks for synchronous resolution, depth-wise batching
// of asynchronous work, and leaf serialization.
//
// # Execution Model
//
// Fields are classified by schema.Field.Async:
//   - Synchronous fields are projections of the parent value. They are resolved
//     immediately through Runtime.ResolveSync and their sub-selections keep
//     expanding at the same depth.
//   - Asynchronous fields need backend work. They are queued and resolved
//     together in one Runtime.BatchResolveAsync call per depth.
//
// For a query with asynchronous depth d, BatchResolveAsync is invoked exactly d
// times. Purely synchronous descents do not increase d.
//
// Mutation operations run their root fields one at a time: each root field
// and everything below it is fully resolved before the next root field is
// queued, so a query costs d batches per root mutation field.
//
// Completed values are written into a mutable response tree at their response
// paths.
//
// # Value Completion
//
//   - Non-Null: a null inner result records an error and propagates null to
//     the nearest nullable ancestor. With no nullable ancestor the response
//     data is null.
//   - List: each element is completed with an index-aware path.
//   - Leaf: Runtime.SerializeLeafValue produces a JSON-safe value.
//   - Object: sub-fields are collected and executed as described above.
//
// Tasks queued under a path that was later nulled are dropped before the
// next batch.
//
// # Values
//
// Variables and arguments are coerced against the schema: Int must be an
// integral 32-bit value, enums must name a declared value, and input objects
// reject unknown fields and require their non-null fields.
package executor
