// Package loader implements the request-scoped batching and caching layer
// that sits between GraphQL field resolvers and the store.
//
// # Model
//
// A Loader[K, V] owns two pieces of state for one entity kind:
//
//   - a cache of entries keyed by K, each either unresolved (waiting for a
//     batch) or resolved (holding a value or an error);
//   - a pending queue of keys that have an unresolved entry.
//
// Load never talks to the backend. It records the key (once) and returns a
// Thunk. Forcing any thunk whose entry is still unresolved dispatches the
// whole pending queue with a single BatchFunc call, so every key requested
// before the first force shares one round-trip. Callers that want batching
// must therefore start all sibling loads before forcing any of them; the
// resolver runtime does this per execution depth.
//
// Results are matched to keys through the map returned by BatchFunc, never
// through row order. A key absent from the map resolves to the loader's
// missing value: nil for single-value loaders, an empty slice for group
// loaders. A BatchFunc error resolves every key of that dispatch to the same
// error. Each entry resolves exactly once; errors are cached like values.
//
// # Priming
//
// Prime inserts a resolved entry without a fetch. It only fills empty slots:
// a key that is already pending or resolved keeps its entry and Prime
// returns false.
//
// # Staleness
//
// Mutations go straight to the store and do not touch loaders. A value cached
// earlier in the same operation is therefore still served after a mutation
// changes the underlying row. Loaders live for one operation only, so the
// next operation observes the write.
//
// # Concurrency
//
// A Loader belongs to a single operation and is not safe for concurrent use.
package loader
