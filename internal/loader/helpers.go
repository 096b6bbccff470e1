package loader

import "context"

// KeyFunc extracts a key from an entity.
type KeyFunc[K comparable, V any] func(V) K

// IndexBy maps each value by its key. Later values win on duplicate keys.
func IndexBy[K comparable, V any](values []V, keyFn KeyFunc[K, V]) map[K]V {
	out := make(map[K]V, len(values))
	for _, v := range values {
		out[keyFn(v)] = v
	}
	return out
}

// GroupByKey groups values by key, keeping the input order inside each group.
func GroupByKey[K comparable, T, V any](items []T, keyFn func(T) K, valueFn func(T) V) map[K][]V {
	out := make(map[K][]V)
	for _, it := range items {
		k := keyFn(it)
		out[k] = append(out[k], valueFn(it))
	}
	return out
}

// CachePrimer is satisfied by every Loader.
type CachePrimer[K comparable, V any] interface {
	Prime(key K, value V) bool
}

// PrimeMany primes cache with every value under its key and returns how many
// entries were actually inserted.
func PrimeMany[K comparable, V any](cache CachePrimer[K, V], values []V, keyFn KeyFunc[K, V]) int {
	n := 0
	for _, v := range values {
		if cache.Prime(keyFn(v), v) {
			n++
		}
	}
	return n
}

type ctxKey struct{}

// WithLoaders attaches the operation's loaders to ctx.
func WithLoaders(ctx context.Context, l *Loaders) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// For returns the loaders attached to ctx, or nil.
func For(ctx context.Context) *Loaders {
	l, _ := ctx.Value(ctxKey{}).(*Loaders)
	return l
}
