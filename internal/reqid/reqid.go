// Package reqid carries a per-request identifier through context.
package reqid

import (
	"context"

	"github.com/google/uuid"
)

// Header is the HTTP header used to accept and echo request ids.
const Header = "X-Request-Id"

type key struct{}

// NewContext returns a copy of parent carrying id. An empty or malformed id
// is replaced with a freshly generated one. The stored id is returned.
func NewContext(parent context.Context, id string) (context.Context, string) {
	if !Valid(id) {
		id = uuid.NewString()
	}
	return context.WithValue(parent, key{}, id), id
}

// FromContext extracts the request ID from ctx.
func FromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(key{}).(string)
	return id, ok
}

// Valid reports whether id is acceptable as a client supplied request id.
func Valid(id string) bool {
	if id == "" || len(id) > 128 {
		return false
	}
	for _, r := range id {
		if r < 0x21 || r > 0x7e {
			return false
		}
	}
	return true
}
