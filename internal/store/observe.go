package store

import (
	"context"
	"time"

	"github.com/hanpama/membergraph/internal/eventbus"
	"github.com/hanpama/membergraph/internal/events"
)

// Observe publishes the outcome of one facade call that began at start.
func Observe(ctx context.Context, entity, op string, start time.Time, rows int, err error) {
	eventbus.Publish(ctx, events.StoreQuery{
		Entity:   entity,
		Op:       op,
		Rows:     rows,
		Duration: time.Since(start),
		Err:      err,
	})
}

// Operation names reported in events and call logs.
const (
	OpFindByID         = "find_by_id"
	OpFindByIDs        = "find_by_ids"
	OpFindByForeignKey = "find_by_foreign_key"
	OpFindAll          = "find_all"
	OpCreate           = "create"
	OpUpdate           = "update"
	OpDelete           = "delete"
	OpAuthorsOf        = "authors_of"
	OpSubscribersOf    = "subscribers_of"
	OpSubscribe        = "subscribe"
	OpUnsubscribe      = "unsubscribe"
)
