package events

import "time"

// LoaderBatch is emitted after a request-scoped loader dispatches one batch
// of pending keys to the backend.
type LoaderBatch struct {
	Loader   string
	Keys     int
	Duration time.Duration
	Err      error
}
