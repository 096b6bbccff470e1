package events

import "time"

// StoreQuery is emitted after every backend facade call.
type StoreQuery struct {
	Entity   string
	Op       string
	Rows     int
	Duration time.Duration
	Err      error
}
