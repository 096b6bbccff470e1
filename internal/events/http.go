package events

import (
	"net/http"
	"time"
)

// HTTPStart is emitted when the GraphQL handler receives a request.
type HTTPStart struct {
	RequestID string
	Request   *http.Request
}

// HTTPFinish is emitted after the handler has written its response.
type HTTPFinish struct {
	RequestID string
	Request   *http.Request
	Status    int
	Duration  time.Duration
}
