package events

import "time"

// GraphQLStart is emitted before executing a GraphQL operation.
type GraphQLStart struct {
	Query         string
	OperationName string
	OperationType string
}

// GraphQLFinish is emitted after executing a GraphQL operation, including
// operations rejected before execution by parsing, validation or the depth
// limit (Rejected is true for those).
type GraphQLFinish struct {
	Query         string
	OperationName string
	OperationType string
	Errors        []error
	Rejected      bool
	Duration      time.Duration
}
