package model

import (
	"errors"
	"fmt"
)

// NotLoadedError is returned when accessing an edge that was not eager-loaded.
type NotLoadedError struct {
	edge string
}

func (e *NotLoadedError) Error() string {
	return fmt.Sprintf("model: edge %q was not loaded", e.edge)
}

// Edge returns the name of the relation.
func (e *NotLoadedError) Edge() string { return e.edge }

// IsNotLoaded returns true if the error is a NotLoadedError.
func IsNotLoaded(err error) bool {
	if err == nil {
		return false
	}
	var e *NotLoadedError
	return errors.As(err, &e)
}
