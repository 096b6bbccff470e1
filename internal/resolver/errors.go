package resolver

import (
	"errors"
	"fmt"

	"github.com/hanpama/membergraph/internal/store"
)

// Codes reported in the extensions of field errors.
const (
	CodeNotFound     = "NOT_FOUND"
	CodeConstraint   = "CONSTRAINT"
	CodeBadUserInput = "BAD_USER_INPUT"
	CodeInternal     = "INTERNAL"
)

// Error is a field error with a machine-readable code.
type Error struct {
	Code string
	Err  error
}

func (e *Error) Error() string { return e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

// Extensions implements the executor's error extension hook.
func (e *Error) Extensions() map[string]any {
	return map[string]any{"code": e.Code}
}

func badInput(format string, args ...any) error {
	return &Error{Code: CodeBadUserInput, Err: fmt.Errorf(format, args...)}
}

// classify attaches a code to err according to the store error kind.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var coded *Error
	if errors.As(err, &coded) {
		return err
	}
	code := CodeInternal
	switch {
	case store.IsNotFound(err):
		code = CodeNotFound
	case store.IsConstraintError(err):
		code = CodeConstraint
	}
	return &Error{Code: code, Err: err}
}

// ErrorCode returns the code carried by err, or "" when it has none.
func ErrorCode(err error) string {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code
	}
	return ""
}
