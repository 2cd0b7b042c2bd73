package errors

import (
	"errors"
	"fmt"
)

// Wrapper attaches an operation and a user-facing message to errors raised
// by one component.
type Wrapper struct {
	component string
	operation string
}

// NewWrapper creates a new error wrapper with component and operation context.
func NewWrapper(component, operation string) *Wrapper {
	return &Wrapper{
		component: component,
		operation: operation,
	}
}

// Wrap wraps an error with operation context.
// Returns nil if err is nil.
func (w *Wrapper) Wrap(err error, userMessage string) error {
	if err == nil {
		return nil
	}
	return &WrappedError{
		Component:   w.component,
		Operation:   w.operation,
		Cause:       err,
		UserMessage: userMessage,
	}
}

// Wrapf wraps an error with formatted message.
func (w *Wrapper) Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return w.Wrap(err, fmt.Sprintf(format, args...))
}

// WrappedError contains both internal error details and user-facing message.
type WrappedError struct {
	Component   string // e.g. "recommend", "catalog"
	Operation   string // e.g. "generate", "get_major"
	Cause       error
	UserMessage string
}

func (e *WrappedError) Error() string {
	return fmt.Sprintf("[%s:%s] %s: %v", e.Component, e.Operation, e.UserMessage, e.Cause)
}

func (e *WrappedError) Unwrap() error {
	return e.Cause
}

// UserMessage renders err for end users. Validation errors show their
// message alone; wrapped errors show their user message followed by the
// underlying cause; anything else renders as its Error() text.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var v *ValidationError
	if errors.As(err, &v) {
		return v.Message
	}
	var wrapped *WrappedError
	if errors.As(err, &wrapped) {
		if wrapped.Cause == nil {
			return wrapped.UserMessage
		}
		return wrapped.UserMessage + "：" + wrapped.Cause.Error()
	}
	return err.Error()
}
