package optimization

import (
	"errors"
	"fmt"

	"github.com/copyleftdev/nlsearch/internal/geometry"
)

// Error kinds reported by the minimizers. Match them with errors.Is.
var (
	// ErrInvalidParameter is returned before iterating when a setting, the
	// objective or the start point is unusable.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrMaxIterationsExceeded is returned when the iteration cap is reached
	// before two consecutive iterates fall within the tolerance.
	ErrMaxIterationsExceeded = errors.New("maximum iterations exceeded")

	// ErrDegenerateGradient is returned when the gradient at an iterate has no
	// direction and cannot be normalized.
	ErrDegenerateGradient = errors.New("degenerate gradient")
)

// Error represents an optimization error with context
// that can be wrapped with additional information.
type Error struct {
	// Message describes the error that occurred.
	Message string
	// Op is the operation that caused the error.
	Op string
	// Component is the minimizer where the error occurred.
	Component string
	// Point is the iterate the minimizer stood on, if any.
	Point *geometry.Point
	// Err is the error kind or underlying cause.
	Err error
}

// Error returns the string representation of the error.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	var prefix string
	if e.Component != "" && e.Op != "" {
		prefix = fmt.Sprintf("%s: %s", e.Component, e.Op)
	} else if e.Component != "" {
		prefix = e.Component
	} else if e.Op != "" {
		prefix = e.Op
	}

	msg := e.Message
	if e.Point != nil {
		msg = fmt.Sprintf("%s at %v", msg, *e.Point)
	}

	if e.Err != nil {
		if prefix != "" {
			return fmt.Sprintf("%s: %s: %v", prefix, msg, e.Err)
		}
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}

	if prefix != "" {
		return fmt.Sprintf("%s: %s", prefix, msg)
	}
	return msg
}

// Unwrap returns the underlying error, if any.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// WithOperation adds operation context to the error.
func (e *Error) WithOperation(op string) *Error {
	e.Op = op
	return e
}

// WithComponent adds component context to the error.
func (e *Error) WithComponent(component string) *Error {
	e.Component = component
	return e
}

// WithPoint records the iterate the error refers to.
func (e *Error) WithPoint(p geometry.Point) *Error {
	e.Point = &p
	return e
}

// NewErrorf creates an error of the given kind with a formatted message.
func NewErrorf(kind error, format string, args ...interface{}) *Error {
	return &Error{
		Message: fmt.Sprintf(format, args...),
		Err:     kind,
	}
}

// WrapError wraps an existing error with additional context.
// If err is nil, WrapError returns nil.
func WrapError(err error, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Message: message,
		Err:     err,
	}
}

// IsOptimizationError checks if an error chain contains an Error.
// If so it returns that error and true, otherwise nil and false.
func IsOptimizationError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
