package errors

import (
	stderrors "errors"
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryMeasurement Category = "measurement"
	CategoryCache       Category = "cache"
	CategoryTransport   Category = "transport"
	CategoryServer      Category = "server"
	CategoryConflict    Category = "conflict"
	CategoryConfig      Category = "config"
)

// SwapError is a structured error carrying enough detail to surface to a
// user and to retry.
type SwapError struct {
	// Code is a unique error identifier (e.g., "E140").
	Code string

	// Category is the error type.
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation, typically the server's own message.
	Detail string

	// Status is the HTTP status of a rejected request, 0 otherwise.
	Status int

	// Path is the request path the error relates to, if any.
	Path string

	// Suggestion is a hint on how to recover.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *SwapError) Error() string {
	msg := e.Message
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, msg)
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *SwapError) Unwrap() error {
	return e.Wrapped
}

// Is matches another *SwapError with the same code.
func (e *SwapError) Is(target error) bool {
	t, ok := target.(*SwapError)
	return ok && t.Code != "" && t.Code == e.Code
}

// WithDetail adds a detailed explanation to the error.
func (e *SwapError) WithDetail(d string) *SwapError {
	e.Detail = d
	return e
}

// WithStatus records the HTTP status of a rejected request.
func (e *SwapError) WithStatus(status int) *SwapError {
	e.Status = status
	return e
}

// WithPath records the request path.
func (e *SwapError) WithPath(path string) *SwapError {
	e.Path = path
	return e
}

// WithSuggestion adds a recovery hint to the error.
func (e *SwapError) WithSuggestion(s string) *SwapError {
	e.Suggestion = s
	return e
}

// Wrap wraps another error.
func (e *SwapError) Wrap(err error) *SwapError {
	e.Wrapped = err
	return e
}

// UserMessage returns the text shown in a notification.
func (e *SwapError) UserMessage() string {
	msg := e.Message
	if e.Detail != "" {
		msg = e.Detail
	}
	if e.Status > 0 {
		return fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	return msg
}

// New creates a SwapError from a registered error code.
func New(code string) *SwapError {
	template, ok := registry[code]
	if !ok {
		return &SwapError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &SwapError{
		Code:       code,
		Category:   template.Category,
		Message:    template.Message,
		Suggestion: template.Suggestion,
	}
}

// Newf creates a new SwapError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *SwapError {
	return &SwapError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a SwapError.
func FromError(err error, code string) *SwapError {
	if err == nil {
		return nil
	}
	var se *SwapError
	if stderrors.As(err, &se) {
		return se
	}
	return New(code).Wrap(err)
}

// CategoryOf returns the category of err, or "" when err is not a SwapError.
func CategoryOf(err error) Category {
	var se *SwapError
	if stderrors.As(err, &se) {
		return se.Category
	}
	return ""
}
