package toast

import (
	"github.com/vango-dev/swapgrid/internal/errors"
)

// EventName is the event name dispatched for toasts.
// The host page listens for this event and renders the notification.
const EventName = "swapgrid:toast"

// Type represents the toast notification type.
type Type string

const (
	TypeSuccess Type = "success"
	TypeError   Type = "error"
	TypeWarning Type = "warning"
	TypeInfo    Type = "info"
)

// Emitter dispatches a named custom event to the host page.
type Emitter interface {
	Emit(name string, data any)
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(name string, data any)

// Emit calls f(name, data).
func (f EmitterFunc) Emit(name string, data any) { f(name, data) }

// Discard is an Emitter that drops every event.
var Discard Emitter = EmitterFunc(func(string, any) {})

// Show displays a toast notification.
//
// The host receives an event with:
//   - name = "swapgrid:toast"
//   - data = { level: "success|error|warning|info", message: "..." }
func Show(e Emitter, level Type, message string) {
	e.Emit(EventName, map[string]any{
		"level":   string(level),
		"message": message,
	})
}

// Success shows a success toast.
//
//	toast.Success(e, "Added to favourites")
func Success(e Emitter, message string) {
	Show(e, TypeSuccess, message)
}

// Error shows an error toast.
//
//	toast.Error(e, "Network error")
func Error(e Emitter, message string) {
	Show(e, TypeError, message)
}

// Warning shows a warning toast.
func Warning(e Emitter, message string) {
	Show(e, TypeWarning, message)
}

// Info shows an info toast.
func Info(e Emitter, message string) {
	Show(e, TypeInfo, message)
}

// WithTitle shows a toast with a title and message.
//
//	toast.WithTitle(e, toast.TypeError, "Could not update list", "List is full (status 409)")
func WithTitle(e Emitter, level Type, title, message string) {
	e.Emit(EventName, map[string]any{
		"level":   string(level),
		"title":   title,
		"message": message,
	})
}

// WithAction shows a toast with an action button.
//
//	toast.WithAction(e, toast.TypeError, "Network error", "Retry", "retry:42")
func WithAction(e Emitter, level Type, message, actionLabel, actionID string) {
	e.Emit(EventName, map[string]any{
		"level":       string(level),
		"message":     message,
		"actionLabel": actionLabel,
		"actionID":    actionID,
	})
}

// FromError shows an error toast for err. A *errors.SwapError contributes
// its user message, status and path so the user has enough to retry.
func FromError(e Emitter, err error) {
	if err == nil {
		return
	}
	se := errors.FromError(err, errors.CodeTransport)
	data := map[string]any{
		"level":   string(TypeError),
		"message": se.UserMessage(),
		"code":    se.Code,
	}
	if se.Status > 0 {
		data["status"] = se.Status
	}
	if se.Path != "" {
		data["path"] = se.Path
	}
	e.Emit(EventName, data)
}

// Custom shows a toast with custom data.
func Custom(e Emitter, data map[string]any) {
	e.Emit(EventName, data)
}
