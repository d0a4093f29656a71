// Package errors provides the structured error taxonomy for swapgrid.
//
// # Error Categories
//
//   - measurement: layout introspection failed; never surfaced, the last
//     known-good estimate is kept
//   - cache: cache misuse (a miss is not an error and never produces one)
//   - transport: the request never got a response; surfaced as a transient
//     notification, no automatic retry
//   - server: the server answered with a non-2xx status; the extracted
//     message is surfaced, with a generic fallback
//   - conflict: a toggle was attempted while one is pending; rejected locally
//   - config: configuration could not be loaded or validated
//
// # Usage
//
//	err := errors.New(errors.CodeServerRejected).
//	    WithStatus(409).
//	    WithDetail("List is full")
//
//	toast.Error(emitter, err.UserMessage())
package errors
