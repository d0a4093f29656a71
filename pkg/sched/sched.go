// Package sched provides the single-threaded cooperative scheduler the engine
// runs on.
//
// Every handler in the engine is a short synchronous reaction: a user event, a
// timer expiry or a network completion. None preempts another. Code that
// finishes work on another goroutine (an HTTP round trip, say) hands its
// result back with Post, and the result is processed on the scheduler's
// goroutine in turn.
//
// Two implementations are provided: Loop for production and Manual, a
// virtual clock for deterministic tests.
package sched

import "time"

// Timer is a pending AfterFunc callback.
type Timer interface {
	// Stop prevents the callback from running. It returns false if the
	// callback already ran or the timer was already stopped.
	Stop() bool
}

// Scheduler runs tasks one at a time.
type Scheduler interface {
	// Now returns the scheduler's current time.
	Now() time.Time

	// AfterFunc runs f on the scheduler after d elapses.
	AfterFunc(d time.Duration, f func()) Timer

	// Post queues f to run on the scheduler. It is safe to call from any
	// goroutine.
	Post(f func())
}
