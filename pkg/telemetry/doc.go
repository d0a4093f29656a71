// Package telemetry reports what the engine does: fire-and-forget beacons to
// a collector endpoint, Prometheus counters, and OpenTelemetry spans.
//
// Beacon delivery is best effort. A beacon is sent once on its own
// goroutine, never retried, and dropped outright when too many are already
// in flight; the scheduler goroutine never waits on the network for it.
//
// A nil *Reporter is valid and reports nothing, so components can be built
// without telemetry in tests.
package telemetry
