// Package demo is the backend behind `swapgrid serve`.
//
// It serves paged item fragments for windowed lists, accepts optimistic
// toggle requests against in-memory include/exclude lists, and collects
// telemetry beacons, fanning each one out to WebSocket clients on
// /ws/beacons. Prometheus metrics are exposed on /metrics.
package demo
