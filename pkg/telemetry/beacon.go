package telemetry

import (
	"sync"
	"time"
)

// Beacon names.
const (
	BeaconCacheHit      = "cache.hit"
	BeaconCacheMiss     = "cache.miss"
	BeaconCacheStore    = "cache.store"
	BeaconPrefetch      = "cache.prefetch"
	BeaconToggleSuccess = "toggle.success"
	BeaconToggleFailure = "toggle.failure"
)

// Beacon is a single telemetry record.
type Beacon struct {
	Name  string            `json:"name"`
	Attrs map[string]string `json:"attrs,omitempty"`
	At    time.Time         `json:"at"`
}

// Sink receives beacons. Send must not block.
type Sink interface {
	Send(b Beacon)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Beacon)

// Send calls f(b).
func (f SinkFunc) Send(b Beacon) { f(b) }

// Discard drops every beacon.
var Discard Sink = SinkFunc(func(Beacon) {})

// Recorder keeps every beacon in memory.
type Recorder struct {
	mu      sync.Mutex
	beacons []Beacon
}

// Send records b.
func (r *Recorder) Send(b Beacon) {
	r.mu.Lock()
	r.beacons = append(r.beacons, b)
	r.mu.Unlock()
}

// Beacons returns a copy of the recorded beacons.
func (r *Recorder) Beacons() []Beacon {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Beacon, len(r.beacons))
	copy(out, r.beacons)
	return out
}

// Names returns the names of the recorded beacons in order.
func (r *Recorder) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.beacons))
	for i, b := range r.beacons {
		out[i] = b.Name
	}
	return out
}

// Count returns how many beacons named name were recorded.
func (r *Recorder) Count(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, b := range r.beacons {
		if b.Name == name {
			n++
		}
	}
	return n
}
