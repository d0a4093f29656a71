package telemetry

import (
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the name of the engine's tracer.
const TracerName = "swapgrid"

// Tracer returns the engine's tracer from the global provider.
func Tracer() trace.Tracer {
	return otel.Tracer(TracerName)
}

// Reporter combines a beacon sink and metrics behind domain-level calls.
type Reporter struct {
	sink    Sink
	metrics *Metrics
	now     func() time.Time
}

// NewReporter creates a Reporter. sink and metrics may be nil; now defaults
// to time.Now.
func NewReporter(sink Sink, metrics *Metrics, now func() time.Time) *Reporter {
	if sink == nil {
		sink = Discard
	}
	if now == nil {
		now = time.Now
	}
	return &Reporter{sink: sink, metrics: metrics, now: now}
}

// Metrics returns the reporter's metrics, possibly nil.
func (r *Reporter) Metrics() *Metrics {
	if r == nil {
		return nil
	}
	return r.metrics
}

func (r *Reporter) beacon(name string, attrs map[string]string) {
	r.sink.Send(Beacon{Name: name, Attrs: attrs, At: r.now()})
}

// CacheHit reports a cache hit for key.
func (r *Reporter) CacheHit(key string) {
	if r == nil {
		return
	}
	r.metrics.CacheEvent("hit")
	r.beacon(BeaconCacheHit, map[string]string{"key": key})
}

// CacheMiss reports a cache miss for key.
func (r *Reporter) CacheMiss(key string) {
	if r == nil {
		return
	}
	r.metrics.CacheEvent("miss")
	r.beacon(BeaconCacheMiss, map[string]string{"key": key})
}

// CacheStore reports a stored response.
func (r *Reporter) CacheStore(key string, ttl time.Duration) {
	if r == nil {
		return
	}
	r.metrics.CacheEvent("store")
	r.beacon(BeaconCacheStore, map[string]string{
		"key":    key,
		"ttl_ms": strconv.FormatInt(ttl.Milliseconds(), 10),
	})
}

// Prefetch reports a speculative fetch being issued.
func (r *Reporter) Prefetch(key, url string) {
	if r == nil {
		return
	}
	r.metrics.CacheEvent("prefetch")
	r.beacon(BeaconPrefetch, map[string]string{"key": key, "url": url})
}

// ToggleSuccess reports a confirmed toggle.
func (r *Reporter) ToggleSuccess(id int, list string) {
	if r == nil {
		return
	}
	r.metrics.Toggle("success")
	r.beacon(BeaconToggleSuccess, map[string]string{
		"item": strconv.Itoa(id),
		"list": list,
	})
}

// ToggleFailure reports a rolled-back toggle.
func (r *Reporter) ToggleFailure(id int, list string, status int) {
	if r == nil {
		return
	}
	r.metrics.Toggle("failure")
	r.beacon(BeaconToggleFailure, map[string]string{
		"item":   strconv.Itoa(id),
		"list":   list,
		"status": strconv.Itoa(status),
	})
}

// ToggleConflict counts a toggle rejected while another was pending. No
// beacon is sent; nothing left the page.
func (r *Reporter) ToggleConflict() {
	if r == nil {
		return
	}
	r.metrics.Toggle("conflict")
}

// Exchange counts a partial-update outcome.
func (r *Reporter) Exchange(outcome string) {
	if r == nil {
		return
	}
	r.metrics.Exchange(outcome)
}

// WindowRender counts a window render.
func (r *Reporter) WindowRender() {
	if r == nil {
		return
	}
	r.metrics.WindowRender()
}

// MeasureFailure counts a swallowed measurement failure.
func (r *Reporter) MeasureFailure() {
	if r == nil {
		return
	}
	r.metrics.MeasureFailure()
}
