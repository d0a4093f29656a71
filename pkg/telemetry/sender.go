package telemetry

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
)

// Semaphore limits concurrent beacon deliveries. Acquire never blocks.
type Semaphore struct {
	ch chan struct{}
}

// NewSemaphore creates a new semaphore with the given limit.
func NewSemaphore(limit int) *Semaphore {
	if limit <= 0 {
		limit = 1
	}
	return &Semaphore{
		ch: make(chan struct{}, limit),
	}
}

// Acquire tries to acquire a slot. Returns true if successful.
// If the semaphore is full, returns false immediately (non-blocking).
func (s *Semaphore) Acquire() bool {
	select {
	case s.ch <- struct{}{}:
		return true
	default:
		return false
	}
}

// Release releases a slot.
func (s *Semaphore) Release() {
	select {
	case <-s.ch:
	default:
	}
}

// SenderConfig configures an HTTPSender.
type SenderConfig struct {
	// Endpoint receives beacons as JSON POST bodies.
	Endpoint string

	// Timeout bounds one delivery attempt.
	// Default: 2s
	Timeout time.Duration

	// MaxInFlight is the number of deliveries allowed at once. Beacons
	// beyond it are dropped.
	// Default: 8
	MaxInFlight int

	// Logger receives delivery failures at debug level.
	Logger *slog.Logger
}

// HTTPSender delivers beacons to a collector endpoint over HTTP.
type HTTPSender struct {
	client   *resty.Client
	endpoint string
	sem      *Semaphore
	logger   *slog.Logger
	wg       sync.WaitGroup
	dropped  atomic.Uint64
	metrics  *Metrics
}

// NewHTTPSender creates a sender for cfg.Endpoint.
func NewHTTPSender(cfg SenderConfig) *HTTPSender {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}
	if cfg.MaxInFlight <= 0 {
		cfg.MaxInFlight = 8
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(0).
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", "swapgrid-beacon")

	return &HTTPSender{
		client:   client,
		endpoint: cfg.Endpoint,
		sem:      NewSemaphore(cfg.MaxInFlight),
		logger:   cfg.Logger.With("component", "telemetry"),
	}
}

// WithMetrics counts dropped beacons on m.
func (s *HTTPSender) WithMetrics(m *Metrics) *HTTPSender {
	s.metrics = m
	return s
}

// Send delivers b in the background. It returns immediately.
func (s *HTTPSender) Send(b Beacon) {
	if !s.sem.Acquire() {
		s.dropped.Add(1)
		s.metrics.BeaconDropped()
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.sem.Release()
		resp, err := s.client.R().SetBody(b).Post(s.endpoint)
		if err != nil {
			s.logger.Debug("beacon delivery failed", "beacon", b.Name, "error", err)
			return
		}
		if resp.IsError() {
			s.logger.Debug("beacon rejected", "beacon", b.Name, "status", resp.StatusCode())
		}
	}()
}

// Dropped returns the number of beacons dropped because too many were in
// flight.
func (s *HTTPSender) Dropped() uint64 {
	return s.dropped.Load()
}

// Wait blocks until every in-flight delivery has finished.
func (s *HTTPSender) Wait() {
	s.wg.Wait()
}
