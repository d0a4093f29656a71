package reqcache

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/vango-dev/swapgrid/internal/config"
	"github.com/vango-dev/swapgrid/pkg/lifecycle"
	"github.com/vango-dev/swapgrid/pkg/sched"
	"github.com/vango-dev/swapgrid/pkg/telemetry"
	"github.com/vango-dev/swapgrid/pkg/vdom"
)

// Sender performs a speculative request. It is satisfied by the exchange
// layer's transports.
type Sender interface {
	Send(ctx context.Context, req *lifecycle.Request, done func(*lifecycle.Response, error))
}

// PrefetchConfig wires a Prefetcher to its collaborators.
type PrefetchConfig struct {
	Store      *Store
	Sender     Sender
	Scheduler  sched.Scheduler
	Limiter    *RateLimiter
	DefaultTTL time.Duration
	Reporter   *telemetry.Reporter
	Logger     *slog.Logger
}

// Prefetcher warms the store when the user signals intent on an element.
// Each element is prefetched at most once; a prefetch is never cancelled,
// since storing its result twice is harmless.
type Prefetcher struct {
	store      *Store
	sender     Sender
	sched      sched.Scheduler
	limiter    *RateLimiter
	defaultTTL time.Duration
	reporter   *telemetry.Reporter
	logger     *slog.Logger

	fired      map[*vdom.VNode]bool
	generation uint64
}

// NewPrefetcher creates a Prefetcher.
func NewPrefetcher(cfg PrefetchConfig) *Prefetcher {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = config.DefaultCacheTTLMs * time.Millisecond
	}
	if cfg.Limiter == nil {
		cfg.Limiter = NewRateLimiter(config.DefaultPrefetchRate, config.DefaultPrefetchBurst, cfg.Scheduler.Now)
	}
	return &Prefetcher{
		store:      cfg.Store,
		sender:     cfg.Sender,
		sched:      cfg.Scheduler,
		limiter:    cfg.Limiter,
		defaultTTL: cfg.DefaultTTL,
		reporter:   cfg.Reporter,
		logger:     cfg.Logger.With("component", "prefetch"),
		fired:      make(map[*vdom.VNode]bool),
	}
}

// IsIntent reports whether event name signals intent to follow an element.
func IsIntent(name string) bool {
	return name == "mouseenter" || name == "focus"
}

// HandleEvent prefetches elt's data-prefetch URL on mouseenter or focus.
// It reports whether a fetch was issued.
func (p *Prefetcher) HandleEvent(elt *vdom.VNode, name string) bool {
	if !IsIntent(name) {
		return false
	}
	opts, ok := config.ParsePrefetch(elt, p.defaultTTL)
	if !ok {
		return false
	}
	return p.Prefetch(elt, opts)
}

// Prefetch fetches opts.URL and stores the payload under opts.Key, or a key
// derived from the URL. It reports whether a fetch was issued.
func (p *Prefetcher) Prefetch(elt *vdom.VNode, opts config.Prefetch) bool {
	if p.fired[elt] {
		return false
	}
	req := &lifecycle.Request{
		Elt:     elt,
		Verb:    http.MethodGet,
		URL:     opts.URL,
		Headers: http.Header{},
		Trigger: "prefetch",
	}
	req.Headers.Set("X-Swapgrid-Prefetch", "1")
	key := DeriveKey(req, opts.Key)
	req.CacheKey = key

	if p.store.Get(key) != nil {
		p.fired[elt] = true
		return false
	}
	if !p.limiter.Allow() {
		p.logger.Debug("prefetch dropped by rate limit", "url", opts.URL)
		return false
	}
	p.fired[elt] = true
	p.reporter.Prefetch(key, opts.URL)

	gen := p.generation
	ttl := opts.TTL
	p.sender.Send(context.Background(), req, func(resp *lifecycle.Response, err error) {
		p.sched.Post(func() {
			if gen != p.generation {
				return
			}
			if err != nil {
				p.logger.Debug("prefetch failed", "url", opts.URL, "error", err)
				return
			}
			if !resp.OK() {
				p.logger.Debug("prefetch rejected", "url", opts.URL, "status", resp.Status)
				return
			}
			p.store.Set(key, resp.Body, ttl, map[string]string{"source": "prefetch", "url": opts.URL})
		})
	})
	return true
}

// Reset forgets which elements were prefetched and discards late results.
func (p *Prefetcher) Reset() {
	p.fired = make(map[*vdom.VNode]bool)
	p.generation++
}
