package reqcache

import (
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/vango-dev/swapgrid/internal/config"
	"github.com/vango-dev/swapgrid/internal/errors"
	"github.com/vango-dev/swapgrid/pkg/lifecycle"
	"github.com/vango-dev/swapgrid/pkg/telemetry"
	"github.com/vango-dev/swapgrid/pkg/vdom"
)

// HeaderCache marks a replayed response.
const HeaderCache = "X-Swapgrid-Cache"

// Replayer is the exchange layer's completion path.
type Replayer interface {
	Build(elt *vdom.VNode, trigger string, params url.Values) (*lifecycle.Request, bool)
	Complete(req *lifecycle.Request, resp *lifecycle.Response)
}

// Config wires a Cache to its collaborators.
type Config struct {
	Store      *Store
	Bus        *lifecycle.Bus
	Replayer   Replayer
	DefaultTTL time.Duration
	Reporter   *telemetry.Reporter
	Logger     *slog.Logger
}

// Cache intercepts exchanges on the bus: it keys opted-in requests, serves
// live entries in place of the network and stores successful responses.
type Cache struct {
	store      *Store
	bus        *lifecycle.Bus
	replayer   Replayer
	defaultTTL time.Duration
	reporter   *telemetry.Reporter
	logger     *slog.Logger

	replaying map[*lifecycle.Request]bool
	offs      []func()
}

// New creates a Cache and subscribes it to cfg.Bus.
func New(cfg Config) *Cache {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = config.DefaultCacheTTLMs * time.Millisecond
	}
	c := &Cache{
		store:      cfg.Store,
		bus:        cfg.Bus,
		replayer:   cfg.Replayer,
		defaultTTL: cfg.DefaultTTL,
		reporter:   cfg.Reporter,
		logger:     cfg.Logger.With("component", "reqcache"),
		replaying:  make(map[*lifecycle.Request]bool),
	}
	c.offs = []func(){
		c.bus.On(lifecycle.KindConfigRequest, c.onConfigRequest),
		c.bus.On(lifecycle.KindBeforeExchange, c.onBeforeExchange),
		c.bus.On(lifecycle.KindAfterRequest, c.onAfterRequest),
	}
	return c
}

// Store returns the underlying store.
func (c *Cache) Store() *Store { return c.store }

// Set stores payload under key.
func (c *Cache) Set(key, payload string, ttl time.Duration) *Entry {
	return c.store.Set(key, payload, ttl, nil)
}

// Get returns the live entry for key, or nil.
func (c *Cache) Get(key string) *Entry {
	return c.store.Get(key)
}

// Apply replays entry into elt's target exactly as a live response would be
// swapped. The same lifecycle events a round trip produces are emitted, and a
// BeforeExchange handler may still cancel the replay.
func (c *Cache) Apply(elt *vdom.VNode, entry *Entry) error {
	req, ok := c.replayer.Build(elt, "cache", nil)
	if !ok {
		return errors.New(errors.CodeCacheDisabled).WithDetail("element issues no request")
	}
	req.CacheKey = entry.Key

	c.replaying[req] = true
	c.bus.Emit(&lifecycle.ConfigRequest{Request: req})
	before := &lifecycle.BeforeExchange{Request: req}
	c.bus.Emit(before)
	if before.Cancelled() {
		delete(c.replaying, req)
		c.logger.Debug("replay cancelled", "key", entry.Key)
		return nil
	}
	c.replay(req, entry)
	return nil
}

// Reset drops every entry.
func (c *Cache) Reset() {
	c.store.Clear()
	c.replaying = make(map[*lifecycle.Request]bool)
}

// Close unsubscribes the cache from the bus.
func (c *Cache) Close() {
	for _, off := range c.offs {
		off()
	}
	c.offs = nil
}

func (c *Cache) onConfigRequest(ev lifecycle.Event) {
	req := ev.(*lifecycle.ConfigRequest).Request
	if c.replaying[req] {
		return
	}
	opts, ok := config.ParseCache(req.Elt, c.defaultTTL)
	if !ok {
		return
	}
	req.CacheKey = DeriveKey(req, opts.Key)
}

func (c *Cache) onBeforeExchange(ev lifecycle.Event) {
	before := ev.(*lifecycle.BeforeExchange)
	req := before.Request
	if req.CacheKey == "" || before.Cancelled() || c.replaying[req] {
		return
	}
	entry := c.store.Get(req.CacheKey)
	if entry == nil {
		c.reporter.CacheMiss(req.CacheKey)
		return
	}
	before.Cancel()
	c.reporter.CacheHit(req.CacheKey)
	c.logger.Debug("cache hit", "key", req.CacheKey)
	c.replay(req, entry)
}

func (c *Cache) onAfterRequest(ev lifecycle.Event) {
	after := ev.(*lifecycle.AfterRequest)
	req := after.Request
	if req.CacheKey == "" || c.replaying[req] || !after.Response.OK() {
		return
	}
	opts, ok := config.ParseCache(req.Elt, c.defaultTTL)
	if !ok {
		return
	}
	c.store.Set(req.CacheKey, after.Response.Body, opts.TTL, map[string]string{
		"verb": req.Verb,
		"url":  req.URL,
	})
	c.reporter.CacheStore(req.CacheKey, opts.TTL)
}

func (c *Cache) replay(req *lifecycle.Request, entry *Entry) {
	c.replaying[req] = true
	defer delete(c.replaying, req)

	header := http.Header{}
	header.Set(HeaderCache, "hit")
	c.replayer.Complete(req, &lifecycle.Response{
		Status: entry.Status,
		Body:   entry.Payload,
		Header: header,
	})
}
