package reqcache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/vango-dev/swapgrid/pkg/exchange"
	"github.com/vango-dev/swapgrid/pkg/lifecycle"
	"github.com/vango-dev/swapgrid/pkg/sched"
	"github.com/vango-dev/swapgrid/pkg/vdom"
)

type fakeTransport struct {
	requests []*lifecycle.Request
	dones    []func(*lifecycle.Response, error)
}

func (f *fakeTransport) Send(_ context.Context, req *lifecycle.Request, done func(*lifecycle.Response, error)) {
	f.requests = append(f.requests, req)
	f.dones = append(f.dones, done)
}

type harness struct {
	clock     *sched.Manual
	bus       *lifecycle.Bus
	doc       *vdom.Document
	transport *fakeTransport
	d         *exchange.Dispatcher
	cache     *Cache
	button    *vdom.VNode
	list      *vdom.VNode
	kinds     []string
}

func newHarness(buttonAttrs ...any) *harness {
	h := &harness{
		clock:     sched.NewManual(time.Unix(0, 0)),
		bus:       lifecycle.NewBus(),
		transport: &fakeTransport{},
	}
	args := append([]any{
		vdom.A(exchange.AttrGet, "/items?page=2"),
		vdom.A(exchange.AttrTarget, "#list"),
	}, buttonAttrs...)
	h.button = vdom.Button(args...)
	h.list = vdom.Ul(vdom.ID("list"))
	h.doc = vdom.NewDocument(vdom.Div(h.button, h.list))

	h.d = exchange.New(exchange.Config{
		Doc:       h.doc,
		Bus:       h.bus,
		Scheduler: h.clock,
		Transport: h.transport,
	})
	// Recorders subscribe first so a synchronous replay is seen in order.
	for _, k := range []lifecycle.Kind{
		lifecycle.KindConfigRequest, lifecycle.KindBeforeExchange,
		lifecycle.KindAfterRequest, lifecycle.KindAfterSwap,
	} {
		h.bus.On(k, func(ev lifecycle.Event) { h.kinds = append(h.kinds, ev.Kind().String()) })
	}
	h.cache = New(Config{
		Store:      NewStore(10, h.clock.Now),
		Bus:        h.bus,
		Replayer:   h.d,
		DefaultTTL: time.Minute,
	})
	return h
}

func (h *harness) click() []string {
	h.kinds = nil
	h.d.HandleEvent(h.button, "click", nil)
	return h.kinds
}

func (h *harness) reply(status int, body string) {
	h.transport.dones[len(h.transport.dones)-1](&lifecycle.Response{Status: status, Body: body}, nil)
	h.clock.Drain()
}

func TestCacheMissStoresThenHitReplays(t *testing.T) {
	h := newHarness(vdom.A("data-cache", ""))

	h.click()
	h.reply(200, `<li>one</li><li>two</li>`)
	networkEvents := strings.Join(h.kinds, ",")
	if networkEvents != "config-request,before-exchange,after-request,after-swap" {
		t.Fatalf("network events = %s", networkEvents)
	}
	entry := h.cache.Get("GET /items?page=2")
	if entry == nil {
		t.Fatal("successful response not stored")
	}
	stored := entry.CreatedAt

	h.doc.ReplaceChildren(h.list, nil)
	h.clock.Advance(time.Second)
	hitEvents := strings.Join(h.click(), ",")

	if len(h.transport.requests) != 1 {
		t.Errorf("cache hit reached the network: %d requests", len(h.transport.requests))
	}
	if hitEvents != networkEvents {
		t.Errorf("hit events = %s, want %s", hitEvents, networkEvents)
	}
	if len(h.list.Children) != 2 {
		t.Errorf("replay swapped %d items, want 2", len(h.list.Children))
	}
	if got := h.cache.Get("GET /items?page=2"); got == nil || !got.CreatedAt.Equal(stored) {
		t.Error("replay refreshed its own entry")
	}
}

func TestCacheExpiredEntryGoesToNetwork(t *testing.T) {
	h := newHarness(vdom.A("data-cache", ""), vdom.A("data-cache-ttl", "1000"))

	h.click()
	h.reply(200, `<li>one</li>`)
	h.clock.Advance(1001 * time.Millisecond)
	h.click()

	if len(h.transport.requests) != 2 {
		t.Errorf("requests = %d, want 2 after expiry", len(h.transport.requests))
	}
}

func TestCacheIgnoresElementsNotOptedIn(t *testing.T) {
	h := newHarness()

	h.click()
	h.reply(200, `<li>one</li>`)
	h.click()

	if len(h.transport.requests) != 2 {
		t.Errorf("requests = %d, want 2", len(h.transport.requests))
	}
	if h.cache.Store().Len() != 0 {
		t.Error("response stored for an element without data-cache")
	}
}

func TestCacheDoesNotStoreErrors(t *testing.T) {
	h := newHarness(vdom.A("data-cache", ""))

	h.click()
	h.reply(500, `{"error":"boom"}`)

	if h.cache.Store().Len() != 0 {
		t.Error("error response stored")
	}
}

func TestCacheKeyOverride(t *testing.T) {
	h := newHarness(vdom.A("data-cache", ""), vdom.A("data-cache-key", "page-two"))

	h.click()
	h.reply(200, `<li>one</li>`)

	if h.cache.Get("page-two") == nil {
		t.Error("entry not stored under the override key")
	}
}

func TestCacheApply(t *testing.T) {
	h := newHarness(vdom.A("data-cache", ""))
	entry := h.cache.Set("manual", `<li>cached</li>`, time.Minute)

	h.kinds = nil
	if err := h.cache.Apply(h.button, entry); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if got := strings.Join(h.kinds, ","); got != "config-request,before-exchange,after-request,after-swap" {
		t.Errorf("Apply events = %v", got)
	}
	if len(h.list.Children) != 1 {
		t.Error("Apply did not swap the payload")
	}
	if len(h.transport.requests) != 0 {
		t.Error("Apply reached the network")
	}
	if h.cache.Store().Len() != 1 || h.cache.Get("manual") == nil {
		t.Error("Apply re-keyed or re-stored the entry")
	}

	if err := h.cache.Apply(vdom.Div(), entry); err == nil {
		t.Error("Apply on an element without a request succeeded")
	}
}

func TestCacheApplyCancelled(t *testing.T) {
	h := newHarness(vdom.A("data-cache", ""))
	entry := h.cache.Set("manual", `<li>cached</li>`, time.Minute)
	h.bus.On(lifecycle.KindBeforeExchange, func(ev lifecycle.Event) {
		ev.(*lifecycle.BeforeExchange).Cancel()
	})

	h.kinds = nil
	if err := h.cache.Apply(h.button, entry); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if got := strings.Join(h.kinds, ","); got != "config-request,before-exchange" {
		t.Errorf("Apply events = %v", got)
	}
	if len(h.list.Children) != 0 {
		t.Error("cancelled replay swapped the payload")
	}
}

func TestPrefetchWarmsCache(t *testing.T) {
	h := newHarness(vdom.A("data-cache", ""))
	link := vdom.Anchor(vdom.A("data-prefetch", "/items?page=2"))
	sender := &fakeTransport{}
	p := NewPrefetcher(PrefetchConfig{
		Store:     h.cache.Store(),
		Sender:    sender,
		Scheduler: h.clock,
	})

	if !p.HandleEvent(link, "mouseenter") {
		t.Fatal("mouseenter did not prefetch")
	}
	if p.HandleEvent(link, "focus") {
		t.Error("element prefetched twice")
	}
	if p.HandleEvent(link, "click") {
		t.Error("click treated as intent")
	}

	sender.dones[0](&lifecycle.Response{Status: 200, Body: `<li>warm</li>`}, nil)
	h.clock.Drain()

	h.click()
	if len(h.transport.requests) != 0 {
		t.Error("request for a prefetched URL reached the network")
	}
	if len(h.list.Children) != 1 || vdom.RenderHTML(h.list.Children[0]) != "<li>warm</li>" {
		t.Error("prefetched payload not replayed")
	}
}

func TestPrefetchRateLimited(t *testing.T) {
	clock := sched.NewManual(time.Unix(0, 0))
	sender := &fakeTransport{}
	p := NewPrefetcher(PrefetchConfig{
		Store:     NewStore(10, clock.Now),
		Sender:    sender,
		Scheduler: clock,
		Limiter:   NewRateLimiter(1, 1, clock.Now),
	})

	a := vdom.Anchor(vdom.A("data-prefetch", "/a"))
	b := vdom.Anchor(vdom.A("data-prefetch", "/b"))
	if !p.HandleEvent(a, "mouseenter") {
		t.Fatal("first prefetch refused")
	}
	if p.HandleEvent(b, "mouseenter") {
		t.Error("second prefetch passed the rate limit")
	}
	clock.Advance(time.Second)
	if !p.HandleEvent(b, "mouseenter") {
		t.Error("dropped element could not prefetch after refill")
	}
}

func TestPrefetchResetDiscardsLateResults(t *testing.T) {
	clock := sched.NewManual(time.Unix(0, 0))
	store := NewStore(10, clock.Now)
	sender := &fakeTransport{}
	p := NewPrefetcher(PrefetchConfig{Store: store, Sender: sender, Scheduler: clock})

	link := vdom.Anchor(vdom.A("data-prefetch", "/a"))
	p.HandleEvent(link, "focus")
	p.Reset()
	sender.dones[0](&lifecycle.Response{Status: 200, Body: "late"}, nil)
	clock.Drain()

	if store.Len() != 0 {
		t.Error("result arriving after Reset was stored")
	}
	if !p.HandleEvent(link, "focus") {
		t.Error("Reset did not forget fired elements")
	}
}
