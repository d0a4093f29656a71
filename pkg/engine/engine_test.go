package engine

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/vango-dev/swapgrid/pkg/exchange"
	"github.com/vango-dev/swapgrid/pkg/lifecycle"
	"github.com/vango-dev/swapgrid/pkg/sched"
	"github.com/vango-dev/swapgrid/pkg/toast"
	"github.com/vango-dev/swapgrid/pkg/toggle"
	"github.com/vango-dev/swapgrid/pkg/vdom"
	"github.com/vango-dev/swapgrid/pkg/window"
)

type fakeTransport struct {
	requests []*lifecycle.Request
	dones    []func(*lifecycle.Response, error)
}

func (f *fakeTransport) Send(_ context.Context, req *lifecycle.Request, done func(*lifecycle.Response, error)) {
	f.requests = append(f.requests, req)
	f.dones = append(f.dones, done)
}

type fakePoster struct {
	payloads []toggle.Payload
	dones    []func(*lifecycle.Response, error)
}

func (f *fakePoster) Post(_ context.Context, p toggle.Payload, done func(*lifecycle.Response, error)) {
	f.payloads = append(f.payloads, p)
	f.dones = append(f.dones, done)
}

func cards(n int) []any {
	out := make([]any, n)
	for i := range out {
		out[i] = vdom.Li(vdom.Class("card"), vdom.Textf("item %d", i))
	}
	return out
}

func cardsHTML(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, `<li class="card">more %d</li>`, i)
	}
	return b.String()
}

type page struct {
	clock     *sched.Manual
	transport *fakeTransport
	poster    *fakePoster
	toasts    *toast.Recorder
	e         *Engine

	root, results, more, search, pick, summary *vdom.VNode
}

func newPage(t *testing.T) *page {
	t.Helper()
	p := &page{
		clock:     sched.NewManual(time.Unix(0, 0)),
		transport: &fakeTransport{},
		poster:    &fakePoster{},
		toasts:    &toast.Recorder{},
	}
	p.results = vdom.Ul(append([]any{vdom.ID("results"), vdom.A("data-virtual", "local")}, cards(100)...)...)
	p.more = vdom.Button(
		vdom.A(exchange.AttrGet, "/items?page=2"),
		vdom.A(exchange.AttrTarget, "#results"),
		vdom.A(exchange.AttrSwap, exchange.SwapBeforeEnd),
		vdom.A("data-cache", ""),
	)
	p.search = vdom.Input(
		vdom.A("name", "q"), vdom.A("value", ""),
		vdom.A(exchange.AttrGet, "/search"),
		vdom.A(exchange.AttrTarget, "#hits"),
		vdom.A("data-debounce", "300"),
	)
	p.pick = vdom.Button(vdom.A(toggle.AttrToggle, toggle.ListInclude))
	p.summary = vdom.Div(vdom.ID("list-summary"))
	p.root = vdom.Div(
		vdom.Div(vdom.ID("panel"), p.results),
		p.more,
		p.search,
		vdom.Div(vdom.ID("hits")),
		vdom.Ul(vdom.Li(vdom.A(vdom.IdentityAttr, "900"), vdom.A(toggle.AttrExcluded, "true"), p.pick)),
		p.summary,
	)

	p.e = New(Options{
		Scheduler: p.clock,
		Transport: p.transport,
		Poster:    p.poster,
		Layout:    &window.StaticLayout{ItemHeight: 200, SurfaceBox: window.Box{ClientHeight: 800}},
		Toasts:    p.toasts,
	})
	p.e.Mount(p.root)
	p.e.Scroll(window.Viewport{Width: 1280, Height: 800})
	return p
}

func (p *page) reply(body string) {
	p.transport.dones[len(p.transport.dones)-1](&lifecycle.Response{Status: 200, Body: body}, nil)
	p.clock.Drain()
}

func TestMountWindowsSurface(t *testing.T) {
	p := newPage(t)

	r := p.e.Renderer(p.results)
	if r == nil || !r.Active() {
		t.Fatal("surface not windowed")
	}
	if r.Len() != 100 {
		t.Errorf("Len() = %d, want 100", r.Len())
	}
	live := len(r.Live().Children)
	if live == 0 || live >= 100 || live != r.Range().Count() {
		t.Errorf("live = %d, range = %+v", live, r.Range())
	}
	if got := p.e.Toggler().State(900); !got.Excluded {
		t.Errorf("seeded state = %+v, want excluded", got)
	}
}

func TestLoadMoreThenCacheHit(t *testing.T) {
	p := newPage(t)
	r := p.e.Renderer(p.results)

	if !p.e.HandleEvent(p.more, "click") {
		t.Fatal("click not handled")
	}
	p.reply(cardsHTML(20))

	if r.Len() != 120 {
		t.Fatalf("Len() = %d after append, want 120", r.Len())
	}
	ids := r.IDs()
	for i := 1; i < len(ids); i++ {
		if ids[i] <= ids[i-1] {
			t.Fatalf("identities not increasing at %d: %v", i, ids[i-1:i+1])
		}
	}

	p.e.HandleEvent(p.more, "click")
	if len(p.transport.requests) != 1 {
		t.Errorf("requests = %d, want cached replay", len(p.transport.requests))
	}
	if r.Len() != 140 {
		t.Errorf("Len() = %d after replay, want 140", r.Len())
	}
	if strings.Count(vdom.RenderHTML(p.results), `data-virtual-spacer`) != 2 {
		t.Error("spacers lost during reconciliation")
	}
}

func TestDebouncedSearch(t *testing.T) {
	p := newPage(t)

	for _, v := range []string{"c", "ca", "cat"} {
		p.search.Props["value"] = v
		if !p.e.HandleEvent(p.search, "input") {
			t.Fatal("input not consumed by debounce")
		}
		p.clock.Advance(100 * time.Millisecond)
	}
	if len(p.transport.requests) != 0 {
		t.Fatal("request issued before the delay elapsed")
	}

	p.clock.Advance(300 * time.Millisecond)
	if len(p.transport.requests) != 1 {
		t.Fatalf("requests = %d, want 1", len(p.transport.requests))
	}
	req := p.transport.requests[0]
	if req.Trigger != exchange.TriggerDebounced || req.Params.Get("q") != "cat" || req.URL != "/search" {
		t.Errorf("request = %+v", req)
	}
}

func TestToggleControl(t *testing.T) {
	p := newPage(t)

	if !p.e.HandleEvent(p.pick, "click") {
		t.Fatal("toggle click not handled")
	}
	if !p.e.HandleEvent(p.pick, "click") {
		t.Error("conflicting click should still be consumed")
	}
	if len(p.poster.payloads) != 1 {
		t.Fatalf("payloads = %+v, want 1", p.poster.payloads)
	}
	want := toggle.Payload{ItemIdentity: 900, TargetListName: toggle.ListInclude, DesiredEnabledState: true}
	if p.poster.payloads[0] != want {
		t.Errorf("payload = %+v, want %+v", p.poster.payloads[0], want)
	}

	p.poster.dones[0](&lifecycle.Response{Status: 200, Body: `<b>1 included</b>`}, nil)
	p.clock.Drain()

	if got := p.e.Toggler().State(900); !got.Included || got.Excluded || got.Pending {
		t.Errorf("state = %+v", got)
	}
	if vdom.RenderHTML(p.summary) != `<div id="list-summary"><b>1 included</b></div>` {
		t.Errorf("summary = %s", vdom.RenderHTML(p.summary))
	}
}

func TestSwapReplacingSurfaceRebinds(t *testing.T) {
	p := newPage(t)
	swap := vdom.Button(
		vdom.A(exchange.AttrGet, "/panel"),
		vdom.A(exchange.AttrTarget, "#panel"),
		vdom.A(exchange.AttrSwap, exchange.SwapOuter),
	)
	p.e.Doc().AppendChild(p.root, swap)

	p.e.HandleEvent(swap, "click")
	p.reply(`<div id="panel"><ul id="fresh" data-virtual="local">` + cardsHTML(70) + `</ul></div>`)

	rs := p.e.Renderers()
	if len(rs) != 1 {
		t.Fatalf("renderers = %d, want 1", len(rs))
	}
	if rs[0].Surface().Attr("id") != "fresh" || !rs[0].Active() || rs[0].Len() != 70 {
		t.Errorf("bound %q active=%v len=%d", rs[0].Surface().Attr("id"), rs[0].Active(), rs[0].Len())
	}
}

func serverCards(from, to int) string {
	var b strings.Builder
	for id := from; id <= to; id++ {
		fmt.Fprintf(&b, `<li class="card" data-item-id="%d"><span>Item %d</span><button data-toggle="include">Include</button></li>`, id, id)
	}
	return b.String()
}

func TestRefreshKeepsServerIdentities(t *testing.T) {
	p := newPage(t)
	refresh := vdom.Button(
		vdom.A(exchange.AttrGet, "/items?page=1"),
		vdom.A(exchange.AttrTarget, "#results"),
	)
	p.e.Doc().AppendChild(p.root, refresh)

	p.e.HandleEvent(refresh, "click")
	p.reply(serverCards(1, 100))

	r := p.e.Renderer(p.results)
	for i, id := range r.IDs() {
		if id != i+1 {
			t.Fatalf("item %d has identity %d after refresh, want %d", i, id, i+1)
		}
	}

	first := r.Live().ElementChildren()[0]
	button := vdom.FindAll(first, vdom.WithAttr(toggle.AttrToggle))[0]
	if !p.e.HandleEvent(button, "click") {
		t.Fatal("toggle click not handled")
	}
	if len(p.poster.payloads) != 1 || p.poster.payloads[0].ItemIdentity != 1 {
		t.Errorf("payloads = %+v, want itemIdentity 1", p.poster.payloads)
	}
}

func TestIdentitiesOutsideSurfacesAreNotReused(t *testing.T) {
	p := newPage(t)
	p.e.HandleEvent(p.more, "click")
	p.reply(serverCards(101, 120))

	for _, id := range p.e.Renderer(p.results).IDs() {
		if id == 900 {
			t.Fatal("surface item was given the identity of an item outside it")
		}
	}

	p.e.HandleEvent(p.more, "click")
	seen := map[int]bool{}
	for _, id := range p.e.Renderer(p.results).IDs() {
		if seen[id] {
			t.Fatalf("identity %d repeated after a cached replay", id)
		}
		seen[id] = true
	}
}

func TestReset(t *testing.T) {
	p := newPage(t)
	p.e.HandleEvent(p.more, "click")
	p.reply(cardsHTML(5))
	p.e.HandleEvent(p.search, "input")

	p.e.Reset()

	if p.e.Mounted() || p.e.HandleEvent(p.more, "click") {
		t.Error("engine still handles events after Reset")
	}
	p.clock.Advance(time.Second)
	if len(p.transport.requests) != 1 {
		t.Errorf("debounce timer survived Reset: %d requests", len(p.transport.requests))
	}
	if n := len(p.results.ElementChildren()); n != 105 {
		t.Errorf("surface has %d children after teardown, want 105", n)
	}
	for _, c := range p.results.ElementChildren() {
		if c.Tag != "li" {
			t.Fatalf("structural element %s left behind", vdom.RenderHTML(c))
		}
	}

	p.e.Mount(p.root)
	p.e.HandleEvent(p.more, "click")
	if len(p.transport.requests) != 2 {
		t.Error("cache survived Reset")
	}
}
