// Package engine wires the windowed renderer, request cache, debounce
// coordinator and optimistic toggle into one per-page object.
//
// All page state lives on the Engine: the lifecycle bus, the cache store,
// pending debounce timers, toggle states and the set of surfaces already
// bound. Reset tears all of it down.
//
//	e := engine.New(engine.Options{Scheduler: loop, Transport: tr, Poster: p, Layout: l})
//	e.Mount(root)
//	e.Scroll(window.Viewport{Width: 1280, Height: 800})
//	e.HandleEvent(button, "click")
package engine

import (
	"log/slog"
	"net/url"
	"strconv"

	"github.com/vango-dev/swapgrid/internal/config"
	"github.com/vango-dev/swapgrid/pkg/debounce"
	"github.com/vango-dev/swapgrid/pkg/exchange"
	"github.com/vango-dev/swapgrid/pkg/lifecycle"
	"github.com/vango-dev/swapgrid/pkg/reqcache"
	"github.com/vango-dev/swapgrid/pkg/sched"
	"github.com/vango-dev/swapgrid/pkg/telemetry"
	"github.com/vango-dev/swapgrid/pkg/toast"
	"github.com/vango-dev/swapgrid/pkg/toggle"
	"github.com/vango-dev/swapgrid/pkg/vdom"
	"github.com/vango-dev/swapgrid/pkg/window"
)

// Options configures an Engine.
type Options struct {
	// Config carries engine defaults. Default: config.New()
	Config *config.Config

	Scheduler sched.Scheduler

	// Transport performs exchanges and prefetches.
	Transport exchange.Transport

	// Poster delivers toggle requests.
	Poster toggle.Poster

	// Layout answers measurement questions for windowed surfaces.
	Layout window.Layout

	Toasts   toast.Emitter
	Reporter *telemetry.Reporter
	Logger   *slog.Logger
}

// Engine is the per-page engine. It must be used from the scheduler
// goroutine.
type Engine struct {
	cfg       *config.Config
	sched     sched.Scheduler
	transport exchange.Transport
	poster    toggle.Poster
	layout    window.Layout
	toasts    toast.Emitter
	reporter  *telemetry.Reporter
	logger    *slog.Logger

	bus *lifecycle.Bus
	ids *vdom.IdentityGenerator

	doc        *vdom.Document
	dispatcher *exchange.Dispatcher
	cache      *reqcache.Cache
	prefetcher *reqcache.Prefetcher
	debouncer  *debounce.Coordinator
	toggler    *toggle.Toggler

	renderers []*window.Renderer
	bound     map[*vdom.VNode]bool
	offs      []func()
	vp        window.Viewport
}

// New creates an unmounted Engine.
func New(opts Options) *Engine {
	if opts.Config == nil {
		opts.Config = config.New()
	}
	if opts.Toasts == nil {
		opts.Toasts = toast.Discard
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Engine{
		cfg:       opts.Config,
		sched:     opts.Scheduler,
		transport: opts.Transport,
		poster:    opts.Poster,
		layout:    opts.Layout,
		toasts:    opts.Toasts,
		reporter:  opts.Reporter,
		logger:    opts.Logger.With("component", "engine"),
		bus:       lifecycle.NewBus(),
		ids:       vdom.NewIdentityGenerator(),
		bound:     make(map[*vdom.VNode]bool),
	}
}

// Mount attaches the engine to root: every opted-in surface beneath it is
// bound and toggle states are read from the markup. Mounting an already
// mounted engine resets it first.
func (e *Engine) Mount(root *vdom.VNode) {
	if e.doc != nil {
		e.Reset()
	}
	e.doc = vdom.NewDocument(root)

	e.dispatcher = exchange.New(exchange.Config{
		Doc:       e.doc,
		Bus:       e.bus,
		Scheduler: e.sched,
		Transport: e.transport,
		Toasts:    e.toasts,
		Reporter:  e.reporter,
		Logger:    e.logger,
	})
	store := reqcache.NewStore(e.cfg.Cache.MaxEntries, e.sched.Now)
	e.cache = reqcache.New(reqcache.Config{
		Store:      store,
		Bus:        e.bus,
		Replayer:   e.dispatcher,
		DefaultTTL: e.cfg.CacheTTL(),
		Reporter:   e.reporter,
		Logger:     e.logger,
	})
	e.prefetcher = reqcache.NewPrefetcher(reqcache.PrefetchConfig{
		Store:      store,
		Sender:     e.transport,
		Scheduler:  e.sched,
		Limiter:    reqcache.NewRateLimiter(e.cfg.Prefetch.RatePerSecond, e.cfg.Prefetch.Burst, e.sched.Now),
		DefaultTTL: e.cfg.CacheTTL(),
		Reporter:   e.reporter,
		Logger:     e.logger,
	})
	e.debouncer = debounce.New(debounce.Config{
		Scheduler:    e.sched,
		Emit:         e.emitDebounced,
		DefaultDelay: e.cfg.DebounceDelay(),
		Logger:       e.logger,
	})
	e.toggler = toggle.New(toggle.Config{
		Doc:           e.doc,
		Scheduler:     e.sched,
		Poster:        e.poster,
		SummaryTarget: e.cfg.Toggle.SummaryTarget,
		Path:          e.cfg.Toggle.URL,
		Toasts:        e.toasts,
		Reporter:      e.reporter,
		Logger:        e.logger,
	})
	e.offs = append(e.offs, e.bus.On(lifecycle.KindAfterSwap, e.onAfterSwap))

	vdom.ObserveAll(root, e.ids)
	e.bind(root)
	e.seedToggles(root)
}

// Mounted reports whether the engine is attached to a page.
func (e *Engine) Mounted() bool { return e.doc != nil }

// Doc returns the mounted document.
func (e *Engine) Doc() *vdom.Document { return e.doc }

// Bus returns the lifecycle bus.
func (e *Engine) Bus() *lifecycle.Bus { return e.bus }

// Cache returns the request cache.
func (e *Engine) Cache() *reqcache.Cache { return e.cache }

// Toggler returns the toggle state owner.
func (e *Engine) Toggler() *toggle.Toggler { return e.toggler }

// Debouncer returns the debounce coordinator.
func (e *Engine) Debouncer() *debounce.Coordinator { return e.debouncer }

// Dispatcher returns the exchange dispatcher.
func (e *Engine) Dispatcher() *exchange.Dispatcher { return e.dispatcher }

// Renderers returns the bound renderers in binding order.
func (e *Engine) Renderers() []*window.Renderer { return e.renderers }

// Renderer returns the renderer bound to surface, or nil.
func (e *Engine) Renderer(surface *vdom.VNode) *window.Renderer {
	for _, r := range e.renderers {
		if r.Surface() == surface {
			return r
		}
	}
	return nil
}

// HandleEvent routes a user event on elt. Intent events warm the cache;
// debounced elements absorb their source events; toggle controls flip the
// enclosing item; anything else may trigger an exchange. It reports whether
// the event was acted on.
func (e *Engine) HandleEvent(elt *vdom.VNode, name string) bool {
	if e.doc == nil || elt == nil {
		return false
	}
	handled := e.prefetcher.HandleEvent(elt, name)
	if e.debouncer.HandleEvent(elt, name) {
		return true
	}
	if name == "click" && elt.HasAttr(toggle.AttrToggle) {
		return e.toggleFrom(elt) || handled
	}
	return e.dispatcher.HandleEvent(elt, name, nil) || handled
}

// Scroll recomputes every window for vp. It is also the resize path.
func (e *Engine) Scroll(vp window.Viewport) {
	e.vp = vp
	for _, r := range e.renderers {
		r.Update(vp)
	}
}

// Toggle flips item id's mark for list.
func (e *Engine) Toggle(id int, list string) error {
	if e.toggler == nil {
		return nil
	}
	return e.toggler.Toggle(id, list)
}

// Reset tears the engine down: surfaces are restored, the cache cleared,
// timers cancelled, in-flight completions discarded and every subscription
// dropped. The engine may be mounted again afterwards.
func (e *Engine) Reset() {
	if e.doc == nil {
		return
	}
	for _, r := range e.renderers {
		r.Teardown()
	}
	e.debouncer.Reset()
	e.prefetcher.Reset()
	e.dispatcher.Reset()
	e.toggler.Reset()
	e.cache.Reset()
	e.cache.Close()
	for _, off := range e.offs {
		off()
	}
	e.bus.Reset()

	e.renderers = nil
	e.bound = make(map[*vdom.VNode]bool)
	e.offs = nil
	e.doc = nil
	e.logger.Debug("engine reset")
}

func (e *Engine) emitDebounced(elt *vdom.VNode, snapshot url.Values) {
	e.dispatcher.Issue(elt, exchange.TriggerDebounced, snapshot)
}

func (e *Engine) toggleFrom(elt *vdom.VNode) bool {
	for n := elt; n != nil; n = n.Parent {
		id, ok := vdom.ItemID(n)
		if !ok {
			continue
		}
		if err := e.toggler.Toggle(id, elt.Attr(toggle.AttrToggle)); err != nil {
			e.logger.Debug("toggle rejected", "item", id, "error", err)
		}
		return true
	}
	return false
}

// onAfterSwap reconciles every surface the swapped region touches, drops
// surfaces the swap detached and binds any surface it introduced.
func (e *Engine) onAfterSwap(ev lifecycle.Event) {
	region := ev.(*lifecycle.AfterSwap).Target
	if region == nil {
		return
	}
	vdom.ObserveAll(region, e.ids)
	kept := make([]*window.Renderer, 0, len(e.renderers))
	for _, r := range e.renderers {
		s := r.Surface()
		if !vdom.Contains(e.doc.Root, s) {
			delete(e.bound, s)
			continue
		}
		if vdom.Contains(s, region) || vdom.Contains(region, s) {
			r.Reconcile()
			r.Update(e.vp)
		}
		kept = append(kept, r)
	}
	e.renderers = kept
	e.bind(region)
	e.seedToggles(region)
}

func (e *Engine) bind(root *vdom.VNode) {
	for _, s := range vdom.FindAll(root, vdom.WithAttr(config.AttrVirtual)) {
		if e.bound[s] {
			continue
		}
		e.bound[s] = true
		v, ok := config.ParseVirtual(s, e.cfg.Virtual)
		if !ok {
			continue
		}
		r := window.New(window.Options{
			Doc:      e.doc,
			Surface:  s,
			Config:   v,
			Layout:   e.layout,
			IDs:      e.ids,
			Reporter: e.reporter,
			Logger:   e.logger,
		})
		r.Update(e.vp)
		e.renderers = append(e.renderers, r)
	}
}

func (e *Engine) seedToggles(root *vdom.VNode) {
	for _, n := range vdom.FindAll(root, vdom.WithAttr(vdom.IdentityAttr)) {
		if !n.HasAttr(toggle.AttrIncluded) && !n.HasAttr(toggle.AttrExcluded) {
			continue
		}
		id, ok := vdom.ItemID(n)
		if !ok {
			continue
		}
		if e.toggler.State(id).Pending {
			continue
		}
		e.toggler.Seed(id, toggle.State{
			Included: n.Attr(toggle.AttrIncluded) == strconv.FormatBool(true),
			Excluded: n.Attr(toggle.AttrExcluded) == strconv.FormatBool(true),
		})
	}
}
