// Package debounce collapses bursts of source events on an element into one
// delayed synthetic trigger.
//
// An element opts in with data-debounce. Each qualifying event restarts the
// element's timer; when it expires the coordinator emits once, carrying the
// element state captured at the latest scheduling. Elements sharing a
// data-debounce-group have at most one pending timer between them.
package debounce

import (
	"log/slog"
	"net/url"
	"slices"
	"time"

	"github.com/vango-dev/swapgrid/internal/config"
	"github.com/vango-dev/swapgrid/pkg/exchange"
	"github.com/vango-dev/swapgrid/pkg/sched"
	"github.com/vango-dev/swapgrid/pkg/vdom"
)

// EmitFunc receives a fired trigger and the element state captured when it
// was scheduled.
type EmitFunc func(elt *vdom.VNode, snapshot url.Values)

// Config wires a Coordinator.
type Config struct {
	Scheduler sched.Scheduler
	Emit      EmitFunc

	// DefaultDelay applies to a bare data-debounce. Default: 300ms
	DefaultDelay time.Duration

	Logger *slog.Logger
}

type pending struct {
	timer    sched.Timer
	snapshot url.Values
	group    string
}

// Coordinator owns every pending debounce timer on a page.
// It must be used from the scheduler goroutine.
type Coordinator struct {
	sched        sched.Scheduler
	emit         EmitFunc
	defaultDelay time.Duration
	logger       *slog.Logger

	pending map[*vdom.VNode]*pending
	groups  map[string]*vdom.VNode
}

// New creates a Coordinator.
func New(cfg Config) *Coordinator {
	if cfg.DefaultDelay <= 0 {
		cfg.DefaultDelay = config.DefaultDebounceMs * time.Millisecond
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Coordinator{
		sched:        cfg.Scheduler,
		emit:         cfg.Emit,
		defaultDelay: cfg.DefaultDelay,
		logger:       cfg.Logger.With("component", "debounce"),
		pending:      make(map[*vdom.VNode]*pending),
		groups:       make(map[string]*vdom.VNode),
	}
}

// HandleEvent routes event name on elt. It reports whether the coordinator
// consumed the event; a consumed event must not also trigger a request.
func (c *Coordinator) HandleEvent(elt *vdom.VNode, name string) bool {
	opts, ok := config.ParseDebounce(elt, c.defaultDelay)
	if !ok {
		return false
	}
	if name == "blur" && opts.FlushOnBlur {
		return c.Flush(elt)
	}
	if !slices.Contains(opts.On, name) {
		return false
	}
	c.Schedule(elt, opts)
	return true
}

// Schedule (re)starts elt's timer. Any timer already pending for elt, or
// for another element in the same group, is cancelled first.
func (c *Coordinator) Schedule(elt *vdom.VNode, opts config.Debounce) {
	c.Cancel(elt)
	if opts.Group != "" {
		if other, ok := c.groups[opts.Group]; ok {
			c.logger.Debug("superseded in group", "group", opts.Group)
			c.Cancel(other)
		}
	}

	p := &pending{
		snapshot: exchange.Values(elt),
		group:    opts.Group,
	}
	p.timer = c.sched.AfterFunc(opts.Delay, func() { c.fire(elt, p) })
	c.pending[elt] = p
	if p.group != "" {
		c.groups[p.group] = elt
	}
}

// Flush emits elt's pending trigger immediately. It reports whether one was
// pending.
func (c *Coordinator) Flush(elt *vdom.VNode) bool {
	p, ok := c.pending[elt]
	if !ok {
		return false
	}
	p.timer.Stop()
	c.fire(elt, p)
	return true
}

// Cancel drops elt's pending timer, if any.
func (c *Coordinator) Cancel(elt *vdom.VNode) {
	p, ok := c.pending[elt]
	if !ok {
		return
	}
	p.timer.Stop()
	c.remove(elt, p)
}

// Pending reports whether elt has a timer pending.
func (c *Coordinator) Pending(elt *vdom.VNode) bool {
	_, ok := c.pending[elt]
	return ok
}

// Len returns the number of pending timers.
func (c *Coordinator) Len() int {
	return len(c.pending)
}

// Reset cancels every pending timer.
func (c *Coordinator) Reset() {
	for _, p := range c.pending {
		p.timer.Stop()
	}
	c.pending = make(map[*vdom.VNode]*pending)
	c.groups = make(map[string]*vdom.VNode)
}

func (c *Coordinator) fire(elt *vdom.VNode, p *pending) {
	// A stopped timer may already be queued on the scheduler.
	if c.pending[elt] != p {
		return
	}
	c.remove(elt, p)
	c.emit(elt, p.snapshot)
}

func (c *Coordinator) remove(elt *vdom.VNode, p *pending) {
	delete(c.pending, elt)
	if p.group != "" && c.groups[p.group] == elt {
		delete(c.groups, p.group)
	}
}
