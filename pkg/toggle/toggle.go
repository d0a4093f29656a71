package toggle

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/vango-dev/swapgrid/internal/config"
	"github.com/vango-dev/swapgrid/internal/errors"
	"github.com/vango-dev/swapgrid/pkg/exchange"
	"github.com/vango-dev/swapgrid/pkg/lifecycle"
	"github.com/vango-dev/swapgrid/pkg/sched"
	"github.com/vango-dev/swapgrid/pkg/telemetry"
	"github.com/vango-dev/swapgrid/pkg/toast"
	"github.com/vango-dev/swapgrid/pkg/vdom"
)

// Config wires a Toggler.
type Config struct {
	Doc       *vdom.Document
	Scheduler sched.Scheduler
	Poster    Poster

	// SummaryTarget selects the region success fragments are swapped into.
	// Default: "#list-summary"
	SummaryTarget string

	// Path is reported with errors. Default: "/api/toggle"
	Path string

	Toasts   toast.Emitter
	Reporter *telemetry.Reporter
	Logger   *slog.Logger

	// OnChange observes every state change, optimistic or final.
	OnChange func(id int, s State)
}

// Toggler owns the toggle state of every item on a page.
// It must be used from the scheduler goroutine.
type Toggler struct {
	doc      *vdom.Document
	sched    sched.Scheduler
	poster   Poster
	summary  string
	path     string
	toasts   toast.Emitter
	reporter *telemetry.Reporter
	logger   *slog.Logger
	onChange func(int, State)

	states     map[int]State
	ctx        context.Context
	cancel     context.CancelFunc
	generation uint64
}

// New creates a Toggler.
func New(cfg Config) *Toggler {
	if cfg.SummaryTarget == "" {
		cfg.SummaryTarget = config.DefaultSummaryTarget
	}
	if cfg.Path == "" {
		cfg.Path = config.DefaultToggleURL
	}
	if cfg.Toasts == nil {
		cfg.Toasts = toast.Discard
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	t := &Toggler{
		doc:      cfg.Doc,
		sched:    cfg.Scheduler,
		poster:   cfg.Poster,
		summary:  cfg.SummaryTarget,
		path:     cfg.Path,
		toasts:   cfg.Toasts,
		reporter: cfg.Reporter,
		logger:   cfg.Logger.With("component", "toggle"),
		onChange: cfg.OnChange,
		states:   make(map[int]State),
	}
	t.ctx, t.cancel = context.WithCancel(context.Background())
	return t
}

// State returns the state of item id.
func (t *Toggler) State(id int) State {
	return t.states[id]
}

// Seed records the server-rendered state of item id without a round trip.
func (t *Toggler) Seed(id int, s State) {
	s.Pending = false
	t.set(id, s)
}

// Toggle flips item id's mark for list. It returns ErrConflict while a
// request for the item is pending, in which case nothing changes.
func (t *Toggler) Toggle(id int, list string) error {
	if !ValidList(list) {
		return errors.New(errors.CodeUnknownList).WithDetail(fmt.Sprintf("unknown list %q", list))
	}
	snapshot := t.states[id]
	if snapshot.Pending {
		t.reporter.ToggleConflict()
		return errors.New(errors.CodeToggleConflict).WithPath(t.path)
	}

	desired := !snapshot.Marked(list)
	next := snapshot.with(list, desired)
	next.Pending = true
	t.set(id, next)

	gen := t.generation
	payload := Payload{ItemIdentity: id, TargetListName: list, DesiredEnabledState: desired}
	t.poster.Post(t.ctx, payload, func(resp *lifecycle.Response, err error) {
		t.sched.Post(func() {
			if gen != t.generation {
				return
			}
			t.finish(payload, snapshot, resp, err)
		})
	})
	return nil
}

// Pending returns the number of items awaiting a response.
func (t *Toggler) Pending() int {
	n := 0
	for _, s := range t.states {
		if s.Pending {
			n++
		}
	}
	return n
}

// Reset abandons in-flight requests and forgets every item's state.
func (t *Toggler) Reset() {
	t.cancel()
	t.generation++
	t.states = make(map[int]State)
	t.ctx, t.cancel = context.WithCancel(context.Background())
}

func (t *Toggler) finish(p Payload, snapshot State, resp *lifecycle.Response, err error) {
	id, list := p.ItemIdentity, p.TargetListName
	if err != nil || !resp.OK() {
		t.set(id, snapshot)
		var e *errors.SwapError
		status := 0
		if err != nil {
			e = errors.New(errors.CodeTransport).WithPath(t.path).Wrap(err)
		} else {
			status = resp.Status
			e = rejection(t.path, resp)
		}
		t.logger.Warn("toggle failed", "item", id, "list", list, "status", status, "error", e)
		t.reporter.ToggleFailure(id, list, status)
		toast.FromError(t.toasts, e)
		return
	}

	s := t.states[id]
	s.Pending = false
	t.set(id, s)
	t.swapSummary(resp.Body)
	t.reporter.ToggleSuccess(id, list)
	toast.Success(t.toasts, confirmation(list, p.DesiredEnabledState))
}

func (t *Toggler) swapSummary(markup string) {
	if t.doc == nil {
		return
	}
	target := vdom.FindByID(t.doc.Root, strings.TrimPrefix(t.summary, "#"))
	if target == nil {
		t.logger.Debug("summary region missing", "target", t.summary)
		return
	}
	if _, _, err := exchange.Swap(t.doc, target, exchange.SwapInner, markup); err != nil {
		t.logger.Warn("summary swap failed", "error", err)
	}
}

// set stores s and reflects it onto the item's element.
func (t *Toggler) set(id int, s State) {
	t.states[id] = s
	if t.doc != nil {
		want := strconv.Itoa(id)
		for _, n := range vdom.FindAll(t.doc.Root, func(v *vdom.VNode) bool {
			return v.Attr(vdom.IdentityAttr) == want
		}) {
			t.doc.SetAttr(n, AttrIncluded, strconv.FormatBool(s.Included))
			t.doc.SetAttr(n, AttrExcluded, strconv.FormatBool(s.Excluded))
			t.doc.SetAttr(n, AttrBusy, strconv.FormatBool(s.Pending))
		}
	}
	if t.onChange != nil {
		t.onChange(id, s)
	}
}

func rejection(path string, resp *lifecycle.Response) *errors.SwapError {
	detail := lifecycle.ParseErrorDetail(resp.Body)
	if detail == nil || detail.Detail == "" {
		return errors.New(errors.CodeUnreadableError).WithStatus(resp.Status).WithPath(path)
	}
	return errors.New(errors.CodeServerRejected).
		WithStatus(resp.Status).
		WithDetail(detail.Detail).
		WithPath(path)
}

func confirmation(list string, on bool) string {
	if on {
		return fmt.Sprintf("Added to %s list", list)
	}
	return fmt.Sprintf("Removed from %s list", list)
}
