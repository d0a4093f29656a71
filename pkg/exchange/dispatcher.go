package exchange

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/vango-dev/swapgrid/internal/errors"
	"github.com/vango-dev/swapgrid/pkg/lifecycle"
	"github.com/vango-dev/swapgrid/pkg/sched"
	"github.com/vango-dev/swapgrid/pkg/telemetry"
	"github.com/vango-dev/swapgrid/pkg/toast"
	"github.com/vango-dev/swapgrid/pkg/vdom"
)

// Config wires a Dispatcher to its collaborators.
type Config struct {
	Doc       *vdom.Document
	Bus       *lifecycle.Bus
	Scheduler sched.Scheduler
	Transport Transport

	// Toasts surfaces failed exchanges. Default: toast.Discard
	Toasts toast.Emitter

	// Reporter counts exchange outcomes. May be nil.
	Reporter *telemetry.Reporter

	Logger *slog.Logger
}

// Dispatcher issues partial-update exchanges and completes them.
// All methods must be called on the scheduler goroutine.
type Dispatcher struct {
	doc       *vdom.Document
	bus       *lifecycle.Bus
	sched     sched.Scheduler
	transport Transport
	toasts    toast.Emitter
	reporter  *telemetry.Reporter
	logger    *slog.Logger

	ctx        context.Context
	cancel     context.CancelFunc
	generation uint64
	inflight   int
}

// New creates a Dispatcher.
func New(cfg Config) *Dispatcher {
	if cfg.Toasts == nil {
		cfg.Toasts = toast.Discard
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	d := &Dispatcher{
		doc:       cfg.Doc,
		bus:       cfg.Bus,
		sched:     cfg.Scheduler,
		transport: cfg.Transport,
		toasts:    cfg.Toasts,
		reporter:  cfg.Reporter,
		logger:    cfg.Logger.With("component", "exchange"),
	}
	d.ctx, d.cancel = context.WithCancel(context.Background())
	return d
}

// HandleEvent issues elt's request if event name is one of its triggers.
// It reports whether a request was issued.
func (d *Dispatcher) HandleEvent(elt *vdom.VNode, name string, params url.Values) bool {
	if !Qualifies(elt, name) {
		return false
	}
	return d.Issue(elt, name, params) != nil
}

// Build constructs the request elt would issue, without dispatching it.
func (d *Dispatcher) Build(elt *vdom.VNode, trigger string, params url.Values) (*lifecycle.Request, bool) {
	verb, u, ok := Verb(elt)
	if !ok {
		return nil, false
	}
	if params == nil {
		params = Values(elt)
	}
	target := ResolveTarget(d.doc.Root, elt)
	req := &lifecycle.Request{
		Elt:     elt,
		Target:  target,
		Verb:    verb,
		URL:     u,
		Params:  params,
		Headers: http.Header{},
		Swap:    SwapMode(elt),
		Trigger: trigger,
	}
	req.Headers.Set("HX-Trigger", trigger)
	if id := target.Attr("id"); id != "" {
		req.Headers.Set("HX-Target", id)
	}
	return req, true
}

// Issue runs the full exchange flow for elt: ConfigRequest, BeforeExchange
// and, unless a handler cancels, the network round trip. It returns the
// request, or nil if elt issues none.
func (d *Dispatcher) Issue(elt *vdom.VNode, trigger string, params url.Values) *lifecycle.Request {
	req, ok := d.Build(elt, trigger, params)
	if !ok {
		return nil
	}

	d.bus.Emit(&lifecycle.ConfigRequest{Request: req})

	before := &lifecycle.BeforeExchange{Request: req}
	d.bus.Emit(before)
	if before.Cancelled() {
		d.reporter.Exchange("cancelled")
		return req
	}

	gen := d.generation
	d.inflight++
	d.transport.Send(d.ctx, req, func(resp *lifecycle.Response, err error) {
		d.sched.Post(func() {
			if gen != d.generation {
				return
			}
			d.inflight--
			d.finish(req, resp, err)
		})
	})
	return req
}

// Pending returns the number of exchanges awaiting a response.
func (d *Dispatcher) Pending() int {
	return d.inflight
}

func (d *Dispatcher) finish(req *lifecycle.Request, resp *lifecycle.Response, err error) {
	if err != nil {
		d.logger.Warn("exchange failed", "url", req.URL, "error", err)
		d.bus.Emit(&lifecycle.SendError{Request: req, Err: err})
		d.reporter.Exchange("send_error")
		toast.FromError(d.toasts, errors.New(errors.CodeTransport).WithPath(req.Path()).Wrap(err))
		return
	}
	if !resp.OK() {
		detail := lifecycle.ParseErrorDetail(resp.Body)
		d.logger.Warn("exchange rejected", "url", req.URL, "status", resp.Status)
		d.bus.Emit(&lifecycle.ResponseError{Request: req, Response: resp, Detail: detail})
		d.reporter.Exchange("response_error")
		toast.FromError(d.toasts, RejectionError(req, resp, detail))
		return
	}
	d.Complete(req, resp)
}

// Complete finishes a successful exchange: AfterRequest, the swap, then
// AfterSwap. The request cache replays hits through here so a replay is
// indistinguishable from a round trip.
func (d *Dispatcher) Complete(req *lifecycle.Request, resp *lifecycle.Response) {
	d.bus.Emit(&lifecycle.AfterRequest{Request: req, Response: resp})

	region, inserted, err := Swap(d.doc, req.Target, req.Swap, resp.Body)
	if err != nil {
		d.logger.Warn("swap failed", "url", req.URL, "error", err)
		return
	}
	d.bus.Emit(&lifecycle.AfterSwap{Request: req, Target: region, Inserted: inserted})
	d.reporter.Exchange("swapped")
}

// Reset abandons in-flight exchanges. Their completions are discarded.
func (d *Dispatcher) Reset() {
	d.cancel()
	d.generation++
	d.inflight = 0
	d.ctx, d.cancel = context.WithCancel(context.Background())
}

// RejectionError builds the error surfaced for a non-2xx response.
func RejectionError(req *lifecycle.Request, resp *lifecycle.Response, detail *lifecycle.ErrorDetail) *errors.SwapError {
	if detail == nil || detail.Detail == "" {
		return errors.New(errors.CodeUnreadableError).
			WithStatus(resp.Status).
			WithPath(req.Path())
	}
	path := detail.Path
	if path == "" {
		path = req.Path()
	}
	return errors.New(errors.CodeServerRejected).
		WithStatus(resp.Status).
		WithDetail(detail.Detail).
		WithPath(path)
}
