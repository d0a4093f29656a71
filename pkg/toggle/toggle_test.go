package toggle

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vango-dev/swapgrid/internal/errors"
	"github.com/vango-dev/swapgrid/pkg/lifecycle"
	"github.com/vango-dev/swapgrid/pkg/sched"
	"github.com/vango-dev/swapgrid/pkg/telemetry"
	"github.com/vango-dev/swapgrid/pkg/toast"
	"github.com/vango-dev/swapgrid/pkg/vdom"
)

type fakePoster struct {
	payloads []Payload
	dones    []func(*lifecycle.Response, error)
}

func (f *fakePoster) Post(_ context.Context, p Payload, done func(*lifecycle.Response, error)) {
	f.payloads = append(f.payloads, p)
	f.dones = append(f.dones, done)
}

type harness struct {
	clock   *sched.Manual
	doc     *vdom.Document
	item    *vdom.VNode
	summary *vdom.VNode
	poster  *fakePoster
	toasts  *toast.Recorder
	beacons *telemetry.Recorder
	t       *Toggler
}

func newHarness() *harness {
	h := &harness{
		clock:   sched.NewManual(time.Unix(0, 0)),
		item:    vdom.Li(vdom.A(vdom.IdentityAttr, "7")),
		summary: vdom.Div(vdom.ID("list-summary"), vdom.Text("0 included")),
		poster:  &fakePoster{},
		toasts:  &toast.Recorder{},
		beacons: &telemetry.Recorder{},
	}
	h.doc = vdom.NewDocument(vdom.Div(vdom.Ul(h.item), h.summary))
	h.t = New(Config{
		Doc:       h.doc,
		Scheduler: h.clock,
		Poster:    h.poster,
		Toasts:    h.toasts,
		Reporter:  telemetry.NewReporter(h.beacons, nil, h.clock.Now),
	})
	return h
}

func (h *harness) respond(i int, resp *lifecycle.Response, err error) {
	h.poster.dones[i](resp, err)
	h.clock.Drain()
}

func TestToggleSuccess(t *testing.T) {
	h := newHarness()

	if err := h.t.Toggle(7, ListInclude); err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	if got := h.t.State(7); !got.Included || !got.Pending {
		t.Fatalf("optimistic state = %+v, want included and pending", got)
	}
	if h.item.Attr(AttrIncluded) != "true" || h.item.Attr(AttrBusy) != "true" {
		t.Errorf("state not reflected: %v", h.item.Props)
	}
	want := Payload{ItemIdentity: 7, TargetListName: ListInclude, DesiredEnabledState: true}
	if len(h.poster.payloads) != 1 || h.poster.payloads[0] != want {
		t.Fatalf("payloads = %+v, want %+v", h.poster.payloads, want)
	}

	h.respond(0, &lifecycle.Response{Status: 200, Body: `<p>1 included</p>`}, nil)

	if got := h.t.State(7); !got.Included || got.Pending {
		t.Errorf("final state = %+v, want included, not pending", got)
	}
	if h.item.Attr(AttrBusy) != "false" {
		t.Error("busy marker not cleared")
	}
	if got := vdom.RenderHTML(h.summary); got != `<div id="list-summary"><p>1 included</p></div>` {
		t.Errorf("summary = %s", got)
	}
	last, _ := h.toasts.Last()
	if last.Level() != string(toast.TypeSuccess) || last.Message() != "Added to include list" {
		t.Errorf("toast = %+v", last.Data)
	}
	if h.beacons.Count(telemetry.BeaconToggleSuccess) != 1 {
		t.Errorf("beacons = %v", h.beacons.Names())
	}
}

func TestToggleMarksAreExclusive(t *testing.T) {
	h := newHarness()
	h.t.Seed(7, State{Included: true})

	h.t.Toggle(7, ListExclude)
	got := h.t.State(7)
	if !got.Excluded || got.Included {
		t.Errorf("state = %+v, want excluded only", got)
	}
	if p := h.poster.payloads[0]; !p.DesiredEnabledState || p.TargetListName != ListExclude {
		t.Errorf("payload = %+v", p)
	}

	h.respond(0, &lifecycle.Response{Status: 200}, nil)
	h.t.Toggle(7, ListExclude)
	if got := h.t.State(7); got.Excluded || got.Included {
		t.Errorf("second toggle state = %+v, want neither", got)
	}
	if p := h.poster.payloads[1]; p.DesiredEnabledState {
		t.Error("toggling an active mark should request it off")
	}
}

func TestToggleConflictWhilePending(t *testing.T) {
	h := newHarness()
	h.t.Toggle(7, ListInclude)

	err := h.t.Toggle(7, ListExclude)
	if !stderrors.Is(err, errors.ErrConflict) {
		t.Fatalf("Toggle() error = %v, want ErrConflict", err)
	}
	if len(h.poster.payloads) != 1 {
		t.Error("conflicting toggle reached the network")
	}
	if got := h.t.State(7); !got.Included || !got.Pending {
		t.Errorf("conflict changed state: %+v", got)
	}

	// Other items are independent.
	if err := h.t.Toggle(8, ListInclude); err != nil {
		t.Errorf("Toggle(8) error = %v", err)
	}
	if h.t.Pending() != 2 {
		t.Errorf("Pending() = %d, want 2", h.t.Pending())
	}
}

func TestToggleFailureRollsBack(t *testing.T) {
	tests := []struct {
		name    string
		resp    *lifecycle.Response
		err     error
		message string
		status  string
	}{
		{
			name:    "server error with message",
			resp:    &lifecycle.Response{Status: 409, Body: `{"error":"List is full"}`},
			message: "List is full (status 409)",
			status:  "409",
		},
		{
			name:    "unparseable body",
			resp:    &lifecycle.Response{Status: 502, Body: `<html>bad gateway</html>`},
			message: "Request failed (status 502)",
			status:  "502",
		},
		{
			name:    "transport",
			err:     stderrors.New("connection refused"),
			message: "Network error",
			status:  "0",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			before := State{Excluded: true}
			h.t.Seed(7, before)

			h.t.Toggle(7, ListInclude)
			h.respond(0, tt.resp, tt.err)

			if got := h.t.State(7); got != before {
				t.Errorf("state = %+v, want snapshot %+v", got, before)
			}
			if h.item.Attr(AttrExcluded) != "true" || h.item.Attr(AttrBusy) != "false" {
				t.Errorf("rollback not reflected: %v", h.item.Props)
			}
			last, _ := h.toasts.Last()
			if last.Level() != string(toast.TypeError) || last.Message() != tt.message {
				t.Errorf("toast = %+v, want %q", last.Data, tt.message)
			}
			b := h.beacons.Beacons()
			if len(b) != 1 || b[0].Name != telemetry.BeaconToggleFailure || b[0].Attrs["status"] != tt.status {
				t.Errorf("beacons = %+v", b)
			}
			if vdom.RenderHTML(h.summary) != `<div id="list-summary">0 included</div>` {
				t.Error("failed toggle touched the summary")
			}

			// The item is usable again.
			if err := h.t.Toggle(7, ListInclude); err != nil {
				t.Errorf("retry error = %v", err)
			}
		})
	}
}

func TestToggleUnknownList(t *testing.T) {
	h := newHarness()
	err := h.t.Toggle(7, "favourites")
	var se *errors.SwapError
	if !stderrors.As(err, &se) || se.Code != errors.CodeUnknownList {
		t.Errorf("Toggle() error = %v, want %s", err, errors.CodeUnknownList)
	}
}

func TestToggleResetDiscardsLateResponse(t *testing.T) {
	h := newHarness()
	var changes int
	h.t.onChange = func(int, State) { changes++ }

	h.t.Toggle(7, ListInclude)
	h.t.Reset()
	h.respond(0, &lifecycle.Response{Status: 200, Body: "late"}, nil)

	if changes != 0 {
		t.Errorf("late response changed state %d times", changes)
	}
	if h.t.Pending() != 0 || h.t.State(7) != (State{}) {
		t.Error("Reset kept state")
	}
}

func TestHTTPPoster(t *testing.T) {
	var calls atomic.Int32
	var got Payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.Method != http.MethodPost || r.URL.Path != "/api/toggle" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		if got.TargetListName == ListExclude {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error":"nope"}`))
			return
		}
		w.Write([]byte(`<p>ok</p>`))
	}))
	defer srv.Close()

	p := NewHTTPPoster(srv.URL, "/api/toggle", time.Second)
	post := func(list string) (*lifecycle.Response, error) {
		type result struct {
			resp *lifecycle.Response
			err  error
		}
		ch := make(chan result, 1)
		p.Post(context.Background(), Payload{ItemIdentity: 3, TargetListName: list, DesiredEnabledState: true},
			func(resp *lifecycle.Response, err error) { ch <- result{resp, err} })
		r := <-ch
		return r.resp, r.err
	}

	resp, err := post(ListInclude)
	if err != nil || resp.Status != 200 || resp.Body != "<p>ok</p>" {
		t.Fatalf("Post() = %+v, %v", resp, err)
	}
	if got.ItemIdentity != 3 || !got.DesiredEnabledState {
		t.Errorf("server decoded %+v", got)
	}

	resp, err = post(ListExclude)
	if err != nil || resp.Status != 500 {
		t.Fatalf("Post() = %+v, %v", resp, err)
	}
	if calls.Load() != 2 {
		t.Errorf("server saw %d calls, want 2 (no retries)", calls.Load())
	}
}
