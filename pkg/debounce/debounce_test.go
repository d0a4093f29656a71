package debounce

import (
	"net/url"
	"testing"
	"time"

	"github.com/vango-dev/swapgrid/pkg/sched"
	"github.com/vango-dev/swapgrid/pkg/vdom"
)

type fired struct {
	elt      *vdom.VNode
	snapshot url.Values
	at       time.Duration
}

func newCoordinator() (*Coordinator, *sched.Manual, *[]fired) {
	start := time.Unix(0, 0)
	clock := sched.NewManual(start)
	var out []fired
	c := New(Config{
		Scheduler: clock,
		Emit: func(elt *vdom.VNode, snapshot url.Values) {
			out = append(out, fired{elt, snapshot, clock.Now().Sub(start)})
		},
	})
	return c, clock, &out
}

func search(name string, attrs ...any) *vdom.VNode {
	return vdom.Input(append([]any{vdom.A("name", name), vdom.A("value", "")}, attrs...)...)
}

func TestRestartsOnEachEvent(t *testing.T) {
	c, clock, out := newCoordinator()
	q := search("q", vdom.A("data-debounce", "300"))

	for _, v := range []string{"c", "ca", "cat"} {
		q.Props["value"] = v
		if !c.HandleEvent(q, "input") {
			t.Fatal("input not consumed")
		}
		clock.Advance(100 * time.Millisecond)
	}
	if len(*out) != 0 {
		t.Fatalf("fired early: %v", *out)
	}

	clock.Advance(300 * time.Millisecond)
	if len(*out) != 1 {
		t.Fatalf("fired %d times, want 1", len(*out))
	}
	got := (*out)[0]
	if got.snapshot.Get("q") != "cat" {
		t.Errorf("snapshot q = %q, want latest value", got.snapshot.Get("q"))
	}
	if got.at != 500*time.Millisecond {
		t.Errorf("fired at %v, want 500ms", got.at)
	}
}

func TestSnapshotTakenAtScheduling(t *testing.T) {
	c, clock, out := newCoordinator()
	q := search("q", vdom.A("data-debounce", "200"))

	q.Props["value"] = "dog"
	c.HandleEvent(q, "input")
	q.Props["value"] = "changed later"
	clock.Advance(200 * time.Millisecond)

	if len(*out) != 1 || (*out)[0].snapshot.Get("q") != "dog" {
		t.Errorf("out = %+v, want snapshot from scheduling", *out)
	}
}

func TestGroupKeepsOnlyLatest(t *testing.T) {
	c, clock, out := newCoordinator()
	a := search("a", vdom.A("data-debounce", "300"), vdom.A("data-debounce-group", "filters"))
	b := search("b", vdom.A("data-debounce", "300"), vdom.A("data-debounce-group", "filters"))

	a.Props["value"] = "1"
	c.HandleEvent(a, "input")
	clock.Advance(50 * time.Millisecond)
	b.Props["value"] = "2"
	c.HandleEvent(b, "input")

	if c.Pending(a) || !c.Pending(b) {
		t.Fatal("group did not cancel the earlier timer")
	}
	clock.Advance(time.Second)

	if len(*out) != 1 {
		t.Fatalf("fired %d times, want 1", len(*out))
	}
	if (*out)[0].elt != b || (*out)[0].snapshot.Get("b") != "2" {
		t.Errorf("fired %+v, want the later element's state", (*out)[0])
	}
}

func TestSeparateElementsWithoutGroup(t *testing.T) {
	c, clock, out := newCoordinator()
	a := search("a", vdom.A("data-debounce", ""))
	b := search("b", vdom.A("data-debounce", ""))

	c.HandleEvent(a, "input")
	c.HandleEvent(b, "input")
	clock.Advance(299 * time.Millisecond)
	if len(*out) != 0 {
		t.Fatal("default delay not applied")
	}
	clock.Advance(time.Millisecond)
	if len(*out) != 2 {
		t.Errorf("fired %d times, want 2", len(*out))
	}
}

func TestEventFilter(t *testing.T) {
	c, _, _ := newCoordinator()
	q := search("q", vdom.A("data-debounce", "100"), vdom.A("data-debounce-on", "keyup, change"))

	tests := []struct {
		event string
		want  bool
	}{
		{"input", false},
		{"keyup", true},
		{"change", true},
		{"click", false},
	}
	for _, tt := range tests {
		t.Run(tt.event, func(t *testing.T) {
			if got := c.HandleEvent(q, tt.event); got != tt.want {
				t.Errorf("HandleEvent(%s) = %v, want %v", tt.event, got, tt.want)
			}
		})
	}

	if c.HandleEvent(search("plain"), "input") {
		t.Error("element without data-debounce consumed an event")
	}
}

func TestFlushOnBlur(t *testing.T) {
	c, clock, out := newCoordinator()
	q := search("q", vdom.A("data-debounce", "500"), vdom.A("data-debounce-flush", "blur"))

	if c.HandleEvent(q, "blur") {
		t.Error("blur with nothing pending consumed")
	}
	q.Props["value"] = "now"
	c.HandleEvent(q, "input")
	clock.Advance(10 * time.Millisecond)
	if !c.HandleEvent(q, "blur") {
		t.Fatal("blur did not flush")
	}
	if len(*out) != 1 || (*out)[0].at != 10*time.Millisecond {
		t.Fatalf("out = %+v, want immediate emission", *out)
	}

	clock.Advance(time.Second)
	if len(*out) != 1 {
		t.Error("flushed timer fired again")
	}
}

func TestBlurIgnoredWithoutFlush(t *testing.T) {
	c, clock, out := newCoordinator()
	q := search("q", vdom.A("data-debounce", "500"))

	c.HandleEvent(q, "input")
	if c.HandleEvent(q, "blur") {
		t.Error("blur consumed without data-debounce-flush")
	}
	clock.Advance(500 * time.Millisecond)
	if len(*out) != 1 {
		t.Errorf("fired %d times, want 1", len(*out))
	}
}

func TestReset(t *testing.T) {
	c, clock, out := newCoordinator()
	a := search("a", vdom.A("data-debounce", "100"), vdom.A("data-debounce-group", "g"))
	b := search("b", vdom.A("data-debounce", "100"))

	c.HandleEvent(a, "input")
	c.HandleEvent(b, "input")
	c.Reset()
	clock.Advance(time.Second)

	if len(*out) != 0 {
		t.Errorf("fired %d times after Reset", len(*out))
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d after Reset", c.Len())
	}
}
