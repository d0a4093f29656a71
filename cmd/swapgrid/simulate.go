package main

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/vango-dev/swapgrid/internal/config"
	"github.com/vango-dev/swapgrid/internal/demo"
	"github.com/vango-dev/swapgrid/pkg/engine"
	"github.com/vango-dev/swapgrid/pkg/exchange"
	"github.com/vango-dev/swapgrid/pkg/sched"
	"github.com/vango-dev/swapgrid/pkg/telemetry"
	"github.com/vango-dev/swapgrid/pkg/toast"
	"github.com/vango-dev/swapgrid/pkg/toggle"
	"github.com/vango-dev/swapgrid/pkg/vdom"
	"github.com/vango-dev/swapgrid/pkg/window"
)

type simulateOptions struct {
	items      int
	itemHeight float64
	columns    int
	viewport   float64
	scroll     float64
	loadMore   int
	toggleID   int
	beacons    string
}

func simulateCmd(configDir *string) *cobra.Command {
	var opts simulateOptions

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Mount a page against the demo backend and report the window",
		Long: `Mount a headless page against an in-process demo backend.

The page loads a list of items into a windowed surface, scrolls it,
optionally loads more pages (repeats are served from the request cache)
and toggles an item, then prints the resulting window.

Examples:
  swapgrid simulate --items=500 --scroll=3700
  swapgrid simulate --load-more=3 --toggle=42
  swapgrid simulate --beacons=http://localhost:8080/api/beacons`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configDir)
			if err != nil {
				return err
			}
			res, err := runSimulate(cfg, opts)
			if err != nil {
				return err
			}
			res.print()
			return nil
		},
	}

	cmd.Flags().IntVarP(&opts.items, "items", "n", 500, "Items on the first page")
	cmd.Flags().Float64Var(&opts.itemHeight, "item-height", config.DefaultRowHeight, "Rendered item height in px")
	cmd.Flags().IntVar(&opts.columns, "columns", 1, "Layout columns")
	cmd.Flags().Float64Var(&opts.viewport, "viewport", 800, "Visible height in px")
	cmd.Flags().Float64Var(&opts.scroll, "scroll", 0, "Scroll offset in px")
	cmd.Flags().IntVar(&opts.loadMore, "load-more", 0, "Times to click the load-more control")
	cmd.Flags().IntVar(&opts.toggleID, "toggle", 0, "Item to include (0 = none)")
	cmd.Flags().StringVar(&opts.beacons, "beacons", "", "Beacon endpoint (default from swapgrid.json)")

	return cmd
}

// simulation is what a run observed once the page settled.
type simulation struct {
	Bound         bool
	Items         int
	Active        bool
	Window        window.Range
	Live          int
	PaddingBefore float64
	PaddingAfter  float64
	Metrics       window.RowMetrics
	CacheEntries  int
	Beacons       map[string]int
	Toasts        []toast.Event
	Dropped       uint64
}

func runSimulate(cfg *config.Config, opts simulateOptions) (*simulation, error) {
	backend := demo.NewServer(demo.Options{TotalItems: opts.items * (opts.loadMore + 2)})
	defer backend.Close()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}
	srv := &http.Server{Handler: backend.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go srv.Serve(ln)
	defer srv.Close()
	baseURL := "http://" + ln.Addr().String()

	clock := sched.NewManual(time.Now())
	beacons := &telemetry.Recorder{}
	var sink telemetry.Sink = beacons
	endpoint := opts.beacons
	if endpoint == "" {
		endpoint = cfg.Telemetry.Endpoint
	}
	var sender *telemetry.HTTPSender
	metrics := telemetry.NewMetrics(telemetry.WithRegistry(prometheus.NewRegistry()))
	if endpoint != "" {
		sender = telemetry.NewHTTPSender(telemetry.SenderConfig{
			Endpoint:    endpoint,
			Timeout:     cfg.TelemetryTimeout(),
			MaxInFlight: cfg.Telemetry.MaxInFlight,
		}).WithMetrics(metrics)
		sink = telemetry.SinkFunc(func(b telemetry.Beacon) {
			beacons.Send(b)
			sender.Send(b)
		})
	}

	layout := &window.StaticLayout{
		ItemHeight: opts.itemHeight,
		Columns:    opts.columns,
		SurfaceBox: window.Box{ClientHeight: opts.viewport},
	}
	toasts := &toast.Recorder{}
	e := engine.New(engine.Options{
		Config:    cfg,
		Scheduler: clock,
		Transport: exchange.NewHTTPTransport(exchange.HTTPConfig{BaseURL: baseURL}),
		Poster:    toggle.NewHTTPPoster(baseURL, cfg.Toggle.URL, cfg.ToggleTimeout()),
		Layout:    layout,
		Toasts:    toasts,
		Reporter:  telemetry.NewReporter(sink, metrics, clock.Now),
		Logger:    slog.Default(),
	})

	results := vdom.Ul(vdom.ID("results"), vdom.A(config.AttrVirtual, config.FrameLocal),
		vdom.A(config.AttrVirtualMaxHeight, fmt.Sprint(opts.viewport)))
	load := vdom.Button(
		vdom.A(exchange.AttrGet, fmt.Sprintf("/items?page=1&size=%d", opts.items)),
		vdom.A(exchange.AttrTarget, "#results"),
	)
	more := vdom.Button(
		vdom.A(exchange.AttrGet, fmt.Sprintf("/items?page=2&size=%d", opts.items)),
		vdom.A(exchange.AttrTarget, "#results"),
		vdom.A(exchange.AttrSwap, exchange.SwapBeforeEnd),
		vdom.A(config.AttrCache, ""),
	)
	summary := vdom.Div(vdom.ID("list-summary"))
	e.Mount(vdom.Div(results, load, more, summary))

	settle := func(pending func() int) error {
		deadline := time.Now().Add(10 * time.Second)
		for {
			clock.Drain()
			if pending() == 0 {
				return nil
			}
			if time.Now().After(deadline) {
				return fmt.Errorf("timed out waiting for %d responses", pending())
			}
			time.Sleep(2 * time.Millisecond)
		}
	}

	e.HandleEvent(load, "click")
	if err := settle(e.Dispatcher().Pending); err != nil {
		return nil, err
	}
	for i := 0; i < opts.loadMore; i++ {
		e.HandleEvent(more, "click")
		if err := settle(e.Dispatcher().Pending); err != nil {
			return nil, err
		}
	}

	layout.SurfaceBox.ScrollTop = opts.scroll
	e.Scroll(window.Viewport{Width: 1280, Height: opts.viewport})

	if opts.toggleID > 0 {
		if err := e.Toggle(opts.toggleID, toggle.ListInclude); err != nil {
			return nil, err
		}
		if err := settle(e.Toggler().Pending); err != nil {
			return nil, err
		}
	}

	res := collect(e.Renderer(results), e, toasts, beacons)
	if sender != nil {
		sender.Wait()
		res.Dropped = sender.Dropped()
	}
	return res, nil
}

func collect(r *window.Renderer, e *engine.Engine, toasts *toast.Recorder, beacons *telemetry.Recorder) *simulation {
	res := &simulation{
		CacheEntries: e.Cache().Store().Len(),
		Beacons:      map[string]int{},
		Toasts:       toasts.Events,
	}
	for _, b := range beacons.Beacons() {
		res.Beacons[b.Name]++
	}
	if r == nil {
		return res
	}
	res.Bound = true
	res.Items = r.Len()
	res.Active = r.Active()
	res.Window = r.Range()
	res.Metrics = r.Metrics()
	if res.Active {
		before, after := r.Spacers()
		res.Live = len(r.Live().ElementChildren())
		res.PaddingBefore = window.SpacerHeight(before)
		res.PaddingAfter = window.SpacerHeight(after)
	}
	return res
}

func (s *simulation) print() {
	fmt.Println(titleStyle.Render("swapgrid simulate"))
	if !s.Bound {
		warn("surface was not bound")
		return
	}
	w := s.Window
	field("Items", "%d", s.Items)
	field("Windowed", "%t", s.Active)
	if s.Active {
		field("Rows", "%d-%d of %d", w.StartRow, w.EndRow-1, w.TotalRows)
		field("Live items", "%d (%d-%d)", s.Live, w.Start, w.End-1)
		field("Padding", "%.0fpx before, %.0fpx after", s.PaddingBefore, s.PaddingAfter)
	}
	field("Row height", "%.1fpx × %d columns", s.Metrics.RowHeight, s.Metrics.Columns)
	field("Cache entries", "%d", s.CacheEntries)

	names := make([]string, 0, len(s.Beacons))
	for n := range s.Beacons {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		field("Beacon", "%s ×%d", n, s.Beacons[n])
	}
	for _, t := range s.Toasts {
		field("Toast", "[%s] %s", t.Level(), t.Message())
	}
	if s.Dropped > 0 {
		warn("%d beacons dropped", s.Dropped)
	}
	success("Simulation complete")
}
