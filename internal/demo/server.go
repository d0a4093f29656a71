package demo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/swapgrid/pkg/telemetry"
	"github.com/vango-dev/swapgrid/pkg/toggle"
)

// Options configures a Server.
type Options struct {
	// TotalItems is the size of the item collection. Default: 1000
	TotalItems int

	// PageSize is the default page size for /items. Default: 50
	PageSize int

	// IncludeCapacity bounds the include list; 0 means unbounded.
	IncludeCapacity int

	// Lists stores list membership. Default: NewMemoryLists()
	Lists Lists

	// Registry receives the server's metrics. Default: a new registry
	Registry *prometheus.Registry

	Logger *slog.Logger
}

// Server is the demo backend.
type Server struct {
	opts     Options
	logger   *slog.Logger
	validate *validator.Validate
	hub      *BeaconHub
	router   chi.Router

	lists    Lists

	beacons *prometheus.CounterVec
	toggles *prometheus.CounterVec
}

// NewServer creates a Server.
func NewServer(opts Options) *Server {
	if opts.TotalItems <= 0 {
		opts.TotalItems = 1000
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 50
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Lists == nil {
		opts.Lists = NewMemoryLists()
	}
	factory := promauto.With(opts.Registry)
	s := &Server{
		opts:     opts,
		logger:   opts.Logger.With("component", "demo"),
		validate: validator.New(),
		hub:      NewBeaconHub(),
		lists:    opts.Lists,
		beacons: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "swapgrid",
			Subsystem: "demo",
			Name:      "beacons_received_total",
			Help:      "Telemetry beacons received by name",
		}, []string{"name"}),
		toggles: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "swapgrid",
			Subsystem: "demo",
			Name:      "toggle_requests_total",
			Help:      "Toggle requests by HTTP status",
		}, []string{"status"}),
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Hub returns the beacon hub.
func (s *Server) Hub() *BeaconHub { return s.hub }

// Close disconnects beacon clients and closes the list store.
func (s *Server) Close() error {
	s.hub.Close()
	return s.lists.Close()
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/items", s.handleItems)
	r.Post("/api/toggle", s.handleToggle)
	r.Post("/api/beacons", s.handleBeacon)
	r.Get("/ws/beacons", s.hub.HandleWebSocket)
	r.Handle("/metrics", promhttp.HandlerFor(s.opts.Registry, promhttp.HandlerOpts{}))
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// handleItems serves one page of item fragments: GET /items?page=N&size=M.
// Pages start at 1; a page past the end is empty.
func (s *Server) handleItems(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	size := queryInt(r, "size", s.opts.PageSize)
	if page < 1 || size < 1 {
		writeError(w, http.StatusBadRequest, "page and size must be positive")
		return
	}

	first := (page-1)*size + 1
	last := min(first+size-1, s.opts.TotalItems)

	marks, err := s.lists.Marks(r.Context(), first, last)
	if err != nil {
		s.logger.Error("read marks", "error", err)
		writeError(w, http.StatusInternalServerError, "could not load items")
		return
	}

	var b strings.Builder
	for id := first; id <= last; id++ {
		m := marks[id]
		fmt.Fprintf(&b,
			`<li class="card" data-item-id="%d" data-included="%t" data-excluded="%t">`+
				`<span>Item %d</span>`+
				`<button data-toggle="include">Include</button>`+
				`<button data-toggle="exclude">Exclude</button></li>`,
			id, m.Included, m.Excluded, id)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(b.String()))
}

// handleToggle applies a toggle and answers with the summary fragment.
func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	var p toggle.Payload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		s.toggleError(w, http.StatusBadRequest, "malformed toggle request")
		return
	}
	if err := s.validate.Struct(p); err != nil {
		s.toggleError(w, http.StatusUnprocessableEntity, validationMessage(err))
		return
	}
	if p.ItemIdentity > s.opts.TotalItems {
		s.toggleError(w, http.StatusNotFound, fmt.Sprintf("item %d does not exist", p.ItemIdentity))
		return
	}

	err := s.lists.Apply(r.Context(), p.ItemIdentity, p.TargetListName, p.DesiredEnabledState, s.opts.IncludeCapacity)
	switch {
	case errors.Is(err, ErrListFull):
		s.toggleError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		s.logger.Error("apply toggle", "item", p.ItemIdentity, "error", err)
		s.toggleError(w, http.StatusInternalServerError, "could not save change")
		return
	}

	summary, err := s.Summary(r.Context())
	if err != nil {
		s.toggleError(w, http.StatusInternalServerError, "could not load summary")
		return
	}
	s.toggles.WithLabelValues("200").Inc()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(summary))
}

func (s *Server) toggleError(w http.ResponseWriter, status int, msg string) {
	s.toggles.WithLabelValues(strconv.Itoa(status)).Inc()
	writeError(w, status, msg)
}

// Summary returns the summary fragment for the current lists.
func (s *Server) Summary(ctx context.Context) (string, error) {
	inc, exc, err := s.lists.Counts(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`<p class="summary">%d included, %d excluded</p>`, inc, exc), nil
}

// handleBeacon collects one beacon and fans it out.
func (s *Server) handleBeacon(w http.ResponseWriter, r *http.Request) {
	var b telemetry.Beacon
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil || b.Name == "" {
		writeError(w, http.StatusBadRequest, "malformed beacon")
		return
	}
	s.beacons.WithLabelValues(b.Name).Inc()
	s.hub.Broadcast(b)
	w.WriteHeader(http.StatusAccepted)
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return -1
	}
	return n
}

func validationMessage(err error) string {
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
	return err.Error()
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
