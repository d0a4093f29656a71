package window

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/vango-dev/swapgrid/internal/config"
	"github.com/vango-dev/swapgrid/pkg/telemetry"
	"github.com/vango-dev/swapgrid/pkg/vdom"
)

// Structural attributes marking the renderer's own elements.
const (
	AttrSpacer  = "data-virtual-spacer"
	AttrLive    = "data-virtual-live"
	AttrParking = "data-virtual-parking"
)

// Options wires a Renderer to its collaborators.
type Options struct {
	Doc      *vdom.Document
	Surface  *vdom.VNode
	Config   config.Virtual
	Layout   Layout
	IDs      *vdom.IdentityGenerator
	Reporter *telemetry.Reporter
	Logger   *slog.Logger
}

// Renderer maintains the windowed view of one surface. It is not safe for
// concurrent use.
type Renderer struct {
	doc      *vdom.Document
	surface  *vdom.VNode
	cfg      config.Virtual
	frame    Frame
	layout   Layout
	ids      *vdom.IdentityGenerator
	reporter *telemetry.Reporter
	logger   *slog.Logger

	items []*vdom.VNode // Collection order

	active        bool
	before, after *vdom.VNode
	live, parking *vdom.VNode
	surfaceStyle  string
	hadStyle      bool

	est     *Estimator
	metrics RowMetrics

	vp       Viewport
	geometry Geometry

	current         Range
	rendered        bool
	version         uint64
	renderedVersion uint64
}

// New creates a Renderer for opts.Surface, adopting its element children as
// the collection. The surface is windowed immediately if the collection is
// large enough.
func New(opts Options) *Renderer {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.IDs == nil {
		opts.IDs = vdom.NewIdentityGenerator()
	}
	cfg := opts.Config
	r := &Renderer{
		doc:      opts.Doc,
		surface:  opts.Surface,
		cfg:      cfg,
		frame:    ParseFrame(cfg.Frame),
		layout:   opts.Layout,
		ids:      opts.IDs,
		reporter: opts.Reporter,
		logger:   opts.Logger.With("component", "window", "surface", opts.Surface.Attr("id")),
		est:      NewEstimator(cfg.RowHeight, cfg.Smoothing, cfg.MinRowHeight),
	}
	r.metrics = RowMetrics{RowHeight: r.est.Value(), Columns: 1}
	if cfg.Columns > 0 {
		r.metrics.Columns = cfg.Columns
	}

	r.items = r.adopt(r.surface.ElementChildren())
	if len(r.items) >= r.cfg.MinItems {
		r.Activate()
	}
	return r
}

// Surface returns the surface element.
func (r *Renderer) Surface() *vdom.VNode { return r.surface }

// Active reports whether the surface is windowed.
func (r *Renderer) Active() bool { return r.active }

// Items returns the collection in order.
func (r *Renderer) Items() []*vdom.VNode { return r.items }

// Len returns the collection size.
func (r *Renderer) Len() int { return len(r.items) }

// Range returns the current window.
func (r *Renderer) Range() Range { return r.current }

// Metrics returns the current row estimate.
func (r *Renderer) Metrics() RowMetrics { return r.metrics }

// Frame returns the surface's scroll reference frame.
func (r *Renderer) Frame() Frame { return r.frame }

// Live returns the live container, nil when inactive.
func (r *Renderer) Live() *vdom.VNode { return r.live }

// Spacers returns the before and after spacers, nil when inactive.
func (r *Renderer) Spacers() (before, after *vdom.VNode) { return r.before, r.after }

// IDs returns the identities of the collection in order.
func (r *Renderer) IDs() []int {
	out := make([]int, len(r.items))
	for i, it := range r.items {
		out[i], _ = vdom.ItemID(it)
	}
	return out
}

// TotalHeight returns the estimated height of the whole collection.
func (r *Renderer) TotalHeight() float64 {
	cols := max(r.metrics.Columns, 1)
	rows := (len(r.items) + cols - 1) / cols
	return float64(rows) * r.metrics.RowHeight
}

// Activate windows the surface: items are parked, the live container and
// spacers are inserted, and the first window is rendered.
func (r *Renderer) Activate() {
	if r.active {
		return
	}
	r.before = vdom.Div(vdom.A(AttrSpacer, "before"), vdom.StyleAttr("height:0px"))
	r.live = vdom.Div(vdom.A(AttrLive, ""))
	r.after = vdom.Div(vdom.A(AttrSpacer, "after"), vdom.StyleAttr("height:0px"))
	r.parking = vdom.Div(vdom.A(AttrParking, ""), vdom.Hidden())

	for _, n := range []*vdom.VNode{r.before, r.live, r.after, r.parking} {
		r.doc.AppendChild(r.surface, n)
	}
	for _, it := range r.items {
		r.doc.AppendChild(r.parking, it)
	}

	r.surfaceStyle, r.hadStyle = r.surface.LookupAttr("style")
	if r.frame == FrameLocal && (r.cfg.MaxHeight != "" || r.cfg.Overflow != "") {
		style := r.surfaceStyle
		if r.cfg.MaxHeight != "" {
			style = setStyle(style, "max-height", cssLength(r.cfg.MaxHeight))
		}
		if r.cfg.Overflow != "" {
			style = setStyle(style, "overflow-y", r.cfg.Overflow)
		}
		r.doc.SetAttr(r.surface, "style", style)
	}

	r.active = true
	r.rendered = false
	r.version++
	r.logger.Debug("windowing activated", "items", len(r.items))

	r.measure()
	r.refreshGeometry()
	r.render()
}

// Update recomputes the window for a new viewport. A size change also
// re-measures. With unchanged geometry and collection it touches nothing.
func (r *Renderer) Update(vp Viewport) {
	resized := vp.Width != r.vp.Width || vp.Height != r.vp.Height
	r.vp = vp
	if !r.active {
		return
	}
	if resized {
		r.measure()
	}
	r.refreshGeometry()
	r.render()
}

// Reconcile merges the result of a partial update into the collection.
// Known items keep their identity and relative order; items the swap
// detached are dropped; unseen elements are appended, keeping the identity
// they carry unless it is missing or already held by another item. The
// surface is then re-measured and re-windowed, or activated if it has grown
// past the threshold.
func (r *Renderer) Reconcile() {
	if !r.active {
		r.items = r.adopt(r.surface.ElementChildren())
		r.version++
		if len(r.items) >= r.cfg.MinItems {
			r.Activate()
		}
		return
	}

	if !r.structureIntact() {
		r.rebuild()
		return
	}

	known := make(map[*vdom.VNode]bool, len(r.items))
	held := make(map[int]bool, len(r.items))
	kept := make([]*vdom.VNode, 0, len(r.items))
	for _, it := range r.items {
		if !r.owns(it) {
			continue
		}
		if it.Parent == r.surface {
			r.doc.AppendChild(r.parking, it)
			r.version++
		}
		known[it] = true
		if id, ok := vdom.ItemID(it); ok {
			held[id] = true
		}
		kept = append(kept, it)
	}
	changed := len(kept) != len(r.items)

	for _, c := range r.candidates() {
		if known[c] {
			continue
		}
		r.claim(c, held)
		if c.Parent == r.surface {
			r.doc.AppendChild(r.parking, c)
		}
		known[c] = true
		kept = append(kept, c)
		changed = true
	}
	r.items = kept
	if changed {
		r.version++
	}

	r.measure()
	r.refreshGeometry()
	r.render()
}

// Teardown restores every item, in collection order, as a direct child of
// the surface and removes the renderer's own elements.
func (r *Renderer) Teardown() {
	if !r.active {
		return
	}
	for _, it := range r.items {
		r.doc.AppendChild(r.surface, it)
	}
	for _, n := range []*vdom.VNode{r.before, r.live, r.after, r.parking} {
		r.doc.RemoveChild(n)
	}
	if r.hadStyle {
		r.doc.SetAttr(r.surface, "style", r.surfaceStyle)
	} else {
		r.doc.RemoveAttr(r.surface, "style")
	}
	r.before, r.live, r.after, r.parking = nil, nil, nil, nil
	r.active = false
	r.rendered = false
	r.current = Range{}
}

// claim keeps the identity n already carries unless another item in held
// has it, in which case n gets a fresh one.
func (r *Renderer) claim(n *vdom.VNode, held map[int]bool) {
	id, ok := vdom.ItemID(n)
	if ok && !held[id] {
		r.ids.Observe(id)
	} else {
		id = vdom.AssignIdentity(r.doc, n, r.ids)
	}
	held[id] = true
}

// adopt makes nodes the collection, in order.
func (r *Renderer) adopt(nodes []*vdom.VNode) []*vdom.VNode {
	items := make([]*vdom.VNode, 0, len(nodes))
	held := make(map[int]bool, len(nodes))
	for _, n := range nodes {
		r.claim(n, held)
		items = append(items, n)
	}
	return items
}

// owns reports whether item is still in one of the renderer's containers.
func (r *Renderer) owns(item *vdom.VNode) bool {
	p := item.Parent
	return p == r.live || p == r.parking || p == r.surface
}

// candidates lists elements a swap may have introduced: the live
// container's children followed by stray direct children of the surface.
func (r *Renderer) candidates() []*vdom.VNode {
	out := r.live.ElementChildren()
	for _, c := range r.surface.ElementChildren() {
		if !r.structural(c) {
			out = append(out, c)
		}
	}
	return out
}

func (r *Renderer) structural(n *vdom.VNode) bool {
	return n == r.before || n == r.live || n == r.after || n == r.parking
}

func (r *Renderer) structureIntact() bool {
	for _, n := range []*vdom.VNode{r.before, r.live, r.after, r.parking} {
		if n.Parent != r.surface {
			return false
		}
	}
	return true
}

// rebuild handles a swap that replaced the surface's content wholesale:
// whatever elements the surface now holds become the collection.
func (r *Renderer) rebuild() {
	r.logger.Debug("surface content replaced, rebuilding")
	for _, n := range []*vdom.VNode{r.before, r.live, r.after, r.parking} {
		if n.Parent == r.surface {
			r.doc.RemoveChild(n)
		}
	}
	r.before, r.live, r.after, r.parking = nil, nil, nil, nil
	r.active = false
	r.rendered = false
	r.current = Range{}

	r.items = r.adopt(r.surface.ElementChildren())
	r.version++
	if len(r.items) >= r.cfg.MinItems {
		r.Activate()
	}
}

// measure refreshes RowMetrics. Failures keep the previous estimate.
func (r *Renderer) measure() {
	if len(r.items) > 0 {
		h, err := MeasureClone(r.layout, r.items[0])
		if err != nil {
			r.logger.Debug("measurement failed, keeping estimate", "error", err, "row_height", r.metrics.RowHeight)
			r.reporter.MeasureFailure()
		} else {
			r.metrics.RowHeight = r.est.Observe(h + r.cfg.MarginPx)
		}
	}

	if r.cfg.Columns > 0 {
		r.metrics.Columns = r.cfg.Columns
		return
	}
	n, err := surfaceTracks(r.layout, r.surface)
	if err != nil {
		if r.metrics.Columns < 1 {
			r.metrics.Columns = 1
		}
		return
	}
	r.metrics.Columns = n
}

func (r *Renderer) refreshGeometry() {
	box, err := surfaceBox(r.layout, r.surface)
	if err != nil {
		r.logger.Debug("surface box unavailable, keeping geometry", "error", err)
		return
	}
	r.geometry = GeometryFor(r.frame, r.vp, box)
}

func (r *Renderer) render() {
	w := Compute(len(r.items), r.metrics, r.geometry, r.cfg.Overscan)
	if r.rendered && r.renderedVersion == r.version && w.SameItems(r.current) {
		r.current = w
		r.sizeSpacers(w)
		return
	}

	desired := r.items[w.Start:w.End]
	inWindow := make(map[*vdom.VNode]bool, len(desired))
	for _, it := range desired {
		inWindow[it] = true
	}

	leaving := make([]*vdom.VNode, 0, len(r.live.Children))
	for _, c := range r.live.Children {
		if !inWindow[c] {
			leaving = append(leaving, c)
		}
	}
	for _, c := range leaving {
		r.doc.AppendChild(r.parking, c)
	}
	for i, it := range desired {
		if i < len(r.live.Children) && r.live.Children[i] == it {
			continue
		}
		r.doc.InsertChild(r.live, it, i)
	}
	r.sizeSpacers(w)

	r.current = w
	r.rendered = true
	r.renderedVersion = r.version
	r.reporter.WindowRender()
}

func (r *Renderer) sizeSpacers(w Range) {
	r.doc.SetAttr(r.before, "style", spacerStyle(w.PaddingBefore))
	r.doc.SetAttr(r.after, "style", spacerStyle(w.PaddingAfter))
}

func spacerStyle(h float64) string {
	return fmt.Sprintf("height:%dpx", int(math.Round(h)))
}

// SpacerHeight parses the height back out of a spacer's style.
func SpacerHeight(spacer *vdom.VNode) float64 {
	var h int
	if spacer == nil {
		return 0
	}
	if _, err := fmt.Sscanf(spacer.Attr("style"), "height:%dpx", &h); err != nil {
		return 0
	}
	return float64(h)
}

func cssLength(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return v
	}
	if strings.Trim(v, "0123456789.") == "" {
		return v + "px"
	}
	return v
}

// setStyle sets one declaration in an inline style, keeping the others in
// place.
func setStyle(style, prop, value string) string {
	decls := strings.Split(style, ";")
	out := make([]string, 0, len(decls)+1)
	found := false
	for _, d := range decls {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}
		name, _, _ := strings.Cut(d, ":")
		if strings.TrimSpace(name) == prop {
			d = prop + ":" + value
			found = true
		}
		out = append(out, d)
	}
	if !found {
		out = append(out, prop+":"+value)
	}
	return strings.Join(out, ";")
}
