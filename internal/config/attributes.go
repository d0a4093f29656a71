package config

import (
	"strings"
	"time"

	"github.com/vango-dev/swapgrid/pkg/vdom"
)

// Element attribute names.
const (
	AttrVirtual          = "data-virtual"
	AttrVirtualMin       = "data-virtual-min"
	AttrVirtualRowHeight = "data-virtual-row-height"
	AttrVirtualColumns   = "data-virtual-columns"
	AttrVirtualMaxHeight = "data-virtual-max-height"
	AttrVirtualOverflow  = "data-virtual-overflow"
	AttrVirtualOverscan  = "data-virtual-overscan"

	AttrCache    = "data-cache"
	AttrCacheKey = "data-cache-key"
	AttrCacheTTL = "data-cache-ttl"

	AttrDebounce      = "data-debounce"
	AttrDebounceOn    = "data-debounce-on"
	AttrDebounceGroup = "data-debounce-group"
	AttrDebounceFlush = "data-debounce-flush"

	AttrPrefetch    = "data-prefetch"
	AttrPrefetchKey = "data-prefetch-key"
	AttrPrefetchTTL = "data-prefetch-ttl"
)

// Scroll reference frames.
const (
	FrameLocal = "local"
	FramePage  = "page"
)

// Virtual is a surface's windowing configuration.
type Virtual struct {
	// Frame is FrameLocal (the surface scrolls) or FramePage (the page does).
	Frame string

	MinItems  int
	RowHeight float64 // Seed estimate before the first measurement
	Columns   int     // Explicit column count; 0 defers to the layout
	Overscan  int

	// MaxHeight and Overflow are applied to a local surface's style.
	MaxHeight string
	Overflow  string

	MarginPx     float64
	MinRowHeight float64
	Smoothing    float64
}

// ParseVirtual reads a surface's windowing attributes. ok is false when the
// element has not opted in. Any value other than "page" selects the local
// frame.
func ParseVirtual(elt *vdom.VNode, d VirtualConfig) (v Virtual, ok bool) {
	mode, ok := elt.LookupAttr(AttrVirtual)
	if !ok || mode == "false" || mode == "off" {
		return Virtual{}, false
	}
	v = Virtual{
		Frame:        FrameLocal,
		MinItems:     elt.AttrInt(AttrVirtualMin, d.MinItems),
		RowHeight:    elt.AttrFloat(AttrVirtualRowHeight, d.RowHeight),
		Columns:      elt.AttrInt(AttrVirtualColumns, 0),
		Overscan:     elt.AttrInt(AttrVirtualOverscan, d.Overscan),
		MaxHeight:    elt.Attr(AttrVirtualMaxHeight),
		Overflow:     elt.Attr(AttrVirtualOverflow),
		MarginPx:     d.MarginPx,
		MinRowHeight: d.MinRowHeight,
		Smoothing:    d.Smoothing,
	}
	if strings.EqualFold(strings.TrimSpace(mode), FramePage) {
		v.Frame = FramePage
	}
	if v.MinItems < 1 {
		v.MinItems = 1
	}
	if v.RowHeight <= 0 {
		v.RowHeight = d.RowHeight
	}
	if v.Columns < 0 {
		v.Columns = 0
	}
	if v.Overscan < 0 {
		v.Overscan = 0
	}
	if v.Frame == FrameLocal && v.Overflow == "" && v.MaxHeight != "" {
		v.Overflow = "auto"
	}
	return v, true
}

// Cache is an element's response cache configuration.
type Cache struct {
	Key string // Explicit key; empty derives one from the request
	TTL time.Duration
}

// ParseCache reads an element's cache attributes. ok is false when the
// element has not opted in.
func ParseCache(elt *vdom.VNode, defaultTTL time.Duration) (c Cache, ok bool) {
	if !elt.AttrBool(AttrCache) {
		return Cache{}, false
	}
	return Cache{
		Key: strings.TrimSpace(elt.Attr(AttrCacheKey)),
		TTL: millis(elt, AttrCacheTTL, defaultTTL),
	}, true
}

// Debounce is an element's debounce configuration.
type Debounce struct {
	Delay       time.Duration
	On          []string // Source events
	Group       string
	FlushOnBlur bool
}

// ParseDebounce reads an element's debounce attributes. ok is false when the
// element has not opted in. A bare data-debounce uses defaultDelay.
func ParseDebounce(elt *vdom.VNode, defaultDelay time.Duration) (d Debounce, ok bool) {
	if !elt.HasAttr(AttrDebounce) {
		return Debounce{}, false
	}
	d = Debounce{
		Delay:       millis(elt, AttrDebounce, defaultDelay),
		On:          elt.AttrList(AttrDebounceOn),
		Group:       strings.TrimSpace(elt.Attr(AttrDebounceGroup)),
		FlushOnBlur: strings.EqualFold(strings.TrimSpace(elt.Attr(AttrDebounceFlush)), "blur"),
	}
	if len(d.On) == 0 {
		d.On = []string{"input"}
	}
	return d, true
}

// Prefetch is an element's speculative fetch configuration.
type Prefetch struct {
	URL string
	Key string // Explicit key; empty derives one from the URL
	TTL time.Duration
}

// ParsePrefetch reads an element's prefetch attributes. ok is false when the
// element has no prefetch URL.
func ParsePrefetch(elt *vdom.VNode, defaultTTL time.Duration) (p Prefetch, ok bool) {
	u := strings.TrimSpace(elt.Attr(AttrPrefetch))
	if u == "" {
		return Prefetch{}, false
	}
	return Prefetch{
		URL: u,
		Key: strings.TrimSpace(elt.Attr(AttrPrefetchKey)),
		TTL: millis(elt, AttrPrefetchTTL, defaultTTL),
	}, true
}

func millis(elt *vdom.VNode, key string, def time.Duration) time.Duration {
	ms := elt.AttrInt(key, -1)
	if ms <= 0 {
		return def
	}
	return time.Duration(ms) * time.Millisecond
}
