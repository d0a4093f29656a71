package window

import (
	"github.com/vango-dev/swapgrid/internal/config"
	"github.com/vango-dev/swapgrid/pkg/vdom"
)

// Frame selects which scroll position feeds window computation.
type Frame uint8

const (
	// FrameLocal: the surface itself scrolls.
	FrameLocal Frame = iota
	// FramePage: the surface is static and the page scrolls.
	FramePage
)

// String returns the attribute value for the frame.
func (f Frame) String() string {
	if f == FramePage {
		return config.FramePage
	}
	return config.FrameLocal
}

// ParseFrame maps an attribute value to a Frame.
func ParseFrame(s string) Frame {
	if s == config.FramePage {
		return FramePage
	}
	return FrameLocal
}

// Viewport is the page's scroll and size state at one tick.
type Viewport struct {
	Width   float64
	Height  float64
	ScrollY float64
}

// Box is a surface's layout box as reported by a Layout.
type Box struct {
	Top          float64 // Offset from the top of the page
	ClientHeight float64 // Visible height of a scrolling surface
	ScrollTop    float64 // Scroll position of a scrolling surface
}

// Geometry is the input to window computation.
type Geometry struct {
	VisibleHeight float64
	ScrollOffset  float64
}

// GeometryFor derives the geometry of a surface in frame f.
func GeometryFor(f Frame, vp Viewport, box Box) Geometry {
	if f == FramePage {
		return Geometry{
			VisibleHeight: vp.Height,
			ScrollOffset:  vp.ScrollY - box.Top,
		}
	}
	return Geometry{
		VisibleHeight: box.ClientHeight,
		ScrollOffset:  box.ScrollTop,
	}
}

// Layout reports rendered geometry. Any method may fail or panic; the
// renderer treats both the same way.
type Layout interface {
	// Measure returns the rendered height of item. item is a detached clone.
	Measure(item *vdom.VNode) (float64, error)

	// Tracks returns the number of layout columns of surface.
	Tracks(surface *vdom.VNode) (int, error)

	// Box returns the layout box of surface.
	Box(surface *vdom.VNode) (Box, error)
}
