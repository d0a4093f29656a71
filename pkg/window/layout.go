package window

import (
	"github.com/vango-dev/swapgrid/internal/errors"
	"github.com/vango-dev/swapgrid/pkg/vdom"
)

// StaticLayout is a Layout with fixed answers. It backs the simulate command
// and tests.
type StaticLayout struct {
	// ItemHeight is the height reported for every item.
	ItemHeight float64

	// Columns is the reported track count; 0 reports it as unknown.
	Columns int

	// SurfaceBox is reported for every surface.
	SurfaceBox Box

	// MeasureErr, when set, fails every measurement.
	MeasureErr error

	// MeasurePanics makes every measurement panic.
	MeasurePanics bool
}

// Measure implements Layout.
func (l *StaticLayout) Measure(*vdom.VNode) (float64, error) {
	if l.MeasurePanics {
		panic("layout unavailable")
	}
	if l.MeasureErr != nil {
		return 0, l.MeasureErr
	}
	return l.ItemHeight, nil
}

// Tracks implements Layout.
func (l *StaticLayout) Tracks(*vdom.VNode) (int, error) {
	if l.Columns <= 0 {
		return 0, errors.New(errors.CodeTracksUnknown)
	}
	return l.Columns, nil
}

// Box implements Layout.
func (l *StaticLayout) Box(*vdom.VNode) (Box, error) {
	return l.SurfaceBox, nil
}
