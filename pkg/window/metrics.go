package window

import (
	"fmt"
	"math"

	"github.com/vango-dev/swapgrid/internal/errors"
	"github.com/vango-dev/swapgrid/pkg/vdom"
)

// RowMetrics is the current row geometry estimate.
type RowMetrics struct {
	RowHeight float64
	Columns   int
}

// Estimator smooths measured row heights into an estimate.
//
// The first measurement replaces the seed outright; later ones move the
// estimate by Alpha of the difference. The estimate never drops below Floor.
type Estimator struct {
	Alpha float64
	Floor float64

	value    float64
	measured bool
}

// NewEstimator creates an estimator seeded with hint.
func NewEstimator(hint, alpha, floor float64) *Estimator {
	e := &Estimator{Alpha: alpha, Floor: floor}
	e.value = math.Max(hint, floor)
	return e
}

// Observe folds sample into the estimate and returns it.
func (e *Estimator) Observe(sample float64) float64 {
	if math.IsNaN(sample) || math.IsInf(sample, 0) || sample <= 0 {
		return e.value
	}
	if !e.measured {
		e.value = sample
		e.measured = true
	} else {
		e.value += e.Alpha * (sample - e.value)
	}
	e.value = math.Max(e.value, e.Floor)
	return e.value
}

// Value returns the current estimate.
func (e *Estimator) Value() float64 {
	return e.value
}

// MeasureClone measures a detached copy of item. Panics from the layout are
// returned as errors.
func MeasureClone(layout Layout, item *vdom.VNode) (h float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New(errors.CodeMeasureFailed).WithDetail(fmt.Sprint(r))
		}
	}()
	h, err = layout.Measure(vdom.Clone(item))
	if err != nil {
		return 0, errors.FromError(err, errors.CodeMeasureFailed)
	}
	if h <= 0 || math.IsNaN(h) || math.IsInf(h, 0) {
		return 0, errors.New(errors.CodeMeasureFailed).WithDetail(fmt.Sprintf("unusable height %v", h))
	}
	return h, nil
}

func surfaceTracks(layout Layout, surface *vdom.VNode) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New(errors.CodeTracksUnknown).WithDetail(fmt.Sprint(r))
		}
	}()
	n, err = layout.Tracks(surface)
	if err == nil && n < 1 {
		err = errors.New(errors.CodeTracksUnknown)
	}
	return n, err
}

func surfaceBox(layout Layout, surface *vdom.VNode) (b Box, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New(errors.CodeMeasureFailed).WithDetail(fmt.Sprint(r))
		}
	}()
	return layout.Box(surface)
}
