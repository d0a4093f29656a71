package window

import "math"

// Range is a computed window: rows [StartRow, EndRow) and items
// [Start, End) with the spacer heights around them.
type Range struct {
	StartRow, EndRow int
	Start, End       int
	TotalRows        int
	PaddingBefore    float64
	PaddingAfter     float64
}

// SameItems reports whether r and o render the same items.
func (r Range) SameItems(o Range) bool {
	return r.Start == o.Start && r.End == o.End
}

// Count returns the number of items in the window.
func (r Range) Count() int {
	return r.End - r.Start
}

// Compute derives the window for n items.
//
// The first visible row is floor(offset / rowHeight). The window starts
// overscan rows above it and ends one row past the last row that fits in
// the visible height, so a partially visible row is always rendered. Both
// ends are clamped to [0, totalRows].
func Compute(n int, m RowMetrics, g Geometry, overscan int) Range {
	cols := m.Columns
	if cols < 1 {
		cols = 1
	}
	rh := m.RowHeight
	if rh <= 0 {
		rh = 1
	}
	if n <= 0 {
		return Range{}
	}
	totalRows := (n + cols - 1) / cols

	offset := math.Max(g.ScrollOffset, 0)
	first := clamp(int(math.Floor(offset/rh)), 0, totalRows)
	visibleRows := int(math.Ceil(math.Max(g.VisibleHeight, 0) / rh))

	startRow := clamp(first-overscan, 0, totalRows)
	endRow := clamp(first+visibleRows+1, startRow, totalRows)

	return Range{
		StartRow:      startRow,
		EndRow:        endRow,
		Start:         startRow * cols,
		End:           min(n, endRow*cols),
		TotalRows:     totalRows,
		PaddingBefore: float64(startRow) * rh,
		PaddingAfter:  float64(totalRows-endRow) * rh,
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
