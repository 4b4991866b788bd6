package annotation

import (
	"fmt"

	"signflow/internal/textmetric"
)

// Corner identifies which resize handle a drag started on.
type Corner string

const (
	CornerNW Corner = "nw"
	CornerNE Corner = "ne"
	CornerSW Corner = "sw"
	CornerSE Corner = "se"
)

// Interactive resize limits, in page-logical units.
const (
	MinSize     = 20.0
	MinFontSize = 8.0
	MaxFontSize = 300.0
)

func (c Corner) hasWest() bool  { return c == CornerNW || c == CornerSW }
func (c Corner) hasNorth() bool { return c == CornerNW || c == CornerNE }

// ResizeSnapshot is the box and font size captured once at
// gesture start. Every frame of a resize drag is computed against this
// snapshot with the cumulative pointer delta, never against the live
// item, so repeated frames cannot compound.
type ResizeSnapshot struct {
	X, Y, W, H float64
	FontSize   float64
}

// SnapshotOf captures a resize snapshot of an item.
func SnapshotOf(it *Item) ResizeSnapshot {
	return ResizeSnapshot{X: it.X, Y: it.Y, W: it.Width, H: it.Height, FontSize: it.FontSize}
}

// ResizeCorner applies a corner drag to an item. dx, dy are the total
// pointer displacement since gesture start, in page-logical units.
//
// Image-like kinds resize their box freely. Text-like kinds instead
// scale their font size with the height ratio and re-measure the width,
// keeping the corner opposite the dragged one fixed.
func (m *Model) ResizeCorner(id string, corner Corner, dx, dy float64, snap ResizeSnapshot) error {
	it := m.Get(id)
	if it == nil {
		return fmt.Errorf("no item %q", id)
	}
	switch corner {
	case CornerNW, CornerNE, CornerSW, CornerSE:
	default:
		return fmt.Errorf("unknown corner %q", corner)
	}

	newW := snap.W + dx
	if corner.hasWest() {
		newW = snap.W - dx
	}
	if newW < MinSize {
		newW = MinSize
	}

	newH := snap.H + dy
	if corner.hasNorth() {
		newH = snap.H - dy
	}
	if newH < MinSize {
		newH = MinSize
	}

	if it.Kind.IsText() {
		// Font size tracks the height ratio; width follows the re-measured
		// text so the box never distorts the glyphs.
		ratio := newH / snap.H
		size := snap.FontSize * ratio
		if size < MinFontSize {
			size = MinFontSize
		} else if size > MaxFontSize {
			size = MaxFontSize
		}
		it.FontSize = size
		newW = textmetric.BoxWidth(m.measurer, it.Content, it.TextStyle())
		newH = textmetric.BoxHeight(size)
	}

	it.Width = newW
	it.Height = newH

	// Re-anchor so the corner opposite the dragged one stays fixed.
	if corner.hasWest() {
		it.X = snap.X + (snap.W - newW)
	} else {
		it.X = snap.X
	}
	if corner.hasNorth() {
		it.Y = snap.Y + (snap.H - newH)
	} else {
		it.Y = snap.Y
	}
	return nil
}
