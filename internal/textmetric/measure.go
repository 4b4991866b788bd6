// Package textmetric measures rendered text so item boxes can be derived
// from their content instead of authored independently.
package textmetric

// Layout constants shared by the model and the compositor. Box width is
// the measured advance plus half the font size of slack, so glyphs with
// overhang (italics, swashes) are not clipped; single-line box height is
// always 1.5 times the font size.
const (
	WidthPad      = 0.5
	LineHeight    = 1.5
	FallbackWidth = 200.0
)

// Style describes the font attributes that affect measurement.
type Style struct {
	Family string
	Size   float64
	Bold   bool
	Italic bool
}

// Measurer reports the advance width, in pixels, of a single line of
// text rendered with the given style. Implementations must be
// deterministic for a fixed font backend.
type Measurer interface {
	Measure(text string, style Style) (float64, error)
}

// MeasureFunc adapts a function to the Measurer interface.
type MeasureFunc func(text string, style Style) (float64, error)

// Measure calls f.
func (f MeasureFunc) Measure(text string, style Style) (float64, error) {
	return f(text, style)
}

// BoxWidth returns the item box width for text under the given style:
// the measured width plus the overhang pad. If measurement fails the
// fixed fallback width is returned, so item creation never hard-fails.
func BoxWidth(m Measurer, text string, style Style) float64 {
	w, err := m.Measure(text, style)
	if err != nil {
		return FallbackWidth
	}
	return w + style.Size*WidthPad
}

// BoxHeight returns the single-line item box height for a font size.
func BoxHeight(fontSize float64) float64 {
	return fontSize * LineHeight
}
