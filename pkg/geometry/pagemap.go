package geometry

// PageMap converts rectangles between a page's logical pixel frame
// (top-left origin, the frame item coordinates live in) and the output
// document frame (bottom-left origin, typically PDF points). The two
// frames describe the same physical page, so each axis is scaled
// independently by the ratio of the output dimension to the logical
// dimension.
type PageMap struct {
	PageWidth    float64 // logical raster width
	PageHeight   float64 // logical raster height
	OutputWidth  float64 // native output page width
	OutputHeight float64 // native output page height
}

// NewPageMap creates a PageMap for one page.
func NewPageMap(pageWidth, pageHeight, outputWidth, outputHeight float64) PageMap {
	return PageMap{
		PageWidth:    pageWidth,
		PageHeight:   pageHeight,
		OutputWidth:  outputWidth,
		OutputHeight: outputHeight,
	}
}

// ScaleX returns the horizontal scale factor from page to output space.
func (m PageMap) ScaleX() float64 {
	return m.OutputWidth / m.PageWidth
}

// ScaleY returns the vertical scale factor from page to output space.
func (m PageMap) ScaleY() float64 {
	return m.OutputHeight / m.PageHeight
}

// ToOutput maps a page-logical rectangle to the output frame. The
// returned rectangle's X,Y is its lower-left corner in the output's
// bottom-left-origin frame: outputY = outputHeight - (y + h)*scaleY.
func (m PageMap) ToOutput(r Rect) Rect {
	sx := m.ScaleX()
	sy := m.ScaleY()
	return Rect{
		X:      r.X * sx,
		Y:      m.OutputHeight - r.Y*sy - r.Height*sy,
		Width:  r.Width * sx,
		Height: r.Height * sy,
	}
}

// FromOutput is the inverse of ToOutput: it maps an output-frame
// rectangle (bottom-left anchored) back to the page-logical frame.
func (m PageMap) FromOutput(r Rect) Rect {
	sx := m.ScaleX()
	sy := m.ScaleY()
	return Rect{
		X:      r.X / sx,
		Y:      (m.OutputHeight - r.Y - r.Height) / sy,
		Width:  r.Width / sx,
		Height: r.Height / sy,
	}
}

// ScreenToPage converts a screen position to page-logical coordinates.
// origin is the page's top-left corner on screen and zoom the current
// display scale. All interactive math happens in page space so stored
// item coordinates are zoom-invariant.
func ScreenToPage(screenX, screenY float64, origin Point2D, zoom float64) Point2D {
	return Point2D{
		X: (screenX - origin.X) / zoom,
		Y: (screenY - origin.Y) / zoom,
	}
}

// PageToScreen converts page-logical coordinates to screen coordinates.
func PageToScreen(pageX, pageY float64, origin Point2D, zoom float64) Point2D {
	return Point2D{
		X: pageX*zoom + origin.X,
		Y: pageY*zoom + origin.Y,
	}
}
