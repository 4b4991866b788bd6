package page

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"

	"signflow/pkg/geometry"
)

// DefaultPDFScale converts PDF points to page-logical pixels. Two
// logical pixels per point keeps small text legible at 100% zoom.
const DefaultPDFScale = 2.0

// SizeProber reports the native page dimensions of a PDF. The output
// backend implements it.
type SizeProber interface {
	PageSizes(doc []byte) ([]geometry.Size, error)
}

// PDFRenderer derives pages from a PDF file. Dimensions come from the
// prober; the raster is a white sheet for the editor to draw overlays
// on. Page content preview is not rendered.
type PDFRenderer struct {
	Prober SizeProber
	Scale  float64
}

// RenderPages probes the PDF at path and builds one page per media
// box.
func (r PDFRenderer) RenderPages(source string) ([]Page, error) {
	doc, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	sizes, err := r.Prober.PageSizes(doc)
	if err != nil {
		return nil, fmt.Errorf("probe document: %w", err)
	}

	scale := r.Scale
	if scale <= 0 {
		scale = DefaultPDFScale
	}

	pages := make([]Page, len(sizes))
	for i, s := range sizes {
		w, h := s.Width*scale, s.Height*scale
		sheet := image.NewRGBA(image.Rect(0, 0, int(w+0.5), int(h+0.5)))
		draw.Draw(sheet, sheet.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
		pages[i] = Page{PageIndex: i, Width: w, Height: h, Raster: sheet}
	}
	return pages, nil
}
