// Package page loads the document pages the editor annotates: their
// rasters for display and their logical dimensions for item geometry.
package page

import (
	"image"

	"signflow/pkg/geometry"
)

// Page is one rendered document page. Width and Height are the
// page-logical dimensions every item on the page is authored against;
// for raster-backed sources they equal the raster's pixel dimensions.
type Page struct {
	PageIndex int
	Width     float64
	Height    float64
	Raster    image.Image
}

// Size returns the page-logical dimensions.
func (p Page) Size() geometry.Size {
	return geometry.NewSize(p.Width, p.Height)
}

// Sizes extracts the logical dimensions of a page list, in order.
func Sizes(pages []Page) []geometry.Size {
	sizes := make([]geometry.Size, len(pages))
	for i, p := range pages {
		sizes[i] = p.Size()
	}
	return sizes
}

// Renderer produces display rasters for a document source.
type Renderer interface {
	RenderPages(source string) ([]Page, error)
}
