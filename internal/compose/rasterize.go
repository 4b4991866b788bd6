// Package compose turns placed annotation items into positioned image
// assets on the output document's pages.
package compose

import (
	"fmt"
	"image"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"signflow/internal/annotation"
	"signflow/internal/textmetric"
	"signflow/pkg/colorutil"
)

// RenderScale is the supersampling factor for rasterized text assets.
// Assets are drawn at item-box size times this factor so they stay
// crisp after PDF placement.
const RenderScale = 3.0

// stampBorder is the LabelStamp frame thickness in page-logical units.
const stampBorder = 4.0

// Rasterizer draws text-like items into transparent bitmaps.
type Rasterizer struct {
	lib   *textmetric.Library
	scale float64
}

// NewRasterizer creates a rasterizer over a font library.
func NewRasterizer(lib *textmetric.Library) *Rasterizer {
	return &Rasterizer{lib: lib, scale: RenderScale}
}

// Rasterize renders a non-image item into a transparent RGBA bitmap at
// RenderScale times its box size. Image kinds are rejected; their
// content already is a bitmap.
func (r *Rasterizer) Rasterize(it *annotation.Item) (*image.RGBA, error) {
	if it.Kind.IsImage() {
		return nil, fmt.Errorf("item %s: kind %s carries its own bitmap", it.ID, it.Kind)
	}
	if it.Width <= 0 || it.Height <= 0 {
		return nil, fmt.Errorf("item %s: degenerate box %gx%g", it.ID, it.Width, it.Height)
	}

	w := int(it.Width*r.scale + 0.5)
	h := int(it.Height*r.scale + 0.5)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))

	style := it.TextStyle()
	style.Size *= r.scale
	ink := image.NewUniform(colorutil.ParseHex(it.Color))

	switch it.Kind {
	case annotation.KindStyledText, annotation.KindPlainText, annotation.KindDateStamp:
		return dst, r.drawText(dst, it.Content, style, ink, false)

	case annotation.KindLabelStamp:
		r.drawBorder(dst, ink)
		style.Bold = true
		return dst, r.drawText(dst, it.Content, style, ink, true)

	case annotation.KindSymbol:
		style.Bold = true
		return dst, r.drawText(dst, it.Content, style, ink, true)
	}
	return nil, fmt.Errorf("item %s: unknown kind %s", it.ID, it.Kind)
}

// drawText draws a single line, vertically centered. centered selects
// horizontal centering; otherwise the line is left-aligned with a small
// inset matching the measurement pad.
func (r *Rasterizer) drawText(dst *image.RGBA, text string, style textmetric.Style, ink image.Image, centered bool) error {
	face, err := r.lib.NewFace(style)
	if err != nil {
		return err
	}
	defer face.Close()

	d := font.Drawer{Dst: dst, Src: ink, Face: face}

	bounds := dst.Bounds()
	metrics := face.Metrics()
	baseline := (fixed.I(bounds.Dy()) + metrics.Ascent - metrics.Descent) / 2

	var x fixed.Int26_6
	if centered {
		x = (fixed.I(bounds.Dx()) - d.MeasureString(text)) / 2
		if x < 0 {
			x = 0
		}
	} else {
		x = fixed.Int26_6(style.Size * textmetric.WidthPad / 2 * 64)
	}

	d.Dot = fixed.Point26_6{X: x, Y: baseline}
	d.DrawString(text)
	return nil
}

// drawBorder frames the bitmap with the stamp border.
func (r *Rasterizer) drawBorder(dst *image.RGBA, ink image.Image) {
	b := dst.Bounds()
	t := int(stampBorder*r.scale + 0.5)
	if t*2 >= b.Dx() || t*2 >= b.Dy() {
		draw.Draw(dst, b, ink, image.Point{}, draw.Src)
		return
	}
	draw.Draw(dst, image.Rect(b.Min.X, b.Min.Y, b.Max.X, b.Min.Y+t), ink, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(b.Min.X, b.Max.Y-t, b.Max.X, b.Max.Y), ink, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(b.Min.X, b.Min.Y, b.Min.X+t, b.Max.Y), ink, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(b.Max.X-t, b.Min.Y, b.Max.X, b.Max.Y), ink, image.Point{}, draw.Src)
}
