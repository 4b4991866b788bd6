package canvas

import (
	"fmt"
	"image"
	"image/color"
	"log"
	"math"

	"signflow/internal/annotation"
	"signflow/internal/compose"
	"signflow/pkg/geometry"
)

var (
	backgroundGray = color.RGBA{R: 0x32, G: 0x36, B: 0x3A, A: 0xFF}
	selectionBlue  = color.RGBA{R: 0x3B, G: 0x82, B: 0xF6, A: 0xFF}
	handleFill     = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
)

const handleSizePx = 8

// assetCache keeps the rendered bitmap of each item between frames.
// Entries are keyed by item id and a fingerprint of the fields that
// affect the bitmap, so a moved item reuses its asset while an edited
// one re-renders.
type assetCache struct {
	entries map[string]cachedAsset
}

type cachedAsset struct {
	fingerprint string
	img         image.Image
}

func newAssetCache() assetCache {
	return assetCache{entries: make(map[string]cachedAsset)}
}

func (c *assetCache) invalidateAll() {
	c.entries = make(map[string]cachedAsset)
}

// invalidateText drops text-derived assets, whose bitmaps change on
// font-size-scaling resizes. Image assets only ever stretch.
func (c *assetCache) invalidateText() {
	c.entries = make(map[string]cachedAsset)
}

func fingerprint(it *annotation.Item) string {
	return fmt.Sprintf("%s|%s|%s|%s|%t|%t|%g|%g|%g",
		it.Kind, it.Content, it.FontFamily, it.Color, it.Bold, it.Italic,
		it.FontSize, it.Width, it.Height)
}

// asset returns the item's rendered bitmap, rendering it on a miss.
func (c *assetCache) asset(it *annotation.Item, ras *compose.Rasterizer) image.Image {
	fp := fingerprint(it)
	if e, ok := c.entries[it.ID]; ok && e.fingerprint == fp {
		return e.img
	}

	var img image.Image
	var err error
	if it.Kind.IsImage() {
		img, err = compose.DecodeContent(it.Content)
	} else {
		img, err = ras.Rasterize(it)
	}
	if err != nil {
		log.Printf("canvas: render item %s: %v", it.ID, err)
		return nil
	}
	c.entries[it.ID] = cachedAsset{fingerprint: fp, img: img}
	return img
}

// draw renders the visible canvas: page raster, items, and the
// selection chrome, all scaled by the current zoom.
func (pc *PageCanvas) draw(w, h int) image.Image {
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	fillRGBA(out, backgroundGray)

	if pc.page == nil {
		return out
	}

	blitScaled(out, pc.page.Raster, geometry.NewRect(0, 0, pc.page.Width*pc.zoom, pc.page.Height*pc.zoom), 1)

	for _, it := range pc.model.ItemsOnPage(pc.page.PageIndex) {
		asset := pc.assets.asset(it, pc.ras)
		if asset == nil {
			continue
		}
		dst := scaleRect(it.Rect(), pc.zoom)
		if it.RotationDegrees == 0 {
			blitScaled(out, asset, dst, it.Opacity)
		} else {
			blitRotated(out, asset, dst, it.RotationDegrees, it.Opacity)
		}
	}

	if sel := pc.controller.Selected(); sel != nil && sel.PageIndex == pc.page.PageIndex {
		pc.drawSelection(out, scaleRect(sel.Rect(), pc.zoom))
	}
	return out
}

func scaleRect(r geometry.Rect, zoom float64) geometry.Rect {
	return geometry.NewRect(r.X*zoom, r.Y*zoom, r.Width*zoom, r.Height*zoom)
}

func fillRGBA(img *image.RGBA, c color.RGBA) {
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
	}
}

// blitScaled draws src into dst at the given rectangle with nearest
// neighbor sampling and source-over blending scaled by opacity.
func blitScaled(dst *image.RGBA, src image.Image, rect geometry.Rect, opacity float64) {
	sb := src.Bounds()
	if rect.Width <= 0 || rect.Height <= 0 || sb.Dx() == 0 || sb.Dy() == 0 {
		return
	}

	x0, y0 := int(rect.X), int(rect.Y)
	x1, y1 := int(rect.X+rect.Width), int(rect.Y+rect.Height)
	clampRange(&x0, &x1, dst.Bounds().Max.X)
	clampRange(&y0, &y1, dst.Bounds().Max.Y)

	sx := float64(sb.Dx()) / rect.Width
	sy := float64(sb.Dy()) / rect.Height
	for y := y0; y < y1; y++ {
		srcY := sb.Min.Y + int((float64(y)-rect.Y)*sy)
		for x := x0; x < x1; x++ {
			srcX := sb.Min.X + int((float64(x)-rect.X)*sx)
			blendPixel(dst, x, y, src.At(srcX, srcY), opacity)
		}
	}
}

// blitRotated draws src into dst at rect rotated about the rect center.
// Destination pixels inside the rotated bounds are inverse-mapped back
// to the source.
func blitRotated(dst *image.RGBA, src image.Image, rect geometry.Rect, degrees, opacity float64) {
	sb := src.Bounds()
	if rect.Width <= 0 || rect.Height <= 0 || sb.Dx() == 0 || sb.Dy() == 0 {
		return
	}

	center := rect.Center()
	inv := geometry.Translation(center.X, center.Y).
		Compose(geometry.Rotation(-degrees * math.Pi / 180)).
		Compose(geometry.Translation(-center.X, -center.Y))

	// Sweep the rotated rectangle's axis-aligned bounds.
	half := math.Hypot(rect.Width, rect.Height) / 2
	x0, y0 := int(center.X-half), int(center.Y-half)
	x1, y1 := int(center.X+half)+1, int(center.Y+half)+1
	clampRange(&x0, &x1, dst.Bounds().Max.X)
	clampRange(&y0, &y1, dst.Bounds().Max.Y)

	sx := float64(sb.Dx()) / rect.Width
	sy := float64(sb.Dy()) / rect.Height
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			p := inv.Apply(geometry.NewPoint2D(float64(x), float64(y)))
			if p.X < rect.X || p.X >= rect.X+rect.Width || p.Y < rect.Y || p.Y >= rect.Y+rect.Height {
				continue
			}
			srcX := sb.Min.X + int((p.X-rect.X)*sx)
			srcY := sb.Min.Y + int((p.Y-rect.Y)*sy)
			blendPixel(dst, x, y, src.At(srcX, srcY), opacity)
		}
	}
}

func clampRange(lo, hi *int, max int) {
	if *lo < 0 {
		*lo = 0
	}
	if *hi > max {
		*hi = max
	}
}

// blendPixel source-over composites one pixel with an extra opacity
// factor.
func blendPixel(dst *image.RGBA, x, y int, c color.Color, opacity float64) {
	sr, sg, sb, sa := c.RGBA()
	if sa == 0 || opacity <= 0 {
		return
	}
	alpha := float64(sa) / 0xffff * opacity
	if alpha > 1 {
		alpha = 1
	}

	i := dst.PixOffset(x, y)
	blend := func(s uint32, d uint8) uint8 {
		return uint8(float64(s>>8)*alpha + float64(d)*(1-alpha))
	}
	dst.Pix[i+0] = blend(sr, dst.Pix[i+0])
	dst.Pix[i+1] = blend(sg, dst.Pix[i+1])
	dst.Pix[i+2] = blend(sb, dst.Pix[i+2])
	a := float64(dst.Pix[i+3]) + alpha*255
	if a > 255 {
		a = 255
	}
	dst.Pix[i+3] = uint8(a)
}

// drawSelection draws the selection ring and the four corner handles.
func (pc *PageCanvas) drawSelection(out *image.RGBA, rect geometry.Rect) {
	x0, y0 := int(rect.X), int(rect.Y)
	x1, y1 := int(rect.X+rect.Width), int(rect.Y+rect.Height)

	drawHLine(out, x0, x1, y0, selectionBlue)
	drawHLine(out, x0, x1, y1, selectionBlue)
	drawVLine(out, y0, y1, x0, selectionBlue)
	drawVLine(out, y0, y1, x1, selectionBlue)

	for _, h := range [][2]int{{x0, y0}, {x1, y0}, {x0, y1}, {x1, y1}} {
		drawHandle(out, h[0], h[1])
	}
}

func drawHandle(out *image.RGBA, cx, cy int) {
	r := handleSizePx / 2
	for y := cy - r; y <= cy+r; y++ {
		for x := cx - r; x <= cx+r; x++ {
			if !image.Pt(x, y).In(out.Bounds()) {
				continue
			}
			c := handleFill
			if x == cx-r || x == cx+r || y == cy-r || y == cy+r {
				c = selectionBlue
			}
			out.SetRGBA(x, y, c)
		}
	}
}

func drawHLine(out *image.RGBA, x0, x1, y int, c color.RGBA) {
	if y < 0 || y >= out.Bounds().Max.Y {
		return
	}
	clampRange(&x0, &x1, out.Bounds().Max.X-1)
	for x := x0; x <= x1; x++ {
		out.SetRGBA(x, y, c)
	}
}

func drawVLine(out *image.RGBA, y0, y1, x int, c color.RGBA) {
	if x < 0 || x >= out.Bounds().Max.X {
		return
	}
	clampRange(&y0, &y1, out.Bounds().Max.Y-1)
	for y := y0; y <= y1; y++ {
		out.SetRGBA(x, y, c)
	}
}
