package page

import (
	"image"

	"gonum.org/v1/gonum/stat"
)

// Stats summarizes a loaded document for the status display.
type Stats struct {
	PageCount     int
	MeanWidth     float64
	MeanHeight    float64
	WidthStdDev   float64
	HeightStdDev  float64
	MeanInkShare  float64 // fraction of non-white raster pixels, averaged over pages
	UniformLayout bool    // all pages share one size
}

// Summarize computes document statistics over a page list.
func Summarize(pages []Page) Stats {
	if len(pages) == 0 {
		return Stats{}
	}

	widths := make([]float64, len(pages))
	heights := make([]float64, len(pages))
	ink := make([]float64, 0, len(pages))
	for i, p := range pages {
		widths[i] = p.Width
		heights[i] = p.Height
		if p.Raster != nil {
			ink = append(ink, inkShare(p.Raster))
		}
	}

	s := Stats{
		PageCount:    len(pages),
		MeanWidth:    stat.Mean(widths, nil),
		MeanHeight:   stat.Mean(heights, nil),
		WidthStdDev:  stat.StdDev(widths, nil),
		HeightStdDev: stat.StdDev(heights, nil),
	}
	if len(ink) > 0 {
		s.MeanInkShare = stat.Mean(ink, nil)
	}
	s.UniformLayout = s.WidthStdDev == 0 && s.HeightStdDev == 0
	return s
}

// inkShare estimates how much of a raster is ink by sampling a grid
// and counting pixels darker than near-white.
func inkShare(img image.Image) float64 {
	const grid = 64
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return 0
	}

	stepX := b.Dx() / grid
	if stepX < 1 {
		stepX = 1
	}
	stepY := b.Dy() / grid
	if stepY < 1 {
		stepY = 1
	}

	var total, dark int
	for y := b.Min.Y; y < b.Max.Y; y += stepY {
		for x := b.Min.X; x < b.Max.X; x += stepX {
			r, g, bl, a := img.At(x, y).RGBA()
			total++
			if a > 0 && (r < 0xe000 || g < 0xe000 || bl < 0xe000) {
				dark++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(dark) / float64(total)
}
