package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageMapToOutput(t *testing.T) {
	// 900x1200 raster mapped onto a 612x792 letter page.
	m := NewPageMap(900, 1200, 612, 792)

	r := NewRect(0, 0, 900, 1200)
	out := m.ToOutput(r)
	assert.InDelta(t, 0, out.X, 1e-9)
	assert.InDelta(t, 0, out.Y, 1e-9)
	assert.InDelta(t, 612, out.Width, 1e-9)
	assert.InDelta(t, 792, out.Height, 1e-9)

	// A box at the top-left of the raster ends up at the top-left of the
	// page, which in the bottom-left-origin output frame is high Y.
	top := m.ToOutput(NewRect(0, 0, 90, 120))
	assert.InDelta(t, 0, top.X, 1e-9)
	assert.InDelta(t, 792-79.2, top.Y, 1e-9)
}

func TestPageMapRoundTrip(t *testing.T) {
	maps := []PageMap{
		NewPageMap(900, 1200, 612, 792),
		NewPageMap(1275, 1650, 612, 792),
		NewPageMap(500, 500, 500, 500),
	}
	rects := []Rect{
		NewRect(0, 0, 100, 40),
		NewRect(123.5, 456.25, 77.7, 18.2),
		NewRect(850, 1100, 40, 90),
	}

	for _, m := range maps {
		for _, r := range rects {
			got := m.FromOutput(m.ToOutput(r))
			assert.InDelta(t, r.X, got.X, 1e-9)
			assert.InDelta(t, r.Y, got.Y, 1e-9)
			assert.InDelta(t, r.Width, got.Width, 1e-9)
			assert.InDelta(t, r.Height, got.Height, 1e-9)
		}
	}
}

func TestScreenToPage(t *testing.T) {
	origin := NewPoint2D(40, 60)

	p := ScreenToPage(240, 260, origin, 2.0)
	assert.InDelta(t, 100, p.X, 1e-9)
	assert.InDelta(t, 100, p.Y, 1e-9)

	// Round trip through PageToScreen.
	s := PageToScreen(p.X, p.Y, origin, 2.0)
	assert.InDelta(t, 240, s.X, 1e-9)
	assert.InDelta(t, 260, s.Y, 1e-9)
}

func TestNormalizeDegrees(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{45, 45},
		{360, 0},
		{375, 15},
		{-15, 345},
		{-360, 0},
		{725, 5},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, NormalizeDegrees(tt.in), 1e-9, "NormalizeDegrees(%v)", tt.in)
	}
}

func TestAffineInverse(t *testing.T) {
	tr := Translation(10, -5).Compose(Rotation(0.3)).Compose(Scale(2, 3))
	inv, ok := tr.Inverse()
	assert.True(t, ok)

	p := NewPoint2D(7, 11)
	back := inv.Apply(tr.Apply(p))
	assert.InDelta(t, p.X, back.X, 1e-9)
	assert.InDelta(t, p.Y, back.Y, 1e-9)

	_, ok = Scale(0, 1).Inverse()
	assert.False(t, ok)
}
