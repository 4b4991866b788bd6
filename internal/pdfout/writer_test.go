package pdfout

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"codeberg.org/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signflow/internal/compose"
	"signflow/pkg/geometry"
)

// basePDF builds a plain source document with fpdf itself.
func basePDF(t *testing.T, pages int) []byte {
	t.Helper()
	pdf := fpdf.New("P", "pt", "A4", "")
	for i := 0; i < pages; i++ {
		pdf.AddPage()
		pdf.SetFont("Helvetica", "", 12)
		pdf.Text(72, 72, "source page")
	}
	var buf bytes.Buffer
	require.NoError(t, pdf.Output(&buf))
	return buf.Bytes()
}

func redSquare(side int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, side, side))
	for y := 0; y < side; y++ {
		for x := 0; x < side; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 0xdc, G: 0x26, B: 0x26, A: 0xff})
		}
	}
	return img
}

func TestPageSizes(t *testing.T) {
	doc := basePDF(t, 3)

	sizes, err := NewWriter().PageSizes(doc)
	require.NoError(t, err)
	require.Len(t, sizes, 3)
	for _, s := range sizes {
		assert.InDelta(t, 595.28, s.Width, 0.5)
		assert.InDelta(t, 841.89, s.Height, 0.5)
	}
}

func TestPageSizesBadDocument(t *testing.T) {
	_, err := NewWriter().PageSizes([]byte("not a pdf"))
	assert.Error(t, err)
}

func TestWriteStampsOverlay(t *testing.T) {
	doc := basePDF(t, 2)

	placed := []compose.PlacedImage{
		{
			PageIndex: 0,
			Image:     redSquare(16),
			Rect:      geometry.NewRect(100, 200, 80, 80),
			Opacity:   1,
		},
		{
			PageIndex:       1,
			Image:           redSquare(16),
			Rect:            geometry.NewRect(300, 400, 50, 50),
			RotationDegrees: 45,
			Opacity:         0.5,
		},
	}

	var out bytes.Buffer
	require.NoError(t, NewWriter().Write(doc, placed, &out))

	got := out.Bytes()
	require.Greater(t, len(got), len(doc))
	assert.True(t, bytes.HasPrefix(got, []byte("%PDF-")))

	// The result itself must be a readable two page document.
	sizes, err := NewWriter().PageSizes(got)
	require.NoError(t, err)
	assert.Len(t, sizes, 2)
}

func TestWriteNoOverlays(t *testing.T) {
	doc := basePDF(t, 1)

	var out bytes.Buffer
	require.NoError(t, NewWriter().Write(doc, nil, &out))
	assert.True(t, bytes.HasPrefix(out.Bytes(), []byte("%PDF-")))
}
