package page

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signflow/pkg/geometry"
)

func writePNG(t *testing.T, path string, w, h int, fill color.Color) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, fill)
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestDirRendererOrdersByFilename(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "page-02.png"), 300, 400, color.White)
	writePNG(t, filepath.Join(dir, "page-01.png"), 200, 100, color.White)
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644)

	pages, err := DirRenderer{}.RenderPages(dir)
	require.NoError(t, err)
	require.Len(t, pages, 2)

	assert.Equal(t, 0, pages[0].PageIndex)
	assert.Equal(t, 200.0, pages[0].Width)
	assert.Equal(t, 100.0, pages[0].Height)
	assert.Equal(t, 300.0, pages[1].Width)
	assert.Equal(t, 400.0, pages[1].Height)
}

func TestDirRendererEmptyDirectory(t *testing.T) {
	_, err := DirRenderer{}.RenderPages(t.TempDir())
	assert.Error(t, err)
}

type fixedProber struct {
	sizes []geometry.Size
}

func (p fixedProber) PageSizes(doc []byte) ([]geometry.Size, error) {
	return p.sizes, nil
}

func TestPDFRendererScalesPoints(t *testing.T) {
	src := filepath.Join(t.TempDir(), "doc.pdf")
	require.NoError(t, os.WriteFile(src, []byte("%PDF-1.4 stub"), 0o644))

	r := PDFRenderer{Prober: fixedProber{sizes: []geometry.Size{geometry.NewSize(612, 792)}}}
	pages, err := r.RenderPages(src)
	require.NoError(t, err)
	require.Len(t, pages, 1)

	assert.Equal(t, 612*DefaultPDFScale, pages[0].Width)
	assert.Equal(t, 792*DefaultPDFScale, pages[0].Height)
	require.NotNil(t, pages[0].Raster)
	assert.Equal(t, int(612*DefaultPDFScale), pages[0].Raster.Bounds().Dx())
}

func TestSizes(t *testing.T) {
	pages := []Page{
		{Width: 100, Height: 200},
		{Width: 300, Height: 400},
	}
	sizes := Sizes(pages)
	require.Len(t, sizes, 2)
	assert.Equal(t, geometry.NewSize(100, 200), sizes[0])
	assert.Equal(t, geometry.NewSize(300, 400), sizes[1])
}

func TestSummarize(t *testing.T) {
	white := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for i := range white.Pix {
		white.Pix[i] = 0xff
	}
	black := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for i := 3; i < len(black.Pix); i += 4 {
		black.Pix[i] = 0xff
	}

	s := Summarize([]Page{
		{Width: 100, Height: 200, Raster: white},
		{Width: 100, Height: 200, Raster: black},
	})
	assert.Equal(t, 2, s.PageCount)
	assert.Equal(t, 100.0, s.MeanWidth)
	assert.Equal(t, 200.0, s.MeanHeight)
	assert.True(t, s.UniformLayout)
	assert.InDelta(t, 0.5, s.MeanInkShare, 1e-9)

	s = Summarize([]Page{{Width: 100, Height: 200}, {Width: 300, Height: 200}})
	assert.False(t, s.UniformLayout)

	assert.Equal(t, Stats{}, Summarize(nil))
}
