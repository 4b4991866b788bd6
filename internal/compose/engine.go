package compose

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"log"
	"strings"

	"signflow/internal/annotation"
	"signflow/pkg/geometry"
)

// Failure classes. Per-item failures are logged and skipped; document
// level failures abort the whole export.
var (
	ErrBadDocument    = errors.New("source document unreadable")
	ErrPageOutOfRange = errors.New("item page beyond document")
	ErrEmbedFailed    = errors.New("asset could not be embedded")
)

// PlacedImage is one resolved overlay: a decoded bitmap and its
// destination rectangle in output space (origin bottom-left, output
// units).
type PlacedImage struct {
	PageIndex       int
	Image           image.Image
	Rect            geometry.Rect
	RotationDegrees float64
	Opacity         float64
}

// DocumentWriter is the output backend. PageSizes probes the native
// page dimensions of a source document; Write re-emits the document
// with the placed overlays stamped on.
type DocumentWriter interface {
	PageSizes(doc []byte) ([]geometry.Size, error)
	Write(doc []byte, placed []PlacedImage, out io.Writer) error
}

// Report summarizes one export.
type Report struct {
	Placed  int
	Skipped int
}

// Engine resolves a model's items against a source document and drives
// a DocumentWriter.
type Engine struct {
	ras    *Rasterizer
	writer DocumentWriter
}

// NewEngine creates an engine over a rasterizer and an output backend.
func NewEngine(ras *Rasterizer, writer DocumentWriter) *Engine {
	return &Engine{ras: ras, writer: writer}
}

// Compose stamps every model item onto doc and writes the result to
// out. logical holds the page-logical dimensions each page's items were
// authored against, indexed by page. Items that cannot be resolved or
// rasterized are logged and skipped; the export still produces a
// document from the items that survive.
func (e *Engine) Compose(doc []byte, logical []geometry.Size, model *annotation.Model, out io.Writer) (Report, error) {
	outSizes, err := e.writer.PageSizes(doc)
	if err != nil {
		return Report{}, fmt.Errorf("%w: %v", ErrBadDocument, err)
	}

	var rep Report
	var placed []PlacedImage
	for _, it := range model.Items() {
		p, err := e.resolve(it, logical, outSizes)
		if err != nil {
			rep.Skipped++
			log.Printf("compose: skipping item %s: %v", it.ID, err)
			continue
		}
		placed = append(placed, p)
		rep.Placed++
	}

	if err := e.writer.Write(doc, placed, out); err != nil {
		return rep, fmt.Errorf("write output: %w", err)
	}
	return rep, nil
}

// resolve turns one item into a placed overlay: output rectangle via
// the page's map, bitmap from content or the rasterizer.
func (e *Engine) resolve(it *annotation.Item, logical []geometry.Size, outSizes []geometry.Size) (PlacedImage, error) {
	if it.PageIndex < 0 || it.PageIndex >= len(outSizes) || it.PageIndex >= len(logical) {
		return PlacedImage{}, fmt.Errorf("%w: page %d", ErrPageOutOfRange, it.PageIndex)
	}

	pm := geometry.NewPageMap(
		logical[it.PageIndex].Width, logical[it.PageIndex].Height,
		outSizes[it.PageIndex].Width, outSizes[it.PageIndex].Height,
	)

	var img image.Image
	if it.Kind.IsImage() {
		decoded, err := DecodeContent(it.Content)
		if err != nil {
			return PlacedImage{}, fmt.Errorf("%w: %v", ErrEmbedFailed, err)
		}
		img = decoded
	} else {
		bm, err := e.ras.Rasterize(it)
		if err != nil {
			return PlacedImage{}, fmt.Errorf("%w: %v", ErrEmbedFailed, err)
		}
		img = bm
	}

	return PlacedImage{
		PageIndex:       it.PageIndex,
		Image:           img,
		Rect:            pm.ToOutput(it.Rect()),
		RotationDegrees: it.RotationDegrees,
		Opacity:         it.Opacity,
	}, nil
}

// DecodeContent decodes an image item's base64 PNG payload. A data URL
// prefix, if present, is stripped first.
func DecodeContent(content string) (image.Image, error) {
	if strings.HasPrefix(content, "data:") {
		if i := strings.IndexByte(content, ','); i >= 0 {
			content = content[i+1:]
		}
	}
	raw, err := base64.StdEncoding.DecodeString(content)
	if err != nil {
		return nil, fmt.Errorf("decode base64: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode png: %v", err)
	}
	return img, nil
}
