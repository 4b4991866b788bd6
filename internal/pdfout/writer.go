// Package pdfout writes the final document: it re-imports the source
// PDF page by page and stamps the resolved overlay images on top.
package pdfout

import (
	"bytes"
	"fmt"
	"image/png"
	"io"

	"codeberg.org/go-pdf/fpdf"
	"codeberg.org/go-pdf/fpdf/contrib/gofpdi"

	"signflow/internal/compose"
	"signflow/pkg/geometry"
)

// Writer implements compose.DocumentWriter over fpdf. The importer
// panics on malformed input, so every entry point converts panics into
// errors.
type Writer struct{}

// NewWriter returns a PDF output backend.
func NewWriter() *Writer {
	return &Writer{}
}

// PageSizes probes the native page dimensions of a PDF, in points.
func (w *Writer) PageSizes(doc []byte) (sizes []geometry.Size, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("read pdf: %v", r)
		}
	}()

	pdf := fpdf.New("P", "pt", "", "")
	imp := gofpdi.NewImporter()
	rs := io.ReadSeeker(bytes.NewReader(doc))

	// Importing the first page loads the whole source catalog.
	imp.ImportPageFromStream(pdf, &rs, 1, "/MediaBox")
	if pdf.Err() {
		return nil, fmt.Errorf("read pdf: %v", pdf.Error())
	}
	return pageSizes(imp)
}

// Write re-emits doc with the placed overlays stamped on. Overlay
// rectangles arrive in the bottom-left output frame and are converted
// to fpdf's top-left frame here.
func (w *Writer) Write(doc []byte, placed []compose.PlacedImage, out io.Writer) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("write pdf: %v", r)
		}
	}()

	pdf := fpdf.New("P", "pt", "", "")
	imp := gofpdi.NewImporter()
	rs := io.ReadSeeker(bytes.NewReader(doc))

	firstTpl := imp.ImportPageFromStream(pdf, &rs, 1, "/MediaBox")
	if pdf.Err() {
		return fmt.Errorf("read pdf: %v", pdf.Error())
	}
	sizes, err := pageSizes(imp)
	if err != nil {
		return err
	}

	byPage := make(map[int][]compose.PlacedImage)
	for _, pl := range placed {
		byPage[pl.PageIndex] = append(byPage[pl.PageIndex], pl)
	}

	assetSeq := 0
	for p := 0; p < len(sizes); p++ {
		pw, ph := sizes[p].Width, sizes[p].Height
		orient := "P"
		if pw > ph {
			orient = "L"
		}
		pdf.AddPageFormat(orient, fpdf.SizeType{Wd: pw, Ht: ph})

		tpl := firstTpl
		if p > 0 {
			tpl = imp.ImportPageFromStream(pdf, &rs, p+1, "/MediaBox")
		}
		imp.UseImportedTemplate(pdf, tpl, 0, 0, pw, 0)

		for _, pl := range byPage[p] {
			assetSeq++
			stamp(pdf, pl, ph, assetSeq)
		}
	}

	if err := pdf.Output(out); err != nil {
		return fmt.Errorf("emit pdf: %w", err)
	}
	return nil
}

// stamp draws one overlay image onto the current page.
func stamp(pdf *fpdf.Fpdf, pl compose.PlacedImage, pageH float64, seq int) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, pl.Image); err != nil {
		pdf.SetError(fmt.Errorf("encode overlay %d: %w", seq, err))
		return
	}

	name := fmt.Sprintf("overlay-%d", seq)
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(name, opts, &buf)

	x := pl.Rect.X
	yTop := pageH - pl.Rect.Y - pl.Rect.Height

	if pl.Opacity < 1 {
		pdf.SetAlpha(pl.Opacity, "Normal")
	}
	if pl.RotationDegrees != 0 {
		pdf.TransformBegin()
		// Item rotation reads clockwise in the top-left editor frame;
		// fpdf rotates counter-clockwise, so the sign flips.
		pdf.TransformRotate(-pl.RotationDegrees, x+pl.Rect.Width/2, yTop+pl.Rect.Height/2)
	}

	pdf.ImageOptions(name, x, yTop, pl.Rect.Width, pl.Rect.Height, false, opts, 0, "")

	if pl.RotationDegrees != 0 {
		pdf.TransformEnd()
	}
	if pl.Opacity < 1 {
		pdf.SetAlpha(1, "Normal")
	}
}

// pageSizes reads the imported source's MediaBox table into ordered
// page sizes.
func pageSizes(imp *gofpdi.Importer) ([]geometry.Size, error) {
	table := imp.GetPageSizes()
	if len(table) == 0 {
		return nil, fmt.Errorf("pdf has no pages")
	}

	sizes := make([]geometry.Size, len(table))
	for p := 1; p <= len(table); p++ {
		box, ok := table[p]["/MediaBox"]
		if !ok {
			return nil, fmt.Errorf("page %d has no media box", p)
		}
		sizes[p-1] = geometry.NewSize(box["w"], box["h"])
	}
	return sizes, nil
}
