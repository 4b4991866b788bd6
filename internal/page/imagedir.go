package page

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "golang.org/x/image/tiff"
)

// DirRenderer treats a directory of image files as a document: each
// image, in filename order, is one page. Scanned contracts often
// arrive this way.
type DirRenderer struct{}

var pageImageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".tif":  true,
	".tiff": true,
}

// RenderPages loads every supported image in the directory, sorted by
// filename.
func (DirRenderer) RenderPages(source string) ([]Page, error) {
	entries, err := os.ReadDir(source)
	if err != nil {
		return nil, fmt.Errorf("read page directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if pageImageExts[strings.ToLower(filepath.Ext(e.Name()))] {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no page images in %s", source)
	}
	sort.Strings(names)

	pages := make([]Page, 0, len(names))
	for i, name := range names {
		img, err := loadImage(filepath.Join(source, name))
		if err != nil {
			return nil, fmt.Errorf("page %d (%s): %w", i, name, err)
		}
		b := img.Bounds()
		pages = append(pages, Page{
			PageIndex: i,
			Width:     float64(b.Dx()),
			Height:    float64(b.Dy()),
			Raster:    img,
		})
	}
	return pages, nil
}

func loadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}
