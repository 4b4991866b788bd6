package textmetric

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// DefaultFamily is the font family used when an item's family is empty
// or not registered.
const DefaultFamily = "Go"

type faceKey struct {
	family string
	bold   bool
	italic bool
}

// Library holds parsed fonts and produces faces and measurements from
// them. The zero value is not usable; call NewLibrary, which registers
// the embedded Go fonts as the default family.
type Library struct {
	mu    sync.RWMutex
	fonts map[faceKey]*opentype.Font
}

// NewLibrary creates a Library with the embedded Go font family
// registered for all four weight/slant combinations.
func NewLibrary() (*Library, error) {
	l := &Library{fonts: make(map[faceKey]*opentype.Font)}

	embedded := []struct {
		bold, italic bool
		data         []byte
	}{
		{false, false, goregular.TTF},
		{true, false, gobold.TTF},
		{false, true, goitalic.TTF},
		{true, true, gobolditalic.TTF},
	}
	for _, e := range embedded {
		if err := l.Register(DefaultFamily, e.bold, e.italic, e.data); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Register parses TTF/OTF data and registers it under the given family
// and variant.
func (l *Library) Register(family string, bold, italic bool, data []byte) error {
	fnt, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("parse font %q: %w", family, err)
	}

	l.mu.Lock()
	l.fonts[faceKey{family, bold, italic}] = fnt
	l.mu.Unlock()
	return nil
}

// RegisterFile loads a font file and registers it under the given
// family and variant.
func (l *Library) RegisterFile(family string, bold, italic bool, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read font file: %w", err)
	}
	return l.Register(family, bold, italic, data)
}

// Families returns the registered family names.
func (l *Library) Families() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	seen := make(map[string]bool)
	var names []string
	for key := range l.fonts {
		if !seen[key.family] {
			seen[key.family] = true
			names = append(names, key.family)
		}
	}
	return names
}

// lookup resolves a family/variant to a parsed font, degrading to the
// family's regular cut and then to the default family.
func (l *Library) lookup(family string, bold, italic bool) *opentype.Font {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if family == "" {
		family = DefaultFamily
	}
	keys := []faceKey{
		{family, bold, italic},
		{family, false, false},
		{DefaultFamily, bold, italic},
		{DefaultFamily, false, false},
	}
	for _, k := range keys {
		if fnt, ok := l.fonts[k]; ok {
			return fnt
		}
	}
	return nil
}

// NewFace returns a rendering face for the style. The caller owns the
// face and should Close it when done.
func (l *Library) NewFace(style Style) (font.Face, error) {
	fnt := l.lookup(style.Family, style.Bold, style.Italic)
	if fnt == nil {
		return nil, fmt.Errorf("no font registered for family %q", style.Family)
	}
	return opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    style.Size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
}

// Measure implements Measurer using the registered fonts. Hinting is
// disabled so the result depends only on the font and size.
func (l *Library) Measure(text string, style Style) (float64, error) {
	face, err := l.NewFace(style)
	if err != nil {
		return 0, err
	}
	defer face.Close()

	d := font.Drawer{Face: face}
	adv := d.MeasureString(text)
	return float64(adv) / 64, nil
}
