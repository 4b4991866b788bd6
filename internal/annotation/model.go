package annotation

import (
	"fmt"
	"sort"
	"time"

	"signflow/internal/textmetric"
	"signflow/pkg/geometry"
)

// DuplicateOffset is the page-space shift applied to duplicated items.
const DuplicateOffset = 20.0

// Options carries the optional style attributes for a new item.
type Options struct {
	Content         string
	FontFamily      string
	Color           string
	Bold            bool
	Italic          bool
	FontSize        float64
	DateFormat      string
	SourceTimestamp time.Time
}

// Model is the canonical collection of placed items, keyed by page.
// Slice order within a page is z-order: appending puts an item in
// front. The model is mutated only through its named operations; the
// caller is responsible for history snapshots around them.
type Model struct {
	pages     map[int][]*Item
	measurer  textmetric.Measurer
	pageCount int
	nextID    int
}

// NewModel creates an empty model. The measurer is consulted whenever a
// text-like item's box must be re-derived from its content.
func NewModel(m textmetric.Measurer) *Model {
	return &Model{
		pages:    make(map[int][]*Item),
		measurer: m,
	}
}

// SetPageCount sets the number of pages items may reference. Zero
// disables the check.
func (m *Model) SetPageCount(n int) {
	m.pageCount = n
}

// PageCount returns the configured page count.
func (m *Model) PageCount() int {
	return m.pageCount
}

// Get returns the item with the given id, or nil.
func (m *Model) Get(id string) *Item {
	for _, items := range m.pages {
		for _, it := range items {
			if it.ID == id {
				return it
			}
		}
	}
	return nil
}

// ItemsOnPage returns the items of one page in z-order (back to front).
func (m *Model) ItemsOnPage(pageIndex int) []*Item {
	return m.pages[pageIndex]
}

// Items returns all items, pages in ascending order, z-order within
// each page.
func (m *Model) Items() []*Item {
	indexes := make([]int, 0, len(m.pages))
	for idx := range m.pages {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)

	var all []*Item
	for _, idx := range indexes {
		all = append(all, m.pages[idx]...)
	}
	return all
}

// Len returns the total number of items.
func (m *Model) Len() int {
	n := 0
	for _, items := range m.pages {
		n += len(items)
	}
	return n
}

// Add creates an item of the given kind centered on (centerX, centerY)
// in page-logical space. Box dimensions come from the per-kind default
// table; text-like kinds are measured from their content.
func (m *Model) Add(kind Kind, pageIndex int, centerX, centerY float64, opts Options) (*Item, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown item kind %q", kind)
	}
	if pageIndex < 0 || (m.pageCount > 0 && pageIndex >= m.pageCount) {
		return nil, fmt.Errorf("page index %d out of range", pageIndex)
	}

	m.nextID++
	it := &Item{
		ID:        fmt.Sprintf("sig-%d", m.nextID),
		Kind:      kind,
		PageIndex: pageIndex,
		Opacity:   1,
		Content:   opts.Content,

		FontFamily: opts.FontFamily,
		Color:      opts.Color,
		Bold:       opts.Bold,
		Italic:     opts.Italic,
		FontSize:   opts.FontSize,
	}
	if it.Color == "" {
		it.Color = DefaultColor
	}
	if it.FontSize <= 0 {
		it.FontSize = DefaultFontSize
	}

	switch {
	case kind == KindDateStamp:
		it.SourceTimestamp = opts.SourceTimestamp
		if it.SourceTimestamp.IsZero() {
			it.SourceTimestamp = time.Now()
		}
		it.DateFormat = opts.DateFormat
		if it.DateFormat == "" {
			it.DateFormat = DefaultDateFormat
		}
		it.Content = FormatDate(it.SourceTimestamp, it.DateFormat)
		m.fitTextBox(it)
	case kind.IsText():
		m.fitTextBox(it)
	case kind.IsImage():
		it.Width, it.Height = imageDefaultW, imageDefaultH
	case kind == KindLabelStamp:
		it.Width, it.Height = stampDefaultW, stampDefaultH
	case kind == KindSymbol:
		it.Width, it.Height = symbolDefaultW, symbolDefaultH
	}

	it.X = centerX - it.Width/2
	it.Y = centerY - it.Height/2

	m.pages[pageIndex] = append(m.pages[pageIndex], it)
	return it, nil
}

// Move translates an item. Width, height and font size are untouched.
func (m *Model) Move(id string, dx, dy float64) error {
	it := m.Get(id)
	if it == nil {
		return fmt.Errorf("no item %q", id)
	}
	it.X += dx
	it.Y += dy
	return nil
}

// Rotate adds delta degrees to an item's rotation, normalized to
// [0, 360).
func (m *Model) Rotate(id string, delta float64) error {
	it := m.Get(id)
	if it == nil {
		return fmt.Errorf("no item %q", id)
	}
	it.RotationDegrees = geometry.NormalizeDegrees(it.RotationDegrees + delta)
	return nil
}

// SetOpacity sets an item's opacity, clamped to [0, 1].
func (m *Model) SetOpacity(id string, opacity float64) error {
	it := m.Get(id)
	if it == nil {
		return fmt.Errorf("no item %q", id)
	}
	if opacity < 0 {
		opacity = 0
	} else if opacity > 1 {
		opacity = 1
	}
	it.Opacity = opacity
	return nil
}

// SetColor sets an item's ink color (hex string).
func (m *Model) SetColor(id string, hex string) error {
	it := m.Get(id)
	if it == nil {
		return fmt.Errorf("no item %q", id)
	}
	it.Color = hex
	return nil
}

// SetContent replaces an item's content. For text-like kinds the box
// width is re-derived from the new text. DateStamp content is derived
// state; use SetDateFormat instead.
func (m *Model) SetContent(id string, content string) error {
	it := m.Get(id)
	if it == nil {
		return fmt.Errorf("no item %q", id)
	}
	it.Content = content
	if it.Kind.IsText() {
		it.Width = textmetric.BoxWidth(m.measurer, it.Content, it.TextStyle())
	}
	return nil
}

// SetFontSize sets the font size, re-deriving width and height for
// text-like kinds.
func (m *Model) SetFontSize(id string, size float64) error {
	it := m.Get(id)
	if it == nil {
		return fmt.Errorf("no item %q", id)
	}
	it.FontSize = size
	if it.Kind.IsText() {
		m.fitTextBox(it)
	}
	return nil
}

// SetFontFamily sets the font family, re-deriving width for text-like
// kinds.
func (m *Model) SetFontFamily(id string, family string) error {
	it := m.Get(id)
	if it == nil {
		return fmt.Errorf("no item %q", id)
	}
	it.FontFamily = family
	if it.Kind.IsText() {
		it.Width = textmetric.BoxWidth(m.measurer, it.Content, it.TextStyle())
	}
	return nil
}

// SetBold sets the bold flag, re-deriving width for text-like kinds.
func (m *Model) SetBold(id string, bold bool) error {
	it := m.Get(id)
	if it == nil {
		return fmt.Errorf("no item %q", id)
	}
	it.Bold = bold
	if it.Kind.IsText() {
		it.Width = textmetric.BoxWidth(m.measurer, it.Content, it.TextStyle())
	}
	return nil
}

// SetItalic sets the italic flag, re-deriving width for text-like kinds.
func (m *Model) SetItalic(id string, italic bool) error {
	it := m.Get(id)
	if it == nil {
		return fmt.Errorf("no item %q", id)
	}
	it.Italic = italic
	if it.Kind.IsText() {
		it.Width = textmetric.BoxWidth(m.measurer, it.Content, it.TextStyle())
	}
	return nil
}

// SetDateFormat changes a DateStamp's format and regenerates its
// content from the stored timestamp.
func (m *Model) SetDateFormat(id string, format string) error {
	it := m.Get(id)
	if it == nil {
		return fmt.Errorf("no item %q", id)
	}
	if it.Kind != KindDateStamp {
		return fmt.Errorf("item %q is not a date stamp", id)
	}
	it.DateFormat = format
	it.Content = FormatDate(it.SourceTimestamp, it.DateFormat)
	it.Width = textmetric.BoxWidth(m.measurer, it.Content, it.TextStyle())
	return nil
}

// Duplicate clones an item under a new id, offset down-right, and
// returns the clone.
func (m *Model) Duplicate(id string) (*Item, error) {
	it := m.Get(id)
	if it == nil {
		return nil, fmt.Errorf("no item %q", id)
	}

	m.nextID++
	cp := it.clone()
	cp.ID = fmt.Sprintf("sig-%d", m.nextID)
	cp.X += DuplicateOffset
	cp.Y += DuplicateOffset

	m.pages[cp.PageIndex] = append(m.pages[cp.PageIndex], cp)
	return cp, nil
}

// Delete removes an item.
func (m *Model) Delete(id string) error {
	for page, items := range m.pages {
		for i, it := range items {
			if it.ID == id {
				m.pages[page] = append(items[:i], items[i+1:]...)
				return nil
			}
		}
	}
	return fmt.Errorf("no item %q", id)
}

// Clear removes all items. The id counter is not reset, so ids are
// never reused within a session.
func (m *Model) Clear() {
	m.pages = make(map[int][]*Item)
}

// fitTextBox re-derives both box dimensions from the item's text.
func (m *Model) fitTextBox(it *Item) {
	it.Width = textmetric.BoxWidth(m.measurer, it.Content, it.TextStyle())
	it.Height = textmetric.BoxHeight(it.FontSize)
}

// Snapshot is an immutable deep copy of the per-page item collections.
type Snapshot map[int][]Item

// Snapshot captures the current model state.
func (m *Model) Snapshot() Snapshot {
	snap := make(Snapshot, len(m.pages))
	for page, items := range m.pages {
		cp := make([]Item, len(items))
		for i, it := range items {
			cp[i] = *it
		}
		snap[page] = cp
	}
	return snap
}

// Restore replaces the model's contents wholesale with a snapshot. The
// id counter is advanced past every restored id so later additions stay
// unique.
func (m *Model) Restore(snap Snapshot) {
	m.pages = make(map[int][]*Item, len(snap))
	for page, items := range snap {
		cp := make([]*Item, len(items))
		for i := range items {
			it := items[i]
			cp[i] = &it
			var n int
			if _, err := fmt.Sscanf(it.ID, "sig-%d", &n); err == nil && n > m.nextID {
				m.nextID = n
			}
		}
		if len(cp) > 0 {
			m.pages[page] = cp
		}
	}
}
