// Package annotation holds the canonical collection of placed overlay
// items and the validated operations that mutate it.
package annotation

import (
	"time"

	"signflow/internal/textmetric"
	"signflow/pkg/geometry"
)

// Kind identifies what an item's Content means and how it is rendered.
type Kind string

const (
	KindFreehandImage Kind = "freehand" // drawn signature, base64 PNG content
	KindUploadedImage Kind = "image"    // uploaded picture, base64 PNG content
	KindStyledText    Kind = "styled_text"
	KindPlainText     Kind = "text"
	KindDateStamp     Kind = "date"
	KindLabelStamp    Kind = "stamp"
	KindSymbol        Kind = "symbol"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindFreehandImage, KindUploadedImage, KindStyledText,
		KindPlainText, KindDateStamp, KindLabelStamp, KindSymbol:
		return true
	}
	return false
}

// IsImage reports whether Content is an encoded bitmap.
func (k Kind) IsImage() bool {
	return k == KindFreehandImage || k == KindUploadedImage
}

// IsText reports whether the item box is derived from text metrics.
// Stamps and symbols draw text too, but their boxes are free.
func (k Kind) IsText() bool {
	return k == KindStyledText || k == KindPlainText || k == KindDateStamp
}

// Style defaults and kind default box sizes, in page-logical units.
const (
	DefaultFontSize = 32.0
	DefaultColor    = "#000000"

	imageDefaultW  = 150.0
	imageDefaultH  = 80.0
	stampDefaultW  = 150.0
	stampDefaultH  = 60.0
	symbolDefaultW = 50.0
	symbolDefaultH = 50.0
)

// Item is one placed overlay. All geometry is in the logical pixel
// frame of the page's rendered raster, never zoom-scaled screen pixels.
type Item struct {
	ID        string `json:"id"`
	Kind      Kind   `json:"kind"`
	PageIndex int    `json:"page_index"`

	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	RotationDegrees float64 `json:"rotation,omitempty"`
	Opacity         float64 `json:"opacity"`

	// Content is a literal string for text-like kinds and a base64 PNG
	// for image kinds.
	Content string `json:"content"`

	FontFamily string  `json:"font_family,omitempty"`
	Color      string  `json:"color,omitempty"`
	Bold       bool    `json:"bold,omitempty"`
	Italic     bool    `json:"italic,omitempty"`
	FontSize   float64 `json:"font_size,omitempty"`

	// DateStamp only: Content is derived from SourceTimestamp and
	// DateFormat, never parsed back from the displayed string.
	DateFormat      string    `json:"date_format,omitempty"`
	SourceTimestamp time.Time `json:"source_timestamp,omitempty"`
}

// Rect returns the item's bounding box.
func (it *Item) Rect() geometry.Rect {
	return geometry.NewRect(it.X, it.Y, it.Width, it.Height)
}

// TextStyle returns the measurement style for the item's current font
// attributes.
func (it *Item) TextStyle() textmetric.Style {
	return textmetric.Style{
		Family: it.FontFamily,
		Size:   it.FontSize,
		Bold:   it.Bold,
		Italic: it.Italic,
	}
}

// clone returns a deep copy of the item.
func (it *Item) clone() *Item {
	cp := *it
	return &cp
}
