// Package colorutil provides shared color utilities for the application.
package colorutil

import (
	"fmt"
	"image/color"
	"strings"
)

// Common ink colors offered in the editor palette.
var (
	Black    = color.RGBA{R: 0x00, G: 0x00, B: 0x00, A: 255}
	DarkBlue = color.RGBA{R: 0x1e, G: 0x3a, B: 0x8a, A: 255}
	Red      = color.RGBA{R: 0xdc, G: 0x26, B: 0x26, A: 255}
	Green    = color.RGBA{R: 0x16, G: 0x65, B: 0x34, A: 255}
	Purple   = color.RGBA{R: 0x5b, G: 0x21, B: 0xb6, A: 255}
	Slate    = color.RGBA{R: 0x64, G: 0x74, B: 0x8b, A: 255}
)

// ParseHex parses a CSS-style hex color ("#rrggbb" or "#rgb", leading
// '#' optional). Returns opaque black for anything it cannot parse, so
// style fields never hard-fail rendering.
func ParseHex(s string) color.RGBA {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")

	var r, g, b uint8
	switch len(s) {
	case 6:
		if _, err := fmt.Sscanf(s, "%02x%02x%02x", &r, &g, &b); err != nil {
			return Black
		}
	case 3:
		if _, err := fmt.Sscanf(s, "%1x%1x%1x", &r, &g, &b); err != nil {
			return Black
		}
		r *= 17
		g *= 17
		b *= 17
	default:
		return Black
	}
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// FormatHex formats a color as "#rrggbb", discarding alpha.
func FormatHex(c color.Color) string {
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", uint8(r>>8), uint8(g>>8), uint8(b>>8))
}
