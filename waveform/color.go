package waveform

import (
	"encoding/hex"
	"fmt"
	"image/color"
	"strings"

	"golang.org/x/image/colornames"
)

// Color is a color in a configuration file, written either as "#rrggbb" or as
// an SVG color name.
type Color color.RGBA

// RGBA returns c as a color.RGBA.
func (c Color) RGBA() color.RGBA {
	return color.RGBA(c)
}

// MarshalText implements encoding.TextMarshaler.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Color) UnmarshalText(b []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(b)))
	if v, ok := strings.CutPrefix(s, "#"); ok {
		if len(v) != 6 {
			return fmt.Errorf("waveform: invalid color %q", b)
		}
		d, err := hex.DecodeString(v)
		if err != nil {
			return fmt.Errorf("waveform: invalid color %q: %w", b, err)
		}
		*c = Color{R: d[0], G: d[1], B: d[2], A: 0xFF}
		return nil
	}
	v, ok := colornames.Map[s]
	if !ok {
		return fmt.Errorf("waveform: unknown color %q", b)
	}
	*c = Color(v)
	return nil
}
