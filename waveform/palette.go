package waveform

import (
	"image/color"

	"golang.org/x/image/colornames"
)

// Palette is the color table of Paletted8 channels. Entry i is drawn for
// pixel value i.
type Palette []color.RGBA

// DefaultPalette is the table uploaded for Paletted8 channels.
var DefaultPalette = Palette{
	colornames.Black,
	colornames.White,
	colornames.Red,
	colornames.Lime,
	colornames.Blue,
	colornames.Yellow,
	colornames.Cyan,
	colornames.Magenta,
	colornames.Silver,
	colornames.Gray,
	colornames.Maroon,
	colornames.Green,
	colornames.Navy,
	colornames.Olive,
	colornames.Teal,
	colornames.Purple,
	{R: 255, G: 128, B: 128, A: 255}, // Light red
	{R: 128, G: 255, B: 128, A: 255}, // Light green
	{R: 128, G: 128, B: 255, A: 255}, // Light blue
	{R: 255, G: 255, B: 128, A: 255}, // Light yellow
	{R: 128, G: 255, B: 255, A: 255}, // Light cyan
	{R: 255, G: 128, B: 255, A: 255}, // Light magenta
	{R: 64, G: 64, B: 64, A: 255},    // Very dark gray
	{R: 192, G: 64, B: 64, A: 255},   // Warm red
	{R: 64, G: 192, B: 64, A: 255},   // Warm green
	{R: 64, G: 64, B: 192, A: 255},   // Warm blue
	{R: 192, G: 192, B: 64, A: 255},  // Olive
	{R: 64, G: 192, B: 192, A: 255},  // Teal
	{R: 192, G: 64, B: 192, A: 255},  // Purple
	{R: 0, G: 64, B: 64, A: 255},     // Deep teal
	{R: 64, G: 0, B: 64, A: 255},     // Deep purple
}

// Index returns the entry of c, comparing RGB only.
func (p Palette) Index(c color.RGBA) (byte, bool) {
	for i, e := range p {
		if i > 255 {
			break
		}
		if e.R == c.R && e.G == c.G && e.B == c.B {
			return byte(i), true
		}
	}
	return 0, false
}

// Bytes returns the table as the device reads it, 4 bytes per entry in
// B, G, R, A order.
func (p Palette) Bytes() []byte {
	b := make([]byte, 0, 4*len(p))
	for _, c := range p {
		b = append(b, c.B, c.G, c.R, c.A)
	}
	return b
}

// DecodePalette returns entry i of a table encoded by Palette.Bytes.
func DecodePalette(b []byte, i byte) color.RGBA {
	o := 4 * int(i)
	if o+4 > len(b) {
		return color.RGBA{}
	}
	return color.RGBA{B: b[o], G: b[o+1], R: b[o+2], A: b[o+3]}
}
