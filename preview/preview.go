// Package preview renders recorded display lists on the host.
//
// It decodes the bitmaps of an evetest.Device the way the EVE display engine
// does, onto any tinygo display. Canvas is a display backed by an image.
package preview

import (
	"fmt"
	"image"
	"image/color"

	"periph.io/x/devices/v3/eve"
	"periph.io/x/devices/v3/eve/evetest"
	"periph.io/x/devices/v3/eve/waveform"
	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
)

// RAM is the device memory bitmaps are read from.
type RAM interface {
	Read(addr eve.Addr, n int) []byte
}

// Label is a line of text drawn over the bitmaps.
type Label struct {
	X, Y  int
	Text  string
	Color color.RGBA
}

// Renderer draws display lists onto a display.
type Renderer struct {
	ram RAM
	d   drivers.Displayer
	w   int
	h   int

	// Color the screen is cleared with
	Background color.RGBA
	// Drawn after the bitmaps
	Labels []Label
}

// NewRenderer returns a renderer reading bitmaps from ram.
func NewRenderer(ram RAM, d drivers.Displayer) *Renderer {
	w, h := d.Size()
	return &Renderer{
		ram:        ram,
		d:          d,
		w:          int(w),
		h:          int(h),
		Background: color.RGBA{A: 0xFF},
	}
}

// Render clears the screen, draws blits in order then the labels, and
// displays the result.
func (r *Renderer) Render(blits []evetest.Blit) error {
	for y := 0; y < r.h; y++ {
		for x := 0; x < r.w; x++ {
			r.d.SetPixel(int16(x), int16(y), r.Background)
		}
	}
	for i, b := range blits {
		if err := r.blit(b); err != nil {
			return fmt.Errorf("preview: blit %d: %w", i, err)
		}
	}
	for _, l := range r.Labels {
		tinyfont.WriteLine(r.d, &tinyfont.TomThumb, int16(l.X), int16(l.Y), l.Text, l.Color)
	}
	return r.d.Display()
}

func (r *Renderer) blit(b evetest.Blit) error {
	// Bargraph bitmaps hold one byte per column, the rows are computed.
	stride, n := b.Format.Stride(b.W), b.Format.Stride(b.W)*b.H
	if b.Format == eve.FormatBargraph {
		stride, n = 0, b.W
	}
	if int(b.Addr)+n > int(eve.RAMGEnd) {
		return fmt.Errorf("bitmap %v+%d outside of RAM_G", b.Addr, n)
	}
	pix := r.ram.Read(b.Addr, n)
	var pal []byte
	if b.Format == eve.FormatPaletted8 {
		pal = r.ram.Read(b.Palette, min(4*256, eve.RAMGEnd.Sub(b.Palette)))
	}
	for y := 0; y < b.H; y++ {
		for x := 0; x < b.W; x++ {
			c, ok := pixel(b, pix, pal, stride, x, y)
			if !ok {
				continue
			}
			sx, sy := b.X+x, b.Y+y
			if b.Rotation == eve.RotateLeft {
				// Lines run left to right, pixels bottom up.
				sx, sy = b.X+y, b.Y+b.W-1-x
			}
			r.set(sx, sy, c)
		}
	}
	return nil
}

// pixel returns the color of bitmap pixel (x, y) and whether it is opaque.
func pixel(b evetest.Blit, pix, pal []byte, stride, x, y int) (color.RGBA, bool) {
	switch b.Format {
	case eve.FormatL1:
		if pix[y*stride+x/8]&(0x80>>uint(x%8)) == 0 {
			return color.RGBA{}, false
		}
		return b.Color, true
	case eve.FormatL4:
		v := pix[y*stride+x/2]
		if x%2 == 0 {
			v >>= 4
		}
		v &= 0x0F
		return scale(b.Color, v*17), v != 0
	case eve.FormatL8:
		v := pix[y*stride+x]
		return scale(b.Color, v), v != 0
	case eve.FormatPaletted8:
		i := 4 * int(pix[y*stride+x])
		if i+4 > len(pal) {
			return color.RGBA{}, false
		}
		c := color.RGBA{B: pal[i], G: pal[i+1], R: pal[i+2], A: pal[i+3]}
		return modulate(c, b.Color), c.A != 0
	case eve.FormatBargraph:
		if int(pix[x]) >= y {
			return color.RGBA{}, false
		}
		return b.Color, true
	}
	return color.RGBA{}, false
}

func scale(c color.RGBA, v byte) color.RGBA {
	m := func(a byte) byte { return byte(int(a) * int(v) / 255) }
	return color.RGBA{R: m(c.R), G: m(c.G), B: m(c.B), A: 0xFF}
}

func modulate(c, by color.RGBA) color.RGBA {
	m := func(a, b byte) byte { return byte(int(a) * int(b) / 255) }
	return color.RGBA{R: m(c.R, by.R), G: m(c.G, by.G), B: m(c.B, by.B), A: 0xFF}
}

// Labels returns the channel names of g, each in the channel color in the top
// left corner of its graph.
func Labels(g *waveform.Graph) []Label {
	var l []Label
	for _, c := range g.Channels() {
		cfg := c.Config()
		l = append(l, Label{X: cfg.X + 2, Y: cfg.Y + 7, Text: cfg.Name, Color: cfg.Color.RGBA()})
	}
	return l
}

func (r *Renderer) set(x, y int, c color.RGBA) {
	if x < 0 || y < 0 || x >= r.w || y >= r.h {
		return
	}
	r.d.SetPixel(int16(x), int16(y), c)
}

// Canvas is a display drawing into an image.
type Canvas struct {
	img    *image.RGBA
	frames int
}

// NewCanvas returns a w×h canvas.
func NewCanvas(w, h int) *Canvas {
	return &Canvas{img: image.NewRGBA(image.Rect(0, 0, w, h))}
}

// Size implements drivers.Displayer.
func (c *Canvas) Size() (x, y int16) {
	b := c.img.Bounds()
	return int16(b.Dx()), int16(b.Dy())
}

// SetPixel implements drivers.Displayer.
func (c *Canvas) SetPixel(x, y int16, col color.RGBA) {
	c.img.SetRGBA(int(x), int(y), col)
}

// Display implements drivers.Displayer.
func (c *Canvas) Display() error {
	c.frames++
	return nil
}

// Image returns the canvas content.
func (c *Canvas) Image() *image.RGBA {
	return c.img
}

// Frames returns the number of calls to Display.
func (c *Canvas) Frames() int {
	return c.frames
}

var _ drivers.Displayer = &Canvas{}
