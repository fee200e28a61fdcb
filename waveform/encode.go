package waveform

import (
	"image"

	"periph.io/x/devices/v3/eve/image1bit"
)

// encoder turns raw samples into the physical lines of one channel.
type encoder struct {
	format    Format
	w         int // Pixels per line
	zoom      int // Physical lines per sample
	lineBytes int
	fg, bg    byte // Palette indices, Paletted8 only

	last    int  // Last plotted coordinate
	hasLast bool // False until the first sample

	mono *image1bit.HorizontalMSB // Mono1bpp line scratch
	line []byte                   // Paletted8 line scratch
}

func newEncoder(f Format, w, zoom int, fg, bg byte) *encoder {
	e := &encoder{
		format:    f,
		w:         w,
		zoom:      zoom,
		lineBytes: f.LineBytes(w),
		fg:        fg,
		bg:        bg,
	}
	switch f {
	case Mono1bpp:
		e.mono = image1bit.NewHorizontalMSB(image.Rect(0, 0, w, 1))
	case Paletted8:
		e.line = make([]byte, e.lineBytes)
	}
	return e
}

// gmax is the highest graph coordinate.
func (e *encoder) gmax() int {
	return e.format.bound(e.w) - 1
}

// encode appends the zoom identical lines of sample v to dst.
func (e *encoder) encode(dst []byte, v byte) []byte {
	x := Normalize(int(v), 0, 255, e.gmax())
	from := x
	if e.hasLast {
		from = e.last
	}
	e.last, e.hasLast = x, true

	var line []byte
	switch e.format {
	case Mono1bpp:
		clear(e.mono.Pix)
		span(x, from, e.w, func(x int) { e.mono.SetBit(x, 0, image1bit.On) })
		line = e.mono.Pix
	case Paletted8:
		for i := range e.line {
			e.line[i] = e.bg
		}
		span(x, from, e.w, func(x int) { e.line[x] = e.fg })
		line = e.line
	case BargraphPacked:
		// The device fills the bar from the stored value to the bottom.
		line = []byte{byte(255 - min(255, x))}
	}
	for i := 0; i < e.zoom; i++ {
		dst = append(dst, line...)
	}
	return dst
}
