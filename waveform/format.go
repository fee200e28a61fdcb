package waveform

import (
	"fmt"

	"periph.io/x/devices/v3/eve"
)

// Format is the pixel format of a channel.
type Format uint8

const (
	// Mono1bpp stores one bit per pixel, W pixels per line.
	Mono1bpp Format = iota
	// Paletted8 stores one palette index per pixel, W pixels per line.
	Paletted8
	// BargraphPacked stores one byte per line, the bar height. The device
	// only accepts 32 bits writes for it.
	BargraphPacked
)

// BargraphHeight is the height in pixels of a bargraph bitmap.
const BargraphHeight = 256

// Device returns the bitmap format the device draws the channel with.
func (f Format) Device() eve.Format {
	switch f {
	case Paletted8:
		return eve.FormatPaletted8
	case BargraphPacked:
		return eve.FormatBargraph
	}
	return eve.FormatL1
}

// LineBytes returns the number of bytes in one physical line of a w pixels
// wide channel.
func (f Format) LineBytes(w int) int {
	if f == BargraphPacked {
		return 1
	}
	return f.Device().Stride(w)
}

// bound is the exclusive upper limit of the graph coordinate.
func (f Format) bound(w int) int {
	if f == BargraphPacked {
		return min(w, BargraphHeight)
	}
	return w
}

// Background returns the byte a line is initialized with. bg is the palette
// index of the background color, only used by Paletted8.
func (f Format) Background(bg byte) byte {
	if f == Paletted8 {
		return bg
	}
	return 0
}

// wordAligned reports whether the device requires 32 bits writes.
func (f Format) wordAligned() bool {
	return f == BargraphPacked
}

func (f Format) String() string {
	switch f {
	case Mono1bpp:
		return "mono1bpp"
	case Paletted8:
		return "paletted8"
	case BargraphPacked:
		return "bargraph"
	}
	return fmt.Sprintf("Format(%d)", uint8(f))
}

// MarshalText implements encoding.TextMarshaler.
func (f Format) MarshalText() ([]byte, error) {
	if f > BargraphPacked {
		return nil, fmt.Errorf("waveform: invalid format %d", uint8(f))
	}
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Format) UnmarshalText(b []byte) error {
	switch string(b) {
	case "mono1bpp", "l1":
		*f = Mono1bpp
	case "paletted8":
		*f = Paletted8
	case "bargraph":
		*f = BargraphPacked
	default:
		return fmt.Errorf("waveform: unknown format %q", b)
	}
	return nil
}
