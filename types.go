package eve

import (
	"fmt"
	"math"
)

// Addr is an address in the coprocessor's memory map. RAM_G starts at 0.
//
// Addr values only make sense on the device side and are never dereferenced
// on the host. Arithmetic on them panics rather than wrapping silently, since
// an out of range address is always a programming error.
type Addr uint32

// Add returns a+n. It panics if the result does not fit in an Addr.
func (a Addr) Add(n int) Addr {
	v := int64(a) + int64(n)
	if v < 0 || v > math.MaxUint32 {
		panic(fmt.Sprintf("eve: address %v%+d out of range", a, n))
	}
	return Addr(v)
}

// Sub returns the signed distance a-b in bytes.
func (a Addr) Sub(b Addr) int {
	return int(int64(a) - int64(b))
}

// Align returns a rounded up to the next multiple of n, n being a power of 2.
func (a Addr) Align(n int) Addr {
	m := Addr(n - 1)
	return (a + m) &^ m
}

func (a Addr) String() string {
	return fmt.Sprintf("%#x", uint32(a))
}

// Format is a bitmap format as understood by BITMAP_LAYOUT and CMD_SETBITMAP.
type Format uint8

// Bitmap formats used by the waveform renderer.
const (
	FormatL1        Format = 1
	FormatL4        Format = 2
	FormatL8        Format = 3
	FormatBargraph  Format = 11
	FormatPaletted8 Format = 16
)

// Stride returns the number of bytes in one bitmap line of w pixels.
func (f Format) Stride(w int) int {
	switch f {
	case FormatL1:
		return (w + 7) / 8
	case FormatL4:
		return (w + 1) / 2
	default:
		return w
	}
}

func (f Format) String() string {
	switch f {
	case FormatL1:
		return "L1"
	case FormatL4:
		return "L4"
	case FormatL8:
		return "L8"
	case FormatBargraph:
		return "BARGRAPH"
	case FormatPaletted8:
		return "PALETTED8"
	}
	return fmt.Sprintf("Format(%d)", uint8(f))
}

// Rotation is the transform applied to a bitmap when it is drawn.
type Rotation uint8

const (
	// RotateNone draws the bitmap as laid out in memory.
	RotateNone Rotation = iota
	// RotateLeft turns the bitmap 90° counter-clockwise around its anchor, so
	// memory lines (the time axis) run left to right on screen and the first
	// pixel of a line ends up at the bottom.
	RotateLeft
)

func (r Rotation) String() string {
	switch r {
	case RotateNone:
		return "none"
	case RotateLeft:
		return "left"
	}
	return fmt.Sprintf("Rotation(%d)", uint8(r))
}
