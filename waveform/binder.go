package waveform

import (
	"fmt"
	"image/color"

	"periph.io/x/devices/v3/eve"
)

// Draw is one placement of a bitmap.
type Draw struct {
	X, Y  int
	Color color.RGBA
}

// Binding is what the display needs to draw a channel for one frame.
//
// It only depends on the channel state, so a channel yields the same Binding
// until its next Push.
type Binding struct {
	Source eve.Addr
	Format eve.Format
	W, H   int

	// Paletted8 only
	Paletted    bool
	PaletteAddr eve.Addr

	Rotation eve.Rotation
	Draws    []Draw
}

// Issue sends the binding to d.
func (b Binding) Issue(d Display) error {
	if err := d.SetBitmap(b.Source, b.Format, b.W, b.H); err != nil {
		return fmt.Errorf("waveform: set bitmap %v: %w", b.Source, err)
	}
	if b.Paletted {
		if err := d.SetPaletteSource(b.PaletteAddr); err != nil {
			return fmt.Errorf("waveform: palette source %v: %w", b.PaletteAddr, err)
		}
	}
	for _, dr := range b.Draws {
		if err := d.Blit(dr.X, dr.Y, dr.Color, b.Rotation); err != nil {
			return fmt.Errorf("waveform: blit at (%d, %d): %w", dr.X, dr.Y, err)
		}
	}
	return nil
}
