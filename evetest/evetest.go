// Package evetest provides an in-memory coprocessor for tests and simulation.
package evetest

import (
	"context"
	"errors"
	"fmt"
	"image/color"

	"periph.io/x/devices/v3/eve"
)

// CopyMode selects when device side copies take effect.
type CopyMode int

const (
	// Immediate applies copies when they are issued.
	Immediate CopyMode = iota
	// Deferred queues copies until the next Fence, like a command FIFO the
	// host does not wait for.
	Deferred
)

// Blit is one recorded bitmap draw, with the bitmap state it was drawn with.
type Blit struct {
	Addr     eve.Addr
	Format   eve.Format
	W, H     int
	Palette  eve.Addr
	X, Y     int
	Color    color.RGBA
	Rotation eve.Rotation
}

type bitmap struct {
	addr    eve.Addr
	format  eve.Format
	w, h    int
	palette eve.Addr
}

type pendingCopy struct {
	dst, src eve.Addr
	n        int
}

// Device is a fake coprocessor with RAM_G and a display list recorder.
//
// It implements the memory, fence and display interfaces of the waveform
// package, and Begin/End like eve.Dev.
type Device struct {
	// RAM is the whole of RAM_G.
	RAM []byte
	// Mode selects when copies are applied.
	Mode CopyMode
	// WordWrites rejects writes not aligned on 32 bits.
	WordWrites bool
	// Err, when set, is returned by every memory operation.
	Err error

	// Operation counters
	Writes, Copies, Fills, Fences int

	pending []pendingCopy
	bm      bitmap
	blits   []Blit
	frame   []Blit
	frames  int
}

// New returns a device with a zeroed RAM_G.
func New(mode CopyMode) *Device {
	return &Device{RAM: make([]byte, eve.RAMGEnd), Mode: mode}
}

func (d *Device) check(addr eve.Addr, n int) error {
	if d.Err != nil {
		return d.Err
	}
	if n < 0 || int(addr)+n > len(d.RAM) {
		return fmt.Errorf("evetest: %v+%d outside of RAM_G", addr, n)
	}
	return nil
}

// Write implements waveform.Memory.
func (d *Device) Write(addr eve.Addr, p []byte) error {
	if err := d.check(addr, len(p)); err != nil {
		return err
	}
	if d.WordWrites && (addr%4 != 0 || len(p)%4 != 0) {
		return fmt.Errorf("evetest: unaligned write %v+%d", addr, len(p))
	}
	d.Writes++
	copy(d.RAM[addr:], p)
	return nil
}

// Copy implements waveform.Memory.
func (d *Device) Copy(dst, src eve.Addr, n int) error {
	if err := d.check(dst, n); err != nil {
		return err
	}
	if err := d.check(src, n); err != nil {
		return err
	}
	d.Copies++
	if d.Mode == Deferred {
		d.pending = append(d.pending, pendingCopy{dst: dst, src: src, n: n})
		return nil
	}
	copy(d.RAM[dst:int(dst)+n], d.RAM[src:int(src)+n])
	return nil
}

// Fill implements waveform.Memory.
func (d *Device) Fill(addr eve.Addr, v byte, n int) error {
	if err := d.check(addr, n); err != nil {
		return err
	}
	d.Fills++
	b := d.RAM[addr : int(addr)+n]
	for i := range b {
		b[i] = v
	}
	return nil
}

// Fence applies the deferred copies in issue order.
func (d *Device) Fence(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.Fences++
	for _, c := range d.pending {
		copy(d.RAM[c.dst:int(c.dst)+c.n], d.RAM[c.src:int(c.src)+c.n])
	}
	d.pending = d.pending[:0]
	return nil
}

// Pending returns the number of copies waiting for a Fence.
func (d *Device) Pending() int {
	return len(d.pending)
}

// Read returns a copy of n bytes at addr.
func (d *Device) Read(addr eve.Addr, n int) []byte {
	return append([]byte(nil), d.RAM[addr:int(addr)+n]...)
}

// SetBitmap implements waveform.Display.
func (d *Device) SetBitmap(addr eve.Addr, f eve.Format, w, h int) error {
	if d.Err != nil {
		return d.Err
	}
	if w <= 0 || h <= 0 {
		return errors.New("evetest: empty bitmap")
	}
	d.bm.addr, d.bm.format, d.bm.w, d.bm.h = addr, f, w, h
	return nil
}

// SetPaletteSource implements waveform.Display.
func (d *Device) SetPaletteSource(addr eve.Addr) error {
	if d.Err != nil {
		return d.Err
	}
	d.bm.palette = addr
	return nil
}

// Blit implements waveform.Display.
func (d *Device) Blit(x, y int, c color.RGBA, rot eve.Rotation) error {
	if d.Err != nil {
		return d.Err
	}
	if d.bm.w == 0 {
		return errors.New("evetest: blit without bitmap")
	}
	d.blits = append(d.blits, Blit{
		Addr:     d.bm.addr,
		Format:   d.bm.format,
		W:        d.bm.w,
		H:        d.bm.h,
		Palette:  d.bm.palette,
		X:        x,
		Y:        y,
		Color:    c,
		Rotation: rot,
	})
	return nil
}

// Begin starts a new display list.
func (d *Device) Begin() {
	d.blits = d.blits[:0]
	d.bm = bitmap{}
}

// End completes the display list, which becomes the one returned by Frame.
func (d *Device) End() error {
	if d.Err != nil {
		return d.Err
	}
	d.frame = append(d.frame[:0], d.blits...)
	d.frames++
	return nil
}

// Blits returns the draws of the display list being built.
func (d *Device) Blits() []Blit {
	return d.blits
}

// Frame returns the draws of the last completed display list.
func (d *Device) Frame() []Blit {
	return d.frame
}

// Frames returns the number of completed display lists.
func (d *Device) Frames() int {
	return d.frames
}
