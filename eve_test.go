package eve

import (
	"context"
	"encoding/binary"
	"errors"
	"image/color"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"periph.io/x/conn/v3/conntest"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi/spitest"
)

// rd is a host read of a 32 bits register returning v.
func rd(a Addr, v uint32) conntest.IO {
	w := []byte{byte(a>>16) & 0x3F, byte(a >> 8), byte(a), 0, 0, 0, 0, 0}
	r := make([]byte, len(w))
	binary.LittleEndian.PutUint32(r[4:], v)
	return conntest.IO{W: w, R: r}
}

// wr is a host write of p at a.
func wr(a Addr, p []byte) conntest.IO {
	return conntest.IO{W: append([]byte{0x80 | byte(a>>16)&0x3F, byte(a >> 8), byte(a)}, p...)}
}

func le(words ...uint32) []byte {
	var b []byte
	for _, v := range words {
		b = binary.LittleEndian.AppendUint32(b, v)
	}
	return b
}

func noSleep(t *testing.T) {
	old := sleep
	sleep = func(time.Duration) {}
	t.Cleanup(func() { sleep = old })
}

func TestNewSPI(t *testing.T) {
	noSleep(t)
	tm := WVGA
	ops := []conntest.IO{
		{W: []byte{hostActive, 0, 0}},
		rd(regID, 0),
		rd(regID, chipID),
	}
	for _, r := range []struct {
		a Addr
		v int
	}{
		{regPCLK, 0},
		{regHCycle, tm.HCycle},
		{regHOffset, tm.HOffset},
		{regHSync0, tm.HSync0},
		{regHSync1, tm.HSync1},
		{regVCycle, tm.VCycle},
		{regVOffset, tm.VOffset},
		{regVSync0, tm.VSync0},
		{regVSync1, tm.VSync1},
		{regSwizzle, tm.Swizzle},
		{regPCLKPol, tm.PCLKPol},
		{regCSpread, tm.CSpread},
		{regDither, tm.Dither},
		{regHSize, tm.HSize},
		{regVSize, tm.VSize},
	} {
		ops = append(ops, wr(r.a, le(uint32(r.v))))
	}
	ops = append(ops,
		rd(regCmdBSpace, cmdBufferEmpty),
		wr(regCmdBWrite, le(cmdDLStart, 0x02000000, 0x26000007, 0x27000000, 0, cmdSwap)),
		wr(regGPIODir, le(0x80)),
		wr(regGPIO, le(0x80)),
		wr(regPCLK, le(uint32(tm.PCLK))),
	)
	pd := &gpiotest.Pin{N: "PD"}
	p := spitest.Playback{Playback: conntest.Playback{Ops: ops, DontPanic: true}}
	d, err := NewSPI(&p, &Opts{PD: pd})
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
	if pd.L != gpio.High {
		t.Error("PD should be left high")
	}
	if got, want := d.String(), "eve.Dev{800x480}"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestNewSPIBadChipID(t *testing.T) {
	noSleep(t)
	ops := []conntest.IO{{W: []byte{hostActive, 0, 0}}}
	for i := 0; i < 100; i++ {
		ops = append(ops, rd(regID, 0x12))
	}
	p := spitest.Playback{Playback: conntest.Playback{Ops: ops, DontPanic: true}}
	if _, err := NewSPI(&p, nil); err == nil {
		t.Fatal("NewSPI should fail on an unexpected chip id")
	}
}

func TestNewSPIClock(t *testing.T) {
	p := spitest.Playback{Playback: conntest.Playback{DontPanic: true}}
	if _, err := NewSPI(&p, &Opts{Hz: 40 * physic.MegaHertz}); err == nil {
		t.Fatal("NewSPI should reject a 40MHz clock")
	}
}

func TestMemoryCommands(t *testing.T) {
	words := le(
		cmdMemWrite, 0x100, 3, 0x00030201,
		cmdMemCopy, 0x200, 0x100, 3,
		cmdMemSet, 0x300, 0xAA, 16,
	)
	p := &conntest.Playback{
		Ops: []conntest.IO{
			rd(regCmdBSpace, cmdBufferEmpty),
			wr(regCmdBWrite, words),
			rd(regCmdBSpace, 0x800),
			rd(regCmdRead, 0x40),
			rd(regCmdBSpace, cmdBufferEmpty),
		},
		DontPanic: true,
	}
	d := newDev(p, &Opts{})
	if err := d.Write(0x100, []byte{1, 2, 3}); err != nil {
		t.Fatal(err)
	}
	if err := d.Copy(0x200, 0x100, 3); err != nil {
		t.Fatal(err)
	}
	if err := d.Fill(0x300, 0xAA, 16); err != nil {
		t.Fatal(err)
	}
	// Empty operations are not queued
	if err := d.Write(0x100, nil); err != nil {
		t.Fatal(err)
	}
	if err := d.Copy(0x200, 0x100, 0); err != nil {
		t.Fatal(err)
	}
	if err := d.Fence(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestFlushChunks(t *testing.T) {
	// The FIFO only has room for 8 bytes at a time.
	words := le(cmdMemSet, 0x300, 0xAA, 16)
	p := &conntest.Playback{
		Ops: []conntest.IO{
			rd(regCmdBSpace, 8),
			wr(regCmdBWrite, words[:8]),
			rd(regCmdBSpace, 0),
			rd(regCmdRead, 0),
			rd(regCmdBSpace, 8),
			wr(regCmdBWrite, words[8:]),
		},
		DontPanic: true,
	}
	d := newDev(p, &Opts{})
	if err := d.Fill(0x300, 0xAA, 16); err != nil {
		t.Fatal(err)
	}
	if err := d.flush(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestFenceFault(t *testing.T) {
	p := &conntest.Playback{
		Ops: []conntest.IO{
			rd(regCmdBSpace, 0x100),
			rd(regCmdRead, cmdFaultRead),
		},
		DontPanic: true,
	}
	d := newDev(p, &Opts{})
	if err := d.Fence(context.Background()); !errors.Is(err, ErrCoprocessorFault) {
		t.Fatalf("Fence() = %v, want %v", err, ErrCoprocessorFault)
	}
}

func TestFenceCanceled(t *testing.T) {
	p := &conntest.Playback{
		Ops: []conntest.IO{
			rd(regCmdBSpace, 0x100),
			rd(regCmdRead, 0x20),
		},
		DontPanic: true,
	}
	d := newDev(p, &Opts{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := d.Fence(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Fence() = %v, want %v", err, context.Canceled)
	}
}

func TestBlit(t *testing.T) {
	green := color.RGBA{G: 255, A: 255}
	tests := []struct {
		name string
		rot  Rotation
		want []uint32
	}{
		{
			"unrotated",
			RotateNone,
			[]uint32{
				cmdSetBitmap, 0x1000, uint32(FormatL1) | 160<<16, 1000,
				dlSaveContext(),
				dlColorRGB(green),
				dlBegin(primBitmaps),
				dlVertex2F(10, 20),
				dlEnd(),
				dlRestoreContext(),
			},
		},
		{
			"rotated left",
			RotateLeft,
			[]uint32{
				cmdSetBitmap, 0x1000, uint32(FormatL1) | 160<<16, 1000,
				dlSaveContext(),
				dlBitmapSize(filterNearest, wrapBorder, wrapBorder, 1000, 1000),
				dlBitmapSizeH(1, 1),
				cmdLoadIdentity,
				cmdTranslate, 0, 160 * 65536,
				cmdRotate, 0xFFFFC000,
				cmdSetMatrix,
				dlColorRGB(green),
				dlBegin(primBitmaps),
				dlVertex2F(10, 20),
				dlEnd(),
				dlRestoreContext(),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDev(&conntest.Playback{}, &Opts{})
			if err := d.SetBitmap(0x1000, FormatL1, 160, 1000); err != nil {
				t.Fatal(err)
			}
			if err := d.Blit(10, 20, green, tt.rot); err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(le(tt.want...), d.cmds); diff != "" {
				t.Errorf("commands mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDisplayListEncoding(t *testing.T) {
	tests := []struct {
		name string
		got  uint32
		want uint32
	}{
		{"vertex2f", dlVertex2F(1, 2), 0x40008002},
		{"color", dlColorRGB(color.RGBA{R: 0x12, G: 0x34, B: 0x56}), 0x04123456},
		{"clear", dlClear(true, true, true), 0x26000007},
		{"palette source", dlPaletteSource(0x1234), 0x2A001234},
		{"bitmap size", dlBitmapSize(filterNearest, wrapBorder, wrapBorder, 160, 256), 0x08014100},
		{"bitmap size high", dlBitmapSizeH(1000>>9, 1000>>9), 0x29000005},
		{"begin bitmaps", dlBegin(primBitmaps), 0x1F000001},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %#08x, want %#08x", tt.got, tt.want)
			}
		})
	}
}

func TestDevHalt(t *testing.T) {
	p := &conntest.Playback{
		Ops:       []conntest.IO{{W: []byte{hostPwrDown, 0, 0}}},
		DontPanic: true,
	}
	d := newDev(p, &Opts{})
	if d.halted {
		t.Error("device should not be halted initially")
	}
	if err := d.Halt(); err != nil {
		t.Fatal(err)
	}

	// Test that operations fail when halted
	if err := d.Write(0, []byte{1}); err == nil {
		t.Error("Write should fail when halted")
	}
	if err := d.Copy(0, 4, 4); err == nil {
		t.Error("Copy should fail when halted")
	}
	if err := d.Fill(0, 0, 4); err == nil {
		t.Error("Fill should fail when halted")
	}
	if err := d.SetBitmap(0, FormatL1, 8, 8); err == nil {
		t.Error("SetBitmap should fail when halted")
	}
	if err := d.Blit(0, 0, color.RGBA{}, RotateNone); err == nil {
		t.Error("Blit should fail when halted")
	}
	if err := d.End(); err == nil {
		t.Error("End should fail when halted")
	}
	if err := d.Fence(context.Background()); err == nil {
		t.Error("Fence should fail when halted")
	}
}

func TestAddr(t *testing.T) {
	a := Addr(0x1000)
	if got := a.Add(0x10); got != 0x1010 {
		t.Errorf("Add() = %v, want 0x1010", got)
	}
	if got := a.Add(-0x1000); got != 0 {
		t.Errorf("Add() = %v, want 0", got)
	}
	if got := Addr(0x1010).Sub(a); got != 0x10 {
		t.Errorf("Sub() = %d, want 16", got)
	}
	if got := a.Sub(0x1010); got != -0x10 {
		t.Errorf("Sub() = %d, want -16", got)
	}
	if got := Addr(0x1001).Align(4); got != 0x1004 {
		t.Errorf("Align() = %v, want 0x1004", got)
	}
	for _, tt := range []struct {
		a    Addr
		want string
	}{
		{a, "0x1000"},
		{0, "0x0"},
		{RAMGEnd, "0x100000"},
		{regCmdBWrite, "0x302578"},
	} {
		if got := tt.a.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
	defer func() {
		if recover() == nil {
			t.Error("Add should panic below 0")
		}
	}()
	a.Add(-0x1001)
}

func TestFormatStride(t *testing.T) {
	tests := []struct {
		f    Format
		w    int
		want int
	}{
		{FormatL1, 160, 20},
		{FormatL1, 161, 21},
		{FormatL4, 3, 2},
		{FormatL8, 160, 160},
		{FormatPaletted8, 160, 160},
		{FormatBargraph, 256, 256},
	}
	for _, tt := range tests {
		t.Run(tt.f.String(), func(t *testing.T) {
			if got := tt.f.Stride(tt.w); got != tt.want {
				t.Errorf("Stride(%d) = %d, want %d", tt.w, got, tt.want)
			}
		})
	}
}
