package eve

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"image/color"
	"io"
	"time"

	"gopkg.in/Sirupsen/logrus.v0"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// ErrCoprocessorFault is returned when the coprocessor reports a fault on its
// command FIFO. The device must be re-initialized before it accepts commands.
var ErrCoprocessorFault = errors.New("eve: coprocessor fault")

var errHalted = errors.New("eve: halted")

// Timing is the display panel timing programmed at initialization.
//
// Field names follow the REG_* register they are written to.
type Timing struct {
	HCycle, HOffset, HSize, HSync0, HSync1 int
	VCycle, VOffset, VSize, VSync0, VSync1 int
	PCLK, PCLKPol, Swizzle, CSpread, Dither int
}

// WVGA is the timing of the common 800x480 panels shipped with FT81x boards.
var WVGA = Timing{
	HCycle: 928, HOffset: 88, HSize: 800, HSync0: 0, HSync1: 48,
	VCycle: 525, VOffset: 32, VSize: 480, VSync0: 0, VSync1: 3,
	PCLK: 2, PCLKPol: 1, Swizzle: 0, CSpread: 0, Dither: 1,
}

// Opts is the configuration for the coprocessor.
type Opts struct {
	// SPI clock (default: 10MHz)
	Hz physic.Frequency

	// Optional power-down pin, pulsed low at initialization
	PD gpio.PinOut

	// Panel timing (default: WVGA)
	Timing *Timing

	// Optional logger
	Log *logrus.Entry
}

// Dev is the device handle for the coprocessor.
//
// Memory and display operations are queued as coprocessor commands and sent in
// bulk when the queue grows large, on End and on Fence. All of them therefore
// execute on the device in call order.
type Dev struct {
	// Communication
	c     conn.Conn
	pd    gpio.PinOut
	maxTx int // Largest payload of one SPI transaction
	log   *logrus.Entry

	// Pending coprocessor command words, little endian
	cmds []byte

	// Screen size
	w, h int

	// Last bitmap set with SetBitmap, needed to size rotated blits
	bmW, bmH int

	// State
	halted bool
}

// sleep is replaced in tests.
var sleep = time.Sleep

// NewSPI opens the coprocessor on an SPI port.
//
// The SPI port is configured for Mode0 (CPOL=0, CPHA=0), 8-bit transfers.
// opts can be nil to use defaults.
func NewSPI(p spi.Port, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &Opts{}
	}
	hz := opts.Hz
	if hz == 0 {
		hz = 10 * physic.MegaHertz
	}
	// FT81x accepts up to 30MHz once active
	if hz > 30*physic.MegaHertz {
		return nil, errors.New("eve: SPI clock must be at most 30MHz")
	}
	c, err := p.Connect(hz, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("eve: %w", err)
	}
	d := newDev(c, opts)
	if err := d.init(opts); err != nil {
		return nil, err
	}
	return d, nil
}

func newDev(c conn.Conn, opts *Opts) *Dev {
	log := opts.Log
	if log == nil {
		l := logrus.New()
		l.Out = io.Discard
		log = logrus.NewEntry(l)
	}
	t := opts.Timing
	if t == nil {
		t = &WVGA
	}
	maxTx := 4096
	if l, ok := c.(conn.Limits); ok {
		if m := l.MaxTxSize(); m >= 64 && m < maxTx {
			maxTx = m
		}
	}
	return &Dev{
		c:     c,
		pd:    opts.PD,
		maxTx: maxTx,
		log:   log.WithField("mod", "eve"),
		w:     t.HSize,
		h:     t.VSize,
	}
}

// init wakes the coprocessor and programs the panel timing.
func (d *Dev) init(opts *Opts) error {
	// Power cycle (if PD pin is provided)
	if d.pd != nil {
		if err := d.pd.Out(gpio.Low); err != nil {
			return fmt.Errorf("eve: failed to pull PD low: %w", err)
		}
		sleep(20 * time.Millisecond)
		if err := d.pd.Out(gpio.High); err != nil {
			return fmt.Errorf("eve: failed to pull PD high: %w", err)
		}
		sleep(20 * time.Millisecond)
	}

	if err := d.hostCommand(hostActive); err != nil {
		return err
	}
	sleep(300 * time.Millisecond)

	// REG_ID reads 0x7C once the boot sequence completed.
	var id uint32
	for i := 0; i < 100; i++ {
		v, err := d.read32(regID)
		if err != nil {
			return err
		}
		if id = v & 0xFF; id == chipID {
			break
		}
		sleep(10 * time.Millisecond)
	}
	if id != chipID {
		return fmt.Errorf("eve: unexpected chip id %#x", id)
	}

	t := opts.Timing
	if t == nil {
		t = &WVGA
	}
	regs := []struct {
		a Addr
		v int
	}{
		{regPCLK, 0}, // Keep the panel dark while timing is changed
		{regHCycle, t.HCycle},
		{regHOffset, t.HOffset},
		{regHSync0, t.HSync0},
		{regHSync1, t.HSync1},
		{regVCycle, t.VCycle},
		{regVOffset, t.VOffset},
		{regVSync0, t.VSync0},
		{regVSync1, t.VSync1},
		{regSwizzle, t.Swizzle},
		{regPCLKPol, t.PCLKPol},
		{regCSpread, t.CSpread},
		{regDither, t.Dither},
		{regHSize, t.HSize},
		{regVSize, t.VSize},
	}
	for _, r := range regs {
		if err := d.write32(r.a, uint32(r.v)); err != nil {
			return err
		}
	}

	// Start with a blank screen, then enable the display.
	d.Begin()
	if err := d.End(); err != nil {
		return err
	}
	if err := d.write32(regGPIODir, 0x80); err != nil {
		return err
	}
	if err := d.write32(regGPIO, 0x80); err != nil {
		return err
	}
	if err := d.write32(regPCLK, uint32(t.PCLK)); err != nil {
		return err
	}
	d.log.WithField("size", fmt.Sprintf("%dx%d", d.w, d.h)).Info("coprocessor ready")
	return nil
}

// hostCommand sends a 3 bytes host command.
func (d *Dev) hostCommand(cmd byte) error {
	if err := d.c.Tx([]byte{cmd, 0, 0}, nil); err != nil {
		return fmt.Errorf("eve: host command %#x: %w", cmd, err)
	}
	return nil
}

// read32 reads a 32 bits little endian register.
func (d *Dev) read32(a Addr) (uint32, error) {
	w := make([]byte, 8)
	w[0] = byte(a>>16) & 0x3F
	w[1] = byte(a >> 8)
	w[2] = byte(a)
	// w[3] is the dummy byte
	r := make([]byte, len(w))
	if err := d.c.Tx(w, r); err != nil {
		return 0, fmt.Errorf("eve: read %v: %w", a, err)
	}
	return binary.LittleEndian.Uint32(r[4:]), nil
}

// write32 writes a 32 bits little endian register.
func (d *Dev) write32(a Addr, v uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return d.writeMem(a, b[:])
}

// writeMem issues one host memory write transaction.
func (d *Dev) writeMem(a Addr, p []byte) error {
	w := make([]byte, 3+len(p))
	w[0] = 0x80 | byte(a>>16)&0x3F
	w[1] = byte(a >> 8)
	w[2] = byte(a)
	copy(w[3:], p)
	if err := d.c.Tx(w, nil); err != nil {
		return fmt.Errorf("eve: write %v: %w", a, err)
	}
	return nil
}

// cmd queues coprocessor command words.
func (d *Dev) cmd(words ...uint32) {
	for _, v := range words {
		d.cmds = binary.LittleEndian.AppendUint32(d.cmds, v)
	}
}

// cmdData queues a data payload, padded to 4 bytes.
func (d *Dev) cmdData(p []byte) {
	d.cmds = append(d.cmds, p...)
	for len(d.cmds)%4 != 0 {
		d.cmds = append(d.cmds, 0)
	}
}

// flushIfFull sends pending commands once a command buffer worth is queued.
func (d *Dev) flushIfFull() error {
	if len(d.cmds) < cmdBufferSize {
		return nil
	}
	return d.flush(context.Background())
}

// flush sends the pending commands through REG_CMDB_WRITE, waiting for room
// in the FIFO as needed.
func (d *Dev) flush(ctx context.Context) error {
	for len(d.cmds) > 0 {
		space, err := d.cmdSpace(ctx)
		if err != nil {
			return err
		}
		n := min(len(d.cmds), space, d.maxTx-3) &^ 3
		if err := d.writeMem(regCmdBWrite, d.cmds[:n]); err != nil {
			return err
		}
		d.cmds = d.cmds[n:]
	}
	d.cmds = d.cmds[:0]
	return nil
}

// cmdSpace waits until the command FIFO has free room and returns it.
func (d *Dev) cmdSpace(ctx context.Context) (int, error) {
	for {
		v, err := d.read32(regCmdBSpace)
		if err != nil {
			return 0, err
		}
		if space := int(v & 0xFFF); space >= 4 {
			return space, nil
		}
		if err := d.checkFault(); err != nil {
			return 0, err
		}
		if err := ctx.Err(); err != nil {
			return 0, err
		}
	}
}

func (d *Dev) checkFault() error {
	v, err := d.read32(regCmdRead)
	if err != nil {
		return err
	}
	if v&0xFFF == cmdFaultRead {
		return ErrCoprocessorFault
	}
	return nil
}

// Fence sends all pending commands and blocks until the coprocessor executed
// them. It is the only blocking call of Dev.
func (d *Dev) Fence(ctx context.Context) error {
	if d.halted {
		return errHalted
	}
	if err := d.flush(ctx); err != nil {
		return err
	}
	for {
		v, err := d.read32(regCmdBSpace)
		if err != nil {
			return err
		}
		if v&0xFFF == cmdBufferEmpty {
			return nil
		}
		if err := d.checkFault(); err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

// Write queues a copy of p to device memory at addr.
func (d *Dev) Write(addr Addr, p []byte) error {
	if d.halted {
		return errHalted
	}
	if len(p) == 0 {
		return nil
	}
	d.cmd(cmdMemWrite, uint32(addr), uint32(len(p)))
	d.cmdData(p)
	return d.flushIfFull()
}

// Copy queues a device side copy of n bytes from src to dst.
func (d *Dev) Copy(dst, src Addr, n int) error {
	if d.halted {
		return errHalted
	}
	if n <= 0 {
		return nil
	}
	d.cmd(cmdMemCopy, uint32(dst), uint32(src), uint32(n))
	return d.flushIfFull()
}

// Fill queues a device side fill of n bytes at addr with v.
func (d *Dev) Fill(addr Addr, v byte, n int) error {
	if d.halted {
		return errHalted
	}
	if n <= 0 {
		return nil
	}
	d.cmd(cmdMemSet, uint32(addr), uint32(v), uint32(n))
	return d.flushIfFull()
}

// Begin starts a new display list cleared to black.
func (d *Dev) Begin() {
	d.cmd(
		cmdDLStart,
		dlClearColorRGB(color.RGBA{}),
		dlClear(true, true, true),
		dlVertexFormat(0),
	)
}

// End terminates the display list, swaps it in and sends pending commands.
func (d *Dev) End() error {
	if d.halted {
		return errHalted
	}
	d.cmd(dlDisplay(), cmdSwap)
	return d.flush(context.Background())
}

// SetBitmap selects the bitmap drawn by the next Blit.
func (d *Dev) SetBitmap(addr Addr, f Format, w, h int) error {
	if d.halted {
		return errHalted
	}
	d.cmd(cmdSetBitmap, uint32(addr), uint32(f)|uint32(w&0xFFFF)<<16, uint32(h&0xFFFF))
	d.bmW, d.bmH = w, h
	return nil
}

// SetPaletteSource sets the palette used by PALETTED8 bitmaps.
func (d *Dev) SetPaletteSource(addr Addr) error {
	if d.halted {
		return errHalted
	}
	d.cmd(dlPaletteSource(addr))
	return nil
}

// Blit draws the current bitmap at (x, y) in color c.
//
// With RotateLeft the bitmap is turned around its top left corner and the
// drawing area is enlarged to a square so that no part of it is cropped.
func (d *Dev) Blit(x, y int, c color.RGBA, rot Rotation) error {
	if d.halted {
		return errHalted
	}
	d.cmd(dlSaveContext())
	if rot == RotateLeft {
		l := max(d.bmW, d.bmH)
		angle := int32(-90 * circle / 360)
		d.cmd(
			dlBitmapSize(filterNearest, wrapBorder, wrapBorder, l, l),
			dlBitmapSizeH(l>>9, l>>9),
			cmdLoadIdentity,
			cmdTranslate, 0, uint32(d.bmW*65536),
			cmdRotate, uint32(angle),
			cmdSetMatrix,
		)
	}
	d.cmd(
		dlColorRGB(c),
		dlBegin(primBitmaps),
		dlVertex2F(x, y),
		dlEnd(),
		dlRestoreContext(),
	)
	return nil
}

// Bounds returns the screen size.
func (d *Dev) Bounds() (w, h int) {
	return d.w, d.h
}

// Halt powers the coprocessor down.
// After calling Halt, the device will not accept further commands until it is
// re-opened.
func (d *Dev) Halt() error {
	d.halted = true
	d.cmds = d.cmds[:0]
	return d.hostCommand(hostPwrDown)
}

// String returns a string representation of the device.
func (d *Dev) String() string {
	return fmt.Sprintf("eve.Dev{%dx%d}", d.w, d.h)
}
