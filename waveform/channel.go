package waveform

import (
	"context"
	"fmt"
	"image/color"

	"gopkg.in/Sirupsen/logrus.v0"
	"periph.io/x/devices/v3/eve"
)

// MaxZoom is the largest number of lines written per sample.
const MaxZoom = 8

// maxBitmapSize is the largest bitmap dimension BITMAP_SIZE and
// BITMAP_SIZE_H can express together.
const maxBitmapSize = 2047

// Config is the configuration of one channel.
type Config struct {
	Name   string `toml:"name"`
	Format Format `toml:"format"`

	// Pixels per line, the value axis. For BargraphPacked this is the value
	// range and at most 256 (default: 256).
	W int `toml:"width"`
	// Lines in the displayed window, the time axis
	H int `toml:"height"`
	// Identical lines written per sample (default: 1, at most MaxZoom)
	Zoom int `toml:"zoom"`

	// Trace color (default: white)
	Color Color `toml:"color"`

	// Screen position of the graph
	X int `toml:"x"`
	Y int `toml:"y"`
}

func (c Config) withDefaults() Config {
	if c.Zoom == 0 {
		c.Zoom = 1
	}
	if c.W == 0 && c.Format == BargraphPacked {
		c.W = BargraphHeight
	}
	if c.Color == (Color{}) {
		c.Color = Color(color.RGBA{R: 255, G: 255, B: 255, A: 255})
	}
	return c
}

// Validate reports whether the configuration can be used for a channel.
func (c Config) Validate() error {
	c = c.withDefaults()
	if c.Format > BargraphPacked {
		return fmt.Errorf("waveform: %s: invalid format %d", c.Name, uint8(c.Format))
	}
	if c.H <= 0 || c.H > maxBitmapSize {
		return fmt.Errorf("waveform: %s: height must be between 1 and %d", c.Name, maxBitmapSize)
	}
	if c.W <= graphMin || c.W > maxBitmapSize {
		return fmt.Errorf("waveform: %s: width must be between %d and %d", c.Name, graphMin+1, maxBitmapSize)
	}
	if c.Zoom < 1 || c.Zoom > MaxZoom {
		return fmt.Errorf("waveform: %s: zoom must be between 1 and %d", c.Name, MaxZoom)
	}
	if c.Format == BargraphPacked {
		if c.W > BargraphHeight {
			return fmt.Errorf("waveform: %s: bargraph width must be at most %d", c.Name, BargraphHeight)
		}
		if c.H%4 != 0 {
			return fmt.Errorf("waveform: %s: bargraph height must be a multiple of 4", c.Name)
		}
	}
	return nil
}

// LineBytes returns the number of bytes of one line.
func (c Config) LineBytes() int {
	c = c.withDefaults()
	return c.Format.LineBytes(c.W)
}

// Size returns the number of bytes of device memory the channel uses.
func (c Config) Size() int {
	return RingSize(c.H, c.LineBytes())
}

// ChannelOpts are the shared resources of a channel.
type ChannelOpts struct {
	// Paletted8 color table (default: DefaultPalette) and where it was
	// uploaded
	Palette     Palette
	PaletteAddr eve.Addr

	// Paletted8 background (default: black)
	Background Color

	// Optional logger
	Log *logrus.Entry
}

// Channel is one scrolling trace.
//
// A channel is not safe for concurrent use. Reset and SetZoom must not run
// while a Push is in progress.
type Channel struct {
	cfg     Config
	mem     Memory
	ring    *Ring
	enc     *encoder
	fg, bg  byte
	palette eve.Addr
	scratch []byte
	log     *logrus.Entry
}

// NewChannel allocates a channel at base and clears its memory.
func NewChannel(mem Memory, base eve.Addr, cfg Config, opts *ChannelOpts) (*Channel, error) {
	if opts == nil {
		opts = &ChannelOpts{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	c := &Channel{
		cfg:     cfg,
		mem:     mem,
		palette: opts.PaletteAddr,
		log:     logger(opts.Log).WithField("channel", cfg.Name),
	}
	if cfg.Format == Paletted8 {
		pal := opts.Palette
		if pal == nil {
			pal = DefaultPalette
		}
		var ok bool
		if c.fg, ok = pal.Index(cfg.Color.RGBA()); !ok {
			return nil, fmt.Errorf("waveform: %s: color %v is not in the palette", cfg.Name, cfg.Color.RGBA())
		}
		bg := opts.Background.RGBA()
		if c.bg, ok = pal.Index(bg); !ok {
			return nil, fmt.Errorf("waveform: %s: background %v is not in the palette", cfg.Name, bg)
		}
	}
	if cfg.Format.wordAligned() {
		w, err := newWordWriter(mem, base, cfg.Size())
		if err != nil {
			return nil, fmt.Errorf("waveform: %s: %w", cfg.Name, err)
		}
		c.mem = w
	}
	r, err := NewRing(c.mem, base, cfg.H, cfg.LineBytes(), c.log)
	if err != nil {
		return nil, err
	}
	c.ring = r
	if err := c.Reset(); err != nil {
		return nil, err
	}
	b0, b1, b2, end := r.Bases()
	c.log.WithFields(logrus.Fields{
		"format": cfg.Format,
		"size":   fmt.Sprintf("%dx%d", cfg.W, cfg.H),
		"zoom":   cfg.Zoom,
		"base0":  b0,
		"base1":  b1,
		"base2":  b2,
		"end2":   end,
	}).Info("channel ready")
	return c, nil
}

// Reset clears the channel memory and rewinds its cursors.
func (c *Channel) Reset() error {
	c.enc = newEncoder(c.cfg.Format, c.cfg.W, c.cfg.Zoom, c.fg, c.bg)
	if err := c.ring.Reset(c.cfg.Format.Background(c.bg)); err != nil {
		return fmt.Errorf("waveform: %s: %w", c.cfg.Name, err)
	}
	return nil
}

// SetZoom changes the number of lines per sample and resets the channel.
func (c *Channel) SetZoom(z int) error {
	if z < 1 || z > MaxZoom {
		return fmt.Errorf("waveform: %s: zoom must be between 1 and %d", c.cfg.Name, MaxZoom)
	}
	c.cfg.Zoom = z
	return c.Reset()
}

// Push encodes samples and appends them to the ring. It returns the number of
// samples consumed, which is all of them unless an error occurred.
func (c *Channel) Push(ctx context.Context, samples []byte) (int, error) {
	if len(samples) == 0 {
		return 0, nil
	}
	last, hasLast := c.enc.last, c.enc.hasLast
	c.scratch = c.scratch[:0]
	for _, v := range samples {
		c.scratch = c.enc.encode(c.scratch, v)
	}
	if _, err := c.ring.Append(ctx, c.scratch); err != nil {
		// The ring did not move, neither does the trace.
		c.enc.last, c.enc.hasLast = last, hasLast
		return 0, fmt.Errorf("waveform: %s: %w", c.cfg.Name, err)
	}
	return len(samples), nil
}

// Binding returns the draw commands of the current window.
func (c *Channel) Binding() Binding {
	rp := c.ring.Cursors().RP
	fg := c.cfg.Color.RGBA()
	switch c.cfg.Format {
	case Paletted8:
		return Binding{
			Source:      rp,
			Format:      eve.FormatPaletted8,
			W:           c.cfg.W,
			H:           c.cfg.H,
			Paletted:    true,
			PaletteAddr: c.palette,
			Rotation:    eve.RotateLeft,
			Draws:       []Draw{{X: c.cfg.X, Y: c.cfg.Y, Color: color.RGBA{R: 255, G: 255, B: 255, A: 255}}},
		}
	case BargraphPacked:
		// Draw the bars three times one pixel up, then carve the inside
		// in black so only a thin line remains.
		x, y := c.cfg.X, c.cfg.Y
		return Binding{
			Source:   rp,
			Format:   eve.FormatBargraph,
			W:        c.cfg.H,
			H:        BargraphHeight,
			Rotation: eve.RotateNone,
			Draws: []Draw{
				{X: x, Y: y - 1, Color: fg},
				{X: x - 1, Y: y - 1, Color: fg},
				{X: x + 1, Y: y - 1, Color: fg},
				{X: x, Y: y, Color: color.RGBA{A: 255}},
			},
		}
	}
	return Binding{
		Source:   rp,
		Format:   eve.FormatL1,
		W:        c.cfg.W,
		H:        c.cfg.H,
		Rotation: eve.RotateLeft,
		Draws:    []Draw{{X: c.cfg.X, Y: c.cfg.Y, Color: fg}},
	}
}

// Name returns the channel name.
func (c *Channel) Name() string {
	return c.cfg.Name
}

// Config returns the channel configuration with defaults applied.
func (c *Channel) Config() Config {
	return c.cfg
}

// Ring returns the ring backing the channel.
func (c *Channel) Ring() *Ring {
	return c.ring
}
