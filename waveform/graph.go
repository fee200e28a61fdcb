package waveform

import (
	"context"
	"errors"
	"fmt"

	"gopkg.in/Sirupsen/logrus.v0"
	"periph.io/x/devices/v3/eve"
	"periph.io/x/devices/v3/eve/sample"
)

// GraphOpts is the configuration of a Graph beyond its layout.
type GraphOpts struct {
	// Paletted8 color table (default: DefaultPalette)
	Palette Palette

	// Optional per frame trace
	Trace *Trace

	// Optional logger
	Log *logrus.Entry
}

// Graph is a set of channels packed in device memory and rendered together.
type Graph struct {
	layout   Layout
	palette  eve.Addr
	paletted bool
	end      eve.Addr // First byte past the graph

	channels []*Channel
	sources  []sample.Source
	buf      []byte

	trace *Trace
	frame int
	log   *logrus.Entry
}

// NewGraph lays the palette and the channel rings out from l.Base, uploads the
// palette and clears every channel.
func NewGraph(mem Memory, l Layout, opts *GraphOpts) (*Graph, error) {
	if opts == nil {
		opts = &GraphOpts{}
	}
	if len(l.Channels) == 0 {
		return nil, errors.New("waveform: layout has no channel")
	}
	pal := opts.Palette
	if pal == nil {
		pal = DefaultPalette
	}
	g := &Graph{
		layout:  l,
		sources: make([]sample.Source, len(l.Channels)),
		trace:   opts.Trace,
		log:     logger(opts.Log),
	}

	// Validate everything before touching the device.
	addr := l.Base.Align(4)
	names := map[string]bool{}
	maxH := 0
	for _, c := range l.Channels {
		if err := c.Validate(); err != nil {
			return nil, err
		}
		if names[c.Name] {
			return nil, fmt.Errorf("waveform: duplicate channel %q", c.Name)
		}
		names[c.Name] = true
		maxH = max(maxH, c.H)
		g.paletted = g.paletted || c.Format == Paletted8
	}
	if g.paletted {
		g.palette = addr
		addr = addr.Add(4 * len(pal))
	}
	bases := make([]eve.Addr, len(l.Channels))
	for i, c := range l.Channels {
		addr = addr.Align(4)
		bases[i] = addr
		addr = addr.Add(c.Size())
	}
	if addr > eve.RAMGEnd {
		return nil, fmt.Errorf("waveform: layout needs %d bytes from %v, past the end of RAM_G", addr.Sub(l.Base), l.Base)
	}
	g.end = addr

	if g.paletted {
		if err := mem.Write(g.palette, pal.Bytes()); err != nil {
			return nil, fmt.Errorf("waveform: palette %v: %w", g.palette, err)
		}
	}
	for i, c := range l.Channels {
		ch, err := NewChannel(mem, bases[i], c, &ChannelOpts{
			Palette:     pal,
			PaletteAddr: g.palette,
			Background:  l.Background,
			Log:         opts.Log,
		})
		if err != nil {
			return nil, err
		}
		g.channels = append(g.channels, ch)
	}
	g.buf = make([]byte, maxH)
	g.log.WithFields(logrus.Fields{
		"channels": len(g.channels),
		"base":     l.Base,
		"end":      g.end,
	}).Info("graph ready")
	return g, nil
}

// Channels returns the channels in layout order.
func (g *Graph) Channels() []*Channel {
	return g.channels
}

// Channel returns the channel called name, or nil.
func (g *Graph) Channel(name string) *Channel {
	for _, c := range g.channels {
		if c.Name() == name {
			return c
		}
	}
	return nil
}

// Layout returns the layout the graph was built from.
func (g *Graph) Layout() Layout {
	return g.layout
}

// End returns the first device address past the graph.
func (g *Graph) End() eve.Addr {
	return g.end
}

// Bind sets the source of the channel called name.
func (g *Graph) Bind(name string, src sample.Source) error {
	for i, c := range g.channels {
		if c.Name() == name {
			g.sources[i] = src
			return nil
		}
	}
	return fmt.Errorf("waveform: no channel %q", name)
}

// Frame pulls new samples for every channel, appends them and issues the
// channel bindings to d. Channels without a source are redrawn unchanged.
//
// d must be inside a display list. On error the frame is abandoned; channels
// already appended keep their new content.
func (g *Graph) Frame(ctx context.Context, d Display) error {
	g.frame++
	for i, c := range g.channels {
		n := 0
		if src := g.sources[i]; src != nil {
			n = src.Pull(g.buf[:c.cfg.H])
		}
		if _, err := c.Push(ctx, g.buf[:n]); err != nil {
			return err
		}
		if err := c.Binding().Issue(d); err != nil {
			return fmt.Errorf("waveform: %s: %w", c.Name(), err)
		}
		if g.trace != nil {
			cur := c.ring.Cursors()
			rec := Record{
				Frame:   g.frame,
				Channel: c.Name(),
				Samples: n,
				RP:      cur.RP,
				WP:      cur.WP,
				WPLB:    cur.WPLB,
			}
			if st := c.ring.Last(); n > 0 && st.Wrapped {
				rec.Wrapped, rec.Gap = true, st.Gap
			}
			if err := g.trace.Record(rec); err != nil {
				return err
			}
		}
	}
	g.log.WithField("frame", g.frame).Debug("frame")
	return nil
}

// SetZoom changes the zoom of every channel, resetting them.
func (g *Graph) SetZoom(z int) error {
	for _, c := range g.channels {
		if err := c.SetZoom(z); err != nil {
			return err
		}
	}
	return nil
}
