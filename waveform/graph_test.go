package waveform

import (
	"bufio"
	"bytes"
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/image/colornames"
	"periph.io/x/devices/v3/eve"
	"periph.io/x/devices/v3/eve/evetest"
	"periph.io/x/devices/v3/eve/sample"
)

func testLayout() Layout {
	return Layout{
		Base:       0x10,
		Background: Color(colornames.Black),
		Channels: []Config{
			{Name: "a", Format: Paletted8, W: 16, H: 4, Color: Color(colornames.Lime)},
			{Name: "b", Format: Mono1bpp, W: 16, H: 4, Y: 40},
		},
	}
}

func TestNewGraph(t *testing.T) {
	d := evetest.New(evetest.Immediate)
	g, err := NewGraph(d, testLayout(), nil)
	if err != nil {
		t.Fatal(err)
	}
	pal := DefaultPalette.Bytes()
	if diff := cmp.Diff(pal, d.Read(0x10, len(pal))); diff != "" {
		t.Errorf("palette (-want +got):\n%s", diff)
	}
	var bases []eve.Addr
	for _, c := range g.Channels() {
		b0, _, _, _ := c.Ring().Bases()
		bases = append(bases, b0)
	}
	if diff := cmp.Diff([]eve.Addr{0x8C, 0x14C}, bases); diff != "" {
		t.Errorf("bases (-want +got):\n%s", diff)
	}
	if g.End() != 0x164 {
		t.Errorf("End() = %v", g.End())
	}
	if got := g.Channel("a").Binding().PaletteAddr; got != 0x10 {
		t.Errorf("PaletteAddr = %v", got)
	}
	if g.Channel("c") != nil {
		t.Error("unexpected channel")
	}
}

func TestNewGraphDefault(t *testing.T) {
	d := evetest.New(evetest.Deferred)
	g, err := NewGraph(d, DefaultLayout(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(g.Channels()) != 3 {
		t.Fatalf("%d channels", len(g.Channels()))
	}
	if g.End() > eve.RAMGEnd {
		t.Errorf("End() = %v", g.End())
	}
	// Without any Paletted8 channel there is no palette.
	if d.Writes != 0 {
		t.Errorf("%d writes", d.Writes)
	}
}

func TestNewGraphInvalid(t *testing.T) {
	tests := []struct {
		name string
		l    func() Layout
	}{
		{"empty", func() Layout { return Layout{} }},
		{"duplicate", func() Layout {
			l := testLayout()
			l.Channels[1].Name = "a"
			return l
		}},
		{"invalid channel", func() Layout {
			l := testLayout()
			l.Channels[0].H = 0
			return l
		}},
		{"too large", func() Layout {
			l := testLayout()
			l.Channels[0].W, l.Channels[0].H = 2000, 2000
			return l
		}},
		{"background not in palette", func() Layout {
			l := testLayout()
			l.Background = Color{R: 1, G: 2, B: 3, A: 255}
			return l
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := evetest.New(evetest.Immediate)
			if _, err := NewGraph(d, tt.l(), nil); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestGraphFrame(t *testing.T) {
	d := evetest.New(evetest.Deferred)
	var buf bytes.Buffer
	g, err := NewGraph(d, testLayout(), &GraphOpts{Trace: NewTrace(&buf)})
	if err != nil {
		t.Fatal(err)
	}
	if err := g.Bind("a", sample.NewSlice([]byte{10, 20, 30, 40, 50, 60, 70})); err != nil {
		t.Fatal(err)
	}
	if err := g.Bind("z", sample.NewSlice(nil)); err == nil {
		t.Error("expected error binding an unknown channel")
	}
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		d.Begin()
		if err := g.Frame(ctx, d); err != nil {
			t.Fatal(err)
		}
		if err := d.End(); err != nil {
			t.Fatal(err)
		}
	}
	if d.Pending() != 0 {
		t.Errorf("%d copies left unfenced", d.Pending())
	}
	frame := d.Frame()
	if len(frame) != 2 {
		t.Fatalf("%d blits", len(frame))
	}
	if frame[0].Format != eve.FormatPaletted8 || frame[1].Format != eve.FormatL1 {
		t.Errorf("formats %v %v", frame[0].Format, frame[1].Format)
	}
	if frame[0].Addr != g.Channel("a").Ring().Cursors().RP {
		t.Errorf("blit from %v", frame[0].Addr)
	}
	for _, c := range g.Channels() {
		if err := c.Ring().check(); err != nil {
			t.Errorf("%s: %v", c.Name(), err)
		}
	}

	// Channel "a" pulls at most one window per frame: 4, 3 and 0 samples.
	var samples []int
	sc := bufio.NewScanner(&buf)
	for sc.Scan() {
		r, err := DecodeRecord(sc.Bytes())
		if err != nil {
			t.Fatal(err)
		}
		if r.Channel == "a" {
			samples = append(samples, r.Samples)
		}
	}
	if diff := cmp.Diff([]int{4, 3, 0}, samples); diff != "" {
		t.Errorf("samples (-want +got):\n%s", diff)
	}
}

func TestGraphSetZoom(t *testing.T) {
	g, err := NewGraph(evetest.New(evetest.Immediate), testLayout(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := g.SetZoom(3); err != nil {
		t.Fatal(err)
	}
	for _, c := range g.Channels() {
		if c.Config().Zoom != 3 {
			t.Errorf("%s: zoom %d", c.Name(), c.Config().Zoom)
		}
	}
	if err := g.SetZoom(0); err == nil {
		t.Error("expected error")
	}
}
