package waveform

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"golang.org/x/image/colornames"
	"periph.io/x/devices/v3/eve"
)

// Layout places a set of channels in device memory and on screen.
type Layout struct {
	// First device address used
	Base eve.Addr `toml:"base"`
	// Paletted8 background (default: black)
	Background Color `toml:"background"`

	Channels []Config `toml:"channel"`
}

// DefaultLayout is the three traces of a bedside monitor on a WVGA panel.
func DefaultLayout() Layout {
	ch := func(name string, c Color, y int) Config {
		return Config{
			Name:   name,
			Format: Mono1bpp,
			W:      160,
			H:      780,
			Zoom:   1,
			Color:  c,
			X:      10,
			Y:      y,
		}
	}
	return Layout{
		Base:       eve.RAMG,
		Background: Color(colornames.Black),
		Channels: []Config{
			ch("ECG", Color(colornames.Lime), 0),
			ch("PLETH", Color(colornames.Cyan), 160),
			ch("CO2", Color(colornames.Yellow), 320),
		},
	}
}

// LoadLayout reads a layout from a TOML file.
func LoadLayout(path string) (Layout, error) {
	var l Layout
	md, err := toml.DecodeFile(path, &l)
	if err != nil {
		return Layout{}, fmt.Errorf("waveform: %w", err)
	}
	if err := undecoded(md); err != nil {
		return Layout{}, err
	}
	return l, nil
}

// DecodeLayout reads a layout in TOML from r.
func DecodeLayout(r io.Reader) (Layout, error) {
	var l Layout
	md, err := toml.NewDecoder(r).Decode(&l)
	if err != nil {
		return Layout{}, fmt.Errorf("waveform: %w", err)
	}
	if err := undecoded(md); err != nil {
		return Layout{}, err
	}
	return l, nil
}

// Encode writes l in TOML to w.
func (l Layout) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(l)
}

func undecoded(md toml.MetaData) error {
	keys := md.Undecoded()
	if len(keys) == 0 {
		return nil
	}
	s := make([]string, len(keys))
	for i, k := range keys {
		s[i] = k.String()
	}
	sort.Strings(s)
	return fmt.Errorf("waveform: unknown layout keys: %s", strings.Join(s, ", "))
}
