package waveform

import (
	"context"
	"errors"
	"fmt"

	"gopkg.in/Sirupsen/logrus.v0"
	"periph.io/x/devices/v3/eve"
)

// Cursors are the three positions of a ring.
type Cursors struct {
	RP   eve.Addr // First line of the window the display reads
	WP   eve.Addr // Next line to write
	WPLB eve.Addr // Next mirror destination in segment 0
}

// Ring is a strip chart buffer made of three segments of one window each.
//
//	<-------- RP window
//	-------------------------------------------------
//	|   segment 0   |   segment 1   |   segment 2   |
//	-------------------------------------------------
//	                <-------- WP ------------------>
//
// Lines written in segment 2 are mirrored to segment 0. When segment 2 is
// full, writing resumes in segment 0 past the mirrored lines, and the window
// never has to straddle the end of the buffer.
//
// RP always trails WP by exactly one segment, so the window holds the latest
// lines.
type Ring struct {
	mem       Memory
	log       *logrus.Entry
	lineBytes int
	seg       int // Bytes per segment

	base0, base1, base2, end2 eve.Addr

	cur  Cursors
	last AppendStats
}

// AppendStats describes the outcome of the last Append.
type AppendStats struct {
	Lines   int  // Lines appended
	Wrapped bool // Writing resumed in segment 0
	Gap     int  // Lines skipped by RP on the last wrap
}

// NewRing returns a ring of three segments of lines lines each, starting at
// base. Call Reset before appending.
func NewRing(mem Memory, base eve.Addr, lines, lineBytes int, log *logrus.Entry) (*Ring, error) {
	if lines <= 0 || lineBytes <= 0 {
		return nil, errors.New("waveform: ring needs at least one line of one byte")
	}
	seg := lines * lineBytes
	r := &Ring{
		mem:       mem,
		log:       logger(log),
		lineBytes: lineBytes,
		seg:       seg,
		base0:     base,
		base1:     base.Add(seg),
		base2:     base.Add(2 * seg),
		end2:      base.Add(3 * seg),
	}
	r.cur = Cursors{RP: r.base0, WP: r.base1, WPLB: r.base0}
	return r, nil
}

// RingSize returns the number of bytes used by a ring.
func RingSize(lines, lineBytes int) int {
	return 3 * lines * lineBytes
}

// Reset fills the whole ring with bg and rewinds the cursors.
func (r *Ring) Reset(bg byte) error {
	if err := r.mem.Fill(r.base0, bg, 3*r.seg); err != nil {
		return fmt.Errorf("waveform: fill %v: %w", r.base0, err)
	}
	r.cur = Cursors{RP: r.base0, WP: r.base1, WPLB: r.base0}
	r.last = AppendStats{}
	return nil
}

// Cursors returns the current cursors.
func (r *Ring) Cursors() Cursors {
	return r.cur
}

// Bases returns the start of each segment and the end of the ring.
func (r *Ring) Bases() (base0, base1, base2, end2 eve.Addr) {
	return r.base0, r.base1, r.base2, r.end2
}

// LineBytes returns the number of bytes in one line.
func (r *Ring) LineBytes() int {
	return r.lineBytes
}

// Last returns the outcome of the last Append.
func (r *Ring) Last() AppendStats {
	return r.last
}

// Append writes whole lines at WP and returns how many were consumed.
//
// The cursors are only updated once every write and mirror copy was issued
// and, if the memory implements Fencer, fenced. On error they keep their
// previous value. An append of at most one window only writes outside the
// window; a longer one may already have overwritten part of it when the error
// occurs.
//
// len(p) must be a multiple of the line size.
func (r *Ring) Append(ctx context.Context, p []byte) (int, error) {
	if len(p)%r.lineBytes != 0 {
		panic(fmt.Sprintf("waveform: append of %d bytes is not a whole number of %d bytes lines", len(p), r.lineBytes))
	}
	stats := AppendStats{Lines: len(p) / r.lineBytes}
	if len(p) == 0 {
		r.last = stats
		return 0, nil
	}
	c := r.cur
	mirrored := false
	for len(p) > 0 {
		space := r.end2.Sub(c.WP)
		if len(p) < space {
			m, err := r.write(&c, p)
			if err != nil {
				return 0, err
			}
			mirrored = mirrored || m
			break
		}
		if c.WP < r.base2 {
			// Fill segment 1 first, the wrap only happens from segment 2.
			n := r.base2.Sub(c.WP)
			if _, err := r.write(&c, p[:n]); err != nil {
				return 0, err
			}
			p = p[n:]
			continue
		}

		// Segment 2 is full: resume in segment 0 past the mirrored lines.
		n := min(len(p), r.base2.Sub(c.WPLB))
		gap := c.WP.Add(n).Sub(r.end2)
		if err := r.mem.Write(c.WPLB, p[:n]); err != nil {
			return 0, fmt.Errorf("waveform: write %v: %w", c.WPLB, err)
		}
		c.WP = c.WPLB.Add(n)
		c.RP = r.base0.Add(gap)
		c.WPLB = r.base0
		stats.Wrapped = true
		stats.Gap = gap / r.lineBytes
		r.log.WithFields(logrus.Fields{
			"rp":   c.RP,
			"wp":   c.WP,
			"gap":  stats.Gap,
			"base": r.base0,
		}).Debug("wrap")
		p = p[n:]
	}
	if mirrored {
		if f, ok := r.mem.(Fencer); ok {
			if err := f.Fence(ctx); err != nil {
				return 0, fmt.Errorf("waveform: fence: %w", err)
			}
		}
	}
	r.cur = c
	r.last = stats
	return stats.Lines, nil
}

// write writes p at c.WP, which must not reach the end of the ring, and
// mirrors the part past base2 to segment 0.
func (r *Ring) write(c *Cursors, p []byte) (mirrored bool, err error) {
	if err := r.mem.Write(c.WP, p); err != nil {
		return false, fmt.Errorf("waveform: write %v: %w", c.WP, err)
	}
	end := c.WP.Add(len(p))
	if end > r.base2 {
		from := max(c.WP, r.base2)
		dst := r.base0.Add(from.Sub(r.base2))
		if err := r.mem.Copy(dst, from, end.Sub(from)); err != nil {
			return false, fmt.Errorf("waveform: copy %v to %v: %w", from, dst, err)
		}
		c.WPLB = r.base0.Add(end.Sub(r.base2))
		mirrored = true
	}
	c.WP = end
	c.RP = end.Add(-r.seg)
	return mirrored, nil
}

// check verifies the cursor invariants.
func (r *Ring) check() error {
	c := r.cur
	for _, a := range []struct {
		name string
		v    eve.Addr
	}{{"rp", c.RP}, {"wp", c.WP}, {"wplb", c.WPLB}} {
		if a.v < r.base0 || a.v >= r.end2 {
			return fmt.Errorf("%s %v outside [%v, %v)", a.name, a.v, r.base0, r.end2)
		}
		if a.v.Sub(r.base0)%r.lineBytes != 0 {
			return fmt.Errorf("%s %v not on a line boundary", a.name, a.v)
		}
	}
	lag := c.WP.Sub(c.RP)
	if lag < 0 {
		lag += 3 * r.seg
	}
	if lag > 2*r.seg {
		return fmt.Errorf("wp %v is %d bytes ahead of rp %v", c.WP, lag, c.RP)
	}
	if c.RP.Add(r.seg) != c.WP {
		return fmt.Errorf("window [%v, %v) does not end at wp %v", c.RP, c.RP.Add(r.seg), c.WP)
	}
	want := r.base0
	if c.WP > r.base2 {
		want = r.base0.Add(c.WP.Sub(r.base2))
	}
	if c.WPLB != want {
		return fmt.Errorf("wplb %v, want %v", c.WPLB, want)
	}
	return nil
}
