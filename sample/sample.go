// Package sample provides the sample sources feeding waveform channels.
package sample

import "time"

// Source produces raw samples.
//
// Pull copies the samples accumulated since the previous call into buf and
// returns how many were copied. It never blocks and may return 0.
type Source interface {
	Pull(buf []byte) int
}

// Table loops over a recorded waveform at the pace of a clock.
//
// One pull returns at most the rest of the table, so a long pause does not
// produce a burst of more than one period.
type Table struct {
	data   []byte
	period time.Duration
	now    func() time.Time

	start   time.Time // Time of the next sample
	started bool
	off     int // Next sample
}

// NewTable returns a source playing data once per period. now defaults to
// time.Now.
func NewTable(data []byte, period time.Duration, now func() time.Time) *Table {
	if now == nil {
		now = time.Now
	}
	if period <= 0 {
		period = time.Second
	}
	return &Table{data: data, period: period, now: now}
}

// Rate returns the number of samples per second.
func (t *Table) Rate() float64 {
	return float64(len(t.data)) / t.period.Seconds()
}

// Pull implements Source.
func (t *Table) Pull(buf []byte) int {
	if len(t.data) == 0 {
		return 0
	}
	n := t.now()
	if !t.started {
		t.start, t.started = n, true
		return 0
	}
	elapsed := n.Sub(t.start)
	k := int(elapsed * time.Duration(len(t.data)) / t.period)
	if k <= 0 {
		return 0
	}
	capped := false
	if r := len(t.data) - t.off; k > r {
		k, capped = r, true
	}
	if k > len(buf) {
		k, capped = len(buf), true
	}
	copy(buf, t.data[t.off:t.off+k])
	t.off = (t.off + k) % len(t.data)
	if capped {
		// Drop the backlog instead of catching up.
		t.start = n
	} else {
		t.start = t.start.Add(time.Duration(k) * t.period / time.Duration(len(t.data)))
	}
	return k
}

// Reset restarts the table from its first sample.
func (t *Table) Reset() {
	t.started = false
	t.off = 0
}

// Slice is a source returning a fixed run of samples, as fast as it is
// pulled.
type Slice struct {
	data []byte
}

// NewSlice returns a Slice over data.
func NewSlice(data []byte) *Slice {
	return &Slice{data: data}
}

// Pull implements Source.
func (s *Slice) Pull(buf []byte) int {
	n := copy(buf, s.data)
	s.data = s.data[n:]
	return n
}

// Len returns the number of samples left.
func (s *Slice) Len() int {
	return len(s.data)
}
