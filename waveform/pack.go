package waveform

import (
	"context"
	"fmt"

	"periph.io/x/devices/v3/eve"
)

// wordWriter adapts a Memory for bitmaps the device only accepts 32 bits
// writes for.
//
// It keeps a copy of the region it covers. Writes are widened to whole
// aligned words completed from that copy, so bytes accumulate four at a time
// without ever leaving the device behind the cursors. Mirror copies are
// turned into word writes as well.
type wordWriter struct {
	mem    Memory
	base   eve.Addr
	shadow []byte
}

func newWordWriter(mem Memory, base eve.Addr, size int) (*wordWriter, error) {
	if base%4 != 0 || size%4 != 0 {
		return nil, fmt.Errorf("waveform: word aligned region %v+%d is not aligned", base, size)
	}
	return &wordWriter{mem: mem, base: base, shadow: make([]byte, size)}, nil
}

// span returns the shadow offsets of the aligned words covering [addr, addr+n).
func (w *wordWriter) span(addr eve.Addr, n int) (lo, hi int) {
	off := addr.Sub(w.base)
	if off < 0 || off+n > len(w.shadow) {
		panic(fmt.Sprintf("waveform: %v+%d outside of word aligned region %v+%d", addr, n, w.base, len(w.shadow)))
	}
	return off &^ 3, (off + n + 3) &^ 3
}

func (w *wordWriter) flush(lo, hi int) error {
	return w.mem.Write(w.base.Add(lo), w.shadow[lo:hi])
}

func (w *wordWriter) Write(addr eve.Addr, p []byte) error {
	if len(p) == 0 {
		return nil
	}
	lo, hi := w.span(addr, len(p))
	copy(w.shadow[addr.Sub(w.base):], p)
	return w.flush(lo, hi)
}

func (w *wordWriter) Copy(dst, src eve.Addr, n int) error {
	if n <= 0 {
		return nil
	}
	w.span(src, n)
	lo, hi := w.span(dst, n)
	s := src.Sub(w.base)
	copy(w.shadow[dst.Sub(w.base):], w.shadow[s:s+n])
	return w.flush(lo, hi)
}

func (w *wordWriter) Fill(addr eve.Addr, v byte, n int) error {
	if n <= 0 {
		return nil
	}
	w.span(addr, n)
	off := addr.Sub(w.base)
	for i := off; i < off+n; i++ {
		w.shadow[i] = v
	}
	return w.mem.Fill(addr, v, n)
}

// Fence forwards to the underlying memory, if it needs one.
func (w *wordWriter) Fence(ctx context.Context) error {
	if f, ok := w.mem.(Fencer); ok {
		return f.Fence(ctx)
	}
	return nil
}
