package waveform

import (
	"context"
	"image/color"
	"io"

	"gopkg.in/Sirupsen/logrus.v0"
	"periph.io/x/devices/v3/eve"
)

// Memory is the coprocessor memory as seen by a ring.
//
// Copy must be observably complete before a bitmap is drawn from dst. Devices
// that defer copies also implement Fencer.
type Memory interface {
	Write(addr eve.Addr, p []byte) error
	Copy(dst, src eve.Addr, n int) error
	Fill(addr eve.Addr, v byte, n int) error
}

// Fencer is implemented by memories whose operations complete asynchronously.
// Fence returns once every operation issued before it is visible to the
// display engine.
type Fencer interface {
	Fence(ctx context.Context) error
}

// Display receives the per frame bitmap commands of a channel. Calls are
// bracketed by a display list begin and end owned by the caller.
type Display interface {
	SetBitmap(addr eve.Addr, f eve.Format, w, h int) error
	SetPaletteSource(addr eve.Addr) error
	Blit(x, y int, c color.RGBA, rot eve.Rotation) error
}

// discard returns a logger that writes nowhere.
func discard() *logrus.Entry {
	l := logrus.New()
	l.Out = io.Discard
	return logrus.NewEntry(l)
}

func logger(l *logrus.Entry) *logrus.Entry {
	if l == nil {
		l = discard()
	}
	return l.WithField("mod", "waveform")
}
