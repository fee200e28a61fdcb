package waveform

import (
	"fmt"
	"io"

	"github.com/go-faster/jx"
	"periph.io/x/devices/v3/eve"
)

// Record is the state of one channel after one frame.
type Record struct {
	Frame   int
	Channel string
	Samples int
	RP      eve.Addr
	WP      eve.Addr
	WPLB    eve.Addr
	Wrapped bool
	Gap     int
}

// Trace writes one JSON object per line and per Record.
type Trace struct {
	w io.Writer
	e *jx.Encoder
}

// NewTrace returns a Trace writing to w.
func NewTrace(w io.Writer) *Trace {
	return &Trace{w: w, e: jx.GetEncoder()}
}

// Record writes r.
func (t *Trace) Record(r Record) error {
	e := t.e
	e.Reset()
	e.ObjStart()
	e.FieldStart("frame")
	e.Int(r.Frame)
	e.FieldStart("channel")
	e.Str(r.Channel)
	e.FieldStart("samples")
	e.Int(r.Samples)
	e.FieldStart("rp")
	e.UInt32(uint32(r.RP))
	e.FieldStart("wp")
	e.UInt32(uint32(r.WP))
	e.FieldStart("wplb")
	e.UInt32(uint32(r.WPLB))
	e.FieldStart("wrapped")
	e.Bool(r.Wrapped)
	if r.Wrapped {
		e.FieldStart("gap")
		e.Int(r.Gap)
	}
	e.ObjEnd()
	b := append(e.Bytes(), '\n')
	if _, err := t.w.Write(b); err != nil {
		return fmt.Errorf("waveform: trace: %w", err)
	}
	return nil
}

// DecodeRecord parses one line written by Trace.
func DecodeRecord(b []byte) (Record, error) {
	var r Record
	err := jx.DecodeBytes(b).Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "frame":
			r.Frame, err = d.Int()
		case "channel":
			r.Channel, err = d.Str()
		case "samples":
			r.Samples, err = d.Int()
		case "rp":
			var v uint32
			v, err = d.UInt32()
			r.RP = eve.Addr(v)
		case "wp":
			var v uint32
			v, err = d.UInt32()
			r.WP = eve.Addr(v)
		case "wplb":
			var v uint32
			v, err = d.UInt32()
			r.WPLB = eve.Addr(v)
		case "wrapped":
			r.Wrapped, err = d.Bool()
		case "gap":
			r.Gap, err = d.Int()
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		return Record{}, fmt.Errorf("waveform: trace record: %w", err)
	}
	return r, nil
}
