// Package waveform draws scrolling strip charts with an EVE coprocessor.
//
// Each channel owns a ring of three segments in RAM_G. New samples are
// rendered to lines on the host and appended at the write cursor; the
// display is pointed at a window one segment long that ends at the write
// cursor. Scrolling a trace therefore costs one line write per sample and a
// new bitmap source address per frame, whatever the size of the graph.
//
// A Graph groups the channels of a screen, pulls samples from their sources
// and issues their bitmaps inside the caller's display list:
//
//	g, err := waveform.NewGraph(dev, waveform.DefaultLayout(), nil)
//	...
//	g.Bind("ECG", sample.ECG(nil))
//	for {
//		dev.Begin()
//		if err := g.Frame(ctx, dev); err != nil {
//			...
//		}
//		if err := dev.End(); err != nil {
//			...
//		}
//	}
package waveform
