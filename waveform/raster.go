package waveform

// graphMin is the lowest plotted coordinate, keeping a margin at the edge of
// the graph.
const graphMin = 5

// Normalize maps v from [smin, smax] onto [graphMin, gmax] with integer
// arithmetic.
//
// A degenerate sensor range maps to graphMin.
func Normalize(v, smin, smax, gmax int) int {
	if smax == smin {
		return graphMin
	}
	return gmax - (gmax-graphMin)*(smax-v)/(smax-smin)
}

// span plots the pixels of the Bresenham line from x0 to x1 that fall on one
// line of the bitmap.
//
// Consecutive samples are one line apart on the time axis, so the line is
// always x-major and every pixel between both ends is drawn. Both ends are
// included, which keeps the trace free of holes where two lines meet.
// Coordinates outside [0, bound) are skipped.
func span(x0, x1, bound int, plot func(x int)) {
	sx := 1
	if x1 < x0 {
		sx = -1
	}
	for x := x0; ; x += sx {
		if x >= 0 && x < bound {
			plot(x)
		}
		if x == x1 {
			return
		}
	}
}
