package viz

import (
	"github.com/guptarohit/asciigraph"
)

const (
	PlotWidth  = 80
	PlotHeight = 10
)

// Downsample keeps at most n points of data, taking the sample with the
// largest magnitude from each bucket so that pulses survive.
func Downsample(data []float64, n int) []float64 {
	if n <= 0 || len(data) <= n {
		return data
	}

	out := make([]float64, n)
	for i := range out {
		lo := i * len(data) / n
		hi := max((i+1)*len(data)/n, lo+1)
		best := data[lo]
		for _, v := range data[lo:hi] {
			if abs(v) > abs(best) {
				best = v
			}
		}
		out[i] = best
	}
	return out
}

// PlotTrace draws data with asciigraph. Zero width or height uses the
// package defaults.
func PlotTrace(data []float64, caption string, width, height int) string {
	if len(data) == 0 {
		return Subtle.Render("(no samples)")
	}
	if width <= 0 {
		width = PlotWidth
	}
	if height <= 0 {
		height = PlotHeight
	}

	return asciigraph.Plot(Downsample(data, width),
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption))
}

// PlotSeries draws several series of equal meaning on one graph.
func PlotSeries(series [][]float64, caption string, width, height int) string {
	if width <= 0 {
		width = PlotWidth
	}
	if height <= 0 {
		height = PlotHeight
	}

	data := make([][]float64, 0, len(series))
	for _, s := range series {
		if len(s) > 0 {
			data = append(data, Downsample(s, width))
		}
	}
	if len(data) == 0 {
		return Subtle.Render("(no samples)")
	}

	return asciigraph.PlotMany(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.SeriesColors(asciigraph.Red, asciigraph.Blue, asciigraph.Green),
		asciigraph.Caption(caption))
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
