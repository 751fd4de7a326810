// Package export writes probe traces and field planes as standalone SVG.
package export

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
)

var ErrTooFewSamples = errors.New("need at least two samples")

const background = "#0a0a0a"

// TraceToSVG draws values over times as a single polyline with a zero line.
func TraceToSVG(times, values []float64, width, height int, stroke string) (string, error) {
	if len(times) != len(values) {
		return "", fmt.Errorf("trace length mismatch: %d times, %d values", len(times), len(values))
	}
	if len(values) < 2 {
		return "", ErrTooFewSamples
	}

	minX, maxX := floats.Min(times), floats.Max(times)
	minY, maxY := floats.Min(values), floats.Max(values)

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeY = maxY - minY

	px := func(t float64) float64 { return (t - minX) / rangeX * float64(width) }
	py := func(v float64) float64 { return float64(height) - (v-minY)/rangeY*float64(height) }

	var sb strings.Builder
	header(&sb, width, height)

	if minY < 0 && maxY > 0 {
		fmt.Fprintf(&sb, "<line x1=\"0\" y1=\"%.1f\" x2=\"%d\" y2=\"%.1f\" stroke=\"#444444\" stroke-width=\"1\"/>\n",
			py(0), width, py(0))
	}

	fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, stroke)
	for i := range values {
		if i > 0 {
			sb.WriteString(" L")
		}
		fmt.Fprintf(&sb, "%.1f,%.1f", px(times[i]), py(values[i]))
	}
	sb.WriteString("\"/>\n</svg>")
	return sb.String(), nil
}

// SliceToSVG draws a field plane as a grid of cells. Positive values are
// shaded with pos and negative values with neg, opacity scaling with
// magnitude. Rows run top to bottom.
func SliceToSVG(plane [][]float64, cell int, pos, neg string) string {
	rows := len(plane)
	if rows == 0 || len(plane[0]) == 0 {
		return ""
	}
	cols := len(plane[0])

	scale := 0.0
	for _, row := range plane {
		for _, v := range row {
			scale = math.Max(scale, math.Abs(v))
		}
	}

	var sb strings.Builder
	header(&sb, cols*cell, rows*cell)
	for r, row := range plane {
		for c, v := range row {
			if v == 0 || scale == 0 {
				continue
			}
			fill := pos
			if v < 0 {
				fill = neg
			}
			fmt.Fprintf(&sb, "<rect x=\"%d\" y=\"%d\" width=\"%d\" height=\"%d\" fill=\"%s\" fill-opacity=\"%.3f\"/>\n",
				c*cell, r*cell, cell, cell, fill, math.Abs(v)/scale)
		}
	}
	sb.WriteString("</svg>")
	return sb.String()
}

func header(sb *strings.Builder, width, height int) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background)
}
