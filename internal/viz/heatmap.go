package viz

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ramp runs from weak to strong field magnitude.
var ramp = []rune(" .:-=+*#%@")

// PlaneScale returns the largest magnitude in plane.
func PlaneScale(plane [][]float64) float64 {
	peak := 0.0
	for _, row := range plane {
		for _, v := range row {
			peak = math.Max(peak, math.Abs(v))
		}
	}
	return peak
}

// Glyph maps v onto the ramp relative to scale.
func Glyph(v, scale float64) rune {
	if scale <= 0 || math.IsNaN(v) {
		return ramp[0]
	}
	idx := int(math.Abs(v) / scale * float64(len(ramp)-1))
	return ramp[min(max(idx, 0), len(ramp)-1)]
}

// RenderSlice draws plane with one glyph per point, rows top to bottom,
// coloured by sign with theme. Columns listed in marks are drawn with the
// theme's accent.
func RenderSlice(plane [][]float64, scale float64, theme Theme, marks ...int) string {
	if scale <= 0 {
		scale = PlaneScale(plane)
	}

	pos := lipgloss.NewStyle().Foreground(theme.Positive)
	neg := lipgloss.NewStyle().Foreground(theme.Negative)
	muted := lipgloss.NewStyle().Foreground(theme.Muted)
	accent := lipgloss.NewStyle().Foreground(theme.Accent)

	marked := make(map[int]bool, len(marks))
	for _, m := range marks {
		marked[m] = true
	}

	var b strings.Builder
	for i, row := range plane {
		if i > 0 {
			b.WriteByte('\n')
		}
		for j, v := range row {
			g := Glyph(v, scale)
			switch {
			case marked[j] && g == ramp[0]:
				b.WriteString(accent.Render("|"))
			case g == ramp[0]:
				b.WriteString(muted.Render(string(g)))
			case v > 0:
				b.WriteString(pos.Render(string(g)))
			default:
				b.WriteString(neg.Render(string(g)))
			}
		}
	}
	return b.String()
}
