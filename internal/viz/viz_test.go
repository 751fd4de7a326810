package viz

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/fdtdabc/internal/abc"
	"github.com/san-kum/fdtdabc/internal/experiment"
)

func TestDownsample(t *testing.T) {
	data := []float64{0, 1, 0, 0, -3, 0, 0, 2}
	assert.Equal(t, []float64{1, 0, -3, 2}, Downsample(data, 4))
	assert.Equal(t, data, Downsample(data, 10))
	assert.Equal(t, data, Downsample(data, 0))
}

func TestPlotTrace(t *testing.T) {
	data := make([]float64, 500)
	for i := range data {
		data[i] = float64(i % 50)
	}

	out := PlotTrace(data, "probe", 60, 8)
	assert.Contains(t, out, "probe")
	lines := strings.Split(out, "\n")
	assert.GreaterOrEqual(t, len(lines), 9)

	assert.Contains(t, PlotTrace(nil, "probe", 0, 0), "no samples")
}

func TestPlotSeries(t *testing.T) {
	out := PlotSeries([][]float64{{1, 2, 3}, {3, 2, 1}, nil}, "both", 20, 5)
	assert.Contains(t, out, "both")
	assert.Contains(t, PlotSeries(nil, "none", 0, 0), "no samples")
}

func TestGlyphAndScale(t *testing.T) {
	plane := [][]float64{{0, 0.5}, {-2, 1}}
	assert.Equal(t, 2.0, PlaneScale(plane))

	assert.Equal(t, ' ', Glyph(0, 2))
	assert.Equal(t, '@', Glyph(-2, 2))
	assert.Equal(t, '@', Glyph(5, 2))
	assert.Equal(t, ' ', Glyph(1, 0))
}

func TestRenderSlice(t *testing.T) {
	plane := [][]float64{{0, 1, 0}, {-1, 0, 0}}
	out := RenderSlice(plane, 0, ThemeMinimal, 2)

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "@")
	assert.Contains(t, lines[0], "|")
	assert.Contains(t, lines[1], "@")
}

func TestThemes(t *testing.T) {
	assert.Equal(t, []string{"thermal", "retro", "minimal"}, ThemeNames())
	assert.Equal(t, ThemeRetroGreen, GetTheme("retro"))
	assert.Equal(t, ThemeThermal, GetTheme("nope"))
	assert.Equal(t, ThemeMinimal, NextTheme(ThemeRetroGreen))
	assert.Equal(t, ThemeThermal, NextTheme(ThemeMinimal))

	SetTheme("minimal")
	assert.Equal(t, ThemeMinimal, CurrentTheme)
	SetTheme("thermal")
}

func TestRenderReport(t *testing.T) {
	res := &experiment.Result{
		Scene:     "open-x",
		Precision: "float64",
		Steps:     600,
		Timestep:  1.8e-12,
		Sheets:    2,
		Cells:     288,
		Diagnostics: []abc.Diagnostic{
			{Kind: abc.DiagNotASheet, Property: "odd", PrimitiveID: 3, Message: "expected exactly one flat axis, got 0"},
		},
		Stat:        "Number of absorbing BCs: 2 total cells: 288\n  xmin#0 mur_1st normal=x+1\n",
		Energy:      []float64{0, 2, 1},
		PeakEnergy:  2,
		FinalEnergy: 1,
		Stability:   1,
		Elapsed:     1500 * time.Millisecond,
	}

	out := RenderReport(res)
	for _, want := range []string{
		"open-x (float64)",
		"600",
		"2 (288 cells)",
		"5.000e-01",
		"odd#3: not_a_sheet",
		"Number of absorbing BCs: 2 total cells: 288",
		"xmin#0 mur_1st",
		"1.5s",
	} {
		assert.Contains(t, out, want)
	}
}

func TestRenderReportSections(t *testing.T) {
	bare := RenderReport(&experiment.Result{Scene: "pec-box", Precision: "float32"})
	assert.NotContains(t, bare, "◆")

	full := RenderReport(&experiment.Result{
		Scene:       "open-x",
		Precision:   "float32",
		Diagnostics: []abc.Diagnostic{{Kind: abc.DiagOutsideDomain, Property: "far"}},
		Stat:        "Number of absorbing BCs: 0 total cells: 0\n",
	})
	assert.Equal(t, 2, strings.Count(full, "◆"))
}

func TestSeparator(t *testing.T) {
	for _, w := range []int{40, 41, 3} {
		sep := Separator(w)
		assert.Equal(t, w, lipgloss.Width(sep))
		assert.Contains(t, sep, "◆")
	}
	assert.Equal(t, 3, lipgloss.Width(Separator(0)))
}

func TestRenderStatEmpty(t *testing.T) {
	assert.Empty(t, RenderStat(""))
}

func TestProgressBar(t *testing.T) {
	for _, p := range []float64{-1, 0.5, 2} {
		assert.Equal(t, 10, lipgloss.Width(ProgressBar(p, 10)))
	}
}
