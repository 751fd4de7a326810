package viz

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/fdtdabc/internal/experiment"
)

// reportWidth is the width of the sparkline and the section rules.
const reportWidth = 40

// RenderReport summarises a finished run in a panel.
func RenderReport(res *experiment.Result) string {
	var b strings.Builder

	b.WriteString(HeaderStyle.Render(fmt.Sprintf("%s (%s)", res.Scene, res.Precision)))
	b.WriteString("\n")

	rows := [][2]string{
		{"steps", fmt.Sprintf("%d", res.Steps)},
		{"timestep", fmt.Sprintf("%.4g s", res.Timestep)},
		{"sim time", fmt.Sprintf("%.4g s", res.Time)},
		{"threads", fmt.Sprintf("%d", res.Threads)},
		{"sheets", fmt.Sprintf("%d (%d cells)", res.Sheets, res.Cells)},
		{"peak energy", fmt.Sprintf("%.4g J", res.PeakEnergy)},
		{"final energy", fmt.Sprintf("%.4g J", res.FinalEnergy)},
		{"residual", fmt.Sprintf("%.3e", res.Residual())},
		{"stability", fmt.Sprintf("%.1f%%", 100*res.Stability)},
		{"elapsed", res.Elapsed.Round(time.Millisecond).String()},
	}
	for _, r := range rows {
		b.WriteString(metricRow(r[0], r[1]))
		b.WriteString("\n")
	}

	if len(res.Energy) > 0 {
		b.WriteString(MetricLabel.Render("energy"))
		b.WriteString(SparklineChart(res.Energy, reportWidth))
		b.WriteString("\n")
	}

	if len(res.Diagnostics) > 0 {
		b.WriteString(Separator(reportWidth) + "\n")
		b.WriteString(Title.Render("diagnostics"))
		b.WriteString("\n")
		for _, d := range res.Diagnostics {
			style := Subtle
			if d.Skipped() {
				style = Warning
			}
			b.WriteString("  " + style.Render(d.String()) + "\n")
		}
	}

	if res.Stat != "" {
		b.WriteString(Separator(reportWidth) + "\n")
		b.WriteString(RenderStat(res.Stat))
	}

	return Panel.Render(strings.TrimRight(b.String(), "\n"))
}

// RenderStat styles the sheet statistics: the summary line as a title and
// one muted line per sheet.
func RenderStat(stat string) string {
	lines := strings.Split(strings.TrimRight(stat, "\n"), "\n")
	if len(lines) == 0 || lines[0] == "" {
		return ""
	}

	out := make([]string, 0, len(lines))
	out = append(out, Title.Render(lines[0]))
	for _, l := range lines[1:] {
		out = append(out, Subtle.Render(l))
	}
	return lipgloss.JoinVertical(lipgloss.Left, out...) + "\n"
}

func metricRow(label, value string) string {
	return MetricLabel.Render(label) + MetricValue.Render(value)
}
