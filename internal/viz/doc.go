// Package viz renders run results for the terminal.
//
//   - [RenderReport]: styled run summary with diagnostics and the sheet stat
//   - [PlotTrace]: asciigraph plot of a probe trace or spectrum
//   - [RenderSlice]: signed heat map of a field plane
//
// Colours come from the active [Theme]; lipgloss drops them when the output
// is not a terminal.
package viz
