package abc

import (
	"github.com/san-kum/fdtdabc/internal/dynamo"
	"github.com/san-kum/fdtdabc/internal/geometry"
)

// Operator is the part of the host operator the builder needs.
type Operator interface {
	Timestep() float64
	NumLines(axis int) int
	DiscLine(axis, idx int, dual bool) float64
	EdgeLength(axis int, pos dynamo.Index, dual bool) float64
	SnapBox(start, stop [3]float64) (startIdx, stopIdx dynamo.Index, status int)
}

// PropertySource yields the properties of one type.
type PropertySource interface {
	PropertiesByType(t geometry.PropertyType) []geometry.Property
}

// FieldAccessor reads and writes the host's voltage (primary grid) and
// current (dual grid) components.
type FieldAccessor[T dynamo.Float] interface {
	Volt(n int, pos dynamo.Index) T
	SetVolt(n int, pos dynamo.Index, v T)
	Curr(n int, pos dynamo.Index) T
	SetCurr(n int, pos dynamo.Index, v T)

	// Timesteps is the number of completed timesteps.
	Timesteps() uint
}

// ConfigBuilder turns geometry into a boundary configuration.
type ConfigBuilder[T dynamo.Float] interface {
	Build(props PropertySource, op Operator) (*Config[T], []Diagnostic, error)
}

// UpdateEngine is the per-timestep extension interface the host drives.
type UpdateEngine interface {
	SetNumberOfThreads(n int)
	NumThreads() int

	PreVoltageThread(threadID int)
	PostVoltageThread(threadID int)
	ApplyVoltagesThread(threadID int)

	PreCurrentThread(threadID int)
	PostCurrentThread(threadID int)
	ApplyCurrentsThread(threadID int)
}

var (
	_ ConfigBuilder[float32] = (*Builder[float32])(nil)
	_ UpdateEngine           = (*Engine[float64])(nil)
)
