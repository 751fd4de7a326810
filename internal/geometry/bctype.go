package geometry

import "strings"

// BoundaryType selects the absorbing update applied on a sheet.
type BoundaryType uint8

const (
	// BoundaryUndefined is the zero value and is rejected by the builder.
	BoundaryUndefined BoundaryType = iota

	// FirstOrderMur updates the voltage family only.
	FirstOrderMur

	// FirstOrderMurSuperAbsorbing also updates the current family and blends
	// it with the curl-derived currents.
	FirstOrderMurSuperAbsorbing
)

func (bt BoundaryType) String() string {
	switch bt {
	case FirstOrderMur:
		return "mur_1st"
	case FirstOrderMurSuperAbsorbing:
		return "mur_1st_sa"
	default:
		return "undefined"
	}
}

// SuperAbsorbing reports whether the current family is updated too.
func (bt BoundaryType) SuperAbsorbing() bool {
	return bt == FirstOrderMurSuperAbsorbing
}

// BoundaryNameMap maps accepted boundary type names to BoundaryType.
// Keys are lowercase for case-insensitive matching.
var BoundaryNameMap = map[string]BoundaryType{
	"mur":            FirstOrderMur,
	"mur_1st":        FirstOrderMur,
	"mur1":           FirstOrderMur,
	"mur_1st_1pv":    FirstOrderMur,
	"mur_sa":         FirstOrderMurSuperAbsorbing,
	"mur_1st_sa":     FirstOrderMurSuperAbsorbing,
	"mur_1st_1pv_sa": FirstOrderMurSuperAbsorbing,
	"super":          FirstOrderMurSuperAbsorbing,
}

// ParseBoundaryType returns the boundary type for name, or
// BoundaryUndefined and false for unknown names.
func ParseBoundaryType(name string) (BoundaryType, bool) {
	bt, ok := BoundaryNameMap[strings.ToLower(strings.TrimSpace(name))]
	return bt, ok
}

// MarshalText implements encoding.TextMarshaler.
func (bt BoundaryType) MarshalText() ([]byte, error) {
	return []byte(bt.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Unknown names decode to
// BoundaryUndefined so that the builder can report them per sheet.
func (bt *BoundaryType) UnmarshalText(text []byte) error {
	*bt, _ = ParseBoundaryType(string(text))
	return nil
}
