package geometry

type PropertyType uint8

const (
	PropUnknown PropertyType = iota
	PropMaterial
	PropMetal
	PropAbsorbingBC
)

func (t PropertyType) String() string {
	switch t {
	case PropMaterial:
		return "material"
	case PropMetal:
		return "metal"
	case PropAbsorbingBC:
		return "absorbing_bc"
	default:
		return "unknown"
	}
}

type Property interface {
	Name() string
	Type() PropertyType
	Primitives() []Primitive
}

// Basic is a property without attributes beyond its primitives.
type Basic struct {
	name  string
	typ   PropertyType
	prims []Primitive
}

func NewBasic(name string, typ PropertyType) *Basic {
	return &Basic{name: name, typ: typ}
}

func (p *Basic) Name() string            { return p.name }
func (p *Basic) Type() PropertyType      { return p.typ }
func (p *Basic) Primitives() []Primitive { return p.prims }

func (p *Basic) AddPrimitive(prim Primitive) *Basic {
	p.prims = append(p.prims, prim)
	return p
}

// AbsorbingBC marks its primitives as absorbing boundary sheets.
type AbsorbingBC struct {
	name  string
	prims []Primitive

	BoundaryType BoundaryType

	// PhaseVelocity in m/s. Zero selects the vacuum speed of light.
	PhaseVelocity float64

	// NormalSignPositive selects +1 as the sheet's normal sign. The
	// interior neighbour line is one step along that sign.
	NormalSignPositive bool
}

func NewAbsorbingBC(name string, bt BoundaryType) *AbsorbingBC {
	return &AbsorbingBC{name: name, BoundaryType: bt, NormalSignPositive: true}
}

func (p *AbsorbingBC) Name() string            { return p.name }
func (p *AbsorbingBC) Type() PropertyType      { return PropAbsorbingBC }
func (p *AbsorbingBC) Primitives() []Primitive { return p.prims }

func (p *AbsorbingBC) AddPrimitive(prim Primitive) *AbsorbingBC {
	p.prims = append(p.prims, prim)
	return p
}

// NormalSign returns +1 or -1.
func (p *AbsorbingBC) NormalSign() int {
	if p.NormalSignPositive {
		return 1
	}
	return -1
}
