package geometry

type PrimitiveKind uint8

const (
	KindBox PrimitiveKind = iota
	KindCylinder
)

func (k PrimitiveKind) String() string {
	switch k {
	case KindBox:
		return "box"
	case KindCylinder:
		return "cylinder"
	default:
		return "unknown"
	}
}

// Primitive is a shape attached to a property. The builder marks primitives
// it turned into boundary sheets as used.
type Primitive interface {
	ID() int
	Kind() PrimitiveKind
	Used() bool
	SetUsed(used bool)

	setID(id int)
}

type primitiveBase struct {
	id   int
	used bool
}

func (p *primitiveBase) ID() int           { return p.id }
func (p *primitiveBase) Used() bool        { return p.used }
func (p *primitiveBase) SetUsed(used bool) { p.used = used }
func (p *primitiveBase) setID(id int)      { p.id = id }

// Box is an axis-aligned box given by two corners in drawing units.
type Box struct {
	primitiveBase
	Start [3]float64
	Stop  [3]float64
}

func NewBox(start, stop [3]float64) *Box {
	return &Box{Start: start, Stop: stop}
}

func (b *Box) Kind() PrimitiveKind { return KindBox }

// Cylinder is a cylinder along the Start-Stop axis.
type Cylinder struct {
	primitiveBase
	Start  [3]float64
	Stop   [3]float64
	Radius float64
}

func NewCylinder(start, stop [3]float64, radius float64) *Cylinder {
	return &Cylinder{Start: start, Stop: stop, Radius: radius}
}

func (c *Cylinder) Kind() PrimitiveKind { return KindCylinder }
