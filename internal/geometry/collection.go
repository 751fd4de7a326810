// Package geometry is the property and primitive collection the boundary
// builder reads sheets from.
package geometry

// Collection owns properties and assigns primitive IDs in insertion order.
type Collection struct {
	props  []Property
	nextID int
}

func NewCollection() *Collection {
	return &Collection{}
}

// Add appends p and numbers its primitives.
func (c *Collection) Add(p Property) {
	for _, prim := range p.Primitives() {
		prim.setID(c.nextID)
		c.nextID++
	}
	c.props = append(c.props, p)
}

func (c *Collection) Properties() []Property { return c.props }

func (c *Collection) PropertiesByType(t PropertyType) []Property {
	out := make([]Property, 0)
	for _, p := range c.props {
		if p.Type() == t {
			out = append(out, p)
		}
	}
	return out
}

// Unused returns every primitive of type t not marked used.
func (c *Collection) Unused(t PropertyType) []Primitive {
	var out []Primitive
	for _, p := range c.PropertiesByType(t) {
		for _, prim := range p.Primitives() {
			if !prim.Used() {
				out = append(out, prim)
			}
		}
	}
	return out
}
