package gravity

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/san-kum/galstream/internal/linalg"
	"github.com/san-kum/galstream/internal/units"
)

// Component is one named member of a composite potential.
type Component struct {
	Name      string
	Potential Potential
}

// Composite sums the fields of named sub-potentials sharing one unit
// system. Component order is insertion order and is preserved by every
// combination operation. Composites are immutable; combining builds a new
// one.
type Composite struct {
	keys []string
	m    map[string]Potential
	usys units.UnitSystem
}

// NewComposite builds a composite from ordered components. The unit system
// is inherited from the first component; a component with a different
// system fails with ErrUnitMismatch.
func NewComposite(components ...Component) (*Composite, error) {
	if len(components) == 0 {
		return nil, ErrEmptyComposite
	}
	usys := components[0].Potential.Units()
	c := &Composite{
		keys: make([]string, 0, len(components)),
		m:    make(map[string]Potential, len(components)),
		usys: usys,
	}
	for _, comp := range components {
		if !comp.Potential.Units().Equal(usys) {
			return nil, fmt.Errorf("%w: component %q", ErrUnitMismatch, comp.Name)
		}
		if _, dup := c.m[comp.Name]; dup {
			return nil, fmt.Errorf("gravity: duplicate component %q", comp.Name)
		}
		c.keys = append(c.keys, comp.Name)
		c.m[comp.Name] = comp.Potential
	}
	return c, nil
}

// Combine merges two potentials into a composite, a's components first.
// A bare potential is inserted under a fresh unique key so repeated
// combinations never collide.
func Combine(a, b Potential) (*Composite, error) {
	if a == nil || b == nil {
		return nil, ErrNotAPotential
	}
	comps := append(componentsOf(a), componentsOf(b)...)
	return NewComposite(comps...)
}

// With returns a new composite with other's components appended.
func (c *Composite) With(other Potential) (*Composite, error) {
	return Combine(c, other)
}

func componentsOf(p Potential) []Component {
	if c, ok := p.(*Composite); ok {
		out := make([]Component, 0, len(c.keys))
		for _, k := range c.keys {
			out = append(out, Component{Name: k, Potential: c.m[k]})
		}
		return out
	}
	return []Component{{Name: uuid.NewString(), Potential: p}}
}

// Keys returns component names in insertion order.
func (c *Composite) Keys() []string {
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

// Get returns the named component.
func (c *Composite) Get(name string) (Potential, bool) {
	p, ok := c.m[name]
	return p, ok
}

func (c *Composite) Len() int { return len(c.keys) }

func (c *Composite) Units() units.UnitSystem { return c.usys }

func (c *Composite) Energy(q linalg.Vec3, t float64) float64 {
	sum := 0.0
	for _, k := range c.keys {
		sum += c.m[k].Energy(q, t)
	}
	return sum
}

func (c *Composite) Gradient(q linalg.Vec3, t float64) linalg.Vec3 {
	var sum linalg.Vec3
	for _, k := range c.keys {
		sum = sum.Add(c.m[k].Gradient(q, t))
	}
	return sum
}

func (c *Composite) Density(q linalg.Vec3, t float64) float64 {
	sum := 0.0
	for _, k := range c.keys {
		sum += c.m[k].Density(q, t)
	}
	return sum
}

func (c *Composite) Hessian(q linalg.Vec3, t float64) linalg.Mat3 {
	var sum linalg.Mat3
	for _, k := range c.keys {
		sum = sum.Add(c.m[k].Hessian(q, t))
	}
	return sum
}
