package phasespace

import (
	"fmt"

	"github.com/san-kum/galstream/internal/linalg"
)

// Named is one keyed member of a composite.
type Named struct {
	Name  string
	Batch Batch
}

// Composite is a keyed, insertion-ordered union of batches that behaves as
// one aggregate: its length is the sum of member lengths (an empty member
// counts as one) and its axes are the members' axes concatenated in key
// order. An empty member holds no data, so it contributes nothing to the
// axes; the aggregate axes are therefore shorter than Len by one slot per
// empty member.
type Composite struct {
	keys []string
	m    map[string]Batch
}

func NewComposite(members ...Named) (*Composite, error) {
	c := &Composite{
		keys: make([]string, 0, len(members)),
		m:    make(map[string]Batch, len(members)),
	}
	for _, mem := range members {
		if _, dup := c.m[mem.Name]; dup {
			return nil, fmt.Errorf("phasespace: duplicate component %q", mem.Name)
		}
		c.keys = append(c.keys, mem.Name)
		c.m[mem.Name] = mem.Batch
	}
	return c, nil
}

// Keys returns component names in insertion order.
func (c *Composite) Keys() []string {
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

func (c *Composite) Get(name string) (Batch, bool) {
	b, ok := c.m[name]
	return b, ok
}

// Len is the aggregate length; empty components count as one even though
// Q, P and T have no rows for them.
func (c *Composite) Len() int {
	n := 0
	for _, k := range c.keys {
		l := c.m[k].Len()
		if l == 0 {
			l = 1
		}
		n += l
	}
	return n
}

// Q returns the union of member positions, concatenated in key order.
func (c *Composite) Q() []linalg.Vec3 {
	out := make([]linalg.Vec3, 0, c.Len())
	for _, k := range c.keys {
		out = append(out, c.m[k].Q()...)
	}
	return out
}

// P returns the union of member velocities, concatenated in key order.
func (c *Composite) P() []linalg.Vec3 {
	out := make([]linalg.Vec3, 0, c.Len())
	for _, k := range c.keys {
		out = append(out, c.m[k].P()...)
	}
	return out
}

// T returns the union of member time axes, each broadcast to its member's
// length. Members without a time axis contribute nothing.
func (c *Composite) T() []float64 {
	out := make([]float64, 0, c.Len())
	for _, k := range c.keys {
		out = append(out, c.m[k].T()...)
	}
	return out
}

// Replace returns a new composite with the named component swapped. The
// receiver is unchanged.
func (c *Composite) Replace(name string, b Batch) (*Composite, error) {
	if _, ok := c.m[name]; !ok {
		return nil, fmt.Errorf("phasespace: no component %q", name)
	}
	m := make(map[string]Batch, len(c.m))
	for k, v := range c.m {
		m[k] = v
	}
	m[name] = b
	keys := make([]string, len(c.keys))
	copy(keys, c.keys)
	return &Composite{keys: keys, m: m}, nil
}
