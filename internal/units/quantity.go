package units

import "fmt"

// Quantity is a value tagged with a concrete unit. Arithmetic is checked:
// addition and subtraction require matching dimensions, multiplication and
// division combine them.
type Quantity struct {
	Value float64
	Unit  Unit
}

func New(value float64, unit Unit) Quantity {
	return Quantity{Value: value, Unit: unit}
}

// SI returns the value expressed in the SI base combination of the
// quantity's dimension.
func (q Quantity) SI() float64 {
	return q.Value * q.Unit.Scale
}

// To converts to a compatible unit.
func (q Quantity) To(u Unit) (Quantity, error) {
	if q.Unit.Dim != u.Dim {
		return Quantity{}, fmt.Errorf("%w: cannot convert %q to %q", ErrDimensionMismatch, q.Unit.Name, u.Name)
	}
	return Quantity{Value: q.Value * q.Unit.Scale / u.Scale, Unit: u}, nil
}

// Add returns q + o in q's unit. Fails unless dimensions match.
func (q Quantity) Add(o Quantity) (Quantity, error) {
	conv, err := o.To(q.Unit)
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{Value: q.Value + conv.Value, Unit: q.Unit}, nil
}

// Sub returns q - o in q's unit. Fails unless dimensions match.
func (q Quantity) Sub(o Quantity) (Quantity, error) {
	conv, err := o.To(q.Unit)
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{Value: q.Value - conv.Value, Unit: q.Unit}, nil
}

func (q Quantity) Mul(o Quantity) Quantity {
	return Quantity{Value: q.Value * o.Value, Unit: q.Unit.Mul(o.Unit)}
}

func (q Quantity) Div(o Quantity) Quantity {
	return Quantity{Value: q.Value / o.Value, Unit: q.Unit.Div(o.Unit)}
}

// Scale multiplies by a bare number, keeping the unit.
func (q Quantity) Scale(s float64) Quantity {
	return Quantity{Value: q.Value * s, Unit: q.Unit}
}

func (q Quantity) String() string {
	if q.Unit.Name == "" {
		return fmt.Sprintf("%g", q.Value)
	}
	return fmt.Sprintf("%g %s", q.Value, q.Unit.Name)
}
