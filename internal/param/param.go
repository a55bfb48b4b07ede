// Package param provides time-dependent potential parameters.
//
// A parameter is a pure function of time returning a tagged quantity.
// Potentials hold their coefficients (masses, scale radii) as parameters
// so that time-varying configurations work everywhere a constant does:
//
//   - [Constant]: fixed value, time ignored
//   - [Linear]: point-slope linear time dependence
//   - [Func]: user-supplied callable
package param

import (
	"fmt"

	"github.com/san-kum/galstream/internal/units"
)

// Parameter evaluates a potential coefficient at a given time.
// Implementations are immutable and side-effect free.
type Parameter interface {
	At(t units.Quantity) (units.Quantity, error)
}

// Constant is a time-independent parameter.
type Constant struct {
	Value units.Quantity
}

func NewConstant(v units.Quantity) Constant {
	return Constant{Value: v}
}

// At returns the stored value; t is ignored.
func (c Constant) At(units.Quantity) (units.Quantity, error) {
	return c.Value, nil
}

// Rescale returns a new Constant with the value multiplied by s.
func (c Constant) Rescale(s float64) Constant {
	return Constant{Value: c.Value.Scale(s)}
}

// Linear is a parameter in point-slope form:
//
//	p(t) = slope*(t - point_time) + point_value
type Linear struct {
	Slope      units.Quantity
	PointTime  units.Quantity
	PointValue units.Quantity
}

// NewLinear validates that slope*time has the dimension of the point value
// and that the point time is a time.
func NewLinear(slope, pointTime, pointValue units.Quantity) (Linear, error) {
	if pointTime.Unit.Dim != (units.Dimension{Time: 1}) {
		return Linear{}, fmt.Errorf("%w: point time has dimension %+v, want time",
			units.ErrDimensionMismatch, pointTime.Unit.Dim)
	}
	rise := slope.Unit.Dim.Add(pointTime.Unit.Dim)
	if rise != pointValue.Unit.Dim {
		return Linear{}, fmt.Errorf("%w: slope*time has dimension %+v, point value has %+v",
			units.ErrDimensionMismatch, rise, pointValue.Unit.Dim)
	}
	return Linear{Slope: slope, PointTime: pointTime, PointValue: pointValue}, nil
}

func (l Linear) At(t units.Quantity) (units.Quantity, error) {
	dt, err := t.Sub(l.PointTime)
	if err != nil {
		return units.Quantity{}, err
	}
	return l.PointValue.Add(l.Slope.Mul(dt))
}

// Func wraps a user-supplied callable. Validation is delegated to the
// callable itself.
type Func struct {
	Fn func(t units.Quantity) (units.Quantity, error)
}

func NewFunc(fn func(t units.Quantity) (units.Quantity, error)) Func {
	return Func{Fn: fn}
}

func (f Func) At(t units.Quantity) (units.Quantity, error) {
	return f.Fn(t)
}

// Series evaluates p over a time grid, one value per grid point. For a
// Constant this broadcasts the stored value across the grid unchanged.
func Series(p Parameter, ts []units.Quantity) ([]units.Quantity, error) {
	out := make([]units.Quantity, len(ts))
	for i, t := range ts {
		v, err := p.At(t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
