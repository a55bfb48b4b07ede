package units

import (
	"errors"
	"fmt"
	"math"
)

// ErrDimensionMismatch indicates arithmetic or conversion between
// quantities of incompatible physical dimension.
var ErrDimensionMismatch = errors.New("units: dimension mismatch")

// Dimension is an exponent vector over the four base dimensions.
type Dimension struct {
	Length int
	Time   int
	Mass   int
	Angle  int
}

func (d Dimension) Add(o Dimension) Dimension {
	return Dimension{d.Length + o.Length, d.Time + o.Time, d.Mass + o.Mass, d.Angle + o.Angle}
}

func (d Dimension) Sub(o Dimension) Dimension {
	return Dimension{d.Length - o.Length, d.Time - o.Time, d.Mass - o.Mass, d.Angle - o.Angle}
}

func (d Dimension) IsDimensionless() bool {
	return d == Dimension{}
}

// Unit is a named scale factor attached to a dimension. Scale converts a
// value in this unit to the SI base combination (m, s, kg, rad).
type Unit struct {
	Name  string
	Dim   Dimension
	Scale float64
}

func (u Unit) Mul(o Unit) Unit {
	return Unit{
		Name:  u.Name + " " + o.Name,
		Dim:   u.Dim.Add(o.Dim),
		Scale: u.Scale * o.Scale,
	}
}

func (u Unit) Div(o Unit) Unit {
	return Unit{
		Name:  u.Name + " / " + o.Name,
		Dim:   u.Dim.Sub(o.Dim),
		Scale: u.Scale / o.Scale,
	}
}

func (u Unit) Pow(n int) Unit {
	r := Unit{Name: fmt.Sprintf("%s^%d", u.Name, n), Scale: 1}
	for i := 0; i < n; i++ {
		r.Dim = r.Dim.Add(u.Dim)
		r.Scale *= u.Scale
	}
	return r
}

// Base and astronomical units.
var (
	Meter     = Unit{"m", Dimension{Length: 1}, 1}
	Kilometer = Unit{"km", Dimension{Length: 1}, 1e3}
	AU        = Unit{"AU", Dimension{Length: 1}, 1.495978707e11}
	Parsec    = Unit{"pc", Dimension{Length: 1}, 3.0856775814913673e16}
	Kpc       = Unit{"kpc", Dimension{Length: 1}, 3.0856775814913673e19}

	Second = Unit{"s", Dimension{Time: 1}, 1}
	Year   = Unit{"yr", Dimension{Time: 1}, 3.15576e7}
	Myr    = Unit{"Myr", Dimension{Time: 1}, 3.15576e13}
	Gyr    = Unit{"Gyr", Dimension{Time: 1}, 3.15576e16}

	Kilogram  = Unit{"kg", Dimension{Mass: 1}, 1}
	SolarMass = Unit{"Msun", Dimension{Mass: 1}, 1.98841e30}

	Radian = Unit{"rad", Dimension{Angle: 1}, 1}
	Degree = Unit{"deg", Dimension{Angle: 1}, math.Pi / 180}

	Dimensionless = Unit{"", Dimension{}, 1}

	KmPerS = Kilometer.Div(Second)
)

// ByName resolves the units usable in configuration files.
func ByName(name string) (Unit, bool) {
	switch name {
	case "m":
		return Meter, true
	case "km":
		return Kilometer, true
	case "AU", "au":
		return AU, true
	case "pc":
		return Parsec, true
	case "kpc":
		return Kpc, true
	case "s":
		return Second, true
	case "yr":
		return Year, true
	case "Myr":
		return Myr, true
	case "Gyr":
		return Gyr, true
	case "kg":
		return Kilogram, true
	case "Msun":
		return SolarMass, true
	case "rad":
		return Radian, true
	case "deg":
		return Degree, true
	case "km/s":
		return KmPerS, true
	case "":
		return Dimensionless, true
	}
	return Unit{}, false
}
