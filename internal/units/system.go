package units

import (
	"fmt"
	"math"
)

// gravitationalConstantSI is the CODATA value in m^3 kg^-1 s^-2.
const gravitationalConstantSI = 6.6743e-11

// UnitSystem is an immutable quadruple of base units. Every potential in a
// composite must share one.
type UnitSystem struct {
	Length Unit
	Time   Unit
	Mass   Unit
	Angle  Unit
}

// Galactic is the kpc / Myr / Msun / rad system conventional for galactic
// dynamics.
var Galactic = UnitSystem{Length: Kpc, Time: Myr, Mass: SolarMass, Angle: Radian}

// SI is the m / s / kg / rad system.
var SI = UnitSystem{Length: Meter, Time: Second, Mass: Kilogram, Angle: Radian}

// Solar is the AU / yr / Msun / rad system for planetary-scale problems.
var Solar = UnitSystem{Length: AU, Time: Year, Mass: SolarMass, Angle: Radian}

func (s UnitSystem) Equal(o UnitSystem) bool {
	return s.Length == o.Length && s.Time == o.Time && s.Mass == o.Mass && s.Angle == o.Angle
}

// Velocity returns the derived length/time unit of the system.
func (s UnitSystem) Velocity() Unit {
	return s.Length.Div(s.Time)
}

// GravitationalConstant returns G expressed in system units,
// length^3 mass^-1 time^-2.
func (s UnitSystem) GravitationalConstant() float64 {
	scale := math.Pow(s.Length.Scale, 3) / (s.Mass.Scale * s.Time.Scale * s.Time.Scale)
	return gravitationalConstantSI / scale
}

// scaleFor returns the SI scale of the system's representation of dim.
func (s UnitSystem) scaleFor(dim Dimension) float64 {
	return math.Pow(s.Length.Scale, float64(dim.Length)) *
		math.Pow(s.Time.Scale, float64(dim.Time)) *
		math.Pow(s.Mass.Scale, float64(dim.Mass)) *
		math.Pow(s.Angle.Scale, float64(dim.Angle))
}

// Express returns q's value in the system's units for q's dimension, e.g.
// a velocity in km/s becomes a number in kpc/Myr under Galactic.
func (s UnitSystem) Express(q Quantity) float64 {
	return q.SI() / s.scaleFor(q.Unit.Dim)
}

// Quantity builds a Quantity in the system's representation of dim.
func (s UnitSystem) Quantity(value float64, dim Dimension) Quantity {
	return Quantity{
		Value: value,
		Unit:  Unit{Name: s.unitName(dim), Dim: dim, Scale: s.scaleFor(dim)},
	}
}

func (s UnitSystem) unitName(dim Dimension) string {
	if dim.IsDimensionless() {
		return ""
	}
	name := ""
	for _, part := range []struct {
		u   Unit
		exp int
	}{{s.Length, dim.Length}, {s.Time, dim.Time}, {s.Mass, dim.Mass}, {s.Angle, dim.Angle}} {
		if part.exp == 0 {
			continue
		}
		if name != "" {
			name += " "
		}
		if part.exp == 1 {
			name += part.u.Name
		} else {
			name += fmt.Sprintf("%s^%d", part.u.Name, part.exp)
		}
	}
	return name
}
