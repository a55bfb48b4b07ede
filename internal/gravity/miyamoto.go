package gravity

import (
	"math"

	"github.com/san-kum/galstream/internal/linalg"
	"github.com/san-kum/galstream/internal/param"
	"github.com/san-kum/galstream/internal/units"
)

// MiyamotoNagai is a flattened disk:
//
//	Phi(R, z) = -G m / sqrt(R^2 + (a + sqrt(z^2 + b^2))^2)
type MiyamotoNagai struct {
	mass        coeff
	scaleLength coeff
	scaleHeight coeff
	usys        units.UnitSystem
	g           float64
}

func NewMiyamotoNagai(mass, scaleLength, scaleHeight param.Parameter, usys units.UnitSystem) (*MiyamotoNagai, error) {
	m, err := bindCoeff(mass, usys, massDim)
	if err != nil {
		return nil, err
	}
	a, err := bindCoeff(scaleLength, usys, lengthDim)
	if err != nil {
		return nil, err
	}
	b, err := bindCoeff(scaleHeight, usys, lengthDim)
	if err != nil {
		return nil, err
	}
	return &MiyamotoNagai{mass: m, scaleLength: a, scaleHeight: b, usys: usys, g: usys.GravitationalConstant()}, nil
}

func (mn *MiyamotoNagai) Units() units.UnitSystem { return mn.usys }

func (mn *MiyamotoNagai) Energy(q linalg.Vec3, t float64) float64 {
	a, b := mn.scaleLength.at(t), mn.scaleHeight.at(t)
	zb := math.Sqrt(q.Z*q.Z + b*b)
	ab := a + zb
	return -mn.g * mn.mass.at(t) / math.Sqrt(q.X*q.X+q.Y*q.Y+ab*ab)
}

func (mn *MiyamotoNagai) Gradient(q linalg.Vec3, t float64) linalg.Vec3 {
	a, b := mn.scaleLength.at(t), mn.scaleHeight.at(t)
	zb := math.Sqrt(q.Z*q.Z + b*b)
	ab := a + zb
	d2 := q.X*q.X + q.Y*q.Y + ab*ab
	d3 := d2 * math.Sqrt(d2)
	gm := mn.g * mn.mass.at(t)
	return linalg.Vec3{
		X: gm * q.X / d3,
		Y: gm * q.Y / d3,
		Z: gm * q.Z * ab / (d3 * zb),
	}
}

func (mn *MiyamotoNagai) Density(q linalg.Vec3, t float64) float64 {
	a, b := mn.scaleLength.at(t), mn.scaleHeight.at(t)
	r2 := q.X*q.X + q.Y*q.Y
	zb := math.Sqrt(q.Z*q.Z + b*b)
	ab := a + zb
	d2 := r2 + ab*ab
	num := a*r2 + (a+3*zb)*ab*ab
	den := math.Pow(d2, 2.5) * zb * zb * zb
	return b * b * mn.mass.at(t) / (4 * math.Pi) * num / den
}

// Hessian falls back to differencing the analytic gradient; the disk's
// closed form buys little over the numerical version.
func (mn *MiyamotoNagai) Hessian(q linalg.Vec3, t float64) linalg.Mat3 {
	return NumericalHessian(mn, q, t)
}
