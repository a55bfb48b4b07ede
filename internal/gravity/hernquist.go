package gravity

import (
	"math"

	"github.com/san-kum/galstream/internal/linalg"
	"github.com/san-kum/galstream/internal/param"
	"github.com/san-kum/galstream/internal/units"
)

// Hernquist is a cuspy spheroid:
//
//	Phi(r) = -G m / (r + a)
type Hernquist struct {
	mass  coeff
	scale coeff
	usys  units.UnitSystem
	g     float64
}

func NewHernquist(mass, scaleRadius param.Parameter, usys units.UnitSystem) (*Hernquist, error) {
	m, err := bindCoeff(mass, usys, massDim)
	if err != nil {
		return nil, err
	}
	a, err := bindCoeff(scaleRadius, usys, lengthDim)
	if err != nil {
		return nil, err
	}
	return &Hernquist{mass: m, scale: a, usys: usys, g: usys.GravitationalConstant()}, nil
}

func (h *Hernquist) Units() units.UnitSystem { return h.usys }

func (h *Hernquist) Energy(q linalg.Vec3, t float64) float64 {
	return -h.g * h.mass.at(t) / (q.Norm() + h.scale.at(t))
}

func (h *Hernquist) Gradient(q linalg.Vec3, t float64) linalg.Vec3 {
	ra := q.Norm() + h.scale.at(t)
	return radialGradient(q, h.g*h.mass.at(t)/(ra*ra))
}

func (h *Hernquist) Density(q linalg.Vec3, t float64) float64 {
	r := q.Norm()
	a := h.scale.at(t)
	ra := r + a
	return h.mass.at(t) * a / (2 * math.Pi * r * ra * ra * ra)
}

func (h *Hernquist) Hessian(q linalg.Vec3, t float64) linalg.Mat3 {
	ra := q.Norm() + h.scale.at(t)
	gm := h.g * h.mass.at(t)
	return radialHessian(q, gm/(ra*ra), -2*gm/(ra*ra*ra))
}

func sqrtSafe(x float64) float64 {
	if x < 0 {
		return math.NaN()
	}
	return math.Sqrt(x)
}
