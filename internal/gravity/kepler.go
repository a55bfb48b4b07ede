package gravity

import (
	"github.com/san-kum/galstream/internal/linalg"
	"github.com/san-kum/galstream/internal/param"
	"github.com/san-kum/galstream/internal/units"
)

// Kepler is the potential of a point mass:
//
//	Phi(r) = -G m / r
type Kepler struct {
	mass coeff
	usys units.UnitSystem
	g    float64
}

func NewKepler(mass param.Parameter, usys units.UnitSystem) (*Kepler, error) {
	m, err := bindCoeff(mass, usys, massDim)
	if err != nil {
		return nil, err
	}
	return &Kepler{mass: m, usys: usys, g: usys.GravitationalConstant()}, nil
}

func (k *Kepler) Units() units.UnitSystem { return k.usys }

func (k *Kepler) Energy(q linalg.Vec3, t float64) float64 {
	return -k.g * k.mass.at(t) / q.Norm()
}

func (k *Kepler) Gradient(q linalg.Vec3, t float64) linalg.Vec3 {
	r := q.Norm()
	return radialGradient(q, k.g*k.mass.at(t)/(r*r))
}

// Density is zero away from the origin; the point mass is a delta source.
func (k *Kepler) Density(linalg.Vec3, float64) float64 { return 0 }

func (k *Kepler) Hessian(q linalg.Vec3, t float64) linalg.Mat3 {
	r := q.Norm()
	gm := k.g * k.mass.at(t)
	return radialHessian(q, gm/(r*r), -2*gm/(r*r*r))
}

// CircularVelocity returns the speed of a circular orbit at radius r.
func (k *Kepler) CircularVelocity(r, t float64) float64 {
	return sqrtSafe(k.g * k.mass.at(t) / r)
}
