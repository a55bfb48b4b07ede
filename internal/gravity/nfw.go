package gravity

import (
	"math"

	"github.com/san-kum/galstream/internal/linalg"
	"github.com/san-kum/galstream/internal/param"
	"github.com/san-kum/galstream/internal/units"
)

// NFW is the Navarro-Frenk-White halo:
//
//	Phi(r) = -G m ln(1 + r/rs) / r
//
// where m = 4 pi rho0 rs^3 is the characteristic mass.
type NFW struct {
	mass  coeff
	scale coeff
	usys  units.UnitSystem
	g     float64
}

func NewNFW(mass, scaleRadius param.Parameter, usys units.UnitSystem) (*NFW, error) {
	m, err := bindCoeff(mass, usys, massDim)
	if err != nil {
		return nil, err
	}
	rs, err := bindCoeff(scaleRadius, usys, lengthDim)
	if err != nil {
		return nil, err
	}
	return &NFW{mass: m, scale: rs, usys: usys, g: usys.GravitationalConstant()}, nil
}

func (n *NFW) Units() units.UnitSystem { return n.usys }

func (n *NFW) Energy(q linalg.Vec3, t float64) float64 {
	r := q.Norm()
	rs := n.scale.at(t)
	return -n.g * n.mass.at(t) * math.Log1p(r/rs) / r
}

func (n *NFW) Gradient(q linalg.Vec3, t float64) linalg.Vec3 {
	r := q.Norm()
	rs := n.scale.at(t)
	gm := n.g * n.mass.at(t)
	dphi := gm * (math.Log1p(r/rs)/(r*r) - 1/(r*(rs+r)))
	return radialGradient(q, dphi)
}

func (n *NFW) Density(q linalg.Vec3, t float64) float64 {
	r := q.Norm()
	rs := n.scale.at(t)
	u := r / rs
	rho0 := n.mass.at(t) / (4 * math.Pi * rs * rs * rs)
	return rho0 / (u * (1 + u) * (1 + u))
}

func (n *NFW) Hessian(q linalg.Vec3, t float64) linalg.Mat3 {
	r := q.Norm()
	rs := n.scale.at(t)
	gm := n.g * n.mass.at(t)
	dphi := gm * (math.Log1p(r/rs)/(r*r) - 1/(r*(rs+r)))
	d2phi := gm * (1/((rs+r)*r*r) - 2*math.Log1p(r/rs)/(r*r*r) + (rs+2*r)/((r*rs+r*r)*(r*rs+r*r)))
	return radialHessian(q, dphi, d2phi)
}
