package gravity

import (
	"math"

	"github.com/san-kum/galstream/internal/linalg"
)

// radialGradient builds the Cartesian gradient of a spherically symmetric
// potential from dPhi/dr.
func radialGradient(q linalg.Vec3, dphi float64) linalg.Vec3 {
	r := q.Norm()
	if r == 0 {
		return linalg.Vec3{}
	}
	return q.Scale(dphi / r)
}

// radialHessian builds the Cartesian Hessian of a spherically symmetric
// potential from dPhi/dr and d2Phi/dr2:
//
//	H_ij = (Phi'' - Phi'/r) q_i q_j / r^2 + (Phi'/r) delta_ij
func radialHessian(q linalg.Vec3, dphi, d2phi float64) linalg.Mat3 {
	r := q.Norm()
	if r == 0 {
		return linalg.Mat3{}
	}
	rad := linalg.Outer(q, q).Scale((d2phi - dphi/r) / (r * r))
	return rad.Add(linalg.Identity().Scale(dphi / r))
}

const diffStepScale = 1e-5

// NumericalGradient estimates the gradient by central differences on the
// energy. Used in tests to pin analytic gradients to the energy field.
func NumericalGradient(p Potential, q linalg.Vec3, t float64) linalg.Vec3 {
	var g linalg.Vec3
	for i := 0; i < 3; i++ {
		h := diffStepScale * math.Max(math.Abs(q.Component(i)), 1)
		fwd := p.Energy(q.WithComponent(i, q.Component(i)+h), t)
		bwd := p.Energy(q.WithComponent(i, q.Component(i)-h), t)
		g = g.WithComponent(i, (fwd-bwd)/(2*h))
	}
	return g
}

// NumericalHessian estimates the Hessian by central differences on the
// gradient.
func NumericalHessian(p Potential, q linalg.Vec3, t float64) linalg.Mat3 {
	var hess linalg.Mat3
	for j := 0; j < 3; j++ {
		h := diffStepScale * math.Max(math.Abs(q.Component(j)), 1)
		fwd := p.Gradient(q.WithComponent(j, q.Component(j)+h), t)
		bwd := p.Gradient(q.WithComponent(j, q.Component(j)-h), t)
		d := fwd.Sub(bwd).Scale(1 / (2 * h))
		hess[0][j] = d.X
		hess[1][j] = d.Y
		hess[2][j] = d.Z
	}
	return hess
}
