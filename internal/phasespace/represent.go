package phasespace

import (
	"math"

	"github.com/san-kum/galstream/internal/linalg"
)

// Cylindrical is a phase-space point in cylindrical representation.
// VPhi is the linear azimuthal speed R*dphi/dt.
type Cylindrical struct {
	R, Phi, Z    float64
	VR, VPhi, VZ float64
}

// ToCylindrical converts a Cartesian position and velocity.
func ToCylindrical(pp PhaseSpacePosition) Cylindrical {
	r := math.Hypot(pp.Q.X, pp.Q.Y)
	phi := math.Atan2(pp.Q.Y, pp.Q.X)
	var vr, vphi float64
	if r > 0 {
		vr = (pp.Q.X*pp.P.X + pp.Q.Y*pp.P.Y) / r
		vphi = (pp.Q.X*pp.P.Y - pp.Q.Y*pp.P.X) / r
	}
	return Cylindrical{R: r, Phi: phi, Z: pp.Q.Z, VR: vr, VPhi: vphi, VZ: pp.P.Z}
}

// ToCartesian converts back to an untimed Cartesian position.
func (c Cylindrical) ToCartesian() PhaseSpacePosition {
	sin, cos := math.Sincos(c.Phi)
	return NewPosition(
		linalg.Vec3{X: c.R * cos, Y: c.R * sin, Z: c.Z},
		linalg.Vec3{
			X: c.VR*cos - c.VPhi*sin,
			Y: c.VR*sin + c.VPhi*cos,
			Z: c.VZ,
		},
	)
}
