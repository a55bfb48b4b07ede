package mockstream

import (
	"math"
	"math/rand"

	"github.com/san-kum/galstream/internal/gravity"
	"github.com/san-kum/galstream/internal/linalg"
	"github.com/san-kum/galstream/internal/phasespace"
)

// SprayDF is a particle-spray release model: at every orbit sample it
// places one particle per arm near the instantaneous tidal radius, the
// trailing particle outside the progenitor's orbit and the leading one
// inside, with a small seeded scatter in both offset and velocity.
type SprayDF struct {
	LeadArm  bool
	TrailArm bool
	// PosScale is the mean release distance in tidal radii.
	PosScale float64
	// PosSpread and VelSpread are fractional scatters on the release
	// offset and the azimuthal velocity match.
	PosSpread float64
	VelSpread float64
}

func NewSprayDF() *SprayDF {
	return &SprayDF{
		LeadArm:   true,
		TrailArm:  true,
		PosScale:  2.0,
		PosSpread: 0.1,
		VelSpread: 0.3,
	}
}

func (d *SprayDF) Lead() bool  { return d.LeadArm }
func (d *SprayDF) Trail() bool { return d.TrailArm }

func (d *SprayDF) Sample(pot gravity.Potential, prog *phasespace.Orbit, progMass float64, seed uint64) (*ReleaseSet, *ReleaseSet, error) {
	n := prog.Len()
	rng := rand.New(rand.NewSource(int64(seed)))

	lead := &ReleaseSet{W: make([]phasespace.W, n), ReleaseTime: make([]float64, n)}
	trail := &ReleaseSet{W: make([]phasespace.W, n), ReleaseTime: make([]float64, n)}

	g := pot.Units().GravitationalConstant()

	for i := 0; i < n; i++ {
		w := prog.W[i]
		t := prog.T[i]
		q, p := w.Q(), w.P()
		r := q.Norm()
		rhat := q.Scale(1 / r)

		// Angular speed about the center.
		omega := q.Cross(p).Norm() / (r * r)

		rt := tidalRadius(pot, q, t, progMass, omega, g)

		// Scatter is shared by the pair so the arms stay symmetric.
		kr := d.PosScale * (1 + d.PosSpread*rng.NormFloat64())
		kv := omega * rt * (1 + d.VelSpread*rng.NormFloat64())

		dq := rhat.Scale(kr * rt)
		// Azimuthal unit vector in the orbital plane.
		phihat := q.Cross(p).Cross(q).Normalize()
		dp := phihat.Scale(kv)

		trail.W[i] = phasespace.NewW(q.Add(dq), p.Add(dp))
		trail.ReleaseTime[i] = t
		lead.W[i] = phasespace.NewW(q.Sub(dq), p.Sub(dp))
		lead.ReleaseTime[i] = t
	}

	return lead, trail, nil
}

// tidalRadius estimates the Jacobi radius from the radial tide,
// rt = (G m / (omega^2 - d2Phi/dr2))^(1/3), falling back to the
// enclosed-mass form when the tide is compressive.
func tidalRadius(pot gravity.Potential, q linalg.Vec3, t, progMass, omega, g float64) float64 {
	r := q.Norm()
	rhat := q.Scale(1 / r)
	hess := pot.Hessian(q, t)
	d2 := rhat.Dot(hess.MulVec(rhat))

	denom := omega*omega - d2
	if denom > 0 {
		return math.Cbrt(g * progMass / denom)
	}
	grad := pot.Gradient(q, t).Norm()
	return math.Cbrt(g * progMass * r / (3 * grad))
}
