package mockstream

import (
	"github.com/san-kum/galstream/internal/gravity"
	"github.com/san-kum/galstream/internal/phasespace"
)

// ReleaseSet holds per-particle initial conditions for one arm, each
// tagged with the stripping time it was released at.
type ReleaseSet struct {
	W           []phasespace.W
	ReleaseTime []float64
}

func (r *ReleaseSet) Len() int {
	if r == nil {
		return 0
	}
	return len(r.W)
}

// StreamDF is the release model: given the potential, the progenitor's
// integrated orbit and its mass, it returns leading- and trailing-arm
// initial conditions, one particle per arm per orbit sample. The sampler's
// internal randomness is fully determined by the seed.
type StreamDF interface {
	Sample(pot gravity.Potential, prog *phasespace.Orbit, progMass float64, seed uint64) (lead, trail *ReleaseSet, err error)
	// Lead reports whether the leading arm is enabled.
	Lead() bool
	// Trail reports whether the trailing arm is enabled.
	Trail() bool
}
