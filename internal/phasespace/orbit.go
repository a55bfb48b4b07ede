package phasespace

import (
	"github.com/san-kum/galstream/internal/gravity"
	"github.com/san-kum/galstream/internal/linalg"
)

// Orbit is the time series of phase-space states of one integrated
// trajectory, tagged with the potential it was integrated in.
type Orbit struct {
	W         []W
	T         []float64
	Potential gravity.Potential
}

func (o *Orbit) Len() int { return len(o.W) }

// Final returns the state at the last output time.
func (o *Orbit) Final() W { return o.W[len(o.W)-1] }

// At returns the i-th sample as a timed position.
func (o *Orbit) At(i int) PhaseSpacePosition {
	return NewTimedPosition(o.W[i].Q(), o.W[i].P(), o.T[i])
}

// Qs returns the position track.
func (o *Orbit) Qs() []linalg.Vec3 {
	out := make([]linalg.Vec3, len(o.W))
	for i, w := range o.W {
		out[i] = w.Q()
	}
	return out
}

// Energy returns the specific energy (kinetic + potential) at sample i.
// Conserved for time-independent potentials, so its drift measures
// integration quality.
func (o *Orbit) Energy(i int) float64 {
	w := o.W[i]
	return 0.5*w.P().NormSq() + o.Potential.Energy(w.Q(), o.T[i])
}

// Radii returns |q| per sample.
func (o *Orbit) Radii() []float64 {
	out := make([]float64, len(o.W))
	for i, w := range o.W {
		out[i] = w.Q().Norm()
	}
	return out
}
