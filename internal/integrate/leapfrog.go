package integrate

import (
	"context"

	"github.com/san-kum/galstream/internal/gravity"
	"github.com/san-kum/galstream/internal/phasespace"
)

// Leapfrog is a kick-drift-kick symplectic integrator. Second order only,
// but it conserves energy over long runs where Runge-Kutta schemes drift,
// which suits progenitor orbits followed for many periods.
type Leapfrog struct {
	Substeps int
}

func NewLeapfrog() *Leapfrog {
	return &Leapfrog{Substeps: 64}
}

func (l *Leapfrog) Integrate(ctx context.Context, pot gravity.Potential, w0 phasespace.W, ts []float64) (*phasespace.Orbit, error) {
	if _, err := gridDirection(ts); err != nil {
		return nil, err
	}
	n := l.Substeps
	if n < 1 {
		n = 1
	}

	out := make([]phasespace.W, len(ts))
	outT := make([]float64, len(ts))
	copy(outT, ts)
	out[0] = w0

	q := w0.Q()
	p := w0.P()
	step := 0
	for i := 1; i < len(ts); i++ {
		if err := cancelled(ctx); err != nil {
			return nil, err
		}
		h := (ts[i] - ts[i-1]) / float64(n)
		t := ts[i-1]
		for j := 0; j < n; j++ {
			p = p.Add(pot.Gradient(q, t).Scale(-h * 0.5))
			q = q.Add(p.Scale(h))
			p = p.Add(pot.Gradient(q, t+h).Scale(-h * 0.5))
			t += h
			step++
			if !q.IsFinite() || !p.IsFinite() {
				return nil, &IntegrationError{Step: step, Time: t, Err: ErrNonFinite}
			}
		}
		out[i] = phasespace.NewW(q, p)
	}

	return &phasespace.Orbit{W: out, T: outT, Potential: pot}, nil
}
