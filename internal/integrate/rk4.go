package integrate

import (
	"context"

	"github.com/san-kum/galstream/internal/gravity"
	"github.com/san-kum/galstream/internal/phasespace"
)

// RK4 is a classic fourth-order fixed-step integrator taking Substeps
// equal steps per output interval.
type RK4 struct {
	Substeps int
}

func NewRK4() *RK4 {
	return &RK4{Substeps: 16}
}

func (r *RK4) Integrate(ctx context.Context, pot gravity.Potential, w0 phasespace.W, ts []float64) (*phasespace.Orbit, error) {
	if _, err := gridDirection(ts); err != nil {
		return nil, err
	}
	n := r.Substeps
	if n < 1 {
		n = 1
	}

	out := make([]phasespace.W, len(ts))
	outT := make([]float64, len(ts))
	copy(outT, ts)
	out[0] = w0

	w := w0
	step := 0
	for i := 1; i < len(ts); i++ {
		if err := cancelled(ctx); err != nil {
			return nil, err
		}
		h := (ts[i] - ts[i-1]) / float64(n)
		t := ts[i-1]
		for j := 0; j < n; j++ {
			w = rk4Step(pot, w, t, h)
			t += h
			step++
			if !w.IsFinite() {
				return nil, &IntegrationError{Step: step, Time: t, Err: ErrNonFinite}
			}
		}
		out[i] = w
	}

	return &phasespace.Orbit{W: out, T: outT, Potential: pot}, nil
}

func rk4Step(pot gravity.Potential, w phasespace.W, t, h float64) phasespace.W {
	k1 := derive(pot, w, t)
	k2 := derive(pot, addScaled(w, h*0.5, k1), t+h*0.5)
	k3 := derive(pot, addScaled(w, h*0.5, k2), t+h*0.5)
	k4 := derive(pot, addScaled(w, h, k3), t+h)

	var out phasespace.W
	h6 := h / 6.0
	for i := 0; i < 6; i++ {
		out[i] = w[i] + h6*(k1[i]+2*k2[i]+2*k3[i]+k4[i])
	}
	return out
}
