package integrate

import (
	"context"
	"math"

	"github.com/san-kum/galstream/internal/gravity"
	"github.com/san-kum/galstream/internal/phasespace"
)

// Dormand-Prince coefficients (RK45)
var (
	dpA2 = 1.0 / 5.0
	dpA3 = 3.0 / 10.0
	dpA4 = 4.0 / 5.0
	dpA5 = 8.0 / 9.0

	dpB21 = 1.0 / 5.0
	dpB31 = 3.0 / 40.0
	dpB32 = 9.0 / 40.0
	dpB41 = 44.0 / 45.0
	dpB42 = -56.0 / 15.0
	dpB43 = 32.0 / 9.0
	dpB51 = 19372.0 / 6561.0
	dpB52 = -25360.0 / 2187.0
	dpB53 = 64448.0 / 6561.0
	dpB54 = -212.0 / 729.0
	dpB61 = 9017.0 / 3168.0
	dpB62 = -355.0 / 33.0
	dpB63 = 46732.0 / 5247.0
	dpB64 = 49.0 / 176.0
	dpB65 = -5103.0 / 18656.0

	dpC1 = 35.0 / 384.0
	dpC3 = 500.0 / 1113.0
	dpC4 = 125.0 / 192.0
	dpC5 = -2187.0 / 6784.0
	dpC6 = 11.0 / 84.0

	dpE1 = dpC1 - 5179.0/57600.0
	dpE3 = dpC3 - 7571.0/16695.0
	dpE4 = dpC4 - 393.0/640.0
	dpE5 = dpC5 - -92097.0/339200.0
	dpE6 = dpC6 - 187.0/2100.0
	dpE7 = -1.0 / 40.0
)

const (
	dpSafety   = 0.9
	dpMinScale = 0.2
	dpMaxScale = 10.0
)

// DormandPrince is an adaptive RK45 integrator with embedded error
// control. Steps are clamped to land exactly on each requested output
// time, so the trajectory is sampled at the grid, not at solver
// checkpoints.
type DormandPrince struct {
	RTol        float64
	ATol        float64
	InitialStep float64 // magnitude of the first trial step; 0 picks from the grid
	MinStep     float64 // magnitude below which the run fails with ErrStepUnderflow
	MaxSteps    int     // step budget per output interval
}

func NewDormandPrince() *DormandPrince {
	return &DormandPrince{
		RTol:     1e-8,
		ATol:     1e-10,
		MinStep:  1e-12,
		MaxSteps: 1_000_000,
	}
}

func (d *DormandPrince) Integrate(ctx context.Context, pot gravity.Potential, w0 phasespace.W, ts []float64) (*phasespace.Orbit, error) {
	dir, err := gridDirection(ts)
	if err != nil {
		return nil, err
	}

	out := make([]phasespace.W, len(ts))
	outT := make([]float64, len(ts))
	copy(outT, ts)
	out[0] = w0

	w := w0
	t := ts[0]
	h := d.InitialStep
	if h <= 0 {
		h = math.Abs(ts[1]-ts[0]) / 16
	}
	h *= dir

	step := 0
	for i := 1; i < len(ts); i++ {
		target := ts[i]
		budget := d.MaxSteps
		for (target-t)*dir > 0 {
			if err := cancelled(ctx); err != nil {
				return nil, err
			}
			if budget <= 0 {
				return nil, &IntegrationError{Step: step, Time: t, Err: ErrTooManySteps}
			}
			budget--

			if math.Abs(h) < d.MinStep {
				return nil, &IntegrationError{Step: step, Time: t, Err: ErrStepUnderflow}
			}
			// Land exactly on the output time.
			if (t+h-target)*dir > 0 {
				h = target - t
			}

			wNew, accepted, hNext, stepErr := d.step(pot, w, t, h)
			if stepErr != nil {
				return nil, &IntegrationError{Step: step, Time: t, Err: stepErr}
			}
			if !accepted {
				h = hNext
				continue
			}

			t += h
			w = wNew
			h = hNext
			step++
		}
		out[i] = w
		t = target
	}

	return &phasespace.Orbit{W: out, T: outT, Potential: pot}, nil
}

// step takes one trial step of size h. It returns the new state when the
// embedded error estimate passes, and in either case the next step size.
func (d *DormandPrince) step(pot gravity.Potential, w phasespace.W, t, h float64) (phasespace.W, bool, float64, error) {
	k1 := derive(pot, w, t)
	if !k1.IsFinite() {
		return w, false, 0, ErrNonFinite
	}

	k2 := derive(pot, addScaled(w, h*dpB21, k1), t+dpA2*h)
	k3 := derive(pot, rkStage(w, h, []float64{dpB31, dpB32}, k1, k2), t+dpA3*h)
	k4 := derive(pot, rkStage(w, h, []float64{dpB41, dpB42, dpB43}, k1, k2, k3), t+dpA4*h)
	k5 := derive(pot, rkStage(w, h, []float64{dpB51, dpB52, dpB53, dpB54}, k1, k2, k3, k4), t+dpA5*h)
	k6 := derive(pot, rkStage(w, h, []float64{dpB61, dpB62, dpB63, dpB64, dpB65}, k1, k2, k3, k4, k5), t+h)

	var wNew phasespace.W
	for i := 0; i < 6; i++ {
		wNew[i] = w[i] + h*(dpC1*k1[i]+dpC3*k3[i]+dpC4*k4[i]+dpC5*k5[i]+dpC6*k6[i])
	}
	if !wNew.IsFinite() {
		return w, false, 0, ErrNonFinite
	}

	k7 := derive(pot, wNew, t+h)

	errMax := 0.0
	for i := 0; i < 6; i++ {
		errEst := h * (dpE1*k1[i] + dpE3*k3[i] + dpE4*k4[i] + dpE5*k5[i] + dpE6*k6[i] + dpE7*k7[i])
		scale := d.ATol + d.RTol*(math.Abs(w[i])+math.Abs(h*k1[i]))
		errMax = math.Max(errMax, math.Abs(errEst)/scale)
	}

	if errMax > 1 {
		shrink := math.Max(dpMinScale, dpSafety*math.Pow(errMax, -0.25))
		return w, false, h * shrink, nil
	}

	grow := dpMaxScale
	if errMax > 0 {
		grow = math.Min(dpMaxScale, dpSafety*math.Pow(errMax, -0.2))
	}
	return wNew, true, h * grow, nil
}

// rkStage evaluates w + h * sum(coeffs[j] * ks[j]).
func rkStage(w phasespace.W, h float64, coeffs []float64, ks ...phasespace.W) phasespace.W {
	out := w
	for j, k := range ks {
		c := h * coeffs[j]
		for i := 0; i < 6; i++ {
			out[i] += c * k[i]
		}
	}
	return out
}
