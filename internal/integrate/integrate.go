// Package integrate advances phase-space states through time under a
// gravitational potential's force law:
//
//	dq/dt = p
//	dp/dt = -grad Phi(q, t)
//
// Integrators are pluggable; [DormandPrince] is the adaptive default,
// [RK4] and [Leapfrog] are fixed-step alternatives. Time grids may run
// forward or backward; output is sampled exactly at each requested time.
package integrate

import (
	"context"
	"errors"
	"fmt"

	"github.com/san-kum/galstream/internal/gravity"
	"github.com/san-kum/galstream/internal/phasespace"
)

// Domain errors for orbit integration.
var (
	// ErrInvalidTimeGrid indicates a time grid that is not strictly monotonic.
	ErrInvalidTimeGrid = errors.New("integrate: time grid is not strictly monotonic")

	// ErrNonFinite indicates a NaN or Inf derivative evaluation.
	ErrNonFinite = errors.New("integrate: non-finite derivative")

	// ErrStepUnderflow indicates the adaptive step shrank below the minimum.
	ErrStepUnderflow = errors.New("integrate: step size underflow")

	// ErrTooManySteps indicates the step budget ran out before the target time.
	ErrTooManySteps = errors.New("integrate: step budget exhausted")
)

// IntegrationError wraps a failure with the step index and time at which
// it occurred.
type IntegrationError struct {
	Step int
	Time float64
	Err  error
}

func (e *IntegrationError) Error() string {
	return fmt.Sprintf("step %d (t=%.6g): %v", e.Step, e.Time, e.Err)
}

func (e *IntegrationError) Unwrap() error { return e.Err }

// Integrator advances w0, given at ts[0], through the requested times.
type Integrator interface {
	Integrate(ctx context.Context, pot gravity.Potential, w0 phasespace.W, ts []float64) (*phasespace.Orbit, error)
}

// gridDirection validates strict monotonicity and returns +1 for a forward
// grid, -1 for a backward one.
func gridDirection(ts []float64) (float64, error) {
	if len(ts) < 2 {
		return 0, fmt.Errorf("%w: need at least two times", ErrInvalidTimeGrid)
	}
	dir := 1.0
	if ts[1] < ts[0] {
		dir = -1.0
	}
	for i := 1; i < len(ts); i++ {
		if (ts[i]-ts[i-1])*dir <= 0 {
			return 0, fmt.Errorf("%w: at index %d", ErrInvalidTimeGrid, i)
		}
	}
	return dir, nil
}

// derive evaluates the Hamiltonian right-hand side.
func derive(pot gravity.Potential, w phasespace.W, t float64) phasespace.W {
	g := pot.Gradient(w.Q(), t)
	return phasespace.W{w[3], w[4], w[5], -g.X, -g.Y, -g.Z}
}

func addScaled(w phasespace.W, h float64, k phasespace.W) phasespace.W {
	var out phasespace.W
	for i := 0; i < 6; i++ {
		out[i] = w[i] + h*k[i]
	}
	return out
}

func cancelled(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
