package phasespace

import (
	"errors"
	"math"

	"github.com/san-kum/galstream/internal/linalg"
)

// ErrShapeMismatch indicates batch components whose lengths disagree.
var ErrShapeMismatch = errors.New("phasespace: batch shape mismatch")

// W is a packed phase-space vector: x, y, z, vx, vy, vz.
type W [6]float64

func NewW(q, p linalg.Vec3) W {
	return W{q.X, q.Y, q.Z, p.X, p.Y, p.Z}
}

func (w W) Q() linalg.Vec3 { return linalg.Vec3{X: w[0], Y: w[1], Z: w[2]} }
func (w W) P() linalg.Vec3 { return linalg.Vec3{X: w[3], Y: w[4], Z: w[5]} }

func (w W) IsFinite() bool {
	for _, v := range w {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// PhaseSpacePosition is a single point in phase space, optionally tagged
// with a time.
type PhaseSpacePosition struct {
	Q    linalg.Vec3
	P    linalg.Vec3
	T    float64
	HasT bool
}

// NewPosition builds an untimed position.
func NewPosition(q, p linalg.Vec3) PhaseSpacePosition {
	return PhaseSpacePosition{Q: q, P: p}
}

// NewTimedPosition builds a position at time t.
func NewTimedPosition(q, p linalg.Vec3, t float64) PhaseSpacePosition {
	return PhaseSpacePosition{Q: q, P: p, T: t, HasT: true}
}

// FromW builds an untimed position from a packed vector.
func FromW(w W) PhaseSpacePosition {
	return NewPosition(w.Q(), w.P())
}

func (pp PhaseSpacePosition) W() W { return NewW(pp.Q, pp.P) }

// WithTime returns a copy tagged with time t.
func (pp PhaseSpacePosition) WithTime(t float64) PhaseSpacePosition {
	pp.T = t
	pp.HasT = true
	return pp
}

// Batch is a batched set of phase-space positions. The time axis may be
// absent, scalar (shared by every point) or per-point.
type Batch struct {
	q []linalg.Vec3
	p []linalg.Vec3
	t []float64
}

// NewBatch validates the shape invariant: velocities match positions, and
// times are absent, scalar, or one per point.
func NewBatch(q, p []linalg.Vec3, t []float64) (Batch, error) {
	if len(p) != len(q) {
		return Batch{}, ErrShapeMismatch
	}
	if t != nil && len(t) != 1 && len(t) != len(q) {
		return Batch{}, ErrShapeMismatch
	}
	return Batch{q: q, p: p, t: t}, nil
}

// BatchOf packs single positions into a batch. A shared time is kept
// scalar; mixed timed/untimed positions drop the time axis.
func BatchOf(positions ...PhaseSpacePosition) Batch {
	q := make([]linalg.Vec3, len(positions))
	p := make([]linalg.Vec3, len(positions))
	t := make([]float64, len(positions))
	allTimed := len(positions) > 0
	for i, pos := range positions {
		q[i] = pos.Q
		p[i] = pos.P
		t[i] = pos.T
		if !pos.HasT {
			allTimed = false
		}
	}
	if !allTimed {
		t = nil
	}
	return Batch{q: q, p: p, t: t}
}

func (b Batch) Len() int { return len(b.q) }

// Q returns the position components. The slice is shared, not copied.
func (b Batch) Q() []linalg.Vec3 { return b.q }

// P returns the velocity components. The slice is shared, not copied.
func (b Batch) P() []linalg.Vec3 { return b.p }

// HasT reports whether the batch carries a time axis.
func (b Batch) HasT() bool { return b.t != nil }

// T returns the time axis broadcast to the batch length.
func (b Batch) T() []float64 {
	if b.t == nil {
		return nil
	}
	if len(b.t) == 1 && b.Len() > 1 {
		out := make([]float64, b.Len())
		for i := range out {
			out[i] = b.t[0]
		}
		return out
	}
	return b.t
}

// At returns the i-th position.
func (b Batch) At(i int) PhaseSpacePosition {
	pp := PhaseSpacePosition{Q: b.q[i], P: b.p[i]}
	switch {
	case len(b.t) == 1:
		pp.T, pp.HasT = b.t[0], true
	case len(b.t) > i:
		pp.T, pp.HasT = b.t[i], true
	}
	return pp
}
