package phasespace

import "github.com/san-kum/galstream/internal/linalg"

// MockStream holds released stream particles evaluated at a common time T.
// When both arms are generated the particles are interleaved pairwise:
// index 2k is the trailing particle released at stripping time k, 2k+1 the
// leading one, and ReleaseTime follows the same order.
type MockStream struct {
	Q           []linalg.Vec3
	P           []linalg.Vec3
	ReleaseTime []float64
	T           float64
}

func (s *MockStream) Len() int { return len(s.Q) }

// At returns the i-th particle as a position timed at the evaluation time.
func (s *MockStream) At(i int) PhaseSpacePosition {
	return NewTimedPosition(s.Q[i], s.P[i], s.T)
}

// Batch views the stream as a phase-space batch at the evaluation time.
func (s *MockStream) Batch() Batch {
	return Batch{q: s.Q, p: s.P, t: []float64{s.T}}
}
