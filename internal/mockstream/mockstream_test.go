package mockstream

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/san-kum/galstream/internal/gravity"
	"github.com/san-kum/galstream/internal/integrate"
	"github.com/san-kum/galstream/internal/linalg"
	"github.com/san-kum/galstream/internal/param"
	"github.com/san-kum/galstream/internal/phasespace"
	"github.com/san-kum/galstream/internal/units"
)

const testMass = 1e11 // Msun

func testPotential(t *testing.T) *gravity.Kepler {
	t.Helper()
	k, err := gravity.NewKepler(param.NewConstant(units.New(testMass, units.SolarMass)), units.Galactic)
	if err != nil {
		t.Fatalf("kepler: %v", err)
	}
	return k
}

func circularW0(k *gravity.Kepler, r float64) (phasespace.W, float64) {
	v := k.CircularVelocity(r, 0)
	return phasespace.NewW(linalg.Vec3{X: r}, linalg.Vec3{Y: v}), 2 * math.Pi * r / v
}

func timeGrid(t0, t1 float64, n int) []float64 {
	ts := make([]float64, n)
	for i := range ts {
		ts[i] = t0 + (t1-t0)*float64(i)/float64(n-1)
	}
	return ts
}

// offsetDF releases one particle per arm at each orbit sample, displaced
// radially by a fixed amount from the progenitor. Zero offset puts every
// particle exactly on the progenitor's orbit.
type offsetDF struct {
	lead, trail bool
	offset      float64
}

func (d offsetDF) Lead() bool  { return d.lead }
func (d offsetDF) Trail() bool { return d.trail }

func (d offsetDF) Sample(pot gravity.Potential, prog *phasespace.Orbit, progMass float64, seed uint64) (*ReleaseSet, *ReleaseSet, error) {
	n := prog.Len()
	lead := &ReleaseSet{W: make([]phasespace.W, n), ReleaseTime: make([]float64, n)}
	trail := &ReleaseSet{W: make([]phasespace.W, n), ReleaseTime: make([]float64, n)}
	for i := 0; i < n; i++ {
		w := prog.W[i]
		q, p := w.Q(), w.P()
		rhat := q.Normalize()
		trail.W[i] = phasespace.NewW(q.Add(rhat.Scale(d.offset)), p)
		lead.W[i] = phasespace.NewW(q.Sub(rhat.Scale(d.offset)), p)
		trail.ReleaseTime[i] = prog.T[i]
		lead.ReleaseTime[i] = prog.T[i]
	}
	return lead, trail, nil
}

// failingDF reports an error from sampling.
type failingDF struct{}

func (failingDF) Lead() bool  { return true }
func (failingDF) Trail() bool { return true }
func (failingDF) Sample(gravity.Potential, *phasespace.Orbit, float64, uint64) (*ReleaseSet, *ReleaseSet, error) {
	return nil, nil, errors.New("sampling broke")
}

func TestStrategiesAgree(t *testing.T) {
	k := testPotential(t)
	w0, period := circularW0(k, 8.0)
	ts := timeGrid(0, period, 41)
	df := offsetDF{lead: true, trail: true, offset: 0.05}

	scan := NewGenerator(k, df)
	scan.Strategy = StrategyScan

	batched := NewGenerator(k, df)
	batched.Strategy = StrategyBatched
	batched.Workers = 4

	s1, _, err := scan.Run(context.Background(), ts, w0, testMass, 7)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	s2, _, err := batched.Run(context.Background(), ts, w0, testMass, 7)
	if err != nil {
		t.Fatalf("batched: %v", err)
	}

	if s1.Len() != s2.Len() {
		t.Fatalf("lengths differ: %d vs %d", s1.Len(), s2.Len())
	}
	for i := 0; i < s1.Len(); i++ {
		if dq := s1.Q[i].Distance(s2.Q[i]); dq > 1e-10 {
			t.Errorf("particle %d position differs by %g", i, dq)
		}
		if dp := s1.P[i].Distance(s2.P[i]); dp > 1e-10 {
			t.Errorf("particle %d velocity differs by %g", i, dp)
		}
		if s1.ReleaseTime[i] != s2.ReleaseTime[i] {
			t.Errorf("particle %d release time differs: %g vs %g", i, s1.ReleaseTime[i], s2.ReleaseTime[i])
		}
	}
}

func TestBothArmsInterleaved(t *testing.T) {
	k := testPotential(t)
	w0, period := circularW0(k, 8.0)
	ts := timeGrid(0, period/2, 11)

	gen := NewGenerator(k, offsetDF{lead: true, trail: true, offset: 0.05})
	gen.Strategy = StrategyScan

	stream, prog, err := gen.Run(context.Background(), ts, w0, testMass, 1)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if stream.Len() != 2*len(ts) {
		t.Fatalf("stream has %d particles, want %d", stream.Len(), 2*len(ts))
	}
	if prog.Len() != len(ts) {
		t.Fatalf("progenitor orbit has %d samples, want %d", prog.Len(), len(ts))
	}
	// Pair k shares the release time of stripping step k.
	for i := 0; i < len(ts); i++ {
		if stream.ReleaseTime[2*i] != ts[i] || stream.ReleaseTime[2*i+1] != ts[i] {
			t.Errorf("pair %d release times %g,%g, want both %g",
				i, stream.ReleaseTime[2*i], stream.ReleaseTime[2*i+1], ts[i])
		}
	}
	// The trailing particle sits at even indices. Both arms were released
	// symmetrically, so at equal release times the trailing one starts
	// farther out; the last pair barely evolves before the final time.
	last := len(ts) - 1
	rTrail := stream.Q[2*last].Norm()
	rLead := stream.Q[2*last+1].Norm()
	if rTrail <= rLead {
		t.Errorf("expected trailing particle outside leading at last pair: %g vs %g", rTrail, rLead)
	}
}

func TestSingleArm(t *testing.T) {
	k := testPotential(t)
	w0, period := circularW0(k, 8.0)
	ts := timeGrid(0, period/2, 11)

	for _, tc := range []struct {
		name        string
		lead, trail bool
	}{
		{"lead-only", true, false},
		{"trail-only", false, true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			gen := NewGenerator(k, offsetDF{lead: tc.lead, trail: tc.trail, offset: 0.05})
			gen.Strategy = StrategyScan
			stream, _, err := gen.Run(context.Background(), ts, w0, testMass, 1)
			if err != nil {
				t.Fatalf("run: %v", err)
			}
			if stream.Len() != len(ts) {
				t.Errorf("stream has %d particles, want %d", stream.Len(), len(ts))
			}
			for i, rt := range stream.ReleaseTime {
				if rt != ts[i] {
					t.Errorf("particle %d release time %g, want %g", i, rt, ts[i])
				}
			}
		})
	}
}

func TestTimedProgenitorCarriedToGridStart(t *testing.T) {
	k := testPotential(t)
	w0, period := circularW0(k, 8.0)
	ts := timeGrid(0, period/2, 11)
	df := offsetDF{lead: true, trail: true, offset: 0.05}

	gen := NewGenerator(k, df)
	gen.Strategy = StrategyScan

	want, _, err := gen.Run(context.Background(), ts, w0, testMass, 5)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	// The same progenitor observed later: advance the grid-start state to
	// t=250, then hand the generator that timed position. It must rewind to
	// ts[0] and reproduce the untimed run.
	later, err := integrate.NewDormandPrince().Integrate(context.Background(), k, w0, []float64{ts[0], 250})
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	wLater := later.Final()
	timed := phasespace.NewTimedPosition(wLater.Q(), wLater.P(), 250)

	got, _, err := gen.RunPosition(context.Background(), ts, timed, testMass, 5)
	if err != nil {
		t.Fatalf("timed run: %v", err)
	}
	if got.Len() != want.Len() {
		t.Fatalf("stream lengths differ: %d vs %d", got.Len(), want.Len())
	}
	for i := 0; i < got.Len(); i++ {
		if dq := got.Q[i].Distance(want.Q[i]); dq > 1e-6 {
			t.Errorf("particle %d position differs by %g with a timed progenitor", i, dq)
		}
	}

	// A position timed exactly at ts[0] skips the carry and matches bit for
	// bit, as does an untimed one.
	at0 := phasespace.NewTimedPosition(w0.Q(), w0.P(), ts[0])
	same, _, err := gen.RunPosition(context.Background(), ts, at0, testMass, 5)
	if err != nil {
		t.Fatalf("at-grid-start run: %v", err)
	}
	for i := 0; i < same.Len(); i++ {
		if same.Q[i] != want.Q[i] {
			t.Errorf("particle %d differs for a position timed at the grid start", i)
		}
	}
}

func TestNoArmsRejected(t *testing.T) {
	k := testPotential(t)
	w0, _ := circularW0(k, 8.0)

	gen := NewGenerator(k, offsetDF{lead: false, trail: false})
	_, _, err := gen.Run(context.Background(), timeGrid(0, 100, 11), w0, testMass, 1)
	if !errors.Is(err, ErrNoArms) {
		t.Fatalf("expected ErrNoArms, got %v", err)
	}
}

func TestBatchProgenitorMustBeSingle(t *testing.T) {
	k := testPotential(t)
	w0, _ := circularW0(k, 8.0)
	gen := NewGenerator(k, offsetDF{lead: true, trail: true, offset: 0.05})

	two := phasespace.BatchOf(phasespace.FromW(w0), phasespace.FromW(w0))
	if _, _, err := gen.RunBatch(context.Background(), timeGrid(0, 100, 11), two, testMass, 1); !errors.Is(err, ErrInvalidProgenitor) {
		t.Errorf("batch of 2: expected ErrInvalidProgenitor, got %v", err)
	}

	one := phasespace.BatchOf(phasespace.FromW(w0))
	if _, _, err := gen.RunBatch(context.Background(), timeGrid(0, 100, 11), one, testMass, 1); err != nil {
		t.Errorf("batch of 1: unexpected error %v", err)
	}
}

func TestReversedGridFlipped(t *testing.T) {
	k := testPotential(t)
	w0, period := circularW0(k, 8.0)
	df := offsetDF{lead: true, trail: true, offset: 0.05}

	fwd := NewGenerator(k, df)
	fwd.Strategy = StrategyScan
	rev := NewGenerator(k, df)
	rev.Strategy = StrategyScan

	ts := timeGrid(0, period/2, 11)
	reversed := make([]float64, len(ts))
	for i := range ts {
		reversed[i] = ts[len(ts)-1-i]
	}

	s1, p1, err := fwd.Run(context.Background(), ts, w0, testMass, 1)
	if err != nil {
		t.Fatalf("forward grid: %v", err)
	}
	s2, p2, err := rev.Run(context.Background(), reversed, w0, testMass, 1)
	if err != nil {
		t.Fatalf("reversed grid: %v", err)
	}

	if p1.T[0] != p2.T[0] || p1.T[p1.Len()-1] != p2.T[p2.Len()-1] {
		t.Errorf("orbits cover different spans: [%g,%g] vs [%g,%g]",
			p1.T[0], p1.T[p1.Len()-1], p2.T[0], p2.T[p2.Len()-1])
	}
	if s1.Len() != s2.Len() {
		t.Fatalf("stream lengths differ: %d vs %d", s1.Len(), s2.Len())
	}
	for i := 0; i < s1.Len(); i++ {
		if dq := s1.Q[i].Distance(s2.Q[i]); dq > 1e-10 {
			t.Errorf("particle %d position differs by %g under grid reversal", i, dq)
		}
	}
}

func TestZeroOffsetTracksProgenitor(t *testing.T) {
	k := testPotential(t)
	w0, period := circularW0(k, 8.0)
	ts := timeGrid(0, period, 21)

	gen := NewGenerator(k, offsetDF{lead: true, trail: true, offset: 0})
	gen.Strategy = StrategyScan

	stream, prog, err := gen.Run(context.Background(), ts, w0, testMass, 1)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	// Each released particle started on the progenitor orbit, so it must
	// arrive where the progenitor does, up to the small final-time bump.
	final := prog.Final()
	for i := 0; i < stream.Len(); i++ {
		if dq := stream.Q[i].Distance(final.Q()); dq > 1e-2 {
			t.Errorf("particle %d ends %g kpc from the progenitor", i, dq)
		}
	}
}

func TestStreamFinalTime(t *testing.T) {
	k := testPotential(t)
	w0, _ := circularW0(k, 8.0)
	ts := timeGrid(0, 500, 11)

	gen := NewGenerator(k, offsetDF{lead: true, trail: true, offset: 0.05})
	gen.Strategy = StrategyScan
	stream, _, err := gen.Run(context.Background(), ts, w0, testMass, 1)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if stream.T != ts[len(ts)-1] {
		t.Errorf("stream time %g, want %g", stream.T, ts[len(ts)-1])
	}
}

func TestSampleErrorSurfaces(t *testing.T) {
	k := testPotential(t)
	w0, _ := circularW0(k, 8.0)

	gen := NewGenerator(k, failingDF{})
	_, _, err := gen.Run(context.Background(), timeGrid(0, 100, 11), w0, testMass, 1)
	if err == nil || !strings.Contains(err.Error(), "sampling broke") {
		t.Fatalf("expected sampling error, got %v", err)
	}
}

func TestAutoStrategySelection(t *testing.T) {
	k := testPotential(t)
	df := offsetDF{lead: true, trail: true, offset: 0.05}

	gen := NewGenerator(k, df)
	if gen.Strategy != StrategyAuto {
		t.Fatalf("default strategy %v, want auto", gen.Strategy)
	}
	// Auto resolves per run; a single-worker generator must still produce
	// the same stream as an explicit scan.
	gen.Workers = 1
	w0, period := circularW0(k, 8.0)
	ts := timeGrid(0, period/2, 11)
	s1, _, err := gen.Run(context.Background(), ts, w0, testMass, 3)
	if err != nil {
		t.Fatalf("auto: %v", err)
	}

	scan := NewGenerator(k, df)
	scan.Strategy = StrategyScan
	s2, _, err := scan.Run(context.Background(), ts, w0, testMass, 3)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	for i := 0; i < s1.Len(); i++ {
		if dq := s1.Q[i].Distance(s2.Q[i]); dq > 1e-12 {
			t.Errorf("particle %d differs by %g between auto and scan", i, dq)
		}
	}
}

func TestCancellationStopsGeneration(t *testing.T) {
	k := testPotential(t)
	w0, _ := circularW0(k, 8.0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	gen := NewGenerator(k, offsetDF{lead: true, trail: true, offset: 0.05})
	_, _, err := gen.Run(ctx, timeGrid(0, 500, 11), w0, testMass, 1)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestIntegratorErrorWrapped(t *testing.T) {
	k := testPotential(t)
	w0, _ := circularW0(k, 8.0)

	gen := NewGenerator(k, offsetDF{lead: true, trail: true, offset: 0.05})
	bad := integrate.NewDormandPrince()
	bad.MaxSteps = 1
	gen.StreamIntegrator = bad
	gen.Strategy = StrategyScan

	_, _, err := gen.Run(context.Background(), timeGrid(0, 500, 11), w0, testMass, 1)
	if !errors.Is(err, integrate.ErrTooManySteps) {
		t.Fatalf("expected ErrTooManySteps, got %v", err)
	}
}

// sprayProgMass keeps the satellite light next to the host so the tidal
// radius stays well inside its orbital radius.
const sprayProgMass = 1e8

func TestSprayDFDeterministic(t *testing.T) {
	k := testPotential(t)
	w0, period := circularW0(k, 8.0)

	prog, err := integrate.NewDormandPrince().Integrate(context.Background(), k, w0, timeGrid(0, period/2, 21))
	if err != nil {
		t.Fatalf("orbit: %v", err)
	}

	df := NewSprayDF()
	l1, t1, err := df.Sample(k, prog, sprayProgMass, 42)
	if err != nil {
		t.Fatalf("sample: %v", err)
	}
	l2, t2, err := df.Sample(k, prog, sprayProgMass, 42)
	if err != nil {
		t.Fatalf("resample: %v", err)
	}
	if l1.Len() != prog.Len() || t1.Len() != prog.Len() {
		t.Fatalf("expected one particle per arm per sample, got %d/%d for %d samples",
			l1.Len(), t1.Len(), prog.Len())
	}
	for i := 0; i < l1.Len(); i++ {
		if l1.W[i] != l2.W[i] || t1.W[i] != t2.W[i] {
			t.Fatalf("sample %d not reproducible for fixed seed", i)
		}
	}

	l3, _, err := df.Sample(k, prog, sprayProgMass, 43)
	if err != nil {
		t.Fatalf("sample seed 43: %v", err)
	}
	same := true
	for i := 0; i < l1.Len(); i++ {
		if l1.W[i] != l3.W[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds produced identical samples")
	}
}

func TestSprayDFStraddlesTidalRadius(t *testing.T) {
	k := testPotential(t)
	w0, period := circularW0(k, 8.0)

	prog, err := integrate.NewDormandPrince().Integrate(context.Background(), k, w0, timeGrid(0, period/4, 11))
	if err != nil {
		t.Fatalf("orbit: %v", err)
	}

	df := NewSprayDF()
	lead, trail, err := df.Sample(k, prog, sprayProgMass, 9)
	if err != nil {
		t.Fatalf("sample: %v", err)
	}
	for i := 0; i < prog.Len(); i++ {
		r := prog.W[i].Q().Norm()
		if rl := lead.W[i].Q().Norm(); rl >= r {
			t.Errorf("sample %d: leading particle at %g, not inside progenitor radius %g", i, rl, r)
		}
		if rt := trail.W[i].Q().Norm(); rt <= r {
			t.Errorf("sample %d: trailing particle at %g, not outside progenitor radius %g", i, rt, r)
		}
	}
}
