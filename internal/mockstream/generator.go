package mockstream

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/rs/zerolog"
	"github.com/san-kum/galstream/internal/gravity"
	"github.com/san-kum/galstream/internal/integrate"
	"github.com/san-kum/galstream/internal/linalg"
	"github.com/san-kum/galstream/internal/phasespace"
)

// Domain errors for stream generation.
var (
	// ErrNoArms indicates a release model with both arms disabled.
	ErrNoArms = errors.New("mockstream: neither leading nor trailing arm enabled")

	// ErrInvalidProgenitor indicates a progenitor that is not a single
	// phase-space point.
	ErrInvalidProgenitor = errors.New("mockstream: progenitor must be a single phase-space point")
)

// Strategy selects how released particles are integrated to the final
// time. Both strategies produce equal results up to solver tolerance.
type Strategy int

const (
	// StrategyAuto picks Batched when more than one worker is configured,
	// Scan otherwise.
	StrategyAuto Strategy = iota
	// StrategyScan integrates one leading/trailing pair per stripping
	// time, in release order.
	StrategyScan
	// StrategyBatched integrates every particle independently across a
	// bounded worker pool.
	StrategyBatched
)

func (s Strategy) String() string {
	switch s {
	case StrategyScan:
		return "scan"
	case StrategyBatched:
		return "batched"
	default:
		return "auto"
	}
}

// finalBumpFrac scales the mean grid step into the small extension past
// the final time that keeps the last particle's integration window
// non-empty.
const finalBumpFrac = 1e-3

// Generator runs the mock-stream pipeline: progenitor orbit, release
// sampling, particle integration, arm assembly.
type Generator struct {
	Potential            gravity.Potential
	DF                   StreamDF
	ProgenitorIntegrator integrate.Integrator
	StreamIntegrator     integrate.Integrator
	Strategy             Strategy
	Workers              int
	Logger               zerolog.Logger
}

func NewGenerator(pot gravity.Potential, df StreamDF) *Generator {
	return &Generator{
		Potential:            pot,
		DF:                   df,
		ProgenitorIntegrator: integrate.NewDormandPrince(),
		StreamIntegrator:     integrate.NewDormandPrince(),
		Workers:              runtime.NumCPU(),
		Logger:               zerolog.Nop(),
	}
}

// Run generates a stream from a raw 6-vector progenitor state given at
// the first stripping time.
func (g *Generator) Run(ctx context.Context, ts []float64, w0 phasespace.W, progMass float64, seed uint64) (*phasespace.MockStream, *phasespace.Orbit, error) {
	return g.run(ctx, ts, w0, progMass, seed)
}

// RunPosition generates a stream from a phase-space position. An untimed
// position is taken at the first stripping time; a timed one states where
// the progenitor is at its own time, so it is first carried from that time
// to ts[0] under the progenitor integrator (backward when ts[0] < pos.T).
func (g *Generator) RunPosition(ctx context.Context, ts []float64, pos phasespace.PhaseSpacePosition, progMass float64, seed uint64) (*phasespace.MockStream, *phasespace.Orbit, error) {
	w0 := pos.W()
	if pos.HasT && len(ts) > 0 && pos.T != ts[0] {
		pre, err := g.ProgenitorIntegrator.Integrate(ctx, g.Potential, w0, []float64{pos.T, ts[0]})
		if err != nil {
			return nil, nil, fmt.Errorf("mockstream: progenitor from t=%g to grid start: %w", pos.T, err)
		}
		w0 = pre.Final()
	}
	return g.run(ctx, ts, w0, progMass, seed)
}

// RunBatch generates a stream from a batch that must contain exactly one
// progenitor; anything else fails with ErrInvalidProgenitor.
func (g *Generator) RunBatch(ctx context.Context, ts []float64, b phasespace.Batch, progMass float64, seed uint64) (*phasespace.MockStream, *phasespace.Orbit, error) {
	if b.Len() != 1 {
		return nil, nil, fmt.Errorf("%w: batch length %d", ErrInvalidProgenitor, b.Len())
	}
	return g.run(ctx, ts, b.At(0).W(), progMass, seed)
}

func (g *Generator) run(ctx context.Context, ts []float64, w0 phasespace.W, progMass float64, seed uint64) (*phasespace.MockStream, *phasespace.Orbit, error) {
	if !g.DF.Lead() && !g.DF.Trail() {
		return nil, nil, ErrNoArms
	}

	// A reverse-chronological grid means the initial conditions are given
	// at the end time; flip it so stripping always runs start-to-end.
	grid := make([]float64, len(ts))
	copy(grid, ts)
	if len(grid) >= 2 && grid[1] < grid[0] {
		for i, j := 0, len(grid)-1; i < j; i, j = i+1, j-1 {
			grid[i], grid[j] = grid[j], grid[i]
		}
	}

	prog, err := g.ProgenitorIntegrator.Integrate(ctx, g.Potential, w0, grid)
	if err != nil {
		return nil, nil, fmt.Errorf("mockstream: progenitor orbit: %w", err)
	}

	lead, trail, err := g.DF.Sample(g.Potential, prog, progMass, seed)
	if err != nil {
		return nil, nil, fmt.Errorf("mockstream: release sampling: %w", err)
	}

	strategy := g.Strategy
	if strategy == StrategyAuto {
		if g.Workers > 1 {
			strategy = StrategyBatched
		} else {
			strategy = StrategyScan
		}
	}
	g.Logger.Debug().
		Stringer("strategy", strategy).
		Int("lead", lead.Len()).
		Int("trail", trail.Len()).
		Msg("integrating released particles")

	tFinal := grid[len(grid)-1] + finalBump(grid)

	var leadW, trailW []phasespace.W
	switch strategy {
	case StrategyBatched:
		leadW, trailW, err = g.runBatched(ctx, lead, trail, tFinal)
	default:
		leadW, trailW, err = g.runScan(ctx, lead, trail, tFinal)
	}
	if err != nil {
		return nil, nil, err
	}

	stream, err := g.assemble(leadW, trailW, lead, trail, grid[len(grid)-1])
	if err != nil {
		return nil, nil, err
	}
	return stream, prog, nil
}

// finalBump returns the epsilon extension past the final time: a fixed
// fraction of the mean grid step, so it scales with the grid's resolution.
func finalBump(grid []float64) float64 {
	span := math.Abs(grid[len(grid)-1] - grid[0])
	return finalBumpFrac * span / float64(len(grid)-1)
}

// integrateRelease carries one particle from its release time to the
// (bumped) final time and returns the end state.
func (g *Generator) integrateRelease(ctx context.Context, w phasespace.W, release, tFinal float64) (phasespace.W, error) {
	orbit, err := g.StreamIntegrator.Integrate(ctx, g.Potential, w, []float64{release, tFinal})
	if err != nil {
		return phasespace.W{}, fmt.Errorf("mockstream: particle released at t=%g: %w", release, err)
	}
	return orbit.Final(), nil
}

// runScan processes stripping times in release order, integrating exactly
// the pair released at each step.
func (g *Generator) runScan(ctx context.Context, lead, trail *ReleaseSet, tFinal float64) ([]phasespace.W, []phasespace.W, error) {
	leadW := make([]phasespace.W, lead.Len())
	trailW := make([]phasespace.W, trail.Len())

	n := lead.Len()
	if trail.Len() > n {
		n = trail.Len()
	}
	for i := 0; i < n; i++ {
		if g.DF.Lead() && i < lead.Len() {
			w, err := g.integrateRelease(ctx, lead.W[i], lead.ReleaseTime[i], tFinal)
			if err != nil {
				return nil, nil, err
			}
			leadW[i] = w
		}
		if g.DF.Trail() && i < trail.Len() {
			w, err := g.integrateRelease(ctx, trail.W[i], trail.ReleaseTime[i], tFinal)
			if err != nil {
				return nil, nil, err
			}
			trailW[i] = w
		}
	}
	return leadW, trailW, nil
}

type releaseTask struct {
	idx     int
	leading bool
	w       phasespace.W
	release float64
}

// runBatched fans every particle out over a bounded worker pool. Results
// land at fixed indices, so output order is independent of scheduling.
func (g *Generator) runBatched(ctx context.Context, lead, trail *ReleaseSet, tFinal float64) ([]phasespace.W, []phasespace.W, error) {
	leadW := make([]phasespace.W, lead.Len())
	trailW := make([]phasespace.W, trail.Len())

	tasks := make([]releaseTask, 0, lead.Len()+trail.Len())
	if g.DF.Lead() {
		for i := 0; i < lead.Len(); i++ {
			tasks = append(tasks, releaseTask{idx: i, leading: true, w: lead.W[i], release: lead.ReleaseTime[i]})
		}
	}
	if g.DF.Trail() {
		for i := 0; i < trail.Len(); i++ {
			tasks = append(tasks, releaseTask{idx: i, leading: false, w: trail.W[i], release: trail.ReleaseTime[i]})
		}
	}

	workers := g.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(tasks) {
		workers = len(tasks)
	}

	errs := make([]error, workers)
	var wg sync.WaitGroup
	chunk := (len(tasks) + workers - 1) / workers
	for wk := 0; wk < workers; wk++ {
		start := wk * chunk
		end := start + chunk
		if end > len(tasks) {
			end = len(tasks)
		}
		if start >= end {
			continue
		}
		wg.Add(1)
		go func(slot int, tasks []releaseTask) {
			defer wg.Done()
			for _, task := range tasks {
				w, err := g.integrateRelease(ctx, task.w, task.release, tFinal)
				if err != nil {
					errs[slot] = err
					return
				}
				if task.leading {
					leadW[task.idx] = w
				} else {
					trailW[task.idx] = w
				}
			}
		}(wk, tasks[start:end])
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, nil, err
		}
	}
	return leadW, trailW, nil
}

// assemble merges the integrated arms into one stream. With both arms the
// particles interleave pairwise: index 2k is the trailing particle of
// stripping time k, 2k+1 the leading one.
func (g *Generator) assemble(leadW, trailW []phasespace.W, lead, trail *ReleaseSet, tFinal float64) (*phasespace.MockStream, error) {
	switch {
	case g.DF.Lead() && g.DF.Trail():
		q := interleave(unpackQ(trailW), unpackQ(leadW))
		p := interleave(unpackP(trailW), unpackP(leadW))
		rt := interleave(trail.ReleaseTime, lead.ReleaseTime)
		return &phasespace.MockStream{Q: q, P: p, ReleaseTime: rt, T: tFinal}, nil
	case g.DF.Lead():
		return &phasespace.MockStream{Q: unpackQ(leadW), P: unpackP(leadW), ReleaseTime: lead.ReleaseTime, T: tFinal}, nil
	case g.DF.Trail():
		return &phasespace.MockStream{Q: unpackQ(trailW), P: unpackP(trailW), ReleaseTime: trail.ReleaseTime, T: tFinal}, nil
	default:
		return nil, ErrNoArms
	}
}

// interleave merges equal-length slices element by element, a's entries
// at even positions.
func interleave[T any](a, b []T) []T {
	out := make([]T, 0, len(a)+len(b))
	for i := range a {
		out = append(out, a[i])
		if i < len(b) {
			out = append(out, b[i])
		}
	}
	return out
}

func unpackQ(ws []phasespace.W) []linalg.Vec3 {
	out := make([]linalg.Vec3, len(ws))
	for i, w := range ws {
		out[i] = w.Q()
	}
	return out
}

func unpackP(ws []phasespace.W) []linalg.Vec3 {
	out := make([]linalg.Vec3, len(ws))
	for i, w := range ws {
		out[i] = w.P()
	}
	return out
}
