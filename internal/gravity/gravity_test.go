package gravity

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/galstream/internal/linalg"
	"github.com/san-kum/galstream/internal/param"
	"github.com/san-kum/galstream/internal/units"
)

func mustKepler(t *testing.T, mass float64) *Kepler {
	t.Helper()
	k, err := NewKepler(param.NewConstant(units.New(mass, units.SolarMass)), units.Galactic)
	if err != nil {
		t.Fatalf("kepler: %v", err)
	}
	return k
}

func mustHernquist(t *testing.T, mass, a float64) *Hernquist {
	t.Helper()
	h, err := NewHernquist(
		param.NewConstant(units.New(mass, units.SolarMass)),
		param.NewConstant(units.New(a, units.Kpc)),
		units.Galactic,
	)
	if err != nil {
		t.Fatalf("hernquist: %v", err)
	}
	return h
}

func mustNFW(t *testing.T, mass, rs float64) *NFW {
	t.Helper()
	n, err := NewNFW(
		param.NewConstant(units.New(mass, units.SolarMass)),
		param.NewConstant(units.New(rs, units.Kpc)),
		units.Galactic,
	)
	if err != nil {
		t.Fatalf("nfw: %v", err)
	}
	return n
}

func mustDisk(t *testing.T, mass, a, b float64) *MiyamotoNagai {
	t.Helper()
	mn, err := NewMiyamotoNagai(
		param.NewConstant(units.New(mass, units.SolarMass)),
		param.NewConstant(units.New(a, units.Kpc)),
		param.NewConstant(units.New(b, units.Kpc)),
		units.Galactic,
	)
	if err != nil {
		t.Fatalf("miyamoto-nagai: %v", err)
	}
	return mn
}

var probePoints = []linalg.Vec3{
	{X: 8.0, Y: 0.0, Z: 0.0},
	{X: 3.0, Y: -4.0, Z: 1.5},
	{X: -0.5, Y: 2.0, Z: -7.0},
}

func TestGradientMatchesEnergy(t *testing.T) {
	pots := map[string]Potential{
		"kepler":    mustKepler(t, 1e11),
		"hernquist": mustHernquist(t, 1e11, 3.0),
		"nfw":       mustNFW(t, 5e11, 15.0),
		"disk":      mustDisk(t, 6e10, 3.0, 0.3),
	}

	for name, p := range pots {
		t.Run(name, func(t *testing.T) {
			for _, q := range probePoints {
				got := p.Gradient(q, 0)
				want := NumericalGradient(p, q, 0)
				if got.Sub(want).Norm() > 1e-6*math.Max(want.Norm(), 1e-30) {
					t.Errorf("gradient at %+v: analytic %+v, numerical %+v", q, got, want)
				}
			}
		})
	}
}

func TestHessianMatchesGradient(t *testing.T) {
	pots := map[string]Potential{
		"kepler":    mustKepler(t, 1e11),
		"hernquist": mustHernquist(t, 1e11, 3.0),
		"nfw":       mustNFW(t, 5e11, 15.0),
	}

	for name, p := range pots {
		t.Run(name, func(t *testing.T) {
			for _, q := range probePoints {
				got := p.Hessian(q, 0)
				want := NumericalHessian(p, q, 0)
				scale := 0.0
				for i := 0; i < 3; i++ {
					for j := 0; j < 3; j++ {
						scale = math.Max(scale, math.Abs(want[i][j]))
					}
				}
				for i := 0; i < 3; i++ {
					for j := 0; j < 3; j++ {
						if math.Abs(got[i][j]-want[i][j]) > 1e-4*scale {
							t.Errorf("hessian[%d][%d] at %+v: analytic %g, numerical %g",
								i, j, q, got[i][j], want[i][j])
						}
					}
				}
			}
		})
	}
}

func TestKeplerDensityZero(t *testing.T) {
	k := mustKepler(t, 1e11)
	if d := k.Density(linalg.Vec3{X: 1}, 0); d != 0 {
		t.Errorf("point mass density off-origin: got %g, want 0", d)
	}
}

func TestHernquistDensityFormula(t *testing.T) {
	m, a := 1e11, 3.0
	h := mustHernquist(t, m, a)
	r := 5.0
	want := m * a / (2 * math.Pi * r * math.Pow(r+a, 3))
	got := h.Density(linalg.Vec3{X: r}, 0)
	if math.Abs(got-want)/want > 1e-12 {
		t.Errorf("density: got %g, want %g", got, want)
	}
}

func TestCompositeAdditivity(t *testing.T) {
	a := mustKepler(t, 1e11)
	b := mustHernquist(t, 5e10, 2.0)

	c, err := Combine(a, b)
	if err != nil {
		t.Fatalf("combine: %v", err)
	}

	for _, q := range probePoints {
		wantE := a.Energy(q, 0) + b.Energy(q, 0)
		if got := c.Energy(q, 0); math.Abs(got-wantE) > 1e-12*math.Abs(wantE) {
			t.Errorf("energy at %+v: got %g, want %g", q, got, wantE)
		}
		wantG := a.Gradient(q, 0).Add(b.Gradient(q, 0))
		if got := c.Gradient(q, 0); got.Sub(wantG).Norm() > 1e-12*wantG.Norm() {
			t.Errorf("gradient at %+v: got %+v, want %+v", q, got, wantG)
		}
		wantD := a.Density(q, 0) + b.Density(q, 0)
		if got := c.Density(q, 0); math.Abs(got-wantD) > 1e-12*math.Abs(wantD) {
			t.Errorf("density at %+v: got %g, want %g", q, got, wantD)
		}
	}
}

func TestCombineOrdering(t *testing.T) {
	a, err := NewComposite(
		Component{"a1", mustKepler(t, 1e10)},
		Component{"a2", mustKepler(t, 2e10)},
	)
	if err != nil {
		t.Fatalf("composite a: %v", err)
	}
	b, err := NewComposite(
		Component{"b1", mustKepler(t, 3e10)},
	)
	if err != nil {
		t.Fatalf("composite b: %v", err)
	}

	ab, err := Combine(a, b)
	if err != nil {
		t.Fatalf("combine a|b: %v", err)
	}
	wantAB := []string{"a1", "a2", "b1"}
	if got := ab.Keys(); !equalStrings(got, wantAB) {
		t.Errorf("a|b keys: got %v, want %v", got, wantAB)
	}

	ba, err := Combine(b, a)
	if err != nil {
		t.Fatalf("combine b|a: %v", err)
	}
	wantBA := []string{"b1", "a1", "a2"}
	if got := ba.Keys(); !equalStrings(got, wantBA) {
		t.Errorf("b|a keys: got %v, want %v", got, wantBA)
	}
}

func TestCombineBarePotentialGetsUniqueKey(t *testing.T) {
	a := mustKepler(t, 1e10)
	b := mustKepler(t, 2e10)

	c, err := Combine(a, b)
	if err != nil {
		t.Fatalf("combine: %v", err)
	}
	keys := c.Keys()
	if len(keys) != 2 {
		t.Fatalf("got %d components, want 2", len(keys))
	}
	if keys[0] == keys[1] {
		t.Error("auto-generated keys collided")
	}
}

func TestCompositeUnitMismatch(t *testing.T) {
	gal := mustKepler(t, 1e11)
	si, err := NewKepler(param.NewConstant(units.New(1e30, units.Kilogram)), units.SI)
	if err != nil {
		t.Fatalf("si kepler: %v", err)
	}

	_, err = NewComposite(Component{"gal", gal}, Component{"si", si})
	if !errors.Is(err, ErrUnitMismatch) {
		t.Errorf("expected ErrUnitMismatch, got %v", err)
	}
	_, err = Combine(gal, si)
	if !errors.Is(err, ErrUnitMismatch) {
		t.Errorf("combine: expected ErrUnitMismatch, got %v", err)
	}
}

func TestConstructionDimensionCheck(t *testing.T) {
	// A length where a mass belongs fails eagerly.
	_, err := NewKepler(param.NewConstant(units.New(1.0, units.Kpc)), units.Galactic)
	if !errors.Is(err, units.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestTimeDependentMass(t *testing.T) {
	// Mass decaying at 1e4 Msun/Myr from 1e11 at t=0.
	slope := units.New(-1e4, units.SolarMass.Div(units.Myr))
	mass, err := param.NewLinear(slope, units.New(0, units.Myr), units.New(1e11, units.SolarMass))
	if err != nil {
		t.Fatalf("linear: %v", err)
	}
	k, err := NewKepler(mass, units.Galactic)
	if err != nil {
		t.Fatalf("kepler: %v", err)
	}

	q := linalg.Vec3{X: 10}
	e0 := k.Energy(q, 0)
	e1 := k.Energy(q, 1000) // mass reduced by 1e7 Msun

	ratio := e1 / e0
	want := (1e11 - 1e7) / 1e11
	if math.Abs(ratio-want) > 1e-9 {
		t.Errorf("energy ratio: got %.12g, want %.12g", ratio, want)
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
