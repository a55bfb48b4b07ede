package gravity

import (
	"errors"
	"math"

	"github.com/san-kum/galstream/internal/linalg"
	"github.com/san-kum/galstream/internal/param"
	"github.com/san-kum/galstream/internal/units"
)

// Domain errors for potential construction and evaluation.
var (
	// ErrUnitMismatch indicates composite components with differing unit systems.
	ErrUnitMismatch = errors.New("gravity: potentials do not share one unit system")

	// ErrNotAPotential indicates a combine operand that is not a potential.
	ErrNotAPotential = errors.New("gravity: operand is not a potential")

	// ErrEmptyComposite indicates a composite constructed with no components.
	ErrEmptyComposite = errors.New("gravity: composite needs at least one component")
)

// Potential is a scalar field whose negative gradient is gravitational
// acceleration. Positions and times are in the potential's unit system.
type Potential interface {
	// Energy returns the potential energy per unit mass at (q, t).
	Energy(q linalg.Vec3, t float64) float64
	// Gradient returns the spatial gradient of the energy at (q, t).
	// The acceleration is its negation.
	Gradient(q linalg.Vec3, t float64) linalg.Vec3
	// Density returns the local mass density sourcing the potential.
	Density(q linalg.Vec3, t float64) float64
	// Hessian returns the matrix of second spatial derivatives at (q, t).
	Hessian(q linalg.Vec3, t float64) linalg.Mat3
	// Units returns the unit system the potential is expressed in.
	Units() units.UnitSystem
}

var timeDim = units.Dimension{Time: 1}

// coeff is a parameter bound to a unit system and an expected dimension.
// Evaluation returns the value in system units, or NaN when the parameter
// stops producing the declared dimension, which the integrator surfaces as
// a non-finite derivative failure.
type coeff struct {
	p   param.Parameter
	sys units.UnitSystem
	dim units.Dimension
}

// bindCoeff probes the parameter at t=0 so dimension errors surface at
// construction rather than mid-integration.
func bindCoeff(p param.Parameter, sys units.UnitSystem, dim units.Dimension) (coeff, error) {
	c := coeff{p: p, sys: sys, dim: dim}
	v, err := p.At(sys.Quantity(0, timeDim))
	if err != nil {
		return coeff{}, err
	}
	if v.Unit.Dim != dim {
		return coeff{}, units.ErrDimensionMismatch
	}
	return c, nil
}

func (c coeff) at(t float64) float64 {
	v, err := c.p.At(c.sys.Quantity(t, timeDim))
	if err != nil || v.Unit.Dim != c.dim {
		return math.NaN()
	}
	return c.sys.Express(v)
}

var (
	massDim   = units.Dimension{Mass: 1}
	lengthDim = units.Dimension{Length: 1}
)
