package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/galstream/internal/gravity"
	"github.com/san-kum/galstream/internal/integrate"
	"github.com/san-kum/galstream/internal/linalg"
	"github.com/san-kum/galstream/internal/mockstream"
	"github.com/san-kum/galstream/internal/param"
	"github.com/san-kum/galstream/internal/phasespace"
	"github.com/san-kum/galstream/internal/units"
)

const (
	DefaultRTol      = 1e-8
	DefaultATol      = 1e-10
	DefaultSteps     = 500
	DefaultSeed      = 42
	DefaultPosScale  = 2.0
	DefaultPosSpread = 0.1
	DefaultVelSpread = 0.3
)

// kmPerSToKpcPerMyr converts the config's km/s velocities into galactic
// working units.
var kmPerSToKpcPerMyr = units.KmPerS.Scale / units.Galactic.Velocity().Scale

type Config struct {
	Potential  []ComponentConfig `yaml:"potential" validate:"required,min=1,dive"`
	Progenitor ProgenitorConfig  `yaml:"progenitor"`
	Grid       GridConfig        `yaml:"grid"`
	Integrator IntegratorConfig  `yaml:"integrator"`
	Stream     StreamConfig      `yaml:"stream"`
}

// ComponentConfig describes one term of the composite potential. Masses
// are in Msun, lengths in kpc, mass rates in Msun/Gyr.
type ComponentConfig struct {
	Name        string  `yaml:"name" validate:"required"`
	Type        string  `yaml:"type" validate:"required,oneof=kepler hernquist nfw miyamoto_nagai"`
	Mass        float64 `yaml:"mass" validate:"gt=0"`
	MassRate    float64 `yaml:"mass_rate,omitempty"`
	ScaleRadius float64 `yaml:"scale_radius,omitempty" validate:"gte=0"`
	ScaleLength float64 `yaml:"scale_length,omitempty" validate:"gte=0"`
	ScaleHeight float64 `yaml:"scale_height,omitempty" validate:"gte=0"`
}

// ProgenitorConfig holds positions in kpc, velocities in km/s and the
// satellite mass in Msun.
type ProgenitorConfig struct {
	Pos  [3]float64 `yaml:"pos"`
	Vel  [3]float64 `yaml:"vel"`
	Mass float64    `yaml:"mass" validate:"gt=0"`
}

// GridConfig spans the stripping times in Myr.
type GridConfig struct {
	Start float64 `yaml:"start"`
	End   float64 `yaml:"end"`
	Steps int     `yaml:"steps" validate:"gte=2"`
}

type IntegratorConfig struct {
	Method   string  `yaml:"method" validate:"oneof=dopri rk4 leapfrog"`
	RTol     float64 `yaml:"rtol" validate:"gt=0"`
	ATol     float64 `yaml:"atol" validate:"gt=0"`
	Substeps int     `yaml:"substeps,omitempty" validate:"gte=0"`
}

type StreamConfig struct {
	LeadArm   bool    `yaml:"lead_arm"`
	TrailArm  bool    `yaml:"trail_arm"`
	Seed      uint64  `yaml:"seed"`
	Strategy  string  `yaml:"strategy" validate:"oneof=auto scan batched"`
	Workers   int     `yaml:"workers" validate:"gte=0"`
	PosScale  float64 `yaml:"pos_scale" validate:"gt=0"`
	PosSpread float64 `yaml:"pos_spread" validate:"gte=0"`
	VelSpread float64 `yaml:"vel_spread" validate:"gte=0"`
}

var validate = validator.New()

func DefaultConfig() *Config {
	return &Config{
		Potential: []ComponentConfig{
			{Name: "halo", Type: "nfw", Mass: 5.4e11, ScaleRadius: 15.6},
			{Name: "disk", Type: "miyamoto_nagai", Mass: 6.8e10, ScaleLength: 3.0, ScaleHeight: 0.28},
			{Name: "bulge", Type: "hernquist", Mass: 5e9, ScaleRadius: 1.0},
		},
		Progenitor: ProgenitorConfig{
			Pos:  [3]float64{15, 0, 5},
			Vel:  [3]float64{0, 180, 0},
			Mass: 1e5,
		},
		Grid: GridConfig{Start: -4000, End: 0, Steps: DefaultSteps},
		Integrator: IntegratorConfig{
			Method: "dopri",
			RTol:   DefaultRTol,
			ATol:   DefaultATol,
		},
		Stream: StreamConfig{
			LeadArm:   true,
			TrailArm:  true,
			Seed:      DefaultSeed,
			Strategy:  "auto",
			PosScale:  DefaultPosScale,
			PosSpread: DefaultPosSpread,
			VelSpread: DefaultVelSpread,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	return validate.Struct(c)
}

// BuildPotential assembles the composite potential in galactic units.
func (c *Config) BuildPotential() (gravity.Potential, error) {
	components := make([]gravity.Component, 0, len(c.Potential))
	for _, cc := range c.Potential {
		pot, err := cc.build()
		if err != nil {
			return nil, fmt.Errorf("config: component %q: %w", cc.Name, err)
		}
		components = append(components, gravity.Component{Name: cc.Name, Potential: pot})
	}
	if len(components) == 1 {
		return components[0].Potential, nil
	}
	return gravity.NewComposite(components...)
}

func (cc ComponentConfig) build() (gravity.Potential, error) {
	mass, err := cc.massParam()
	if err != nil {
		return nil, err
	}
	switch cc.Type {
	case "kepler":
		return gravity.NewKepler(mass, units.Galactic)
	case "hernquist":
		return gravity.NewHernquist(mass, constLength(cc.ScaleRadius), units.Galactic)
	case "nfw":
		return gravity.NewNFW(mass, constLength(cc.ScaleRadius), units.Galactic)
	case "miyamoto_nagai":
		return gravity.NewMiyamotoNagai(mass, constLength(cc.ScaleLength), constLength(cc.ScaleHeight), units.Galactic)
	default:
		return nil, fmt.Errorf("unknown potential type %q", cc.Type)
	}
}

func (cc ComponentConfig) massParam() (param.Parameter, error) {
	m0 := units.New(cc.Mass, units.SolarMass)
	if cc.MassRate == 0 {
		return param.NewConstant(m0), nil
	}
	rate := units.New(cc.MassRate, units.SolarMass.Div(units.Gyr))
	return param.NewLinear(rate, units.New(0, units.Myr), m0)
}

func constLength(v float64) param.Parameter {
	return param.NewConstant(units.New(v, units.Kpc))
}

// BuildIntegrator returns the configured solver.
func (c *Config) BuildIntegrator() integrate.Integrator {
	switch c.Integrator.Method {
	case "rk4":
		rk := integrate.NewRK4()
		if c.Integrator.Substeps > 0 {
			rk.Substeps = c.Integrator.Substeps
		}
		return rk
	case "leapfrog":
		lf := integrate.NewLeapfrog()
		if c.Integrator.Substeps > 0 {
			lf.Substeps = c.Integrator.Substeps
		}
		return lf
	default:
		d := integrate.NewDormandPrince()
		d.RTol = c.Integrator.RTol
		d.ATol = c.Integrator.ATol
		return d
	}
}

// BuildGenerator wires the potential, release model and solvers into a
// ready stream generator.
func (c *Config) BuildGenerator() (*mockstream.Generator, error) {
	pot, err := c.BuildPotential()
	if err != nil {
		return nil, err
	}
	df := &mockstream.SprayDF{
		LeadArm:   c.Stream.LeadArm,
		TrailArm:  c.Stream.TrailArm,
		PosScale:  c.Stream.PosScale,
		PosSpread: c.Stream.PosSpread,
		VelSpread: c.Stream.VelSpread,
	}
	gen := mockstream.NewGenerator(pot, df)
	gen.ProgenitorIntegrator = c.BuildIntegrator()
	gen.StreamIntegrator = c.BuildIntegrator()
	if c.Stream.Workers > 0 {
		gen.Workers = c.Stream.Workers
	}
	switch c.Stream.Strategy {
	case "scan":
		gen.Strategy = mockstream.StrategyScan
	case "batched":
		gen.Strategy = mockstream.StrategyBatched
	default:
		gen.Strategy = mockstream.StrategyAuto
	}
	return gen, nil
}

// TimeGrid expands the grid section into stripping times in Myr.
func (c *Config) TimeGrid() []float64 {
	n := c.Grid.Steps
	ts := make([]float64, n)
	for i := range ts {
		ts[i] = c.Grid.Start + (c.Grid.End-c.Grid.Start)*float64(i)/float64(n-1)
	}
	return ts
}

// ProgenitorState converts the progenitor section into a phase-space
// point in working units, taken at the first stripping time.
func (c *Config) ProgenitorState() phasespace.W {
	q := linalg.Vec3{X: c.Progenitor.Pos[0], Y: c.Progenitor.Pos[1], Z: c.Progenitor.Pos[2]}
	p := linalg.Vec3{
		X: c.Progenitor.Vel[0] * kmPerSToKpcPerMyr,
		Y: c.Progenitor.Vel[1] * kmPerSToKpcPerMyr,
		Z: c.Progenitor.Vel[2] * kmPerSToKpcPerMyr,
	}
	return phasespace.NewW(q, p)
}
