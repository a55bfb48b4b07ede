package config

import "sort"

// Presets are ready-to-run scenarios. Masses in Msun, lengths in kpc,
// velocities in km/s, times in Myr.
var Presets = map[string]*Config{
	"milky-way": DefaultConfig(),
	"gd1-like": {
		Potential: []ComponentConfig{
			{Name: "halo", Type: "nfw", Mass: 5.4e11, ScaleRadius: 15.6},
			{Name: "disk", Type: "miyamoto_nagai", Mass: 6.8e10, ScaleLength: 3.0, ScaleHeight: 0.28},
			{Name: "bulge", Type: "hernquist", Mass: 5e9, ScaleRadius: 1.0},
		},
		Progenitor: ProgenitorConfig{
			Pos:  [3]float64{-12.0, 0.0, 6.5},
			Vel:  [3]float64{-50, -120, -70},
			Mass: 2e4,
		},
		Grid: GridConfig{Start: -3000, End: 0, Steps: 600},
		Integrator: IntegratorConfig{
			Method: "dopri", RTol: DefaultRTol, ATol: DefaultATol,
		},
		Stream: StreamConfig{
			LeadArm: true, TrailArm: true, Seed: DefaultSeed, Strategy: "auto",
			PosScale: DefaultPosScale, PosSpread: DefaultPosSpread, VelSpread: DefaultVelSpread,
		},
	},
	"point-mass": {
		Potential: []ComponentConfig{
			{Name: "center", Type: "kepler", Mass: 1e11},
		},
		Progenitor: ProgenitorConfig{
			Pos:  [3]float64{10, 0, 0},
			Vel:  [3]float64{0, 200, 0},
			Mass: 1e5,
		},
		Grid: GridConfig{Start: -1000, End: 0, Steps: 200},
		Integrator: IntegratorConfig{
			Method: "dopri", RTol: DefaultRTol, ATol: DefaultATol,
		},
		Stream: StreamConfig{
			LeadArm: true, TrailArm: true, Seed: DefaultSeed, Strategy: "auto",
			PosScale: DefaultPosScale, PosSpread: DefaultPosSpread, VelSpread: DefaultVelSpread,
		},
	},
	"growing-halo": {
		Potential: []ComponentConfig{
			{Name: "halo", Type: "hernquist", Mass: 5e11, MassRate: 5e10, ScaleRadius: 20.0},
		},
		Progenitor: ProgenitorConfig{
			Pos:  [3]float64{25, 0, 0},
			Vel:  [3]float64{0, 150, 30},
			Mass: 5e5,
		},
		Grid: GridConfig{Start: -5000, End: 0, Steps: 500},
		Integrator: IntegratorConfig{
			Method: "dopri", RTol: DefaultRTol, ATol: DefaultATol,
		},
		Stream: StreamConfig{
			LeadArm: true, TrailArm: true, Seed: DefaultSeed, Strategy: "auto",
			PosScale: DefaultPosScale, PosSpread: DefaultPosSpread, VelSpread: DefaultVelSpread,
		},
	},
}

func GetPreset(name string) *Config {
	return Presets[name]
}

// ListPresets returns preset names in sorted order.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
