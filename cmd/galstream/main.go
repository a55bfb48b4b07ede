package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/rs/zerolog"
	"github.com/san-kum/galstream/internal/config"
	"github.com/san-kum/galstream/internal/export"
	"github.com/san-kum/galstream/internal/phasespace"
	"github.com/san-kum/galstream/internal/storage"
	"github.com/spf13/cobra"
)

var (
	configFile string
	preset     string
	verbose    bool
	dataDir    string
	csvOut     string
	svgOut     string
	saveRun    bool
	seed       uint64
	workers    int
	strategy   string
	plotWidth  int
	plotHeight int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "galstream",
		Short: "mock tidal stream generator",
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".galstream", "data directory")

	orbitCmd := &cobra.Command{
		Use:   "orbit",
		Short: "integrate the progenitor orbit",
		RunE:  runOrbit,
	}
	orbitCmd.Flags().StringVar(&csvOut, "csv", "", "write orbit samples to CSV")
	orbitCmd.Flags().StringVar(&svgOut, "svg", "", "write orbit x-y track to SVG")
	orbitCmd.Flags().IntVar(&plotWidth, "width", 80, "plot width")
	orbitCmd.Flags().IntVar(&plotHeight, "height", 12, "plot height")

	streamCmd := &cobra.Command{
		Use:   "stream",
		Short: "generate a mock stream",
		RunE:  runStream,
	}
	streamCmd.Flags().StringVar(&csvOut, "csv", "", "write stream particles to CSV")
	streamCmd.Flags().StringVar(&svgOut, "svg", "", "write stream x-y scatter to SVG")
	streamCmd.Flags().BoolVar(&saveRun, "save", false, "persist the run to the data directory")
	streamCmd.Flags().Uint64Var(&seed, "seed", 0, "override release seed")
	streamCmd.Flags().IntVar(&workers, "workers", 0, "override worker count")
	streamCmd.Flags().StringVar(&strategy, "strategy", "", "override strategy (auto|scan|batched)")
	streamCmd.Flags().IntVar(&plotWidth, "width", 80, "plot width")
	streamCmd.Flags().IntVar(&plotHeight, "height", 12, "plot height")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&plotWidth, "width", 80, "plot width")
	plotCmd.Flags().IntVar(&plotHeight, "height", 12, "plot height")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list preset configurations",
		RunE:  listPresets,
	}

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write a starter config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return config.Save(args[0], config.DefaultConfig())
		},
	}

	rootCmd.AddCommand(orbitCmd, streamCmd, listCmd, plotCmd, presetsCmd, initCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset %q (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	if cmd.Flags().Changed("seed") {
		cfg.Stream.Seed = seed
	}
	if cmd.Flags().Changed("workers") {
		cfg.Stream.Workers = workers
	}
	if cmd.Flags().Changed("strategy") {
		cfg.Stream.Strategy = strategy
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runOrbit(cmd *cobra.Command, args []string) error {
	log := newLogger()
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	pot, err := cfg.BuildPotential()
	if err != nil {
		return err
	}
	integ := cfg.BuildIntegrator()
	ts := cfg.TimeGrid()
	w0 := cfg.ProgenitorState()

	log.Info().
		Int("samples", len(ts)).
		Float64("t0_myr", ts[0]).
		Float64("t1_myr", ts[len(ts)-1]).
		Msg("integrating orbit")
	start := time.Now()

	orbit, err := integ.Integrate(context.Background(), pot, w0, ts)
	if err != nil {
		return err
	}
	log.Info().Dur("elapsed", time.Since(start)).Msg("done")

	fmt.Println(asciigraph.Plot(orbit.Radii(),
		asciigraph.Height(plotHeight),
		asciigraph.Width(plotWidth),
		asciigraph.Caption("galactocentric radius [kpc] vs time"),
	))
	fmt.Println()

	energies := make([]float64, orbit.Len())
	for i := range energies {
		energies[i] = orbit.Energy(i)
	}
	fmt.Println(asciigraph.Plot(energies,
		asciigraph.Height(plotHeight),
		asciigraph.Width(plotWidth),
		asciigraph.Caption("specific energy [kpc^2/Myr^2] vs time"),
	))

	if csvOut != "" {
		if err := writeOrbitCSV(csvOut, orbit); err != nil {
			return err
		}
		log.Info().Str("path", csvOut).Msg("orbit exported")
	}
	if svgOut != "" {
		if err := export.WriteFile(svgOut, export.OrbitSVG(orbit, 800, 600, "#00ff88")); err != nil {
			return err
		}
		log.Info().Str("path", svgOut).Msg("orbit rendered")
	}
	return nil
}

func runStream(cmd *cobra.Command, args []string) error {
	log := newLogger()
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	gen, err := cfg.BuildGenerator()
	if err != nil {
		return err
	}
	gen.Logger = log

	ts := cfg.TimeGrid()
	w0 := cfg.ProgenitorState()

	log.Info().
		Int("stripping_times", len(ts)).
		Float64("prog_mass_msun", cfg.Progenitor.Mass).
		Uint64("seed", cfg.Stream.Seed).
		Msg("generating stream")
	start := time.Now()

	stream, orbit, err := gen.Run(context.Background(), ts, w0, cfg.Progenitor.Mass, cfg.Stream.Seed)
	if err != nil {
		return err
	}
	log.Info().
		Dur("elapsed", time.Since(start)).
		Int("particles", stream.Len()).
		Msg("done")

	fmt.Println(asciigraph.Plot(orbit.Radii(),
		asciigraph.Height(plotHeight),
		asciigraph.Width(plotWidth),
		asciigraph.Caption("progenitor radius [kpc] vs time"),
	))
	fmt.Println()
	fmt.Println(asciigraph.Plot(streamRadii(stream),
		asciigraph.Height(plotHeight),
		asciigraph.Width(plotWidth),
		asciigraph.Caption("particle radius [kpc] vs release order"),
	))

	if csvOut != "" {
		if err := writeStreamCSV(csvOut, stream); err != nil {
			return err
		}
		log.Info().Str("path", csvOut).Msg("stream exported")
	}
	if svgOut != "" {
		if err := export.WriteFile(svgOut, export.StreamSVG(stream, orbit, 800, 600)); err != nil {
			return err
		}
		log.Info().Str("path", svgOut).Msg("stream rendered")
	}
	if saveRun {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(storage.RunMetadata{
			Preset:   preset,
			Seed:     cfg.Stream.Seed,
			Strategy: cfg.Stream.Strategy,
			ProgMass: cfg.Progenitor.Mass,
		}, stream, orbit)
		if err != nil {
			return err
		}
		log.Info().Str("run_id", runID).Msg("run saved")
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tPRESET\tSEED\tPARTICLES\tSPAN [Myr]")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%.0f\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Preset,
			run.Seed,
			run.Particles,
			run.SpanMyr,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	orbit, err := st.LoadOrbit(args[0])
	if err != nil {
		return err
	}
	stream, err := st.LoadParticles(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("particles: %d\n\n", stream.Len())

	fmt.Println(asciigraph.Plot(orbit.Radii(),
		asciigraph.Height(plotHeight),
		asciigraph.Width(plotWidth),
		asciigraph.Caption("progenitor radius [kpc] vs time"),
	))
	fmt.Println()
	fmt.Println(asciigraph.Plot(streamRadii(stream),
		asciigraph.Height(plotHeight),
		asciigraph.Width(plotWidth),
		asciigraph.Caption("particle radius [kpc] vs release order"),
	))
	return nil
}

func streamRadii(s *phasespace.MockStream) []float64 {
	out := make([]float64, s.Len())
	for i := range out {
		out[i] = s.Q[i].Norm()
	}
	return out
}

func writeOrbitCSV(path string, orbit *phasespace.Orbit) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"t", "x", "y", "z", "vx", "vy", "vz"}); err != nil {
		return err
	}
	for i := 0; i < orbit.Len(); i++ {
		q, p := orbit.W[i].Q(), orbit.W[i].P()
		rec := []string{
			formatF(orbit.T[i]),
			formatF(q.X), formatF(q.Y), formatF(q.Z),
			formatF(p.X), formatF(p.Y), formatF(p.Z),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

func writeStreamCSV(path string, s *phasespace.MockStream) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"release_t", "x", "y", "z", "vx", "vy", "vz"}); err != nil {
		return err
	}
	for i := 0; i < s.Len(); i++ {
		rec := []string{
			formatF(s.ReleaseTime[i]),
			formatF(s.Q[i].X), formatF(s.Q[i].Y), formatF(s.Q[i].Z),
			formatF(s.P[i].X), formatF(s.P[i].Y), formatF(s.P[i].Z),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

func formatF(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tCOMPONENTS\tSPAN [Myr]\tPROG MASS [Msun]")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%d\t%.0f\t%.1e\n",
			name,
			len(cfg.Potential),
			cfg.Grid.End-cfg.Grid.Start,
			cfg.Progenitor.Mass,
		)
	}
	return w.Flush()
}
