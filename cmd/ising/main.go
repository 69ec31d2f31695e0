package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/ising/internal/analysis"
	"github.com/san-kum/ising/internal/automation"
	"github.com/san-kum/ising/internal/config"
	"github.com/san-kum/ising/internal/export"
	"github.com/san-kum/ising/internal/lattice"
	"github.com/san-kum/ising/internal/metrics"
	"github.com/san-kum/ising/internal/sim"
	"github.com/san-kum/ising/internal/viz"
	"github.com/spf13/cobra"
)

var (
	sideLength  int
	coupling    float64
	field       float64
	beta        float64
	seed        int64
	sweeps      int
	thermalize  int
	sampleEvery int
	// Config file
	configFile string
	// Preset name
	preset string
	// Frame rate for live view
	frameRate int
	// Output formats
	jsonOut bool
	csvOut  bool
	verbose bool
	// Beta scan
	betaMin float64
	betaMax float64
	points  int
	workers int
	// SVG output path
	svgOut string
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "ising",
		Short:        "2d ising model monte carlo lab",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunPicker(frameRate)
		},
	}
	rootCmd.Flags().IntVar(&frameRate, "fps", 60, "frame rate")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "sweep a lattice with live visualization",
		RunE:  runLive,
	}
	latticeFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", 60, "frame rate")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a headless simulation and report observables",
		RunE:  runSimulation,
	}
	latticeFlags(runCmd)
	runFlags(runCmd)
	runCmd.Flags().BoolVar(&jsonOut, "json", false, "print the report as JSON")
	runCmd.Flags().BoolVar(&csvOut, "csv", false, "print the sampled series as CSV")
	runCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print progress")
	runCmd.Flags().StringVar(&svgOut, "svg", "", "write the final spin configuration as SVG")

	scanCmd := &cobra.Command{
		Use:   "scan",
		Short: "measure observables across a range of beta",
		RunE:  runScan,
	}
	latticeFlags(scanCmd)
	runFlags(scanCmd)
	scanCmd.Flags().Float64Var(&betaMin, "beta-min", 0.2, "lowest beta")
	scanCmd.Flags().Float64Var(&betaMax, "beta-max", 0.7, "highest beta")
	scanCmd.Flags().IntVar(&points, "points", 11, "number of beta values")
	scanCmd.Flags().IntVar(&workers, "workers", 0, "parallel lattices (0 = GOMAXPROCS)")
	scanCmd.Flags().BoolVar(&jsonOut, "json", false, "print points as JSON")
	scanCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print progress")
	scanCmd.Flags().StringVar(&svgOut, "svg", "", "write |m| against beta as SVG")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "replay a scripted scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	scenarioCmd.Flags().BoolVar(&jsonOut, "json", false, "print step results as JSON")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark sweep throughput across lattice sizes",
		RunE:  benchSweeps,
	}
	benchCmd.Flags().IntVar(&sweeps, "sweeps", 100, "sweeps per size")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tL\tJ\tBETA\tH\tSWEEPS\tTHERMALIZE")
			for _, name := range config.ListPresets() {
				p := config.Presets[name]
				fmt.Fprintf(w, "%s\t%d\t%.2f\t%.4f\t%.2f\t%d\t%d\n",
					name, p.SideLength, p.Coupling, p.Beta, p.Field, p.Sweeps, p.Thermalize)
			}
			return w.Flush()
		},
	}

	rootCmd.AddCommand(liveCmd, runCmd, scanCmd, scenarioCmd, benchCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func latticeFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&sideLength, "size", config.DefaultSideLength, "lattice side length")
	cmd.Flags().Float64Var(&coupling, "coupling", config.DefaultCoupling, "coupling J")
	cmd.Flags().Float64Var(&field, "field", config.DefaultField, "external field h")
	cmd.Flags().Float64Var(&beta, "beta", config.DefaultBeta, "inverse temperature")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 = clock)")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
}

func runFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&sweeps, "sweeps", config.DefaultSweeps, "measurement sweeps")
	cmd.Flags().IntVar(&thermalize, "thermalize", config.DefaultThermalize, "sweeps discarded before measuring")
	cmd.Flags().IntVar(&sampleEvery, "every", config.DefaultSampleEvery, "sample interval in sweeps")
}

// resolveConfig layers preset, then config file, then explicitly set flags.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("size") {
		cfg.SideLength = sideLength
	}
	if flags.Changed("coupling") {
		cfg.Coupling = coupling
	}
	if flags.Changed("field") {
		cfg.Field = field
	}
	if flags.Changed("beta") {
		cfg.Beta = beta
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("sweeps") {
		cfg.Sweeps = sweeps
	}
	if flags.Changed("thermalize") {
		cfg.Thermalize = thermalize
	}
	if flags.Changed("every") {
		cfg.SampleEvery = sampleEvery
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	l, err := cfg.NewLattice()
	if err != nil {
		return err
	}
	return viz.Run(l, frameRate)
}

type progress struct {
	out   io.Writer
	every int
	total int
}

func (p progress) OnSweep(sweep int, l *lattice.Lattice) {
	if (sweep+1)%p.every == 0 {
		fmt.Fprintf(p.out, "sweep %d/%d: E=%.4f m=%.4f\n", sweep+1, p.total, l.EnergyPerSite(), l.MagnetizationPerSite())
	}
}

type runReport struct {
	Config   *config.Config     `json:"config"`
	Sweeps   int                `json:"sweeps_taken"`
	Elapsed  string             `json:"elapsed"`
	Metrics  map[string]float64 `json:"metrics"`
	TauInt   float64            `json:"tau_int_abs_m"`
	StdErr   float64            `json:"stderr_abs_m"`
	Blocked  float64            `json:"block_stderr_abs_m"`
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	l, err := cfg.NewLattice()
	if err != nil {
		return err
	}

	s := sim.New(l)
	for _, m := range metrics.Defaults() {
		s.AddMetric(m)
	}
	if verbose {
		s.AddObserver(progress{out: cmd.ErrOrStderr(), every: max(cfg.Sweeps/10, 1), total: cfg.Sweeps})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if !jsonOut && !csvOut {
		fmt.Fprintf(out, "running %dx%d lattice at beta=%.4f h=%.2f...\n", cfg.SideLength, cfg.SideLength, cfg.Beta, cfg.Field)
	}
	start := time.Now()

	result, err := s.Run(ctx, cfg.SimConfig())
	if err != nil && result == nil {
		return err
	}
	elapsed := time.Since(start)

	if svgOut != "" {
		svg := export.LatticeToSVG(l.Spins(), 4, string(viz.CurrentTheme.Up), string(viz.CurrentTheme.Down))
		if werr := os.WriteFile(svgOut, []byte(svg), 0644); werr != nil {
			return werr
		}
	}

	if csvOut {
		if csvErr := writeCSV(out, result); csvErr != nil {
			return csvErr
		}
		return err
	}

	absM := make([]float64, len(result.Magnetization))
	for i, v := range result.Magnetization {
		absM[i] = math.Abs(v)
	}
	_, blocked := analysis.BlockAverage(absM, 10)

	report := runReport{
		Config:  cfg,
		Sweeps:  result.StepsTaken,
		Elapsed: elapsed.String(),
		Metrics: result.Metrics,
		TauInt:  analysis.IntegratedTime(absM),
		StdErr:  analysis.StdErr(absM),
		Blocked: blocked,
	}

	if jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(report); encErr != nil {
			return encErr
		}
		return err
	}

	fmt.Fprintf(out, "completed in %v\n", elapsed)
	fmt.Fprintf(out, "sweeps: %d\n", result.StepsTaken)
	fmt.Fprintln(out, "\nmetrics:")
	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "  %s: %.6f\n", name, result.Metrics[name])
	}
	fmt.Fprintf(out, "\n|m| tau_int: %.2f sweeps\n", report.TauInt)
	fmt.Fprintf(out, "|m| stderr:  %.6f (blocking %.6f)\n\n", report.StdErr, report.Blocked)

	if len(result.Energy) > 1 {
		fmt.Fprintln(out, asciigraph.Plot(result.Energy, asciigraph.Height(10), asciigraph.Width(80), asciigraph.Caption("energy per site")))
		fmt.Fprintln(out)
		fmt.Fprintln(out, asciigraph.Plot(result.Magnetization, asciigraph.Height(10), asciigraph.Width(80), asciigraph.Caption("magnetization per site")))
	}

	return err
}

func writeCSV(out io.Writer, result *sim.Result) error {
	w := csv.NewWriter(out)
	defer w.Flush()

	if err := w.Write([]string{"sweep", "energy", "magnetization", "acceptance"}); err != nil {
		return err
	}
	for i := range result.Sweeps {
		row := []string{
			strconv.Itoa(result.Sweeps[i]),
			strconv.FormatFloat(result.Energy[i], 'f', 6, 64),
			strconv.FormatFloat(result.Magnetization[i], 'f', 6, 64),
			strconv.FormatFloat(result.Acceptance[i], 'f', 6, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	scan := &automation.BetaScan{
		SideLength: cfg.SideLength,
		Coupling:   cfg.Coupling,
		Field:      cfg.Field,
		BetaMin:    betaMin,
		BetaMax:    betaMax,
		Points:     points,
		Sweeps:     cfg.Sweeps,
		Thermalize: cfg.Thermalize,
		Seed:       cfg.Seed,
		Workers:    workers,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var progressOut io.Writer = io.Discard
	if verbose {
		progressOut = cmd.ErrOrStderr()
	}
	pts, err := automation.RunScan(ctx, scan, progressOut)
	if err != nil {
		return err
	}

	if jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(pts)
	}

	if svgOut != "" {
		betas := make([]float64, len(pts))
		mags := make([]float64, len(pts))
		for i, p := range pts {
			betas[i], mags[i] = p.Beta, p.Magnetization
		}
		if err := os.WriteFile(svgOut, []byte(export.SeriesToSVG(betas, mags, 640, 360, "#00ff88")), 0644); err != nil {
			return err
		}
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BETA\tE/N\t|m|\tC\tCHI\tBINDER\tACCEPT")
	mags := make([]float64, len(pts))
	for i, p := range pts {
		fmt.Fprintf(w, "%.4f\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\n",
			p.Beta, p.Energy, p.Magnetization, p.SpecificHeat, p.Susceptibility, p.Binder, p.Acceptance)
		mags[i] = p.Magnetization
	}
	if err := w.Flush(); err != nil {
		return err
	}

	chi := automation.Peak(pts, func(p automation.ScanPoint) float64 { return p.Susceptibility })
	c := automation.Peak(pts, func(p automation.ScanPoint) float64 { return p.SpecificHeat })
	fmt.Fprintf(out, "\nsusceptibility peak: beta=%.4f (chi=%.4f)\n", chi.Beta, chi.Susceptibility)
	fmt.Fprintf(out, "specific heat peak:  beta=%.4f (C=%.4f)\n", c.Beta, c.SpecificHeat)

	if len(mags) > 1 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, asciigraph.Plot(mags, asciigraph.Height(10), asciigraph.Width(60),
			asciigraph.Caption(fmt.Sprintf("|m| for beta in [%.3f, %.3f]", betaMin, betaMax))))
	}
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return fmt.Errorf("failed to load scenario: %w", err)
	}
	out := cmd.OutOrStdout()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	progressOut := out
	if jsonOut {
		progressOut = io.Discard
	} else if sc.Name != "" {
		fmt.Fprintf(out, "scenario: %s\n", sc.Name)
		if sc.Description != "" {
			fmt.Fprintf(out, "  %s\n", sc.Description)
		}
	}

	results, err := automation.RunScenario(ctx, sc, progressOut)
	if err != nil {
		return err
	}

	if jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	fmt.Fprintln(out)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tBETA\tH\tSWEEPS\tE/N\tm\tACCEPT")
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%.4f\t%.2f\t%d\t%.4f\t%.4f\t%.4f\n",
			r.Step, r.Beta, r.Field, r.Sweeps, r.Energy, r.Magnetization, r.Acceptance)
	}
	return w.Flush()
}

func benchSweeps(cmd *cobra.Command, args []string) error {
	sizes := []int{16, 32, 64, 128, 256}
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "benchmarking %d sweeps per size\n\n", sweeps)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SIZE\tSWEEPS\tTIME\tSWEEPS/SEC\tFLIPS/SEC")

	for _, n := range sizes {
		l, err := lattice.New(1, n, 0,
			lattice.WithSource(rand.New(rand.NewSource(42))),
			lattice.WithInverseTemperature(config.CriticalBeta),
		)
		if err != nil {
			return err
		}

		start := time.Now()
		for i := 0; i < sweeps; i++ {
			l.Sweep()
		}
		elapsed := time.Since(start)

		perSec := float64(sweeps) / elapsed.Seconds()
		fmt.Fprintf(w, "%d\t%d\t%v\t%.0f\t%.0f\n",
			n, sweeps, elapsed, perSec, perSec*float64(l.Sites()))
	}

	return w.Flush()
}
