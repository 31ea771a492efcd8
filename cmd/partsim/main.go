package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/san-kum/partsim/internal/automation"
	"github.com/san-kum/partsim/internal/config"
	"github.com/san-kum/partsim/internal/export"
	"github.com/san-kum/partsim/internal/metrics"
	"github.com/san-kum/partsim/internal/particle"
	"github.com/san-kum/partsim/internal/sim"
	"github.com/san-kum/partsim/internal/storage"
	"github.com/san-kum/partsim/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	verbose    bool
	configFile string
	seed       uint64
	frames     int
	dt         float32
	clockDt    bool
	maxAlive   int
	budget     int
	outPath    string
	numRuns    int
	// sweep
	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepSteps int
)

var logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	rootCmd := &cobra.Command{
		Use:   "partsim",
		Short: "particle emitter simulation lab",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
			}
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".partsim", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "run an emitter headless and store the result",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runEmitter,
	}
	addEmitterFlags(runCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot alive count of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	liveCmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "watch an emitter in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addEmitterFlags(liveCmd)
	liveCmd.Flags().BoolVar(&clockDt, "clock", false, "derive dt from the wall clock")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE:  listPresets,
	}

	dumpCmd := &cobra.Command{
		Use:   "dump [preset]",
		Short: "print every slot after running",
		Args:  cobra.MaximumNArgs(1),
		RunE:  dumpPool,
	}
	addEmitterFlags(dumpCmd)

	snapshotCmd := &cobra.Command{
		Use:   "snapshot [preset]",
		Short: "write the render buffer after running (.json or .svg)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  snapshot,
	}
	addEmitterFlags(snapshotCmd)
	snapshotCmd.Flags().StringVarP(&outPath, "out", "o", "snapshot.json", "output file")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a yaml scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [preset]",
		Short: "sweep one emitter parameter",
		Args:  cobra.ExactArgs(1),
		RunE:  runSweep,
	}
	addEmitterFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "spawn_budget", "emitter parameter")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 20, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 5, "number of values")

	ensembleCmd := &cobra.Command{
		Use:   "ensemble [preset]",
		Short: "run independently seeded copies in parallel",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runEnsemble,
	}
	addEmitterFlags(ensembleCmd)
	ensembleCmd.Flags().IntVar(&numRuns, "runs", 8, "number of runs")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, liveCmd, presetsCmd, dumpCmd, snapshotCmd, scenarioCmd, sweepCmd, ensembleCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addEmitterFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().Uint64Var(&seed, "seed", uint64(time.Now().UnixNano()), "random seed")
	cmd.Flags().IntVar(&frames, "frames", config.DefaultFrames, "number of updates")
	cmd.Flags().Float32Var(&dt, "dt", config.DefaultDt, "timestep in seconds")
	cmd.Flags().IntVar(&maxAlive, "max-alive", 0, "override alive ceiling")
	cmd.Flags().IntVar(&budget, "budget", 0, "override spawn budget")
}

// resolveConfig layers preset, config file and changed flags, in that order.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	name := config.DefaultPreset
	if len(args) > 0 {
		name = args[0]
	}
	cfg := config.GetPreset(name)
	if cfg == nil {
		return nil, fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets())
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		if len(args) == 0 && cfg.Preset == "" {
			cfg.Preset = filepath.Base(configFile)
		}
	}

	if configFile == "" || cmd.Flags().Changed("seed") || cfg.Seed == 0 {
		cfg.Seed = seed
	}
	if configFile == "" || cmd.Flags().Changed("frames") {
		cfg.Frames = frames
	}
	if configFile == "" || cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("max-alive") {
		cfg.Emitter.MaxAlive = maxAlive
	}
	if cmd.Flags().Changed("budget") {
		cfg.Emitter.SpawnBudget = budget
	}
	return cfg, nil
}

func newPool(cfg *config.Config) (*particle.Pool, error) {
	return particle.New(cfg.Particle(), particle.NewRand(cfg.Seed), nil, particle.WithLogger(logger))
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runEmitter(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	pool, err := newPool(cfg)
	if err != nil {
		return err
	}
	r := sim.New(pool)
	for _, m := range metrics.All() {
		r.AddMetric(m)
	}

	ctx, cancel := signalContext()
	defer cancel()

	logger.Info("running emitter", slog.String("preset", cfg.Preset), slog.Int("frames", cfg.Frames), slog.Uint64("seed", cfg.Seed))
	start := time.Now()
	result, err := r.Run(ctx, sim.Config{Frames: cfg.Frames, Dt: cfg.Dt, Seed: cfg.Seed})
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(storage.RunMetadata{
		Preset:  cfg.Preset,
		Seed:    cfg.Seed,
		Dt:      cfg.Dt,
		Frames:  cfg.Frames,
		Emitter: cfg.Emitter,
	}, result)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", runID)
	fmt.Printf("frames: %d (%.2fs simulated, %v wall)\n", result.FramesRun, result.SimTime, elapsed.Round(time.Millisecond))
	fmt.Printf("final alive: %d / %d\n", result.FinalAlive, cfg.Emitter.MaxAlive)
	printMetrics(result.Metrics)
	return nil
}

func printMetrics(m map[string]float64) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, name := range []string{"peak_alive", "mean_alive", "mean_height", "turnover", "saturation"} {
		if v, ok := m[name]; ok {
			fmt.Fprintf(w, "  %s\t%.4f\n", name, v)
		}
	}
	w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, viz.TableHeader.Render("ID")+"\t"+viz.TableHeader.Render("PRESET")+"\t"+
		viz.TableHeader.Render("FRAMES")+"\t"+viz.TableHeader.Render("PEAK")+"\t"+viz.TableHeader.Render("TIMESTAMP"))
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%.0f\t%s\n",
			viz.TableCell.Render(run.ID), run.Preset, run.Frames, run.Metrics["peak_alive"],
			viz.Subtle.Render(run.Timestamp.Format("2006-01-02 15:04:05")))
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)

	meta, err := st.Load(runID)
	if err != nil {
		return fmt.Errorf("run %s: %w", runID, err)
	}
	records, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("run %s has no frames", runID)
	}

	alive := make([]int, len(records))
	for i, r := range records {
		alive[i] = r.Alive
	}

	caption := fmt.Sprintf("%s alive (max %d)", meta.Preset, meta.Emitter.MaxAlive)
	fmt.Println(viz.PlotAlive(alive, 80, 12, caption))
	fmt.Println()
	printMetrics(meta.Metrics)
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	step := cfg.Dt
	if clockDt {
		step = 0
	}
	m, err := viz.NewModel(cfg.Preset, cfg.Particle(), cfg.Seed, step)
	if err != nil {
		return err
	}
	return viz.Run(m)
}

func listPresets(cmd *cobra.Command, args []string) error {
	fmt.Println("presets:")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, name := range config.ListPresets() {
		e := config.GetPreset(name).Emitter
		fmt.Fprintf(w, "  %s\tcapacity=%d\tmax_alive=%d\tbudget=%d\tlife=[%d,%d)\n",
			name, e.Capacity, e.MaxAlive, e.SpawnBudget, e.MinLife, e.MinLife+e.MaxLife)
	}
	return w.Flush()
}

func runFrames(cmd *cobra.Command, args []string) (*config.Config, *particle.Pool, error) {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return nil, nil, err
	}
	pool, err := newPool(cfg)
	if err != nil {
		return nil, nil, err
	}
	ctx, cancel := signalContext()
	defer cancel()
	if _, err := sim.New(pool).Run(ctx, sim.Config{Frames: cfg.Frames, Dt: cfg.Dt}); err != nil {
		return nil, nil, err
	}
	return cfg, pool, nil
}

func dumpPool(cmd *cobra.Command, args []string) error {
	_, pool, err := runFrames(cmd, args)
	if err != nil {
		return err
	}
	return pool.DebugDump(os.Stdout)
}

func snapshot(cmd *cobra.Command, args []string) error {
	cfg, pool, err := runFrames(cmd, args)
	if err != nil {
		return err
	}
	buf := pool.RenderBuffer()

	switch strings.ToLower(filepath.Ext(outPath)) {
	case ".svg":
		if err := os.WriteFile(outPath, []byte(export.BufferToSVG(buf, 800, 600, 3)), 0644); err != nil {
			return err
		}
	case ".json":
		if err := storage.SaveSnapshot(outPath, storage.Snapshot{Preset: cfg.Preset, Frame: int(pool.Frame()), Buffer: buf}); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported snapshot format: %s", outPath)
	}
	fmt.Printf("wrote %d particles to %s\n", pool.AliveCount(), outPath)
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	results, err := automation.RunScenario(ctx, sc, st, logger)
	if err != nil {
		return err
	}

	fmt.Printf("scenario %s: %d steps\n", sc.Name, len(results))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, r := range results {
		fmt.Fprintf(w, "  %d\t%s\tpeak=%.0f\tfinal=%d\t%s\n", r.Step, r.Preset, r.Result.Metrics["peak_alive"], r.Result.FinalAlive, r.RunID)
	}
	return w.Flush()
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	results, err := automation.RunSweep(ctx, &automation.ParameterSweep{
		Base:      cfg,
		Preset:    cfg.Preset,
		ParamName: sweepParam,
		ParamMin:  sweepMin,
		ParamMax:  sweepMax,
		NumSteps:  sweepSteps,
		Frames:    cfg.Frames,
		Dt:        cfg.Dt,
		Seed:      cfg.Seed,
	}, logger)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tpeak\tmean\tsaturation\n", sweepParam)
	for _, r := range results {
		fmt.Fprintf(w, "%.3f\t%.0f\t%.2f\t%.3f\n", r.ParamValue, r.Metrics["peak_alive"], r.Metrics["mean_alive"], r.Metrics["saturation"])
	}
	return w.Flush()
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	if numRuns < 1 {
		return fmt.Errorf("runs must be positive, got %d", numRuns)
	}
	e := sim.NewEnsemble(cfg.Particle(), numRuns, cfg.Seed, metrics.All)
	results, err := e.Run(ctx, sim.Config{Frames: cfg.Frames, Dt: cfg.Dt})
	if err != nil {
		return err
	}

	var peak, mean float64
	for _, r := range results {
		peak = max(peak, r.Metrics["peak_alive"])
		mean += r.Metrics["mean_alive"]
	}
	fmt.Printf("ensemble of %d runs (seeds %d..%d)\n", len(results), cfg.Seed, cfg.Seed+uint64(numRuns)-1)
	fmt.Printf("  peak alive: %.0f\n", peak)
	fmt.Printf("  mean alive: %.2f\n", mean/float64(len(results)))
	return nil
}
