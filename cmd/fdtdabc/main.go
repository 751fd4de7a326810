package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/fdtdabc/internal/analysis"
	"github.com/san-kum/fdtdabc/internal/automation"
	"github.com/san-kum/fdtdabc/internal/config"
	"github.com/san-kum/fdtdabc/internal/dynamo"
	"github.com/san-kum/fdtdabc/internal/experiment"
	"github.com/san-kum/fdtdabc/internal/export"
	"github.com/san-kum/fdtdabc/internal/optim"
	"github.com/san-kum/fdtdabc/internal/storage"
	"github.com/san-kum/fdtdabc/internal/tui"
	"github.com/san-kum/fdtdabc/internal/viz"
)

var (
	dataDir  string
	logLevel string

	configFile string
	preset     string
	steps      int
	threads    int
	precision  string
	startStep  uint
	cflFactor  float64

	noSave     bool
	jsonOut    string
	plotEnergy bool
	benchMax   int

	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepN     int

	optimCFL []float64
	optimVel []float64

	exportOut  string
	sliceOut   string
	sliceAxis  int
	sliceIndex int
	sliceCell  int
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "fdtdabc",
		Short:        "absorbing boundary sheets for a rectilinear FDTD solver",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := logrus.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			logrus.SetLevel(level)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".fdtdabc", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a scene and store the result",
		RunE:  runScene,
	}
	addSceneFlags(runCmd)
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	runCmd.Flags().StringVar(&jsonOut, "json", "", "also export the result as json to this path (- for stdout)")

	statCmd := &cobra.Command{
		Use:   "stat",
		Short: "build the absorbing sheets of a scene and print their statistics",
		RunE:  statScene,
	}
	addSceneFlags(statCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the probe trace of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().BoolVar(&plotEnergy, "energy", false, "plot the field energy instead")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of the probe trace",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run a scene with a live field view",
		RunE:  runLive,
	}
	addSceneFlags(liveCmd)

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "time a scene over increasing thread counts",
		RunE:  benchScene,
	}
	addSceneFlags(benchCmd)
	benchCmd.Flags().IntVar(&benchMax, "max-threads", 4, "largest thread count")

	presetsCmd := &cobra.Command{
		Use:   "presets [name]",
		Short: "list presets or print one as yaml",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showPresets,
	}

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run every step of a scenario file and store the results",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	scenarioCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the runs")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "run a scene over a range of one parameter",
		RunE:  runSweep,
	}
	addSceneFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "phase_velocity", "parameter to sweep")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0.5*dynamo.C0, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", dynamo.C0, "last value")
	sweepCmd.Flags().IntVar(&sweepN, "n", 5, "number of values")

	optimizeCmd := &cobra.Command{
		Use:   "optimize",
		Short: "grid search over cfl factor and phase velocity for the lowest residual energy",
		RunE:  runOptimize,
	}
	addSceneFlags(optimizeCmd)
	optimizeCmd.Flags().Float64SliceVar(&optimCFL, "cfl-values", []float64{0.5, 0.75, 0.95}, "cfl factors to try")
	optimizeCmd.Flags().Float64SliceVar(&optimVel, "velocities", []float64{0.8 * dynamo.C0, 0.9 * dynamo.C0, dynamo.C0}, "phase velocities to try")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "write the probe trace of a run as svg",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default <run_id>.svg)")

	sliceCmd := &cobra.Command{
		Use:   "slice",
		Short: "run a scene and write a field plane as svg",
		RunE:  sliceScene,
	}
	addSceneFlags(sliceCmd)
	sliceCmd.Flags().StringVarP(&sliceOut, "out", "o", "slice.svg", "output file")
	sliceCmd.Flags().IntVar(&sliceAxis, "axis", 1, "plane normal (0=x, 1=y, 2=z)")
	sliceCmd.Flags().IntVar(&sliceIndex, "index", -1, "line index along the normal (default centre)")
	sliceCmd.Flags().IntVar(&sliceCell, "cell", 8, "pixels per cell")

	rootCmd.AddCommand(runCmd, statCmd, listCmd, plotCmd, analyzeCmd, liveCmd, benchCmd, presetsCmd,
		scenarioCmd, sweepCmd, optimizeCmd, exportCmd, sliceCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addSceneFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "scene file (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use a named preset scene")
	cmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "number of timesteps")
	cmd.Flags().IntVar(&threads, "threads", config.DefaultThreads, "worker threads")
	cmd.Flags().StringVar(&precision, "precision", config.DefaultPrecision, "field precision (float32, float64)")
	cmd.Flags().UintVar(&startStep, "start", 0, "timestep at which the absorbing update starts")
	cmd.Flags().Float64Var(&cflFactor, "cfl", config.DefaultCFL, "fraction of the Courant limit")
}

// loadScene reads the scene from --config or --preset and applies the
// flags the user set explicitly.
func loadScene(cmd *cobra.Command) (*config.Scene, error) {
	var (
		scene *config.Scene
		err   error
	)
	switch {
	case configFile != "":
		scene, err = config.Load(configFile)
	case preset != "":
		scene, err = config.GetPreset(preset)
	default:
		scene = config.DefaultScene()
	}
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("steps") {
		scene.Steps = steps
	}
	if flags.Changed("threads") {
		scene.Threads = threads
	}
	if flags.Changed("precision") {
		scene.Precision = precision
	}
	if flags.Changed("start") {
		scene.StartTimestep = startStep
	}
	if flags.Changed("cfl") {
		scene.CFLFactor = cflFactor
	}

	return scene, scene.Validate()
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runScene(cmd *cobra.Command, args []string) error {
	scene, err := loadScene(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	res, err := experiment.New(scene, logrus.StandardLogger()).Run(ctx)
	if err != nil {
		return err
	}

	fmt.Println(viz.RenderReport(res))
	fmt.Println()
	fmt.Println(viz.PlotTrace(res.ProbeValues, fmt.Sprintf("probe V%s at %v", dynamo.AxisName(scene.Probe.Component), scene.Probe.Position), 0, 0))

	if jsonOut != "" {
		if jsonOut == "-" {
			if err := storage.WriteJSON(os.Stdout, res); err != nil {
				return err
			}
		} else if err := storage.ExportJSON(jsonOut, res); err != nil {
			return err
		}
	}

	if noSave {
		return nil
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(res, scene)
	if err != nil {
		return err
	}
	fmt.Printf("\nsaved: %s\n", runID)
	return nil
}

func statScene(cmd *cobra.Command, args []string) error {
	scene, err := loadScene(cmd)
	if err != nil {
		return err
	}

	e := experiment.New(scene, logrus.StandardLogger())
	s, err := e.Setup()
	if err != nil {
		return err
	}
	defer e.Close()

	res := s.Result()
	fmt.Print(viz.RenderStat(res.Stat))
	for _, d := range res.Diagnostics {
		style := viz.Subtle
		if d.Skipped() {
			style = viz.Warning
		}
		fmt.Println("  " + style.Render(d.String()))
	}
	return nil
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
	fmt.Fprintln(w, "ID\tSCENE\tTIME\tPREC\tSTEPS\tSHEETS\tCELLS\tRESIDUAL")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%.3e\n",
			run.ID,
			run.Scene,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Precision,
			run.Steps,
			run.Sheets,
			run.Cells,
			run.Metrics["residual"],
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s  scene: %s  steps: %d\n\n", meta.ID, meta.Scene, meta.Steps)

	if plotEnergy {
		_, energy, err := st.LoadEnergy(runID)
		if err != nil {
			return err
		}
		fmt.Println(viz.PlotTrace(energy, "field energy (J)", 0, 0))
		return nil
	}

	_, values, err := st.LoadProbe(runID)
	if err != nil {
		return err
	}
	fmt.Println(viz.PlotTrace(values, "probe voltage (V)", 0, 0))
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	_, values, err := st.LoadProbe(runID)
	if err != nil {
		return err
	}
	if len(values) == 0 {
		return fmt.Errorf("no data")
	}

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("scene: %s\n\n", meta.Scene)

	freqs, amps := analysis.Spectrum(values, meta.Dt)
	shown := max(len(amps)/8, 2)
	fmt.Println(viz.PlotTrace(amps[:shown], fmt.Sprintf("amplitude spectrum 0..%.3g GHz", freqs[shown-1]/1e9), 0, 15))
	fmt.Println()

	f, _ := analysis.DominantFrequency(freqs, amps)
	fmt.Printf("dominant frequency: %.3f GHz\n", f/1e9)
	if scene, err := st.LoadScene(runID); err == nil && scene.Excitation.Frequency > 0 {
		fmt.Printf("drive frequency:    %.3f GHz\n", scene.Excitation.Frequency/1e9)
	}
	fmt.Printf("late/peak ratio:    %.3e\n", analysis.TailRatio(values, 0.25))

	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	scene, err := loadScene(cmd)
	if err != nil {
		return err
	}

	log := logrus.New()
	log.SetOutput(io.Discard)

	e := experiment.New(scene, log)
	s, err := e.Setup()
	if err != nil {
		return err
	}
	defer e.Close()

	return tui.Run(s)
}

func benchScene(cmd *cobra.Command, args []string) error {
	scene, err := loadScene(cmd)
	if err != nil {
		return err
	}

	log := logrus.New()
	log.SetLevel(logrus.WarnLevel)

	fmt.Printf("benchmarking %s (%d steps, %s)\n\n", scene.Name, scene.Steps, scene.Precision)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "THREADS\tSTEPS\tTIME\tSTEPS/SEC\tRESIDUAL")

	for n := 1; n <= max(benchMax, 1); n *= 2 {
		scene.Threads = n
		start := time.Now()
		res, err := experiment.New(scene, log).Run(context.Background())
		if err != nil {
			return err
		}
		elapsed := time.Since(start)

		fmt.Fprintf(w, "%d\t%d\t%v\t%.0f\t%.3e\n",
			n, res.Steps, elapsed.Round(time.Millisecond), float64(res.Steps)/elapsed.Seconds(), res.Residual())
	}

	return w.Flush()
}

func showPresets(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		scene, err := config.GetPreset(args[0])
		if err != nil {
			return err
		}
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(scene)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSTEPS\tSTART\tBOUNDARIES")
	for _, name := range config.ListPresets() {
		scene, err := config.GetPreset(name)
		if err != nil {
			return err
		}
		bounds := "none"
		if len(scene.Boundaries) > 0 {
			bounds = fmt.Sprintf("%d x %s", len(scene.Boundaries), scene.Boundaries[0].Type)
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", name, scene.Steps, scene.StartTimestep, bounds)
	}
	return w.Flush()
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	var st *storage.Store
	if !noSave {
		st = storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("scenario: %s\n", sc.Name)
	if sc.Description != "" {
		fmt.Println(viz.Subtle.Render(sc.Description))
	}
	fmt.Println()

	results, err := automation.RunScenario(ctx, sc, st, logrus.StandardLogger())

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tSCENE\tPREC\tSHEETS\tSKIPPED\tPEAK\tRESIDUAL")
	for i, res := range results {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%.3e\t%.3e\n",
			i+1, res.Scene, res.Precision, res.Sheets, res.Skipped(), res.PeakEnergy, res.Residual())
	}
	if ferr := w.Flush(); ferr != nil && err == nil {
		err = ferr
	}
	return err
}

func runSweep(cmd *cobra.Command, args []string) error {
	scene, err := loadScene(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	log := logrus.New()
	log.SetLevel(logrus.WarnLevel)

	results, err := automation.RunSweep(ctx, &automation.ParameterSweep{
		Base:      scene,
		ParamName: sweepParam,
		ParamMin:  sweepMin,
		ParamMax:  sweepMax,
		NumSteps:  sweepN,
	}, log)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tPEAK\tFINAL\tRESIDUAL\tSTABILITY\n", strings.ToUpper(sweepParam))
	residuals := make([]float64, 0, len(results))
	for _, r := range results {
		fmt.Fprintf(w, "%.4g\t%.3e\t%.3e\t%.3e\t%.2f\n", r.ParamValue, r.PeakEnergy, r.FinalEnergy, r.Residual, r.Stability)
		residuals = append(residuals, r.Residual)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if best, ok := automation.Best(results); ok {
		fmt.Println()
		fmt.Println(viz.PlotTrace(residuals, "residual energy ratio", 0, 0))
		fmt.Printf("\nbest %s: %.4g (residual %.3e)\n", sweepParam, best.ParamValue, best.Residual)
	}
	return nil
}

func runOptimize(cmd *cobra.Command, args []string) error {
	scene, err := loadScene(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	log := logrus.New()
	log.SetLevel(logrus.WarnLevel)

	gs := optim.NewGridSearch(
		[]string{"cfl_factor", "phase_velocity"},
		[][]float64{optimCFL, optimVel},
	)
	gs.Log = log

	fmt.Printf("grid search over %d points on %s\n", len(optimCFL)*len(optimVel), scene.Name)
	best, score, err := gs.Search(ctx, scene, optim.Residual)
	if err != nil {
		return err
	}
	if best == nil {
		return fmt.Errorf("no grid point completed")
	}

	fmt.Printf("best cfl factor:     %.3f\n", best["cfl_factor"])
	fmt.Printf("best phase velocity: %.4g m/s (%.3f c0)\n", best["phase_velocity"], best["phase_velocity"]/dynamo.C0)
	fmt.Printf("residual:            %.3e\n", score)
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	times, values, err := st.LoadProbe(runID)
	if err != nil {
		return err
	}

	svg, err := export.TraceToSVG(times, values, 800, 300, string(viz.CurrentTheme.Accent))
	if err != nil {
		return err
	}

	path := exportOut
	if path == "" {
		path = runID + ".svg"
	}
	if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("exported: %s\n", path)
	return nil
}

func sliceScene(cmd *cobra.Command, args []string) error {
	scene, err := loadScene(cmd)
	if err != nil {
		return err
	}
	if sliceAxis < 0 || sliceAxis > 2 {
		return fmt.Errorf("axis must be 0, 1 or 2, got %d", sliceAxis)
	}

	msh, err := scene.BuildMesh()
	if err != nil {
		return err
	}
	n := msh.Size()[sliceAxis]
	index := sliceIndex
	if index < 0 {
		index = n / 2
	}
	if index >= n {
		return fmt.Errorf("index %d outside [0,%d) along %s", index, n, dynamo.AxisName(sliceAxis))
	}

	e := experiment.New(scene, logrus.StandardLogger())
	s, err := e.Setup()
	if err != nil {
		return err
	}
	defer e.Close()

	if err := s.Step(scene.Steps); err != nil {
		return err
	}

	plane := s.Slice(scene.Excitation.Component, sliceAxis, index)
	theme := viz.CurrentTheme
	svg := export.SliceToSVG(plane, max(sliceCell, 1), string(theme.Positive), string(theme.Negative))
	if err := os.WriteFile(sliceOut, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("%s=%d after %d steps: %s\n", dynamo.AxisName(sliceAxis), index, s.Timesteps(), sliceOut)
	return nil
}
