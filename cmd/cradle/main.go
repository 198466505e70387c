package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/cradle/internal/analysis"
	"github.com/san-kum/cradle/internal/audio"
	"github.com/san-kum/cradle/internal/automation"
	"github.com/san-kum/cradle/internal/config"
	"github.com/san-kum/cradle/internal/experiment"
	"github.com/san-kum/cradle/internal/export"
	"github.com/san-kum/cradle/internal/gui"
	"github.com/san-kum/cradle/internal/metrics"
	"github.com/san-kum/cradle/internal/optim"
	"github.com/san-kum/cradle/internal/server"
	"github.com/san-kum/cradle/internal/session"
	"github.com/san-kum/cradle/internal/storage"
	"github.com/san-kum/cradle/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	configFile string
	preset     string
	frames     int
	angle      float64
	lift       int
	bobs       int
	gap        bool
	bob        int
	plotBob    int
	withAudio  bool
	guiPreset  string
	guiAudio   bool
	theme      string
	envFile    string
	// sweep
	param    string
	paramMin float64
	paramMax float64
	steps    int
	// optimize
	optParam string
	optMin   float64
	optMax   float64
	optSteps int
	metric   string
	maximize bool
	workers  int
	svgFile  string
	engine   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cradle",
		Short: "interactive newton's cradle",
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunInteractive()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".cradle", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [scenario]",
		Short: "run a scenario headless and store the result",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	runCmd.Flags().StringVar(&preset, "preset", "", "start from a preset instead of the scenario's")
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().IntVar(&frames, "frames", experiment.DefaultFrames, "frames to simulate")
	runCmd.Flags().Float64Var(&angle, "angle", experiment.DefaultAngle, "release angle in degrees")
	runCmd.Flags().IntVar(&lift, "lift", 0, "number of bobs to lift (0 keeps the scenario's)")
	runCmd.Flags().IntVar(&bobs, "bobs", config.DefaultBobs, "bob count")
	runCmd.Flags().BoolVar(&gap, "gap", true, "leave a contact gap between bobs")
	runCmd.Flags().StringVar(&svgFile, "svg", "", "write the final frame as svg")
	runCmd.Flags().StringVar(&engine, "engine", string(config.EngineNative), "physics engine: native or chipmunk")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the horizontal position of a bob",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&plotBob, "bob", -1, "bob index (-1 plots the first and last)")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "swing and frequency analysis",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().IntVar(&bob, "bob", 0, "bob index for the spectrum and phase portrait")
	analyzeCmd.Flags().StringVar(&svgFile, "svg", "", "write the phase portrait as svg")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "print run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id] [file]",
		Short: "export run data to JSON",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  exportJSON,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tBOBS\tGAP\tMASS")
			for _, name := range config.ListPresets() {
				c := config.GetPreset(name).Cradle
				fmt.Fprintf(w, "%s\t%d\t%v\t%s\n", name, c.BobCount, c.ContactGap, c.MassMode)
			}
			return w.Flush()
		},
	}

	scenariosCmd := &cobra.Command{
		Use:   "scenarios",
		Short: "list headless scenarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := experiment.NewRegistry()
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tPRESET\tLIFT\tDESCRIPTION")
			for _, name := range reg.List() {
				sc, _ := reg.Get(name)
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", sc.Name, sc.Preset, sc.Lift, sc.Description)
			}
			return w.Flush()
		},
	}

	scriptCmd := &cobra.Command{
		Use:   "script [file]",
		Short: "replay a scripted interaction",
		Args:  cobra.ExactArgs(1),
		RunE:  runScript,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [scenario]",
		Short: "sweep one parameter across runs",
		Args:  cobra.ExactArgs(1),
		RunE:  runSweep,
	}
	sweepCmd.Flags().StringVar(&param, "param", "angle", "parameter: angle, bobs or striker_mass")
	sweepCmd.Flags().Float64Var(&paramMin, "min", 30, "first value")
	sweepCmd.Flags().Float64Var(&paramMax, "max", 90, "last value")
	sweepCmd.Flags().IntVar(&steps, "steps", 5, "number of runs")
	sweepCmd.Flags().IntVar(&frames, "frames", experiment.DefaultFrames, "frames per run")

	optimizeCmd := &cobra.Command{
		Use:   "optimize [scenario]",
		Short: "grid search one parameter for the best metric",
		Args:  cobra.ExactArgs(1),
		RunE:  runOptimize,
	}
	optimizeCmd.Flags().StringVar(&optParam, "param", "striker_mass", "parameter: angle, lift, bobs or striker_mass")
	optimizeCmd.Flags().Float64Var(&optMin, "min", config.MinMassRatio, "first value")
	optimizeCmd.Flags().Float64Var(&optMax, "max", config.MaxMassRatio, "last value")
	optimizeCmd.Flags().IntVar(&optSteps, "steps", 6, "grid points")
	optimizeCmd.Flags().IntVar(&frames, "frames", experiment.DefaultFrames, "frames per run")
	optimizeCmd.Flags().StringVar(&metric, "metric", "energy_drift", "metric to score")
	optimizeCmd.Flags().BoolVar(&maximize, "max-metric", false, "maximize instead of minimize")
	optimizeCmd.Flags().IntVar(&workers, "workers", 0, "parallel runs (0 uses every cpu)")

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "terminal view",
		RunE:  runTUI,
	}
	tuiCmd.Flags().StringVar(&preset, "preset", "", "skip the menu and open a preset")
	tuiCmd.Flags().BoolVar(&withAudio, "audio", false, "play collision clicks")
	tuiCmd.Flags().StringVar(&theme, "theme", "sketch", "color theme")

	guiCmd := &cobra.Command{
		Use:   "gui",
		Short: "windowed view",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, name, err := openSession(guiPreset)
			if err != nil {
				return err
			}
			gui.Run(s, name, guiAudio)
			return nil
		},
	}
	guiCmd.Flags().StringVar(&guiPreset, "preset", "classic", "preset to open")
	guiCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	guiCmd.Flags().BoolVar(&guiAudio, "audio", true, "play collision clicks")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "serve cradle sessions over websocket",
		RunE:  serve,
	}
	serveCmd.Flags().StringVar(&envFile, "env", ".env", "env file")
	serveCmd.Flags().StringVar(&configFile, "config", "", "default settings for new sessions (yaml)")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, analyzeCmd, exportCmd, exportJSONCmd,
		presetsCmd, scenariosCmd, scriptCmd, sweepCmd, optimizeCmd, tuiCmd, guiCmd, serveCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openSession builds a session from --config or the named preset.
func openSession(preset string) (*session.Session, string, error) {
	name := preset
	var cfg *config.Config
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, "", err
		}
		cfg, name = loaded, configFile
	} else {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, "", fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	s, err := session.New(cfg)
	return s, name, err
}

func runScenario(cmd *cobra.Command, args []string) error {
	reg := experiment.NewRegistry()
	sc, err := reg.Get(args[0])
	if err != nil {
		return fmt.Errorf("%w (available: %v)", err, reg.List())
	}

	var settings *config.Config
	switch {
	case configFile != "":
		if settings, err = config.Load(configFile); err != nil {
			return err
		}
	case preset != "":
		if settings = config.GetPreset(preset); settings == nil {
			return fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	default:
		if settings, err = reg.Settings(sc); err != nil {
			return err
		}
	}

	if cmd.Flags().Changed("bobs") {
		settings.Cradle = config.SetBobCount{N: bobs}.Apply(settings.Cradle)
	}
	if cmd.Flags().Changed("gap") {
		settings.Cradle = config.SetGap{On: gap}.Apply(settings.Cradle)
	}
	if cmd.Flags().Changed("engine") {
		settings.Sim.Engine = config.Engine(engine)
		settings.Clamp()
	}

	exp, err := experiment.New(experiment.Config{
		Scenario: sc.Name,
		Settings: settings,
		Lift:     lift,
		Angle:    experiment.Degrees(angle),
		Frames:   frames,
	}, reg)
	if err != nil {
		return err
	}
	if err := exp.Setup(metrics.Defaults(settings.Sim.Gravity)); err != nil {
		return err
	}

	rec, err := exp.Run(context.Background())
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(sc.Name, *settings, rec)
	if err != nil {
		return err
	}

	if svgFile != "" {
		if err := export.WriteFile(svgFile, export.FrameToSVG(exp.Session().Frame())); err != nil {
			return err
		}
	}

	fmt.Printf("run: %s\n", runID)
	fmt.Printf("frames: %d  collisions: %d\n", rec.Frames(), len(rec.Contacts))
	for _, name := range sortedKeys(rec.Metrics) {
		fmt.Printf("  %-18s %.4f\n", name, rec.Metrics[name])
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
	fmt.Fprintln(w, "ID\tSCENARIO\tTIME\tBOBS\tGAP\tFRAMES\tHITS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%v\t%d\t%d\n",
			run.ID,
			run.Scenario,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Settings.Cradle.BobCount,
			run.Settings.Cradle.ContactGap,
			run.Frames,
			run.Collisions,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, rec, err := st.LoadRecording(args[0])
	if err != nil {
		return err
	}
	if rec.Frames() == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scenario: %s\n", meta.Scenario)
	fmt.Printf("samples: %d\n\n", rec.Frames())

	indices := []int{plotBob}
	if plotBob < 0 {
		indices = []int{0, meta.Settings.Cradle.BobCount - 1}
	}
	for _, i := range indices {
		xs := rec.Series(i)
		if len(xs) == 0 {
			return fmt.Errorf("bob %d not recorded", i)
		}
		graph := asciigraph.Plot(xs,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("bob %d x (px)", i)),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, rec, err := st.LoadRecording(args[0])
	if err != nil {
		return err
	}
	dt := meta.Settings.Sim.Dt

	xs := rec.Series(bob)
	if len(xs) == 0 {
		return fmt.Errorf("no data for bob %d", bob)
	}

	fmt.Printf("analysis: %s\n", meta.ID)
	fmt.Printf("scenario: %s\n\n", meta.Scenario)

	ps := analysis.PowerSpectrum(xs)
	if len(ps) > 8 {
		graph := asciigraph.Plot(ps[1:len(ps)/4+1],
			asciigraph.Height(15),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("power spectrum (bob %d)", bob)),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	if freq, err := analysis.DominantFrequency(xs, dt); err == nil {
		fmt.Printf("dominant frequency: %.3f hz\n", freq)
		if freq > 0 {
			fmt.Printf("period: %.3f s\n", 1.0/freq)
		}
	}
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BOB\tAMPLITUDE\tPERIOD")
	for _, s := range analysis.SwingSummary(rec, dt) {
		fmt.Fprintf(w, "%d\t%.1f px\t%.3f s\n", s.Bob, s.Amplitude, s.Period)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	portrait := analysis.GeneratePhasePortrait(rec, bob, dt)
	if art := analysis.PhasePortraitToASCII(portrait, 60, 16); art != "" {
		fmt.Printf("\nphase portrait (bob %d, x vs vx)\n%s", bob, art)
	}
	if svgFile != "" {
		if err := export.WriteFile(svgFile, export.PortraitToSVG(portrait, 600, 400, "#1cb0f6")); err != nil {
			return err
		}
		fmt.Printf("phase portrait written to %s\n", svgFile)
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, rec, err := st.LoadRecording(args[0])
	if err != nil {
		return err
	}
	if len(args) == 2 {
		if err := storage.ExportJSONFile(args[1], meta.Scenario, meta.Settings, rec); err != nil {
			return err
		}
		fmt.Printf("exported to %s\n", args[1])
		return nil
	}
	return storage.ExportJSON(os.Stdout, meta.Scenario, meta.Settings, rec)
}

func runScript(cmd *cobra.Command, args []string) error {
	script, err := automation.LoadScript(args[0])
	if err != nil {
		return err
	}

	gravity := config.DefaultGravity
	if p := config.GetPreset(script.Preset); p != nil {
		gravity = p.Sim.Gravity
	}
	rec, err := automation.RunScript(context.Background(), script, metrics.Defaults(gravity))
	if err != nil {
		return err
	}

	fmt.Printf("script: %s\n", script.Name)
	fmt.Printf("frames: %d  collisions: %d\n", rec.Frames(), len(rec.Contacts))
	for _, name := range sortedKeys(rec.Metrics) {
		fmt.Printf("  %-18s %.4f\n", name, rec.Metrics[name])
	}
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	results, err := automation.RunSweep(context.Background(), &automation.Sweep{
		Scenario:  args[0],
		ParamName: param,
		ParamMin:  paramMin,
		ParamMax:  paramMax,
		NumSteps:  steps,
		Frames:    frames,
	}, experiment.NewRegistry())
	if err != nil {
		return err
	}

	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tMAX E\tMIN E\tLAST SWING\n", param)
	for _, r := range results {
		fmt.Fprintf(w, "%.3f\t%.1f\t%.1f\t%.1f px\n", r.ParamValue, r.MaxEnergy, r.MinEnergy, r.LastSwing)
	}
	return w.Flush()
}

func runOptimize(cmd *cobra.Command, args []string) error {
	g := optim.NewGridSearch([]string{optParam}, [][]float64{optim.Linspace(optMin, optMax, optSteps)})
	g.Maximize = maximize
	g.Workers = workers

	best, all, err := g.Search(context.Background(), optim.ScenarioBuilder(experiment.NewRegistry(), args[0], frames), metric)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\n", optParam, metric)
	for _, p := range all {
		fmt.Fprintf(w, "%.3f\t%.4f\n", p.Params[optParam], p.Value)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\nbest: %s=%.3f (%s %.4f)\n", optParam, best.Params[optParam], metric, best.Value)
	return nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	viz.SetTheme(theme)

	var observers []session.Observer
	if withAudio {
		proc := audio.NewProcessor()
		if err := proc.Start(); err != nil {
			fmt.Fprintf(os.Stderr, "continuing without audio: %v\n", err)
		} else {
			defer proc.Stop()
			observers = append(observers, proc)
		}
	}

	if preset == "" {
		return viz.RunInteractive(observers...)
	}
	s, name, err := openSession(preset)
	if err != nil {
		return err
	}
	return viz.RunLive(s, name, observers...)
}

func serve(cmd *cobra.Command, args []string) error {
	cfg := config.LoadServer(envFile)

	settings := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return err
		}
		settings = loaded
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	srv := server.New(cfg, settings)
	if configFile != "" {
		if err := srv.WatchSettings(ctx, configFile); err != nil {
			return err
		}
	}
	return srv.Run(ctx)
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
