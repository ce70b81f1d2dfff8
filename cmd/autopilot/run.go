package main

import (
	"fmt"
	"math/cmplx"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/autopilot/internal/analysis"
	"github.com/san-kum/autopilot/internal/config"
	"github.com/san-kum/autopilot/internal/dynamo"
	"github.com/san-kum/autopilot/internal/experiment"
	"github.com/san-kum/autopilot/internal/export"
	"github.com/san-kum/autopilot/internal/storage"
	"github.com/san-kum/autopilot/internal/viz"
)

// loadConfig resolves defaults, then the preset, then the config file, then
// flags the user set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.LoadInto(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("integrator") {
		cfg.Integrator = integrator
	}
	if cmd.Flags().Changed("component") {
		cfg.Plot.Component = component
	}

	return cfg, cfg.Validate()
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	exp, err := experiment.Build(cfg, logger)
	if err != nil {
		return err
	}

	res, err := exp.Run(cmd.Context())
	if err != nil {
		return err
	}

	report, err := exp.Analyze()
	if err != nil {
		logger.Warn("stability analysis failed", "err", err)
	}

	if save {
		id, err := saveRun(cfg, res, report)
		if err != nil {
			return fmt.Errorf("save run: %w", err)
		}
		fmt.Printf("saved run: %s\n", id)
	}

	c := cfg.Plot.Component
	title := fmt.Sprintf("x%d vs time", c)
	if outPath != "" {
		if err := export.SaveTimeSeries(outPath, title, fmt.Sprintf("x%d", c), res.Times, res.Component(c)); err != nil {
			return err
		}
		logger.Info("wrote plot", "path", outPath)
	}

	if headless {
		printSummary(res)
		fmt.Println(viz.RenderSeries(res.Times, res.Component(c), cfg.Plot.Width, cfg.Plot.Height, title))
		return nil
	}

	return viz.Show(res, viz.Options{
		Title:     runTitle(cfg),
		Component: c,
		Width:     cfg.Plot.Width,
		Height:    cfg.Plot.Height,
	})
}

func runTitle(cfg *config.Config) string {
	name := preset
	if name == "" {
		name = "proof"
	}
	return fmt.Sprintf("%s · %s · %s", name, cfg.Integrator, cfg.Controller)
}

func saveRun(cfg *config.Config, res *dynamo.Result, report *analysis.StabilityReport) (string, error) {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return "", err
	}

	info := storage.RunInfo{
		Name:       preset,
		Integrator: cfg.Integrator,
		Controller: cfg.Controller,
		Start:      cfg.Solver.Start,
		Duration:   cfg.Solver.Duration,
		MaxStep:    cfg.Solver.MaxStep,
		RelTol:     cfg.Solver.RelTol,
		AbsTol:     cfg.Solver.AbsTol,
		Adaptive:   cfg.Solver.Adaptive,
	}
	if report != nil {
		info.Eigenvalues = report.Eigenvalues
	}
	return st.Save(info, res)
}

func printSummary(res *dynamo.Result) {
	fmt.Printf("samples: %d (steps %d, rejected %d, evals %d)\n",
		len(res.Times), res.StepsTaken, res.Rejected, res.Evaluations)
	fmt.Printf("final: t=%.4g x=%.6g\n", res.Times[len(res.Times)-1], []float64(res.Final()))

	names := make([]string, 0, len(res.Metrics))
	for name := range res.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("%s: %.4f\n", name, res.Metrics[name])
	}
	fmt.Println()
}

func stabilityReport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	exp, err := experiment.Build(cfg, logger)
	if err != nil {
		return err
	}

	report, err := exp.Analyze()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "EIGENVALUE\t|λ|\tDAMPING\tFREQ (Hz)\tTAU (s)")
	for _, m := range report.Modes {
		fmt.Fprintf(w, "%.4f%+.4fi\t%.4f\t%.4f\t%.4f\t%.4f\n",
			real(m.Eigenvalue), imag(m.Eigenvalue),
			cmplx.Abs(m.Eigenvalue), m.DampingRatio, m.DampedFrequency, m.TimeConstant)
	}
	w.Flush()

	fmt.Printf("\nstable: %v\n", report.Stable)
	if report.Equilibrium != nil {
		fmt.Printf("equilibrium: %.6g\n", []float64(report.Equilibrium))
	} else {
		fmt.Println("equilibrium: none (closed loop is singular)")
	}

	res, err := exp.Run(cmd.Context())
	if err != nil {
		return err
	}

	c := cfg.Plot.Component
	step, err := analysis.Response(res.Times, res.Component(c), analysis.DefaultSettlingBand)
	if err != nil {
		return err
	}
	fmt.Printf("\nx%d final: %.6g\n", c, step.FinalValue)
	fmt.Printf("x%d peak: %.6g at t=%.4g (overshoot %.1f%%)\n", c, step.Peak, step.PeakTime, step.Overshoot*100)
	fmt.Printf("x%d settling (2%%): %.4gs\n", c, step.SettlingTime)

	if f, err := analysis.DominantFrequency(res.Times, res.Component(c), 1024); err == nil {
		fmt.Printf("x%d dominant frequency: %.4f Hz\n", c, f)
	}

	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	fmt.Println("presets:")
	for _, p := range config.ListPresets() {
		fmt.Printf("  %s\n", p)
	}
	return nil
}
