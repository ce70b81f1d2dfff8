package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	configFile string
	preset     string
	logLevel   string

	integrator string
	save       bool
	outPath    string
	headless   bool
	component  int

	port     string
	baud     int
	fwdRaw   int
	revRaw   int
	regenRaw int
)

var logger = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	Prefix:          "autopilot",
})

// main registers the commands and runs the proof scenario with the interactive
// plot when no subcommand is given. It exits with status 1 on any error.
func main() {
	rootCmd := &cobra.Command{
		Use:               "autopilot",
		Short:             "closed-loop autopilot trajectory simulator",
		SilenceUsage:      true,
		PersistentPreRunE: setupLogger,
		RunE:              runSimulation,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".autopilot", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run the closed-loop simulation",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	runCmd.Flags().StringVar(&integrator, "integrator", "rk45", "integrator (rk45, rk4, euler)")
	runCmd.Flags().BoolVar(&save, "save", false, "store the run under the data directory")
	runCmd.Flags().StringVar(&outPath, "out", "", "write the plot to an image file (.png, .svg, .pdf)")
	runCmd.Flags().BoolVar(&headless, "headless", false, "print the plot instead of opening the interactive view")
	runCmd.Flags().IntVar(&component, "component", 0, "state component to plot")

	stabilityCmd := &cobra.Command{
		Use:   "stability",
		Short: "closed-loop eigenvalues, equilibrium and transient",
		Args:  cobra.NoArgs,
		RunE:  stabilityReport,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().BoolVar(&headless, "headless", false, "print the plot instead of opening the interactive view")
	plotCmd.Flags().IntVar(&component, "component", 0, "state component to plot")
	plotCmd.Flags().StringVar(&outPath, "out", "", "write the plot to an image file")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVar(&outPath, "out", "", "output path (default <run_id>.csv)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and trajectory to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	rootCmd.AddCommand(runCmd, stabilityCmd, presetsCmd, listCmd, plotCmd, exportCSVCmd, exportJSONCmd, throttleCommand())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func setupLogger(cmd *cobra.Command, args []string) error {
	lvl, err := log.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	logger.SetLevel(lvl)
	return nil
}
