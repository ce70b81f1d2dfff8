package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/autopilot/internal/export"
	"github.com/san-kum/autopilot/internal/storage"
	"github.com/san-kum/autopilot/internal/viz"
)

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
	fmt.Fprintln(w, "ID\tTIME\tINTEG\tCTRL\tHORIZON\tSAMPLES\tFINAL")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t[%g, %g]\t%d\t%.4g\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Integrator,
			run.Controller,
			run.Start,
			run.Start+run.Duration,
			run.Samples,
			run.Final,
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
	res, err := st.LoadResult(runID)
	if err != nil {
		return err
	}
	if len(res.States) == 0 {
		return fmt.Errorf("no states in run: %s", runID)
	}
	if component < 0 || component >= len(res.States[0]) {
		return fmt.Errorf("component %d out of range for %d-dimensional state", component, len(res.States[0]))
	}

	title := fmt.Sprintf("x%d vs time", component)
	if outPath != "" {
		if err := export.SaveTimeSeries(outPath, title, fmt.Sprintf("x%d", component), res.Times, res.Component(component)); err != nil {
			return err
		}
		logger.Info("wrote plot", "path", outPath)
	}

	if headless {
		fmt.Printf("run: %s\n", meta.ID)
		fmt.Printf("samples: %d\n\n", len(res.Times))
		fmt.Println(viz.RenderSeries(res.Times, res.Component(component), 72, 18, title))
		return nil
	}

	return viz.Show(res, viz.Options{Title: meta.ID, Component: component, Width: 72, Height: 18})
}

func exportCSV(cmd *cobra.Command, args []string) error {
	runID := args[0]

	path := outPath
	if path == "" {
		path = runID + ".csv"
	}

	st := storage.New(dataDir)
	if err := st.CopyStates(runID, path); err != nil {
		return err
	}
	fmt.Printf("exported: %s\n", path)
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	return storage.New(dataDir).ExportJSON(os.Stdout, args[0])
}
