package experiment

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/san-kum/autopilot/internal/analysis"
	"github.com/san-kum/autopilot/internal/config"
	"github.com/san-kum/autopilot/internal/dynamo"
	"github.com/san-kum/autopilot/internal/models"
)

// Experiment is one configured closed-loop run.
type Experiment struct {
	cfg        *config.Config
	plant      *models.LinearPlant
	controller dynamo.Controller
	simulator  *dynamo.Simulator
	logger     *log.Logger
}

// Build assembles an experiment from cfg with the default registry.
func Build(cfg *config.Config, logger *log.Logger) (*Experiment, error) {
	return NewRegistry().Build(cfg, logger)
}

func (r *Registry) Build(cfg *config.Config, logger *log.Logger) (*Experiment, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a, err := models.Dense(cfg.Plant.A)
	if err != nil {
		return nil, fmt.Errorf("plant: %w", err)
	}
	b, err := models.Dense(cfg.Plant.B)
	if err != nil {
		return nil, fmt.Errorf("actuation: %w", err)
	}
	plant, err := models.NewLinearPlant(a, b)
	if err != nil {
		return nil, err
	}

	integ, err := r.GetIntegrator(cfg.Integrator)
	if err != nil {
		return nil, err
	}
	ctrl, err := r.GetController(cfg.Controller, cfg, plant)
	if err != nil {
		return nil, err
	}

	sim := dynamo.New(plant, integ, ctrl)
	for _, m := range r.DefaultMetrics(cfg) {
		sim.AddMetric(m)
	}
	sim.AddObserver(newProgress(logger, cfg.SimConfig()))

	return &Experiment{
		cfg:        cfg,
		plant:      plant,
		controller: ctrl,
		simulator:  sim,
		logger:     logger,
	}, nil
}

func (e *Experiment) Config() *config.Config        { return e.cfg }
func (e *Experiment) Plant() *models.LinearPlant    { return e.plant }
func (e *Experiment) Controller() dynamo.Controller { return e.controller }

// Simulator returns the underlying simulator for adding observers.
func (e *Experiment) Simulator() *dynamo.Simulator { return e.simulator }

func (e *Experiment) Run(ctx context.Context) (*dynamo.Result, error) {
	simCfg := e.cfg.SimConfig()
	x0 := dynamo.State(e.cfg.InitialState).Clone()

	e.logger.Info("starting run",
		"integrator", e.cfg.Integrator,
		"controller", e.cfg.Controller,
		"t0", simCfg.Start,
		"t1", simCfg.End(),
		"x0", x0,
	)

	start := time.Now()
	res, err := e.simulator.Run(ctx, x0, simCfg)
	if err != nil {
		e.logger.Error("run failed", "err", err)
		return res, err
	}

	e.logger.Info("run finished",
		"steps", res.StepsTaken,
		"rejected", res.Rejected,
		"evals", res.Evaluations,
		"final", res.Final(),
		"elapsed", time.Since(start),
	)
	return res, nil
}

// Analyze reports the modal stability of the configured loop. Open-loop
// configurations are analyzed with zero gains.
func (e *Experiment) Analyze() (*analysis.StabilityReport, error) {
	k, r := gainsOf(e.controller, e.plant)
	return analysis.Analyze(e.plant.A, e.plant.B, k, r)
}

// progress logs accepted samples at debug level, at most once per tenth of
// the horizon.
type progress struct {
	logger   *log.Logger
	interval float64
	next     float64
}

func newProgress(logger *log.Logger, cfg dynamo.Config) *progress {
	return &progress{
		logger:   logger,
		interval: cfg.Duration / 10,
		next:     cfg.Start,
	}
}

func (p *progress) OnStep(x dynamo.State, u dynamo.Control, t float64) {
	if t < p.next {
		return
	}
	p.next = t + p.interval
	p.logger.Debug("step", "t", t, "x", x, "u", u)
}
