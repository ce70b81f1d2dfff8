package dynamo

import (
	"context"
	"fmt"
	"math"
)

// Step-size control constants of the embedded Runge-Kutta driver.
const (
	safety    = 0.9
	minFactor = 0.2
	maxFactor = 10.0

	// maxPrealloc caps the sample slices allocated up front; longer runs grow
	// them by append.
	maxPrealloc = 1 << 16
	// maxSteps bounds the step count implied by Dt or MaxDt.
	maxSteps = 1 << 30
)

type Simulator struct {
	dyn        System
	integrator Integrator
	controller Controller
	metrics    []Metric
	observers  []Observer
}

func New(dyn System, integrator Integrator, controller Controller) *Simulator {
	return &Simulator{
		dyn:        dyn,
		integrator: integrator,
		controller: controller,
		metrics:    make([]Metric, 0),
		observers:  make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Run integrates the closed-loop system from x0 over [cfg.Start, cfg.End()].
// Samples are recorded at the initial time and after every accepted step; the
// last sample lies exactly on cfg.End(). On failure the partial result is
// returned together with the error.
func (s *Simulator) Run(ctx context.Context, x0 State, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}
	if len(x0) != s.dyn.StateDim() {
		return nil, fmt.Errorf("%w: initial state has %d components, system expects %d",
			ErrDimensionMismatch, len(x0), s.dyn.StateDim())
	}

	capHint := sampleCapacity(cfg)
	result := &Result{
		States:   make([]State, 0, capHint),
		Controls: make([]Control, 0, capHint),
		Times:    make([]float64, 0, capHint),
		Metrics:  make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	loop := Close(s.dyn, s.controller)
	s.record(result, x0.Clone(), cfg.Start)

	var err error
	if cfg.Adaptive {
		err = s.runAdaptive(ctx, loop, x0.Clone(), cfg, result)
	} else {
		err = s.runFixed(ctx, loop, x0.Clone(), cfg, result)
	}
	result.Evaluations = loop.Evaluations()

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, err
}

func (s *Simulator) runFixed(ctx context.Context, sys System, x State, cfg Config, result *Result) error {
	end := cfg.End()
	steps := int(math.Ceil(cfg.Duration/cfg.Dt - 1e-9))
	t := cfg.Start

	for i := 0; i < steps; i++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrContextCanceled, err)
		}

		dt := cfg.Dt
		tNew := t + dt
		if i == steps-1 {
			dt = end - t
			tNew = end
		}

		newX := s.integrator.Step(sys, x, nil, t, dt)
		if cfg.ValidateState && !newX.IsValid() {
			return &SimulationError{Step: i, Time: tNew, State: newX, Wrapped: ErrInvalidState}
		}

		x, t = newX, tNew
		result.StepsTaken++
		s.record(result, x, t)
	}

	return nil
}

func (s *Simulator) runAdaptive(ctx context.Context, sys System, x State, cfg Config, result *Result) error {
	end := cfg.End()
	order := s.errorOrder()
	exponent := -1.0 / float64(order+1)

	maxStep := cfg.MaxDt
	if maxStep <= 0 {
		maxStep = math.Inf(1)
	}

	t := cfg.Start
	hAbs := cfg.Dt
	if hAbs <= 0 {
		f0 := sys.Derive(x, nil, t)
		hAbs = initialStep(sys, t, x, f0, end-t, order, cfg)
	}

	for step := 0; t < end; step++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrContextCanceled, err)
		}

		minStep := 10 * (math.Nextafter(t, math.Inf(1)) - t)
		if hAbs > maxStep {
			hAbs = maxStep
		} else if hAbs < minStep {
			hAbs = minStep
		}

		rejected := false
		var newX State
		var tNew float64

		for {
			if hAbs < minStep {
				return &SimulationError{Step: step, Time: t, State: x.Clone(), Wrapped: ErrStepTooSmall}
			}

			tNew = t + hAbs
			if tNew > end {
				tNew = end
			}
			h := tNew - t
			hAbs = h

			var errEst State
			newX, errEst = s.attempt(sys, x, t, h)
			errNorm := scaledErrorNorm(errEst, x, newX, cfg)

			if math.IsNaN(errNorm) {
				return &SimulationError{Step: step, Time: t, State: newX, Wrapped: ErrInvalidState}
			}

			if errNorm < 1 {
				factor := maxFactor
				if errNorm > 0 {
					factor = math.Min(maxFactor, safety*math.Pow(errNorm, exponent))
				}
				if rejected {
					factor = math.Min(1, factor)
				}
				hAbs *= factor
				break
			}

			hAbs *= math.Max(minFactor, safety*math.Pow(errNorm, exponent))
			rejected = true
			result.Rejected++
		}

		if cfg.ValidateState && !newX.IsValid() {
			return &SimulationError{Step: step, Time: tNew, State: newX, Wrapped: ErrInvalidState}
		}

		x, t = newX, tNew
		result.StepsTaken++
		s.record(result, x, t)
	}

	return nil
}

// attempt advances one step of size h and returns the new state with its
// local error estimate. Integrators without an embedded pair are estimated
// by step doubling.
func (s *Simulator) attempt(sys System, x State, t, h float64) (State, State) {
	if adaptive, ok := s.integrator.(AdaptiveIntegrator); ok {
		return adaptive.StepWithError(sys, x, nil, t, h)
	}

	full := s.integrator.Step(sys, x, nil, t, h)
	half := s.integrator.Step(sys, x, nil, t, h/2)
	two := s.integrator.Step(sys, half, nil, t+h/2, h/2)

	p := float64(s.errorOrder())
	return two, two.Sub(full).Scale(1 / (math.Pow(2, p) - 1))
}

func (s *Simulator) errorOrder() int {
	switch integ := s.integrator.(type) {
	case AdaptiveIntegrator:
		return integ.ErrorOrder()
	case Orderer:
		return integ.Order()
	default:
		return 1
	}
}

func (s *Simulator) record(result *Result, x State, t float64) {
	var u Control
	if s.controller != nil {
		u = s.controller.Compute(x, t)
	}

	for _, m := range s.metrics {
		m.Observe(x, u, t)
	}
	for _, obs := range s.observers {
		obs.OnStep(x, u, t)
	}

	result.States = append(result.States, x)
	result.Controls = append(result.Controls, u)
	result.Times = append(result.Times, t)
}

func (s *Simulator) validateConfig(cfg Config) error {
	if cfg.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %f", ErrInvalidConfig, cfg.Duration)
	}
	if cfg.MaxDt < 0 {
		return fmt.Errorf("%w: max step must not be negative, got %f", ErrInvalidConfig, cfg.MaxDt)
	}
	if cfg.MaxDt > 0 && cfg.Duration/cfg.MaxDt > maxSteps {
		return fmt.Errorf("%w: max step %g is too small for duration %g", ErrInvalidConfig, cfg.MaxDt, cfg.Duration)
	}
	if cfg.Adaptive {
		if cfg.RelTol <= 0 || cfg.AbsTol < 0 {
			return fmt.Errorf("%w: tolerance must be positive for adaptive stepping", ErrInvalidConfig)
		}
		if cfg.Dt < 0 {
			return fmt.Errorf("%w: first step must not be negative, got %f", ErrInvalidConfig, cfg.Dt)
		}
		return nil
	}
	if cfg.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %f", ErrInvalidConfig, cfg.Dt)
	}
	if n := math.Ceil(cfg.Duration/cfg.Dt - 1e-9); n > maxSteps {
		return fmt.Errorf("%w: dt %g needs %.3g steps, limit is %d", ErrInvalidConfig, cfg.Dt, n, maxSteps)
	}
	return nil
}

// sampleCapacity estimates the number of recorded samples in float so that
// tiny steps cannot overflow the conversion.
func sampleCapacity(cfg Config) int {
	var est float64
	switch {
	case cfg.MaxDt > 0:
		est = cfg.Duration / cfg.MaxDt
	case !cfg.Adaptive:
		est = cfg.Duration / cfg.Dt
	default:
		return 16
	}
	if !(est < maxPrealloc) {
		return maxPrealloc
	}
	return int(est) + 2
}

// scaledErrorNorm is the RMS of the error estimate relative to
// AbsTol + RelTol*max(|x|, |xNew|).
func scaledErrorNorm(errEst, x, xNew State, cfg Config) float64 {
	if len(errEst) == 0 {
		return 0
	}
	sum := 0.0
	for i := range errEst {
		sc := cfg.AbsTol + cfg.RelTol*math.Max(math.Abs(x[i]), math.Abs(xNew[i]))
		r := errEst[i] / sc
		sum += r * r
	}
	return math.Sqrt(sum / float64(len(errEst)))
}

func rmsScaled(v State, scale []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	sum := 0.0
	for i := range v {
		r := v[i] / scale[i]
		sum += r * r
	}
	return math.Sqrt(sum / float64(len(v)))
}

// initialStep picks the first trial step from the scaled magnitudes of the
// state, its derivative and a finite-difference estimate of the second
// derivative.
func initialStep(sys System, t0 float64, x0, f0 State, span float64, order int, cfg Config) float64 {
	if span <= 0 || len(x0) == 0 {
		return span
	}

	scale := make([]float64, len(x0))
	for i := range x0 {
		scale[i] = cfg.AbsTol + math.Abs(x0[i])*cfg.RelTol
	}

	d0 := rmsScaled(x0, scale)
	d1 := rmsScaled(f0, scale)

	h0 := 1e-6
	if d0 >= 1e-5 && d1 >= 1e-5 {
		h0 = 0.01 * d0 / d1
	}
	h0 = math.Min(h0, span)

	x1 := make(State, len(x0))
	for i := range x0 {
		x1[i] = x0[i] + h0*f0[i]
	}
	f1 := sys.Derive(x1, nil, t0+h0)
	d2 := rmsScaled(f1.Sub(f0), scale) / h0

	var h1 float64
	if d1 <= 1e-15 && d2 <= 1e-15 {
		h1 = math.Max(1e-6, h0*1e-3)
	} else {
		h1 = math.Pow(0.01/math.Max(d1, d2), 1/float64(order+1))
	}

	return math.Min(math.Min(100*h0, h1), span)
}
