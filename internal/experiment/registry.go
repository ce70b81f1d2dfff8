package experiment

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/autopilot/internal/config"
	"github.com/san-kum/autopilot/internal/control"
	"github.com/san-kum/autopilot/internal/dynamo"
	"github.com/san-kum/autopilot/internal/integrators"
	"github.com/san-kum/autopilot/internal/metrics"
	"github.com/san-kum/autopilot/internal/models"
)

// StabilityBound is the envelope used by the stability metric.
const StabilityBound = 10.0

// ControllerFactory builds a controller for plant from the configuration.
type ControllerFactory func(cfg *config.Config, plant *models.LinearPlant) (dynamo.Controller, error)

type Registry struct {
	integrators map[string]func() dynamo.Integrator
	controllers map[string]ControllerFactory
}

func NewRegistry() *Registry {
	r := &Registry{
		integrators: make(map[string]func() dynamo.Integrator),
		controllers: make(map[string]ControllerFactory),
	}

	r.integrators["rk45"] = func() dynamo.Integrator { return integrators.NewRK45() }
	r.integrators["rk4"] = func() dynamo.Integrator { return integrators.NewRK4() }
	r.integrators["euler"] = func() dynamo.Integrator { return integrators.NewEuler() }

	r.controllers["state_feedback"] = func(cfg *config.Config, plant *models.LinearPlant) (dynamo.Controller, error) {
		k, err := models.Dense(cfg.Gains)
		if err != nil {
			return nil, fmt.Errorf("gains: %w", err)
		}
		if kr, _ := k.Dims(); kr != plant.ControlDim() {
			return nil, fmt.Errorf("%w: gain matrix has %d rows, plant has %d inputs",
				dynamo.ErrDimensionMismatch, kr, plant.ControlDim())
		}
		return control.NewStateFeedback(k, dynamo.State(cfg.Setpoint))
	}
	r.controllers["none"] = func(cfg *config.Config, plant *models.LinearPlant) (dynamo.Controller, error) {
		return control.NewOpenLoop(plant.ControlDim()), nil
	}

	return r
}

func (r *Registry) GetIntegrator(name string) (dynamo.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

func (r *Registry) GetController(name string, cfg *config.Config, plant *models.LinearPlant) (dynamo.Controller, error) {
	fn, ok := r.controllers[name]
	if !ok {
		return nil, fmt.Errorf("unknown controller: %s", name)
	}
	return fn(cfg, plant)
}

func (r *Registry) ListIntegrators() []string {
	return sortedKeys(r.integrators)
}

func (r *Registry) ListControllers() []string {
	return sortedKeys(r.controllers)
}

func (r *Registry) DefaultMetrics(cfg *config.Config) []dynamo.Metric {
	ms := []dynamo.Metric{
		metrics.NewControlEffort(),
		metrics.NewStability(StabilityBound),
	}

	c := cfg.Plot.Component
	if c < len(cfg.Setpoint) {
		ms = append(ms, metrics.NewTrackingError(c, cfg.Setpoint[c]))
	}
	return ms
}

// gainsOf returns the gain matrix and setpoint behind ctrl, with zero gains for
// anything that is not state feedback.
func gainsOf(ctrl dynamo.Controller, plant *models.LinearPlant) (*mat.Dense, dynamo.State) {
	if sf, ok := ctrl.(*control.StateFeedback); ok {
		return sf.K, sf.Setpoint
	}
	n, m := plant.StateDim(), plant.ControlDim()
	return mat.NewDense(m, n, nil), make(dynamo.State, n)
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
