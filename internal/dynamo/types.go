package dynamo

import "math"

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (s State) Add(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] + other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

func (s State) Scale(factor float64) State {
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i] * factor
	}
	return result
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

type Control []float64

// System is an ODE of the form dX/dt = f(X, u, t).
type System interface {
	Derive(x State, u Control, t float64) State
	StateDim() int
	ControlDim() int
}

type Integrator interface {
	Step(dyn System, x State, u Control, t float64, dt float64) State
}

// AdaptiveIntegrator is an embedded Runge-Kutta pair. StepWithError returns
// the propagated state together with the local error estimate, and
// ErrorOrder the order of that estimate.
type AdaptiveIntegrator interface {
	Integrator
	StepWithError(dyn System, x State, u Control, t, dt float64) (State, State)
	ErrorOrder() int
}

// Orderer is implemented by fixed-step integrators so the simulator can
// scale step-doubling error estimates.
type Orderer interface {
	Order() int
}

type Controller interface {
	Compute(x State, t float64) Control
}

type Metric interface {
	Name() string
	Observe(x State, u Control, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(x State, u Control, t float64)
}

type Config struct {
	Start    float64
	Duration float64
	// Dt is the fixed step, or the first step of an adaptive run. Zero lets
	// the adaptive driver pick the first step.
	Dt            float64
	MaxDt         float64
	RelTol        float64
	AbsTol        float64
	Adaptive      bool
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Start:         0,
		Duration:      50.0,
		Dt:            0,
		MaxDt:         0.1,
		RelTol:        1e-3,
		AbsTol:        1e-6,
		Adaptive:      true,
		ValidateState: true,
	}
}

// End is the final time of the integration interval.
func (c Config) End() float64 { return c.Start + c.Duration }

type Result struct {
	States      []State
	Controls    []Control
	Times       []float64
	Metrics     map[string]float64
	StepsTaken  int
	Rejected    int
	Evaluations int
}

// Component extracts the i-th state component of every sample.
func (r *Result) Component(i int) []float64 {
	out := make([]float64, len(r.States))
	for k, s := range r.States {
		if i < len(s) {
			out[k] = s[i]
		}
	}
	return out
}

// Final returns the last recorded state, or nil for an empty result.
func (r *Result) Final() State {
	if len(r.States) == 0 {
		return nil
	}
	return r.States[len(r.States)-1]
}
