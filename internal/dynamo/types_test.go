package dynamo

import (
	"math"
	"strings"
	"testing"
)

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		state State
		valid bool
	}{
		{"empty", State{}, true},
		{"normal", State{1.0, 2.0, 3.0}, true},
		{"zeros", State{0.0, 0.0}, true},
		{"with NaN", State{1.0, math.NaN()}, false},
		{"with +Inf", State{1.0, math.Inf(1)}, false},
		{"with -Inf", State{1.0, math.Inf(-1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestState_Norm(t *testing.T) {
	tests := []struct {
		state    State
		expected float64
	}{
		{State{3, 4}, 5.0},
		{State{1, 0}, 1.0},
		{State{0, 0}, 0.0},
		{State{1, 1, 1, 1}, 2.0},
	}

	for _, tt := range tests {
		if got := tt.state.Norm(); math.Abs(got-tt.expected) > 1e-10 {
			t.Errorf("Norm(%v) = %v, want %v", tt.state, got, tt.expected)
		}
	}
}

func TestState_Arithmetic(t *testing.T) {
	a := State{1, 2, 3}
	b := State{4, 5, 6}

	sum := a.Add(b)
	if sum[0] != 5 || sum[1] != 7 || sum[2] != 9 {
		t.Errorf("Add failed: got %v", sum)
	}

	diff := b.Sub(a)
	if diff[0] != 3 || diff[1] != 3 || diff[2] != 3 {
		t.Errorf("Sub failed: got %v", diff)
	}

	scaled := a.Scale(2)
	if scaled[0] != 2 || scaled[1] != 4 || scaled[2] != 6 {
		t.Errorf("Scale failed: got %v", scaled)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Start != 0 || cfg.End() != 50 {
		t.Errorf("expected interval [0, 50], got [%f, %f]", cfg.Start, cfg.End())
	}
	if cfg.MaxDt != 0.1 {
		t.Errorf("expected max step 0.1, got %f", cfg.MaxDt)
	}
	if !cfg.Adaptive {
		t.Error("DefaultConfig should be adaptive")
	}
	if cfg.RelTol <= 0 || cfg.AbsTol <= 0 {
		t.Error("DefaultConfig has invalid tolerances")
	}
}

func TestResultAccessors(t *testing.T) {
	r := &Result{States: []State{{1, 2}, {3, 4}, {5}}}

	x0 := r.Component(0)
	if len(x0) != 3 || x0[0] != 1 || x0[2] != 5 {
		t.Errorf("Component(0) = %v", x0)
	}
	x1 := r.Component(1)
	if x1[2] != 0 {
		t.Errorf("missing component should read as zero, got %v", x1[2])
	}
	if f := r.Final(); f[0] != 5 {
		t.Errorf("Final() = %v", f)
	}
	if (&Result{}).Final() != nil {
		t.Error("Final() of empty result should be nil")
	}
}

func TestSimulationError(t *testing.T) {
	err := &SimulationError{Step: 150, Time: 1.5, Wrapped: ErrStepTooSmall}

	if !strings.Contains(err.Error(), "step 150") || !strings.Contains(err.Error(), "t=1.5") {
		t.Errorf("unexpected message %q", err.Error())
	}
	if err.Unwrap() != ErrStepTooSmall {
		t.Error("Unwrap did not return wrapped error")
	}
}

func TestInitialStep(t *testing.T) {
	cfg := DefaultConfig()
	sys := &decaySystem{}
	x0 := State{1}
	h := initialStep(sys, 0, x0, sys.Derive(x0, nil, 0), 50, 4, cfg)

	if h <= 0 || h > 50 {
		t.Errorf("initial step %f out of range", h)
	}
	if got := initialStep(sys, 0, x0, sys.Derive(x0, nil, 0), 1e-9, 4, cfg); got > 1e-9 {
		t.Errorf("initial step %g exceeds span", got)
	}
}

func TestScaledErrorNorm(t *testing.T) {
	cfg := Config{RelTol: 1e-3, AbsTol: 1e-6}
	n := scaledErrorNorm(State{1e-3, 1e-3}, State{1, 1}, State{1, 1}, cfg)
	if math.Abs(n-1e-3/(1e-6+1e-3)) > 1e-12 {
		t.Errorf("unexpected norm %g", n)
	}
	if scaledErrorNorm(State{}, State{}, State{}, cfg) != 0 {
		t.Error("empty error estimate should have zero norm")
	}
}

type decaySystem struct{}

func (d *decaySystem) StateDim() int   { return 1 }
func (d *decaySystem) ControlDim() int { return 0 }
func (d *decaySystem) Derive(x State, u Control, t float64) State {
	return State{-x[0]}
}

func TestSampleCapacity(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want int
	}{
		{"max step", Config{Duration: 50, MaxDt: 0.1, Adaptive: true}, 502},
		{"fixed dt", Config{Duration: 1, Dt: 0.25}, 6},
		{"adaptive unbounded", Config{Duration: 50, Adaptive: true}, 16},
		{"tiny max step", Config{Duration: 50, MaxDt: 1e-300, Adaptive: true}, maxPrealloc},
		{"tiny fixed dt", Config{Duration: 50, Dt: 1e-300}, maxPrealloc},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sampleCapacity(tt.cfg); got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}
