package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/autopilot/internal/control"
	"github.com/san-kum/autopilot/internal/dynamo"
	"github.com/san-kum/autopilot/internal/models"
)

const (
	DefaultIntegrator = "rk45"
	DefaultController = "state_feedback"
	DefaultDuration   = 50.0
	DefaultMaxStep    = 0.1
	DefaultRelTol     = 1e-3
	DefaultAbsTol     = 1e-6
	DefaultDeadband   = 4.0 / 1024.0
	DefaultBaud       = 9600
	DefaultPlotWidth  = 72
	DefaultPlotHeight = 18
)

var DefaultInitialState = []float64{1.0, 2.0}

var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	Integrator   string         `yaml:"integrator"`
	Controller   string         `yaml:"controller"`
	Plant        PlantConfig    `yaml:"plant"`
	Gains        [][]float64    `yaml:"gains"`
	Setpoint     []float64      `yaml:"setpoint"`
	InitialState []float64      `yaml:"initial_state"`
	Solver       SolverConfig   `yaml:"solver"`
	Plot         PlotConfig     `yaml:"plot"`
	Throttle     ThrottleConfig `yaml:"throttle"`
}

type PlantConfig struct {
	A [][]float64 `yaml:"a"`
	B [][]float64 `yaml:"b"`
}

type SolverConfig struct {
	Start    float64 `yaml:"start"`
	Duration float64 `yaml:"duration"`
	// Dt is the fixed step, or the first trial step when adaptive. Zero lets
	// the solver choose.
	Dt       float64 `yaml:"dt"`
	MaxStep  float64 `yaml:"max_step"`
	RelTol   float64 `yaml:"rtol"`
	AbsTol   float64 `yaml:"atol"`
	Adaptive bool    `yaml:"adaptive"`
}

type PlotConfig struct {
	Component int `yaml:"component"`
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
}

type ThrottleConfig struct {
	Deadband float64 `yaml:"deadband"`
	Port     string  `yaml:"port"`
	Baud     int     `yaml:"baud"`
}

// DefaultConfig is the proof scenario.
func DefaultConfig() *Config {
	return &Config{
		Integrator: DefaultIntegrator,
		Controller: DefaultController,
		Plant: PlantConfig{
			A: cloneRows(models.AutopilotPlantMatrix),
			B: cloneRows(models.AutopilotActuation),
		},
		Gains:        cloneRows(control.AutopilotGains),
		Setpoint:     append([]float64(nil), control.AutopilotSetpoint...),
		InitialState: append([]float64(nil), DefaultInitialState...),
		Solver: SolverConfig{
			Duration: DefaultDuration,
			MaxStep:  DefaultMaxStep,
			RelTol:   DefaultRelTol,
			AbsTol:   DefaultAbsTol,
			Adaptive: true,
		},
		Plot: PlotConfig{
			Width:  DefaultPlotWidth,
			Height: DefaultPlotHeight,
		},
		Throttle: ThrottleConfig{
			Deadband: DefaultDeadband,
			Baud:     DefaultBaud,
		},
	}
}

// Load reads a YAML file over the defaults, so omitted keys keep the proof
// values.
func Load(path string) (*Config, error) {
	return LoadInto(path, DefaultConfig())
}

// LoadInto overlays the keys present in a YAML file on base and returns it.
// base is modified in place.
func LoadInto(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, base); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return base, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the shapes the plant and controller will be built from.
func (c *Config) Validate() error {
	n := len(c.Plant.A)
	if n == 0 {
		return fmt.Errorf("%w: plant matrix is empty", ErrInvalid)
	}
	for i, row := range c.Plant.A {
		if len(row) != n {
			return fmt.Errorf("%w: plant row %d has %d entries, want %d", ErrInvalid, i, len(row), n)
		}
	}
	if len(c.Plant.B) != n {
		return fmt.Errorf("%w: actuation has %d rows, want %d", ErrInvalid, len(c.Plant.B), n)
	}
	if len(c.InitialState) != n {
		return fmt.Errorf("%w: initial state has %d components, want %d", ErrInvalid, len(c.InitialState), n)
	}
	if c.Controller == DefaultController {
		if len(c.Setpoint) != n {
			return fmt.Errorf("%w: setpoint has %d components, want %d", ErrInvalid, len(c.Setpoint), n)
		}
		if len(c.Gains) == 0 {
			return fmt.Errorf("%w: state feedback needs gains", ErrInvalid)
		}
		for i, row := range c.Gains {
			if len(row) != n {
				return fmt.Errorf("%w: gain row %d has %d entries, want %d", ErrInvalid, i, len(row), n)
			}
		}
	}
	if c.Plot.Component < 0 || c.Plot.Component >= n {
		return fmt.Errorf("%w: plot component %d out of range", ErrInvalid, c.Plot.Component)
	}
	if c.Solver.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive", ErrInvalid)
	}
	return nil
}

// SimConfig converts the solver section for the simulator.
func (c *Config) SimConfig() dynamo.Config {
	return dynamo.Config{
		Start:         c.Solver.Start,
		Duration:      c.Solver.Duration,
		Dt:            c.Solver.Dt,
		MaxDt:         c.Solver.MaxStep,
		RelTol:        c.Solver.RelTol,
		AbsTol:        c.Solver.AbsTol,
		Adaptive:      c.Solver.Adaptive,
		ValidateState: true,
	}
}

func cloneRows(rows [][]float64) [][]float64 {
	out := make([][]float64, len(rows))
	for i, r := range rows {
		out[i] = append([]float64(nil), r...)
	}
	return out
}
