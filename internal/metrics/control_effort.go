package metrics

import (
	"math"

	"github.com/san-kum/autopilot/internal/dynamo"
)

// ControlEffort is the time-weighted mean of the summed actuation magnitude,
// integrated with the trapezoidal rule. It also keeps the largest magnitude
// seen.
type ControlEffort struct {
	name string

	started  bool
	lastT    float64
	lastMag  float64
	integral float64
	span     float64
	peak     float64
}

func NewControlEffort() *ControlEffort {
	return &ControlEffort{name: "control_effort"}
}

func (c *ControlEffort) Name() string { return c.name }

func (c *ControlEffort) Observe(x dynamo.State, u dynamo.Control, t float64) {
	mag := 0.0
	for _, v := range u {
		mag += math.Abs(v)
	}
	c.peak = math.Max(c.peak, mag)

	if c.started {
		dt := t - c.lastT
		c.integral += 0.5 * (mag + c.lastMag) * dt
		c.span += dt
	}
	c.started = true
	c.lastT, c.lastMag = t, mag
}

func (c *ControlEffort) Value() float64 {
	if c.span <= 0 {
		return c.lastMag
	}
	return c.integral / c.span
}

// Peak is the largest summed actuation magnitude observed.
func (c *ControlEffort) Peak() float64 { return c.peak }

func (c *ControlEffort) Reset() {
	*c = ControlEffort{name: c.name}
}
