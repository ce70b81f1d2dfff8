package metrics

import (
	"math"

	"github.com/san-kum/autopilot/internal/dynamo"
)

// TrackingError is the time-weighted mean of |r_i − x_i| for one component,
// integrated with the trapezoidal rule over the (possibly uneven) samples.
type TrackingError struct {
	name      string
	component int
	target    float64

	started  bool
	lastT    float64
	lastErr  float64
	integral float64
	span     float64
}

func NewTrackingError(component int, target float64) *TrackingError {
	return &TrackingError{
		name:      "tracking_error",
		component: component,
		target:    target,
	}
}

func (e *TrackingError) Name() string { return e.name }

func (e *TrackingError) Observe(x dynamo.State, u dynamo.Control, t float64) {
	if e.component >= len(x) {
		return
	}
	cur := math.Abs(e.target - x[e.component])

	if e.started {
		dt := t - e.lastT
		e.integral += 0.5 * (cur + e.lastErr) * dt
		e.span += dt
	}

	e.started = true
	e.lastT = t
	e.lastErr = cur
}

func (e *TrackingError) Value() float64 {
	if e.span <= 0 {
		return e.lastErr
	}
	return e.integral / e.span
}

func (e *TrackingError) Reset() {
	e.started = false
	e.lastT = 0
	e.lastErr = 0
	e.integral = 0
	e.span = 0
}
