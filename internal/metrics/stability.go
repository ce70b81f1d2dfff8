package metrics

import (
	"math"

	"github.com/san-kum/autopilot/internal/dynamo"
)

// Stability scores how much of the trajectory stays inside the box
// |x_i| <= bound. A NaN component is outside the box.
type Stability struct {
	name  string
	bound float64

	inside, total int
	firstExit     float64
	exited        bool
}

func NewStability(bound float64) *Stability {
	return &Stability{name: "stability", bound: bound}
}

func (s *Stability) Name() string { return s.name }

func (s *Stability) Observe(x dynamo.State, u dynamo.Control, t float64) {
	s.total++
	if s.contains(x) {
		s.inside++
		return
	}
	if !s.exited {
		s.exited, s.firstExit = true, t
	}
}

func (s *Stability) contains(x dynamo.State) bool {
	for _, v := range x {
		if !(math.Abs(v) <= s.bound) {
			return false
		}
	}
	return true
}

// Value is the fraction of samples inside the box; 1 with no samples.
func (s *Stability) Value() float64 {
	if s.total == 0 {
		return 1
	}
	return float64(s.inside) / float64(s.total)
}

// FirstExit reports the time of the first sample outside the box.
func (s *Stability) FirstExit() (float64, bool) { return s.firstExit, s.exited }

func (s *Stability) Reset() {
	*s = Stability{name: s.name, bound: s.bound}
}
