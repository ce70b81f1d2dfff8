package control

import (
	"fmt"

	"github.com/san-kum/autopilot/internal/dynamo"
	"gonum.org/v1/gonum/mat"
)

var (
	AutopilotGains    = [][]float64{{1.0, 1.0}}
	AutopilotSetpoint = dynamo.State{1.0, 0.0}
)

// StateFeedback is the proportional law u = K·(r − x). The gain acts on the
// error directly, so K is not split into a state term and a reference term.
type StateFeedback struct {
	K        *mat.Dense
	Setpoint dynamo.State
}

func NewStateFeedback(k mat.Matrix, setpoint dynamo.State) (*StateFeedback, error) {
	_, c := k.Dims()
	if c != len(setpoint) {
		return nil, fmt.Errorf("%w: gain matrix has %d columns, setpoint has %d components",
			dynamo.ErrDimensionMismatch, c, len(setpoint))
	}
	return &StateFeedback{K: mat.DenseCopyOf(k), Setpoint: setpoint.Clone()}, nil
}

// NewAutopilotFeedback returns K = [1, 1] driving toward r = [1, 0].
func NewAutopilotFeedback() *StateFeedback {
	k := mat.NewDense(1, 2, []float64{AutopilotGains[0][0], AutopilotGains[0][1]})
	return &StateFeedback{K: k, Setpoint: AutopilotSetpoint.Clone()}
}

func (f *StateFeedback) Error(x dynamo.State) dynamo.State {
	return f.Setpoint.Sub(x)
}

func (f *StateFeedback) Compute(x dynamo.State, t float64) dynamo.Control {
	e := f.Error(x)
	m, _ := f.K.Dims()

	u := mat.NewVecDense(m, nil)
	u.MulVec(f.K, mat.NewVecDense(len(e), e))
	return dynamo.Control(u.RawVector().Data)
}
