package integrators

import "github.com/san-kum/autopilot/internal/dynamo"

// Dormand-Prince 5(4) tableau.
var (
	dpNodes = [...]float64{0, 1.0 / 5.0, 3.0 / 10.0, 4.0 / 5.0, 8.0 / 9.0, 1, 1}

	dpMatrix = [...][]float64{
		nil,
		{1.0 / 5.0},
		{3.0 / 40.0, 9.0 / 40.0},
		{44.0 / 45.0, -56.0 / 15.0, 32.0 / 9.0},
		{19372.0 / 6561.0, -25360.0 / 2187.0, 64448.0 / 6561.0, -212.0 / 729.0},
		{9017.0 / 3168.0, -355.0 / 33.0, 46732.0 / 5247.0, 49.0 / 176.0, -5103.0 / 18656.0},
	}

	dpWeights = []float64{35.0 / 384.0, 0, 500.0 / 1113.0, 125.0 / 192.0, -2187.0 / 6784.0, 11.0 / 84.0}

	// Difference between the fifth- and fourth-order weights, including the
	// first-same-as-last stage evaluated at the new state.
	dpErr = []float64{
		-71.0 / 57600.0,
		0,
		71.0 / 16695.0,
		-71.0 / 1920.0,
		17253.0 / 339200.0,
		-22.0 / 525.0,
		1.0 / 40.0,
	}
)

// RK45 is the Dormand-Prince embedded pair. The step is propagated with the
// fifth-order solution; the fourth-order solution only feeds the error
// estimate.
type RK45 struct{}

func NewRK45() *RK45 {
	return &RK45{}
}

func (r *RK45) Order() int      { return 5 }
func (r *RK45) ErrorOrder() int { return 4 }

func (r *RK45) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	xNew, _ := r.StepWithError(dyn, x, u, t, dt)
	return xNew
}

func (r *RK45) StepWithError(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) (dynamo.State, dynamo.State) {
	n := len(x)
	k := make([]dynamo.State, 7)

	k[0] = dyn.Derive(x, u, t)
	for s := 1; s < 6; s++ {
		xs := combine(make(dynamo.State, n), x, dt, dpMatrix[s], k[:s]...)
		k[s] = dyn.Derive(xs, u, t+dpNodes[s]*dt)
	}

	xNew := combine(make(dynamo.State, n), x, dt, dpWeights, k[:6]...)
	k[6] = dyn.Derive(xNew, u, t+dt)

	errEst := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		acc := 0.0
		for s, e := range dpErr {
			acc += e * k[s][i]
		}
		errEst[i] = dt * acc
	}

	return xNew, errEst
}
