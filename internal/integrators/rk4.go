package integrators

import "github.com/san-kum/autopilot/internal/dynamo"

// RK4 is the classical fourth-order Runge-Kutta method.
type RK4 struct {
	scratch dynamo.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Order() int { return 4 }

func (r *RK4) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	n := len(x)
	if len(r.scratch) != n {
		r.scratch = make(dynamo.State, n)
	}

	k1 := dyn.Derive(x, u, t)
	k2 := dyn.Derive(combine(r.scratch, x, dt, []float64{0.5}, k1), u, t+dt*0.5)
	k3 := dyn.Derive(combine(r.scratch, x, dt, []float64{0, 0.5}, k1, k2), u, t+dt*0.5)
	k4 := dyn.Derive(combine(r.scratch, x, dt, []float64{0, 0, 1}, k1, k2, k3), u, t+dt)

	return combine(make(dynamo.State, n), x, dt, []float64{1.0 / 6, 1.0 / 3, 1.0 / 3, 1.0 / 6}, k1, k2, k3, k4)
}

// combine writes x + dt*sum(w[i]*ks[i]) into dst and returns it.
func combine(dst, x dynamo.State, dt float64, w []float64, ks ...dynamo.State) dynamo.State {
	for i := range x {
		acc := 0.0
		for j, k := range ks {
			if w[j] != 0 {
				acc += w[j] * k[i]
			}
		}
		dst[i] = x[i] + dt*acc
	}
	return dst
}
