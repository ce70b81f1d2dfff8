package integrators

import "github.com/san-kum/autopilot/internal/dynamo"

// Euler is the explicit first-order method. It is mainly useful as a
// baseline against the Runge-Kutta schemes.
type Euler struct{}

func NewEuler() *Euler { return &Euler{} }

func (e *Euler) Order() int { return 1 }

func (e *Euler) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	return combine(make(dynamo.State, len(x)), x, dt, []float64{1}, dyn.Derive(x, u, t))
}
