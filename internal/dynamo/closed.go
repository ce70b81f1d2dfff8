package dynamo

// ClosedLoop folds the controller into the vector field so that every
// derivative evaluation recomputes the actuation from the evaluated state.
type ClosedLoop struct {
	plant System
	ctrl  Controller
	evals int
}

// Close returns the autonomous system f(x, t) = plant(x, ctrl(x, t), t). A
// nil controller leaves the plant unactuated.
func Close(plant System, ctrl Controller) *ClosedLoop {
	return &ClosedLoop{plant: plant, ctrl: ctrl}
}

func (c *ClosedLoop) Derive(x State, _ Control, t float64) State {
	c.evals++
	var u Control
	if c.ctrl != nil {
		u = c.ctrl.Compute(x, t)
	}
	return c.plant.Derive(x, u, t)
}

func (c *ClosedLoop) StateDim() int   { return c.plant.StateDim() }
func (c *ClosedLoop) ControlDim() int { return 0 }

// Evaluations counts Derive calls since construction.
func (c *ClosedLoop) Evaluations() int { return c.evals }
