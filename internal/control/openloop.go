package control

import "github.com/san-kum/autopilot/internal/dynamo"

// OpenLoop applies no actuation, so the plant evolves under A alone.
type OpenLoop struct {
	inputs int
}

func NewOpenLoop(inputs int) *OpenLoop { return &OpenLoop{inputs: inputs} }

func (o *OpenLoop) Compute(dynamo.State, float64) dynamo.Control {
	return make(dynamo.Control, o.inputs)
}
