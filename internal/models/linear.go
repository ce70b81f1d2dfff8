package models

import (
	"fmt"

	"github.com/san-kum/autopilot/internal/dynamo"
	"gonum.org/v1/gonum/mat"
)

// Open-loop dynamics of the autopilot proof: a lightly damped oscillator
// actuated through its velocity.
var (
	AutopilotPlantMatrix = [][]float64{
		{0.0, 1.0},
		{-1.0, -0.1},
	}
	AutopilotActuation = [][]float64{
		{0.0},
		{1.0},
	}
)

// LinearPlant is the time-invariant system dx/dt = A·x + B·u.
type LinearPlant struct {
	A *mat.Dense
	B *mat.Dense
}

// NewLinearPlant copies a (n×n) and b (n×m). Mismatched shapes are rejected
// with dynamo.ErrDimensionMismatch.
func NewLinearPlant(a, b mat.Matrix) (*LinearPlant, error) {
	r, c := a.Dims()
	if r != c {
		return nil, fmt.Errorf("%w: plant matrix is %dx%d, want square", dynamo.ErrDimensionMismatch, r, c)
	}
	br, _ := b.Dims()
	if br != r {
		return nil, fmt.Errorf("%w: actuation has %d rows, plant has %d states", dynamo.ErrDimensionMismatch, br, r)
	}
	return &LinearPlant{A: mat.DenseCopyOf(a), B: mat.DenseCopyOf(b)}, nil
}

// NewAutopilotPlant returns the plant A = [[0, 1], [-1, -0.1]], B = [0, 1]ᵀ.
func NewAutopilotPlant() *LinearPlant {
	a, _ := Dense(AutopilotPlantMatrix)
	b, _ := Dense(AutopilotActuation)
	return &LinearPlant{A: a, B: b}
}

func (p *LinearPlant) StateDim() int {
	n, _ := p.A.Dims()
	return n
}

func (p *LinearPlant) ControlDim() int {
	_, m := p.B.Dims()
	return m
}

func (p *LinearPlant) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	n := p.StateDim()

	dx := mat.NewVecDense(n, nil)
	dx.MulVec(p.A, mat.NewVecDense(n, x))

	if len(u) > 0 {
		var bu mat.VecDense
		bu.MulVec(p.B, mat.NewVecDense(len(u), u))
		dx.AddVec(dx, &bu)
	}

	return dynamo.State(dx.RawVector().Data)
}
