package integrators

import (
	"testing"

	"github.com/san-kum/autopilot/internal/dynamo"
)

func BenchmarkStep(b *testing.B) {
	steppers := map[string]dynamo.Integrator{
		"euler": NewEuler(),
		"rk4":   NewRK4(),
		"rk45":  NewRK45(),
	}
	for name, integ := range steppers {
		b.Run(name, func(b *testing.B) {
			dyn := &harmonicOscillator{}
			x := dynamo.State{1, 0}
			for i := 0; i < b.N; i++ {
				x = integ.Step(dyn, x, nil, 0, 0.01)
			}
		})
	}
}
