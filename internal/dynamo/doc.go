// Package dynamo provides core simulation primitives for dynamical systems.
//
// The package defines the fundamental interfaces and types for numerical
// simulation of ordinary differential equations (ODEs):
//
//   - [State]: vector representing system state
//   - [System]: interface for ODE systems (dX/dt = f(X, u, t))
//   - [Integrator], [AdaptiveIntegrator]: numerical integrators
//   - [Controller]: feedback controller interface
//   - [Simulator]: orchestrates simulation runs
//
// # Example
//
//	plant := models.NewAutopilotPlant()
//	ctrl := control.NewAutopilotFeedback()
//	sim := dynamo.New(plant, integrators.NewRK45(), ctrl)
//	result, err := sim.Run(ctx, dynamo.State{1, 2}, dynamo.DefaultConfig())
//
// The controller is evaluated inside every derivative evaluation, so the
// integrator always sees the closed-loop vector field.
//
// # Thread Safety
//
// Simulator instances are NOT thread-safe.
package dynamo
