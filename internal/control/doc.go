// Package control provides feedback controllers for the linear plant.
//
// Controllers implement the [dynamo.Controller] interface to compute
// control inputs based on system state:
//
//   - [StateFeedback]: proportional state feedback u = K·(r − x)
//   - [None]: zero actuation (open loop)
//
// # Usage
//
//	ctrl := control.NewAutopilotFeedback()
//	sim := dynamo.New(plant, integ, ctrl)
//	// Compute runs inside every derivative evaluation
package control
