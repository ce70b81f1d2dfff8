// Package analysis characterizes closed-loop linear systems and the
// trajectories they produce.
//
//   - [ClosedLoopMatrix], [Eigenvalues], [Analyze]: modal stability of A − B·K
//   - [Equilibrium]: steady state reached under the proportional law
//   - [Response]: final value, overshoot and settling time of a trajectory
//   - [DominantFrequency], [PowerSpectrum]: spectral content of a sampled series
//   - [NewPhasePortrait]: two state components plotted against each other
//
// # Example
//
//	report, err := analysis.Analyze(plant.A, plant.B, ctrl.K, ctrl.Setpoint)
//	if err == nil && !report.Stable {
//	    // at least one eigenvalue has a non-negative real part
//	}
package analysis
