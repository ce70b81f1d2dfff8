// Package viz renders simulated trajectories in the terminal.
//
//   - [Show]: interactive Bubble Tea plot that blocks until the user quits
//   - [RenderSeries]: one state component against time, drawn with asciigraph
//   - [RenderPhase]: a phase portrait on the braille [Canvas]
//
// # Key Bindings
//
//	tab        - Plot the next state component
//	p          - Toggle the phase portrait
//	t          - Cycle color themes
//	q/esc      - Quit
package viz
