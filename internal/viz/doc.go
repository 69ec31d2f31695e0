// Package viz provides the live terminal view of an Ising lattice.
//
// [Model] is a Bubble Tea program that sweeps one lattice a batch at a
// time and redraws it every frame, with energy and magnetization history
// rendered by asciigraph. [Picker] is a menu for choosing and tuning a
// preset before handing off to a Model.
//
// # Key Bindings
//
//	Space - Pause/Resume sweeping
//	S     - Run one frame of sweeps
//	R     - Random spin state
//	↑/↓   - Inverse temperature ± 0.001, within [0, 2]
//	←/→   - Field ± 0.1, within [-1, 1]
//	+/-   - Sweeps per frame, within [10, 50]
//	T     - Cycle color themes
//	?     - Show help overlay
//
// Lattices larger than the terminal are coarse-grained: each cell shows
// the sign of the spin sum over a square block.
package viz
