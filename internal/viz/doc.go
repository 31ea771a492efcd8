// Package viz provides terminal visualization for particle pools.
//
//   - [Canvas]: Braille-based pixel canvas; [Canvas.PlotBuffer] projects a
//     render buffer onto it as a side view
//   - [Model]: Bubble Tea live view of a running pool
//   - [PlotAlive]: asciigraph chart of an alive-count series
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	.     - Single step while paused
//	R     - Rebuild the pool from its configuration
//	?     - Show help overlay
//	Q     - Quit
package viz
