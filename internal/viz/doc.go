// Package viz renders parsed grid series for people.
//
// Three renderers share one color scale per series, so frames stay
// comparable:
//
//   - [Model]: a Bubble Tea scrubber drawing the current grid with half-block
//     glyphs, next to a stats panel and a grid sum graph
//   - [WriteReport]: an HTML page of go-echarts heatmaps, one per timestep
//   - [WriteGIF]: a looping animation of the timesteps
//
// Grids larger than the target surface are block averaged by [Downsample]
// before drawing. The stored series is never modified.
//
// # Key Bindings
//
//	←/→ h/l  - Step one timestep
//	Home/End - Jump to first or last timestep
//	Space    - Play/Pause
//	T        - Cycle color themes
//	?        - Show help overlay
//	Q        - Quit
package viz
