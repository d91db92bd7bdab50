// Package viz renders a simulation in the terminal and hosts the live
// painting studio on Bubble Tea.
//
//   - [Render]: half-block colour rendering of one view of the grid
//   - [Image]: the same view at full grid resolution
//   - [WetMap]: Braille mask of the wet region
//   - [Model]: interactive studio
//
// Rendering only reads the field slices, between frames.
//
// # Key Bindings
//
//	w/a/s/d, arrows - Move the brush
//	Enter           - Pen down/up
//	Space           - Pause/Resume
//	Tab, +/-        - Select and tune a control
//	[ ]             - Brush size
//	B               - Cycle brush type
//	V               - Cycle view
//	U / Ctrl+R      - Undo / Redo
//	C               - Clear
//	P               - New paper
//	R               - Start/stop recording
//	T               - Cycle themes
//	?               - Help
package viz
