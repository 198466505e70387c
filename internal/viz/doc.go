// Package viz draws a live cradle in the terminal.
//
// The scene is rendered on a braille [Canvas] (2x4 dots per cell) through a
// [Viewport] that keeps the cradle's aspect ratio. The mouse drives the
// session's pointer: press on a bob to grab it, drag to swing it along its
// string, release to let go.
//
// # Key Bindings
//
//	Space   - Pause/Resume
//	.       - Step one frame while paused
//	R       - Reset
//	Up/Down - Add/remove a bob
//	G       - Toggle contact gap
//	M       - Toggle uniform/individual mass
//	1-9 [ ] - Select a bob and change its mass
//	T       - Cycle color themes
//	V       - Toggle GIF recording
//	?       - Help overlay
package viz
