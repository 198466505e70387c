// Package dynamo provides the shared primitives of the cradle simulation.
//
// The package is deliberately small and dependency free so that every other
// package can import it:
//
//   - [Vec2]: 2D vector in canvas coordinates (x right, y down)
//   - [RGB]: 8-bit color triple used by the layout and the renderers
//   - domain errors such as [ErrParameterBounds]
//
// # Coordinates
//
// All positions are expressed in canvas pixels with the origin in the top
// left corner and y growing downwards, which is the convention of every
// frontend (raylib, terminal canvas, browser canvas).
package dynamo
