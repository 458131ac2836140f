// Package model defines the wire-visible data types shared by the server,
// worker, and graphics engine: points, ranges, resolutions, fractal
// descriptors, and the fragment request/task/result trio.
package model

// Point is a coordinate in the complex plane.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}
