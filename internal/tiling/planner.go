// Package tiling partitions a viewport into a grid of tiles, each carrying
// its own pixel resolution, and projects tile pixel coordinates back onto
// canvas coordinates. It also implements the pure pan/zoom/cycle mutators
// the spec assigns to the tile planner.
package tiling

import (
	"math"

	"fraktile/internal/model"
)

// Tile is one sub-rectangle of the viewport paired with its pixel
// resolution, in deterministic row-major (top-left first) order.
type Tile struct {
	Range      model.Range
	Resolution model.Resolution
}

// Planner holds the canvas geometry and tiling factor; it is stateless
// beyond that configuration; the mutable viewport and tile queue live in
// internal/dispatch.State.
type Planner struct {
	Width        int
	Height       int
	TilesPerAxis int
}

// New returns a Planner for the given canvas size and tiling factor.
func New(width, height, tilesPerAxis int) *Planner {
	if tilesPerAxis < 1 {
		tilesPerAxis = 1
	}
	return &Planner{Width: width, Height: height, TilesPerAxis: tilesPerAxis}
}

// Partition splits viewport into TilesPerAxis^2 sub-rectangles of equal
// complex-plane size, each assigned a pixel resolution of roughly
// Width/TilesPerAxis x Height/TilesPerAxis; residual pixels (when the
// canvas size doesn't divide evenly) are spread one pixel each over the
// trailing columns/rows (see splitEvenly) so the resolutions sum to exactly
// Width x Height. Order is row-major starting top-left.
func (p *Planner) Partition(viewport model.Range) []Tile {
	n := p.TilesPerAxis
	tiles := make([]Tile, 0, n*n)

	colWidths := splitEvenly(p.Width, n)
	rowHeights := splitEvenly(p.Height, n)

	cellW := viewport.Width() / float64(n)
	cellH := viewport.Height() / float64(n)

	for row := 0; row < n; row++ {
		minY := viewport.Min.Y + float64(row)*cellH
		maxY := minY + cellH
		if row == n-1 {
			maxY = viewport.Max.Y
		}
		for col := 0; col < n; col++ {
			minX := viewport.Min.X + float64(col)*cellW
			maxX := minX + cellW
			if col == n-1 {
				maxX = viewport.Max.X
			}
			tiles = append(tiles, Tile{
				Range: model.Range{
					Min: model.Point{X: minX, Y: minY},
					Max: model.Point{X: maxX, Y: maxY},
				},
				Resolution: model.Resolution{
					NX: uint16(colWidths[col]),
					NY: uint16(rowHeights[row]),
				},
			})
		}
	}
	return tiles
}

// splitEvenly divides total into n non-negative integer parts summing
// exactly to total, via integer division with the residual distributed one
// unit at a time onto the trailing parts so totals always reconcile.
func splitEvenly(total, n int) []int {
	base := total / n
	residual := total % n
	parts := make([]int, n)
	for i := range parts {
		parts[i] = base
	}
	for i := n - residual; i < n; i++ {
		parts[i]++
	}
	return parts
}

// CanvasOrigin projects a tile's complex-plane range onto integer canvas
// pixel coordinates given the current viewport, for the graphics engine's
// blit pass.
func (p *Planner) CanvasOrigin(viewport model.Range, tileRange model.Range) (int, int) {
	startX := int(math.Floor((tileRange.Min.X - viewport.Min.X) / viewport.Width() * float64(p.Width)))
	startY := int(math.Floor((tileRange.Min.Y - viewport.Min.Y) / viewport.Height() * float64(p.Height)))
	return startX, startY
}
