package tiling

import "fraktile/internal/model"

// panFraction is the fraction of the current extent a single pan step
// shifts the viewport by, on whichever axis it applies to.
const panFraction = 0.10

// MoveRight shifts both min.x and max.x right by 10% of the current width.
func MoveRight(r model.Range) model.Range {
	delta := r.Width() * panFraction
	r.Min.X += delta
	r.Max.X += delta
	return r
}

// MoveLeft shifts both min.x and max.x left by 10% of the current width.
func MoveLeft(r model.Range) model.Range {
	delta := r.Width() * panFraction
	r.Min.X -= delta
	r.Max.X -= delta
	return r
}

// MoveUp shifts both min.y and max.y by -10% of the current height.
func MoveUp(r model.Range) model.Range {
	delta := r.Height() * panFraction
	r.Min.Y -= delta
	r.Max.Y -= delta
	return r
}

// MoveDown shifts both min.y and max.y by +10% of the current height.
func MoveDown(r model.Range) model.Range {
	delta := r.Height() * panFraction
	r.Min.Y += delta
	r.Max.Y += delta
	return r
}

// Zoom scales the half-extents of r around its center by factor. A factor
// below 1 zooms in, above 1 zooms out.
func Zoom(r model.Range, factor float64) model.Range {
	cx, cy := r.CenterX(), r.CenterY()
	halfW := r.Width() / 2 * factor
	halfH := r.Height() / 2 * factor
	return model.Range{
		Min: model.Point{X: cx - halfW, Y: cy - halfH},
		Max: model.Point{X: cx + halfW, Y: cy + halfH},
	}
}

// CycleFractal advances current modulo count, wrapping to 0. count must be
// positive; the caller (ServerState) guarantees a non-empty fractal list.
func CycleFractal(current, count int) int {
	return (current + 1) % count
}
