package model

// Range is a rectangle in the complex plane, min.x <= max.x and min.y <= max.y.
type Range struct {
	Min Point `json:"min"`
	Max Point `json:"max"`
}

// Width returns the extent of the range along the real axis.
func (r Range) Width() float64 {
	return r.Max.X - r.Min.X
}

// Height returns the extent of the range along the imaginary axis.
func (r Range) Height() float64 {
	return r.Max.Y - r.Min.Y
}

// CenterX returns the real-axis midpoint.
func (r Range) CenterX() float64 {
	return (r.Min.X + r.Max.X) / 2
}

// CenterY returns the imaginary-axis midpoint.
func (r Range) CenterY() float64 {
	return (r.Min.Y + r.Max.Y) / 2
}
