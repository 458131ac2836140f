package fractalmath

import (
	"testing"

	"fraktile/internal/model"
)

func TestMandelbrotOriginNeverEscapes(t *testing.T) {
	desc := model.FractalDescriptor{Mandelbrot: &model.MandelbrotParams{}}
	_, count := Generate(desc, 256, 0, 0)
	if count != 256 {
		t.Errorf("count = %v, want 256 (origin is in the set)", count)
	}
}

func TestMandelbrotFarPointEscapesImmediately(t *testing.T) {
	desc := model.FractalDescriptor{Mandelbrot: &model.MandelbrotParams{}}
	_, count := Generate(desc, 256, 10, 10)
	if count != 1 {
		t.Errorf("count = %v, want 1 (z starts at 0, so the point escapes after the first iteration)", count)
	}
}

func TestJuliaRespectsMaxIteration(t *testing.T) {
	desc := model.FractalDescriptor{
		Julia: &model.JuliaParams{C: model.Point{X: -0.8, Y: 0.156}, DivergenceThresholdSquare: 4},
	}
	_, count := Generate(desc, 10, 0, 0)
	if count > 10 {
		t.Errorf("count = %v, must not exceed maxIteration 10", count)
	}
}

func TestNewtonRaphsonZ3ConvergesNearARoot(t *testing.T) {
	desc := model.FractalDescriptor{NewtonRaphsonZ3: &model.NewtonRaphsonZ3Params{}}
	_, count := Generate(desc, 64, 1.0, 0.0)
	if count >= 64 {
		t.Errorf("count = %v, want < 64 (1+0i is a root, so the iteration converges before maxIteration)", count)
	}
}

func TestGenerateTileProducesRowMajorPixelCount(t *testing.T) {
	task := model.FragmentTask{
		Fractal:      model.FractalDescriptor{Mandelbrot: &model.MandelbrotParams{}},
		MaxIteration: 32,
		Resolution:   model.Resolution{NX: 8, NY: 4},
		Range: model.Range{
			Min: model.Point{X: -2, Y: -1},
			Max: model.Point{X: 1, Y: 1},
		},
	}
	pixels := GenerateTile(task)
	if len(pixels) != 8*4 {
		t.Fatalf("got %d pixels, want 32", len(pixels))
	}
}
