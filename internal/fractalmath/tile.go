package fractalmath

import "fraktile/internal/model"

// GenerateTile runs the kernel named by task.Fractal over every pixel of
// task.Range at task.Resolution, row-major with y outer and x inner
// (pixel index = y*nx + x), and returns one PixelIntensity per pixel.
func GenerateTile(task model.FragmentTask) []model.PixelIntensity {
	nx := int(task.Resolution.NX)
	ny := int(task.Resolution.NY)
	pixels := make([]model.PixelIntensity, nx*ny)

	width := task.Range.Width()
	height := task.Range.Height()

	for y := 0; y < ny; y++ {
		py := task.Range.Min.Y + float64(y)*height/float64(ny)
		for x := 0; x < nx; x++ {
			px := task.Range.Min.X + float64(x)*width/float64(nx)
			zn, count := Generate(task.Fractal, task.MaxIteration, px, py)
			pixels[y*nx+x] = model.PixelIntensity{Zn: float32(zn), Count: float32(count)}
		}
	}
	return pixels
}
