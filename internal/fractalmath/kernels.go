// Package fractalmath implements the pure per-pixel kernels: Julia,
// Mandelbrot, IteratedSinZ, and Newton-Raphson (z^3, z^4). Each kernel is
// total (never panics, never loops unboundedly) and returns
// (zn_sq_or_arg, iterations) as spec'd.
package fractalmath

import (
	"math"
	"math/cmplx"

	"fraktile/internal/model"
)

// Generate dispatches to the kernel named by the active variant of
// descriptor and returns its (zn, iterations) pair for world coordinates
// (x, y), iterating at most maxIteration times.
func Generate(descriptor model.FractalDescriptor, maxIteration uint32, x, y float64) (float64, float64) {
	switch {
	case descriptor.Julia != nil:
		return julia(descriptor.Julia, maxIteration, x, y)
	case descriptor.Mandelbrot != nil:
		return mandelbrot(maxIteration, x, y)
	case descriptor.IteratedSinZ != nil:
		return iteratedSinZ(descriptor.IteratedSinZ, maxIteration, x, y)
	case descriptor.NewtonRaphsonZ3 != nil:
		return newtonRaphson(3, maxIteration, x, y)
	case descriptor.NewtonRaphsonZ4 != nil:
		return newtonRaphson(4, maxIteration, x, y)
	default:
		// KernelError is not expected to occur (kernels are total); a
		// descriptor with no active variant cannot be produced by the
		// planner, so this signals NaN per the renderer's documented
		// "treat NaN as t=0" fallback rather than panicking.
		return math.NaN(), math.NaN()
	}
}

func julia(p *model.JuliaParams, maxIteration uint32, x, y float64) (float64, float64) {
	z := complex(x, y)
	c := complex(p.C.X, p.C.Y)
	threshold := p.DivergenceThresholdSquare

	var i uint32
	for ; i < maxIteration; i++ {
		if sqMagnitude(z) >= threshold {
			break
		}
		z = z*z + c
	}
	return sqMagnitude(z), float64(i)
}

func mandelbrot(maxIteration uint32, x, y float64) (float64, float64) {
	z := complex(0, 0)
	c := complex(x, y)

	var i uint32
	for ; i < maxIteration; i++ {
		if sqMagnitude(z) >= 4 {
			break
		}
		z = z*z + c
	}
	return sqMagnitude(z), float64(i)
}

func iteratedSinZ(p *model.IteratedSinZParams, maxIteration uint32, x, y float64) (float64, float64) {
	z := complex(x, y)
	c := complex(p.C.X, p.C.Y)

	var i uint32
	for ; i < maxIteration; i++ {
		if sqMagnitude(z) >= 50 {
			break
		}
		z = cmplx.Sin(z) * c
	}
	return sqMagnitude(z), float64(i)
}

// newtonRaphson iterates z <- z - f(z)/f'(z) for f(z) = z^k - 1, k in {3,4}.
func newtonRaphson(k int, maxIteration uint32, x, y float64) (float64, float64) {
	const tolerance = 1e-6
	z := complex(x, y)

	var i uint32
	for ; i < maxIteration; i++ {
		fz := cmplx.Pow(z, complex(float64(k), 0)) - 1
		fpz := complex(float64(k), 0) * cmplx.Pow(z, complex(float64(k-1), 0))
		if fpz == 0 {
			break
		}
		next := z - fz/fpz
		delta := next - z
		z = next
		if sqMagnitude(delta) < tolerance {
			i++
			break
		}
	}

	convergence := 1.0
	if i < maxIteration {
		logSq := math.Log10(sqMagnitude(z))
		convergence = 0.5 - 0.5*math.Cos(0.1*(float64(i)-logSq/math.Log10(tolerance)))
	}

	return cmplx.Phase(z), float64(i) * convergence
}

func sqMagnitude(z complex128) float64 {
	re, im := real(z), imag(z)
	return re*re + im*im
}
