package model

import (
	"encoding/json"
	"fmt"
)

// JuliaParams are the parameters of a Julia set: z <- z^2 + c.
type JuliaParams struct {
	C                         Point   `json:"c"`
	DivergenceThresholdSquare float64 `json:"divergence_threshold_square"`
}

// MandelbrotParams carries no parameters; the variant itself is the signal.
type MandelbrotParams struct{}

// IteratedSinZParams are the parameters of the z <- sin(z)*c process.
type IteratedSinZParams struct {
	C Point `json:"c"`
}

// NewtonRaphsonZ3Params carries no parameters: f(z) = z^3 - 1.
type NewtonRaphsonZ3Params struct{}

// NewtonRaphsonZ4Params carries no parameters: f(z) = z^4 - 1.
type NewtonRaphsonZ4Params struct{}

// FractalDescriptor is a tagged sum over the five supported fractal kernels.
// Exactly one field is non-nil; JSON serializes it with the variant name as
// the sole outer key, e.g. {"Julia": {...}} or {"Mandelbrot": {}}.
type FractalDescriptor struct {
	Julia           *JuliaParams           `json:"-"`
	Mandelbrot      *MandelbrotParams      `json:"-"`
	IteratedSinZ    *IteratedSinZParams    `json:"-"`
	NewtonRaphsonZ3 *NewtonRaphsonZ3Params `json:"-"`
	NewtonRaphsonZ4 *NewtonRaphsonZ4Params `json:"-"`
}

// Kind names the active variant, matching its JSON outer key.
func (f FractalDescriptor) Kind() string {
	switch {
	case f.Julia != nil:
		return "Julia"
	case f.Mandelbrot != nil:
		return "Mandelbrot"
	case f.IteratedSinZ != nil:
		return "IteratedSinZ"
	case f.NewtonRaphsonZ3 != nil:
		return "NewtonRaphsonZ3"
	case f.NewtonRaphsonZ4 != nil:
		return "NewtonRaphsonZ4"
	default:
		return ""
	}
}

// MarshalJSON emits the single-key variant envelope.
func (f FractalDescriptor) MarshalJSON() ([]byte, error) {
	switch {
	case f.Julia != nil:
		return json.Marshal(map[string]JuliaParams{"Julia": *f.Julia})
	case f.Mandelbrot != nil:
		return json.Marshal(map[string]MandelbrotParams{"Mandelbrot": {}})
	case f.IteratedSinZ != nil:
		return json.Marshal(map[string]IteratedSinZParams{"IteratedSinZ": *f.IteratedSinZ})
	case f.NewtonRaphsonZ3 != nil:
		return json.Marshal(map[string]NewtonRaphsonZ3Params{"NewtonRaphsonZ3": {}})
	case f.NewtonRaphsonZ4 != nil:
		return json.Marshal(map[string]NewtonRaphsonZ4Params{"NewtonRaphsonZ4": {}})
	default:
		return nil, fmt.Errorf("model: fractal descriptor has no active variant")
	}
}

// UnmarshalJSON decodes the single-key variant envelope.
func (f *FractalDescriptor) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 1 {
		return fmt.Errorf("model: fractal descriptor envelope must have exactly one key, got %d", len(raw))
	}
	*f = FractalDescriptor{}
	for key, body := range raw {
		switch key {
		case "Julia":
			var p JuliaParams
			if err := json.Unmarshal(body, &p); err != nil {
				return fmt.Errorf("model: decoding Julia: %w", err)
			}
			f.Julia = &p
		case "Mandelbrot":
			f.Mandelbrot = &MandelbrotParams{}
		case "IteratedSinZ":
			var p IteratedSinZParams
			if err := json.Unmarshal(body, &p); err != nil {
				return fmt.Errorf("model: decoding IteratedSinZ: %w", err)
			}
			f.IteratedSinZ = &p
		case "NewtonRaphsonZ3":
			f.NewtonRaphsonZ3 = &NewtonRaphsonZ3Params{}
		case "NewtonRaphsonZ4":
			f.NewtonRaphsonZ4 = &NewtonRaphsonZ4Params{}
		default:
			return fmt.Errorf("model: unknown fractal variant %q", key)
		}
	}
	return nil
}
