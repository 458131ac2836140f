package graphics

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/gen2brain/raylib-go/raygui"

	"fraktile/internal/dispatch"
)

// Window owns the raylib window and canvas texture and drives the
// input-to-state bindings: arrow keys pan, P/M zoom, K cycles fractal, C
// cycles palette, Esc exits.
type Window struct {
	engine *Engine
	state  *dispatch.State
	canvas rl.RenderTexture2D
}

// NewWindow opens a raylib window sized to the engine's canvas.
func NewWindow(engine *Engine, state *dispatch.State) *Window {
	rl.InitWindow(int32(engine.width), int32(engine.height), "fraktile")
	rl.SetTargetFPS(30)
	return &Window{
		engine: engine,
		state:  state,
		canvas: rl.LoadRenderTexture(int32(engine.width), int32(engine.height)),
	}
}

// Close releases the window's GPU resources.
func (w *Window) Close() {
	rl.UnloadTexture(w.canvas.Texture)
	rl.CloseWindow()
}

// ShouldClose reports whether the user requested the window to close.
func (w *Window) ShouldClose() bool {
	return rl.WindowShouldClose()
}

// Frame runs one iteration of the event loop: render pass, draw, input.
func (w *Window) Frame() {
	w.engine.RenderPass()
	w.draw()
	w.processInput()
}

func (w *Window) draw() {
	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	pixels := rgbaToColors(w.engine.FrameBuffer(), w.engine.width, w.engine.height)
	rl.UpdateTexture(w.canvas.Texture, pixels)
	rl.DrawTexture(w.canvas.Texture, 0, 0, rl.RayWhite)

	raygui.SetStyleProperty(raygui.GlobalTextFontsize, 14.0)
	raygui.Label(rl.NewRectangle(4, 4, 160, 16), paletteLabel(w.engine.Palette()))

	rl.EndDrawing()
}

func paletteLabel(kind PaletteKind) string {
	switch kind {
	case Inverted:
		return "Palette: Inverted"
	case Grayscale:
		return "Palette: Grayscale"
	default:
		return "Palette: Classic"
	}
}

func rgbaToColors(buf []byte, width, height int) []rl.Color {
	colors := make([]rl.Color, width*height)
	for i := range colors {
		off := i * 4
		colors[i] = rl.NewColor(buf[off], buf[off+1], buf[off+2], buf[off+3])
	}
	return colors
}

// processInput polls keyboard state and mutates state accordingly, then
// asks state to regenerate tiles (state's mutators already do this
// internally, so this is just the binding layer).
func (w *Window) processInput() {
	const zoomInFactor = 0.9
	const zoomOutFactor = 1.1

	if rl.IsKeyDown(rl.KeyLeft) {
		w.state.MoveLeft()
	}
	if rl.IsKeyDown(rl.KeyRight) {
		w.state.MoveRight()
	}
	if rl.IsKeyDown(rl.KeyUp) {
		w.state.MoveUp()
	}
	if rl.IsKeyDown(rl.KeyDown) {
		w.state.MoveDown()
	}
	if rl.IsKeyPressed(rl.KeyP) {
		w.state.Zoom(zoomInFactor)
	}
	if rl.IsKeyPressed(rl.KeyM) {
		w.state.Zoom(zoomOutFactor)
	}
	if rl.IsKeyPressed(rl.KeyK) {
		w.state.CycleFractal()
	}
	if rl.IsKeyPressed(rl.KeyC) {
		w.engine.CyclePalette()
	}
}
