package graphics

import (
	"context"
	"math"
	"sync"
	"time"

	"fraktile/internal/dispatch"
	"fraktile/internal/logging"
	"fraktile/internal/model"
)

// InboxShards is the number of slots in the sharded rendering inbox.
const InboxShards = 10

// Engine owns the RGBA frame-buffer and the sharded inbox that absorbs
// out-of-order, variable-sized fragment results without tearing the
// display: each shard holds at most one pending RenderingData, written by
// a linear-probe consumer goroutine and drained by the render pass.
type Engine struct {
	state   *dispatch.State
	log     logging.Logger
	width   int
	height  int
	palette PaletteKind

	fbMu      sync.Mutex
	frameBuf  []byte // width*height*4 RGBA, alpha always 0xFF

	shardMu sync.Mutex
	shards  [InboxShards]*model.RenderingData
}

// New builds an Engine sized to the server's canvas.
func New(state *dispatch.State, log logging.Logger, width, height int) *Engine {
	fb := make([]byte, width*height*4)
	for i := 3; i < len(fb); i += 4 {
		fb[i] = 0xFF
	}
	return &Engine{
		state:    state,
		log:      log,
		width:    width,
		height:   height,
		frameBuf: fb,
	}
}

// ConsumeInbox drains the render channel into the first empty shard
// (linear probe) until ctx is cancelled. A full inbox blocks the probe
// briefly, which is an acceptable ~10ms latency budget per spec rather
// than dropping already-accepted results a second time.
func (e *Engine) ConsumeInbox(ctx context.Context) {
	ch := e.state.RenderChannel()
	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-ch:
			if !ok {
				return
			}
			for !e.placeInShard(data) {
				select {
				case <-ctx.Done():
					return
				case <-time.After(10 * time.Millisecond):
				}
			}
		}
	}
}

// placeInShard stores data in the first empty shard and reports whether
// one was free.
func (e *Engine) placeInShard(data model.RenderingData) bool {
	e.shardMu.Lock()
	defer e.shardMu.Unlock()
	for i := range e.shards {
		if e.shards[i] == nil {
			d := data
			e.shards[i] = &d
			return true
		}
	}
	return false
}

// RenderPass iterates the shards; for each occupied one it takes the value
// out (leaving it empty) and blits it into the frame-buffer, clipping any
// pixel whose projected canvas coordinate falls outside the buffer.
func (e *Engine) RenderPass() {
	viewport := e.state.Viewport()
	planner := e.state.Planner()

	e.shardMu.Lock()
	var batch []*model.RenderingData
	for i := range e.shards {
		if e.shards[i] != nil {
			batch = append(batch, e.shards[i])
			e.shards[i] = nil
		}
	}
	e.shardMu.Unlock()

	e.fbMu.Lock()
	defer e.fbMu.Unlock()
	for _, data := range batch {
		e.blit(viewport, planner.CanvasOrigin, data)
	}
}

func (e *Engine) blit(viewport model.Range, canvasOrigin func(model.Range, model.Range) (int, int), data *model.RenderingData) {
	startX, startY := canvasOrigin(viewport, data.Result.Range)
	nx := int(data.Result.Resolution.NX)
	ny := int(data.Result.Resolution.NY)

	for y := 0; y < ny; y++ {
		canvasY := startY + y
		if canvasY < 0 || canvasY >= e.height {
			continue
		}
		for x := 0; x < nx; x++ {
			canvasX := startX + x
			if canvasX < 0 || canvasX >= e.width {
				continue
			}
			idx := y*nx + x
			if idx >= len(data.Iterations) {
				continue
			}
			t := data.Iterations[idx]
			if math.IsNaN(t) {
				t = 0
			} else {
				t = t / float64(maxIterationHint(data))
			}
			r, g, b := Colorize(e.palette, t)
			e.setPixel(canvasX, canvasY, r, g, b)
		}
	}
}

// maxIterationHint recovers a normalization denominator for the iteration
// count. The wire protocol does not echo max_iteration on a result, so the
// dispatcher's fixed default is used. Newton-Raphson counts are the
// iteration count scaled by a convergence factor in [0,1], so they also
// fall within [0, max_iteration].
func maxIterationHint(data *model.RenderingData) float64 {
	return float64(dispatch.MaxIterationDefault)
}

func (e *Engine) setPixel(x, y int, r, g, b uint8) {
	idx := (y*e.width + x) * 4
	e.frameBuf[idx] = r
	e.frameBuf[idx+1] = g
	e.frameBuf[idx+2] = b
	e.frameBuf[idx+3] = 0xFF
}

// FrameBuffer returns the current RGBA bytes for upload to the GPU
// texture. The returned slice is only safe to read until the next
// RenderPass call; callers should copy or upload promptly.
func (e *Engine) FrameBuffer() []byte {
	e.fbMu.Lock()
	defer e.fbMu.Unlock()
	return e.frameBuf
}

// CyclePalette advances to the next palette.
func (e *Engine) CyclePalette() {
	e.palette = e.palette.Next()
}

// Palette returns the active palette kind.
func (e *Engine) Palette() PaletteKind {
	return e.palette
}
