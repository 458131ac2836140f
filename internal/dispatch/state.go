// Package dispatch owns ServerState: the current fractal selection,
// viewport, tile queue, and worker registry, plus the channel endpoints
// feeding the renderer and portal. All mutation happens under a single
// exclusive mutex held for the minimum necessary span, never across a
// channel send or network I/O.
package dispatch

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"fraktile/internal/logging"
	"fraktile/internal/model"
	"fraktile/internal/tiling"
	"fraktile/internal/wire"
)

// MaxIterationDefault is the iteration budget assigned to every freshly
// created fragment task.
const MaxIterationDefault = 256

// RenderChannelCapacity is the bounded capacity of the render and portal
// channels; sends beyond this drop with a warning rather than block.
const RenderChannelCapacity = 32

// State is the single process-wide mutable object of the server. It is
// always passed explicitly to the components that need it — never a
// hidden package-level singleton.
type State struct {
	mu sync.Mutex

	planner         *tiling.Planner
	viewport        model.Range
	queue           []model.Range
	fractals        []model.FractalDescriptor
	currentFractal  int
	workers         map[string]model.WorkerInfo

	renderTx chan model.RenderingData
	portalTx chan model.RenderingData // nil when the portal is disabled

	log logging.Logger
}

// New constructs a ServerState over the given planner, initial viewport,
// and ordered list of selectable fractals (must be non-empty), and
// immediately regenerates the tile queue for the initial viewport.
func New(planner *tiling.Planner, viewport model.Range, fractals []model.FractalDescriptor, log logging.Logger) *State {
	s := &State{
		planner:  planner,
		viewport: viewport,
		fractals: fractals,
		workers:  make(map[string]model.WorkerInfo),
		renderTx: make(chan model.RenderingData, RenderChannelCapacity),
		log:      log,
	}
	s.RegenerateTiles()
	return s
}

// EnablePortal attaches a portal channel; NotifyPortal is a no-op until
// this is called.
func (s *State) EnablePortal() <-chan model.RenderingData {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.portalTx = make(chan model.RenderingData, RenderChannelCapacity)
	return s.portalTx
}

// RenderChannel returns the channel the graphics engine's inbox consumer
// drains.
func (s *State) RenderChannel() <-chan model.RenderingData {
	return s.renderTx
}

// RegenerateTiles empties the tile queue and refills it with the current
// viewport's partition. Must be called under s.mu or immediately after
// construction, before any other goroutine can observe s.
func (s *State) RegenerateTiles() {
	tiles := s.planner.Partition(s.viewport)
	s.queue = s.queue[:0]
	for _, t := range tiles {
		s.queue = append(s.queue, t.Range)
	}
}

// DequeueTask pops one tile range off the queue, FIFO.
func (s *State) DequeueTask() (model.Range, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dequeueLocked()
}

func (s *State) dequeueLocked() (model.Range, bool) {
	if len(s.queue) == 0 {
		return model.Range{}, false
	}
	r := s.queue[0]
	s.queue = s.queue[1:]
	return r, true
}

// EnqueueTask pushes a tile back onto the queue (used to re-queue on
// failure elsewhere; the current protocol never calls this itself since a
// dispatched-but-unreturned task is simply lost until the next
// regeneration, per spec).
func (s *State) EnqueueTask(r model.Range) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = append(s.queue, r)
}

// resolutionFor recovers the pixel resolution assigned to tile r by
// re-partitioning the current viewport. This is O(tiles) but tiles are
// cheap and tile counts are small (a handful to a few hundred).
func (s *State) resolutionFor(r model.Range) model.Resolution {
	for _, t := range s.planner.Partition(s.viewport) {
		if t.Range == r {
			return t.Resolution
		}
	}
	// Viewport has moved since r was queued; fall back to an even split.
	return model.Resolution{
		NX: uint16(s.planner.Width / s.planner.TilesPerAxis),
		NY: uint16(s.planner.Height / s.planner.TilesPerAxis),
	}
}

// CreateFragmentTask pops a tile (regenerating once if the queue is empty)
// and wraps it with the current fractal descriptor, the default iteration
// budget, and a fresh id placeholder. Returns false only if the fractal
// list is empty, which the caller must never allow.
func (s *State) CreateFragmentTask() (model.FragmentTask, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.fractals) == 0 {
		return model.FragmentTask{}, false
	}

	r, ok := s.dequeueLocked()
	if !ok {
		s.RegenerateTiles()
		r, ok = s.dequeueLocked()
		if !ok {
			return model.FragmentTask{}, false
		}
	}

	// Task id is never used to correlate a request to its result (spec
	// open question); this uuid only gives the field a stable shape.
	id := uuid.New()

	return model.FragmentTask{
		ID:           model.U8Data{Offset: 0, Count: uint32(len(id))},
		Fractal:      s.fractals[s.currentFractal],
		MaxIteration: MaxIterationDefault,
		Resolution:   s.resolutionFor(r),
		Range:        r,
	}, true
}

// RegisterWorker is idempotent: the most recent call for a given endpoint
// wins.
func (s *State) RegisterWorker(endpoint string, info model.WorkerInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	info.LastSeen = time.Now()
	s.workers[endpoint] = info
}

// GetWorker is a read-only registry lookup.
func (s *State) GetWorker(endpoint string) (model.WorkerInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.workers[endpoint]
	return w, ok
}

// MoveRight pans the viewport right and regenerates the tile queue.
func (s *State) MoveRight() { s.mutateViewport(tiling.MoveRight) }

// MoveLeft pans the viewport left and regenerates the tile queue.
func (s *State) MoveLeft() { s.mutateViewport(tiling.MoveLeft) }

// MoveUp pans the viewport up and regenerates the tile queue.
func (s *State) MoveUp() { s.mutateViewport(tiling.MoveUp) }

// MoveDown pans the viewport down and regenerates the tile queue.
func (s *State) MoveDown() { s.mutateViewport(tiling.MoveDown) }

// Zoom scales the viewport around its center and regenerates the tile
// queue.
func (s *State) Zoom(factor float64) {
	s.mutateViewport(func(r model.Range) model.Range { return tiling.Zoom(r, factor) })
}

func (s *State) mutateViewport(f func(model.Range) model.Range) {
	s.mu.Lock()
	s.viewport = f(s.viewport)
	s.RegenerateTiles()
	s.mu.Unlock()
}

// CycleFractal advances the current fractal selection modulo the fractal
// count and regenerates the tile queue.
func (s *State) CycleFractal() {
	s.mu.Lock()
	s.currentFractal = tiling.CycleFractal(s.currentFractal, len(s.fractals))
	s.RegenerateTiles()
	s.mu.Unlock()
}

// Viewport returns a snapshot of the current viewport.
func (s *State) Viewport() model.Range {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewport
}

// Planner exposes the configured tile planner for callers (the graphics
// engine's blit pass) needing CanvasOrigin projections.
func (s *State) Planner() *tiling.Planner {
	return s.planner
}

// NotifyPortal snapshots nothing itself (the render pipeline already
// builds the RenderingData); it exists so callers have a single named
// entry point matching the spec's contract. It sends non-blocking and
// drops on a full or disabled channel.
func (s *State) NotifyPortal(data model.RenderingData) {
	s.mu.Lock()
	ch := s.portalTx
	s.mu.Unlock()

	if ch == nil {
		return
	}
	select {
	case ch <- data:
	default:
		s.log.Warn("portal channel full, dropping rendering data")
	}
}

// ProcessFragmentResult implements the server-side handling of an inbound
// FragmentResult: decode pixels past the signature prefix, resolve the
// producing worker's name (synthesizing one if unknown), and forward a
// RenderingData to both the render and portal channels, non-blocking.
func (s *State) ProcessFragmentResult(result model.FragmentResult, payload []byte, endpoint string) error {
	pixels, err := wire.DecodePixels(payload, result.Pixels.Offset)
	if err != nil {
		return err
	}

	workerName := "worker-" + uuid.NewString()
	if w, ok := s.GetWorker(endpoint); ok {
		workerName = w.Name
	}

	iterations := make([]float64, len(pixels))
	for i, p := range pixels {
		iterations[i] = float64(p.Count)
	}

	data := model.RenderingData{
		Result:     result,
		Iterations: iterations,
		Worker:     workerName,
	}

	select {
	case s.renderTx <- data:
	default:
		s.log.Warn("render channel full, dropping rendering data")
	}
	s.NotifyPortal(data)
	return nil
}

// ProcessFragmentRequest implements the server-side handling of an inbound
// FragmentRequest: register/refresh the worker under its connection
// endpoint, then produce a task.
func (s *State) ProcessFragmentRequest(req model.FragmentRequest, endpoint string) (model.FragmentTask, bool) {
	s.RegisterWorker(endpoint, model.WorkerInfo{
		Name:            req.WorkerName,
		MaximalWorkLoad: req.MaximalWorkLoad,
	})
	return s.CreateFragmentTask()
}
