package model

// FragmentRequest is sent by a worker asking for work.
type FragmentRequest struct {
	WorkerName      string `json:"worker_name"`
	MaximalWorkLoad uint32 `json:"maximal_work_load"`
}

// FragmentTask is sent by the server in reply to a FragmentRequest.
type FragmentTask struct {
	ID           U8Data             `json:"id"`
	Fractal      FractalDescriptor  `json:"fractal"`
	MaxIteration uint32             `json:"max_iteration"`
	Resolution   Resolution         `json:"resolution"`
	Range        Range              `json:"range"`
}

// FragmentResult is sent by a worker once it has computed a FragmentTask.
type FragmentResult struct {
	ID         U8Data     `json:"id"`
	Resolution Resolution `json:"resolution"`
	Range      Range      `json:"range"`
	Pixels     U8Data     `json:"pixels"`
}
