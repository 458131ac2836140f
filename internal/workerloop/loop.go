// Package workerloop implements the compute-node side of the protocol:
// connect, request work, compute it, reconnect, return the result, repeat
// forever. A worker contributes no policy — max_iteration and fractal
// choice come entirely from the task it receives.
package workerloop

import (
	"context"
	"fmt"
	"net"
	"time"

	"fraktile/internal/fractalmath"
	"fraktile/internal/logging"
	"fraktile/internal/model"
	"fraktile/internal/wire"
)

// RetryBackoff is the unconditional delay before retrying after any step
// of the loop fails.
const RetryBackoff = 100 * time.Millisecond

// Loop is one worker's connect/compute/return cycle.
type Loop struct {
	Name            string
	Address         string
	Port            int
	MaximalWorkLoad uint32
	Log             logging.Logger
}

// Run executes the loop until ctx is cancelled. A worker never exits on
// its own; only external cancellation stops it.
func (l *Loop) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		if err := l.cycle(ctx); err != nil {
			l.Log.WithError(err).Warn("worker cycle failed, backing off")
			select {
			case <-ctx.Done():
				return
			case <-time.After(RetryBackoff):
			}
		}
	}
}

func (l *Loop) cycle(ctx context.Context) error {
	task, err := l.requestTask(ctx)
	if err != nil {
		return fmt.Errorf("requesting task: %w", err)
	}

	pixels := fractalmath.GenerateTile(task)

	if err := l.returnResult(ctx, task, pixels); err != nil {
		return fmt.Errorf("returning result: %w", err)
	}
	return nil
}

func (l *Loop) dial(ctx context.Context) (net.Conn, error) {
	var d net.Dialer
	address := fmt.Sprintf("%s:%d", l.Address, l.Port)
	conn, err := d.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, &wire.TransportError{Op: "dial", Err: err}
	}
	return conn, nil
}

func (l *Loop) requestTask(ctx context.Context) (model.FragmentTask, error) {
	conn, err := l.dial(ctx)
	if err != nil {
		return model.FragmentTask{}, err
	}
	defer conn.Close()

	reqJSON, err := wire.EncodeFragmentRequest(model.FragmentRequest{
		WorkerName:      l.Name,
		MaximalWorkLoad: l.MaximalWorkLoad,
	})
	if err != nil {
		return model.FragmentTask{}, err
	}
	if err := wire.Send(conn, reqJSON, nil); err != nil {
		return model.FragmentTask{}, err
	}

	raw, err := wire.ReadRaw(conn)
	if err != nil {
		return model.FragmentTask{}, err
	}
	return wire.DecodeFragmentTask(raw.JSON)
}

func (l *Loop) returnResult(ctx context.Context, task model.FragmentTask, pixels []model.PixelIntensity) error {
	conn, err := l.dial(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	result := model.FragmentResult{
		ID:         task.ID,
		Resolution: task.Resolution,
		Range:      task.Range,
		Pixels: model.U8Data{
			Offset: wire.SignatureSize,
			Count:  uint32(len(pixels) * 8),
		},
	}

	resultJSON, err := wire.EncodeFragmentResult(result)
	if err != nil {
		return err
	}
	payload := wire.EncodeResultPayload(pixels)
	return wire.Send(conn, resultJSON, payload)
}
