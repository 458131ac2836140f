// Package netserver implements the accept loop and per-connection handler:
// one goroutine per accepted TCP connection, reading exactly one framed
// message, classifying it, and servicing it against a dispatch.State.
package netserver

import (
	"context"
	"errors"
	"net"

	"fraktile/internal/dispatch"
	"fraktile/internal/logging"
	"fraktile/internal/model"
	"fraktile/internal/wire"
)

// Server accepts connections and dispatches each framed message against
// state.
type Server struct {
	State *dispatch.State
	Log   logging.Logger
}

// New builds a Server bound to state.
func New(state *dispatch.State, log logging.Logger) *Server {
	return &Server{State: state, Log: log}
}

// Run listens on address and serves connections until ctx is cancelled or
// the listener dies. It closes the listener on cancellation so the accept
// loop unblocks and returns.
func (s *Server) Run(ctx context.Context, address string) error {
	lc := net.ListenConfig{}
	listener, err := lc.Listen(ctx, "tcp", address)
	if err != nil {
		return &wire.TransportError{Op: "listen", Err: err}
	}

	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return &wire.TransportError{Op: "accept", Err: err}
			}
			var netErr net.Error
			if errors.As(err, &netErr) {
				s.Log.WithError(err).Warn("accept failed, continuing")
				continue
			}
			return &wire.TransportError{Op: "accept", Err: err}
		}
		go s.handleConn(conn)
	}
}

// handleConn services exactly one framed message then closes the
// connection. Any transport or protocol error is terminal for this
// connection only.
func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()
	endpoint := conn.RemoteAddr().String()
	log := s.Log.WithField("remote", endpoint)

	raw, err := wire.ReadRaw(conn)
	if err != nil {
		log.WithError(err).Error("reading frame")
		return
	}

	if result, ok, err := wire.DecodeFragmentResult(raw.JSON); err != nil {
		log.WithError(err).Error("decoding FragmentResult")
		return
	} else if ok {
		if err := s.State.ProcessFragmentResult(result, raw.Binary, endpoint); err != nil {
			log.WithError(err).Error("processing FragmentResult")
		}
		return
	}

	if req, ok, err := wire.DecodeFragmentRequest(raw.JSON); err != nil {
		log.WithError(err).Error("decoding FragmentRequest")
		return
	} else if ok {
		s.serveRequest(conn, req, endpoint, log)
		return
	}

	log.Error("unrecognized message header, closing connection")
}

// serveRequest registers/refreshes the worker, produces a task, and sends
// it back over the same connection with a 16-byte zero signature. If no
// task can be produced (only possible with an empty fractal list, which is
// disallowed at startup), the connection is logged and closed.
func (s *Server) serveRequest(conn net.Conn, req model.FragmentRequest, endpoint string, log logging.Logger) {
	task, ok := s.State.ProcessFragmentRequest(req, endpoint)
	if !ok {
		log.Error("no fragment task available, closing connection")
		return
	}

	taskJSON, err := wire.EncodeFragmentTask(task)
	if err != nil {
		log.WithError(err).Error("encoding FragmentTask")
		return
	}

	signature := make([]byte, wire.SignatureSize)
	if err := wire.Send(conn, taskJSON, signature); err != nil {
		log.WithError(err).Error("sending FragmentTask")
	}
}
