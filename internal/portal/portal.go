// Package portal mirrors the server's rendering stream to any number of
// remote UIs over WebSocket: each RenderingData read off the portal
// channel is pushed as a JSON text frame to every connected client. This
// is the consumer half of the optional subsystem the core spec treats as
// an external collaborator; the producer half (ServerState's portal_tx
// channel and NotifyPortal) is in dispatch.State.
package portal

import (
	"context"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"fraktile/internal/logging"
	"fraktile/internal/model"
)

// ClientBacklog is the maximum number of unsent frames a client may queue
// before it is disconnected, mirroring the render channel's drop policy
// applied per-client instead of process-wide.
const ClientBacklog = 32

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Server hosts the /ws endpoint and fans out rendering data to every
// connected client.
type Server struct {
	log logging.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
}

type client struct {
	conn  *websocket.Conn
	queue chan model.RenderingData
}

// New builds a portal Server.
func New(log logging.Logger) *Server {
	return &Server{
		log:     log,
		clients: make(map[*client]struct{}),
	}
}

// Run serves HTTP on address until ctx is cancelled, upgrading every
// request to /ws into a WebSocket client.
func (s *Server) Run(ctx context.Context, address string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)

	srv := &http.Server{Addr: address, Handler: mux}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		return srv.Close()
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("portal: websocket upgrade failed")
		return
	}

	c := &client{conn: conn, queue: make(chan model.RenderingData, ClientBacklog)}
	s.addClient(c)
	defer s.removeClient(c)

	for data := range c.queue {
		if err := conn.WriteJSON(data); err != nil {
			s.log.WithError(err).Debug("portal: client write failed, disconnecting")
			return
		}
	}
}

func (s *Server) addClient(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[c] = struct{}{}
}

func (s *Server) removeClient(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.clients, c)
	close(c.queue)
	c.conn.Close()
}

// Broadcast drains ch, pushing each RenderingData to every connected
// client's queue; a client whose queue is already full is dropped (its
// connection is closed) rather than let it backpressure the others.
func (s *Server) Broadcast(ctx context.Context, ch <-chan model.RenderingData) {
	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-ch:
			if !ok {
				return
			}
			s.fanOut(data)
		}
	}
}

func (s *Server) fanOut(data model.RenderingData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		select {
		case c.queue <- data:
		default:
			s.log.Warn("portal: client backlog full, dropping connection")
			go c.conn.Close()
		}
	}
}
