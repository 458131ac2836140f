package netserver

import (
	"context"
	"net"
	"testing"
	"time"

	"fraktile/internal/dispatch"
	"fraktile/internal/logging"
	"fraktile/internal/model"
	"fraktile/internal/tiling"
	"fraktile/internal/wire"
)

func testState(t *testing.T) *dispatch.State {
	t.Helper()
	planner := tiling.New(64, 64, 2)
	viewport := model.Range{Min: model.Point{X: -2, Y: -2}, Max: model.Point{X: 2, Y: 2}}
	fractals := []model.FractalDescriptor{{Mandelbrot: &model.MandelbrotParams{}}}
	return dispatch.New(planner, viewport, fractals, logging.New("error"))
}

func startTestServer(t *testing.T) (addr string, cancel context.CancelFunc) {
	t.Helper()
	state := testState(t)
	srv := New(state, logging.New("error"))

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-ctx.Done()
		listener.Close()
	}()
	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			go srv.handleConn(conn)
		}
	}()

	return listener.Addr().String(), cancel
}

func TestServerServesFragmentRequestWithFragmentTask(t *testing.T) {
	addr, cancel := startTestServer(t)
	defer cancel()

	conn, err := net.DialTimeout("tcp", addr, time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	reqJSON, err := wire.EncodeFragmentRequest(model.FragmentRequest{WorkerName: "w1", MaximalWorkLoad: 64})
	if err != nil {
		t.Fatalf("EncodeFragmentRequest: %v", err)
	}
	if err := wire.Send(conn, reqJSON, nil); err != nil {
		t.Fatalf("Send: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	raw, err := wire.ReadRaw(conn)
	if err != nil {
		t.Fatalf("ReadRaw: %v", err)
	}

	task, err := wire.DecodeFragmentTask(raw.JSON)
	if err != nil {
		t.Fatalf("DecodeFragmentTask: %v", err)
	}
	if task.Fractal.Kind() != "Mandelbrot" {
		t.Errorf("task fractal = %q, want Mandelbrot", task.Fractal.Kind())
	}
	if len(raw.Binary) != wire.SignatureSize {
		t.Errorf("signature length = %d, want %d", len(raw.Binary), wire.SignatureSize)
	}
}

func TestServerAcceptsFragmentResultWithoutReply(t *testing.T) {
	addr, cancel := startTestServer(t)
	defer cancel()

	conn, err := net.DialTimeout("tcp", addr, time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	result := model.FragmentResult{
		Resolution: model.Resolution{NX: 1, NY: 1},
		Range:      model.Range{Min: model.Point{X: 0, Y: 0}, Max: model.Point{X: 1, Y: 1}},
		Pixels:     model.U8Data{Offset: wire.SignatureSize, Count: 8},
	}
	resultJSON, err := wire.EncodeFragmentResult(result)
	if err != nil {
		t.Fatalf("EncodeFragmentResult: %v", err)
	}
	payload := wire.EncodeResultPayload([]model.PixelIntensity{{Zn: 1, Count: 5}})
	if err := wire.Send(conn, resultJSON, payload); err != nil {
		t.Fatalf("Send: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(500 * time.Millisecond))
	buf := make([]byte, 1)
	if _, err := conn.Read(buf); err == nil {
		t.Fatal("expected the server to close the connection without a reply")
	}
}

// requestOneTask opens a fresh connection, sends a FragmentRequest, and
// returns the resolved FragmentTask, mirroring one worker's dial-request-
// read cycle.
func requestOneTask(t *testing.T, addr, workerName string) model.FragmentTask {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	reqJSON, err := wire.EncodeFragmentRequest(model.FragmentRequest{WorkerName: workerName, MaximalWorkLoad: 64})
	if err != nil {
		t.Fatalf("EncodeFragmentRequest: %v", err)
	}
	if err := wire.Send(conn, reqJSON, nil); err != nil {
		t.Fatalf("Send: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	raw, err := wire.ReadRaw(conn)
	if err != nil {
		t.Fatalf("ReadRaw: %v", err)
	}
	task, err := wire.DecodeFragmentTask(raw.JSON)
	if err != nil {
		t.Fatalf("DecodeFragmentTask: %v", err)
	}
	return task
}

// TestServerTwoWorkersFourTilesGetDistinctTiles: two workers pulling tasks
// from a --tiles 2 server (four tiles total) receive four distinct tile
// ranges between them, none dispatched twice, in whatever order the
// requests interleave.
func TestServerTwoWorkersFourTilesGetDistinctTiles(t *testing.T) {
	addr, cancel := startTestServer(t)
	defer cancel()

	seen := make(map[model.Range]bool)
	for i := 0; i < 4; i++ {
		worker := "w1"
		if i%2 == 1 {
			worker = "w2"
		}
		task := requestOneTask(t, addr, worker)
		if seen[task.Range] {
			t.Fatalf("tile range %+v was dispatched more than once", task.Range)
		}
		seen[task.Range] = true
	}
	if len(seen) != 4 {
		t.Fatalf("got %d distinct tile ranges, want 4", len(seen))
	}
}

// TestServerProtocolMisalignmentClosesConnectionAndKeepsAccepting is
// scenario S5: a peer whose declared json_len exceeds total_len gets its
// connection closed with no reply, and the accept loop keeps serving
// subsequent connections normally.
func TestServerProtocolMisalignmentClosesConnectionAndKeepsAccepting(t *testing.T) {
	addr, cancel := startTestServer(t)
	defer cancel()

	bad, err := net.DialTimeout("tcp", addr, time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	header := make([]byte, 8)
	header[3] = 10 // total_len = 10
	header[7] = 20 // json_len = 20, exceeds total_len
	if _, err := bad.Write(header); err != nil {
		t.Fatalf("write malformed header: %v", err)
	}

	bad.SetReadDeadline(time.Now().Add(500 * time.Millisecond))
	buf := make([]byte, 1)
	if _, err := bad.Read(buf); err == nil {
		t.Fatal("expected the server to close the malformed connection")
	}
	bad.Close()

	task := requestOneTask(t, addr, "w3")
	if task.Fractal.Kind() != "Mandelbrot" {
		t.Errorf("server should keep accepting connections after a protocol error, got fractal %q", task.Fractal.Kind())
	}
}
