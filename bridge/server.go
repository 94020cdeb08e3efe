// Package bridge carries wire calls between the webview frontend and the
// dispatcher over a websocket.
//
// Frame processing pipeline:
//
//	Upgrade → handleConn (single goroutine reads frames)
//	  → for each frame: go handleFrame (parallel dispatch)
//	    → Dispatcher.Dispatch → write response frame
//
// Each frame carries a correlation id supplied by the transport, so multiple
// in-flight calls on one connection may complete out of order and still pair
// up with their callers. A per-connection write mutex keeps response frames
// from interleaving.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/rthomasv3/Galdr/dispatch"
)

// Frame is one transport message: a correlation id plus either a wire call
// (frontend → backend) or its response envelope (backend → frontend).
type Frame struct {
	ID       string          `json:"id"`
	Call     json.RawMessage `json:"call,omitempty"`
	Response json.RawMessage `json:"response,omitempty"`
}

// Server accepts frontend connections and routes their calls through the
// dispatcher.
type Server struct {
	dispatcher *dispatch.Dispatcher
	logger     zerolog.Logger
	upgrader   websocket.Upgrader
	httpServer *http.Server

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup // tracks in-flight calls for graceful shutdown
}

// NewServer wraps a dispatcher in a websocket transport.
func NewServer(d *dispatch.Dispatcher, logger zerolog.Logger) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		dispatcher: d,
		logger:     logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// The webview loads from a local origin; origin policy stays
			// with the host application.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		baseCtx: ctx,
		cancel:  cancel,
	}
}

// ServeHTTP upgrades one frontend connection and services it until it
// closes.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	s.handleConn(conn)
}

// Listen serves the bridge on addr until Close is called.
func (s *Server) Listen(addr string) error {
	s.httpServer = &http.Server{Addr: addr, Handler: s}
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// handleConn reads frames sequentially (a single reader per connection) and
// dispatches each on its own goroutine so a slow handler never blocks later
// frames on the same connection.
func (s *Server) handleConn(conn *websocket.Conn) {
	defer conn.Close()
	writeMu := &sync.Mutex{} // shared by all frame goroutines on this conn
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var frame Frame
		if err := json.Unmarshal(data, &frame); err != nil {
			s.logger.Debug().Err(err).Msg("dropping unparseable frame")
			continue
		}
		s.wg.Add(1)
		go s.handleFrame(conn, writeMu, &frame)
	}
}

func (s *Server) handleFrame(conn *websocket.Conn, writeMu *sync.Mutex, frame *Frame) {
	defer s.wg.Done()

	id := frame.ID
	if id == "" {
		id = uuid.NewString()
	}

	resp := s.dispatcher.Dispatch(s.baseCtx, frame.Call)
	if resp == nil {
		return // lenient mode dropped a malformed call
	}

	out, err := json.Marshal(Frame{ID: id, Response: resp})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to marshal response frame")
		return
	}

	writeMu.Lock()
	defer writeMu.Unlock()
	if err := conn.WriteMessage(websocket.TextMessage, out); err != nil {
		s.logger.Debug().Err(err).Msg("failed to write response frame")
	}
}

// Close stops the listener, waits up to timeout for in-flight calls, then
// cancels the contexts of whatever is still running. Shutdown never blocks
// past the timeout on a slow handler.
func (s *Server) Close(timeout time.Duration) error {
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		_ = s.httpServer.Shutdown(ctx)
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.cancel()
		return nil
	case <-time.After(timeout):
		s.cancel()
		return fmt.Errorf("bridge: timeout waiting for in-flight calls")
	}
}
