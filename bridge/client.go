package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/rthomasv3/Galdr/envelope"
)

// Client drives the bridge from the frontend side. Multiple goroutines may
// call concurrently over the single connection: each call gets its own
// correlation id, and a background read loop routes responses to the waiting
// caller by id, so completions pair up even out of order.
type Client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex // writes from concurrent callers must not interleave
	pending sync.Map   // correlation id → chan json.RawMessage
	done    chan struct{}
}

// Dial connects to a bridge server at url (ws:// or wss://).
func Dial(ctx context.Context, url string) (*Client, error) {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("bridge: dial %s: %w", url, err)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	c := &Client{conn: conn, done: make(chan struct{})}
	go c.recvLoop()
	return c, nil
}

// Call sends one command with a raw JSON parameter object (nil for none) and
// waits for its response envelope.
func (c *Client) Call(ctx context.Context, command string, params []byte) (*envelope.Response, error) {
	id := uuid.NewString()
	ch := make(chan json.RawMessage, 1)
	c.pending.Store(id, ch)
	defer c.pending.Delete(id)

	data, err := json.Marshal(Frame{ID: id, Call: envelope.EncodeRequest(command, params)})
	if err != nil {
		return nil, err
	}
	c.writeMu.Lock()
	err = c.conn.WriteMessage(websocket.TextMessage, data)
	c.writeMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("bridge: write: %w", err)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.done:
		return nil, errors.New("bridge: connection closed")
	case raw := <-ch:
		return envelope.DecodeResponse(raw)
	}
}

func (c *Client) recvLoop() {
	defer close(c.done)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var frame Frame
		if err := json.Unmarshal(data, &frame); err != nil {
			continue
		}
		if ch, ok := c.pending.Load(frame.ID); ok {
			ch.(chan json.RawMessage) <- frame.Response
		}
	}
}

// Close tears down the connection; in-flight Calls return an error.
func (c *Client) Close() error {
	return c.conn.Close()
}
