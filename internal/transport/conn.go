package transport

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 1 * time.Second
	readWait   = 1 * time.Second
	closeGrace = 10 * time.Second
)

// serializedConn serializes reads and writes to a websocket connection,
// whose requirement is that there be at most one concurrent reader and one
// concurrent writer (adapted from
// tabular/server/fastview/client.go's websock).
type serializedConn struct {
	readSem  chan struct{}
	writeSem chan struct{}
	ws       *websocket.Conn
}

func newSerializedConn(ws *websocket.Conn) *serializedConn {
	return &serializedConn{
		readSem:  make(chan struct{}, 1),
		writeSem: make(chan struct{}, 1),
		ws:       ws,
	}
}

// ErrCongested reports that too many operations are already waiting on the
// socket's semaphore.
var ErrCongested = errCongested{}

type errCongested struct{}

func (errCongested) Error() string { return "transport: socket operation congested" }

func (c *serializedConn) Read(ctx context.Context, fn func(*websocket.Conn) error) error {
	select {
	case <-ctx.Done():
		return nil
	case c.readSem <- struct{}{}:
		defer func() { <-c.readSem }()
		return fn(c.ws)
	case <-time.After(readWait):
		return ErrCongested
	}
}

func (c *serializedConn) Write(ctx context.Context, fn func(*websocket.Conn) error) error {
	select {
	case <-ctx.Done():
		return nil
	case c.writeSem <- struct{}{}:
		defer func() { <-c.writeSem }()
		return fn(c.ws)
	case <-time.After(writeWait):
		return ErrCongested
	}
}

// SendBinary writes one binary WebSocket message, serialized against any
// concurrent ping/pong control writes.
func (c *serializedConn) SendBinary(data []byte) error {
	return c.Write(context.Background(), func(ws *websocket.Conn) error {
		if err := ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			return err
		}
		return ws.WriteMessage(websocket.BinaryMessage, data)
	})
}

func (c *serializedConn) close() {
	_ = c.Write(context.Background(), func(ws *websocket.Conn) error {
		_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
		return ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	})
	time.Sleep(closeGrace)
	c.ws.Close()
}
