// Package transport runs the WebSocket acceptor: upgrading connections,
// pairing each with a session, and running its read/ping-pong loop on a
// dedicated goroutine pair (spec §4.I "Network acceptor").
package transport

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	channerics "github.com/niceyeti/channerics/channels"
	"github.com/rs/zerolog"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/outpost-games/hideforge/internal/session"
)

const (
	pingPeriod     = 10 * time.Second
	pongDeadline   = pingPeriod * 4
	maxMessageSize = 1 << 16
)

var upgrader = websocket.Upgrader{}

// leaveFrame is the sentinel Session.Inbound value synthesized on socket
// close, per spec §4.I "Close events translate into an inbound 'leave'
// message appended to the queue." A nil frame can never be produced by a
// real client read (DecodeFrame always requires a 2-element array), so it is
// unambiguous as an internal-only marker.
var leaveFrame []byte

// IsLeaveFrame reports whether data is the synthetic leave marker a closed
// connection appends to its session's inbound queue.
func IsLeaveFrame(data []byte) bool { return data == nil }

// Acceptor upgrades incoming HTTP connections to WebSockets and hands each
// resulting session off to the simulation thread over sessions.
type Acceptor struct {
	addr     string
	path     string
	sessions chan<- *session.Session
	log      zerolog.Logger
}

// NewAcceptor returns an Acceptor that listens on addr and upgrades
// connections arriving at path, publishing each new session onto sessions.
func NewAcceptor(addr, path string, sessions chan<- *session.Session, log zerolog.Logger) *Acceptor {
	return &Acceptor{addr: addr, path: path, sessions: sessions, log: log}
}

// Serve blocks, running the HTTP listener until it errors.
func (a *Acceptor) Serve() error {
	listener, err := net.Listen("tcp", a.addr)
	if err != nil {
		return err
	}
	return a.ServeListener(listener)
}

// Bind opens the listener socket without serving yet, so a caller can report
// lobby-readiness only once the port is actually bound (spec §4.J
// "lobby-ready ... called exactly once at boot after the listener is
// bound").
func (a *Acceptor) Bind() (net.Listener, error) {
	return net.Listen("tcp", a.addr)
}

// ServeListener runs the HTTP acceptor loop over a listener obtained from
// Bind, blocking until it errors.
func (a *Acceptor) ServeListener(listener net.Listener) error {
	router := mux.NewRouter()
	router.HandleFunc(a.path, a.handleUpgrade)
	return http.Serve(listener, router)
}

func (a *Acceptor) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	ws.SetReadLimit(maxMessageSize)

	conn := newSerializedConn(ws)
	sess := session.New(conn.SendBinary)
	traceID := uuid.NewString()

	select {
	case a.sessions <- sess:
	default:
		a.log.Warn().Str("trace_id", traceID).Msg("session handoff channel full, dropping connection")
		conn.close()
		return
	}

	go a.runConnection(r.Context(), conn, sess, traceID)
}

// runConnection drives one connection's read pump and ping/pong liveness
// check concurrently until either fails, then synthesizes the leave frame
// and tears the socket down (spec §4.I). traceID is a per-connection id
// (not carried over the wire) so a single connection's log lines can be
// correlated without threading a request-scoped value through every call.
func (a *Acceptor) runConnection(ctx context.Context, conn *serializedConn, sess *session.Session, traceID string) {
	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error { return a.readPump(groupCtx, conn, sess) })
	group.Go(func() error { return a.pingPong(groupCtx, conn) })

	if err := group.Wait(); err != nil {
		a.log.Debug().Err(err).Str("trace_id", traceID).Msg("connection closed")
	}

	sess.Close()
	sess.Inbound <- leaveFrame
	conn.close()
}

func (a *Acceptor) readPump(ctx context.Context, conn *serializedConn, sess *session.Session) error {
	for {
		var data []byte
		err := conn.Read(ctx, func(ws *websocket.Conn) error {
			_, payload, readErr := ws.ReadMessage()
			data = payload
			return readErr
		})
		if err != nil {
			return err
		}
		select {
		case sess.Inbound <- data:
		case <-ctx.Done():
			return nil
		}
	}
}

func (a *Acceptor) pingPong(ctx context.Context, conn *serializedConn) error {
	pong := make(chan struct{}, 1)
	conn.ws.SetPongHandler(func(string) error {
		select {
		case pong <- struct{}{}:
		default:
		}
		return nil
	})

	ticker := channerics.NewTicker(ctx.Done(), pingPeriod)
	lastPong := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker:
			if time.Since(lastPong) > pongDeadline {
				return errPongDeadlineExceeded
			}
			if err := conn.Write(ctx, func(ws *websocket.Conn) error {
				return ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
			}); err != nil {
				return err
			}
		case <-pong:
			lastPong = time.Now()
		}
	}
}

var errPongDeadlineExceeded = pongDeadlineExceededError{}

type pongDeadlineExceededError struct{}

func (pongDeadlineExceededError) Error() string { return "transport: pong deadline exceeded" }
