package transport

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/outpost-games/hideforge/internal/session"
)

func TestIsLeaveFrame(t *testing.T) {
	if !IsLeaveFrame(nil) {
		t.Fatal("expected nil to be the leave frame")
	}
	if IsLeaveFrame([]byte{}) {
		t.Fatal("expected an empty-but-non-nil frame to not be the leave frame")
	}
}

func TestAcceptorHandshakeAndInbound(t *testing.T) {
	sessions := make(chan *session.Session, 1)
	acceptor := NewAcceptor("", "/ws", sessions, zerolog.New(zerolog.NewTestWriter(t)))

	srv := httptest.NewServer(http.HandlerFunc(acceptor.handleUpgrade))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	var sess *session.Session
	select {
	case sess = <-sessions:
	case <-time.After(time.Second):
		t.Fatal("expected a session to be handed off")
	}

	if err := conn.WriteMessage(websocket.BinaryMessage, []byte{1, 2, 3}); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case data := <-sess.Inbound:
		if len(data) != 3 {
			t.Fatalf("expected 3-byte inbound frame, got %v", data)
		}
	case <-time.After(time.Second):
		t.Fatal("expected inbound data to arrive")
	}

	conn.Close()

	select {
	case data := <-sess.Inbound:
		if !IsLeaveFrame(data) {
			t.Fatalf("expected leave frame after close, got %v", data)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected leave frame after socket close")
	}
}
