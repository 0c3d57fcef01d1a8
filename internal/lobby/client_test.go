package lobby

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
)

func TestReadyPostsEmptyBodyWithBearerAuth(t *testing.T) {
	var gotPath, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(srv.URL, "tok-abc", zerolog.New(zerolog.NewTestWriter(t)))
	if err := c.Ready(context.Background()); err != nil {
		t.Fatalf("Ready: %v", err)
	}
	if gotPath != "/matchmaker/lobbies/ready" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if gotAuth != "Bearer tok-abc" {
		t.Fatalf("unexpected auth header: %s", gotAuth)
	}
}

func TestPlayerConnectedPostsToken(t *testing.T) {
	var body playerTokenBody
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL, "tok", zerolog.New(zerolog.NewTestWriter(t)))
	if err := c.PlayerConnected(context.Background(), "player-token-1"); err != nil {
		t.Fatalf("PlayerConnected: %v", err)
	}
	if body.PlayerToken != "player-token-1" {
		t.Fatalf("unexpected player token: %q", body.PlayerToken)
	}
}

func TestPlayerDisconnectedNeverReturnsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, "tok", zerolog.New(zerolog.NewTestWriter(t)))
	c.PlayerDisconnected(context.Background(), "player-token-1") // must not panic
}

func TestReadyNonTwoxxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, "tok", zerolog.New(zerolog.NewTestWriter(t)))
	c.http.RetryMax = 0
	if err := c.Ready(context.Background()); err == nil {
		t.Fatal("expected non-2xx response to error")
	}
}
