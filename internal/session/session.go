// Package session holds the per-client state the router and delta encoder
// share: auth/ownership bookkeeping plus the interest-set diff that turns
// world state into an outbound update (spec §4.H "Per-client session").
package session

import (
	"github.com/outpost-games/hideforge/internal/entity"
	"github.com/outpost-games/hideforge/internal/geometry"
)

// Session holds everything spec §4.H lists: outbound socket handle, admin
// flag, authenticated flag + cached token, first-update-sent flag, owned
// player-entity-id, spectated-entity-id, cached spectator position, the
// visible-entity set, and an inbound message queue. The socket handle is a
// plain send function rather than a concrete websocket type, so this
// package stays independent of internal/transport (grounded on
// tabular/server/fastview/client.go's client[T], which likewise separates
// the publishing side from the websocket plumbing).
type Session struct {
	Send func([]byte) error

	Admin           bool
	authenticated   bool
	token           string
	FirstUpdateSent bool

	PlayerID     *entity.ID
	SpectatingID *entity.ID

	spectatorPos geometry.Vec3
	havePos      bool

	Visible map[entity.ID]struct{}

	// Inbound carries raw frames read off the socket by internal/transport's
	// reader goroutine, for the simulation thread to decode and apply.
	Inbound chan []byte

	closed bool
}

// New returns a fresh, unauthenticated Session wrapping send as its outbound
// socket handle.
func New(send func([]byte) error) *Session {
	return &Session{
		Send:    send,
		Visible: make(map[entity.ID]struct{}),
		Inbound: make(chan []byte, 32),
	}
}

// Authenticate marks the session authenticated and caches token, per §4.J
// "player-connected" being fired on successful auth.
func (s *Session) Authenticate(token string) {
	s.authenticated = true
	s.token = token
}

// Authenticated reports whether the auth gate has been passed (spec §4.H
// "Auth gate": tags other than auth are permitted only after auth
// completes successfully).
func (s *Session) Authenticated() bool { return s.authenticated }

// Token returns the cached rivet-player-token, empty before authentication.
func (s *Session) Token() string { return s.token }

// SetPlayer marks id as the session's owned player and clears any prior
// spectator focus.
func (s *Session) SetPlayer(id entity.ID) {
	s.PlayerID = &id
	s.SpectatingID = nil
}

// ClearPlayer clears ownership, e.g. on leave.
func (s *Session) ClearPlayer() { s.PlayerID = nil }

// SetSpectating records the entity this (now-dead) session is observing.
func (s *Session) SetSpectating(id entity.ID) { s.SpectatingID = &id }

// ClearSpectating clears spectator focus, e.g. on respawn or pre-game reset.
func (s *Session) ClearSpectating() { s.SpectatingID = nil }

// Close marks the session closed so the router drops it after its current
// drain and dispatches none of its later inbound messages. It does not touch
// the socket: internal/transport tears the socket down only when its own read
// or ping loop ends.
func (s *Session) Close() { s.closed = true }

// Closed reports whether Close has been called.
func (s *Session) Closed() bool { return s.closed }
