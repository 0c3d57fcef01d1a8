package main

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/outpost-games/hideforge/internal/apperr"
	"github.com/outpost-games/hideforge/internal/entity"
	"github.com/outpost-games/hideforge/internal/lobby"
	"github.com/outpost-games/hideforge/internal/session"
	"github.com/outpost-games/hideforge/internal/state/gridhold"
	"github.com/outpost-games/hideforge/internal/transport"
	"github.com/outpost-games/hideforge/internal/wire"
)

// simLoop drives the grid variant's continuously running round: no phases,
// no scoreboard, just join/move/leave against one shared board (spec §4.F
// grid variant).
type simLoop struct {
	machine *gridhold.Machine
	lobby   *lobby.Client
	log     zerolog.Logger

	sessions map[*session.Session]struct{}
}

func newSimLoop(machine *gridhold.Machine, lobbyClient *lobby.Client, log zerolog.Logger) *simLoop {
	return &simLoop{
		machine:  machine,
		lobby:    lobbyClient,
		log:      log,
		sessions: make(map[*session.Session]struct{}),
	}
}

func (l *simLoop) run(incoming <-chan *session.Session) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case sess := <-incoming:
			l.sessions[sess] = struct{}{}
		case now := <-ticker.C:
			l.step(now)
		}
	}
}

func (l *simLoop) step(now time.Time) {
	for sess := range l.sessions {
		l.drainInbound(sess)
		if sess.Closed() {
			delete(l.sessions, sess)
		}
	}

	l.machine.Tick(now)

	destroyedIDs := l.machine.DrainDestroyed()
	destroyed := make(map[entity.ID]struct{}, len(destroyedIDs))
	for _, id := range destroyedIDs {
		destroyed[id] = struct{}{}
	}

	for sess := range l.sessions {
		if !sess.Authenticated() {
			continue
		}
		l.sendUpdate(sess, destroyed)
	}

	// Commit every entity's dirty trackers only after every session has
	// computed and sent its delta off the current dirty state, per spec
	// §4.H step 4 / §4.C "committed()".
	for _, ent := range l.machine.World.Entities() {
		ent.Committed()
	}
}

func (l *simLoop) drainInbound(sess *session.Session) {
	for {
		select {
		case data := <-sess.Inbound:
			l.handleFrame(sess, data)
		default:
			return
		}
	}
}

func (l *simLoop) handleFrame(sess *session.Session, data []byte) {
	if transport.IsLeaveFrame(data) {
		l.handleLeave(sess)
		return
	}

	tag, body, err := wire.DecodeGridholdInbound(data)
	if err != nil {
		l.log.Debug().Err(err).Msg("dropping malformed frame")
		return
	}

	if !sess.Authenticated() && tag != wire.GridInAuth {
		return
	}

	if err := l.dispatch(sess, tag, body); err != nil {
		l.handleError(sess, err)
	}
}

func (l *simLoop) dispatch(sess *session.Session, tag wire.Tag, body interface{}) error {
	switch tag {
	case wire.GridInAuth:
		return l.handleAuth(sess, body.(wire.GridAuthMsg))
	case wire.GridInJoin:
		return l.handleJoin(sess, body.(wire.GridJoinMsg))
	case wire.GridInMove:
		msg := body.(wire.GridMoveMsg)
		if sess.PlayerID == nil {
			return apperr.NewDomain("not-joined")
		}
		return l.machine.HandleMove(*sess.PlayerID, msg.Target, time.Now().UnixMilli())
	default:
		return apperr.NewProtocol("unhandled tag", nil)
	}
}

func (l *simLoop) handleAuth(sess *session.Session, msg wire.GridAuthMsg) error {
	if msg.Token == "" {
		return apperr.NewAuthorization("empty token")
	}
	sess.Authenticate(msg.Token)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := l.lobby.PlayerConnected(ctx, msg.Token); err != nil {
		return apperr.NewExternal("player-connected notification failed", err)
	}
	return nil
}

func (l *simLoop) handleJoin(sess *session.Session, msg wire.GridJoinMsg) error {
	id, err := l.machine.Join(msg.Username, msg.ClassID)
	if err != nil {
		return err
	}
	sess.SetPlayer(*id)

	data, err := wire.EncodeGridJoin(*id)
	if err != nil {
		return err
	}
	return sess.Send(data)
}

func (l *simLoop) handleLeave(sess *session.Session) {
	if sess.PlayerID != nil {
		l.machine.Leave(*sess.PlayerID)
	}
	if sess.Authenticated() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		l.lobby.PlayerDisconnected(ctx, sess.Token())
	}
	delete(l.sessions, sess)
}

func (l *simLoop) handleError(sess *session.Session, err error) {
	l.log.Debug().Err(err).Msg("handler error")
	if apperr.Is(err, apperr.Authorization) {
		sess.Close()
	}
}

func (l *simLoop) sendUpdate(sess *session.Session, destroyed map[entity.ID]struct{}) {
	delta := sess.ComputeGridDelta(session.GridDeltaInput{
		World:     l.machine.World,
		Destroyed: destroyed,
	})

	data, err := wire.EncodeGridUpdate(wire.GridUpdateBody{
		Appeared:    serializeAll(delta.Appeared, true),
		Updated:     serializeAll(delta.Updated, false),
		Disappeared: delta.Disappeared,
		Destroyed:   delta.Destroyed,
	})
	if err != nil {
		l.log.Error().Err(err).Msg("encode update")
		return
	}
	if err := sess.Send(data); err != nil {
		l.log.Debug().Err(err).Msg("send update")
	}
}

func serializeAll(entities []*entity.Entity, init bool) []map[entity.FieldFlag]any {
	if len(entities) == 0 {
		return nil
	}
	out := make([]map[entity.FieldFlag]any, 0, len(entities))
	for _, e := range entities {
		out = append(out, e.Serialize(init))
	}
	return out
}
