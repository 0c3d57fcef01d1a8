package main

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/outpost-games/hideforge/internal/apperr"
	"github.com/outpost-games/hideforge/internal/config"
	"github.com/outpost-games/hideforge/internal/entity"
	"github.com/outpost-games/hideforge/internal/event"
	"github.com/outpost-games/hideforge/internal/lobby"
	"github.com/outpost-games/hideforge/internal/session"
	"github.com/outpost-games/hideforge/internal/state/prophunt"
	"github.com/outpost-games/hideforge/internal/transport"
	"github.com/outpost-games/hideforge/internal/wire"
)

// simLoop owns the live session set and drives the machine's fixed tick,
// routing each session's inbound queue through the auth gate before
// dispatching to the machine (spec §4.H "Auth gate", §4.I data flow).
type simLoop struct {
	machine *prophunt.Machine
	cfg     *config.Config
	lobby   *lobby.Client
	log     zerolog.Logger

	admins map[string]struct{}

	sessions map[*session.Session]struct{}
}

func newSimLoop(machine *prophunt.Machine, cfg *config.Config, lobbyClient *lobby.Client, log zerolog.Logger) *simLoop {
	return &simLoop{
		machine:  machine,
		cfg:      cfg,
		lobby:    lobbyClient,
		log:      log,
		admins:   parseAdminTokens(os.Getenv("ADMIN_TOKENS")),
		sessions: make(map[*session.Session]struct{}),
	}
}

func parseAdminTokens(raw string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, tok := range strings.Split(raw, ",") {
		tok = strings.TrimSpace(tok)
		if tok != "" {
			out[tok] = struct{}{}
		}
	}
	return out
}

// run blocks forever, alternating between accepting new sessions and
// stepping the simulation at a fixed cadence (spec §4.I "Suspension points").
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
	nowMS := now.UnixMilli()

	for sess := range l.sessions {
		l.drainInbound(sess, nowMS)
		if sess.Closed() {
			delete(l.sessions, sess)
		}
	}

	func() {
		defer l.recoverInvariant()
		l.machine.Tick(tickInterval, nowMS)
	}()

	events := l.machine.DrainEvents()
	destroyedIDs := l.machine.DrainDestroyed()
	destroyed := make(map[entity.ID]struct{}, len(destroyedIDs))
	for _, id := range destroyedIDs {
		destroyed[id] = struct{}{}
	}
	minimap, minimapChanged := l.machine.Minimap()

	l.broadcastGameResults(events)

	for sess := range l.sessions {
		if !sess.Authenticated() {
			continue
		}
		l.sendUpdate(sess, events, destroyed, minimap, minimapChanged)
		l.sendPlayerFeedback(sess, nowMS)
	}

	// Commit every entity's dirty trackers only after every session has
	// computed and sent its delta off the current dirty state, per spec
	// §4.H step 4 / §4.C "committed()".
	for _, ent := range l.machine.World.Tree.All() {
		ent.Committed()
	}
}

// broadcastGameResults sends the dedicated game-results frame (wire tag 5)
// to every authenticated session the tick a round ends, alongside (not
// instead of) the generic scoreboard-update event already folded into each
// session's update body (spec §4.G outbound tag 5).
func (l *simLoop) broadcastGameResults(events []event.Event) {
	for _, e := range events {
		if e.Kind != event.KindScoreboardUpdate {
			continue
		}
		payload, ok := e.Payload.(event.ScoreboardUpdatePayload)
		if !ok {
			continue
		}
		data, err := wire.EncodeGameResults(payload)
		if err != nil {
			l.log.Error().Err(err).Msg("encode game results")
			return
		}
		for sess := range l.sessions {
			if !sess.Authenticated() {
				continue
			}
			if err := sess.Send(data); err != nil {
				l.log.Debug().Err(err).Msg("send game results")
			}
		}
		return
	}
}

// sendPlayerFeedback emits the owning session's own stamina and ping-delay
// feedback frames (spec §4.G outbound tags 2 and 4): stamina only when its
// tolerance tracker says it changed, ping-delay every tick a prop is alive,
// per the "on schedule" cadence a countdown display needs. Shoot-delay (tag
// 3) is sent separately by sendShootDelay after a shot.
func (l *simLoop) sendPlayerFeedback(sess *session.Session, nowMS int64) {
	if sess.PlayerID == nil {
		return
	}
	p, ok := l.machine.World.Tree.Get(*sess.PlayerID)
	if !ok || p.Player == nil {
		return
	}

	if p.Player.Stamina.Changed() {
		l.sendStamina(sess, p.Player.Stamina.Get())
		p.Player.Stamina.Commit()
	}

	if p.Player.IsProp() {
		l.sendPingDelay(sess, p.Player.Prop.NextPingAtMS-nowMS)
	}
}

func (l *simLoop) sendStamina(sess *session.Session, stamina float64) {
	data, err := wire.EncodeStamina(stamina)
	if err != nil {
		l.log.Error().Err(err).Msg("encode stamina")
		return
	}
	if err := sess.Send(data); err != nil {
		l.log.Debug().Err(err).Msg("send stamina")
	}
}

func (l *simLoop) sendPingDelay(sess *session.Session, remainingMS int64) {
	if remainingMS < 0 {
		remainingMS = 0
	}
	data, err := wire.EncodePingDelay(&remainingMS)
	if err != nil {
		l.log.Error().Err(err).Msg("encode ping delay")
		return
	}
	if err := sess.Send(data); err != nil {
		l.log.Debug().Err(err).Msg("send ping delay")
	}
}

// sendShootDelay reports the shooter's freshly started cooldown right after
// a shot resolves (spec §4.G outbound tag 3 "on schedule/after a shot").
func (l *simLoop) sendShootDelay(sess *session.Session, id entity.ID) error {
	p, ok := l.machine.World.Tree.Get(id)
	if !ok || p.Player == nil || !p.Player.IsHunter() {
		return nil
	}
	cooldown := l.cfg.Player.ShootCooldownMS
	data, err := wire.EncodeShootDelay(&cooldown)
	if err != nil {
		return err
	}
	return sess.Send(data)
}

// recoverInvariant turns a fatal invariant panic (spec §7 "not recoverable,
// fatal for the round") into a logged event rather than crashing the
// process, since the process still has to serve other lobbies in its
// lifetime.
func (l *simLoop) recoverInvariant() {
	if r := recover(); r != nil {
		l.log.Error().Interface("panic", r).Msg("invariant violation, round aborted")
	}
}

// drainInbound non-blockingly empties one session's inbound queue, per
// spec §4.I "draining inbound queues (non-blocking try_receive loop until
// empty)".
func (l *simLoop) drainInbound(sess *session.Session, nowMS int64) {
	for {
		select {
		case data := <-sess.Inbound:
			l.handleFrame(sess, data, nowMS)
		default:
			return
		}
	}
}

func (l *simLoop) handleFrame(sess *session.Session, data []byte, nowMS int64) {
	if transport.IsLeaveFrame(data) {
		l.handleLeave(sess)
		return
	}

	tag, body, err := wire.DecodeProphuntInbound(data)
	if err != nil {
		l.log.Debug().Err(err).Msg("dropping malformed frame")
		return
	}

	if !sess.Authenticated() && tag != wire.InAuth {
		return
	}

	if err := l.dispatch(sess, tag, body, nowMS); err != nil {
		l.handleError(sess, err)
	}
}

func (l *simLoop) dispatch(sess *session.Session, tag wire.Tag, body interface{}, nowMS int64) error {
	switch tag {
	case wire.InAuth:
		return l.handleAuth(sess, body.(wire.AuthMsg))
	case wire.InJoin:
		return l.handleJoin(sess, body.(wire.JoinMsg))
	case wire.InMove:
		msg := body.(wire.MoveMsg)
		return l.withPlayer(sess, func(id entity.ID) error {
			return l.machine.HandleMove(id, msg.DirRadians, msg.Sprinting)
		})
	case wire.InFaceDir:
		msg := body.(wire.FaceDirMsg)
		return l.withPlayer(sess, func(id entity.ID) error {
			return l.machine.HandleFaceDir(id, msg.Radians)
		})
	case wire.InRotate:
		msg := body.(wire.RotateMsg)
		return l.withPlayer(sess, func(id entity.ID) error {
			return l.machine.HandleRotate(id, msg.Quarter)
		})
	case wire.InShoot:
		msg := body.(wire.ShootMsg)
		return l.withPlayer(sess, func(id entity.ID) error {
			if err := l.machine.HandleShoot(id, msg.Target, nowMS, sess.Admin); err != nil {
				return err
			}
			return l.sendShootDelay(sess, id)
		})
	case wire.InSelect:
		msg := body.(wire.SelectMsg)
		sess.SetSpectating(msg.EntityID)
		return nil
	case wire.InJump:
		return l.withPlayer(sess, l.machine.HandleJump)
	case wire.InForcePing:
		return l.withPlayer(sess, func(id entity.ID) error {
			return l.machine.HandleForcePing(id, nowMS)
		})
	case wire.InCheatCode:
		msg := body.(wire.CheatCodeMsg)
		return l.withPlayer(sess, func(id entity.ID) error {
			return l.machine.HandleCheatCode(id, msg.Code)
		})
	case wire.InTempData:
		return nil
	default:
		return apperr.NewProtocol("unhandled tag", nil)
	}
}

func (l *simLoop) withPlayer(sess *session.Session, fn func(entity.ID) error) error {
	if sess.PlayerID == nil {
		return apperr.NewDomain("not-joined")
	}
	return fn(*sess.PlayerID)
}

// handleAuth completes the auth gate: any non-empty rivet-player-token is
// accepted (validation itself is the lobby-lifecycle service's concern),
// admin status comes from a local allow-list since the token format carries
// no claim for it (spec §4.G tag 0, §4.H admin flag).
func (l *simLoop) handleAuth(sess *session.Session, msg wire.AuthMsg) error {
	if msg.Token == "" {
		return apperr.NewAuthorization("empty token")
	}
	sess.Authenticate(msg.Token)
	if _, ok := l.admins[msg.Token]; ok {
		sess.Admin = true
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := l.lobby.PlayerConnected(ctx, msg.Token); err != nil {
		return apperr.NewExternal("player-connected notification failed", err)
	}

	init, err := wire.EncodeInit("{}")
	if err != nil {
		return err
	}
	return sess.Send(init)
}

func (l *simLoop) handleJoin(sess *session.Session, msg wire.JoinMsg) error {
	id, err := l.machine.Join(msg.Username, msg.CharacterID)
	if err != nil {
		return err
	}
	sess.SetPlayer(*id)
	if p, ok := l.machine.World.Tree.Get(*id); ok && p.Player != nil {
		p.Player.Admin = sess.Admin
	}
	return nil
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

// handleError applies spec §7's recoverability table: authorization errors
// mark the session closed, so step drops it from the session set after the
// current drain; everything else just drops the message. The socket itself
// is not closed here and stays open until the transport's read or ping loop
// ends.
func (l *simLoop) handleError(sess *session.Session, err error) {
	l.log.Debug().Err(err).Msg("handler error")
	if apperr.Is(err, apperr.Authorization) {
		sess.Close()
	}
}

func (l *simLoop) sendUpdate(sess *session.Session, events []event.Event, destroyed map[entity.ID]struct{}, minimap []prophunt.MinimapEntry, minimapChanged bool) {
	delta := sess.ComputeProphuntDelta(session.ProphuntDeltaInput{
		Tree:           l.machine.World.Tree,
		ViewRange:      l.cfg.ViewRange,
		Events:         events,
		Minimap:        minimapAsAny(minimap),
		MinimapChanged: minimapChanged,
		Destroyed:      destroyed,
	})

	body := wire.UpdateBody{
		PlayerID:     sess.PlayerID,
		SpectatingID: sess.SpectatingID,
		StateTag:     int(l.machine.Phase),
		StateTimer:   l.machine.Timer,
		Minimap:      delta.Minimap,
		Events:       encodeEvents(delta.Events),
		Appeared:     serializeAll(delta.Appeared, true),
		Updated:      serializeAll(delta.Updated, false),
		Disappeared:  delta.Disappeared,
		Destroyed:    delta.Destroyed,
	}

	data, err := wire.EncodeUpdate(body)
	if err != nil {
		l.log.Error().Err(err).Msg("encode update")
		return
	}
	if err := sess.Send(data); err != nil {
		l.log.Debug().Err(err).Msg("send update")
	}
}

func minimapAsAny(m []prophunt.MinimapEntry) interface{} {
	if m == nil {
		return nil
	}
	return m
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

func encodeEvents(events []event.Event) []wire.EncodedEvent {
	if len(events) == 0 {
		return nil
	}
	out := make([]wire.EncodedEvent, 0, len(events))
	for _, e := range events {
		out = append(out, wire.EncodedEvent{Kind: e.Kind, Payload: e.Payload})
	}
	return out
}
