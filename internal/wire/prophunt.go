package wire

import (
	"github.com/outpost-games/hideforge/internal/apperr"
	"github.com/outpost-games/hideforge/internal/entity"
	"github.com/outpost-games/hideforge/internal/event"
	"github.com/outpost-games/hideforge/internal/geometry"
)

// Inbound tags for the 3-D variant (spec §4.G).
const (
	InAuth Tag = iota
	InJoin
	InMove
	InFaceDir
	InRotate
	InShoot
	InSelect
	InJump
	InForcePing
	InCheatCode
	InTempData
)

// Tag is a small-integer wire message discriminator shared by both
// directions of both variants.
type Tag int

// Outbound tags for the 3-D variant (spec §4.G).
const (
	OutInit Tag = iota
	OutUpdate
	OutPingDelay
	OutShootDelay
	OutStamina
	OutGameResults
)

type AuthMsg struct{ Token string }
type JoinMsg struct{ Username, CharacterID string }
type MoveMsg struct {
	DirRadians *float64
	Sprinting  bool
}
type FaceDirMsg struct{ Radians float64 }
type RotateMsg struct{ Quarter int }
type ShootMsg struct{ Target geometry.Vec3 }
type SelectMsg struct{ EntityID entity.ID }
type JumpMsg struct{}
type ForcePingMsg struct{}
type CheatCodeMsg struct{ Code string }
type TempDataMsg struct{ Data string }

// DecodeProphuntInbound decodes one raw frame into its tag and a typed
// inbound message (spec §4.G "Inbound tags").
func DecodeProphuntInbound(data []byte) (Tag, interface{}, error) {
	tagInt, fields, err := DecodeFrame(data)
	if err != nil {
		return 0, nil, err
	}
	tag := Tag(tagInt)

	switch tag {
	case InAuth:
		tok, err := field(fields, 0)
		if err != nil {
			return 0, nil, apperr.NewProtocol("auth", err)
		}
		s, err := asString(tok)
		if err != nil {
			return 0, nil, apperr.NewProtocol("auth token", err)
		}
		return tag, AuthMsg{Token: s}, nil

	case InJoin:
		username, err := decodeStringField(fields, 0, "join username")
		if err != nil {
			return 0, nil, err
		}
		characterID, err := decodeStringField(fields, 1, "join character id")
		if err != nil {
			return 0, nil, err
		}
		return tag, JoinMsg{Username: username, CharacterID: characterID}, nil

	case InMove:
		raw, err := field(fields, 0)
		if err != nil {
			return 0, nil, apperr.NewProtocol("move dir", err)
		}
		var dir *float64
		if raw != nil {
			f, err := asFloat64(raw)
			if err != nil {
				return 0, nil, apperr.NewProtocol("move dir", err)
			}
			dir = &f
		}
		spRaw, err := field(fields, 1)
		if err != nil {
			return 0, nil, apperr.NewProtocol("move sprinting", err)
		}
		sprinting, err := asBool(spRaw)
		if err != nil {
			return 0, nil, apperr.NewProtocol("move sprinting", err)
		}
		return tag, MoveMsg{DirRadians: dir, Sprinting: sprinting}, nil

	case InFaceDir:
		radians, err := decodeFloatField(fields, 0, "face-dir")
		if err != nil {
			return 0, nil, err
		}
		return tag, FaceDirMsg{Radians: radians}, nil

	case InRotate:
		q, err := decodeIntField(fields, 0, "rotate")
		if err != nil {
			return 0, nil, err
		}
		return tag, RotateMsg{Quarter: q}, nil

	case InShoot:
		raw, err := field(fields, 0)
		if err != nil {
			return 0, nil, apperr.NewProtocol("shoot target", err)
		}
		vec, err := decodeVec3(raw)
		if err != nil {
			return 0, nil, apperr.NewProtocol("shoot target", err)
		}
		return tag, ShootMsg{Target: vec}, nil

	case InSelect:
		id, err := decodeIntField(fields, 0, "select")
		if err != nil {
			return 0, nil, err
		}
		return tag, SelectMsg{EntityID: entity.ID(id)}, nil

	case InJump:
		return tag, JumpMsg{}, nil

	case InForcePing:
		return tag, ForcePingMsg{}, nil

	case InCheatCode:
		code, err := decodeStringField(fields, 0, "cheat-code")
		if err != nil {
			return 0, nil, err
		}
		return tag, CheatCodeMsg{Code: code}, nil

	case InTempData:
		data, err := decodeStringField(fields, 0, "temp-data")
		if err != nil {
			return 0, nil, err
		}
		return tag, TempDataMsg{Data: data}, nil

	default:
		return 0, nil, apperr.NewProtocol("unknown prophunt inbound tag", nil)
	}
}

func decodeStringField(fields []interface{}, i int, what string) (string, error) {
	raw, err := field(fields, i)
	if err != nil {
		return "", apperr.NewProtocol(what, err)
	}
	s, err := asString(raw)
	if err != nil {
		return "", apperr.NewProtocol(what, err)
	}
	return s, nil
}

func decodeFloatField(fields []interface{}, i int, what string) (float64, error) {
	raw, err := field(fields, i)
	if err != nil {
		return 0, apperr.NewProtocol(what, err)
	}
	f, err := asFloat64(raw)
	if err != nil {
		return 0, apperr.NewProtocol(what, err)
	}
	return f, nil
}

func decodeIntField(fields []interface{}, i int, what string) (int, error) {
	raw, err := field(fields, i)
	if err != nil {
		return 0, apperr.NewProtocol(what, err)
	}
	n, err := asInt(raw)
	if err != nil {
		return 0, apperr.NewProtocol(what, err)
	}
	return n, nil
}

func decodeVec3(v interface{}) (geometry.Vec3, error) {
	arr, ok := v.([]interface{})
	if !ok || len(arr) != 3 {
		return geometry.Vec3{}, apperr.NewProtocol("vec3 must be a 3-element array", nil)
	}
	x, err := asFloat64(arr[0])
	if err != nil {
		return geometry.Vec3{}, err
	}
	y, err := asFloat64(arr[1])
	if err != nil {
		return geometry.Vec3{}, err
	}
	z, err := asFloat64(arr[2])
	if err != nil {
		return geometry.Vec3{}, err
	}
	return geometry.Vec3{X: x, Y: y, Z: z}, nil
}

func encodeVec3(v geometry.Vec3) []interface{} { return []interface{}{v.X, v.Y, v.Z} }

// EncodeInit encodes the outbound init(store-json) message.
func EncodeInit(storeJSON string) ([]byte, error) {
	return EncodeFrame(int(OutInit), []interface{}{storeJSON})
}

// UpdateBody mirrors the outbound update array layout exactly (spec §4.G
// "Update body").
type UpdateBody struct {
	PlayerID     *entity.ID
	SpectatingID *entity.ID
	StateTag     int
	StateTimer   float64
	Minimap      interface{} // nil unless changed or first update
	Events       []EncodedEvent
	Appeared     []map[entity.FieldFlag]any
	Updated      []map[entity.FieldFlag]any
	Disappeared  []entity.ID
	Destroyed    []entity.ID
}

// EncodedEvent is one [event-tag, event-payload] pair (spec §4.G "Events are
// [event-tag, event-payload]").
type EncodedEvent struct {
	Kind    event.Kind
	Payload interface{}
}

// EncodeUpdate encodes the outbound update message.
func EncodeUpdate(b UpdateBody) ([]byte, error) {
	events := make([]interface{}, len(b.Events))
	for i, e := range b.Events {
		events[i] = []interface{}{int(e.Kind), e.Payload}
	}

	var playerID, spectatingID interface{}
	if b.PlayerID != nil {
		playerID = *b.PlayerID
	}
	if b.SpectatingID != nil {
		spectatingID = *b.SpectatingID
	}

	body := []interface{}{
		playerID, spectatingID, b.StateTag, b.StateTimer, b.Minimap,
		events, toAnySlice(b.Appeared), toAnySlice(b.Updated), b.Disappeared, b.Destroyed,
	}
	return EncodeFrame(int(OutUpdate), body)
}

func toAnySlice(m []map[entity.FieldFlag]any) []interface{} {
	out := make([]interface{}, len(m))
	for i, v := range m {
		out[i] = v
	}
	return out
}

// EncodePingDelay encodes the outbound ping-delay(ms|null) message.
func EncodePingDelay(ms *int64) ([]byte, error) {
	var v interface{}
	if ms != nil {
		v = *ms
	}
	return EncodeFrame(int(OutPingDelay), []interface{}{v})
}

// EncodeShootDelay encodes the outbound shoot-delay(ms|null) message.
func EncodeShootDelay(ms *int64) ([]byte, error) {
	var v interface{}
	if ms != nil {
		v = *ms
	}
	return EncodeFrame(int(OutShootDelay), []interface{}{v})
}

// EncodeStamina encodes the outbound stamina(float) message.
func EncodeStamina(stamina float64) ([]byte, error) {
	return EncodeFrame(int(OutStamina), []interface{}{stamina})
}

// EncodeGameResults encodes the outbound game-results message as
// [props-win-bool, duration-seconds, entries], each entry being
// [player-id, username, [[label, value]...], total]. Totals and per-line
// breakdowns travel together in the entries; there is no separate
// scoreboard element.
func EncodeGameResults(payload event.ScoreboardUpdatePayload) ([]byte, error) {
	entries := make([]interface{}, len(payload.Entries))
	for i, e := range payload.Entries {
		lines := make([]interface{}, len(e.Lines))
		for j, l := range e.Lines {
			lines[j] = []interface{}{l.Label, l.Value}
		}
		entries[i] = []interface{}{e.PlayerID, e.Username, lines, e.Total}
	}
	return EncodeFrame(int(OutGameResults), []interface{}{payload.PropsWin, payload.DurationSeconds, entries})
}
