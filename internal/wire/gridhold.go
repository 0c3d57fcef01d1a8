package wire

import (
	"github.com/outpost-games/hideforge/internal/apperr"
	"github.com/outpost-games/hideforge/internal/entity"
)

// Inbound tags for the grid variant (spec §4.G).
const (
	GridInAuth Tag = iota
	GridInJoin
	GridInMove
)

// Outbound tags for the grid variant (spec §4.G).
const (
	GridOutJoin Tag = iota
	GridOutUpdate
)

type GridAuthMsg struct{ Token string }
type GridJoinMsg struct{ Username, ClassID string }
type GridMoveMsg struct{ Target entity.CellCoord }

// DecodeGridholdInbound decodes one raw frame into its tag and a typed
// inbound message for the grid variant's smaller tag set.
func DecodeGridholdInbound(data []byte) (Tag, interface{}, error) {
	tagInt, fields, err := DecodeFrame(data)
	if err != nil {
		return 0, nil, err
	}
	tag := Tag(tagInt)

	switch tag {
	case GridInAuth:
		s, err := decodeStringField(fields, 0, "auth token")
		if err != nil {
			return 0, nil, err
		}
		return tag, GridAuthMsg{Token: s}, nil

	case GridInJoin:
		username, err := decodeStringField(fields, 0, "join username")
		if err != nil {
			return 0, nil, err
		}
		classID, err := decodeStringField(fields, 1, "join class id")
		if err != nil {
			return 0, nil, err
		}
		return tag, GridJoinMsg{Username: username, ClassID: classID}, nil

	case GridInMove:
		x, err := decodeIntField(fields, 0, "move x")
		if err != nil {
			return 0, nil, err
		}
		y, err := decodeIntField(fields, 1, "move y")
		if err != nil {
			return 0, nil, err
		}
		return tag, GridMoveMsg{Target: entity.CellCoord{X: x, Y: y}}, nil

	default:
		return 0, nil, apperr.NewProtocol("unknown gridhold inbound tag", nil)
	}
}

// EncodeGridJoin encodes the outbound join(player-id) message.
func EncodeGridJoin(playerID entity.ID) ([]byte, error) {
	return EncodeFrame(int(GridOutJoin), []interface{}{playerID})
}

// GridUpdateBody mirrors the grid variant's outbound update array layout:
// serializations of the entities that appeared or updated, plus the ids of
// those that disappeared from view or were destroyed.
type GridUpdateBody struct {
	Appeared    []map[entity.FieldFlag]any
	Updated     []map[entity.FieldFlag]any
	Disappeared []entity.ID
	Destroyed   []entity.ID
}

// EncodeGridUpdate encodes the outbound update message.
func EncodeGridUpdate(b GridUpdateBody) ([]byte, error) {
	body := []interface{}{
		toAnySlice(b.Appeared), toAnySlice(b.Updated), b.Disappeared, b.Destroyed,
	}
	return EncodeFrame(int(GridOutUpdate), body)
}
