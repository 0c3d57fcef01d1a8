// Package wire implements the MessagePack `[tag, body]` frame codec shared
// by both game variants (spec §4.G "Wire codec & router").
package wire

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/outpost-games/hideforge/internal/apperr"
)

// DecodeFrame unpacks a raw WebSocket binary frame into its tag and body
// fields. body is nil for tags that carry no payload (e.g. jump).
func DecodeFrame(data []byte) (tag int, body []interface{}, err error) {
	var parts []interface{}
	if err := msgpack.Unmarshal(data, &parts); err != nil {
		return 0, nil, apperr.NewProtocol("malformed frame", err)
	}
	if len(parts) != 2 {
		return 0, nil, apperr.NewProtocol(fmt.Sprintf("frame must have 2 elements, got %d", len(parts)), nil)
	}

	tagInt, err := asInt(parts[0])
	if err != nil {
		return 0, nil, apperr.NewProtocol("frame tag is not an integer", err)
	}

	if parts[1] == nil {
		return tagInt, nil, nil
	}
	fields, ok := parts[1].([]interface{})
	if !ok {
		return 0, nil, apperr.NewProtocol(fmt.Sprintf("frame body has unexpected type %T", parts[1]), nil)
	}
	return tagInt, fields, nil
}

// EncodeFrame packs tag and body into one binary WebSocket frame.
func EncodeFrame(tag int, body []interface{}) ([]byte, error) {
	out, err := msgpack.Marshal([]interface{}{tag, body})
	if err != nil {
		return nil, apperr.NewProtocol("encode frame", err)
	}
	return out, nil
}

// asInt normalizes any of msgpack's decoded integer representations to int.
func asInt(v interface{}) (int, error) {
	switch n := v.(type) {
	case int64:
		return int(n), nil
	case int8:
		return int(n), nil
	case int16:
		return int(n), nil
	case int32:
		return int(n), nil
	case int:
		return n, nil
	case uint64:
		return int(n), nil
	case uint8:
		return int(n), nil
	case uint16:
		return int(n), nil
	case uint32:
		return int(n), nil
	default:
		return 0, fmt.Errorf("not an integer: %T", v)
	}
}

// asFloat64 normalizes any of msgpack's decoded numeric representations.
func asFloat64(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case int8:
		return float64(n), nil
	case int16:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case uint8:
		return float64(n), nil
	case uint16:
		return float64(n), nil
	case uint32:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("not a number: %T", v)
	}
}

func asString(v interface{}) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("not a string: %T", v)
	}
	return s, nil
}

func asBool(v interface{}) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("not a bool: %T", v)
	}
	return b, nil
}

func field(fields []interface{}, i int) (interface{}, error) {
	if i >= len(fields) {
		return nil, fmt.Errorf("missing field %d", i)
	}
	return fields[i], nil
}
