package kvstore

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
)

// Kind identifies the shape held by a Value.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindString
	KindMap
	KindBytes
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindMap:
		return "map"
	case KindBytes:
		return "bytes"
	default:
		return "invalid"
	}
}

// Value is a string, a flat string map or opaque bytes.
// The zero Value is invalid and cannot be stored.
type Value struct {
	kind Kind
	str  string
	m    map[string]string
	b    []byte
}

// String returns a string value.
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// Map returns a map value holding a copy of m.
func Map(m map[string]string) Value {
	c := make(map[string]string, len(m))
	maps.Copy(c, m)
	return Value{kind: KindMap, m: c}
}

// Bytes returns a bytes value holding a copy of b.
func Bytes(b []byte) Value {
	c := bytes.Clone(b)
	if c == nil {
		c = []byte{}
	}
	return Value{kind: KindBytes, b: c}
}

// Kind returns the shape of v.
func (v Value) Kind() Kind {
	return v.kind
}

// IsValid reports whether v holds one of the supported shapes.
func (v Value) IsValid() bool {
	return v.kind == KindString || v.kind == KindMap || v.kind == KindBytes
}

// AsString returns the string held by v.
func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

// AsMap returns a copy of the map held by v.
func (v Value) AsMap() (map[string]string, bool) {
	if v.kind != KindMap {
		return nil, false
	}
	c := make(map[string]string, len(v.m))
	maps.Copy(c, v.m)
	return c, true
}

// AsBytes returns a copy of the bytes held by v.
func (v Value) AsBytes() ([]byte, bool) {
	if v.kind != KindBytes {
		return nil, false
	}
	return bytes.Clone(v.b), true
}

// Equal reports whether both values have the same kind and content.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == other.str
	case KindMap:
		return maps.Equal(v.m, other.m)
	case KindBytes:
		return bytes.Equal(v.b, other.b)
	default:
		return true
	}
}

func (v Value) clone() Value {
	switch v.kind {
	case KindMap:
		return Map(v.m)
	case KindBytes:
		return Bytes(v.b)
	default:
		return v
	}
}

// Encode serializes v into a self-describing byte form: one kind byte
// followed by the payload. Maps are encoded as JSON objects.
func Encode(v Value) ([]byte, error) {
	switch v.kind {
	case KindString:
		return append([]byte{byte(KindString)}, v.str...), nil
	case KindBytes:
		return append([]byte{byte(KindBytes)}, v.b...), nil
	case KindMap:
		payload, err := json.Marshal(v.m)
		if err != nil {
			return nil, errors.Join(ErrInvalidValue, err)
		}
		return append([]byte{byte(KindMap)}, payload...), nil
	default:
		return nil, ErrInvalidValue
	}
}

// Decode reverses Encode.
func Decode(data []byte) (Value, error) {
	if len(data) == 0 {
		return Value{}, fmt.Errorf("%w: empty payload", ErrCorruptedValue)
	}

	payload := data[1:]
	switch Kind(data[0]) {
	case KindString:
		return String(string(payload)), nil
	case KindBytes:
		return Bytes(payload), nil
	case KindMap:
		var m map[string]string
		if err := json.Unmarshal(payload, &m); err != nil {
			return Value{}, errors.Join(ErrCorruptedValue, err)
		}
		return Map(m), nil
	default:
		return Value{}, fmt.Errorf("%w: unknown kind %d", ErrCorruptedValue, data[0])
	}
}
