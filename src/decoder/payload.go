package decoder

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// -----------------------------------------------------------------------------
// Payload
// -----------------------------------------------------------------------------

// Kind tags the shape of a returnData value.
type Kind int

const (
	KindNone Kind = iota
	KindScalar
	KindObject
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindScalar:
		return "scalar"
	case KindObject:
		return "object"
	case KindList:
		return "list"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Payload is an untyped returnData value. Exactly one of Scalar, Object or
// List is meaningful, depending on Kind. Numbers are json.Number so that
// 64-bit order ids survive.
type Payload struct {
	Kind   Kind
	Scalar any
	Object map[string]any
	List   []any
}

// -----------------------------------------------------------------------------

// Parse reads one JSON value. Empty input and null both give KindNone.
func Parse(raw []byte) (Payload, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return Payload{Kind: KindNone}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return Payload{}, fmt.Errorf("invalid payload: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return Payload{}, fmt.Errorf("invalid payload: trailing data after JSON value")
	}
	return FromValue(v), nil
}

// -----------------------------------------------------------------------------

// FromValue classifies an already decoded value.
func FromValue(v any) Payload {
	switch t := v.(type) {
	case nil:
		return Payload{Kind: KindNone}
	case map[string]any:
		return Payload{Kind: KindObject, Object: t}
	case []any:
		return Payload{Kind: KindList, List: t}
	default:
		return Payload{Kind: KindScalar, Scalar: t}
	}
}

// Value returns the payload as the plain value it was parsed from.
func (p Payload) Value() any {
	switch p.Kind {
	case KindObject:
		return p.Object
	case KindList:
		return p.List
	case KindScalar:
		return p.Scalar
	}
	return nil
}
