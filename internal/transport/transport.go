// Package transport encodes and decodes tree state as JSON, node by node.
//
// Branch and collection state become JSON objects; leaf values are marshalled as-is
// and decoded back into the Go type of the leaf's initial value, so typed leaves
// survive a round trip.
package transport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/denizsokullu/redux-shrub/pkg/domain"
	"github.com/denizsokullu/redux-shrub/pkg/tree"
)

var null = []byte("null")

// Encode renders the state of node n.
func Encode(n tree.Node, state any) (json.RawMessage, error) {
	switch n := n.(type) {
	case *tree.Leaf:
		data, err := json.Marshal(state)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", n.Slug(), err)
		}
		return data, nil

	case *tree.Branch:
		m, ok := state.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("encode %s: %w: expected map, got %T", n.Slug(), domain.ErrInvalidState, state)
		}
		out := make(map[string]json.RawMessage, len(m))
		for _, child := range n.Children() {
			raw, err := Encode(child, m[child.Slug()])
			if err != nil {
				return nil, fmt.Errorf("encode %s: %w", n.Slug(), err)
			}
			out[child.Slug()] = raw
		}
		return json.Marshal(out)

	case *tree.PolyBranch:
		members, ok := state.(tree.Collection)
		if !ok {
			return nil, fmt.Errorf("encode %s: %w: expected collection, got %T", n.Slug(), domain.ErrInvalidState, state)
		}
		out := make(map[string]json.RawMessage, len(members))
		for key, member := range members {
			raw, err := Encode(n.Template(), member)
			if err != nil {
				return nil, fmt.Errorf("encode %s[%s]: %w", n.Slug(), key, err)
			}
			out[key] = raw
		}
		return json.Marshal(out)
	}
	return nil, fmt.Errorf("encode: unknown node type %T", n)
}

// Decode restores the state of node n. Absent branch slots get their initial state.
func Decode(n tree.Node, raw json.RawMessage) (any, error) {
	isNull := len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), null)

	switch n := n.(type) {
	case *tree.Leaf:
		if dec := n.Decoder(); dec != nil {
			return dec(raw)
		}
		if isNull {
			return nil, nil
		}
		return decodeLike(n.NewState(nil), raw)

	case *tree.Branch:
		if isNull {
			return n.NewState(nil), nil
		}
		var slots map[string]json.RawMessage
		if err := json.Unmarshal(raw, &slots); err != nil {
			return nil, fmt.Errorf("decode %s: %w", n.Slug(), err)
		}
		state := make(map[string]any, len(slots))
		for _, child := range n.Children() {
			slot, ok := slots[child.Slug()]
			if !ok {
				state[child.Slug()] = tree.InitialState(child, nil)
				continue
			}
			v, err := Decode(child, slot)
			if err != nil {
				return nil, fmt.Errorf("decode %s: %w", n.Slug(), err)
			}
			state[child.Slug()] = v
		}
		return state, nil

	case *tree.PolyBranch:
		if isNull {
			return n.NewState(), nil
		}
		var slots map[string]json.RawMessage
		if err := json.Unmarshal(raw, &slots); err != nil {
			return nil, fmt.Errorf("decode %s: %w", n.Slug(), err)
		}
		members := make(tree.Collection, len(slots))
		for key, slot := range slots {
			v, err := Decode(n.Template(), slot)
			if err != nil {
				return nil, fmt.Errorf("decode %s[%s]: %w", n.Slug(), key, err)
			}
			members[key] = v
		}
		return members, nil
	}
	return nil, fmt.Errorf("decode: unknown node type %T", n)
}

// decodeLike unmarshals raw into a fresh value of the same type as proto.
func decodeLike(proto any, raw json.RawMessage) (any, error) {
	if proto == nil {
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return v, nil
	}
	ptr := reflect.New(reflect.TypeOf(proto))
	if err := json.Unmarshal(raw, ptr.Interface()); err != nil {
		return nil, err
	}
	return ptr.Elem().Interface(), nil
}

// RawPayload extracts the JSON document carried by a fromJSON payload.
// Accepted: string, []byte, json.RawMessage, or an object whose "json" field holds
// one of those or an already structured value.
func RawPayload(payload any) (json.RawMessage, error) {
	switch p := payload.(type) {
	case string:
		return json.RawMessage(p), nil
	case []byte:
		return json.RawMessage(p), nil
	case json.RawMessage:
		return p, nil
	}

	v, ok := domain.Field(payload, domain.KeyJSON)
	if !ok {
		return nil, fmt.Errorf("%w: fromJSON expects a JSON document or a %q field", domain.ErrInvalidPayload, domain.KeyJSON)
	}
	switch v := v.(type) {
	case string, []byte, json.RawMessage:
		return RawPayload(v)
	default:
		return json.Marshal(v)
	}
}
