package domain

import (
	"fmt"
	"reflect"

	"github.com/mitchellh/mapstructure"
)

// PayloadMap returns the payload as a map of fields.
// Maps with string keys are read directly; structs are decoded with mapstructure
// honoring their json tags. A nil payload yields an empty map.
func PayloadMap(payload any) (map[string]any, error) {
	switch p := payload.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return p, nil
	case map[string]string:
		m := make(map[string]any, len(p))
		for k, v := range p {
			m[k] = v
		}
		return m, nil
	}

	rv := reflect.Indirect(reflect.ValueOf(payload))
	if rv.Kind() != reflect.Struct && rv.Kind() != reflect.Map {
		return nil, fmt.Errorf("%w: expected an object, got %T", ErrInvalidPayload, payload)
	}

	var m map[string]any
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "json",
		Result:  &m,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return m, nil
}

// Field reads a single payload field.
func Field(payload any, name string) (any, bool) {
	m, err := PayloadMap(payload)
	if err != nil {
		return nil, false
	}
	v, ok := m[name]
	return v, ok
}

// DecodePayload decodes a payload into T.
// Input is weakly typed so JSON numbers land in int fields.
func DecodePayload[T any](payload any) (T, error) {
	var out T
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           &out,
	})
	if err != nil {
		return out, err
	}
	if err := dec.Decode(payload); err != nil {
		return out, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return out, nil
}
