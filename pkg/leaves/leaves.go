package leaves

import (
	"fmt"
	"sort"

	"github.com/denizsokullu/redux-shrub/pkg/domain"
	"github.com/denizsokullu/redux-shrub/pkg/schema"
	"github.com/denizsokullu/redux-shrub/pkg/tree"
)

type valuePayload[T any] struct {
	Value T `json:"value"`
}

type indexPayload struct {
	Index int `json:"index"`
}

type keyPayload struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

type stepPayload struct {
	By *int `json:"by"`
}

// setHandler replaces the value with payload.value, decoded as T.
func setHandler[T any](valueType schema.Type) tree.Handler {
	return tree.Handler{
		Name: "set",
		Fn: func(_, payload any) (any, error) {
			p, err := domain.DecodePayload[valuePayload[T]](payload)
			if err != nil {
				return nil, err
			}
			return p.Value, nil
		},
		Payload: schema.Schema{"value": valueType},
	}
}

func resetHandler(initial func() any) tree.Handler {
	return tree.Handler{
		Name: "reset",
		Fn:   func(_, _ any) (any, error) { return initial(), nil },
	}
}

func expect[T any](state any) (T, error) {
	v, ok := state.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: expected %T, got %T", domain.ErrInvalidState, zero, state)
	}
	return v, nil
}

// String holds a string.
func String(initial string) tree.LeafBehavior {
	newState := func() any { return initial }
	return tree.LeafBehavior{
		NewState: newState,
		Actions: []tree.Handler{
			setHandler[string](schema.String()),
			resetHandler(newState),
		},
	}
}

// Integer holds an int. Actions: increment and decrement, by payload.by or 1.
func Integer(initial int) tree.LeafBehavior {
	newState := func() any { return initial }
	step := func(sign int) tree.ActionFunc {
		return func(state, payload any) (any, error) {
			n, err := expect[int](state)
			if err != nil {
				return nil, err
			}
			by := 1
			if payload != nil {
				p, err := domain.DecodePayload[stepPayload](payload)
				if err != nil {
					return nil, err
				}
				if p.By != nil {
					by = *p.By
				}
			}
			return n + sign*by, nil
		}
	}
	byField := schema.Schema{"by": schema.Optional(schema.Int())}
	return tree.LeafBehavior{
		NewState: newState,
		Actions: []tree.Handler{
			setHandler[int](schema.Int()),
			resetHandler(newState),
			{Name: "increment", Fn: step(1), Payload: byField},
			{Name: "decrement", Fn: step(-1), Payload: byField},
		},
	}
}

// Bool holds a bool. Actions: toggle.
func Bool(initial bool) tree.LeafBehavior {
	newState := func() any { return initial }
	return tree.LeafBehavior{
		NewState: newState,
		Actions: []tree.Handler{
			setHandler[bool](schema.Bool()),
			resetHandler(newState),
			{Name: "toggle", Fn: func(state, _ any) (any, error) {
				b, err := expect[bool](state)
				if err != nil {
					return nil, err
				}
				return !b, nil
			}},
		},
	}
}

// List holds a []any. Actions: push appends payload.value, removeAt drops payload.index.
func List(initial []any) tree.LeafBehavior {
	newState := func() any { return append([]any{}, initial...) }
	return tree.LeafBehavior{
		NewState: newState,
		Actions: []tree.Handler{
			setHandler[[]any](schema.Slice(schema.Any())),
			resetHandler(newState),
			{
				Name: "push",
				Fn: func(state, payload any) (any, error) {
					list, err := expect[[]any](state)
					if err != nil {
						return nil, err
					}
					p, err := domain.DecodePayload[valuePayload[any]](payload)
					if err != nil {
						return nil, err
					}
					next := make([]any, len(list), len(list)+1)
					copy(next, list)
					return append(next, p.Value), nil
				},
				Payload: schema.Schema{"value": schema.Any()},
			},
			{
				Name: "removeAt",
				Fn: func(state, payload any) (any, error) {
					list, err := expect[[]any](state)
					if err != nil {
						return nil, err
					}
					p, err := domain.DecodePayload[indexPayload](payload)
					if err != nil {
						return nil, err
					}
					if p.Index < 0 || p.Index >= len(list) {
						return nil, fmt.Errorf("%w: index %d out of range [0,%d)", domain.ErrInvalidPayload, p.Index, len(list))
					}
					next := make([]any, 0, len(list)-1)
					next = append(next, list[:p.Index]...)
					return append(next, list[p.Index+1:]...), nil
				},
				Payload: schema.Schema{"index": schema.Int()},
			},
		},
	}
}

// Map holds a map[string]any. Actions: put sets payload.key to payload.value, delete drops payload.key.
func Map(initial map[string]any) tree.LeafBehavior {
	newState := func() any {
		m := make(map[string]any, len(initial))
		for k, v := range initial {
			m[k] = v
		}
		return m
	}
	clone := func(m map[string]any) map[string]any {
		next := make(map[string]any, len(m)+1)
		for k, v := range m {
			next[k] = v
		}
		return next
	}
	return tree.LeafBehavior{
		NewState: newState,
		Actions: []tree.Handler{
			setHandler[map[string]any](schema.Any()),
			resetHandler(newState),
			{
				Name: "put",
				Fn: func(state, payload any) (any, error) {
					m, err := expect[map[string]any](state)
					if err != nil {
						return nil, err
					}
					p, err := domain.DecodePayload[keyPayload](payload)
					if err != nil {
						return nil, err
					}
					next := clone(m)
					next[p.Key] = p.Value
					return next, nil
				},
				Payload: schema.Schema{"key": schema.String(), "value": schema.Any()},
			},
			{
				Name: "delete",
				Fn: func(state, payload any) (any, error) {
					m, err := expect[map[string]any](state)
					if err != nil {
						return nil, err
					}
					p, err := domain.DecodePayload[keyPayload](payload)
					if err != nil {
						return nil, err
					}
					if _, ok := m[p.Key]; !ok {
						return m, nil
					}
					next := clone(m)
					delete(next, p.Key)
					return next, nil
				},
				Payload: schema.Schema{"key": schema.String()},
			},
		},
	}
}

// Set holds a sorted []string without duplicates. Actions: add and remove payload.value.
func Set(initial []string) tree.LeafBehavior {
	newState := func() any { return normalize(initial) }
	member := schema.Schema{"value": schema.String()}
	return tree.LeafBehavior{
		NewState: newState,
		Actions: []tree.Handler{
			{
				Name: "set",
				Fn: func(_, payload any) (any, error) {
					p, err := domain.DecodePayload[valuePayload[[]string]](payload)
					if err != nil {
						return nil, err
					}
					return normalize(p.Value), nil
				},
				Payload: schema.Schema{"value": schema.Slice(schema.String())},
			},
			resetHandler(newState),
			{
				Name: "add",
				Fn: func(state, payload any) (any, error) {
					set, err := expect[[]string](state)
					if err != nil {
						return nil, err
					}
					p, err := domain.DecodePayload[valuePayload[string]](payload)
					if err != nil {
						return nil, err
					}
					return normalize(append(append([]string{}, set...), p.Value)), nil
				},
				Payload: member,
			},
			{
				Name: "remove",
				Fn: func(state, payload any) (any, error) {
					set, err := expect[[]string](state)
					if err != nil {
						return nil, err
					}
					p, err := domain.DecodePayload[valuePayload[string]](payload)
					if err != nil {
						return nil, err
					}
					next := make([]string, 0, len(set))
					for _, s := range set {
						if s != p.Value {
							next = append(next, s)
						}
					}
					return next, nil
				},
				Payload: member,
			},
		},
	}
}

func normalize(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

// Seeded makes collection members start from payload[field] instead of the initial value.
// The field is decoded into the type of the initial value; on mismatch the initial value is kept.
func Seeded(b tree.LeafBehavior, field string) tree.LeafBehavior {
	newState := b.NewState
	b.Seed = func(payload any) any {
		v, ok := domain.Field(payload, field)
		if !ok {
			return newState()
		}
		seed, err := coerce(newState(), v)
		if err != nil {
			return newState()
		}
		return seed
	}
	return b
}

func coerce(like, v any) (any, error) {
	switch like.(type) {
	case string:
		return domain.DecodePayload[string](v)
	case int:
		return domain.DecodePayload[int](v)
	case bool:
		return domain.DecodePayload[bool](v)
	case []any:
		return domain.DecodePayload[[]any](v)
	case []string:
		s, err := domain.DecodePayload[[]string](v)
		return normalize(s), err
	case map[string]any:
		return domain.DecodePayload[map[string]any](v)
	}
	return v, nil
}
