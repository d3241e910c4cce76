package compiler

import (
	"fmt"

	"github.com/denizsokullu/redux-shrub/internal/naming"
	"github.com/denizsokullu/redux-shrub/internal/transport"
	"github.com/denizsokullu/redux-shrub/pkg/domain"
	"github.com/denizsokullu/redux-shrub/pkg/schema"
	"github.com/denizsokullu/redux-shrub/pkg/tree"
)

// Reducers compiles the action-type table of n, scoped to n's own state.
func (c *Compiler) Reducers(n tree.Node) (map[string]Reducer, error) {
	switch n := n.(type) {
	case *tree.Leaf:
		return c.leafReducers(n)
	case *tree.Branch:
		return c.branchReducers(n)
	case *tree.PolyBranch:
		return c.polyReducers(n)
	}
	return nil, fmt.Errorf("compiler: unknown node type %T", n)
}

func (c *Compiler) leafReducers(l *tree.Leaf) (map[string]Reducer, error) {
	table := make(map[string]Reducer)
	if err := c.ownReducers(table, l, l.Handlers()); err != nil {
		return nil, err
	}
	return table, nil
}

func (c *Compiler) branchReducers(b *tree.Branch) (map[string]Reducer, error) {
	table := make(map[string]Reducer)
	if err := c.ownReducers(table, b, b.Handlers()); err != nil {
		return nil, err
	}
	for actionType, r := range table {
		r.Fn = branchShaped(b.Slug(), r.Fn)
		table[actionType] = r
	}

	for _, child := range b.Children() {
		childTable, err := c.Reducers(child)
		if err != nil {
			return nil, err
		}
		for actionType, r := range childTable {
			lifted := Reducer{
				Fn:      liftToSlot(child.Slug(), r.Fn),
				Path:    joinPath(child.Slug(), r.Path),
				Payload: r.Payload,
			}
			if b.Options().IncludeSlugInChildReducers {
				actionType = naming.ActionType(b.Slug(), actionType)
			}
			if err := c.mergeReducer(table, b.Slug(), actionType, lifted); err != nil {
				return nil, err
			}
		}
	}
	return table, nil
}

// ownReducers adds the node's own handlers, and its fromJSON action when enabled.
func (c *Compiler) ownReducers(table map[string]Reducer, n tree.Node, handlers []tree.Handler) error {
	for _, h := range handlers {
		r := Reducer{Fn: handlerFunc(h), Payload: h.Payload}
		if err := c.mergeReducer(table, n.Slug(), naming.ActionType(n.Slug(), h.Name), r); err != nil {
			return err
		}
	}
	if n.Options().IncludeJSONAction {
		r := Reducer{Fn: fromJSONFunc(n)}
		if err := c.mergeReducer(table, n.Slug(), naming.ActionType(n.Slug(), domain.FromJSONName), r); err != nil {
			return err
		}
	}
	return nil
}

// handlerFunc adapts a handler, checking its payload schema first.
func handlerFunc(h tree.Handler) ScopedFunc {
	if len(h.Payload) == 0 {
		return ScopedFunc(h.Fn)
	}
	return func(state, payload any) (any, error) {
		fields, err := domain.PayloadMap(payload)
		if err != nil {
			return nil, err
		}
		if err := schema.Validate(h.Payload, fields); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrInvalidPayload, err)
		}
		return h.Fn(state, payload)
	}
}

// branchShaped rejects results that are not a branch map.
func branchShaped(slug string, fn ScopedFunc) ScopedFunc {
	return func(state, payload any) (any, error) {
		next, err := fn(state, payload)
		if err != nil {
			return nil, err
		}
		if _, ok := next.(map[string]any); !ok {
			return nil, fmt.Errorf("%w: branch %q must stay a map, got %T", domain.ErrInvalidState, slug, next)
		}
		return next, nil
	}
}

func fromJSONFunc(n tree.Node) ScopedFunc {
	return func(_, payload any) (any, error) {
		raw, err := transport.RawPayload(payload)
		if err != nil {
			return nil, err
		}
		return transport.Decode(n, raw)
	}
}

// liftToSlot makes fn operate on a parent map by touching only state[slug].
// The parent map is copied; every other slot is shared with the input.
func liftToSlot(slug string, fn ScopedFunc) ScopedFunc {
	return func(state, payload any) (any, error) {
		parent, ok := state.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: expected map around %q, got %T", domain.ErrInvalidState, slug, state)
		}

		inner, err := fn(parent[slug], payload)
		if err != nil {
			return nil, err
		}

		next := make(map[string]any, len(parent))
		for k, v := range parent {
			next[k] = v
		}
		next[slug] = inner
		return next, nil
	}
}
