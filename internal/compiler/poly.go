package compiler

import (
	"fmt"

	"github.com/denizsokullu/redux-shrub/internal/naming"
	"github.com/denizsokullu/redux-shrub/pkg/domain"
	"github.com/denizsokullu/redux-shrub/pkg/tree"
)

// memberPath stands for the runtime key in entry paths.
const memberPath = "*"

func (c *Compiler) polyReducers(p *tree.PolyBranch) (map[string]Reducer, error) {
	table := make(map[string]Reducer)
	if err := c.ownReducers(table, p, p.Handlers()); err != nil {
		return nil, err
	}

	templateTable, err := c.Reducers(p.Template())
	if err != nil {
		return nil, err
	}
	for actionType, r := range templateTable {
		lifted := Reducer{
			Fn:      liftToMember(p, r.Fn),
			Path:    joinPath(memberPath, r.Path),
			Payload: r.Payload,
		}
		if p.Options().IncludeSlugInChildReducers {
			actionType = naming.ActionType(p.Slug(), actionType)
		}
		if err := c.mergeReducer(table, p.Slug(), actionType, lifted); err != nil {
			return nil, err
		}
	}
	return table, nil
}

func (c *Compiler) polySelectors(p *tree.PolyBranch) (map[string]SelectorEntry, error) {
	table := make(map[string]SelectorEntry)
	if p.Options().IncludeSelfSelector {
		table[p.Slug()] = SelectorEntry{Fn: identity}
	}

	templateTable, err := c.Selectors(p.Template())
	if err != nil {
		return nil, err
	}
	for name, s := range templateTable {
		lifted := SelectorEntry{
			Fn:   readMember(p, s.Fn),
			Path: joinPath(memberPath, s.Path),
		}
		if p.Options().IncludeSlugInChildSelectors {
			name = naming.SelectorName(p.Slug(), name)
		}
		if err := c.mergeSelector(table, p.Slug(), name, lifted); err != nil {
			return nil, err
		}
	}
	return table, nil
}

// member resolves the collection member addressed by payload.
func member(p *tree.PolyBranch, state, payload any) (tree.Collection, string, any, error) {
	members, ok := state.(tree.Collection)
	if !ok {
		return nil, "", nil, fmt.Errorf("%w: expected collection at %q, got %T", domain.ErrInvalidState, p.Slug(), state)
	}
	key, ok := p.Key(payload)
	if !ok {
		return nil, "", nil, fmt.Errorf("%w: payload field %q must be a string", domain.ErrMissingCollectionMember, p.Accessor())
	}
	value, exists := members[key]
	if !exists {
		return nil, "", nil, fmt.Errorf("%w: %q not in %q", domain.ErrMissingCollectionMember, key, p.Slug())
	}
	return members, key, value, nil
}

// liftToMember makes fn operate on the member keyed by payload[accessor].
// Absent members are an error; state is never fabricated for them.
func liftToMember(p *tree.PolyBranch, fn ScopedFunc) ScopedFunc {
	return func(state, payload any) (any, error) {
		members, key, value, err := member(p, state, payload)
		if err != nil {
			return nil, err
		}

		inner, err := fn(value, payload)
		if err != nil {
			return nil, err
		}

		next := make(tree.Collection, len(members))
		for k, v := range members {
			next[k] = v
		}
		next[key] = inner
		return next, nil
	}
}

func readMember(p *tree.PolyBranch, fn Selector) Selector {
	return func(state, payload any) (any, error) {
		_, _, value, err := member(p, state, payload)
		if err != nil {
			return nil, err
		}
		return fn(value, payload)
	}
}
