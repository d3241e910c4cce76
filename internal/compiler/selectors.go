package compiler

import (
	"fmt"

	"github.com/denizsokullu/redux-shrub/internal/naming"
	"github.com/denizsokullu/redux-shrub/pkg/domain"
	"github.com/denizsokullu/redux-shrub/pkg/tree"
)

func identity(state, _ any) (any, error) { return state, nil }

// Selectors compiles the selector table of n, scoped to n's own state.
func (c *Compiler) Selectors(n tree.Node) (map[string]SelectorEntry, error) {
	switch n := n.(type) {
	case *tree.Leaf:
		table := make(map[string]SelectorEntry)
		if n.Options().IncludeSelfSelector {
			table[n.Slug()] = SelectorEntry{Fn: identity}
		}
		return table, nil
	case *tree.Branch:
		return c.branchSelectors(n, n.Options().IncludeSelfSelector)
	case *tree.PolyBranch:
		return c.polySelectors(n)
	}
	return nil, fmt.Errorf("compiler: unknown node type %T", n)
}

// RootSelectors compiles a branch without its own identity selector.
func (c *Compiler) RootSelectors(root *tree.Branch) (map[string]SelectorEntry, error) {
	return c.branchSelectors(root, false)
}

func (c *Compiler) branchSelectors(b *tree.Branch, self bool) (map[string]SelectorEntry, error) {
	table := make(map[string]SelectorEntry)
	if self {
		table[b.Slug()] = SelectorEntry{Fn: identity}
	}

	for _, child := range b.Children() {
		childTable, err := c.Selectors(child)
		if err != nil {
			return nil, err
		}
		for name, s := range childTable {
			lifted := SelectorEntry{
				Fn:   readSlot(child.Slug(), s.Fn),
				Path: joinPath(child.Slug(), s.Path),
			}
			if b.Options().IncludeSlugInChildSelectors {
				name = naming.SelectorName(b.Slug(), name)
			}
			if err := c.mergeSelector(table, b.Slug(), name, lifted); err != nil {
				return nil, err
			}
		}
	}
	return table, nil
}

func readSlot(slug string, fn Selector) Selector {
	return func(state, payload any) (any, error) {
		parent, ok := state.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: expected map around %q, got %T", domain.ErrInvalidState, slug, state)
		}
		return fn(parent[slug], payload)
	}
}
