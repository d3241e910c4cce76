package compiler

import (
	"sort"

	"github.com/denizsokullu/redux-shrub/pkg/tree"
)

// Program is the compiled form of a root branch.
type Program struct {
	Root      *tree.Branch
	Reducers  map[string]Reducer
	Selectors map[string]SelectorEntry
}

// Compile builds the flat tables of root. The root contributes no self selector.
func (c *Compiler) Compile(root *tree.Branch) (*Program, error) {
	reducers, err := c.Reducers(root)
	if err != nil {
		return nil, err
	}
	selectors, err := c.RootSelectors(root)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("tree compiled",
		"root", root.Slug(),
		"action_types", len(reducers),
		"selectors", len(selectors),
		"collision_policy", c.policy.String(),
	)
	return &Program{Root: root, Reducers: reducers, Selectors: selectors}, nil
}

// ActionTypes lists the compiled action types in sorted order.
func (p *Program) ActionTypes() []string {
	out := make([]string, 0, len(p.Reducers))
	for t := range p.Reducers {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// SelectorNames lists the compiled selector names in sorted order.
func (p *Program) SelectorNames() []string {
	out := make([]string, 0, len(p.Selectors))
	for name := range p.Selectors {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
