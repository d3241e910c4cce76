package dsl

import (
	"fmt"

	"github.com/denizsokullu/redux-shrub/pkg/schema"
	"github.com/denizsokullu/redux-shrub/pkg/tree"
)

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	kind tree.Kind
	slug string
	opts []tree.Option

	leaf     tree.LeafBehavior
	branch   tree.BranchBehavior
	poly     tree.PolyBehavior
	actions  []tree.Handler
	children []*NodeBuilder
	template *NodeBuilder
}

// Leaf starts a leaf. Give it a value with Initial or a behavior with Use.
func Leaf(slug string) *NodeBuilder {
	return &NodeBuilder{kind: tree.KindLeaf, slug: slug}
}

// Branch starts a branch.
func Branch(slug string) *NodeBuilder {
	return &NodeBuilder{kind: tree.KindBranch, slug: slug}
}

// Poly starts a collection keyed by the payload field accessor.
func Poly(slug, accessor string) *NodeBuilder {
	return &NodeBuilder{kind: tree.KindPolyBranch, slug: slug, poly: tree.PolyBehavior{Accessor: accessor}}
}

// Use sets the base leaf behavior. Handlers added with On are appended to its actions.
func (n *NodeBuilder) Use(b tree.LeafBehavior) *NodeBuilder {
	n.leaf = b
	return n
}

// Initial sets a constant initial value. Only use it with immutable values.
func (n *NodeBuilder) Initial(v any) *NodeBuilder {
	n.leaf.NewState = func() any { return v }
	return n
}

// Seed sets the initial value of a collection member from the add payload.
func (n *NodeBuilder) Seed(fn func(payload any) any) *NodeBuilder {
	n.leaf.Seed = fn
	return n
}

// Shape post-processes the initial state of a branch.
func (n *NodeBuilder) Shape(fn func(children map[string]any) map[string]any) *NodeBuilder {
	n.branch.NewState = fn
	return n
}

// On adds an action handler.
func (n *NodeBuilder) On(name string, fn tree.ActionFunc) *NodeBuilder {
	n.actions = append(n.actions, tree.Handler{Name: name, Fn: fn})
	return n
}

// OnPayload adds an action handler whose payload is checked against s.
func (n *NodeBuilder) OnPayload(name string, s schema.Schema, fn tree.ActionFunc) *NodeBuilder {
	n.actions = append(n.actions, tree.Handler{Name: name, Fn: fn, Payload: s})
	return n
}

// AddWith overrides the add action of a collection.
func (n *NodeBuilder) AddWith(fn tree.ActionFunc) *NodeBuilder {
	n.poly.Add = fn
	return n
}

// RemoveWith overrides the remove action of a collection.
func (n *NodeBuilder) RemoveWith(fn tree.ActionFunc) *NodeBuilder {
	n.poly.Remove = fn
	return n
}

// Child appends children to a branch.
func (n *NodeBuilder) Child(children ...*NodeBuilder) *NodeBuilder {
	n.children = append(n.children, children...)
	return n
}

// Template sets the member node of a collection.
func (n *NodeBuilder) Template(t *NodeBuilder) *NodeBuilder {
	n.template = t
	return n
}

// Options appends node options.
func (n *NodeBuilder) Options(opts ...tree.Option) *NodeBuilder {
	n.opts = append(n.opts, opts...)
	return n
}

// Build constructs the node and all of its descendants.
func (n *NodeBuilder) Build() (tree.Node, error) {
	switch n.kind {
	case tree.KindLeaf:
		if len(n.children) > 0 || n.template != nil {
			return nil, fmt.Errorf("dsl: leaf %q cannot have children", n.slug)
		}
		b := n.leaf
		b.Actions = append(append([]tree.Handler{}, b.Actions...), n.actions...)
		return tree.NewLeaf(n.slug, b, n.opts...)

	case tree.KindBranch:
		children, err := build(n.children)
		if err != nil {
			return nil, err
		}
		b := n.branch
		b.Actions = n.actions
		return tree.NewBranch(n.slug, b, children, n.opts...)

	case tree.KindPolyBranch:
		var template tree.Node
		if n.template != nil {
			var err error
			if template, err = n.template.Build(); err != nil {
				return nil, err
			}
		}
		b := n.poly
		b.Actions = n.actions
		return tree.NewPolyBranch(n.slug, b, template, n.opts...)
	}
	return nil, fmt.Errorf("dsl: unknown node kind %q", n.kind)
}

// Nodes builds several top-level nodes, ready for shrub.Compose.
func Nodes(builders ...*NodeBuilder) ([]tree.Node, error) {
	return build(builders)
}

func build(builders []*NodeBuilder) ([]tree.Node, error) {
	nodes := make([]tree.Node, 0, len(builders))
	for _, b := range builders {
		if b == nil {
			return nil, fmt.Errorf("dsl: nil builder")
		}
		node, err := b.Build()
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}
