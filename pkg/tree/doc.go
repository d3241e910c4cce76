/*
Package tree defines the three node kinds a shrub is built from.

  - Leaf: an opaque value plus the actions that replace it.
  - Branch: a fixed set of named children; its state is a map keyed by child slug.
  - PolyBranch: a dynamically keyed collection of copies of one template node.

Nodes are built bottom-up and never change afterwards. Behaviors are plain structs:
the caller lists its action handlers explicitly instead of having them discovered.

	counter, err := tree.NewLeaf("counter", tree.LeafBehavior{
		NewState: func() any { return 0 },
		Actions: []tree.Handler{
			{Name: "increment", Fn: func(state, _ any) (any, error) { return state.(int) + 1, nil }},
		},
	})

The set of node kinds is closed; the compiler dispatches on the concrete type.
*/
package tree
