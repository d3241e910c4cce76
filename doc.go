/*
Package shrub compiles a declarative tree of state nodes into a single reducer, a flat set of
selectors and a flat set of action creators.

A tree is built from three node kinds defined in package tree:

  - Leaf: a terminal value with named actions.
  - Branch: a fixed set of uniquely named children, stored as a map keyed by child slug.
  - PolyBranch: a runtime collection of instances of one template node, keyed by a payload field.

Compose wraps the top-level nodes in a root branch and compiles them once. Every action a node
declares becomes an action type named UPPER_SNAKE(slug_name) in one flat namespace, and every
node contributes a selector named after its slug. The generated reducer touches only the slot of
the node that owns the action; every other slot of the previous state is shared with the next.

# Usage

	title, _ := tree.NewLeaf("title", leaves.String(""))
	todo, _ := tree.NewBranch("todo", tree.BranchBehavior{}, []tree.Node{title})
	todos, _ := tree.NewPolyBranch("todos", tree.PolyBehavior{Accessor: "id"}, todo)

	p, err := shrub.Compose([]tree.Node{todos})
	if err != nil {
		log.Fatal(err)
	}

	state, _ := p.Reduce(nil, p.Actions["TODOS_ADD"](map[string]any{"id": "a"}))
	state, _ = p.Reduce(state, p.Actions["TITLE_SET"](map[string]any{"id": "a", "value": "milk"}))
	title, _ := p.Select("title", state, map[string]any{"id": "a"})

The compiled artifacts are closures over an immutable tree and are safe for concurrent use.
Hosting state across requests (sessions, persistence, metrics) lives in pkg/session and the
adapters under pkg/adapters.
*/
package shrub
