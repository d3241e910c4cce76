/*
Package dsl provides a fluent builder for state trees.

It is a thin layer over the tree constructors: every builder collects a behavior, options and
children, and Build calls tree.NewLeaf, tree.NewBranch or tree.NewPolyBranch bottom-up. The
first construction error stops the build and is returned unchanged.

Example usage:

	todos := dsl.Poly("todos", "id").
		Template(dsl.Branch("todo").Child(
			dsl.Leaf("title").Use(leaves.String("")),
			dsl.Leaf("done").Use(leaves.Bool(false)),
		))

	nodes, err := dsl.Nodes(todos, dsl.Leaf("filter").Use(leaves.String("all")))
	if err != nil {
		log.Fatal(err)
	}
	provider, err := shrub.Compose(nodes)
*/
package dsl
