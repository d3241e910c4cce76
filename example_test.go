package shrub_test

import (
	"fmt"

	shrub "github.com/denizsokullu/redux-shrub"
	"github.com/denizsokullu/redux-shrub/pkg/leaves"
	"github.com/denizsokullu/redux-shrub/pkg/tree"
)

func Example() {
	title, _ := tree.NewLeaf("title", leaves.Seeded(leaves.String(""), "title"))
	todo, _ := tree.NewBranch("todo", tree.BranchBehavior{}, []tree.Node{title})
	todos, _ := tree.NewPolyBranch("todos", tree.PolyBehavior{Accessor: "id"}, todo)

	p, err := shrub.Compose([]tree.Node{todos})
	if err != nil {
		fmt.Println(err)
		return
	}

	state, _ := p.Reduce(nil, p.Actions["TODOS_ADD"](map[string]any{"id": "a", "title": "milk"}))
	state, _ = p.Reduce(state, p.Actions["TITLE_SET"](map[string]any{"id": "a", "value": "oat milk"}))

	got, _ := p.Select("title", state, map[string]any{"id": "a"})
	fmt.Println(got)
	// Output: oat milk
}

func ExampleProvider_ActionTypes() {
	count, _ := tree.NewLeaf("count", leaves.Integer(0))
	p, _ := shrub.Compose([]tree.Node{count})

	for _, t := range p.ActionTypes() {
		fmt.Println(t)
	}
	// Output:
	// COUNT_DECREMENT
	// COUNT_INCREMENT
	// COUNT_RESET
	// COUNT_SET
}
