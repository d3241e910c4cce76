package graph_test

import (
	"strings"
	"testing"

	"github.com/denizsokullu/redux-shrub/internal/presentation/graph"
	"github.com/denizsokullu/redux-shrub/pkg/leaves"
	"github.com/denizsokullu/redux-shrub/pkg/tree"
)

func buildTree(t *testing.T) tree.Node {
	t.Helper()
	title, err := tree.NewLeaf("title", leaves.String(""))
	if err != nil {
		t.Fatal(err)
	}
	todo, err := tree.NewBranch("todo", tree.BranchBehavior{}, []tree.Node{title})
	if err != nil {
		t.Fatal(err)
	}
	todos, err := tree.NewPolyBranch("todos", tree.PolyBehavior{Accessor: "id"}, todo)
	if err != nil {
		t.Fatal(err)
	}
	count, err := tree.NewLeaf("my-count", leaves.Integer(0))
	if err != nil {
		t.Fatal(err)
	}
	root, err := tree.NewBranch("root", tree.BranchBehavior{}, []tree.Node{todos, count})
	if err != nil {
		t.Fatal(err)
	}
	return root
}

func TestGenerateMermaid(t *testing.T) {
	root := buildTree(t)

	tests := []struct {
		name     string
		overlay  *graph.Overlay
		contains []string
	}{
		{
			name: "Node Shapes",
			contains: []string{
				`root(("root"))`,
				`todos[["todos"]]`,
				`todos_member["todo"]`,
				`todos_member_title("title")`,
			},
		},
		{
			name: "Edges",
			contains: []string{
				"root --> todos",
				`todos -. "id" .-> todos_member`,
				"todos_member --> todos_member_title",
			},
		},
		{
			name:     "ID Sanitization",
			contains: []string{`my_count("my-count")`},
		},
		{
			name:    "Overlay",
			overlay: &graph.Overlay{Highlight: []string{"todos.*.title", "todos.*.title"}},
			contains: []string{
				"classDef highlight",
				"class todos_member_title highlight;",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(root, tt.overlay)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("GenerateMermaid() = \n%v\nWant substring: %v", got, want)
				}
			}
			if tt.overlay != nil && strings.Count(got, "class todos_member_title highlight;") != 1 {
				t.Errorf("highlight classes must be deduplicated:\n%v", got)
			}
		})
	}
}
