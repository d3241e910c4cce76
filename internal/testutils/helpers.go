// Package testutils holds fixtures shared by package tests.
package testutils

import (
	"testing"

	"github.com/stretchr/testify/require"

	shrub "github.com/denizsokullu/redux-shrub"
	"github.com/denizsokullu/redux-shrub/pkg/leaves"
	"github.com/denizsokullu/redux-shrub/pkg/tree"
)

// TodoNodes returns {count, todos: *title}. Members are title strings keyed by "id",
// seeded from the add payload's "title" field.
// It fails the test immediately on error.
func TodoNodes(t testing.TB) []tree.Node {
	t.Helper()

	count, err := tree.NewLeaf("count", leaves.Integer(0))
	require.NoError(t, err, "Failed to build count leaf")
	title, err := tree.NewLeaf("title", leaves.Seeded(leaves.String(""), "title"))
	require.NoError(t, err, "Failed to build title leaf")
	todos, err := tree.NewPolyBranch("todos", tree.PolyBehavior{Accessor: "id"}, title)
	require.NoError(t, err, "Failed to build todos collection")

	return []tree.Node{count, todos}
}

// NewTodoProvider composes TodoNodes.
func NewTodoProvider(t testing.TB, opts ...shrub.Option) *shrub.Provider {
	t.Helper()

	p, err := shrub.Compose(TodoNodes(t), opts...)
	require.NoError(t, err, "Failed to compose todo tree")
	return p
}
