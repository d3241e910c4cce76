package shrub_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	shrub "github.com/denizsokullu/redux-shrub"
	"github.com/denizsokullu/redux-shrub/pkg/domain"
	"github.com/denizsokullu/redux-shrub/pkg/leaves"
	"github.com/denizsokullu/redux-shrub/pkg/tree"
)

func mustLeaf(t *testing.T, slug string, b tree.LeafBehavior, opts ...tree.Option) tree.Node {
	t.Helper()
	l, err := tree.NewLeaf(slug, b, opts...)
	require.NoError(t, err)
	return l
}

func mustBranch(t *testing.T, slug string, children ...tree.Node) tree.Node {
	t.Helper()
	b, err := tree.NewBranch(slug, tree.BranchBehavior{}, children)
	require.NoError(t, err)
	return b
}

// todoTree is {count, todos: *{title, done}}.
func todoTree(t *testing.T) []tree.Node {
	t.Helper()
	todo := mustBranch(t, "todo",
		mustLeaf(t, "title", leaves.Seeded(leaves.String(""), "title")),
		mustLeaf(t, "done", leaves.Bool(false)),
	)
	todos, err := tree.NewPolyBranch("todos", tree.PolyBehavior{Accessor: "id"}, todo)
	require.NoError(t, err)
	return []tree.Node{mustLeaf(t, "count", leaves.Integer(0)), todos}
}

func TestCompose_NestedLeaf(t *testing.T) {
	l1 := mustLeaf(t, "l1", tree.LeafBehavior{
		NewState: func() any { return "a" },
		Actions: []tree.Handler{{Name: "update", Fn: func(_, payload any) (any, error) {
			return payload, nil
		}}},
	})
	l2 := mustLeaf(t, "l2", leaves.Integer(0))

	p, err := shrub.Compose([]tree.Node{mustBranch(t, "b1", l1, l2)})
	require.NoError(t, err)

	next, err := p.Reduce(nil, p.Actions["L1_UPDATE"]("x"))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"b1": map[string]any{"l1": "x", "l2": 0}}, next)

	got, err := p.Select("l1", next, nil)
	require.NoError(t, err)
	assert.Equal(t, "x", got)

	_, ok := p.Selectors[domain.RootSlug]
	assert.False(t, ok, "root must not have a self selector")
}

func TestProvider_NilStateIsInitial(t *testing.T) {
	p, err := shrub.Compose(todoTree(t))
	require.NoError(t, err)

	state, err := p.Reduce(nil, domain.NewAction("NOTHING", nil))
	require.NoError(t, err)
	assert.Equal(t, p.NewState(), state)

	count, err := p.Select("count", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestProvider_UnknownTypeIsIdentity(t *testing.T) {
	p, err := shrub.Compose(todoTree(t))
	require.NoError(t, err)

	state := p.NewState()
	next, err := p.Reduce(state, domain.NewAction("SOMETHING_ELSE", map[string]any{"x": 1}))
	require.NoError(t, err)
	assert.Equal(t, state, next)
	assert.False(t, p.Handles("SOMETHING_ELSE"))
	assert.True(t, p.Handles("COUNT_INCREMENT"))
}

func TestProvider_Collection(t *testing.T) {
	p, err := shrub.Compose(todoTree(t))
	require.NoError(t, err)

	state, err := p.Reduce(nil, p.Actions["TODOS_ADD"](map[string]any{"id": "a", "title": "milk"}))
	require.NoError(t, err)
	state, err = p.Reduce(state, p.Actions["DONE_TOGGLE"](map[string]any{"id": "a"}))
	require.NoError(t, err)

	todo, err := p.Select("todo", state, map[string]any{"id": "a"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"title": "milk", "done": true}, todo)

	path, ok := p.ActionPath("DONE_TOGGLE")
	require.True(t, ok)
	assert.Equal(t, "todos.*.done", path)
}

func TestProvider_DispatchError(t *testing.T) {
	p, err := shrub.Compose(todoTree(t))
	require.NoError(t, err)

	next, err := p.Reduce(nil, p.Actions["DONE_TOGGLE"](map[string]any{"id": "ghost"}))
	require.Error(t, err)
	assert.Nil(t, next)
	assert.True(t, shrub.IsDispatchError(err))
	assert.ErrorIs(t, err, domain.ErrMissingCollectionMember)

	var de *domain.DispatchError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "DONE_TOGGLE", de.Type)
	assert.Equal(t, "todos.*.done", de.Path)

	_, err = p.Reduce(nil, p.Actions["COUNT_INCREMENT"](map[string]any{"by": "two"}))
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)
}

func TestProvider_UnknownSelector(t *testing.T) {
	p, err := shrub.Compose(todoTree(t))
	require.NoError(t, err)

	_, err = p.Select("nope", nil, nil)
	assert.ErrorIs(t, err, domain.ErrUnknownSelector)
	assert.False(t, shrub.IsDispatchError(err))
}

func TestProvider_JSONRoundTrip(t *testing.T) {
	p, err := shrub.Compose(todoTree(t))
	require.NoError(t, err)

	state, err := p.Reduce(nil, p.Actions["TODOS_ADD"](map[string]any{"id": "a", "title": "milk"}))
	require.NoError(t, err)
	state, err = p.Reduce(state, p.Actions["COUNT_INCREMENT"](map[string]any{"by": 3}))
	require.NoError(t, err)

	data, err := p.ToJSON(state)
	require.NoError(t, err)
	assert.JSONEq(t, `{"count": 3, "todos": {"a": {"title": "milk", "done": false}}}`, string(data))

	back, err := p.FromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, state, back)

	partial, err := p.FromJSON([]byte(`{"count": 7}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"count": 7, "todos": map[string]any{}}, partial)
}

func TestCompose_Collision(t *testing.T) {
	a := mustBranch(t, "a", mustLeaf(t, "name", leaves.String("")))
	b := mustBranch(t, "b", mustLeaf(t, "name", leaves.String("")))

	_, err := shrub.Compose([]tree.Node{a, b})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrActionTypeCollision)

	p, err := shrub.Compose([]tree.Node{a, b}, shrub.WithCollisionPolicy(shrub.CollisionLastWriteWins))
	require.NoError(t, err)
	path, _ := p.ActionPath("NAME_SET")
	assert.Equal(t, "b.name", path)
}

func TestCompose_RootJSONAction(t *testing.T) {
	p, err := shrub.Compose(todoTree(t), shrub.WithRootOptions(tree.WithJSONAction()))
	require.NoError(t, err)
	require.Contains(t, p.ActionTypes(), "ROOT_FROM_JSON")

	next, err := p.Reduce(nil, p.Actions["ROOT_FROM_JSON"](map[string]any{"json": `{"count": 4}`}))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"count": 4, "todos": map[string]any{}}, next)
}

func TestProvider_Catalog(t *testing.T) {
	p, err := shrub.Compose(todoTree(t))
	require.NoError(t, err)

	assert.Equal(t, []string{"count", "done", "title", "todo", "todos"}, p.SelectorNames())
	assert.Contains(t, p.ActionTypes(), "TODOS_REMOVE")
	assert.Len(t, p.Actions, len(p.ActionTypes()))

	s, ok := p.PayloadSchema("TITLE_SET")
	require.True(t, ok)
	assert.Contains(t, s, "value")

	_, ok = p.PayloadSchema("DONE_TOGGLE")
	assert.False(t, ok)
}
