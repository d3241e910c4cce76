package compiler

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/denizsokullu/redux-shrub/pkg/domain"
	"github.com/denizsokullu/redux-shrub/pkg/schema"
	"github.com/denizsokullu/redux-shrub/pkg/tree"
)

func setTo(value any) tree.ActionFunc {
	return func(_, _ any) (any, error) { return value, nil }
}

func stringLeaf(t *testing.T, slug, initial string, opts ...tree.Option) *tree.Leaf {
	t.Helper()
	l, err := tree.NewLeaf(slug, tree.LeafBehavior{
		NewState: func() any { return initial },
		Actions: []tree.Handler{
			{Name: "update", Fn: setTo("x")},
		},
	}, opts...)
	require.NoError(t, err)
	return l
}

func branch(t *testing.T, slug string, children []tree.Node, opts ...tree.Option) *tree.Branch {
	t.Helper()
	b, err := tree.NewBranch(slug, tree.BranchBehavior{}, children, opts...)
	require.NoError(t, err)
	return b
}

func reduce(t *testing.T, p *Program, state any, actionType string, payload any) any {
	t.Helper()
	r, ok := p.Reducers[actionType]
	require.True(t, ok, "missing action type %s", actionType)
	if state == nil {
		state = p.Root.NewState(nil)
	}
	next, err := r.Fn(state, payload)
	require.NoError(t, err)
	return next
}

func TestCompile_NestedLeafUpdate(t *testing.T) {
	l1 := stringLeaf(t, "l1", "a")
	l2, err := tree.NewLeaf("l2", tree.LeafBehavior{NewState: func() any { return 0 }})
	require.NoError(t, err)
	root := branch(t, domain.RootSlug, []tree.Node{branch(t, "b1", []tree.Node{l1, l2})})

	p, err := New().Compile(root)
	require.NoError(t, err)

	assert.Equal(t, []string{"L1_UPDATE"}, p.ActionTypes())
	assert.Equal(t, "b1.l1", p.Reducers["L1_UPDATE"].Path)

	next := reduce(t, p, nil, "L1_UPDATE", nil)
	assert.Equal(t, map[string]any{"b1": map[string]any{"l1": "x", "l2": 0}}, next)
}

func TestCompile_SiblingSlotsAreShared(t *testing.T) {
	left := branch(t, "left", []tree.Node{stringLeaf(t, "l1", "a")})
	right := branch(t, "right", []tree.Node{stringLeaf(t, "r1", "b", tree.WithoutSelfSelector())})
	root := branch(t, domain.RootSlug, []tree.Node{left, right})

	p, err := New().Compile(root)
	require.NoError(t, err)

	prev := root.NewState(nil)
	next := reduce(t, p, prev, "L1_UPDATE", nil).(map[string]any)

	before := prev["right"].(map[string]any)
	after := next["right"].(map[string]any)
	assert.Equal(t, reflect.ValueOf(before).Pointer(), reflect.ValueOf(after).Pointer(), "untouched sibling must be reused")
	assert.Equal(t, "a", prev["left"].(map[string]any)["l1"], "input state must not be mutated")
}

func TestCompile_Selectors(t *testing.T) {
	l1 := stringLeaf(t, "l1", "a")
	b1 := branch(t, "b1", []tree.Node{l1})
	root := branch(t, domain.RootSlug, []tree.Node{b1})

	p, err := New().Compile(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"b1", "l1"}, p.SelectorNames(), "root has no self selector")

	state := root.NewState(nil)
	got, err := p.Selectors["l1"].Fn(state, nil)
	require.NoError(t, err)
	assert.Equal(t, "a", got)

	got, err = p.Selectors["b1"].Fn(state, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"l1": "a"}, got)
}

func TestCompile_SlugPrefixes(t *testing.T) {
	l1 := stringLeaf(t, "l1", "a")
	b1 := branch(t, "b1", []tree.Node{l1}, tree.WithSlugInChildReducers(), tree.WithSlugInChildSelectors())
	root := branch(t, domain.RootSlug, []tree.Node{b1})

	p, err := New().Compile(root)
	require.NoError(t, err)
	assert.Contains(t, p.Reducers, "B1_L1_UPDATE")
	assert.NotContains(t, p.Reducers, "L1_UPDATE")
	assert.Contains(t, p.Selectors, "b1L1")
	assert.Contains(t, p.Selectors, "b1")
}

func TestCompile_Collisions(t *testing.T) {
	build := func() *tree.Branch {
		return branch(t, domain.RootSlug, []tree.Node{
			branch(t, "a", []tree.Node{stringLeaf(t, "name", "first")}),
			branch(t, "b", []tree.Node{stringLeaf(t, "name", "second")}),
		})
	}

	t.Run("reject", func(t *testing.T) {
		_, err := New().Compile(build())
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrActionTypeCollision)

		var ce *domain.CollisionError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, "NAME_UPDATE", ce.Name)
	})

	t.Run("last write wins", func(t *testing.T) {
		p, err := New(WithCollisionPolicy(CollisionLastWriteWins)).Compile(build())
		require.NoError(t, err)
		assert.Equal(t, "b.name", p.Reducers["NAME_UPDATE"].Path)
		assert.Equal(t, "b.name", p.Selectors["name"].Path)
	})

	t.Run("selectors only", func(t *testing.T) {
		root := branch(t, domain.RootSlug, []tree.Node{
			branch(t, "a", []tree.Node{stringLeaf(t, "a", "inner")}),
		})
		_, err := New().Compile(root)
		assert.ErrorIs(t, err, domain.ErrSelectorCollision)
	})
}

func TestCompile_UnknownTypeIsAbsent(t *testing.T) {
	root := branch(t, domain.RootSlug, []tree.Node{stringLeaf(t, "l1", "a")})
	p, err := New().Compile(root)
	require.NoError(t, err)
	_, ok := p.Reducers["NOPE"]
	assert.False(t, ok)
}

func todoTree(t *testing.T) (*tree.Branch, *tree.PolyBranch) {
	t.Helper()
	title := stringLeaf(t, "title", "untitled")
	todo := branch(t, "todo", []tree.Node{title})
	todos, err := tree.NewPolyBranch("todos", tree.PolyBehavior{Accessor: "id"}, todo)
	require.NoError(t, err)
	return branch(t, domain.RootSlug, []tree.Node{todos}), todos
}

func TestCompile_PolyBranch(t *testing.T) {
	root, _ := todoTree(t)
	p, err := New().Compile(root)
	require.NoError(t, err)

	assert.Equal(t, []string{"TITLE_UPDATE", "TODOS_ADD", "TODOS_REMOVE"}, p.ActionTypes())
	assert.Equal(t, "todos.*.title", p.Reducers["TITLE_UPDATE"].Path)

	added := reduce(t, p, nil, "TODOS_ADD", map[string]any{"id": "a"})
	assert.Equal(t, map[string]any{
		"todos": tree.Collection{"a": map[string]any{"title": "untitled"}},
	}, added)

	t.Run("duplicate add", func(t *testing.T) {
		_, err := p.Reducers["TODOS_ADD"].Fn(added, map[string]any{"id": "a"})
		assert.ErrorIs(t, err, domain.ErrDuplicateOrInvalidKey)
	})

	t.Run("member action", func(t *testing.T) {
		next := reduce(t, p, added, "TITLE_UPDATE", map[string]any{"id": "a"})
		assert.Equal(t, "x", next.(map[string]any)["todos"].(tree.Collection)["a"].(map[string]any)["title"])
	})

	t.Run("member action on absent key", func(t *testing.T) {
		_, err := p.Reducers["TITLE_UPDATE"].Fn(added, map[string]any{"id": "zzz"})
		assert.ErrorIs(t, err, domain.ErrMissingCollectionMember)
	})

	t.Run("member selector", func(t *testing.T) {
		got, err := p.Selectors["title"].Fn(added, map[string]any{"id": "a"})
		require.NoError(t, err)
		assert.Equal(t, "untitled", got)

		_, err = p.Selectors["title"].Fn(added, map[string]any{"id": "b"})
		assert.ErrorIs(t, err, domain.ErrMissingCollectionMember)
	})

	t.Run("remove inverts add", func(t *testing.T) {
		prev := root.NewState(nil)
		withA := reduce(t, p, prev, "TODOS_ADD", map[string]any{"id": "a"})
		back := reduce(t, p, withA, "TODOS_REMOVE", map[string]any{"id": "a"})
		assert.Equal(t, prev, back)

		_, err := p.Reducers["TODOS_REMOVE"].Fn(back, map[string]any{"id": "a"})
		assert.ErrorIs(t, err, domain.ErrUnknownKey)
	})
}

func TestCompile_PayloadSchema(t *testing.T) {
	l, err := tree.NewLeaf("count", tree.LeafBehavior{
		NewState: func() any { return 0 },
		Actions: []tree.Handler{{
			Name:    "set",
			Fn:      func(_, payload any) (any, error) { return payload.(map[string]any)["value"], nil },
			Payload: schema.Schema{"value": schema.Int()},
		}},
	})
	require.NoError(t, err)
	root := branch(t, domain.RootSlug, []tree.Node{l})

	p, err := New().Compile(root)
	require.NoError(t, err)

	next := reduce(t, p, nil, "COUNT_SET", map[string]any{"value": 3})
	assert.Equal(t, map[string]any{"count": 3}, next)

	_, err = p.Reducers["COUNT_SET"].Fn(root.NewState(nil), map[string]any{"value": "three"})
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)
}

func TestCompile_FromJSON(t *testing.T) {
	l := stringLeaf(t, "l1", "a")
	b1 := branch(t, "b1", []tree.Node{l}, tree.WithJSONAction())
	root := branch(t, domain.RootSlug, []tree.Node{b1})

	p, err := New().Compile(root)
	require.NoError(t, err)
	require.Contains(t, p.Reducers, "B1_FROM_JSON")

	next := reduce(t, p, nil, "B1_FROM_JSON", map[string]any{"json": `{"l1":"restored"}`})
	assert.Equal(t, map[string]any{"b1": map[string]any{"l1": "restored"}}, next)
}

func TestCompile_InvalidStateShape(t *testing.T) {
	root := branch(t, domain.RootSlug, []tree.Node{branch(t, "b1", []tree.Node{stringLeaf(t, "l1", "a")})})
	p, err := New().Compile(root)
	require.NoError(t, err)

	_, err = p.Reducers["L1_UPDATE"].Fn(map[string]any{"b1": "not a map"}, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestCompile_BranchOwnActions(t *testing.T) {
	cart, err := tree.NewBranch("cart", tree.BranchBehavior{
		NewState: func(children map[string]any) map[string]any {
			children["label"] = "empty cart"
			return children
		},
		Actions: []tree.Handler{
			{Name: "clear", Fn: func(state, _ any) (any, error) {
				prev := state.(map[string]any)
				next := make(map[string]any, len(prev))
				for k, v := range prev {
					next[k] = v
				}
				next["label"] = ""
				return next, nil
			}},
			{Name: "clobber", Fn: setTo("oops")},
		},
	}, []tree.Node{stringLeaf(t, "label", "a")})
	require.NoError(t, err)
	root := branch(t, domain.RootSlug, []tree.Node{cart})

	p, err := New().Compile(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"CART_CLEAR", "CART_CLOBBER", "LABEL_UPDATE"}, p.ActionTypes())
	assert.Equal(t, "cart", p.Reducers["CART_CLEAR"].Path)

	initial := root.NewState(nil)
	assert.Equal(t, map[string]any{"cart": map[string]any{"label": "empty cart"}}, initial)

	next := reduce(t, p, initial, "CART_CLEAR", nil)
	assert.Equal(t, map[string]any{"cart": map[string]any{"label": ""}}, next)
	assert.Equal(t, "empty cart", initial["cart"].(map[string]any)["label"], "input state must not be mutated")

	t.Run("non map result", func(t *testing.T) {
		_, err := p.Reducers["CART_CLOBBER"].Fn(initial, nil)
		assert.ErrorIs(t, err, domain.ErrInvalidState)
	})
}

func TestCompile_PolyOwnActions(t *testing.T) {
	var added []string
	todos, err := tree.NewPolyBranch("todos", tree.PolyBehavior{
		Accessor: "id",
		Add: func(state, payload any) (any, error) {
			key := payload.(map[string]any)["id"].(string)
			added = append(added, key)
			next := tree.Collection{}
			for k, v := range state.(tree.Collection) {
				next[k] = v
			}
			next[key] = "custom"
			return next, nil
		},
		Actions: []tree.Handler{
			{Name: "clear", Fn: func(_, _ any) (any, error) { return tree.Collection{}, nil }},
		},
	}, stringLeaf(t, "title", "untitled"))
	require.NoError(t, err)
	root := branch(t, domain.RootSlug, []tree.Node{todos})

	p, err := New().Compile(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"TITLE_UPDATE", "TODOS_ADD", "TODOS_CLEAR", "TODOS_REMOVE"}, p.ActionTypes())
	assert.Equal(t, "todos", p.Reducers["TODOS_CLEAR"].Path)

	state := reduce(t, p, nil, "TODOS_ADD", map[string]any{"id": "a"})
	assert.Equal(t, map[string]any{"todos": tree.Collection{"a": "custom"}}, state)
	assert.Equal(t, []string{"a"}, added)

	state = reduce(t, p, state, "TODOS_CLEAR", nil)
	assert.Equal(t, map[string]any{"todos": tree.Collection{}}, state)
}

func TestCompile_ChildShadowsOwnHandler(t *testing.T) {
	build := func() *tree.Branch {
		child, err := tree.NewLeaf("a_x", tree.LeafBehavior{
			NewState: func() any { return "" },
			Actions:  []tree.Handler{{Name: "set", Fn: setTo("child")}},
		})
		require.NoError(t, err)
		a, err := tree.NewBranch("a", tree.BranchBehavior{
			Actions: []tree.Handler{{Name: "x_set", Fn: func(state, _ any) (any, error) { return state, nil }}},
		}, []tree.Node{child})
		require.NoError(t, err)
		return branch(t, domain.RootSlug, []tree.Node{a})
	}

	_, err := New().Compile(build())
	assert.ErrorIs(t, err, domain.ErrActionTypeCollision)

	p, err := New(WithCollisionPolicy(CollisionLastWriteWins)).Compile(build())
	require.NoError(t, err)
	assert.Equal(t, "a.a_x", p.Reducers["A_X_SET"].Path)

	next := reduce(t, p, nil, "A_X_SET", nil)
	assert.Equal(t, map[string]any{"a": map[string]any{"a_x": "child"}}, next)
}
