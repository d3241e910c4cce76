package tree

import (
	"fmt"

	"github.com/denizsokullu/redux-shrub/pkg/domain"
)

// Branch owns a fixed, ordered set of uniquely named children.
type Branch struct {
	slug     string
	opts     Options
	behavior BranchBehavior
	children []Node
	index    map[string]int
}

// NewBranch builds a branch. Children keep their declaration order.
func NewBranch(slug string, behavior BranchBehavior, children []Node, opts ...Option) (*Branch, error) {
	if err := validateSlug(slug); err != nil {
		return nil, err
	}
	if err := validateHandlers(slug, behavior.Actions); err != nil {
		return nil, err
	}

	b := &Branch{
		slug:     slug,
		opts:     buildOptions(opts),
		behavior: behavior,
		children: make([]Node, 0, len(children)),
		index:    make(map[string]int, len(children)),
	}
	b.behavior.Actions = copyHandlers(behavior.Actions)

	for i, child := range children {
		if child == nil {
			return nil, domain.NewConstructionError(slug, fmt.Errorf("%w: child %d is nil", domain.ErrInvalidChildren, i))
		}
		if _, dup := b.index[child.Slug()]; dup {
			return nil, domain.NewConstructionError(slug, fmt.Errorf("%w: %q", domain.ErrDuplicateSlug, child.Slug()))
		}
		b.index[child.Slug()] = len(b.children)
		b.children = append(b.children, child)
	}
	return b, nil
}

func (b *Branch) Slug() string     { return b.slug }
func (b *Branch) Kind() Kind       { return KindBranch }
func (b *Branch) Options() Options { return b.opts }
func (b *Branch) sealed()          {}

// Children returns the children in declaration order.
func (b *Branch) Children() []Node {
	out := make([]Node, len(b.children))
	copy(out, b.children)
	return out
}

// Child looks a child up by slug.
func (b *Branch) Child(slug string) (Node, bool) {
	i, ok := b.index[slug]
	if !ok {
		return nil, false
	}
	return b.children[i], true
}

// Handlers returns the branch's own actions.
func (b *Branch) Handlers() []Handler { return copyHandlers(b.behavior.Actions) }

// NewState aggregates the children's initial states, then applies the behavior hook.
func (b *Branch) NewState(payload any) map[string]any {
	state := make(map[string]any, len(b.children))
	for _, child := range b.children {
		state[child.Slug()] = InitialState(child, payload)
	}
	if b.behavior.NewState != nil {
		return b.behavior.NewState(state)
	}
	return state
}
