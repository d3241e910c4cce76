package tree

import (
	"encoding/json"

	"github.com/denizsokullu/redux-shrub/pkg/domain"
)

// Leaf is a terminal node holding an opaque value.
type Leaf struct {
	slug     string
	opts     Options
	behavior LeafBehavior
}

// NewLeaf builds a leaf.
func NewLeaf(slug string, behavior LeafBehavior, opts ...Option) (*Leaf, error) {
	if err := validateSlug(slug); err != nil {
		return nil, err
	}
	if behavior.NewState == nil {
		return nil, domain.NewConstructionError(slug, domain.ErrMissingNewState)
	}
	if err := validateHandlers(slug, behavior.Actions); err != nil {
		return nil, err
	}
	behavior.Actions = copyHandlers(behavior.Actions)
	return &Leaf{slug: slug, opts: buildOptions(opts), behavior: behavior}, nil
}

func (l *Leaf) Slug() string     { return l.slug }
func (l *Leaf) Kind() Kind       { return KindLeaf }
func (l *Leaf) Options() Options { return l.opts }
func (l *Leaf) sealed()          {}

// Handlers returns the leaf's declared actions.
func (l *Leaf) Handlers() []Handler { return copyHandlers(l.behavior.Actions) }

// Decoder returns the custom JSON decoder, if any.
func (l *Leaf) Decoder() func(json.RawMessage) (any, error) {
	return l.behavior.Decode
}

// NewState returns the initial value, seeded from payload when the behavior supports it.
func (l *Leaf) NewState(payload any) any {
	if payload != nil && l.behavior.Seed != nil {
		return l.behavior.Seed(payload)
	}
	return l.behavior.NewState()
}
