package tree

import (
	"fmt"

	"github.com/denizsokullu/redux-shrub/pkg/domain"
)

// PolyBranch is a collection of template instances keyed at runtime.
type PolyBranch struct {
	slug     string
	opts     Options
	behavior PolyBehavior
	template Node
}

// NewPolyBranch builds a collection over template.
// Missing Add/Remove are replaced by the built-in ones.
func NewPolyBranch(slug string, behavior PolyBehavior, template Node, opts ...Option) (*PolyBranch, error) {
	if err := validateSlug(slug); err != nil {
		return nil, err
	}
	if template == nil {
		return nil, domain.NewConstructionError(slug, fmt.Errorf("%w: template child", domain.ErrMissingBehavior))
	}
	if behavior.Accessor == "" {
		return nil, domain.NewConstructionError(slug, domain.ErrMissingAccessor)
	}
	if err := validateHandlers(slug, behavior.Actions, domain.AddName, domain.RemoveName); err != nil {
		return nil, err
	}

	p := &PolyBranch{
		slug:     slug,
		opts:     buildOptions(opts),
		behavior: behavior,
		template: template,
	}
	p.behavior.Actions = copyHandlers(behavior.Actions)
	if p.behavior.Add == nil {
		p.behavior.Add = p.defaultAdd
	}
	if p.behavior.Remove == nil {
		p.behavior.Remove = p.defaultRemove
	}
	return p, nil
}

func (p *PolyBranch) Slug() string     { return p.slug }
func (p *PolyBranch) Kind() Kind       { return KindPolyBranch }
func (p *PolyBranch) Options() Options { return p.opts }
func (p *PolyBranch) sealed()          {}

// Template returns the node every member is an instance of.
func (p *PolyBranch) Template() Node { return p.template }

// Accessor returns the payload field holding the member key.
func (p *PolyBranch) Accessor() string { return p.behavior.Accessor }

// NewState returns an empty collection.
func (p *PolyBranch) NewState() Collection { return Collection{} }

// Handlers returns add, remove and the behavior's own actions, in that order.
func (p *PolyBranch) Handlers() []Handler {
	out := []Handler{
		{Name: domain.AddName, Fn: p.behavior.Add},
		{Name: domain.RemoveName, Fn: p.behavior.Remove},
	}
	return append(out, p.behavior.Actions...)
}

// Key extracts the member key from a payload.
func (p *PolyBranch) Key(payload any) (string, bool) {
	v, ok := domain.Field(payload, p.behavior.Accessor)
	if !ok {
		return "", false
	}
	key, ok := v.(string)
	return key, ok
}

func (p *PolyBranch) defaultAdd(state, payload any) (any, error) {
	members, ok := state.(Collection)
	if !ok {
		return nil, fmt.Errorf("%w: expected collection, got %T", domain.ErrInvalidState, state)
	}
	key, ok := p.Key(payload)
	if !ok || key == "" {
		return nil, fmt.Errorf("%w: %s must be a non-empty string", domain.ErrDuplicateOrInvalidKey, p.behavior.Accessor)
	}
	if _, exists := members[key]; exists {
		return nil, fmt.Errorf("%w: %q already exists", domain.ErrDuplicateOrInvalidKey, key)
	}

	next := make(Collection, len(members)+1)
	for k, v := range members {
		next[k] = v
	}
	next[key] = InitialState(p.template, payload)
	return next, nil
}

func (p *PolyBranch) defaultRemove(state, payload any) (any, error) {
	members, ok := state.(Collection)
	if !ok {
		return nil, fmt.Errorf("%w: expected collection, got %T", domain.ErrInvalidState, state)
	}
	key, ok := p.Key(payload)
	if !ok {
		return nil, fmt.Errorf("%w: %s must be a string", domain.ErrUnknownKey, p.behavior.Accessor)
	}
	if _, exists := members[key]; !exists {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownKey, key)
	}

	next := make(Collection, len(members)-1)
	for k, v := range members {
		if k != key {
			next[k] = v
		}
	}
	return next, nil
}
