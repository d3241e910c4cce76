package shrub

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/denizsokullu/redux-shrub/internal/compiler"
	"github.com/denizsokullu/redux-shrub/internal/logging"
	"github.com/denizsokullu/redux-shrub/internal/transport"
	"github.com/denizsokullu/redux-shrub/pkg/domain"
	"github.com/denizsokullu/redux-shrub/pkg/schema"
	"github.com/denizsokullu/redux-shrub/pkg/tree"
)

// Reducer computes the next root state. A nil state stands for the initial state.
type Reducer func(state any, action domain.Action) (any, error)

// Selector reads a value out of the root state.
type Selector func(state, payload any) (any, error)

// ActionCreator builds the action for one action type.
type ActionCreator func(payload any) domain.Action

// CollisionPolicy decides what Compose does when two nodes derive the same name.
type CollisionPolicy = compiler.CollisionPolicy

const (
	// CollisionReject makes Compose fail on a duplicated action type or selector name.
	CollisionReject = compiler.CollisionReject
	// CollisionLastWriteWins keeps the entry declared last and logs the shadowed one.
	CollisionLastWriteWins = compiler.CollisionLastWriteWins
)

// Option configures Compose.
type Option func(*config)

type config struct {
	logger   *slog.Logger
	policy   CollisionPolicy
	rootOpts []tree.Option
}

// WithLogger sets a structured logger for compile diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithCollisionPolicy sets how name collisions are handled (default CollisionReject).
func WithCollisionPolicy(p CollisionPolicy) Option {
	return func(c *config) {
		c.policy = p
	}
}

// WithRootOptions applies node options to the root branch, e.g. tree.WithJSONAction.
func WithRootOptions(opts ...tree.Option) Option {
	return func(c *config) {
		c.rootOpts = append(c.rootOpts, opts...)
	}
}

// Provider holds the compiled artifacts of a tree.
type Provider struct {
	Reducer   Reducer
	Selectors map[string]Selector
	Actions   map[string]ActionCreator

	root    *tree.Branch
	program *compiler.Program
}

// Compose wraps nodes in the root branch and compiles the tree.
func Compose(nodes []tree.Node, opts ...Option) (*Provider, error) {
	cfg := &config{policy: CollisionReject}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = logging.NewNop()
	}

	root, err := tree.NewBranch(domain.RootSlug, tree.BranchBehavior{}, nodes, cfg.rootOpts...)
	if err != nil {
		return nil, err
	}

	c := compiler.New(compiler.WithCollisionPolicy(cfg.policy), compiler.WithLogger(cfg.logger))
	program, err := c.Compile(root)
	if err != nil {
		return nil, fmt.Errorf("compose: %w", err)
	}

	p := &Provider{
		Selectors: make(map[string]Selector, len(program.Selectors)),
		Actions:   make(map[string]ActionCreator, len(program.Reducers)),
		root:      root,
		program:   program,
	}
	p.Reducer = p.reduce
	for name, entry := range program.Selectors {
		p.Selectors[name] = Selector(entry.Fn)
	}
	for actionType := range program.Reducers {
		p.Actions[actionType] = creator(actionType)
	}
	return p, nil
}

func creator(actionType string) ActionCreator {
	return func(payload any) domain.Action {
		return domain.NewAction(actionType, payload)
	}
}

func (p *Provider) reduce(state any, action domain.Action) (any, error) {
	if state == nil {
		state = p.NewState()
	}
	r, ok := p.program.Reducers[action.Type]
	if !ok {
		return state, nil
	}
	next, err := r.Fn(state, action.Payload)
	if err != nil {
		return nil, &domain.DispatchError{Type: action.Type, Path: r.Path, Err: err}
	}
	return next, nil
}

// Reduce applies one action to state.
// Unknown action types return state unchanged with a nil error.
func (p *Provider) Reduce(state any, action domain.Action) (any, error) {
	return p.Reducer(state, action)
}

// Select runs the named selector.
func (p *Provider) Select(name string, state, payload any) (any, error) {
	sel, ok := p.Selectors[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownSelector, name)
	}
	if state == nil {
		state = p.NewState()
	}
	return sel(state, payload)
}

// Handles reports whether actionType is part of the compiled tree.
func (p *Provider) Handles(actionType string) bool {
	_, ok := p.program.Reducers[actionType]
	return ok
}

// NewState returns a fresh initial root state.
func (p *Provider) NewState() map[string]any { return p.root.NewState(nil) }

// Root returns the root branch.
func (p *Provider) Root() *tree.Branch { return p.root }

// ActionTypes lists every action type in sorted order.
func (p *Provider) ActionTypes() []string { return p.program.ActionTypes() }

// SelectorNames lists every selector name in sorted order.
func (p *Provider) SelectorNames() []string { return p.program.SelectorNames() }

// ActionPath returns the dotted path of the node handling actionType.
// Collection members appear as "*".
func (p *Provider) ActionPath(actionType string) (string, bool) {
	r, ok := p.program.Reducers[actionType]
	return r.Path, ok
}

// PayloadSchema returns the payload schema declared for actionType, if any.
func (p *Provider) PayloadSchema(actionType string) (schema.Schema, bool) {
	r, ok := p.program.Reducers[actionType]
	if !ok || len(r.Payload) == 0 {
		return nil, false
	}
	return r.Payload, true
}

// ToJSON encodes a root state.
func (p *Provider) ToJSON(state any) ([]byte, error) {
	if state == nil {
		state = p.NewState()
	}
	return transport.Encode(p.root, state)
}

// FromJSON decodes a root state. Missing slots get their initial state.
func (p *Provider) FromJSON(data []byte) (any, error) {
	state, err := transport.Decode(p.root, json.RawMessage(data))
	if err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	return state, nil
}

// IsDispatchError reports whether err came out of a reducer rather than the host.
func IsDispatchError(err error) bool {
	var de *domain.DispatchError
	return errors.As(err, &de)
}
