// Package compiler derives flat, path-scoped reducer and selector tables from a node tree.
//
// Every node compiles to a table scoped to its own state slot. A parent lifts each
// entry of a child's table so it reads and writes only the child's slot, then merges
// it into its own table. The result at every level is flat; nothing is nested and
// nothing needs a later flatten pass.
package compiler

import (
	"log/slog"

	"github.com/denizsokullu/redux-shrub/internal/logging"
	"github.com/denizsokullu/redux-shrub/pkg/domain"
	"github.com/denizsokullu/redux-shrub/pkg/schema"
)

// ScopedFunc transforms the state slot of the node it was compiled for.
type ScopedFunc func(state, payload any) (any, error)

// Selector reads from the state slot of the node it was compiled for.
type Selector func(state, payload any) (any, error)

// Reducer is one entry of a reducer table.
type Reducer struct {
	Fn      ScopedFunc
	Path    string        // dotted path from the compiled node to the handler's node
	Payload schema.Schema // declared payload shape, if any
}

// SelectorEntry is one entry of a selector table.
type SelectorEntry struct {
	Fn   Selector
	Path string
}

// CollisionPolicy decides what happens when two nodes derive the same name.
type CollisionPolicy int

const (
	// CollisionReject fails compilation.
	CollisionReject CollisionPolicy = iota
	// CollisionLastWriteWins keeps the entry merged last.
	CollisionLastWriteWins
)

func (p CollisionPolicy) String() string {
	if p == CollisionLastWriteWins {
		return "last-write-wins"
	}
	return "reject"
}

// Compiler compiles trees. The zero value is not usable; call New.
type Compiler struct {
	policy CollisionPolicy
	logger *slog.Logger
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithCollisionPolicy sets the collision policy (default CollisionReject).
func WithCollisionPolicy(p CollisionPolicy) Option {
	return func(c *Compiler) {
		c.policy = p
	}
}

// WithLogger sets the logger used to report shadowed names.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Compiler) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a compiler.
func New(opts ...Option) *Compiler {
	c := &Compiler{
		policy: CollisionReject,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Policy returns the configured collision policy.
func (c *Compiler) Policy() CollisionPolicy { return c.policy }

func joinPath(parent, child string) string {
	switch {
	case parent == "":
		return child
	case child == "":
		return parent
	}
	return parent + "." + child
}

// describe renders an entry path for error messages, relative to the node named slug.
func describe(slug, path string) string {
	return joinPath(slug, path)
}

func (c *Compiler) mergeReducer(table map[string]Reducer, slug, name string, r Reducer) error {
	if prev, exists := table[name]; exists {
		if c.policy == CollisionReject {
			return &domain.CollisionError{
				Kind:  domain.ErrActionTypeCollision,
				Name:  name,
				First: describe(slug, prev.Path),
				Other: describe(slug, r.Path),
			}
		}
		c.logger.Warn("action type shadowed",
			"type", name,
			"kept", describe(slug, r.Path),
			"dropped", describe(slug, prev.Path),
		)
	}
	table[name] = r
	return nil
}

func (c *Compiler) mergeSelector(table map[string]SelectorEntry, slug, name string, s SelectorEntry) error {
	if prev, exists := table[name]; exists {
		if c.policy == CollisionReject {
			return &domain.CollisionError{
				Kind:  domain.ErrSelectorCollision,
				Name:  name,
				First: describe(slug, prev.Path),
				Other: describe(slug, s.Path),
			}
		}
		c.logger.Warn("selector shadowed",
			"selector", name,
			"kept", describe(slug, s.Path),
			"dropped", describe(slug, prev.Path),
		)
	}
	table[name] = s
	return nil
}
