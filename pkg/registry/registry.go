package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/denizsokullu/redux-shrub/pkg/domain"
	"github.com/denizsokullu/redux-shrub/pkg/leaves"
	"github.com/denizsokullu/redux-shrub/pkg/tree"
)

// ErrUnknownKind is returned when no factory is registered under a kind name.
var ErrUnknownKind = errors.New("unknown leaf kind")

// Factory builds a leaf behavior from a declared initial value.
// initial is nil when the declaration gives none.
type Factory func(initial any) (tree.LeafBehavior, error)

// Registry maps leaf kind names to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Default returns a registry holding the builtin kinds:
// string, integer, bool, list, map and set.
func Default() *Registry {
	r := NewRegistry()
	r.Register("string", typed(leaves.String))
	r.Register("integer", typed(leaves.Integer))
	r.Register("bool", typed(leaves.Bool))
	r.Register("list", typed(leaves.List))
	r.Register("map", typed(leaves.Map))
	r.Register("set", typed(leaves.Set))
	return r
}

// typed adapts a builtin constructor, decoding the initial value into its argument type.
func typed[T any](build func(T) tree.LeafBehavior) Factory {
	return func(initial any) (tree.LeafBehavior, error) {
		var v T
		if initial != nil {
			var err error
			if v, err = domain.DecodePayload[T](initial); err != nil {
				return tree.LeafBehavior{}, fmt.Errorf("initial value: %w", err)
			}
		}
		return build(v), nil
	}
}

// Register adds a factory.
// If a factory with the same name exists, it is overwritten.
func (r *Registry) Register(kind string, fn Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[kind] = fn
}

// Leaf builds the behavior registered under kind.
func (r *Registry) Leaf(kind string, initial any) (tree.LeafBehavior, error) {
	r.mu.RLock()
	fn, ok := r.factories[kind]
	r.mu.RUnlock()

	if !ok {
		return tree.LeafBehavior{}, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	return fn(initial)
}

// Kinds lists the registered kind names in sorted order.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.factories))
	for k := range r.factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
