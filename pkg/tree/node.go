package tree

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/denizsokullu/redux-shrub/pkg/domain"
	"github.com/denizsokullu/redux-shrub/pkg/schema"
)

// Kind tags the node variant.
type Kind string

const (
	KindLeaf       Kind = "leaf"
	KindBranch     Kind = "branch"
	KindPolyBranch Kind = "poly"
)

// Node is implemented by *Leaf, *Branch and *PolyBranch only.
type Node interface {
	Slug() string
	Kind() Kind
	Options() Options

	sealed()
}

// ActionFunc computes a node's next state from its current state and an action payload.
// It must not modify state in place.
type ActionFunc func(state, payload any) (any, error)

// Handler is one named action of a node. The action type is UPPER_SNAKE(slug_name).
type Handler struct {
	Name string
	Fn   ActionFunc

	// Payload, when set, is checked against map payloads before Fn runs.
	Payload schema.Schema
}

// Collection is the state of a PolyBranch: runtime key to member state.
type Collection = map[string]any

// LeafBehavior is the contract a leaf author fulfils.
type LeafBehavior struct {
	// NewState returns the initial value. Required.
	NewState func() any

	// Seed, when set, builds the initial value of a collection member from the add payload.
	Seed func(payload any) any

	// Decode, when set, restores the value from JSON. By default the JSON is decoded
	// into the Go type of NewState().
	Decode func(raw json.RawMessage) (any, error)

	Actions []Handler
}

// BranchBehavior is optional for branches.
type BranchBehavior struct {
	// NewState post-processes the aggregated initial states of the children.
	NewState func(children map[string]any) map[string]any

	Actions []Handler
}

// PolyBehavior configures a PolyBranch.
type PolyBehavior struct {
	// Accessor is the payload field holding the member key. Required.
	Accessor string

	// Add and Remove override the built-in collection actions.
	Add    ActionFunc
	Remove ActionFunc

	Actions []Handler
}

func validateSlug(slug string) error {
	if strings.TrimSpace(slug) == "" {
		return domain.NewConstructionError(slug, domain.ErrInvalidSlug)
	}
	return nil
}

func validateHandlers(slug string, handlers []Handler, reserved ...string) error {
	seen := make(map[string]bool, len(handlers))
	for _, r := range reserved {
		seen[r] = true
	}
	for _, h := range handlers {
		var reason string
		switch {
		case h.Name == "":
			reason = "empty name"
		case h.Name == domain.NewStateName, h.Name == domain.FromJSONName:
			reason = fmt.Sprintf("%q is reserved", h.Name)
		case strings.HasPrefix(h.Name, domain.IgnorePrefix):
			reason = fmt.Sprintf("%q starts with the ignore marker %q", h.Name, domain.IgnorePrefix)
		case h.Fn == nil:
			reason = fmt.Sprintf("%q has no function", h.Name)
		case seen[h.Name]:
			reason = fmt.Sprintf("%q is declared twice", h.Name)
		}
		if reason != "" {
			return domain.NewConstructionError(slug, fmt.Errorf("%w: %s", domain.ErrInvalidHandler, reason))
		}
		seen[h.Name] = true
	}
	return nil
}

func copyHandlers(in []Handler) []Handler {
	if len(in) == 0 {
		return nil
	}
	out := make([]Handler, len(in))
	copy(out, in)
	return out
}

// InitialState returns the initial state of any node.
// The payload only matters for nodes created by a PolyBranch add.
func InitialState(n Node, payload any) any {
	switch n := n.(type) {
	case *Leaf:
		return n.NewState(payload)
	case *Branch:
		return n.NewState(payload)
	case *PolyBranch:
		return n.NewState()
	default:
		panic(fmt.Sprintf("tree: unknown node type %T", n))
	}
}
