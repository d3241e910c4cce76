package domain

import (
	"errors"
	"fmt"
)

// ErrConstruction is the family every construction error belongs to.
var ErrConstruction = errors.New("invalid node")

// Construction errors, raised synchronously while building a tree.
var (
	// ErrMissingNewState is returned when a leaf behavior has no NewState hook.
	ErrMissingNewState = errors.New("behavior is missing newState")

	// ErrInvalidChildren is returned when a branch receives a nil child.
	ErrInvalidChildren = errors.New("children must be non-nil nodes")

	// ErrMissingBehavior is returned when a required behavior or template is absent.
	ErrMissingBehavior = errors.New("missing behavior")

	// ErrDuplicateSlug is returned when two siblings share a slug.
	ErrDuplicateSlug = errors.New("duplicate sibling slug")

	// ErrInvalidSlug is returned for empty slugs.
	ErrInvalidSlug = errors.New("slug cannot be empty")

	// ErrInvalidHandler is returned for empty, reserved or repeated handler names.
	ErrInvalidHandler = errors.New("invalid action handler")

	// ErrMissingAccessor is returned when a PolyBranch behavior declares no accessor.
	ErrMissingAccessor = errors.New("poly branch accessor cannot be empty")
)

// Compile errors, raised by Compose under the reject collision policy.
var (
	ErrActionTypeCollision = errors.New("action type collision")
	ErrSelectorCollision   = errors.New("selector name collision")
)

// Dispatch errors, fatal to a single dispatch.
var (
	// ErrDuplicateOrInvalidKey is returned by add when the key is missing, empty or taken.
	ErrDuplicateOrInvalidKey = errors.New("duplicate or invalid collection key")

	// ErrUnknownKey is returned by remove when the key is not a member.
	ErrUnknownKey = errors.New("unknown collection key")

	// ErrMissingCollectionMember is returned when an action or selector addresses an absent key.
	ErrMissingCollectionMember = errors.New("missing collection member")

	// ErrInvalidState is returned when a slot does not have the shape its node expects.
	ErrInvalidState = errors.New("invalid state shape")

	// ErrInvalidPayload is returned when a payload cannot be read.
	ErrInvalidPayload = errors.New("invalid payload")
)

// ErrSnapshotNotFound is returned by snapshot stores for unknown keys.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// ErrUnknownSelector is returned when selecting by a name that was never compiled.
var ErrUnknownSelector = errors.New("unknown selector")

// ConstructionError reports which node failed to build.
type ConstructionError struct {
	Slug string
	Err  error
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("node %q: %v", e.Slug, e.Err)
}

func (e *ConstructionError) Unwrap() []error {
	return []error{ErrConstruction, e.Err}
}

// NewConstructionError wraps err with the slug of the node being built.
func NewConstructionError(slug string, err error) error {
	return &ConstructionError{Slug: slug, Err: err}
}

// DispatchError reports a failed dispatch.
// Path is the dotted state path of the node whose handler failed, when known.
type DispatchError struct {
	Type string
	Path string
	Err  error
}

func (e *DispatchError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("dispatch %s: %v", e.Type, e.Err)
	}
	return fmt.Sprintf("dispatch %s at %s: %v", e.Type, e.Path, e.Err)
}

func (e *DispatchError) Unwrap() error { return e.Err }

// CollisionError reports a name produced by two different nodes.
type CollisionError struct {
	Kind  error // ErrActionTypeCollision or ErrSelectorCollision
	Name  string
	First string
	Other string
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("%v: %q is produced by both %s and %s", e.Kind, e.Name, e.First, e.Other)
}

func (e *CollisionError) Unwrap() error { return e.Kind }
