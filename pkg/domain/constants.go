package domain

const (
	// RootSlug is the synthetic slug of the branch wrapping the top-level nodes.
	RootSlug = "root"

	// NewStateName is reserved for the initial-state hook and can never name an action.
	NewStateName = "newState"

	// IgnorePrefix marks handler names that must never become action types.
	IgnorePrefix = "_"

	// AddName and RemoveName are the built-in PolyBranch actions.
	AddName    = "add"
	RemoveName = "remove"

	// FromJSONName names the optional state-replacing action (see tree.WithJSONAction).
	FromJSONName = "fromJSON"

	// KeyJSON is the payload field read by the fromJSON action when the payload is a map.
	KeyJSON = "json"
)
