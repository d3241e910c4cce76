package tree

// Options controls how a node's names are derived.
type Options struct {
	// IncludeSelfSelector emits an identity selector named after the node. Defaults to true.
	IncludeSelfSelector bool `json:"include_self_selector" yaml:"self_selector"`

	// IncludeSlugInChildSelectors camelCase-prefixes every child selector with the node slug.
	IncludeSlugInChildSelectors bool `json:"include_slug_in_child_selectors" yaml:"slug_in_child_selectors"`

	// IncludeSlugInChildReducers UPPER_SNAKE-prefixes every child action type with the node slug.
	IncludeSlugInChildReducers bool `json:"include_slug_in_child_reducers" yaml:"slug_in_child_reducers"`

	// IncludeJSONAction adds a SLUG_FROM_JSON action replacing the node state from JSON.
	IncludeJSONAction bool `json:"include_json_action" yaml:"json_action"`
}

// DefaultOptions returns the options every node starts from.
func DefaultOptions() Options {
	return Options{IncludeSelfSelector: true}
}

// Option configures a node.
type Option func(*Options)

// WithoutSelfSelector suppresses the node's identity selector.
func WithoutSelfSelector() Option {
	return func(o *Options) {
		o.IncludeSelfSelector = false
	}
}

// WithSlugInChildSelectors prefixes child selector names with the node slug.
func WithSlugInChildSelectors() Option {
	return func(o *Options) {
		o.IncludeSlugInChildSelectors = true
	}
}

// WithSlugInChildReducers prefixes child action types with the node slug.
func WithSlugInChildReducers() Option {
	return func(o *Options) {
		o.IncludeSlugInChildReducers = true
	}
}

// WithJSONAction adds the fromJSON action to the node.
func WithJSONAction() Option {
	return func(o *Options) {
		o.IncludeJSONAction = true
	}
}

// WithOptions replaces the options wholesale.
func WithOptions(opts Options) Option {
	return func(o *Options) {
		*o = opts
	}
}

func buildOptions(opts []Option) Options {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
