package domain

// Action is the unit of change routed by a compiled reducer.
// Type selects the reducer entry; Payload is handed to it untouched.
type Action struct {
	Type    string `json:"type" yaml:"type"`
	Payload any    `json:"payload,omitempty" yaml:"payload,omitempty"`
}

// NewAction builds an Action.
func NewAction(actionType string, payload any) Action {
	return Action{Type: actionType, Payload: payload}
}
