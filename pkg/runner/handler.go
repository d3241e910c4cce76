package runner

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/denizsokullu/redux-shrub/pkg/domain"
)

// ErrInvalidCommand is returned by handlers for lines they cannot parse.
// The runner reports it and keeps reading.
var ErrInvalidCommand = errors.New("invalid command")

// CommandKind selects what a Command does.
type CommandKind string

const (
	CommandDispatch CommandKind = "dispatch"
	CommandState    CommandKind = "state"
	CommandSelect   CommandKind = "select"
	CommandReset    CommandKind = "reset"
	CommandQuit     CommandKind = "quit"
)

// Command is one parsed input line.
type Command struct {
	Kind     CommandKind
	Action   domain.Action
	Selector string
	Payload  any
}

// Result is emitted after every command.
type Result struct {
	Command CommandKind     `json:"command"`
	Type    string          `json:"type,omitempty"`
	State   json.RawMessage `json:"state,omitempty"`
	Value   any             `json:"value,omitempty"`
	Changed []string        `json:"changed,omitempty"`
	Ignored bool            `json:"ignored,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// IOHandler defines the strategy for interacting with the user.
// This allows switching between Text (terminal) and JSON (structured) modes.
type IOHandler interface {
	// Input reads the next command. io.EOF ends the session cleanly.
	Input(ctx context.Context) (Command, error)

	// Output presents the result of a command.
	Output(ctx context.Context, res Result) error
}
