package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/denizsokullu/redux-shrub/pkg/domain"
)

// JSONHandler implements the IOHandler interface for structured JSON-Lines communication.
//
// Each input line is either an action ({"type": ..., "payload": ...}) or a
// command ({"command": "state" | "select" | "reset" | "quit", "selector": ..., "payload": ...}).
// Each Result is written as one JSON line.
type JSONHandler struct {
	Scanner *bufio.Scanner
	Encoder *json.Encoder
}

type jsonCommand struct {
	Command  CommandKind `json:"command"`
	Type     string      `json:"type"`
	Selector string      `json:"selector"`
	Payload  any         `json:"payload"`
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), MaxInputSize()+1)
	return &JSONHandler{Scanner: sc, Encoder: json.NewEncoder(w)}
}

func (h *JSONHandler) Input(ctx context.Context) (Command, error) {
	for {
		if !h.Scanner.Scan() {
			if err := h.Scanner.Err(); err != nil {
				if err == bufio.ErrTooLong {
					return Command{}, fmt.Errorf("%w: %w", ErrInvalidCommand, ErrInputTooLarge)
				}
				return Command{}, err
			}
			return Command{}, io.EOF
		}

		line, err := SanitizeInput(h.Scanner.Text())
		if err != nil {
			return Command{}, fmt.Errorf("%w: %w", ErrInvalidCommand, err)
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		var in jsonCommand
		if err := json.Unmarshal([]byte(line), &in); err != nil {
			return Command{}, fmt.Errorf("%w: %v", ErrInvalidCommand, err)
		}
		return in.command()
	}
}

func (in jsonCommand) command() (Command, error) {
	switch in.Command {
	case "", CommandDispatch:
		if in.Type == "" {
			return Command{}, fmt.Errorf("%w: missing type", ErrInvalidCommand)
		}
		return Command{Kind: CommandDispatch, Action: domain.NewAction(in.Type, in.Payload)}, nil
	case CommandSelect:
		if in.Selector == "" {
			return Command{}, fmt.Errorf("%w: missing selector", ErrInvalidCommand)
		}
		return Command{Kind: CommandSelect, Selector: in.Selector, Payload: in.Payload}, nil
	case CommandState, CommandReset, CommandQuit:
		return Command{Kind: in.Command}, nil
	}
	return Command{}, fmt.Errorf("%w: unknown command %q", ErrInvalidCommand, in.Command)
}

func (h *JSONHandler) Output(ctx context.Context, res Result) error {
	return h.Encoder.Encode(res)
}
