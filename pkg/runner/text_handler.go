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

// TextHandler implements the line-based terminal interface.
type TextHandler struct {
	Scanner *bufio.Scanner
	Writer  io.Writer
	Prompt  string
}

// NewTextHandler creates a handler for standard text IO.
func NewTextHandler(r io.Reader, w io.Writer) *TextHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), MaxInputSize()+1)
	return &TextHandler{Scanner: sc, Writer: w}
}

func (h *TextHandler) Input(ctx context.Context) (Command, error) {
	for {
		if h.Prompt != "" {
			fmt.Fprint(h.Writer, h.Prompt)
		}
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
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return parseLine(line)
	}
}

// parseLine reads "WORD [json]" or ":command [name] [json]".
func parseLine(line string) (Command, error) {
	head, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	if !strings.HasPrefix(head, ":") {
		payload, err := parsePayload(rest)
		if err != nil {
			return Command{}, err
		}
		return Command{Kind: CommandDispatch, Action: domain.NewAction(head, payload)}, nil
	}

	switch kind := CommandKind(strings.TrimPrefix(head, ":")); kind {
	case CommandState, CommandReset:
		return Command{Kind: kind}, nil
	case CommandQuit, "q", "exit":
		return Command{Kind: CommandQuit}, nil
	case CommandSelect:
		name, arg, _ := strings.Cut(rest, " ")
		if name == "" {
			return Command{}, fmt.Errorf("%w: usage :select <name> [payload]", ErrInvalidCommand)
		}
		payload, err := parsePayload(strings.TrimSpace(arg))
		if err != nil {
			return Command{}, err
		}
		return Command{Kind: CommandSelect, Selector: name, Payload: payload}, nil
	default:
		return Command{}, fmt.Errorf("%w: unknown command %q", ErrInvalidCommand, head)
	}
}

func parsePayload(s string) (any, error) {
	if s == "" {
		return nil, nil
	}
	var payload any
	if err := json.Unmarshal([]byte(s), &payload); err != nil {
		return nil, fmt.Errorf("%w: payload is not JSON: %v", ErrInvalidCommand, err)
	}
	return payload, nil
}

func (h *TextHandler) Output(ctx context.Context, res Result) error {
	var err error
	switch {
	case res.Error != "":
		_, err = fmt.Fprintf(h.Writer, "error: %s\n", res.Error)
	case res.Ignored:
		_, err = fmt.Fprintf(h.Writer, "%s: unknown type, ignored\n", res.Type)
	case res.Command == CommandDispatch:
		_, err = fmt.Fprintf(h.Writer, "%s: %s\n", res.Type, strings.Join(res.Changed, ", "))
	case res.Command == CommandSelect:
		data, _ := json.Marshal(res.Value)
		_, err = fmt.Fprintf(h.Writer, "%s\n", data)
	case len(res.State) > 0:
		_, err = fmt.Fprintf(h.Writer, "%s\n", res.State)
	}
	return err
}
