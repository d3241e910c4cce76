package runner

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/denizsokullu/redux-shrub/internal/logging"
	"github.com/denizsokullu/redux-shrub/pkg/domain"
)

// DefaultSessionID is used when no session is configured.
const DefaultSessionID = "default"

// Sessions is the part of session.Manager the runner drives.
type Sessions interface {
	State(ctx context.Context, sessionID string) (any, error)
	Dispatch(ctx context.Context, sessionID string, action domain.Action) (any, error)
	Select(ctx context.Context, sessionID, name string, payload any) (any, error)
	Reset(ctx context.Context, sessionID string) (any, error)
}

// Provider is the part of the compiled tree the runner needs.
type Provider interface {
	Handles(actionType string) bool
	ToJSON(state any) ([]byte, error)
}

// Runner handles the command loop of one session.
type Runner struct {
	sessions  Sessions
	provider  Provider
	handler   IOHandler
	logger    *slog.Logger
	sessionID string
}

// Option configures a Runner.
type Option func(*Runner)

// WithHandler sets the IO strategy. Defaults to a TextHandler on stdin and stdout.
func WithHandler(h IOHandler) Option {
	return func(r *Runner) {
		r.handler = h
	}
}

// WithLogger sets the logger for the loop.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithSessionID sets the session the runner drives.
func WithSessionID(id string) Option {
	return func(r *Runner) {
		r.sessionID = id
	}
}

// New creates a Runner over sessions.
func New(sessions Sessions, provider Provider, opts ...Option) *Runner {
	r := &Runner{
		sessions:  sessions,
		provider:  provider,
		logger:    logging.NewNop(),
		sessionID: DefaultSessionID,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.handler == nil {
		r.handler = NewTextHandler(nil, nil)
	}
	return r
}

// Run reads commands until end of input, :quit or ctx is done.
// Command failures are reported through the handler and do not stop the loop.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.Debug("runner started", "session_id", r.sessionID)
	defer r.logger.Debug("runner stopped", "session_id", r.sessionID)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		cmd, err := r.handler.Input(ctx)
		switch {
		case errors.Is(err, io.EOF):
			return nil
		case errors.Is(err, ErrInvalidCommand):
			if err := r.handler.Output(ctx, Result{Error: err.Error()}); err != nil {
				return err
			}
			continue
		case err != nil:
			return err
		}

		if cmd.Kind == CommandQuit {
			return nil
		}
		if err := r.handler.Output(ctx, r.execute(ctx, cmd)); err != nil {
			return err
		}
	}
}

func (r *Runner) execute(ctx context.Context, cmd Command) Result {
	res := Result{Command: cmd.Kind}
	var state any
	var err error

	switch cmd.Kind {
	case CommandDispatch:
		res.Type = cmd.Action.Type
		if !r.provider.Handles(cmd.Action.Type) {
			res.Ignored = true
			return res
		}
		var prev any
		if prev, err = r.sessions.State(ctx, r.sessionID); err != nil {
			break
		}
		if state, err = r.sessions.Dispatch(ctx, r.sessionID, cmd.Action); err != nil {
			break
		}
		res.Changed = domain.Diff(prev, state)
	case CommandState:
		state, err = r.sessions.State(ctx, r.sessionID)
	case CommandReset:
		state, err = r.sessions.Reset(ctx, r.sessionID)
	case CommandSelect:
		res.Value, err = r.sessions.Select(ctx, r.sessionID, cmd.Selector, cmd.Payload)
	}

	if err != nil {
		r.logger.Debug("command failed", "session_id", r.sessionID, "command", cmd.Kind, "err", err)
		res.Error = err.Error()
		return res
	}
	if state != nil {
		if res.State, err = r.provider.ToJSON(state); err != nil {
			res.Error = err.Error()
		}
	}
	return res
}
