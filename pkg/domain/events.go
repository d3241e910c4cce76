package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventDispatch       EventType = "dispatch"
	EventUnknownAction  EventType = "unknown_action"
	EventDispatchFailed EventType = "dispatch_failed"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
}

// DispatchEvent describes one reduction performed by the host layer.
type DispatchEvent struct {
	EventBase
	ActionType string        `json:"action_type"`
	Duration   time.Duration `json:"duration"`
	Changed    []string      `json:"changed,omitempty"` // dotted paths, see Diff
	Err        error         `json:"-"`
}

// LifecycleHooks defines callbacks for dispatch observability.
// Every hook is optional.
type LifecycleHooks struct {
	OnDispatch      func(context.Context, *DispatchEvent)
	OnUnknownAction func(context.Context, *DispatchEvent)
	OnDispatchError func(context.Context, *DispatchEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnDispatch:      chain(h.OnDispatch, other.OnDispatch),
		OnUnknownAction: chain(h.OnUnknownAction, other.OnUnknownAction),
		OnDispatchError: chain(h.OnDispatchError, other.OnDispatchError),
	}
}

func chain(a, b func(context.Context, *DispatchEvent)) func(context.Context, *DispatchEvent) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e *DispatchEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}
