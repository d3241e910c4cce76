package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"log/slog"

	"github.com/denizsokullu/redux-shrub/internal/logging"
	"github.com/denizsokullu/redux-shrub/pkg/domain"
	"github.com/denizsokullu/redux-shrub/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed lock outlives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// Provider is the part of a compiled tree the manager needs. *shrub.Provider implements it.
type Provider interface {
	Reduce(state any, action domain.Action) (any, error)
	Handles(actionType string) bool
	Select(name string, state, payload any) (any, error)
	NewState() map[string]any
	ToJSON(state any) ([]byte, error)
	FromJSON(data []byte) (any, error)
}

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager serializes dispatches per session.
// Lock entries are reference counted and dropped once no caller holds them.
type Manager struct {
	provider Provider
	store    ports.SnapshotStore

	mu    sync.Mutex
	locks map[string]*lockEntry

	locker  ports.DistributedLocker
	lockTTL time.Duration
	hooks   domain.LifecycleHooks
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the expiry of distributed locks (default DefaultLockTTL).
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLifecycleHooks registers dispatch hooks. Repeated calls are merged.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(m *Manager) {
		m.hooks = m.hooks.Merge(hooks)
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewManager creates a Manager for one compiled tree.
func NewManager(provider Provider, store ports.SnapshotStore, opts ...Option) *Manager {
	m := &Manager{
		provider: provider,
		store:    store,
		locks:    make(map[string]*lockEntry),
		lockTTL:  DefaultLockTTL,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// WithLock executes fn while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

// load returns the stored state, or a fresh initial state for unknown sessions.
func (m *Manager) load(ctx context.Context, sessionID string) (any, bool, error) {
	data, err := m.store.Load(ctx, sessionID)
	if errors.Is(err, domain.ErrSnapshotNotFound) {
		return m.provider.NewState(), false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load session %q: %w", sessionID, err)
	}
	state, err := m.provider.FromJSON(data)
	if err != nil {
		return nil, false, fmt.Errorf("failed to restore session %q: %w", sessionID, err)
	}
	return state, true, nil
}

func (m *Manager) save(ctx context.Context, sessionID string, state any) error {
	data, err := m.provider.ToJSON(state)
	if err != nil {
		return fmt.Errorf("failed to encode session %q: %w", sessionID, err)
	}
	if err := m.store.Save(ctx, sessionID, data); err != nil {
		return fmt.Errorf("failed to save session %q: %w", sessionID, err)
	}
	return nil
}

// State returns the current state of a session.
// Sessions that were never dispatched to report the initial state.
func (m *Manager) State(ctx context.Context, sessionID string) (any, error) {
	var state any
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		state, _, err = m.load(ctx, sessionID)
		return err
	})
	return state, err
}

// Dispatch applies action to the session and persists the result.
// Unknown action types leave the session untouched and return its current state.
func (m *Manager) Dispatch(ctx context.Context, sessionID string, action domain.Action) (any, error) {
	var next any
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		start := time.Now()
		event := func(t domain.EventType) *domain.DispatchEvent {
			return &domain.DispatchEvent{
				EventBase:  domain.EventBase{Timestamp: start, Type: t, SessionID: sessionID},
				ActionType: action.Type,
				Duration:   time.Since(start),
			}
		}

		prev, _, err := m.load(ctx, sessionID)
		if err != nil {
			return err
		}

		if !m.provider.Handles(action.Type) {
			next = prev
			if m.hooks.OnUnknownAction != nil {
				m.hooks.OnUnknownAction(ctx, event(domain.EventUnknownAction))
			}
			return nil
		}

		reduced, err := m.provider.Reduce(prev, action)
		if err == nil {
			err = m.save(ctx, sessionID, reduced)
		}
		if err != nil {
			m.logger.Debug("dispatch failed", "session_id", sessionID, "type", action.Type, "err", err)
			if m.hooks.OnDispatchError != nil {
				e := event(domain.EventDispatchFailed)
				e.Err = err
				m.hooks.OnDispatchError(ctx, e)
			}
			return err
		}

		next = reduced
		if m.hooks.OnDispatch != nil {
			e := event(domain.EventDispatch)
			e.Changed = domain.Diff(prev, reduced)
			m.hooks.OnDispatch(ctx, e)
		}
		return nil
	})
	return next, err
}

// Select runs a selector against the session's current state.
func (m *Manager) Select(ctx context.Context, sessionID, name string, payload any) (any, error) {
	state, err := m.State(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return m.provider.Select(name, state, payload)
}

// Reset stores a fresh initial state for the session.
func (m *Manager) Reset(ctx context.Context, sessionID string) (any, error) {
	state := m.provider.NewState()
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.save(ctx, sessionID, state)
	})
	if err != nil {
		return nil, err
	}
	return state, nil
}

// Delete removes the session from the store.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Delete(ctx, sessionID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying snapshot store.
func (m *Manager) Store() ports.SnapshotStore {
	return m.store
}
