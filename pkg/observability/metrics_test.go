package observability

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/denizsokullu/redux-shrub/pkg/domain"
)

func event(actionType string) *domain.DispatchEvent {
	return &domain.DispatchEvent{
		EventBase:  domain.EventBase{Timestamp: time.Now(), SessionID: "s1"},
		ActionType: actionType,
		Duration:   5 * time.Millisecond,
		Changed:    []string{"todos"},
	}
}

func TestMetrics_Hooks(t *testing.T) {
	m, err := NewMetrics(nil)
	require.NoError(t, err)
	hooks := m.Hooks()
	ctx := context.Background()

	hooks.OnDispatch(ctx, event("TODOS_ADD"))
	hooks.OnDispatch(ctx, event("TODOS_ADD"))
	hooks.OnUnknownAction(ctx, event("NOPE"))
	hooks.OnDispatchError(ctx, event("TODOS_ADD"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.dispatches.WithLabelValues("TODOS_ADD", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.dispatches.WithLabelValues("NOPE", OutcomeUnknown)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.dispatches.WithLabelValues("TODOS_ADD", OutcomeError)))
}

func TestMetrics_DoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewMetrics(reg)
	require.NoError(t, err)
	_, err = NewMetrics(reg)
	assert.Error(t, err)
}

func TestMetrics_Handler(t *testing.T) {
	m, err := NewMetrics(nil)
	require.NoError(t, err)
	m.Hooks().OnDispatch(context.Background(), event("COUNT_SET"))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), `shrub_dispatch_total{outcome="ok",type="COUNT_SET"} 1`)
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	hooks := LogHooks(logger)

	e := event("COUNT_SET")
	e.Err = errors.New("boom")
	hooks.OnDispatchError(context.Background(), e)

	assert.Contains(t, buf.String(), "dispatch failed")
	assert.Contains(t, buf.String(), "err=boom")
}
