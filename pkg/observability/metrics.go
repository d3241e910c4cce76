package observability

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/denizsokullu/redux-shrub/pkg/domain"
)

const (
	OutcomeOK      = "ok"
	OutcomeUnknown = "unknown"
	OutcomeError   = "error"
)

// Metrics records dispatches as Prometheus series.
type Metrics struct {
	dispatches *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	changed    prometheus.Histogram
	gatherer   prometheus.Gatherer
}

// NewMetrics registers the dispatch series on reg.
// If reg is nil a private registry is used, which keeps tests independent.
func NewMetrics(reg *prometheus.Registry) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{
		dispatches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shrub_dispatch_total",
				Help: "Total number of dispatched actions",
			},
			[]string{"type", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shrub_dispatch_duration_seconds",
				Help:    "Duration of a dispatch including load and save",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"type"},
		),
		changed: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "shrub_dispatch_changed_slots",
				Help:    "Number of state slots changed by a dispatch",
				Buckets: prometheus.LinearBuckets(0, 1, 8),
			},
		),
		gatherer: reg,
	}

	for _, c := range []prometheus.Collector{m.dispatches, m.duration, m.changed} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks feeding the metrics.
// Unknown action types are labelled as such; the type label keeps the requested type.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnDispatch: func(_ context.Context, e *domain.DispatchEvent) {
			m.dispatches.WithLabelValues(e.ActionType, OutcomeOK).Inc()
			m.duration.WithLabelValues(e.ActionType).Observe(e.Duration.Seconds())
			m.changed.Observe(float64(len(e.Changed)))
		},
		OnUnknownAction: func(_ context.Context, e *domain.DispatchEvent) {
			m.dispatches.WithLabelValues(e.ActionType, OutcomeUnknown).Inc()
		},
		OnDispatchError: func(_ context.Context, e *domain.DispatchEvent) {
			m.dispatches.WithLabelValues(e.ActionType, OutcomeError).Inc()
			m.duration.WithLabelValues(e.ActionType).Observe(e.Duration.Seconds())
		},
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// LogHooks returns lifecycle hooks that log every dispatch.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnDispatch: func(ctx context.Context, e *domain.DispatchEvent) {
			logger.DebugContext(ctx, "dispatch",
				"session_id", e.SessionID,
				"type", e.ActionType,
				"changed", e.Changed,
				"duration", e.Duration,
			)
		},
		OnUnknownAction: func(ctx context.Context, e *domain.DispatchEvent) {
			logger.InfoContext(ctx, "unknown action type",
				"session_id", e.SessionID,
				"type", e.ActionType,
			)
		},
		OnDispatchError: func(ctx context.Context, e *domain.DispatchEvent) {
			logger.WarnContext(ctx, "dispatch failed",
				"session_id", e.SessionID,
				"type", e.ActionType,
				"err", e.Err,
			)
		},
	}
}
