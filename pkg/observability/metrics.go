package observability

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/aretw0/welllit/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "welllit"

// Metrics holds the station collectors. It registers on its own registry so
// tests and embedded hosts never collide on the global one.
type Metrics struct {
	Registry *prometheus.Registry

	loaded      prometheus.Counter
	transfers   *prometheus.CounterVec
	resets      prometheus.Counter
	plates      prometheus.Counter
	overridden  prometheus.Counter
	completed   prometheus.Counter
	aborted     prometheus.Counter
	rejections  *prometheus.CounterVec
	pending     prometheus.Gauge
	stepSeconds prometheus.Histogram

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	mu       sync.Mutex
	lastStep time.Time
}

// NewMetrics creates and registers the collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		loaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "protocols_loaded_total",
			Help:      "Transfer protocols loaded successfully.",
		}),
		transfers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transfers_total",
			Help:      "Transfer status writes by resulting status.",
		}, []string{"status"}),
		resets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transfer_resets_total",
			Help:      "Transfers returned to uncompleted by undo.",
		}),
		plates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plates_advanced_total",
			Help:      "Plate transitions committed, including the final one.",
		}),
		overridden: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transfers_overridden_total",
			Help:      "Transfers skipped by a next plate override.",
		}),
		completed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "protocols_completed_total",
			Help:      "Transfer protocols finished.",
		}),
		aborted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "protocols_aborted_total",
			Help:      "Transfer protocols discarded by abort.",
		}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejections_total",
			Help:      "Rejected operator commands by reason.",
		}, []string{"reason"}),
		pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "transfers_pending",
			Help:      "Uncompleted transfers in the active protocol.",
		}),
		stepSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transfer_step_seconds",
			Help:      "Time between consecutive status writes of a run.",
			Buckets:   []float64{1, 2, 5, 10, 20, 30, 60, 120, 300},
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	m.Registry.MustRegister(
		m.loaded, m.transfers, m.resets, m.plates, m.overridden,
		m.completed, m.aborted, m.rejections, m.pending, m.stepSeconds,
		m.httpRequests, m.httpDuration,
	)
	return m
}

// Hooks returns the callbacks that feed the collectors.
func (m *Metrics) Hooks() domain.Hooks {
	return domain.Hooks{
		OnProtocolLoaded: func(_ context.Context, e *domain.ProtocolEvent) {
			m.loaded.Inc()
			m.pending.Set(float64(e.Transfers))
			m.mu.Lock()
			m.lastStep = e.Timestamp
			m.mu.Unlock()
		},
		OnTransferUpdated: func(_ context.Context, e *domain.TransferEvent) {
			m.transfers.WithLabelValues(string(e.Transfer.Status)).Inc()
			m.pending.Dec()
			m.observeStep(e.Timestamp)
		},
		OnTransferReset: func(_ context.Context, e *domain.TransferEvent) {
			m.resets.Inc()
			m.pending.Inc()
		},
		OnPlateAdvanced: func(_ context.Context, e *domain.PlateEvent) {
			m.plates.Inc()
			m.overridden.Add(float64(e.Skipped))
		},
		OnProtocolComplete: func(_ context.Context, e *domain.ProtocolEvent) {
			m.completed.Inc()
		},
		OnProtocolAborted: func(_ context.Context, e *domain.ProtocolEvent) {
			m.aborted.Inc()
			m.pending.Set(0)
		},
		OnRejected: func(_ context.Context, e *domain.RejectEvent) {
			m.rejections.WithLabelValues(string(e.Reason)).Inc()
		},
	}
}

func (m *Metrics) observeStep(at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.lastStep.IsZero() && at.After(m.lastStep) {
		m.stepSeconds.Observe(at.Sub(m.lastStep).Seconds())
	}
	m.lastStep = at
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(method, route string, code int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
