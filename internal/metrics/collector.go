// Package metrics: метрики сервера в собственном prometheus.Registry.
package metrics

import (
	"SecretKeeper/internal/apperr"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "secretkeeper"

// Результаты операций для метки result.
const (
	ResultOK         = "ok"
	ResultBadRequest = "bad_request"
	ResultNotFound   = "not_found"
	ResultError      = "error"
)

// Collector собирает метрики операций, blind index и побочных эффектов.
type Collector struct {
	registry *prometheus.Registry

	operations         *prometheus.CounterVec
	operationDuration  *prometheus.HistogramVec
	blindIndexDuration prometheus.Histogram
	sideEffectFailures *prometheus.CounterVec
	sideEffectDropped  *prometheus.CounterVec
	telemetryEvents    *prometheus.CounterVec
}

// NewCollector создаёт и регистрирует все метрики. registry == nil: новый реестр.
func NewCollector(registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	c := &Collector{
		registry: registry,
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Secret operations by result",
		}, []string{"op", "result"}),
		operationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Secret operation latency",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"op"}),
		// argon2id с боевыми параметрами: десятки-сотни миллисекунд
		blindIndexDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "blind_index_duration_seconds",
			Help:      "Time spent computing one blind index",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2},
		}),
		sideEffectFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "side_effect_failures_total",
			Help:      "Failed version/audit/snapshot/telemetry side effects",
		}, []string{"kind"}),
		sideEffectDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "side_effect_dropped_total",
			Help:      "Side effects dropped because the queue was full or closed",
		}, []string{"kind"}),
		telemetryEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "telemetry_events_total",
			Help:      "Captured telemetry events",
		}, []string{"event", "channel"}),
	}
	registry.MustRegister(
		c.operations,
		c.operationDuration,
		c.blindIndexDuration,
		c.sideEffectFailures,
		c.sideEffectDropped,
		c.telemetryEvents,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Registry отдаёт реестр (нужен тестам и для регистрации внешних коллекторов).
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler: HTTP-обработчик /metrics.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		ErrorHandling: promhttp.ContinueOnError,
	})
}

// ObserveOperation учитывает завершённую операцию.
func (c *Collector) ObserveOperation(op string, err error, d time.Duration) {
	c.operations.WithLabelValues(op, resultOf(err)).Inc()
	c.operationDuration.WithLabelValues(op).Observe(d.Seconds())
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, apperr.ErrBadRequest):
		return ResultBadRequest
	case errors.Is(err, apperr.ErrSecretNotFound):
		return ResultNotFound
	default:
		return ResultError
	}
}

func (c *Collector) ObserveBlindIndex(d time.Duration) {
	c.blindIndexDuration.Observe(d.Seconds())
}

func (c *Collector) SideEffectFailed(kind string) {
	c.sideEffectFailures.WithLabelValues(kind).Inc()
}

func (c *Collector) SideEffectDropped(kind string) {
	c.sideEffectDropped.WithLabelValues(kind).Inc()
}
