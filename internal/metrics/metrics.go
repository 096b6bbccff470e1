// Package metrics exposes Prometheus collectors fed from the event bus.
package metrics

import (
	"context"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hanpama/membergraph/internal/eventbus"
	"github.com/hanpama/membergraph/internal/events"
)

const namespace = "membergraph"

type Metrics struct {
	registry *prometheus.Registry

	httpDuration   *prometheus.HistogramVec
	operations     *prometheus.CounterVec
	operationErrs  *prometheus.CounterVec
	loaderBatches  *prometheus.CounterVec
	loaderKeys     *prometheus.HistogramVec
	storeQueries   *prometheus.CounterVec
	storeDurations *prometheus.HistogramVec
}

// New registers the collectors on a private registry. Go runtime and process
// collectors are included.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Latency of GraphQL HTTP requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "status"}),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "graphql_operations_total",
			Help:      "GraphQL operations by type and outcome.",
		}, []string{"type", "outcome"}),
		operationErrs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "graphql_errors_total",
			Help:      "GraphQL errors reported in responses.",
		}, []string{"type"}),
		loaderBatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loader_batches_total",
			Help:      "Batches dispatched by request-scoped loaders.",
		}, []string{"loader", "outcome"}),
		loaderKeys: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "loader_batch_keys",
			Help:      "Distinct keys per loader batch.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}, []string{"loader"}),
		storeQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_queries_total",
			Help:      "Backend facade calls.",
		}, []string{"entity", "op", "outcome"}),
		storeDurations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_query_duration_seconds",
			Help:      "Latency of backend facade calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"entity", "op"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpDuration, m.operations, m.operationErrs,
		m.loaderBatches, m.loaderKeys,
		m.storeQueries, m.storeDurations,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Subscribe feeds the collectors from b.
func (m *Metrics) Subscribe(b *eventbus.Bus) (unsubscribe func()) {
	unsubs := []func(){
		eventbus.On(b, func(_ context.Context, e events.HTTPFinish) {
			m.httpDuration.WithLabelValues(e.Request.Method, strconv.Itoa(e.Status)).Observe(e.Duration.Seconds())
		}),
		eventbus.On(b, func(_ context.Context, e events.GraphQLFinish) {
			typ := e.OperationType
			if typ == "" {
				typ = "unknown"
			}
			m.operations.WithLabelValues(typ, operationOutcome(e)).Inc()
			if n := len(e.Errors); n > 0 {
				m.operationErrs.WithLabelValues(typ).Add(float64(n))
			}
		}),
		eventbus.On(b, func(_ context.Context, e events.LoaderBatch) {
			m.loaderBatches.WithLabelValues(e.Loader, outcome(e.Err)).Inc()
			m.loaderKeys.WithLabelValues(e.Loader).Observe(float64(e.Keys))
		}),
		eventbus.On(b, func(_ context.Context, e events.StoreQuery) {
			m.storeQueries.WithLabelValues(e.Entity, e.Op, outcome(e.Err)).Inc()
			m.storeDurations.WithLabelValues(e.Entity, e.Op).Observe(e.Duration.Seconds())
		}),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func operationOutcome(e events.GraphQLFinish) string {
	switch {
	case e.Rejected:
		return "rejected"
	case len(e.Errors) > 0:
		return "partial"
	default:
		return "ok"
	}
}
