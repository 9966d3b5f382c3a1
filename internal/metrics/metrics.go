// Package metrics exposes Prometheus instrumentation for queries and polling.
package metrics

import (
	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/i474232898/weatherscope/internal/polling"
)

const namespace = "weatherscope"

// Recorder implements the query, session and polling hooks on Prometheus.
type Recorder struct {
	queries          *prom.CounterVec
	queryDuration    prom.Histogram
	ticks            prom.Counter
	connectionStatus *prom.GaugeVec
	activeAlert      prom.Gauge
	staleResults     prom.Counter
}

// NewRecorder constructs the metrics and registers them on reg.
// A nil reg gets a fresh private registry.
func NewRecorder(reg *prom.Registry) *Recorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	r := &Recorder{
		queries: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Weather queries by outcome",
		}, []string{"outcome"}),
		queryDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "Duration of weather provider queries",
			Buckets:   prom.DefBuckets,
		}),
		ticks: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "polling_ticks_total",
			Help:      "Polling ticks applied",
		}),
		connectionStatus: prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "connection_status",
			Help:      "1 for the current simulated connection status, 0 otherwise",
		}, []string{"status"}),
		activeAlert: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "active_alert",
			Help:      "1 while a weather alert is raised",
		}),
		staleResults: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "stale_results_total",
			Help:      "Query results discarded because a newer query started",
		}),
	}
	reg.MustRegister(r.queries, r.queryDuration, r.ticks, r.connectionStatus, r.activeAlert, r.staleResults)
	return r
}

// ObserveQuery records one finished query.
func (r *Recorder) ObserveQuery(outcome string, seconds float64) {
	r.queries.WithLabelValues(outcome).Inc()
	r.queryDuration.Observe(seconds)
}

// StaleResult records a discarded query result.
func (r *Recorder) StaleResult() {
	r.staleResults.Inc()
}

// ObserveTick records the state produced by a polling tick.
func (r *Recorder) ObserveTick(state polling.ConnectionState) {
	r.ticks.Inc()
	for _, st := range polling.Statuses {
		v := 0.0
		if st == state.Status {
			v = 1
		}
		r.connectionStatus.WithLabelValues(string(st)).Set(v)
	}
	if state.HasActiveAlert {
		r.activeAlert.Set(1)
	} else {
		r.activeAlert.Set(0)
	}
}
