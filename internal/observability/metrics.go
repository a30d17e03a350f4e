package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus instruments for the aggregation and fan-out
// pipeline.
type Metrics struct {
	AggregationCycles  prometheus.Counter
	AdapterFailures    *prometheus.CounterVec // labels: source
	SnapshotAlerts     prometheus.Gauge
	SnapshotPriority   prometheus.Gauge
	PersistenceErrors  prometheus.Counter
	ConnectedClients   prometheus.Gauge
	EventsDelivered    *prometheus.CounterVec // labels: scope={global,topic}
	EventsDropped      prometheus.Counter
	RelayEvents        *prometheus.CounterVec // labels: table
	RelayDropped       prometheus.Counter
	CycleDuration      prometheus.Histogram
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.AggregationCycles,
		m.AdapterFailures,
		m.SnapshotAlerts,
		m.SnapshotPriority,
		m.PersistenceErrors,
		m.ConnectedClients,
		m.EventsDelivered,
		m.EventsDropped,
		m.RelayEvents,
		m.RelayDropped,
		m.CycleDuration,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics across tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		AggregationCycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "response_hub",
			Name:      "aggregation_cycles_total",
			Help:      "Total completed aggregation cycles.",
		}),
		AdapterFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "response_hub",
			Name:      "adapter_failures_total",
			Help:      "Adapter fetch failures by source.",
		}, []string{"source"}),
		SnapshotAlerts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "response_hub",
			Name:      "snapshot_alerts",
			Help:      "Total alerts in the latest published snapshot.",
		}),
		SnapshotPriority: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "response_hub",
			Name:      "snapshot_high_priority_alerts",
			Help:      "High-priority alerts in the latest published snapshot.",
		}),
		PersistenceErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "response_hub",
			Name:      "snapshot_persistence_errors_total",
			Help:      "Failed best-effort snapshot cache writes.",
		}),
		ConnectedClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "response_hub",
			Name:      "connected_clients",
			Help:      "Currently registered hub connections.",
		}),
		EventsDelivered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "response_hub",
			Name:      "events_delivered_total",
			Help:      "Events handed to connection buffers, by addressing scope.",
		}, []string{"scope"}),
		EventsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "response_hub",
			Name:      "events_dropped_total",
			Help:      "Events dropped because a connection buffer was full.",
		}),
		RelayEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "response_hub",
			Name:      "relay_events_total",
			Help:      "Storage change events republished to topics, by table.",
		}, []string{"table"}),
		RelayDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "response_hub",
			Name:      "relay_dropped_total",
			Help:      "Change events dropped for lack of a resolvable disaster id.",
		}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "response_hub",
			Name:      "aggregation_cycle_duration_seconds",
			Help:      "Duration of one full aggregation cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 15},
		}),
	}
}
