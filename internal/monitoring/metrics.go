package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the bridge.
type Metrics struct {
	registry *prometheus.Registry

	// Outbound path
	MessagesSent       *prometheus.CounterVec // by slice
	MessagesSuppressed *prometheus.CounterVec // by slice, pre-init
	InjectionFailures  prometheus.Counter
	StartupMessages    prometheus.Counter

	// Inbound path
	EventsDecoded   *prometheus.CounterVec // by event kind
	EventsMalformed prometheus.Counter
	EventsEmpty     prometheus.Counter

	// WebSocket relay
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec // by direction
}

// New creates bridge metrics on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		MessagesSent: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "leafbridge_messages_sent_total",
			Help: "Outbound messages dispatched into the engine, by slice",
		}, []string{"slice"}),
		MessagesSuppressed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "leafbridge_messages_suppressed_total",
			Help: "Slice updates suppressed before initialization, by slice",
		}, []string{"slice"}),
		InjectionFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "leafbridge_injection_failures_total",
			Help: "Script injections rejected by the engine runtime",
		}),
		StartupMessages: factory.NewCounter(prometheus.CounterOpts{
			Name: "leafbridge_startup_messages_total",
			Help: "Combined startup messages dispatched at initialization",
		}),
		EventsDecoded: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "leafbridge_events_decoded_total",
			Help: "Inbound engine events decoded, by event kind",
		}, []string{"event"}),
		EventsMalformed: factory.NewCounter(prometheus.CounterOpts{
			Name: "leafbridge_events_malformed_total",
			Help: "Inbound payloads dropped as unparseable",
		}),
		EventsEmpty: factory.NewCounter(prometheus.CounterOpts{
			Name: "leafbridge_events_empty_total",
			Help: "Inbound payloads ignored as empty",
		}),
		WSConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name: "leafbridge_ws_connections",
			Help: "Currently connected websocket clients",
		}),
		WSMessages: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "leafbridge_ws_messages_total",
			Help: "WebSocket messages relayed, by direction",
		}, []string{"direction"}),
	}
}

// Handler returns an http.Handler serving the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
