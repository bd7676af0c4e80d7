package web

import (
	"net/http"
	"time"

	"github.com/leen324/locscope/core"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors of one server. Each server gets its
// own registry so tests can build several servers in one process.
type Metrics struct {
	registry *prometheus.Registry

	eventDuration  *prometheus.HistogramVec
	requestsTotal  *prometheus.CounterVec
	sessionsActive prometheus.Gauge
	loadsTotal     *prometheus.CounterVec
}

var _ core.Observer = &Metrics{} // Compile-time check

// NewMetrics creates the collectors on a fresh registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		eventDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "locscope_event_duration_seconds",
			Help:    "Time spent processing one chart event",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.25, 1},
		}, []string{"trigger"}),
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "locscope_http_requests_total",
			Help: "HTTP requests by route and status code",
		}, []string{"route", "code"}),
		sessionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "locscope_sessions_active",
			Help: "Viewer sessions currently held in memory",
		}),
		loadsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "locscope_loads_total",
			Help: "Dataset loads by outcome",
		}, []string{"outcome"}),
	}
}

// ObserveEvent implements core.Observer.
func (m *Metrics) ObserveEvent(trigger string, elapsed time.Duration) {
	m.eventDuration.WithLabelValues(trigger).Observe(elapsed.Seconds())
}

// Handler serves the /metrics scrape endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) observeLoad(err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.loadsTotal.WithLabelValues(outcome).Inc()
}
