// Package metrics exposes scrimmage and engine counters in Prometheus
// format. Metrics doubles as a trace sink so game, action and node events
// feed the counters without extra plumbing in the simulation.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ahump20/Sandlot-Sluggers-sub004/internal/core/trace"
)

// Metrics holds every collector on its own registry so instances stay
// independent.
type Metrics struct {
	registry *prometheus.Registry

	gameEvents   *prometheus.CounterVec
	agentActions *prometheus.CounterVec
	nodeStatuses *prometheus.CounterVec
	tickDuration prometheus.Histogram
	agents       prometheus.Gauge
	panics       prometheus.Gauge
	runs         prometheus.Gauge
	hits         prometheus.Gauge
	spectators   *prometheus.GaugeVec
}

// New builds and registers all collectors.
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.gameEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sluggers_game_events_total",
			Help: "Game-state transitions by event name",
		},
		[]string{"event"},
	)
	m.agentActions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sluggers_agent_actions_total",
			Help: "Outward agent action changes by action",
		},
		[]string{"action"},
	)
	m.nodeStatuses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sluggers_node_statuses_total",
			Help: "Behavior-tree node resolutions by status",
		},
		[]string{"status"},
	)
	m.tickDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sluggers_tick_duration_seconds",
			Help:    "Duration of one simulation step",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12),
		},
	)
	m.agents = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sluggers_agents",
		Help: "Agents currently registered",
	})
	m.panics = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sluggers_tree_panics",
		Help: "Tree ticks recovered from a panic since startup",
	})
	m.runs = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sluggers_runs",
		Help: "Runs scored this game",
	})
	m.hits = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sluggers_hits",
		Help: "Hits this game",
	})
	m.spectators = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sluggers_spectators",
			Help: "Connected trace consumers by transport",
		},
		[]string{"transport"},
	)

	m.registry.MustRegister(
		m.gameEvents, m.agentActions, m.nodeStatuses,
		m.tickDuration, m.agents, m.panics, m.runs, m.hits, m.spectators,
	)
	return m
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Record implements trace.Sink.
func (m *Metrics) Record(ev trace.Event) {
	switch ev.Kind {
	case trace.KindGame:
		m.gameEvents.WithLabelValues(ev.Action).Inc()
	case trace.KindAction:
		m.agentActions.WithLabelValues(ev.Action).Inc()
	case trace.KindNode:
		m.nodeStatuses.WithLabelValues(ev.Status).Inc()
	}
}

// ObserveTick records one simulation step's duration.
func (m *Metrics) ObserveTick(d time.Duration) {
	m.tickDuration.Observe(d.Seconds())
}

// SetAgents tracks the registered agent count.
func (m *Metrics) SetAgents(n int) {
	m.agents.Set(float64(n))
}

// SetPanics tracks the cumulative recovered-panic count reported by the
// registry.
func (m *Metrics) SetPanics(n uint64) {
	m.panics.Set(float64(n))
}

// SetScore tracks the scoreboard.
func (m *Metrics) SetScore(runs, hits int) {
	m.runs.Set(float64(runs))
	m.hits.Set(float64(hits))
}

// SetSpectators tracks connected consumers per transport.
func (m *Metrics) SetSpectators(websocket, quic int) {
	m.spectators.WithLabelValues("websocket").Set(float64(websocket))
	m.spectators.WithLabelValues("quic").Set(float64(quic))
}

var _ trace.Sink = (*Metrics)(nil)
