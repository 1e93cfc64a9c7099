// Package metrics exposes the daemon's Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "blinkchain"

// Metrics groups the collectors updated by the poll loop.
type Metrics struct {
	Toggles       prometheus.Counter
	Level         prometheus.Gauge
	ModeIndex     prometheus.Gauge
	Presses       prometheus.Counter
	ModeChanges   *prometheus.CounterVec
	PublishErrors prometheus.Counter

	gatherer prometheus.Gatherer
}

// New registers the collectors on reg. Handler serves whatever g gathers,
// normally the same registry.
func New(reg prometheus.Registerer, g prometheus.Gatherer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Toggles: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chain",
			Name:      "toggles_total",
			Help:      "Timed flips of the light chain output",
		}),
		Level: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "chain",
			Name:      "level",
			Help:      "Current light chain output level (1 = on)",
		}),
		ModeIndex: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "mode",
			Name:      "index",
			Help:      "Position of the selected mode in the cycle",
		}),
		Presses: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "button",
			Name:      "presses_total",
			Help:      "Debounced button presses",
		}),
		ModeChanges: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mode",
			Name:      "changes_total",
			Help:      "Mode changes by source",
		}, []string{"source"}),
		PublishErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mqtt",
			Name:      "publish_errors_total",
			Help:      "Failed MQTT publishes",
		}),
		gatherer: g,
	}
}

// SetLevel records the output level.
func (m *Metrics) SetLevel(on bool) {
	if on {
		m.Level.Set(1)
	} else {
		m.Level.Set(0)
	}
}

// AddToggles adds the toggles performed since the previous call.
// total is the controller's running count; last is what was recorded before.
func (m *Metrics) AddToggles(total, last uint64) {
	if total > last {
		m.Toggles.Add(float64(total - last))
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
