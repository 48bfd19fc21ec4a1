package metrics

import (
	"net/http"
	"strings"
	"time"

	"datasync/core/provider"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "datasync"

// Metrics holds the registry and collectors for provider activity.
type Metrics struct {
	// Registry is the Prometheus registry every collector is registered to.
	Registry *prometheus.Registry

	passes      *prometheus.CounterVec
	events      *prometheus.CounterVec
	objects     *prometheus.GaugeVec
	lastSuccess *prometheus.GaugeVec
}

// New creates a registry labelled with serviceName and registers the runtime
// and provider collectors on it.
func New(serviceName string) *Metrics {
	registry := prometheus.NewRegistry()
	wrapped := prometheus.WrapRegistererWith(prometheus.Labels{"service": serviceName}, registry)

	m := &Metrics{
		Registry: registry,
		passes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "passes_total",
			Help:      "Finished reconciliation passes by outcome.",
		}, []string{"provider", "result"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "events_total",
			Help:      "Events emitted by providers.",
		}, []string{"provider", "type"}),
		objects: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "objects",
			Help:      "Objects currently stored by a provider.",
		}, []string{"provider"}),
		lastSuccess: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last completed pass.",
		}, []string{"provider"}),
	}

	wrapped.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.passes,
		m.events,
		m.objects,
		m.lastSuccess,
	)
	return m
}

// Observe records the events of p under the given provider label and returns
// a function that stops observing.
func (m *Metrics) Observe(name string, p *provider.Provider) func() {
	return p.Bus().SubscribeAll(func(eventName string, ev provider.Event) {
		if ev.Sender != p {
			return
		}
		m.events.WithLabelValues(name, strings.TrimPrefix(eventName, "provider:")).Inc()

		switch eventName {
		case provider.EventCompleted:
			result := "unchanged"
			if ev.Changed {
				result = "changed"
			}
			m.passes.WithLabelValues(name, result).Inc()
			m.objects.WithLabelValues(name).Set(float64(p.Len()))
			m.lastSuccess.WithLabelValues(name).Set(float64(time.Now().Unix()))
		case provider.EventError:
			m.passes.WithLabelValues(name, "error").Inc()
		}
	})
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
