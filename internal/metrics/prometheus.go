package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "portfolio"

// Prometheus implements Collector with client_golang counters.
type Prometheus struct {
	registry *prometheus.Registry

	emitted          *prometheus.CounterVec
	listenerFaults   *prometheus.CounterVec
	stateWrites      prometheus.Counter
	statePathsWrites prometheus.Counter
	notifications    *prometheus.CounterVec
	subscriberFaults *prometheus.CounterVec
}

// NewPrometheus creates a collector registered on a fresh registry.
// Go runtime and process collectors are included.
func NewPrometheus() *Prometheus {
	reg := prometheus.NewRegistry()
	p := &Prometheus{
		registry: reg,
		emitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bus",
			Name:      "events_emitted_total",
			Help:      "Events emitted on the bus.",
		}, []string{"event"}),
		listenerFaults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bus",
			Name:      "listener_faults_total",
			Help:      "Listener errors and panics.",
		}, []string{"event"}),
		stateWrites: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "writes_total",
			Help:      "Set and SetMany calls.",
		}),
		statePathsWrites: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "paths_written_total",
			Help:      "Paths written across all state writes.",
		}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "notifications_total",
			Help:      "Subscriber notifications delivered.",
		}, []string{"path"}),
		subscriberFaults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "subscriber_faults_total",
			Help:      "Subscriber panics.",
		}, []string{"path"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		p.emitted,
		p.listenerFaults,
		p.stateWrites,
		p.statePathsWrites,
		p.notifications,
		p.subscriberFaults,
	)
	return p
}

func (p *Prometheus) IncEmitted(event string) {
	p.emitted.WithLabelValues(event).Inc()
}

func (p *Prometheus) IncListenerFault(event string) {
	p.listenerFaults.WithLabelValues(event).Inc()
}

func (p *Prometheus) IncStateWrite(paths int) {
	p.stateWrites.Inc()
	p.statePathsWrites.Add(float64(paths))
}

func (p *Prometheus) IncNotification(path string) {
	p.notifications.WithLabelValues(path).Inc()
}

func (p *Prometheus) IncSubscriberFault(path string) {
	p.subscriberFaults.WithLabelValues(path).Inc()
}

// Registry exposes the underlying registry.
func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}

// Handler returns an HTTP handler serving the registry in exposition format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}
