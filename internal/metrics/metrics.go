// SPDX-License-Identifier: MPL-2.0

// Package metrics counts synchronizations and executable resolutions and
// exports them in the Prometheus text format, e.g. for the node_exporter
// textfile collector.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every metric name.
const Namespace = "bundlekit"

// Prom implements install.Metrics on a private registry, so that several
// instances (and tests) never collide on the default one.
type Prom struct {
	registry        *prometheus.Registry
	syncs           *prometheus.CounterVec
	installed       prometheus.Counter
	evicted         prometheus.Counter
	resolves        *prometheus.CounterVec
	resolveDuration prometheus.Histogram
}

// New creates and registers the collectors.
func New() *Prom {
	p := &Prom{
		registry: prometheus.NewRegistry(),
		syncs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "sync_total",
			Help:      "Dependency synchronizations by outcome (changed, unchanged, error).",
		}, []string{"outcome"}),
		installed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "packages_installed_total",
			Help:      "Package directories placed into a target.",
		}),
		evicted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "packages_evicted_total",
			Help:      "Stale package directories deleted from a target.",
		}),
		resolves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "resolve_total",
			Help:      "esbuild resolutions by the source that produced the executable.",
		}, []string{"source"}),
		resolveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "resolve_duration_seconds",
			Help:      "Time spent resolving the esbuild executable.",
			Buckets:   []float64{0.001, 0.01, 0.1, 1, 5, 15, 60},
		}),
	}
	p.registry.MustRegister(p.syncs, p.installed, p.evicted, p.resolves, p.resolveDuration)
	return p
}

// ObserveSync counts one synchronization.
func (p *Prom) ObserveSync(outcome string) {
	p.syncs.WithLabelValues(outcome).Inc()
}

// AddInstalled adds n installed package directories.
func (p *Prom) AddInstalled(n int) {
	if n > 0 {
		p.installed.Add(float64(n))
	}
}

// AddEvicted adds n evicted package directories.
func (p *Prom) AddEvicted(n int) {
	if n > 0 {
		p.evicted.Add(float64(n))
	}
}

// ObserveResolve counts one resolution; source is the resolver that
// succeeded, or "error".
func (p *Prom) ObserveResolve(source string, seconds float64) {
	p.resolves.WithLabelValues(source).Inc()
	p.resolveDuration.Observe(seconds)
}

// Gatherer exposes the registry.
func (p *Prom) Gatherer() prometheus.Gatherer {
	return p.registry
}

// WriteTextfile atomically writes all metrics to path.
func (p *Prom) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, p.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
