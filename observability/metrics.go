// Package observability bundles the Prometheus metrics exposed by the
// field-map engine. The collector is optional: a nil *Collector is a
// valid no-op, so the hot query path never branches on configuration.
package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds the engine's Prometheus instruments.
type Collector struct {
	Queries            *prometheus.CounterVec
	LookupMisses       prometheus.Counter
	NewtonNonConverged prometheus.Counter
	DegenerateSkips    prometheus.Counter
	CandidateElements  prometheus.Histogram
}

// NewCollector registers the field-map metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	queries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fieldmap_queries_total",
		Help: "Total number of field-map queries, labeled by query kind.",
	}, []string{"kind"})
	misses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fieldmap_lookup_misses_total",
		Help: "Queries for which no element contained the point.",
	})
	nonConverged := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fieldmap_newton_nonconverged_total",
		Help: "Local-coordinate solves that exhausted the iteration budget.",
	})
	degenerate := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fieldmap_degenerate_skips_total",
		Help: "Candidate elements skipped because of degenerate geometry.",
	})
	candidates := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "fieldmap_candidate_elements",
		Help:    "Number of candidate elements tested per point location.",
		Buckets: []float64{1, 2, 4, 8, 16, 32, 64, 128, 256},
	})

	c := &Collector{
		Queries:            queries,
		LookupMisses:       misses,
		NewtonNonConverged: nonConverged,
		DegenerateSkips:    degenerate,
		CandidateElements:  candidates,
	}
	for _, col := range []prometheus.Collector{queries, misses, nonConverged, degenerate, candidates} {
		if err := reg.Register(col); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return nil, fmt.Errorf("registering field-map metrics: %w", err)
		}
	}
	return c, nil
}

// ObserveQuery counts one query of the given kind.
func (c *Collector) ObserveQuery(kind string) {
	if c == nil {
		return
	}
	c.Queries.WithLabelValues(kind).Inc()
}

// ObserveMiss counts a point-location miss.
func (c *Collector) ObserveMiss() {
	if c == nil {
		return
	}
	c.LookupMisses.Inc()
}

// ObserveNonConverged counts an iteration-budget exhaustion.
func (c *Collector) ObserveNonConverged() {
	if c == nil {
		return
	}
	c.NewtonNonConverged.Inc()
}

// ObserveDegenerateSkip counts a skipped degenerate candidate.
func (c *Collector) ObserveDegenerateSkip() {
	if c == nil {
		return
	}
	c.DegenerateSkips.Inc()
}

// ObserveCandidates records the candidate-set size of one point
// location.
func (c *Collector) ObserveCandidates(n int) {
	if c == nil {
		return
	}
	c.CandidateElements.Observe(float64(n))
}
