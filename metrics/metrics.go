// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package metrics provides the provisioner's cross-cutting metrics
// hooks: success/failure counters and a histogram of bitfield counts
// per assembled inherent (spec.md §2, "Metrics Hooks").
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is registered once per Provisioner and passed to every
// background assembly it spawns.
type Metrics struct {
	inherentData   *prometheus.CounterVec
	bitfieldsCount prometheus.Histogram
}

// NewMetrics registers the provisioner's collectors against reg. reg
// may be a *prometheus.Registry or the default Registerer; pass
// prometheus.NewRegistry() in tests to avoid collisions with other
// registrations in the same process.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		inherentData: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "provisioner",
			Name:      "request_inherent_data_total",
			Help:      "Number of RequestInherentData assemblies, by outcome.",
		}, []string{"result"}),
		bitfieldsCount: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "provisioner",
			Name:      "bitfields_included",
			Help:      "Number of availability bitfields included per assembled inherent.",
			Buckets:   prometheus.LinearBuckets(0, 8, 16),
		}),
	}
	for _, c := range []prometheus.Collector{m.inherentData, m.bitfieldsCount} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// OnAssemblySucceeded records a successful background assembly and the
// number of bitfields it selected.
func (m *Metrics) OnAssemblySucceeded(bitfieldCount int) {
	if m == nil {
		return
	}
	m.inherentData.WithLabelValues("success").Inc()
	m.bitfieldsCount.Observe(float64(bitfieldCount))
}

// OnAssemblyFailed records a background assembly that ended in an
// error, timeout included. Delivery to waiters is not tracked: a
// waiter that stops listening is not detected or counted.
func (m *Metrics) OnAssemblyFailed() {
	if m == nil {
		return
	}
	m.inherentData.WithLabelValues("failure").Inc()
}
