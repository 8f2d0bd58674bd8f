// Package metrics exposes Prometheus instrumentation for Framehaus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Provisioning outcome label values.
const (
	OutcomeNew             = "new"
	OutcomeReused          = "reused"
	OutcomeRecoveredOrphan = "recovered_orphan"
)

var (
	// ProvisionTotal counts successful brand provisioning runs by identity outcome.
	ProvisionTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "framehaus",
		Subsystem: "provisioning",
		Name:      "brands_total",
		Help:      "Successful brand provisioning runs by identity outcome.",
	}, []string{"outcome"})

	// ProvisionConflicts counts provisioning attempts rejected for a duplicate subdomain.
	ProvisionConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "framehaus",
		Subsystem: "provisioning",
		Name:      "subdomain_conflicts_total",
		Help:      "Provisioning attempts rejected because the subdomain was taken.",
	})

	// ThumbJobsProcessed counts finished thumbnail jobs by result.
	ThumbJobsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "framehaus",
		Subsystem: "thumbs",
		Name:      "jobs_total",
		Help:      "Thumbnail jobs processed by result.",
	}, []string{"result"})

	// LandingCacheHits counts published landing page cache lookups by result.
	LandingCacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "framehaus",
		Subsystem: "landing",
		Name:      "cache_lookups_total",
		Help:      "Published landing page cache lookups by result.",
	}, []string{"result"})

	// BrandsSuspended counts brands suspended by the billing sweep.
	BrandsSuspended = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "framehaus",
		Subsystem: "billing",
		Name:      "brands_suspended_total",
		Help:      "Brands suspended because their subscription period ended.",
	})
)
