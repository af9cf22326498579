// Package metrics exposes Prometheus counters for the ingestion pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ObservationsStored counts newly stored observations per source domain.
	ObservationsStored = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "farewatch_observations_stored_total",
		Help: "Number of observations newly stored, by source domain",
	}, []string{"source"})

	// ObservationsDuplicate counts writes dropped by the uniqueness
	// constraint or collapsed within a batch.
	ObservationsDuplicate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "farewatch_observations_duplicate_total",
		Help: "Number of duplicate observations discarded, by source domain",
	}, []string{"source"})

	// ObservationsRejected counts candidates failing validation.
	ObservationsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "farewatch_observations_rejected_total",
		Help: "Number of candidate observations rejected by validation, by source domain",
	}, []string{"source"})

	// MatchesCreated counts alert matches recorded.
	MatchesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "farewatch_matches_created_total",
		Help: "Number of alert matches recorded",
	})
)
