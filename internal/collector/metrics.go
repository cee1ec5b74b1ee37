package collector

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// LeadsReceived counts accepted lead submissions by quality tier.
var LeadsReceived = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "nestegg",
	Name:      "leads_received_total",
	Help:      "Total accepted lead submissions.",
}, []string{"quality"})

// IngestFailures counts rejected lead submissions by reason.
var IngestFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "nestegg",
	Name:      "ingest_failures_total",
	Help:      "Total rejected lead submissions.",
}, []string{"reason"})

// LeadScores tracks the distribution of submitted lead scores.
var LeadScores = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "nestegg",
	Name:      "lead_score",
	Help:      "Distribution of submitted lead scores.",
	Buckets:   []float64{0, 20, 40, 60, 80, 100, 120, 150, 200},
})
