package tracker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "steptrack_mutations_total",
		Help: "Tracker state mutations by operation.",
	}, []string{"op"})

	mutationsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "steptrack_mutations_rejected_total",
		Help: "Mutations rejected by validation, by operation.",
	}, []string{"op"})

	saveFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "steptrack_save_failures_total",
		Help: "Failed persistence writes. The in-memory mutation still stands.",
	})
)
