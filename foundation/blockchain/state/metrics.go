package state

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	headHeight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "forkchain",
		Name:      "head_height",
		Help:      "Number of the block at the tip of the head branch.",
	})

	sideBranches = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "forkchain",
		Name:      "side_branches",
		Help:      "Number of side branches being tracked.",
	})

	orphanPool = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "forkchain",
		Name:      "orphan_blocks",
		Help:      "Number of blocks waiting for their parent.",
	})

	reorgs = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "forkchain",
		Name:      "reorgs_total",
		Help:      "Number of times the head switched to another branch.",
	})

	connects = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "forkchain",
		Name:      "connects_total",
		Help:      "Number of blocks handed to the chain by outcome.",
	}, []string{"outcome"})
)

// recordOutcome counts the result of a connect attempt.
func recordOutcome(outcome Outcome, err error) {
	if err != nil {
		connects.WithLabelValues("error").Inc()
		return
	}
	connects.WithLabelValues(outcome.String()).Inc()
}
