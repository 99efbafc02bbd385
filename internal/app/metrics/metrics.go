package metrics

import (
	"github.com/beldeveloper/bluegreen/internal/app"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"net/http"
	"sync"
)

const namespace = "bluegreen"

var states = []app.State{
	app.StateIdle,
	app.StateProvisioningIdlePool,
	app.StateShifting,
	app.StateBaking,
	app.StatePromoted,
	app.StateRollingBack,
	app.StateFailed,
}

var (
	// Registry holds every collector of the service.
	Registry = prometheus.NewRegistry()

	poolWeight = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pool_weight",
			Help:      "Current traffic weight of the pool.",
		},
		[]string{"group", "pool"},
	)
	groupState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "group_state",
			Help:      "1 for the current state of the deployment group, 0 for the others.",
		},
		[]string{"group", "state"},
	)
	transitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transitions_total",
			Help:      "Count of state transitions of the deployment groups.",
		},
		[]string{"group", "from", "to"},
	)
	deploymentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deployments_total",
			Help:      "Count of finished deployments by outcome.",
		},
		[]string{"group", "outcome"},
	)
	healthEvaluationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "health_evaluations_total",
			Help:      "Count of pool health evaluations by result.",
		},
		[]string{"group", "pool", "result"},
	)
)

var registerMetrics sync.Once

// Register all metrics.
func Register() {
	registerMetrics.Do(func() {
		Registry.MustRegister(poolWeight)
		Registry.MustRegister(groupState)
		Registry.MustRegister(transitionsTotal)
		Registry.MustRegister(deploymentsTotal)
		Registry.MustRegister(healthEvaluationsTotal)
	})
}

// Handler exposes the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RecordPoolWeights sets the weight gauge of every pool of the group.
func RecordPoolWeights(group app.GroupID, weights map[app.PoolID]int) {
	for pool, w := range weights {
		poolWeight.WithLabelValues(string(group), string(pool)).Set(float64(w))
	}
}

// RecordGroupState marks the current state of the group.
func RecordGroupState(group app.GroupID, current app.State) {
	for _, s := range states {
		var v float64
		if s == current {
			v = 1
		}
		groupState.WithLabelValues(string(group), string(s)).Set(v)
	}
}

// RecordTransition counts a state transition.
func RecordTransition(group app.GroupID, from, to app.State) {
	transitionsTotal.WithLabelValues(string(group), string(from), string(to)).Inc()
}

// RecordDeploymentOutcome counts a finished deployment.
func RecordDeploymentOutcome(group app.GroupID, outcome app.State) {
	deploymentsTotal.WithLabelValues(string(group), string(outcome)).Inc()
}

// RecordHealthEvaluation counts a health gate decision.
func RecordHealthEvaluation(group app.GroupID, pool app.PoolID, healthy bool) {
	result := "unhealthy"
	if healthy {
		result = "healthy"
	}
	healthEvaluationsTotal.WithLabelValues(string(group), string(pool), result).Inc()
}
