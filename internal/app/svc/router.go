package svc

import (
	"fmt"
	"github.com/beldeveloper/bluegreen/internal/app"
	"github.com/beldeveloper/bluegreen/internal/app/errtype"
	"github.com/beldeveloper/bluegreen/internal/app/metrics"
	"github.com/beldeveloper/go-errors-context"
	"sync"
)

// NewRouter creates a new instance of the traffic router with the whole traffic on the active pool.
func NewRouter(group app.GroupID, active, idle app.PoolID) *Router {
	w := map[app.PoolID]int{active: 100, idle: 0}
	metrics.RecordPoolWeights(group, w)
	return &Router{group: group, weights: w}
}

// Router holds the authoritative weights of the group pools.
type Router struct {
	group   app.GroupID
	mu      sync.RWMutex
	weights map[app.PoolID]int
}

// SetWeights replaces all weights at once.
// The new distribution must name every pool and sum to exactly 100.
func (r *Router) SetWeights(w map[app.PoolID]int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := validateWeights(r.weights, w); err != nil {
		return errors.WrapContext(err, errors.Context{
			Path:   "svc.Router.SetWeights",
			Params: errors.Params{"group": r.group, "weights": w},
		})
	}
	next := make(map[app.PoolID]int, len(w))
	for k, v := range w {
		next[k] = v
	}
	r.weights = next
	metrics.RecordPoolWeights(r.group, next)
	return nil
}

// Weights returns a copy of the current weights.
func (r *Router) Weights() map[app.PoolID]int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := make(map[app.PoolID]int, len(r.weights))
	for k, v := range r.weights {
		res[k] = v
	}
	return res
}

func validateWeights(current, next map[app.PoolID]int) error {
	if len(next) != len(current) {
		return fmt.Errorf("%w: expected %d pools, got %d", errtype.ErrInvalidWeightDistribution, len(current), len(next))
	}
	var sum int
	for pool, w := range next {
		if _, exists := current[pool]; !exists {
			return fmt.Errorf("%w: unknown pool %q", errtype.ErrInvalidWeightDistribution, pool)
		}
		if w < 0 || w > 100 {
			return fmt.Errorf("%w: weight %d of pool %q is out of range", errtype.ErrInvalidWeightDistribution, w, pool)
		}
		sum += w
	}
	if sum != 100 {
		return fmt.Errorf("%w: weights sum to %d", errtype.ErrInvalidWeightDistribution, sum)
	}
	return nil
}
