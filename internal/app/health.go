package app

import (
	"context"
	"time"
)

// HealthCounts is a single reading of the health signal source.
type HealthCounts struct {
	Healthy   int `json:"healthy"`
	Unhealthy int `json:"unhealthy"`
}

// HealthSnapshot is the most recent observation of a pool.
type HealthSnapshot struct {
	PoolID         PoolID       `json:"poolId"`
	HealthyCount   int          `json:"healthyCount"`
	UnhealthyCount int          `json:"unhealthyCount"`
	Status         HealthStatus `json:"status"`
	LastObservedAt time.Time    `json:"lastObservedAt"`
}

// HealthSource describes the external monitoring system.
type HealthSource interface {
	HealthCounts(ctx context.Context, group GroupID, pool PoolID) (HealthCounts, error)
}

// HealthMonitor describes the cached view over the health source.
type HealthMonitor interface {
	Observe(pool PoolID) HealthSnapshot
	Refresh(ctx context.Context, pool PoolID) HealthSnapshot
	IsHealthy(pool PoolID, t HealthThresholds, since time.Time) bool
	Run(ctx context.Context) error
}
