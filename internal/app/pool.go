package app

const (
	// PoolBlue is the identifier of the blue deployment slot.
	PoolBlue PoolID = "blue"
	// PoolGreen is the identifier of the green deployment slot.
	PoolGreen PoolID = "green"

	// HealthUnknown means the pool was never observed or the last observation failed.
	HealthUnknown HealthStatus = "unknown"
	// HealthHealthy means the last observation was within the thresholds.
	HealthHealthy HealthStatus = "healthy"
	// HealthUnhealthy means the last observation breached the thresholds.
	HealthUnhealthy HealthStatus = "unhealthy"
)

// PoolID identifies one of the two deployment slots of a group.
type PoolID string

// HealthStatus is the aggregate health of a pool.
type HealthStatus string

// Capacity holds the instance counts of a pool.
type Capacity struct {
	Desired int `json:"desired" yaml:"desired"`
	Min     int `json:"min" yaml:"min"`
	Max     int `json:"max" yaml:"max"`
}

// Pool is a model that represents one deployment slot.
type Pool struct {
	ID       PoolID       `json:"id"`
	Version  *string      `json:"version"`
	Capacity Capacity     `json:"capacity"`
	Weight   int          `json:"weight"`
	Health   HealthStatus `json:"health"`
}
