package client

import "github.com/beldeveloper/bluegreen/internal/app"

// API models exchanged with the orchestrator.
type (
	GroupID          = app.GroupID
	PoolID           = app.PoolID
	State            = app.State
	HealthStatus     = app.HealthStatus
	Capacity         = app.Capacity
	Pool             = app.Pool
	GroupStatus      = app.GroupStatus
	HealthThresholds = app.HealthThresholds
	FormDeploy       = app.FormDeploy
	DeploymentHandle = app.DeploymentHandle
	DeploymentStatus = app.DeploymentStatus
)

// Deployment strategies.
const (
	StrategyAllAtOnce = app.StrategyAllAtOnce
	StrategyLinear    = app.StrategyLinear
	StrategyCanary    = app.StrategyCanary
)

// Deployment group states.
const (
	StateIdle                 = app.StateIdle
	StateProvisioningIdlePool = app.StateProvisioningIdlePool
	StateShifting             = app.StateShifting
	StateBaking               = app.StateBaking
	StatePromoted             = app.StatePromoted
	StateRollingBack          = app.StateRollingBack
	StateFailed               = app.StateFailed
)

// Pool identifiers and health statuses.
const (
	PoolBlue        = app.PoolBlue
	PoolGreen       = app.PoolGreen
	HealthUnknown   = app.HealthUnknown
	HealthHealthy   = app.HealthHealthy
	HealthUnhealthy = app.HealthUnhealthy
)
