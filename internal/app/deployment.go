package app

import (
	"context"
	"time"
)

const (
	// StrategyAllAtOnce shifts the whole traffic in a single step.
	StrategyAllAtOnce = "all-at-once"
	// StrategyLinear shifts the traffic by equal increments.
	StrategyLinear = "linear"
	// StrategyCanary shifts a small share first and then continues by the configured steps.
	StrategyCanary = "canary"

	// StateIdle means the group accepts a new deployment.
	StateIdle State = "IDLE"
	// StateProvisioningIdlePool means the idle pool is receiving the new version.
	StateProvisioningIdlePool State = "PROVISIONING_IDLE_POOL"
	// StateShifting means the next traffic step is being applied.
	StateShifting State = "SHIFTING"
	// StateBaking means the group waits for the bake time and evaluates the idle pool health.
	StateBaking State = "BAKING"
	// StatePromoted means the new version receives the whole traffic.
	StatePromoted State = "PROMOTED"
	// StateRollingBack means the pre-deployment weights are being restored.
	StateRollingBack State = "ROLLING_BACK"
	// StateFailed means the deployment ended without promotion.
	StateFailed State = "FAILED"
)

// State is a state of the deployment group state machine.
type State string

// Terminal reports whether no further transitions happen without a new request.
func (s State) Terminal() bool {
	return s == StateIdle || s == StatePromoted || s == StateFailed
}

// GroupID identifies a deployment group.
type GroupID string

// Strategy describes how the traffic is shifted to the new version.
type Strategy struct {
	Type string `json:"type"`

	// StepPercent is the increment of linear and canary shifts.
	StepPercent int `json:"stepPercent,omitempty"`

	// Steps is an explicit list of increments; it takes precedence over StepPercent.
	Steps []int `json:"steps,omitempty"`

	// Interval overrides the group bake time.
	Interval time.Duration `json:"interval,omitempty"`
}

// HealthThresholds defines when a pool is considered healthy.
type HealthThresholds struct {
	MinHealthy        int `json:"minHealthy" yaml:"minHealthy"`
	MaxUnhealthy      int `json:"maxUnhealthy" yaml:"maxUnhealthy"`
	EvaluationWindow  int `json:"evaluationWindow" yaml:"evaluationWindow"`
	DatapointsToAlarm int `json:"datapointsToAlarm" yaml:"datapointsToAlarm"`
}

// DeploymentRequest is the immutable input of a deployment.
type DeploymentRequest struct {
	Version    string            `json:"version"`
	Strategy   Strategy          `json:"strategy"`
	Thresholds *HealthThresholds `json:"thresholds,omitempty"`
}

// DeploymentHandle references a deployment started by the orchestrator.
type DeploymentHandle struct {
	ID      string  `json:"id"`
	GroupID GroupID `json:"groupId"`
}

// DeploymentStatus is a model that describes the current state of a deployment.
type DeploymentStatus struct {
	Handle         DeploymentHandle `json:"handle"`
	State          State            `json:"state"`
	CurrentWeights map[PoolID]int   `json:"currentWeights"`
	LastError      string           `json:"lastError,omitempty"`
	Step           int              `json:"step"`
	TotalSteps     int              `json:"totalSteps"`
	Stalled        bool             `json:"stalled,omitempty"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

// GroupStatus is a model that describes a deployment group at a point in time.
type GroupStatus struct {
	ID         GroupID           `json:"id"`
	State      State             `json:"state"`
	Active     PoolID            `json:"active"`
	Idle       PoolID            `json:"idle"`
	Pools      []Pool            `json:"pools"`
	Deployment *DeploymentStatus `json:"deployment,omitempty"`
}

// OrchestratorSvc describes the deployment orchestrator.
type OrchestratorSvc interface {
	Deploy(ctx context.Context, group GroupID, req DeploymentRequest) (DeploymentHandle, error)
	Cancel(ctx context.Context, h DeploymentHandle) error
	Status(ctx context.Context, h DeploymentHandle) (DeploymentStatus, error)
	Await(ctx context.Context, h DeploymentHandle) (DeploymentStatus, error)
	Recover(ctx context.Context, group GroupID) error
	Groups(ctx context.Context) ([]GroupStatus, error)
	Group(ctx context.Context, group GroupID) (GroupStatus, error)
	Weights(ctx context.Context, group GroupID) (map[PoolID]int, error)
	ReportMetricsJob(ctx context.Context) error
}
