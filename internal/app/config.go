package app

import "time"

// ApiAccessKey is a data type for storing the API access key, used for DI.
type ApiAccessKey string

// ProvisionerURL is the base URL of the external provisioning service, used for DI.
// An empty value means the pools are provisioned outside of the orchestrator.
type ProvisionerURL string

// Health check protocols.
const (
	HealthProtocolHTTP = "http"
	HealthProtocolGRPC = "grpc"
)

// DeploymentConfig defines how a group drives a deployment.
type DeploymentConfig struct {
	StepSize               int           `yaml:"stepSize"`
	BakeTime               time.Duration `yaml:"bakeTime"`
	HealthCheckGracePeriod time.Duration `yaml:"healthCheckGracePeriod"`
	HealthCheckTimeout     time.Duration `yaml:"healthCheckTimeout"`
	RollbackOnAlarm        bool          `yaml:"rollbackOnAlarm"`
	HoldTimeout            time.Duration `yaml:"holdTimeout"`
	ProvisionTimeout       time.Duration `yaml:"provisionTimeout"`
	ProvisionPollInterval  time.Duration `yaml:"provisionPollInterval"`
}

// HealthConfig defines how the pools of a group are probed.
type HealthConfig struct {
	Protocol   string           `yaml:"protocol"`
	Path       string           `yaml:"path"`
	Interval   time.Duration    `yaml:"interval"`
	Timeout    time.Duration    `yaml:"timeout"`
	History    int              `yaml:"history"`
	Thresholds HealthThresholds `yaml:"thresholds"`
}

// PoolConfig defines one deployment slot of a group.
type PoolConfig struct {
	ID       PoolID   `yaml:"id"`
	Capacity Capacity `yaml:"capacity"`
	Targets  []string `yaml:"targets"`
	Version  string   `yaml:"version"`
}

// GroupConfig defines a deployment group.
type GroupConfig struct {
	ID         GroupID          `yaml:"id"`
	Pools      []PoolConfig     `yaml:"pools"`
	Active     PoolID           `yaml:"active"`
	Deployment DeploymentConfig `yaml:"deployment"`
	Health     HealthConfig     `yaml:"health"`
}

// Config is the full set of group definitions.
type Config struct {
	Groups []GroupConfig `yaml:"groups"`
}
