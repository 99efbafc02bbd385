package app

import "context"

const (
	// ProvisionPending means the pool instances are not ready yet.
	ProvisionPending = "pending"
	// ProvisionReady means the pool instances report ready.
	ProvisionReady = "ready"
	// ProvisionFailed means the provisioning service gave up.
	ProvisionFailed = "failed"
)

// ProvisionHandle references a provisioning job in the provisioning service.
type ProvisionHandle struct {
	ID string `json:"id"`
}

// ProvisionStatus is the state of a provisioning job.
type ProvisionStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Provisioner describes the external provisioning service.
type Provisioner interface {
	Provision(ctx context.Context, group GroupID, pool PoolID, version string, c Capacity) (ProvisionHandle, error)
	Status(ctx context.Context, h ProvisionHandle) (ProvisionStatus, error)
}
