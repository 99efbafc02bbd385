package app

import (
	"context"
	"time"
)

// StateRecord is the persisted state of a deployment group.
// It is written after every transition and read back on start-up.
type StateRecord struct {
	GroupID          GroupID            `json:"groupId"`
	State            State              `json:"state"`
	Weights          map[PoolID]int     `json:"weights"`
	PreviousWeights  map[PoolID]int     `json:"previousWeights,omitempty"`
	RequestedVersion string             `json:"requestedVersion"`
	Active           PoolID             `json:"active"`
	Idle             PoolID             `json:"idle"`
	Versions         map[PoolID]string  `json:"versions,omitempty"`
	DeploymentID     string             `json:"deploymentId,omitempty"`
	Request          *DeploymentRequest `json:"request,omitempty"`
	Step             int                `json:"step"`
	ProvisionID      string             `json:"provisionId,omitempty"`
	Reason           string             `json:"reason,omitempty"`
	Stalled          bool               `json:"stalled,omitempty"`
	StartedAt        time.Time          `json:"startedAt"`
	UpdatedAt        time.Time          `json:"updatedAt"`
	ShiftedAt        time.Time          `json:"shiftedAt"`
}

// StateRepo describes interactions with the group state DB.
type StateRepo interface {
	FindAll(ctx context.Context) ([]StateRecord, error)
	FindByGroup(ctx context.Context, id GroupID) (StateRecord, error)
	Save(ctx context.Context, r StateRecord) error
}
