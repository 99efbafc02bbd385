package app

import (
	"fmt"
	"github.com/beldeveloper/bluegreen/internal/app/errtype"
	"time"
)

// FormDeploy is the deployment request as it's submitted over the API.
type FormDeploy struct {
	Version     string            `json:"version"`
	Strategy    string            `json:"strategy"`
	StepPercent int               `json:"stepPercent,omitempty"`
	Steps       []int             `json:"steps,omitempty"`
	Interval    string            `json:"interval,omitempty"`
	Thresholds  *HealthThresholds `json:"thresholds,omitempty"`
}

// Request converts the form to the deployment request.
func (f FormDeploy) Request() (DeploymentRequest, error) {
	req := DeploymentRequest{
		Version: f.Version,
		Strategy: Strategy{
			Type:        f.Strategy,
			StepPercent: f.StepPercent,
			Steps:       f.Steps,
		},
		Thresholds: f.Thresholds,
	}
	if f.Interval != "" {
		d, err := time.ParseDuration(f.Interval)
		if err != nil || d < 0 {
			return req, fmt.Errorf("%w: invalid interval %q", errtype.ErrBadInput, f.Interval)
		}
		req.Strategy.Interval = d
	}
	return req, nil
}
