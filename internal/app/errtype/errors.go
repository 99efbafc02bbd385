package errtype

import "errors"

var (
	// ErrNotFound represents the error for the cases when some entity is not found.
	ErrNotFound = errors.New("not found")
	// ErrBadInput represents the error for the cases when the user input is invalid.
	ErrBadInput = errors.New("bad input")
	// ErrUnauthorized represents the error for the cases when the authorization is required.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidWeightDistribution represents the error for weights that are negative or don't sum to 100.
	ErrInvalidWeightDistribution = errors.New("invalid weight distribution")
	// ErrDeploymentInProgress represents the error for a deploy request on a busy group.
	ErrDeploymentInProgress = errors.New("deployment in progress")
	// ErrProvisioningFailure represents the error for the case when the idle pool could not be provisioned.
	ErrProvisioningFailure = errors.New("provisioning failure")
	// ErrHealthCheckFailure represents the error for the case when the idle pool breached the health thresholds.
	ErrHealthCheckFailure = errors.New("health check failure")
	// ErrTimeoutExceeded represents the error for a wait that did not finish in time.
	ErrTimeoutExceeded = errors.New("timeout exceeded")
	// ErrRollbackFailure represents the error for the case when the previous weights could not be restored.
	ErrRollbackFailure = errors.New("rollback failure")
	// ErrCanceled represents the error for a deployment canceled by the operator.
	ErrCanceled = errors.New("canceled")
)

var kinds = []struct {
	err  error
	name string
}{
	{ErrInvalidWeightDistribution, "InvalidWeightDistribution"},
	{ErrDeploymentInProgress, "DeploymentInProgress"},
	{ErrProvisioningFailure, "ProvisioningFailure"},
	{ErrHealthCheckFailure, "HealthCheckFailure"},
	{ErrTimeoutExceeded, "TimeoutExceeded"},
	{ErrRollbackFailure, "RollbackFailure"},
	{ErrCanceled, "Canceled"},
}

// Kind returns the taxonomy name of the error, e.g. "HealthCheckFailure".
func Kind(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "InternalError"
}

// Reason formats a human-readable failure reason prefixed with the error kind.
func Reason(err error) string {
	if err == nil {
		return ""
	}
	return Kind(err) + ": " + err.Error()
}
