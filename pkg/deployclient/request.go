package deployclient

import (
	"github.com/ptah-sh/deploy-action/pkg/processes"
)

// DeploymentRequest is the body sent to the deploy endpoint.
// Processes are serialized exactly as they were decoded.
type DeploymentRequest struct {
	Processes []processes.ProcessSpec `json:"processes"`
}

func MakeDeploymentRequest(processList []processes.ProcessSpec) DeploymentRequest {
	return DeploymentRequest{
		Processes: processList,
	}
}
