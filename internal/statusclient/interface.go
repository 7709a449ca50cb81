package statusclient

import (
	"github.com/chrisjgf/ez-stablecoin/internal/model"
)

// IStatusClient is the pipeline's view of the status service. Merge
// overlays only the supplied fields; the merged record is returned.
type IStatusClient interface {
	Get() (*model.WorkflowStatus, error)
	Merge(update model.StatusUpdate) (*model.WorkflowStatus, error)

	// WaitForDeposit blocks until the stored gbp field turns positive
	// and returns it. Fetch errors are treated as "no deposit yet".
	WaitForDeposit() (float64, error)
}
