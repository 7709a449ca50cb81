package workflowstatus

import (
	"gorm.io/gorm"

	"github.com/chrisjgf/ez-stablecoin/internal/model"
)

type IStore interface {
	Get(tx *gorm.DB) (*model.WorkflowStatus, error)
	Merge(tx *gorm.DB, update model.StatusUpdate) (*model.WorkflowStatus, error)
	Reset(tx *gorm.DB) (*model.WorkflowStatus, error)
}
