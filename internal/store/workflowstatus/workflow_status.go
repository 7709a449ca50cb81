package workflowstatus

import (
	"errors"

	"gorm.io/gorm"

	"github.com/chrisjgf/ez-stablecoin/internal/model"
)

type Store struct {
}

func New() IStore {
	return &Store{}
}

// Get returns the canonical status row, creating a zeroed one on first
// access. A single row holds the only in-flight workflow.
func (s *Store) Get(tx *gorm.DB) (*model.WorkflowStatus, error) {
	var status model.WorkflowStatus
	err := tx.Order("id asc").First(&status).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			status = model.WorkflowStatus{}
			if err := tx.Create(&status).Error; err != nil {
				return nil, err
			}
			return &status, nil
		}
		return nil, err
	}
	return &status, nil
}

// Merge overlays the non-nil fields of update onto the stored record and
// returns the merged result. An empty update is a no-op read. Callers
// run the read-modify-write inside one transaction so concurrent merges
// cannot drop each other's fields.
func (s *Store) Merge(tx *gorm.DB, update model.StatusUpdate) (*model.WorkflowStatus, error) {
	status, err := s.Get(tx)
	if err != nil {
		return nil, err
	}

	if update.IsEmpty() {
		return status, nil
	}

	update.ApplyTo(status)
	if err := tx.Save(status).Error; err != nil {
		return nil, err
	}
	return status, nil
}

// Reset zeroes every field of the stored record, keeping the row itself.
// Used when a brand-new deposit amount starts a fresh workflow.
func (s *Store) Reset(tx *gorm.DB) (*model.WorkflowStatus, error) {
	status, err := s.Get(tx)
	if err != nil {
		return nil, err
	}

	status.Gbp = 0
	status.GbpKraken = 0
	status.UsdcKraken = 0
	status.UsdcOp = 0
	status.UsdcBridged = 0
	status.UsdcBase = 0
	status.Address = ""

	if err := tx.Save(status).Error; err != nil {
		return nil, err
	}
	return status, nil
}
