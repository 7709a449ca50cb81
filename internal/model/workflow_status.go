package model

import (
	"gorm.io/gorm"
)

// WorkflowStatus is the single persisted progress record of an in-flight
// run. Each field is the amount confirmed at one pipeline stage; a later
// field turning positive means every earlier field is final.
type WorkflowStatus struct {
	gorm.Model
	Gbp         float64 `json:"gbp" gorm:"column:gbp;default:0"`
	GbpKraken   float64 `json:"gbpKraken" gorm:"column:gbp_kraken;default:0"`
	UsdcKraken  float64 `json:"usdcKraken" gorm:"column:usdc_kraken;default:0"`
	UsdcOp      float64 `json:"usdcOp" gorm:"column:usdc_op;default:0"`
	UsdcBridged float64 `json:"usdcBridged" gorm:"column:usdc_bridged;default:0"`
	UsdcBase    float64 `json:"usdcBase" gorm:"column:usdc_base;default:0"`
	Address     string  `json:"address,omitempty" gorm:"column:address;type:varchar(255)"`
}

func (WorkflowStatus) TableName() string {
	return "workflow_statuses"
}

// StatusUpdate is a partial WorkflowStatus. Nil fields are left untouched
// by a merge; zero values are written explicitly, which is how a fresh
// run resets the downstream fields.
type StatusUpdate struct {
	Gbp         *float64 `json:"gbp,omitempty" validate:"omitempty,gte=0"`
	GbpKraken   *float64 `json:"gbpKraken,omitempty" validate:"omitempty,gte=0"`
	UsdcKraken  *float64 `json:"usdcKraken,omitempty" validate:"omitempty,gte=0"`
	UsdcOp      *float64 `json:"usdcOp,omitempty" validate:"omitempty,gte=0"`
	UsdcBridged *float64 `json:"usdcBridged,omitempty" validate:"omitempty,gte=0"`
	UsdcBase    *float64 `json:"usdcBase,omitempty" validate:"omitempty,gte=0"`
	Address     *string  `json:"address,omitempty" validate:"omitempty,eth_addr"`
}

// ApplyTo overlays the non-nil fields of the update onto status.
func (u StatusUpdate) ApplyTo(status *WorkflowStatus) {
	if u.Gbp != nil {
		status.Gbp = *u.Gbp
	}
	if u.GbpKraken != nil {
		status.GbpKraken = *u.GbpKraken
	}
	if u.UsdcKraken != nil {
		status.UsdcKraken = *u.UsdcKraken
	}
	if u.UsdcOp != nil {
		status.UsdcOp = *u.UsdcOp
	}
	if u.UsdcBridged != nil {
		status.UsdcBridged = *u.UsdcBridged
	}
	if u.UsdcBase != nil {
		status.UsdcBase = *u.UsdcBase
	}
	if u.Address != nil {
		status.Address = *u.Address
	}
}

// IsEmpty reports whether the update carries no fields at all.
func (u StatusUpdate) IsEmpty() bool {
	return u.Gbp == nil && u.GbpKraken == nil && u.UsdcKraken == nil &&
		u.UsdcOp == nil && u.UsdcBridged == nil && u.UsdcBase == nil && u.Address == nil
}

// Float64Ptr is a convenience for building StatusUpdate literals.
func Float64Ptr(v float64) *float64 {
	return &v
}
