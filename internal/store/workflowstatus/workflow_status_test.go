package workflowstatus

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/chrisjgf/ez-stablecoin/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.WorkflowStatus{}))
	return db
}

func TestGet_CreatesSingletonRow(t *testing.T) {
	db := newTestDB(t)
	s := New()

	status, err := s.Get(db)
	require.NoError(t, err)
	assert.Equal(t, 0.0, status.Gbp)

	// a second Get must return the same row, not create another
	again, err := s.Get(db)
	require.NoError(t, err)
	assert.Equal(t, status.ID, again.ID)

	var count int64
	require.NoError(t, db.Model(&model.WorkflowStatus{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestMerge_OverlaysOnlySuppliedFields(t *testing.T) {
	db := newTestDB(t)
	s := New()

	_, err := s.Merge(db, model.StatusUpdate{
		Gbp:       model.Float64Ptr(1000),
		GbpKraken: model.Float64Ptr(1000),
	})
	require.NoError(t, err)

	status, err := s.Merge(db, model.StatusUpdate{UsdcKraken: model.Float64Ptr(1237.5)})
	require.NoError(t, err)

	assert.Equal(t, 1000.0, status.Gbp)
	assert.Equal(t, 1000.0, status.GbpKraken)
	assert.Equal(t, 1237.5, status.UsdcKraken)
}

func TestMerge_EmptyUpdateIsReadOnly(t *testing.T) {
	db := newTestDB(t)
	s := New()

	_, err := s.Merge(db, model.StatusUpdate{Gbp: model.Float64Ptr(500)})
	require.NoError(t, err)

	status, err := s.Merge(db, model.StatusUpdate{})
	require.NoError(t, err)
	assert.Equal(t, 500.0, status.Gbp)
}

func TestMerge_ExplicitZeroOverwrites(t *testing.T) {
	db := newTestDB(t)
	s := New()

	_, err := s.Merge(db, model.StatusUpdate{UsdcOp: model.Float64Ptr(1237.5)})
	require.NoError(t, err)

	status, err := s.Merge(db, model.StatusUpdate{UsdcOp: model.Float64Ptr(0)})
	require.NoError(t, err)
	assert.Equal(t, 0.0, status.UsdcOp)
}

func TestReset_ZeroesEverything(t *testing.T) {
	db := newTestDB(t)
	s := New()

	addr := "0x2222222222222222222222222222222222222222"
	_, err := s.Merge(db, model.StatusUpdate{
		Gbp:      model.Float64Ptr(1000),
		UsdcBase: model.Float64Ptr(1237.5),
		Address:  &addr,
	})
	require.NoError(t, err)

	status, err := s.Reset(db)
	require.NoError(t, err)
	assert.Equal(t, 0.0, status.Gbp)
	assert.Equal(t, 0.0, status.UsdcBase)
	assert.Empty(t, status.Address)

	// the row itself survives the reset
	var count int64
	require.NoError(t, db.Model(&model.WorkflowStatus{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
