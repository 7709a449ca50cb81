package status

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/chrisjgf/ez-stablecoin/internal/model"
	"github.com/chrisjgf/ez-stablecoin/internal/monitoring"
	"github.com/chrisjgf/ez-stablecoin/internal/store"
	"github.com/chrisjgf/ez-stablecoin/internal/utils/logger"
	"github.com/chrisjgf/ez-stablecoin/internal/view"
)

type handler struct {
	db       *gorm.DB
	store    *store.Store
	logger   *logger.Logger
	recorder *monitoring.BusinessMetricsRecorder
}

func New(db *gorm.DB, store *store.Store, logger *logger.Logger, recorder *monitoring.BusinessMetricsRecorder) IHandler {
	return &handler{
		db:       db,
		store:    store,
		logger:   logger,
		recorder: recorder,
	}
}

// Get godoc
// @Summary Get workflow status
// @Description Returns the current workflow status record
// @Tags status
// @Accept json
// @Produce json
// @Success 200 {object} view.Response[model.WorkflowStatus]
// @Failure 500 {object} view.ErrorResponse
// @Router /api/v1/status [get]
func (h *handler) Get(c *gin.Context) {
	start := time.Now()

	status, err := h.store.WorkflowStatus.Get(h.db)
	if err != nil {
		h.logger.Error("[Get][WorkflowStatus.Get] failed to load status", map[string]string{
			"error": err.Error(),
		})
		h.recorder.RecordStatusRead("error", time.Since(start).Seconds())
		c.JSON(http.StatusInternalServerError, view.CreateResponse[any](nil, err, "", "failed to load status"))
		return
	}

	h.recorder.RecordStatusRead("success", time.Since(start).Seconds())
	c.JSON(http.StatusOK, view.CreateResponse(status, nil, "", ""))
}

// Merge godoc
// @Summary Merge workflow status fields
// @Description Overlays the supplied fields onto the stored status. Omitted fields are untouched; an empty body is a no-op.
// @Tags status
// @Accept json
// @Produce json
// @Param update body model.StatusUpdate true "fields to merge"
// @Success 200 {object} view.Response[model.WorkflowStatus]
// @Failure 400 {object} view.ErrorResponse
// @Failure 500 {object} view.ErrorResponse
// @Router /api/v1/status [post]
func (h *handler) Merge(c *gin.Context) {
	start := time.Now()

	var update model.StatusUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		h.logger.Error("[Merge][ShouldBindJSON] invalid body", map[string]string{
			"error": err.Error(),
		})
		c.JSON(http.StatusBadRequest, view.CreateResponse[any](nil, err, "", "invalid request body"))
		return
	}

	if err := validateUpdate(update); err != nil {
		c.JSON(http.StatusBadRequest, view.CreateResponse[any](nil, err, "", "invalid request body"))
		return
	}

	var status *model.WorkflowStatus
	err := store.DoInTx(h.db, func(tx *gorm.DB) error {
		var err error
		status, err = h.store.WorkflowStatus.Merge(tx, update)
		return err
	})
	if err != nil {
		h.logger.Error("[Merge][WorkflowStatus.Merge] failed to merge status", map[string]string{
			"error": err.Error(),
		})
		h.recorder.RecordStatusMerge("error", time.Since(start).Seconds())
		c.JSON(http.StatusInternalServerError, view.CreateResponse[any](nil, err, "", "failed to merge status"))
		return
	}

	h.recorder.RecordStatusMerge("success", time.Since(start).Seconds())
	c.JSON(http.StatusOK, view.CreateResponse(status, nil, "", ""))
}

// Reset godoc
// @Summary Reset workflow status
// @Description Zeroes every numeric field and clears the address
// @Tags status
// @Accept json
// @Produce json
// @Success 200 {object} view.Response[model.WorkflowStatus]
// @Failure 500 {object} view.ErrorResponse
// @Router /api/v1/status/reset [post]
func (h *handler) Reset(c *gin.Context) {
	start := time.Now()

	var status *model.WorkflowStatus
	err := store.DoInTx(h.db, func(tx *gorm.DB) error {
		var err error
		status, err = h.store.WorkflowStatus.Reset(tx)
		return err
	})
	if err != nil {
		h.logger.Error("[Reset][WorkflowStatus.Reset] failed to reset status", map[string]string{
			"error": err.Error(),
		})
		h.recorder.RecordStatusReset("error", time.Since(start).Seconds())
		c.JSON(http.StatusInternalServerError, view.CreateResponse[any](nil, err, "", "failed to reset status"))
		return
	}

	h.recorder.RecordStatusReset("success", time.Since(start).Seconds())
	c.JSON(http.StatusOK, view.CreateResponse(status, nil, "", ""))
}
