package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/faisalalharbi2050/motabea-scheduling-api/internal/dto"
	"github.com/faisalalharbi2050/motabea-scheduling-api/internal/service"
	appErrors "github.com/faisalalharbi2050/motabea-scheduling-api/pkg/errors"
	"github.com/faisalalharbi2050/motabea-scheduling-api/pkg/response"
)

// CoverageHandler manages substitute coverage endpoints.
type CoverageHandler struct {
	service *service.CoverageService
	exports *service.ExportService
}

// NewCoverageHandler constructs handler.
func NewCoverageHandler(svc *service.CoverageService, exports *service.ExportService) *CoverageHandler {
	return &CoverageHandler{service: svc, exports: exports}
}

// Allocate godoc
// @Summary Allocate substitute coverage for a set of vacant periods
// @Tags Coverage
// @Accept json
// @Produce json
// @Param payload body dto.AllocateCoverageRequest true "Vacant periods and strategy"
// @Success 200 {object} response.Envelope
// @Router /coverage/allocations [post]
func (h *CoverageHandler) Allocate(c *gin.Context) {
	var req dto.AllocateCoverageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid allocation payload"))
		return
	}
	result, err := h.service.Allocate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Batch godoc
// @Summary Fetch a pending coverage batch
// @Tags Coverage
// @Produce json
// @Param id path string true "Batch ID"
// @Success 200 {object} response.Envelope
// @Router /coverage/allocations/{id} [get]
func (h *CoverageHandler) Batch(c *gin.Context) {
	batch, err := h.service.Batch(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, batch)
}

// AssignManual godoc
// @Summary Manually assign a period in a pending batch
// @Tags Coverage
// @Accept json
// @Produce json
// @Param payload body dto.ManualAssignmentRequest true "Manual assignment"
// @Success 200 {object} response.Envelope
// @Router /coverage/allocations/assign [post]
func (h *CoverageHandler) AssignManual(c *gin.Context) {
	var req dto.ManualAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid manual assignment payload"))
		return
	}
	assignment, err := h.service.AssignManual(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment)
}

// Hide godoc
// @Summary Toggle visibility of an assignment in a pending batch
// @Tags Coverage
// @Accept json
// @Produce json
// @Param payload body dto.HideAssignmentRequest true "Visibility toggle"
// @Success 204
// @Router /coverage/allocations/hide [post]
func (h *CoverageHandler) Hide(c *gin.Context) {
	var req dto.HideAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid visibility payload"))
		return
	}
	if err := h.service.SetHidden(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Confirm godoc
// @Summary Persist a pending coverage batch
// @Tags Coverage
// @Accept json
// @Produce json
// @Param payload body dto.ConfirmCoverageRequest true "Batch to confirm"
// @Success 200 {object} response.Envelope
// @Router /coverage/allocations/confirm [post]
func (h *CoverageHandler) Confirm(c *gin.Context) {
	var req dto.ConfirmCoverageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid confirmation payload"))
		return
	}
	result, err := h.service.Confirm(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, actorMeta(c))
}

// ExportCSV godoc
// @Summary Export a pending batch as a CSV duty roster
// @Tags Coverage
// @Produce text/csv
// @Param id path string true "Batch ID"
// @Success 200 {file} file
// @Router /coverage/allocations/{id}/export/csv [get]
func (h *CoverageHandler) ExportCSV(c *gin.Context) {
	batch, err := h.service.Batch(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	payload, filename, err := h.exports.DutyRosterCSV(batch)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=\""+filename+"\"")
	c.Data(http.StatusOK, "text/csv", payload)
}

// ExportPDF godoc
// @Summary Export a pending batch as a PDF duty roster
// @Tags Coverage
// @Produce application/pdf
// @Param id path string true "Batch ID"
// @Success 200 {file} file
// @Router /coverage/allocations/{id}/export/pdf [get]
func (h *CoverageHandler) ExportPDF(c *gin.Context) {
	batch, err := h.service.Batch(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	payload, filename, err := h.exports.DutyRosterPDF(batch)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=\""+filename+"\"")
	c.Data(http.StatusOK, "application/pdf", payload)
}
