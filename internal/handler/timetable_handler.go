package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/faisalalharbi2050/motabea-scheduling-api/internal/dto"
	"github.com/faisalalharbi2050/motabea-scheduling-api/internal/service"
	appErrors "github.com/faisalalharbi2050/motabea-scheduling-api/pkg/errors"
	"github.com/faisalalharbi2050/motabea-scheduling-api/pkg/response"
)

// TimetableHandler manages timetable board, transfer and history endpoints.
type TimetableHandler struct {
	service *service.TimetableService
	exports *service.ExportService
}

// NewTimetableHandler constructs handler.
func NewTimetableHandler(svc *service.TimetableService, exports *service.ExportService) *TimetableHandler {
	return &TimetableHandler{service: svc, exports: exports}
}

// Board godoc
// @Summary Render the weekly timetable board
// @Tags Timetable
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /timetable/board [get]
func (h *TimetableHandler) Board(c *gin.Context) {
	board, err := h.service.Board(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, board)
}

// RequestTransfer godoc
// @Summary Request a session transfer to a new teacher and slot
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body dto.TransferRequest true "Transfer request"
// @Success 200 {object} response.Envelope
// @Router /timetable/transfers [post]
func (h *TimetableHandler) RequestTransfer(c *gin.Context) {
	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid transfer payload"))
		return
	}
	result, err := h.service.RequestTransfer(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// ConfirmTransfer godoc
// @Summary Confirm the transfer awaiting conflict review
// @Tags Timetable
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /timetable/transfers/confirm [post]
func (h *TimetableHandler) ConfirmTransfer(c *gin.Context) {
	result, err := h.service.ConfirmTransfer(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// DeclineTransfer godoc
// @Summary Decline the transfer awaiting conflict review
// @Tags Timetable
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /timetable/transfers/decline [post]
func (h *TimetableHandler) DeclineTransfer(c *gin.Context) {
	result, err := h.service.DeclineTransfer(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Regenerate godoc
// @Summary Rebuild a class week from subject loads
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body dto.RegenerateRequest true "Class and subject loads"
// @Success 200 {object} response.Envelope
// @Router /timetable/regenerate [post]
func (h *TimetableHandler) Regenerate(c *gin.Context) {
	var req dto.RegenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid regeneration payload"))
		return
	}
	result, err := h.service.Regenerate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, actorMeta(c))
}

// Undo godoc
// @Summary Restore the timetable captured before the last regeneration
// @Tags Timetable
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /timetable/undo [post]
func (h *TimetableHandler) Undo(c *gin.Context) {
	result, err := h.service.Undo(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, actorMeta(c))
}

// History godoc
// @Summary List transfer operation records, newest first
// @Tags Timetable
// @Produce json
// @Param limit query int false "Maximum records"
// @Success 200 {object} response.Envelope
// @Router /timetable/history [get]
func (h *TimetableHandler) History(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	records, err := h.service.History(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records)
}

// ClearHistory godoc
// @Summary Clear the transfer operation log
// @Tags Timetable
// @Success 204
// @Router /timetable/history [delete]
func (h *TimetableHandler) ClearHistory(c *gin.Context) {
	if err := h.service.ClearHistory(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ExportCSV godoc
// @Summary Export the timetable board as CSV
// @Tags Timetable
// @Produce text/csv
// @Success 200 {file} file
// @Router /timetable/export/csv [get]
func (h *TimetableHandler) ExportCSV(c *gin.Context) {
	board, err := h.service.Board(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	payload, filename, err := h.exports.TimetableCSV(board)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=\""+filename+"\"")
	c.Data(http.StatusOK, "text/csv", payload)
}

// ExportPDF godoc
// @Summary Export the timetable board as PDF
// @Tags Timetable
// @Produce application/pdf
// @Success 200 {file} file
// @Router /timetable/export/pdf [get]
func (h *TimetableHandler) ExportPDF(c *gin.Context) {
	board, err := h.service.Board(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	payload, filename, err := h.exports.TimetablePDF(board)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=\""+filename+"\"")
	c.Data(http.StatusOK, "application/pdf", payload)
}
