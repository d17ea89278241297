package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/worklog-hq/timesheet_backend/internal/apperrors"
	portssvc "github.com/worklog-hq/timesheet_backend/internal/core/ports/services"
	"github.com/worklog-hq/timesheet_backend/internal/dto"
	"github.com/worklog-hq/timesheet_backend/internal/middleware"
)

// timesheetHandler handles HTTP requests related to timesheets and their
// time entries.
type timesheetHandler struct {
	timesheetService portssvc.TimesheetSvcFacade
	approvalService  portssvc.ApprovalSvcFacade
}

func newTimesheetHandler(ts portssvc.TimesheetSvcFacade, as portssvc.ApprovalSvcFacade) *timesheetHandler {
	return &timesheetHandler{
		timesheetService: ts,
		approvalService:  as,
	}
}

// registerTimesheetRoutes registers routes related to timesheets.
func registerTimesheetRoutes(rg *gin.RouterGroup, ts portssvc.TimesheetSvcFacade, as portssvc.ApprovalSvcFacade) {
	h := newTimesheetHandler(ts, as)

	timesheets := rg.Group("/timesheets")
	{
		timesheets.POST("", h.createTimesheet)
		timesheets.GET("", h.listTimesheets)
		timesheets.GET("/:timesheetID", h.getTimesheet)
		timesheets.DELETE("/:timesheetID", h.deleteTimesheet)

		timesheets.POST("/:timesheetID/entries", h.addTimeEntry)
		timesheets.PUT("/:timesheetID/entries/:entryID", h.updateTimeEntry)
		timesheets.DELETE("/:timesheetID/entries/:entryID", h.removeTimeEntry)

		timesheets.POST("/:timesheetID/submit", h.submitTimesheet)
		timesheets.POST("/:timesheetID/freeze", h.freezeTimesheet)
		timesheets.POST("/:timesheetID/mark-billed", h.markBilled)

		timesheets.GET("/:timesheetID/approvals", h.listApprovals)
		timesheets.POST("/:timesheetID/approvals/reconcile", h.reconcileApprovals)
	}
}

func (h *timesheetHandler) createTimesheet(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateTimesheetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateTimesheet", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	ts, err := h.timesheetService.CreateTimesheet(c.Request.Context(), req, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to create timesheet", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create timesheet"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToTimesheetResponse(ts))
}

func (h *timesheetHandler) listTimesheets(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var params dto.ListTimesheetsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.timesheetService.ListTimesheetsByUser(c.Request.Context(), userID, params)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to list timesheets", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list timesheets"})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *timesheetHandler) getTimesheet(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	timesheetID := c.Param("timesheetID")

	ts, err := h.timesheetService.GetTimesheetByID(c.Request.Context(), timesheetID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Timesheet not found"})
		} else {
			logger.Error("Failed to get timesheet", slog.String("error", err.Error()), slog.String("timesheet_id", timesheetID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve timesheet"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToTimesheetResponse(ts))
}

func (h *timesheetHandler) deleteTimesheet(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	timesheetID := c.Param("timesheetID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	err := h.timesheetService.SoftDeleteTimesheet(c.Request.Context(), timesheetID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Timesheet not found"})
		} else if errors.Is(err, apperrors.ErrForbidden) {
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrStateConflict) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to delete timesheet", slog.String("error", err.Error()), slog.String("timesheet_id", timesheetID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete timesheet"})
		}
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *timesheetHandler) addTimeEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	timesheetID := c.Param("timesheetID")

	var req dto.CreateTimeEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	entry, err := h.timesheetService.AddTimeEntry(c.Request.Context(), timesheetID, req, userID)
	if err != nil {
		h.respondEntryError(c, logger, err, "Failed to add time entry")
		return
	}

	c.JSON(http.StatusCreated, dto.ToTimeEntryResponse(entry))
}

func (h *timesheetHandler) updateTimeEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	timesheetID := c.Param("timesheetID")
	entryID := c.Param("entryID")

	var req dto.UpdateTimeEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	entry, err := h.timesheetService.UpdateTimeEntry(c.Request.Context(), timesheetID, entryID, req, userID)
	if err != nil {
		h.respondEntryError(c, logger, err, "Failed to update time entry")
		return
	}

	c.JSON(http.StatusOK, dto.ToTimeEntryResponse(entry))
}

func (h *timesheetHandler) removeTimeEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	timesheetID := c.Param("timesheetID")
	entryID := c.Param("entryID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.timesheetService.RemoveTimeEntry(c.Request.Context(), timesheetID, entryID, userID); err != nil {
		h.respondEntryError(c, logger, err, "Failed to remove time entry")
		return
	}

	c.Status(http.StatusNoContent)
}

// respondEntryError maps the shared error set of the entry mutation endpoints.
func (h *timesheetHandler) respondEntryError(c *gin.Context, logger *slog.Logger, err error, fallback string) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrStateConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Error(fallback, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

func (h *timesheetHandler) submitTimesheet(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	timesheetID := c.Param("timesheetID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	ts, err := h.timesheetService.SubmitTimesheet(c.Request.Context(), timesheetID, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Timesheet not found"})
		case errors.Is(err, apperrors.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrStateConflict):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to submit timesheet", slog.String("error", err.Error()), slog.String("timesheet_id", timesheetID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit timesheet"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToTimesheetResponse(ts))
}

func (h *timesheetHandler) freezeTimesheet(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	timesheetID := c.Param("timesheetID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	ts, err := h.timesheetService.FreezeIfEligible(c.Request.Context(), timesheetID, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Timesheet not found"})
		case errors.Is(err, apperrors.ErrMissingApproval):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrStateConflict):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to freeze timesheet", slog.String("error", err.Error()), slog.String("timesheet_id", timesheetID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to freeze timesheet"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToTimesheetResponse(ts))
}

func (h *timesheetHandler) markBilled(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	timesheetID := c.Param("timesheetID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	ts, err := h.timesheetService.MarkBilled(c.Request.Context(), timesheetID, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Timesheet not found"})
		case errors.Is(err, apperrors.ErrStateConflict):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to mark timesheet billed", slog.String("error", err.Error()), slog.String("timesheet_id", timesheetID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark timesheet billed"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToTimesheetResponse(ts))
}

func (h *timesheetHandler) listApprovals(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	timesheetID := c.Param("timesheetID")

	records, err := h.approvalService.ListApprovals(c.Request.Context(), timesheetID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Timesheet not found"})
		} else {
			logger.Error("Failed to list approvals", slog.String("error", err.Error()), slog.String("timesheet_id", timesheetID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list approvals"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToApprovalRecordResponses(records))
}

func (h *timesheetHandler) reconcileApprovals(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	timesheetID := c.Param("timesheetID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	records, err := h.approvalService.ReconcileMissingApprovalRecords(c.Request.Context(), timesheetID, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Timesheet not found"})
		case errors.Is(err, apperrors.ErrStateConflict):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to reconcile approvals", slog.String("error", err.Error()), slog.String("timesheet_id", timesheetID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reconcile approvals"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToApprovalRecordResponses(records))
}
