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

// approvalHandler handles HTTP requests against the approval ledger.
type approvalHandler struct {
	approvalService portssvc.ApprovalSvcFacade
}

func newApprovalHandler(as portssvc.ApprovalSvcFacade) *approvalHandler {
	return &approvalHandler{approvalService: as}
}

// registerApprovalRoutes registers routes related to approval records.
func registerApprovalRoutes(rg *gin.RouterGroup, as portssvc.ApprovalSvcFacade) {
	h := newApprovalHandler(as)

	approvals := rg.Group("/approvals")
	{
		approvals.POST("/:approvalID/decision", h.advanceApproval)
	}
}

func (h *approvalHandler) advanceApproval(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	approvalID := c.Param("approvalID")

	var req dto.AdvanceApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for AdvanceApproval", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	record, err := h.approvalService.AdvanceApproval(c.Request.Context(), approvalID, req, actorID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Approval record not found"})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrConflict), errors.Is(err, apperrors.ErrStateConflict):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to advance approval", slog.String("error", err.Error()), slog.String("approval_id", approvalID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to advance approval"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToApprovalRecordResponse(record))
}
