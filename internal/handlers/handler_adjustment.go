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

// adjustmentHandler handles HTTP requests for billing adjustments.
type adjustmentHandler struct {
	adjustmentService portssvc.AdjustmentSvcFacade
}

func newAdjustmentHandler(as portssvc.AdjustmentSvcFacade) *adjustmentHandler {
	return &adjustmentHandler{adjustmentService: as}
}

// registerAdjustmentRoutes registers routes related to billing adjustments.
// The mutating routes sit behind a rate limiter.
func registerAdjustmentRoutes(rg *gin.RouterGroup, as portssvc.AdjustmentSvcFacade, rateLimit gin.HandlerFunc) {
	h := newAdjustmentHandler(as)

	adjustments := rg.Group("/adjustments")
	{
		adjustments.GET("/:adjustmentID", h.getAdjustment)
		adjustments.GET("/:adjustmentID/history", h.listHistory)

		mutating := adjustments.Group("", rateLimit)
		{
			mutating.POST("", h.createAdjustment)
			mutating.POST("/:adjustmentID/supersede", h.supersedeAdjustment)
			mutating.DELETE("/:adjustmentID", h.deleteAdjustment)
			mutating.POST("/:adjustmentID/restore", h.restoreAdjustment)
		}
	}
}

func (h *adjustmentHandler) createAdjustment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateAdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateAdjustment", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	adj, err := h.adjustmentService.CreateAdjustment(c.Request.Context(), req, actorID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrConflict), errors.Is(err, apperrors.ErrStateConflict):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to create adjustment", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create adjustment"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToAdjustmentResponse(adj))
}

func (h *adjustmentHandler) getAdjustment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	adjustmentID := c.Param("adjustmentID")

	adj, err := h.adjustmentService.GetAdjustmentByID(c.Request.Context(), adjustmentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Adjustment not found"})
		} else {
			logger.Error("Failed to get adjustment", slog.String("error", err.Error()), slog.String("adjustment_id", adjustmentID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve adjustment"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToAdjustmentResponse(adj))
}

func (h *adjustmentHandler) supersedeAdjustment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	adjustmentID := c.Param("adjustmentID")

	var req dto.SupersedeAdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	adj, err := h.adjustmentService.SupersedeAdjustment(c.Request.Context(), adjustmentID, req, actorID)
	if err != nil {
		h.respondMutationError(c, logger, err, "Failed to supersede adjustment", adjustmentID)
		return
	}

	c.JSON(http.StatusCreated, dto.ToAdjustmentResponse(adj))
}

func (h *adjustmentHandler) deleteAdjustment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	adjustmentID := c.Param("adjustmentID")

	actorID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.adjustmentService.SoftDeleteAdjustment(c.Request.Context(), adjustmentID, actorID); err != nil {
		h.respondMutationError(c, logger, err, "Failed to delete adjustment", adjustmentID)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *adjustmentHandler) restoreAdjustment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	adjustmentID := c.Param("adjustmentID")

	actorID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	adj, err := h.adjustmentService.RestoreAdjustment(c.Request.Context(), adjustmentID, actorID)
	if err != nil {
		h.respondMutationError(c, logger, err, "Failed to restore adjustment", adjustmentID)
		return
	}

	c.JSON(http.StatusOK, dto.ToAdjustmentResponse(adj))
}

func (h *adjustmentHandler) listHistory(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	adjustmentID := c.Param("adjustmentID")

	events, err := h.adjustmentService.ListAdjustmentHistory(c.Request.Context(), adjustmentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Adjustment not found"})
		} else {
			logger.Error("Failed to list adjustment history", slog.String("error", err.Error()), slog.String("adjustment_id", adjustmentID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list adjustment history"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToAdjustmentEventResponses(events))
}

// respondMutationError maps the shared error set of the adjustment
// lifecycle endpoints.
func (h *adjustmentHandler) respondMutationError(c *gin.Context, logger *slog.Logger, err error, fallback, adjustmentID string) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Adjustment not found"})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrConflict), errors.Is(err, apperrors.ErrStateConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logger.Error(fallback, slog.String("error", err.Error()), slog.String("adjustment_id", adjustmentID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
