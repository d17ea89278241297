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

// billingHandler exposes the read-only billing aggregation endpoints.
type billingHandler struct {
	billingService portssvc.BillingSvcFacade
}

func newBillingHandler(bs portssvc.BillingSvcFacade) *billingHandler {
	return &billingHandler{billingService: bs}
}

// registerBillingRoutes registers routes related to billing reconciliation.
func registerBillingRoutes(rg *gin.RouterGroup, bs portssvc.BillingSvcFacade) {
	h := newBillingHandler(bs)

	billing := rg.Group("/billing")
	{
		billing.GET("/aggregate", h.aggregateBilling)
		billing.GET("/effective-hours", h.effectiveBillableHours)
	}
}

func (h *billingHandler) aggregateBilling(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.AggregateBillingParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	start, err := dto.ParseDate(params.Start)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid start date: " + err.Error()})
		return
	}
	end, err := dto.ParseDate(params.End)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid end date: " + err.Error()})
		return
	}

	agg, err := h.billingService.AggregateBilling(c.Request.Context(), start, end)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to aggregate billing", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to aggregate billing"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToBillingAggregateResponse(agg))
}

// effectiveHoursParams identifies one (user, project, period) scope key.
type effectiveHoursParams struct {
	UserID      string `form:"userID" binding:"required"`
	ProjectID   string `form:"projectID" binding:"required"`
	PeriodStart string `form:"periodStart" binding:"required,datetime=2006-01-02"`
	PeriodEnd   string `form:"periodEnd" binding:"required,datetime=2006-01-02"`
}

func (h *billingHandler) effectiveBillableHours(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params effectiveHoursParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	start, err := dto.ParseDate(params.PeriodStart)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid periodStart date: " + err.Error()})
		return
	}
	end, err := dto.ParseDate(params.PeriodEnd)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid periodEnd date: " + err.Error()})
		return
	}

	resp, err := h.billingService.EffectiveBillableHours(c.Request.Context(), params.UserID, params.ProjectID, start, end)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrMissingApproval):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to compute effective billable hours", slog.String("error", err.Error()),
				slog.String("user_id", params.UserID), slog.String("project_id", params.ProjectID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute effective billable hours"})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}
