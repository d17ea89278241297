package handlers

import (
	"github.com/gin-gonic/gin"

	portssvc "github.com/worklog-hq/timesheet_backend/internal/core/ports/services"
	"github.com/worklog-hq/timesheet_backend/internal/middleware"
	"github.com/worklog-hq/timesheet_backend/internal/platform/config"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	users portssvc.UserDirectory,
	projects portssvc.ProjectDirectory,
	adjustmentRateLimit gin.HandlerFunc,
) {
	registerHomeRoutes(r)

	// Apply AuthMiddleware to the entire v1 group
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret))

	registerTimesheetRoutes(v1, services.Timesheet, services.Approval)
	registerApprovalRoutes(v1, services.Approval)
	registerBillingRoutes(v1, services.Billing)
	registerAdjustmentRoutes(v1, services.Adjustment, adjustmentRateLimit)
	registerDirectoryRoutes(v1, users, projects)
}
