package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/worklog-hq/timesheet_backend/internal/apperrors"
	portssvc "github.com/worklog-hq/timesheet_backend/internal/core/ports/services"
	"github.com/worklog-hq/timesheet_backend/internal/middleware"
)

// directoryHandler serves read-only user and project lookups so reviewer
// and project names can be resolved alongside approval records.
type directoryHandler struct {
	users    portssvc.UserDirectory
	projects portssvc.ProjectDirectory
}

func newDirectoryHandler(users portssvc.UserDirectory, projects portssvc.ProjectDirectory) *directoryHandler {
	return &directoryHandler{users: users, projects: projects}
}

// registerDirectoryRoutes registers the directory lookup routes.
func registerDirectoryRoutes(rg *gin.RouterGroup, users portssvc.UserDirectory, projects portssvc.ProjectDirectory) {
	h := newDirectoryHandler(users, projects)

	rg.GET("/users/:userID", h.getUser)
	rg.GET("/projects/:projectID", h.getProject)
}

func (h *directoryHandler) getUser(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID := c.Param("userID")

	ref, err := h.users.GetUserRef(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		} else {
			logger.Error("Failed to get user", slog.String("error", err.Error()), slog.String("user_id", userID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve user"})
		}
		return
	}

	c.JSON(http.StatusOK, ref)
}

func (h *directoryHandler) getProject(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	projectID := c.Param("projectID")

	ref, err := h.projects.GetProjectRef(c.Request.Context(), projectID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		} else {
			logger.Error("Failed to get project", slog.String("error", err.Error()), slog.String("project_id", projectID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project"})
		}
		return
	}

	c.JSON(http.StatusOK, ref)
}
