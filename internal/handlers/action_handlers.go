package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rmitchellscott/mediamaster/internal/actions"
	"github.com/rmitchellscott/mediamaster/internal/database"
)

// actionTarget parses the instance id path parameter.
func actionTarget(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Instance not found"})
		return uuid.Nil, false
	}
	return id, true
}

// actionError maps runner failures onto the API's error taxonomy. Completed
// sibling calls of a failed batch are not rolled back.
func actionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, database.ErrInstanceNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Instance not found"})
	case errors.Is(err, actions.ErrInstanceDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Instance is disabled"})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": "Bulk action failed", "detail": err.Error()})
	}
}

// BulkMonitorHandler flips the monitored flag on a set of items
func BulkMonitorHandler(c *gin.Context) {
	id, ok := actionTarget(c)
	if !ok {
		return
	}

	var req struct {
		IDs       []int64 `json:"ids" binding:"required,min=1"`
		Monitored *bool   `json:"monitored" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindingError(err))
		return
	}

	runner := actions.NewRunner(database.GetDB())
	if err := runner.SetMonitored(c.Request.Context(), id, req.IDs, *req.Monitored); err != nil {
		actionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": len(req.IDs)})
}

// BulkQualityProfileHandler assigns a quality profile to a set of items
func BulkQualityProfileHandler(c *gin.Context) {
	id, ok := actionTarget(c)
	if !ok {
		return
	}

	var req struct {
		IDs              []int64 `json:"ids" binding:"required,min=1"`
		QualityProfileID int64   `json:"quality_profile_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindingError(err))
		return
	}

	runner := actions.NewRunner(database.GetDB())
	if err := runner.SetQualityProfile(c.Request.Context(), id, req.IDs, req.QualityProfileID); err != nil {
		actionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": len(req.IDs)})
}

// BulkDeleteHandler removes a set of items from the instance
func BulkDeleteHandler(c *gin.Context) {
	id, ok := actionTarget(c)
	if !ok {
		return
	}

	var req struct {
		IDs         []int64 `json:"ids" binding:"required,min=1"`
		DeleteFiles bool    `json:"delete_files"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindingError(err))
		return
	}

	runner := actions.NewRunner(database.GetDB())
	if err := runner.Delete(c.Request.Context(), id, req.IDs, req.DeleteFiles); err != nil {
		actionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": len(req.IDs)})
}

// BulkMoveHandler re-roots a set of items to a new root folder
func BulkMoveHandler(c *gin.Context) {
	id, ok := actionTarget(c)
	if !ok {
		return
	}

	var req struct {
		IDs            []int64 `json:"ids" binding:"required,min=1"`
		RootFolderPath string  `json:"root_folder_path" binding:"required"`
		MoveFiles      bool    `json:"move_files"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindingError(err))
		return
	}

	runner := actions.NewRunner(database.GetDB())
	if err := runner.Move(c.Request.Context(), id, req.IDs, req.RootFolderPath, req.MoveFiles); err != nil {
		actionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"moved": len(req.IDs)})
}
