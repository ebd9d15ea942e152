package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rmitchellscott/mediamaster/internal/database"
	"github.com/rmitchellscott/mediamaster/internal/logging"
	"github.com/rmitchellscott/mediamaster/internal/metadata"
)

// PosterHandler resolves poster artwork for one title via the external
// catalog. Failures answer 404: artwork is decoration, not data.
func PosterHandler(c *gin.Context) {
	mediaType := c.Query("type")
	id, err := strconv.ParseInt(c.Query("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a positive integer"})
		return
	}

	service := metadata.NewService(database.GetDB())
	poster, err := service.Poster(c.Request.Context(), mediaType, id)
	if err != nil {
		logging.DebugWithComponent(logging.ComponentMetadata, "Poster lookup failed",
			"type", mediaType, "id", id, "error", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "No poster found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"poster": poster})
}
