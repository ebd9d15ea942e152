package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rmitchellscott/mediamaster/internal/database"
	"github.com/rmitchellscott/mediamaster/internal/reports"
)

// reportType validates the ?type= query parameter shared by the
// automation-server reports.
func reportType(c *gin.Context) (string, bool) {
	instanceType := c.Query("type")
	if instanceType != database.InstanceTypeSonarr && instanceType != database.InstanceTypeRadarr {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type must be sonarr or radarr"})
		return "", false
	}
	return instanceType, true
}

// DuplicatesHandler returns titles present on multiple instances
func DuplicatesHandler(c *gin.Context) {
	instanceType, ok := reportType(c)
	if !ok {
		return
	}

	report, err := reports.NewEngine(database.GetDB()).Duplicates(c.Request.Context(), instanceType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build duplicates report"})
		return
	}
	c.JSON(http.StatusOK, report)
}

// CutoffUnmetHandler returns items below their quality cutoff
func CutoffUnmetHandler(c *gin.Context) {
	instanceType, ok := reportType(c)
	if !ok {
		return
	}

	report, err := reports.NewEngine(database.GetDB()).CutoffUnmet(c.Request.Context(), instanceType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build cutoff report"})
		return
	}
	c.JSON(http.StatusOK, report)
}

// CompareHandler joins a Plex catalog against an automation instance
func CompareHandler(c *gin.Context) {
	plexID, err := uuid.Parse(c.Query("plex"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "plex must be an instance id"})
		return
	}
	arrID, err := uuid.Parse(c.Query("arr"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "arr must be an instance id"})
		return
	}

	report, err := reports.NewEngine(database.GetDB()).Compare(c.Request.Context(), plexID, arrID, c.Query("mode"))
	if err != nil {
		if errors.Is(err, database.ErrInstanceNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Instance not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}

// QualityProfilesHandler returns per-instance profile usage
func QualityProfilesHandler(c *gin.Context) {
	instanceType, ok := reportType(c)
	if !ok {
		return
	}

	report, err := reports.NewEngine(database.GetDB()).QualityProfiles(c.Request.Context(), instanceType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build quality profiles report"})
		return
	}
	c.JSON(http.StatusOK, report)
}

// DiskSpaceHandler returns per-instance volume usage
func DiskSpaceHandler(c *gin.Context) {
	instanceType, ok := reportType(c)
	if !ok {
		return
	}

	report, err := reports.NewEngine(database.GetDB()).DiskSpace(c.Request.Context(), instanceType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build disk space report"})
		return
	}
	c.JSON(http.StatusOK, report)
}
