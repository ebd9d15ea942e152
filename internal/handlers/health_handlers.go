package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rmitchellscott/mediamaster/internal/version"
)

// HealthHandler returns the latest connection test result per instance,
// as collected by the health poller.
func HealthHandler(c *gin.Context) {
	if healthPoller == nil {
		c.JSON(http.StatusOK, gin.H{
			"version":   version.String(),
			"instances": []any{},
		})
		return
	}

	snapshot := healthPoller.Snapshot()
	if len(snapshot) == 0 {
		// Nothing polled yet; run one cycle so the first call after boot
		// still answers with data.
		if err := healthPoller.CheckNow(c.Request.Context()); err == nil {
			snapshot = healthPoller.Snapshot()
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"version":   version.String(),
		"instances": snapshot,
	})
}
