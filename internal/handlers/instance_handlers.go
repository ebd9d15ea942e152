package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rmitchellscott/mediamaster/internal/config"
	"github.com/rmitchellscott/mediamaster/internal/database"
	"github.com/rmitchellscott/mediamaster/internal/logging"
	"github.com/rmitchellscott/mediamaster/internal/upstream"
)

// GetInstancesHandler returns all configured instances
func GetInstancesHandler(c *gin.Context) {
	db := database.GetDB()
	instanceService := database.NewInstanceService(db)

	instances, err := instanceService.GetAllInstances()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch instances"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"instances": instances})
}

// CreateInstanceHandler registers a new upstream instance
func CreateInstanceHandler(c *gin.Context) {
	var req struct {
		Name    string `json:"name" binding:"required"`
		Type    string `json:"type" binding:"required,oneof=sonarr radarr plex"`
		URL     string `json:"url" binding:"required"`
		APIKey  string `json:"api_key" binding:"required"`
		Enabled *bool  `json:"enabled"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindingError(err))
		return
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	db := database.GetDB()
	instanceService := database.NewInstanceService(db)

	instance, err := instanceService.CreateInstance(req.Name, req.Type, req.URL, req.APIKey, enabled)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	logging.InfoWithComponent(logging.ComponentInstances, "Instance created",
		"name", instance.Name, "type", instance.Type)
	c.JSON(http.StatusCreated, gin.H{"instance": instance})
}

// GetInstanceHandler returns a single instance by id
func GetInstanceHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Instance not found"})
		return
	}

	db := database.GetDB()
	instanceService := database.NewInstanceService(db)

	instance, err := instanceService.GetInstanceByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Instance not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"instance": instance})
}

// UpdateInstanceHandler updates an instance. The type field is immutable
// and absent from the accepted payload.
func UpdateInstanceHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Instance not found"})
		return
	}

	var req struct {
		Name    *string `json:"name"`
		URL     *string `json:"url"`
		APIKey  *string `json:"api_key"`
		Enabled *bool   `json:"enabled"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindingError(err))
		return
	}

	db := database.GetDB()
	instanceService := database.NewInstanceService(db)

	instance, err := instanceService.UpdateInstance(id, database.InstanceUpdate{
		Name:    req.Name,
		URL:     req.URL,
		APIKey:  req.APIKey,
		Enabled: req.Enabled,
	})
	if err != nil {
		if errors.Is(err, database.ErrInstanceNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Instance not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"instance": instance})
}

// DeleteInstanceHandler removes an instance
func DeleteInstanceHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Instance not found"})
		return
	}

	db := database.GetDB()
	instanceService := database.NewInstanceService(db)

	if err := instanceService.DeleteInstance(id); err != nil {
		if errors.Is(err, database.ErrInstanceNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Instance not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete instance"})
		return
	}

	logging.InfoWithComponent(logging.ComponentInstances, "Instance deleted", "id", id)
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// TestConnectionHandler probes a candidate configuration without storing it
func TestConnectionHandler(c *gin.Context) {
	var req struct {
		Type   string `json:"type" binding:"required,oneof=sonarr radarr plex"`
		URL    string `json:"url" binding:"required"`
		APIKey string `json:"api_key" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindingError(err))
		return
	}

	timeout := config.GetDuration("TEST_TIMEOUT", 10*time.Second)
	result := upstream.TestConnection(c.Request.Context(), req.Type, req.URL, req.APIKey, timeout)
	c.JSON(http.StatusOK, gin.H{"result": result})
}

// TestInstanceHandler probes a stored instance with its stored credential
func TestInstanceHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Instance not found"})
		return
	}

	db := database.GetDB()
	instanceService := database.NewInstanceService(db)

	instance, err := instanceService.GetInstanceByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Instance not found"})
		return
	}

	timeout := config.GetDuration("TEST_TIMEOUT", 10*time.Second)
	result := upstream.TestConnection(c.Request.Context(), instance.Type, instance.URL, instance.APIKey, timeout)
	c.JSON(http.StatusOK, gin.H{"result": result})
}
