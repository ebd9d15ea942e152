package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rmitchellscott/mediamaster/internal/database"
)

// GetSettingsHandler returns all stored settings
func GetSettingsHandler(c *gin.Context) {
	db := database.GetDB()
	settingService := database.NewSettingService(db)

	settings, err := settingService.GetAllSettings()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch settings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

// GetSettingHandler returns one setting by key
func GetSettingHandler(c *gin.Context) {
	db := database.GetDB()
	settingService := database.NewSettingService(db)

	setting, err := settingService.GetSetting(c.Param("key"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Setting not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"setting": setting})
}

// UpsertSettingHandler stores an arbitrary JSON value under a key. The raw
// body is the value; it only has to be valid JSON.
func UpsertSettingHandler(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}

	db := database.GetDB()
	settingService := database.NewSettingService(db)

	setting, err := settingService.UpsertSetting(c.Param("key"), json.RawMessage(body))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"setting": setting})
}
