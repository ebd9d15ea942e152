// Package handlers implements the dashboard's REST API on top of the
// database services, the report engine, and the bulk action runner.
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/rmitchellscott/mediamaster/internal/config"
	"github.com/rmitchellscott/mediamaster/internal/pollers"
	"github.com/rmitchellscott/mediamaster/internal/version"
)

var healthPoller *pollers.HealthPoller

// SetHealthPoller wires the running health poller into the health endpoint.
func SetHealthPoller(p *pollers.HealthPoller) {
	healthPoller = p
}

// bindingError turns a ShouldBindJSON failure into a 400 payload. Validator
// failures list the offending fields; anything else surfaces as-is.
func bindingError(err error) gin.H {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		details := make([]string, 0, len(validationErrs))
		for _, fieldErr := range validationErrs {
			details = append(details, fmt.Sprintf("%s failed on %s", fieldErr.Field(), fieldErr.Tag()))
		}
		return gin.H{"error": "validation failed", "details": strings.Join(details, "; ")}
	}
	return gin.H{"error": err.Error()}
}

// ConfigHandler returns the non-secret runtime configuration a frontend
// needs at startup.
func ConfigHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version":              version.String(),
		"health_poll_interval": config.Get("HEALTH_POLL_INTERVAL", "30s"),
		"database_type":        config.Get("DB_TYPE", "sqlite"),
	})
}

// VersionHandler returns the build information.
func VersionHandler(c *gin.Context) {
	c.JSON(http.StatusOK, version.Get())
}
