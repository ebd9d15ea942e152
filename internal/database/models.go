package database

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Instance types for upstream servers
const (
	InstanceTypeSonarr = "sonarr"
	InstanceTypeRadarr = "radarr"
	InstanceTypePlex   = "plex"
)

// ValidInstanceType reports whether t names a supported upstream server kind.
func ValidInstanceType(t string) bool {
	switch t {
	case InstanceTypeSonarr, InstanceTypeRadarr, InstanceTypePlex:
		return true
	}
	return false
}

// Instance represents a configured connection to one upstream server.
// Type is immutable after creation; the API key is never serialized.
type Instance struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name    string    `gorm:"uniqueIndex;not null" json:"name"`
	Type    string    `gorm:"size:20;not null;index" json:"type"`
	URL     string    `gorm:"not null" json:"url"`
	APIKey  string    `gorm:"not null" json:"-"` // Never return the credential in JSON
	Enabled bool      `gorm:"default:true" json:"enabled"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate sets UUID if not already set
func (i *Instance) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// Setting represents one key of the JSON key-value settings store
type Setting struct {
	Key       string         `gorm:"primaryKey" json:"key"`
	Value     datatypes.JSON `json:"value"`
	UpdatedAt time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// Well-known setting keys
const (
	SettingExcludedLibraries = "excluded_libraries"
	SettingMetadataAPIKey    = "metadata_api_key"
)

// GetAllModels returns all models for auto-migration
func GetAllModels() []interface{} {
	return []interface{}{
		&Instance{},
		&Setting{},
	}
}
