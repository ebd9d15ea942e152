package database

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingService handles the key-value settings store
type SettingService struct {
	db *gorm.DB
}

// NewSettingService creates a new setting service
func NewSettingService(db *gorm.DB) *SettingService {
	return &SettingService{db: db}
}

// GetAllSettings returns every stored setting
func (ss *SettingService) GetAllSettings() ([]Setting, error) {
	var settings []Setting
	err := ss.db.Order("key ASC").Find(&settings).Error
	return settings, err
}

// GetSetting returns the setting stored under key, or gorm.ErrRecordNotFound
func (ss *SettingService) GetSetting(key string) (*Setting, error) {
	var setting Setting
	if err := ss.db.First(&setting, "key = ?", key).Error; err != nil {
		return nil, err
	}
	return &setting, nil
}

// UpsertSetting stores value (any JSON document) under key, creating or
// replacing as needed.
func (ss *SettingService) UpsertSetting(key string, value json.RawMessage) (*Setting, error) {
	if !json.Valid(value) {
		return nil, fmt.Errorf("setting value for %q is not valid JSON", key)
	}

	setting := Setting{
		Key:       key,
		Value:     datatypes.JSON(value),
		UpdatedAt: time.Now(),
	}

	err := ss.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&setting).Error
	if err != nil {
		return nil, err
	}

	return &setting, nil
}

// GetString decodes the setting under key as a JSON string. Missing keys
// return the empty string.
func (ss *SettingService) GetString(key string) (string, error) {
	setting, err := ss.GetSetting(key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}

	var value string
	if err := json.Unmarshal(setting.Value, &value); err != nil {
		return "", fmt.Errorf("setting %q is not a JSON string: %w", key, err)
	}
	return value, nil
}

// GetStringSlice decodes the setting under key as a JSON array of strings.
// Missing keys return an empty slice.
func (ss *SettingService) GetStringSlice(key string) ([]string, error) {
	setting, err := ss.GetSetting(key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var values []string
	if err := json.Unmarshal(setting.Value, &values); err != nil {
		return nil, fmt.Errorf("setting %q is not a JSON string array: %w", key, err)
	}
	return values, nil
}
