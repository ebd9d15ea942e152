package database

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rmitchellscott/mediamaster/internal/utils"
	"gorm.io/gorm"
)

// ErrInstanceNotFound is returned when an instance id does not resolve to a record.
var ErrInstanceNotFound = errors.New("instance not found")

// InstanceService handles instance-related database operations
type InstanceService struct {
	db *gorm.DB
}

// NewInstanceService creates a new instance service
func NewInstanceService(db *gorm.DB) *InstanceService {
	return &InstanceService{db: db}
}

// CreateInstance validates and persists a new upstream instance record.
func (is *InstanceService) CreateInstance(name, instanceType, url, apiKey string, enabled bool) (*Instance, error) {
	if !ValidInstanceType(instanceType) {
		return nil, fmt.Errorf("unsupported instance type: %s", instanceType)
	}

	normalized, err := utils.NormalizeBaseURL(url)
	if err != nil {
		return nil, err
	}

	instance := &Instance{
		Name:    name,
		Type:    instanceType,
		URL:     normalized,
		APIKey:  apiKey,
		Enabled: enabled,
	}

	if err := is.db.Create(instance).Error; err != nil {
		return nil, err
	}

	return instance, nil
}

// GetAllInstances returns all configured instances ordered by name
func (is *InstanceService) GetAllInstances() ([]Instance, error) {
	var instances []Instance
	err := is.db.Order("name ASC").Find(&instances).Error
	return instances, err
}

// GetInstanceByID returns an instance by its ID
func (is *InstanceService) GetInstanceByID(id uuid.UUID) (*Instance, error) {
	var instance Instance
	if err := is.db.First(&instance, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInstanceNotFound
		}
		return nil, err
	}
	return &instance, nil
}

// GetInstanceByName returns an instance by its unique name
func (is *InstanceService) GetInstanceByName(name string) (*Instance, error) {
	var instance Instance
	if err := is.db.First(&instance, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInstanceNotFound
		}
		return nil, err
	}
	return &instance, nil
}

// GetEnabledInstancesByType returns all enabled instances of one upstream kind
func (is *InstanceService) GetEnabledInstancesByType(instanceType string) ([]Instance, error) {
	var instances []Instance
	err := is.db.Where("type = ? AND enabled = ?", instanceType, true).Order("name ASC").Find(&instances).Error
	return instances, err
}

// InstanceUpdate carries the mutable fields of an instance. The type is
// immutable after creation and deliberately absent here. A nil field leaves
// the stored value untouched; an empty APIKey keeps the existing credential.
type InstanceUpdate struct {
	Name    *string
	URL     *string
	APIKey  *string
	Enabled *bool
}

// UpdateInstance applies an update to an existing instance and returns the
// refreshed record.
func (is *InstanceService) UpdateInstance(id uuid.UUID, update InstanceUpdate) (*Instance, error) {
	instance, err := is.GetInstanceByID(id)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if update.Name != nil && *update.Name != "" {
		fields["name"] = *update.Name
	}
	if update.URL != nil && *update.URL != "" {
		normalized, err := utils.NormalizeBaseURL(*update.URL)
		if err != nil {
			return nil, err
		}
		fields["url"] = normalized
	}
	if update.APIKey != nil && *update.APIKey != "" {
		fields["api_key"] = *update.APIKey
	}
	if update.Enabled != nil {
		fields["enabled"] = *update.Enabled
	}

	if len(fields) > 0 {
		if err := is.db.Model(instance).Updates(fields).Error; err != nil {
			return nil, err
		}
	}

	return is.GetInstanceByID(id)
}

// DeleteInstance removes an instance by ID
func (is *InstanceService) DeleteInstance(id uuid.UUID) error {
	result := is.db.Delete(&Instance{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInstanceNotFound
	}
	return nil
}
