package database

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB opens an isolated in-memory database with the schema applied.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	for _, model := range GetAllModels() {
		if err := db.AutoMigrate(model); err != nil {
			t.Fatalf("failed to migrate %T: %v", model, err)
		}
	}

	return db
}

func TestCreateInstance(t *testing.T) {
	db := openTestDB(t)
	svc := NewInstanceService(db)

	instance, err := svc.CreateInstance("tv", InstanceTypeSonarr, "http://sonarr:8989/", "secret", true)
	if err != nil {
		t.Fatalf("CreateInstance returned error: %v", err)
	}

	if instance.ID == uuid.Nil {
		t.Error("expected a generated ID")
	}
	if instance.URL != "http://sonarr:8989" {
		t.Errorf("expected normalized URL, got %q", instance.URL)
	}

	// The credential must never appear in the serialized record
	data, err := json.Marshal(instance)
	if err != nil {
		t.Fatalf("failed to marshal instance: %v", err)
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("failed to unmarshal instance JSON: %v", err)
	}
	for key := range fields {
		if key == "api_key" || key == "apiKey" {
			t.Errorf("serialized instance leaks credential field %q", key)
		}
	}
}

func TestCreateInstanceRejectsBadInput(t *testing.T) {
	db := openTestDB(t)
	svc := NewInstanceService(db)

	if _, err := svc.CreateInstance("tv", "emby", "http://emby:8096", "secret", true); err == nil {
		t.Error("expected error for unsupported instance type")
	}
	if _, err := svc.CreateInstance("tv", InstanceTypeSonarr, "not-a-url", "secret", true); err == nil {
		t.Error("expected error for invalid URL")
	}
}

func TestDeleteInstance(t *testing.T) {
	db := openTestDB(t)
	svc := NewInstanceService(db)

	if err := svc.DeleteInstance(uuid.New()); !errors.Is(err, ErrInstanceNotFound) {
		t.Errorf("expected ErrInstanceNotFound for unknown id, got %v", err)
	}

	instance, err := svc.CreateInstance("movies", InstanceTypeRadarr, "http://radarr:7878", "secret", true)
	if err != nil {
		t.Fatalf("CreateInstance returned error: %v", err)
	}

	if err := svc.DeleteInstance(instance.ID); err != nil {
		t.Fatalf("DeleteInstance returned error: %v", err)
	}

	if _, err := svc.GetInstanceByID(instance.ID); !errors.Is(err, ErrInstanceNotFound) {
		t.Errorf("expected ErrInstanceNotFound after delete, got %v", err)
	}
}

func TestUpdateInstanceIgnoresType(t *testing.T) {
	db := openTestDB(t)
	svc := NewInstanceService(db)

	instance, err := svc.CreateInstance("movies", InstanceTypeRadarr, "http://radarr:7878", "secret", true)
	if err != nil {
		t.Fatalf("CreateInstance returned error: %v", err)
	}

	name := "movies-4k"
	enabled := false
	updated, err := svc.UpdateInstance(instance.ID, InstanceUpdate{Name: &name, Enabled: &enabled})
	if err != nil {
		t.Fatalf("UpdateInstance returned error: %v", err)
	}

	if updated.Name != "movies-4k" {
		t.Errorf("expected updated name, got %q", updated.Name)
	}
	if updated.Enabled {
		t.Error("expected instance to be disabled")
	}
	if updated.Type != InstanceTypeRadarr {
		t.Errorf("type must be immutable, got %q", updated.Type)
	}
	if updated.APIKey != "secret" {
		t.Error("empty update must keep the stored credential")
	}
}

func TestGetEnabledInstancesByType(t *testing.T) {
	db := openTestDB(t)
	svc := NewInstanceService(db)

	mustCreate := func(name, kind string, enabled bool) {
		t.Helper()
		if _, err := svc.CreateInstance(name, kind, "http://"+name+":1234", "key", enabled); err != nil {
			t.Fatalf("CreateInstance(%s) returned error: %v", name, err)
		}
	}

	mustCreate("tv-a", InstanceTypeSonarr, true)
	mustCreate("tv-b", InstanceTypeSonarr, false)
	mustCreate("movies", InstanceTypeRadarr, true)

	instances, err := svc.GetEnabledInstancesByType(InstanceTypeSonarr)
	if err != nil {
		t.Fatalf("GetEnabledInstancesByType returned error: %v", err)
	}
	if len(instances) != 1 || instances[0].Name != "tv-a" {
		t.Errorf("expected only the enabled sonarr instance, got %+v", instances)
	}
}
