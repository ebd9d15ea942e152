package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rmitchellscott/mediamaster/internal/database"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(database.GetAllModels()...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func TestPosterLookup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movie/603" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("api_key") != "catalog-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":603,"poster_path":"/matrix.jpg"}`))
	}))
	defer server.Close()

	t.Setenv("METADATA_BASE_URL", server.URL)
	t.Setenv("METADATA_IMAGE_URL", "https://img.example/w500")

	db := openTestDB(t)
	settings := database.NewSettingService(db)
	if _, err := settings.UpsertSetting(database.SettingMetadataAPIKey, json.RawMessage(`"catalog-key"`)); err != nil {
		t.Fatalf("failed to store API key: %v", err)
	}

	poster, err := NewService(db).Poster(context.Background(), "movie", 603)
	if err != nil {
		t.Fatalf("Poster returned error: %v", err)
	}
	if poster.URL != "https://img.example/w500/matrix.jpg" {
		t.Errorf("unexpected poster URL %q", poster.URL)
	}
}

func TestPosterWithoutAPIKey(t *testing.T) {
	db := openTestDB(t)
	if _, err := NewService(db).Poster(context.Background(), "movie", 603); !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("expected ErrNoAPIKey, got %v", err)
	}
}

func TestPosterNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	t.Setenv("METADATA_BASE_URL", server.URL)

	db := openTestDB(t)
	settings := database.NewSettingService(db)
	if _, err := settings.UpsertSetting(database.SettingMetadataAPIKey, json.RawMessage(`"catalog-key"`)); err != nil {
		t.Fatalf("failed to store API key: %v", err)
	}

	if _, err := NewService(db).Poster(context.Background(), "series", 42); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPosterRejectsUnknownMediaType(t *testing.T) {
	db := openTestDB(t)
	if _, err := NewService(db).Poster(context.Background(), "music", 1); err == nil {
		t.Error("expected error for unknown media type")
	}
}
