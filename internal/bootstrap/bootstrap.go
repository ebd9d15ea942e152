// Package bootstrap seeds the instance registry from a declarative YAML
// file at startup.
package bootstrap

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/rmitchellscott/mediamaster/internal/config"
	"github.com/rmitchellscott/mediamaster/internal/database"
	"github.com/rmitchellscott/mediamaster/internal/logging"
)

// instancesFile is the YAML document INSTANCES_FILE points at.
type instancesFile struct {
	Instances []instanceEntry `yaml:"instances"`
}

type instanceEntry struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`
	URL     string `yaml:"url"`
	APIKey  string `yaml:"api_key"`
	Enabled *bool  `yaml:"enabled"`
}

// SeedInstances upserts the instances declared in INSTANCES_FILE, keyed by
// name. Existing instances get their URL, credential, and enabled flag
// updated; the type of an existing instance is never changed. Without the
// variable set this is a no-op.
func SeedInstances(db *gorm.DB) error {
	path := config.Get("INSTANCES_FILE", "")
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading instances file: %w", err)
	}

	var file instancesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing instances file: %w", err)
	}

	service := database.NewInstanceService(db)
	var created, updated int
	for _, entry := range file.Instances {
		if entry.Name == "" {
			return fmt.Errorf("instances file: entry without a name")
		}
		enabled := true
		if entry.Enabled != nil {
			enabled = *entry.Enabled
		}

		existing, err := service.GetInstanceByName(entry.Name)
		switch {
		case err == nil:
			update := database.InstanceUpdate{Enabled: &enabled}
			if entry.URL != "" {
				update.URL = &entry.URL
			}
			if entry.APIKey != "" {
				update.APIKey = &entry.APIKey
			}
			if _, err := service.UpdateInstance(existing.ID, update); err != nil {
				return fmt.Errorf("updating instance %s: %w", entry.Name, err)
			}
			updated++
		case errors.Is(err, database.ErrInstanceNotFound):
			if _, err := service.CreateInstance(entry.Name, entry.Type, entry.URL, entry.APIKey, enabled); err != nil {
				return fmt.Errorf("creating instance %s: %w", entry.Name, err)
			}
			created++
		default:
			return fmt.Errorf("looking up instance %s: %w", entry.Name, err)
		}
	}

	if created > 0 || updated > 0 {
		logging.InfoWithComponent(logging.ComponentBootstrap, "Seeded instances from file",
			"file", path, "created", created, "updated", updated)
	}
	return nil
}
