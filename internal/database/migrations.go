package database

import (
	"fmt"

	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/rmitchellscott/mediamaster/internal/logging"
	"gorm.io/gorm"
)

// RunMigrations runs any pending database migrations using gormigrate,
// then auto-migrates remaining model changes.
func RunMigrations() error {
	logging.InfoWithComponent(logging.ComponentDatabase, "Running database migrations")

	m := gormigrate.New(DB, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "202508260000_initial_schema",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&Instance{}, &Setting{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("instances", "settings")
			},
		},
	})

	if err := m.Migrate(); err != nil {
		return fmt.Errorf("gormigrate failed: %w", err)
	}

	// Auto-migration picks up column additions on existing installs
	for _, model := range GetAllModels() {
		if err := DB.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	logging.InfoWithComponent(logging.ComponentDatabase, "Database migrations completed")
	return nil
}
