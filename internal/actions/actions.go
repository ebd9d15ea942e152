// Package actions applies bulk mutations to a single automation instance's
// items. Monitor and quality-profile edits run sequentially because each one
// round-trips the full item document; delete and move fire per-item calls
// concurrently. A failed call fails the batch, and calls that already
// completed are not rolled back.
package actions

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/rmitchellscott/mediamaster/internal/config"
	"github.com/rmitchellscott/mediamaster/internal/database"
	"github.com/rmitchellscott/mediamaster/internal/logging"
	"github.com/rmitchellscott/mediamaster/internal/upstream"
)

// ErrInstanceDisabled is returned when the target instance exists but is
// switched off.
var ErrInstanceDisabled = fmt.Errorf("instance is disabled")

// Runner executes bulk actions against one instance at a time.
type Runner struct {
	instances *database.InstanceService
	timeout   time.Duration
	limit     int
}

// NewRunner creates a bulk action runner.
func NewRunner(db *gorm.DB) *Runner {
	return &Runner{
		instances: database.NewInstanceService(db),
		timeout:   config.GetDuration("UPSTREAM_TIMEOUT", upstream.DefaultTimeout),
		limit:     config.GetInt("ACTION_CONCURRENCY", 4),
	}
}

// client resolves the instance and builds its API client. Plex instances
// are rejected: bulk mutations only apply to automation servers.
func (r *Runner) client(id uuid.UUID) (*upstream.ArrClient, *database.Instance, error) {
	inst, err := r.instances.GetInstanceByID(id)
	if err != nil {
		return nil, nil, err
	}
	if !inst.Enabled {
		return nil, nil, ErrInstanceDisabled
	}
	switch inst.Type {
	case database.InstanceTypeSonarr:
		return upstream.NewSonarrClient(inst.URL, inst.APIKey, r.timeout), inst, nil
	case database.InstanceTypeRadarr:
		return upstream.NewRadarrClient(inst.URL, inst.APIKey, r.timeout), inst, nil
	default:
		return nil, nil, fmt.Errorf("bulk actions are not supported for %s instances", inst.Type)
	}
}

// SetMonitored flips the monitored flag on each item, one at a time.
func (r *Runner) SetMonitored(ctx context.Context, instanceID uuid.UUID, itemIDs []int64, monitored bool) error {
	client, inst, err := r.client(instanceID)
	if err != nil {
		return err
	}

	for _, itemID := range itemIDs {
		item, err := client.Item(ctx, itemID)
		if err != nil {
			return fmt.Errorf("fetching item %d: %w", itemID, err)
		}
		item["monitored"] = monitored
		if err := client.UpdateItem(ctx, item, false); err != nil {
			return fmt.Errorf("updating item %d: %w", itemID, err)
		}
	}

	logging.InfoWithComponent(logging.ComponentActions, "Bulk monitor applied",
		"instance", inst.Name, "items", len(itemIDs), "monitored", monitored)
	return nil
}

// SetQualityProfile assigns a quality profile to each item, one at a time.
func (r *Runner) SetQualityProfile(ctx context.Context, instanceID uuid.UUID, itemIDs []int64, profileID int64) error {
	client, inst, err := r.client(instanceID)
	if err != nil {
		return err
	}

	for _, itemID := range itemIDs {
		item, err := client.Item(ctx, itemID)
		if err != nil {
			return fmt.Errorf("fetching item %d: %w", itemID, err)
		}
		item["qualityProfileId"] = profileID
		if err := client.UpdateItem(ctx, item, false); err != nil {
			return fmt.Errorf("updating item %d: %w", itemID, err)
		}
	}

	logging.InfoWithComponent(logging.ComponentActions, "Bulk quality profile applied",
		"instance", inst.Name, "items", len(itemIDs), "profile_id", profileID)
	return nil
}

// Delete removes each item concurrently, optionally deleting files on disk.
func (r *Runner) Delete(ctx context.Context, instanceID uuid.UUID, itemIDs []int64, deleteFiles bool) error {
	client, inst, err := r.client(instanceID)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.limit)
	for _, itemID := range itemIDs {
		g.Go(func() error {
			if err := client.DeleteItem(ctx, itemID, deleteFiles); err != nil {
				return fmt.Errorf("deleting item %d: %w", itemID, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	logging.InfoWithComponent(logging.ComponentActions, "Bulk delete applied",
		"instance", inst.Name, "items", len(itemIDs), "delete_files", deleteFiles)
	return nil
}

// Move re-roots each item concurrently, optionally asking the upstream to
// move the files.
func (r *Runner) Move(ctx context.Context, instanceID uuid.UUID, itemIDs []int64, rootFolderPath string, moveFiles bool) error {
	client, inst, err := r.client(instanceID)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.limit)
	for _, itemID := range itemIDs {
		g.Go(func() error {
			item, err := client.Item(ctx, itemID)
			if err != nil {
				return fmt.Errorf("fetching item %d: %w", itemID, err)
			}
			item["rootFolderPath"] = rootFolderPath
			if err := client.UpdateItem(ctx, item, moveFiles); err != nil {
				return fmt.Errorf("moving item %d: %w", itemID, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	logging.InfoWithComponent(logging.ComponentActions, "Bulk move applied",
		"instance", inst.Name, "items", len(itemIDs), "root_folder", rootFolderPath)
	return nil
}
