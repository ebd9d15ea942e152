package reports

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/rmitchellscott/mediamaster/internal/database"
	"github.com/rmitchellscott/mediamaster/internal/upstream"
)

// InstanceDiskSpace is one instance's mounted volumes as the upstream
// reports them.
type InstanceDiskSpace struct {
	InstanceID   uuid.UUID                 `json:"instance_id"`
	InstanceName string                    `json:"instance_name"`
	Entries      []upstream.DiskSpaceEntry `json:"entries"`
}

// DiskSpaceReport lists every enabled instance's disk space entries.
type DiskSpaceReport struct {
	Type            string              `json:"type"`
	Instances       []InstanceDiskSpace `json:"instances"`
	FailedInstances []FailedInstance    `json:"failed_instances,omitempty"`
}

// DiskSpace fetches the disk space view of every enabled instance of the
// given kind. No cross-instance merging: volumes are tagged by source.
func (e *Engine) DiskSpace(ctx context.Context, instanceType string) (*DiskSpaceReport, error) {
	instances, err := e.enabledByType(instanceType)
	if err != nil {
		return nil, err
	}

	results, failed := fanOut(ctx, instances, e.limit, "disk_space",
		func(ctx context.Context, inst database.Instance) ([]upstream.DiskSpaceEntry, error) {
			return e.arrClient(inst).DiskSpace(ctx)
		})

	report := &DiskSpaceReport{Type: instanceType, FailedInstances: failed}
	for _, r := range results {
		report.Instances = append(report.Instances, InstanceDiskSpace{
			InstanceID:   r.instance.ID,
			InstanceName: r.instance.Name,
			Entries:      r.value,
		})
	}
	sort.Slice(report.Instances, func(i, j int) bool {
		return report.Instances[i].InstanceName < report.Instances[j].InstanceName
	})
	return report, nil
}
