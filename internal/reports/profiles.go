package reports

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/rmitchellscott/mediamaster/internal/database"
)

// ProfileUsage aggregates the items assigned to one quality profile.
type ProfileUsage struct {
	ProfileID int64  `json:"profile_id"`
	Name      string `json:"name"`
	Count     int    `json:"count"`
	TotalSize int64  `json:"total_size"`
}

// InstanceProfiles is one instance's per-profile usage breakdown.
type InstanceProfiles struct {
	InstanceID   uuid.UUID      `json:"instance_id"`
	InstanceName string         `json:"instance_name"`
	Profiles     []ProfileUsage `json:"profiles"`
}

// QualityProfilesReport shows how each instance's collection spreads across
// its quality profiles.
type QualityProfilesReport struct {
	Type            string             `json:"type"`
	Instances       []InstanceProfiles `json:"instances"`
	FailedInstances []FailedInstance   `json:"failed_instances,omitempty"`
}

// QualityProfiles groups each enabled instance's items by quality profile id,
// summing count and size and resolving profile names from the instance's own
// profile list. Ids with no matching profile keep the Unknown placeholder.
func (e *Engine) QualityProfiles(ctx context.Context, instanceType string) (*QualityProfilesReport, error) {
	instances, err := e.enabledByType(instanceType)
	if err != nil {
		return nil, err
	}

	results, failed := fanOut(ctx, instances, e.limit, "quality_profiles", e.fetchProfiles)

	report := &QualityProfilesReport{Type: instanceType, FailedInstances: failed}
	for _, r := range results {
		report.Instances = append(report.Instances, r.value)
	}
	sort.Slice(report.Instances, func(i, j int) bool {
		return report.Instances[i].InstanceName < report.Instances[j].InstanceName
	})
	return report, nil
}

func (e *Engine) fetchProfiles(ctx context.Context, inst database.Instance) (InstanceProfiles, error) {
	client := e.arrClient(inst)

	profiles, err := client.QualityProfiles(ctx)
	if err != nil {
		return InstanceProfiles{}, err
	}
	media, err := client.Items(ctx)
	if err != nil {
		return InstanceProfiles{}, err
	}

	names := make(map[int64]string, len(profiles))
	for _, p := range profiles {
		names[p.ID] = p.Name
	}

	usage := make(map[int64]*ProfileUsage)
	for _, m := range media {
		u, ok := usage[m.QualityProfileID]
		if !ok {
			name := names[m.QualityProfileID]
			if name == "" {
				name = UnknownQuality
			}
			u = &ProfileUsage{ProfileID: m.QualityProfileID, Name: name}
			usage[m.QualityProfileID] = u
		}
		u.Count++
		u.TotalSize += m.Size()
	}

	out := InstanceProfiles{InstanceID: inst.ID, InstanceName: inst.Name}
	for _, u := range usage {
		out.Profiles = append(out.Profiles, *u)
	}
	sort.Slice(out.Profiles, func(i, j int) bool {
		if out.Profiles[i].TotalSize != out.Profiles[j].TotalSize {
			return out.Profiles[i].TotalSize > out.Profiles[j].TotalSize
		}
		return out.Profiles[i].ProfileID < out.Profiles[j].ProfileID
	})
	return out, nil
}
