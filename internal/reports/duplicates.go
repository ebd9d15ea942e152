package reports

import (
	"context"
	"sort"
)

// DuplicateGroup is one title tracked by two or more instances.
type DuplicateGroup struct {
	Key       string `json:"key"`
	Title     string `json:"title"`
	Year      int    `json:"year"`
	TotalSize int64  `json:"total_size"`
	Items     []Item `json:"items"`
}

// DuplicatesReport lists titles present on more than one instance of a kind.
type DuplicatesReport struct {
	Type            string           `json:"type"`
	Groups          []DuplicateGroup `json:"groups"`
	FailedInstances []FailedInstance `json:"failed_instances,omitempty"`
}

// Duplicates finds titles tracked by multiple enabled instances of the given
// kind. Two copies on the same instance do not count as a duplicate.
func (e *Engine) Duplicates(ctx context.Context, instanceType string) (*DuplicatesReport, error) {
	instances, err := e.enabledByType(instanceType)
	if err != nil {
		return nil, err
	}

	results, failed := fanOut(ctx, instances, e.limit, "duplicates", e.fetchItems)

	byKey := make(map[string][]Item)
	for _, r := range results {
		for _, item := range r.value {
			key := e.matcher.Key(item)
			byKey[key] = append(byKey[key], item)
		}
	}

	var groups []DuplicateGroup
	for key, items := range byKey {
		instanceIDs := make(map[string]struct{})
		var total int64
		for _, item := range items {
			instanceIDs[item.InstanceID.String()] = struct{}{}
			total += item.Size
		}
		if len(instanceIDs) < 2 {
			continue
		}
		groups = append(groups, DuplicateGroup{
			Key:       key,
			Title:     items[0].Title,
			Year:      items[0].Year,
			TotalSize: total,
			Items:     items,
		})
	}

	// Largest reclaimable space first.
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].TotalSize != groups[j].TotalSize {
			return groups[i].TotalSize > groups[j].TotalSize
		}
		return groups[i].Key < groups[j].Key
	})

	return &DuplicatesReport{Type: instanceType, Groups: groups, FailedInstances: failed}, nil
}
