package reports

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/rmitchellscott/mediamaster/internal/database"
	"github.com/rmitchellscott/mediamaster/internal/upstream"
)

// UnknownQuality is reported when the owning item for a wanted record cannot
// be resolved on its instance.
const UnknownQuality = "Unknown"

const cutoffPageSize = 200

// maxCutoffPages caps the paged wanted fetch so a misbehaving upstream
// cannot loop the report forever.
const maxCutoffPages = 100

// CutoffRecord is one item whose current file sits below its profile cutoff.
type CutoffRecord struct {
	InstanceID     uuid.UUID `json:"instance_id"`
	InstanceName   string    `json:"instance_name"`
	ItemID         int64     `json:"item_id"`
	Title          string    `json:"title"`
	CurrentQuality string    `json:"current_quality"`
}

// CutoffReport lists items below their quality cutoff across instances.
type CutoffReport struct {
	Type            string           `json:"type"`
	Records         []CutoffRecord   `json:"records"`
	FailedInstances []FailedInstance `json:"failed_instances,omitempty"`
}

// CutoffUnmet aggregates the cutoff-unmet queue of every enabled instance of
// the given kind, resolving each record's current quality from the owning
// item's file.
func (e *Engine) CutoffUnmet(ctx context.Context, instanceType string) (*CutoffReport, error) {
	instances, err := e.enabledByType(instanceType)
	if err != nil {
		return nil, err
	}

	results, failed := fanOut(ctx, instances, e.limit, "cutoff_unmet", e.fetchCutoff)

	var records []CutoffRecord
	for _, r := range results {
		records = append(records, r.value...)
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].InstanceName != records[j].InstanceName {
			return records[i].InstanceName < records[j].InstanceName
		}
		return records[i].Title < records[j].Title
	})

	return &CutoffReport{Type: instanceType, Records: records, FailedInstances: failed}, nil
}

func (e *Engine) fetchCutoff(ctx context.Context, inst database.Instance) ([]CutoffRecord, error) {
	client := e.arrClient(inst)

	// Quality lookup comes from the instance's own collection: wanted
	// records do not carry the current file quality.
	media, err := client.Items(ctx)
	if err != nil {
		return nil, err
	}
	qualityByItem := make(map[int64]string, len(media))
	titleByItem := make(map[int64]string, len(media))
	for _, m := range media {
		qualityByItem[m.ID] = m.QualityLabel()
		titleByItem[m.ID] = m.Title
	}

	var wanted []upstream.WantedRecord
	for page := 1; page <= maxCutoffPages; page++ {
		result, err := client.CutoffUnmet(ctx, page, cutoffPageSize)
		if err != nil {
			return nil, err
		}
		wanted = append(wanted, result.Records...)
		if len(result.Records) == 0 || len(wanted) >= result.TotalRecords {
			break
		}
	}

	// Deduplicate per owning item; a series surfaces one wanted record per
	// episode but the report tracks items.
	seen := make(map[int64]struct{})
	var records []CutoffRecord
	for _, w := range wanted {
		itemID := w.ItemID()
		if _, ok := seen[itemID]; ok {
			continue
		}
		seen[itemID] = struct{}{}

		quality := qualityByItem[itemID]
		if quality == "" {
			quality = UnknownQuality
		}
		title := titleByItem[itemID]
		if title == "" {
			title = w.Title
		}

		records = append(records, CutoffRecord{
			InstanceID:     inst.ID,
			InstanceName:   inst.Name,
			ItemID:         itemID,
			Title:          title,
			CurrentQuality: quality,
		})
	}
	return records, nil
}
