package reports

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/rmitchellscott/mediamaster/internal/database"
	"github.com/rmitchellscott/mediamaster/internal/logging"
	"github.com/rmitchellscott/mediamaster/internal/metrics"
	"github.com/rmitchellscott/mediamaster/internal/upstream"
)

// Compare modes order the result rows; the single-sided rows matching the
// mode's direction sort first.
const (
	CompareModeMissingFromPlex = "missing-from-plex"
	CompareModeMissingFromArr  = "missing-from-arr"
)

// CompareRow is one title keyed across both catalogs.
type CompareRow struct {
	Key    string `json:"key"`
	Title  string `json:"title"`
	Year   int    `json:"year"`
	InPlex bool   `json:"in_plex"`
	InArr  bool   `json:"in_arr"`
}

// CompareReport joins a Plex catalog against an automation server's on-disk
// collection.
type CompareReport struct {
	Mode            string           `json:"mode"`
	Rows            []CompareRow     `json:"rows"`
	FailedInstances []FailedInstance `json:"failed_instances,omitempty"`
}

// Compare builds the union of a Plex instance's catalog (excluded sections
// removed) and an automation instance's on-disk items, keyed by normalized
// title and year. Plex metadata carries no tvdb/tmdb ids in the fields we
// read, so both sides use the title fallback to keep the keys comparable.
func (e *Engine) Compare(ctx context.Context, plexID, arrID uuid.UUID, mode string) (*CompareReport, error) {
	switch mode {
	case "":
		mode = CompareModeMissingFromPlex
	case CompareModeMissingFromPlex, CompareModeMissingFromArr:
	default:
		return nil, fmt.Errorf("unsupported compare mode: %s", mode)
	}

	plexInst, err := e.instances.GetInstanceByID(plexID)
	if err != nil {
		return nil, err
	}
	if plexInst.Type != database.InstanceTypePlex {
		return nil, fmt.Errorf("instance %s is not a plex instance", plexInst.Name)
	}
	arrInst, err := e.instances.GetInstanceByID(arrID)
	if err != nil {
		return nil, err
	}
	if arrInst.Type != database.InstanceTypeSonarr && arrInst.Type != database.InstanceTypeRadarr {
		return nil, fmt.Errorf("instance %s is not an automation instance", arrInst.Name)
	}

	excluded, err := e.settings.GetStringSlice(database.SettingExcludedLibraries)
	if err != nil {
		return nil, err
	}

	var plexItems, arrItems []Item
	var plexFailure, arrFailure *FailedInstance

	g := new(errgroup.Group)
	g.Go(func() error {
		items, err := e.fetchPlexItems(ctx, *plexInst, arrInst.Type, excluded)
		if err != nil {
			plexFailure = &FailedInstance{ID: plexInst.ID, Name: plexInst.Name, Error: err.Error()}
			return nil
		}
		plexItems = items
		return nil
	})
	g.Go(func() error {
		items, err := e.fetchItems(ctx, *arrInst)
		if err != nil {
			arrFailure = &FailedInstance{ID: arrInst.ID, Name: arrInst.Name, Error: err.Error()}
			return nil
		}
		arrItems = items
		return nil
	})
	_ = g.Wait()

	var failed []FailedInstance
	for _, failure := range []*FailedInstance{plexFailure, arrFailure} {
		if failure == nil {
			continue
		}
		logging.WarnWithComponent(logging.ComponentReports, "Instance fetch failed",
			"report", "compare", "instance", failure.Name, "error", failure.Error)
		metrics.ReportFanoutFailures.WithLabelValues("compare").Inc()
		failed = append(failed, *failure)
	}

	rows := make(map[string]*CompareRow)
	for _, item := range plexItems {
		key := titleKey(item)
		rows[key] = &CompareRow{Key: key, Title: item.Title, Year: item.Year, InPlex: true}
	}
	for _, item := range arrItems {
		if !item.OnDisk {
			continue
		}
		key := titleKey(item)
		if row, ok := rows[key]; ok {
			row.InArr = true
			continue
		}
		rows[key] = &CompareRow{Key: key, Title: item.Title, Year: item.Year, InArr: true}
	}

	out := make([]CompareRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := compareRank(out[i], mode), compareRank(out[j], mode)
		if a != b {
			return a < b
		}
		return out[i].Key < out[j].Key
	})

	return &CompareReport{Mode: mode, Rows: out, FailedInstances: failed}, nil
}

// compareRank orders rows so the side the operator is hunting for comes
// first: the mode's missing rows, then the other side's, then synced rows.
func compareRank(row CompareRow, mode string) int {
	missingFromPlex := row.InArr && !row.InPlex
	missingFromArr := row.InPlex && !row.InArr
	switch {
	case mode == CompareModeMissingFromPlex && missingFromPlex:
		return 0
	case mode == CompareModeMissingFromArr && missingFromArr:
		return 0
	case missingFromPlex || missingFromArr:
		return 1
	default:
		return 2
	}
}

// titleKey forces the normalized-title key even for items carrying external
// ids, so both sides of the join derive keys the same way.
func titleKey(item Item) string {
	item.ExternalID = 0
	return DefaultMatcher{}.Key(item)
}

// fetchPlexItems lists every item in the Plex sections matching the compared
// collection's media type, skipping the excluded section titles.
func (e *Engine) fetchPlexItems(ctx context.Context, inst database.Instance, arrType string, excluded []string) ([]Item, error) {
	client := upstream.NewPlexClient(inst.URL, inst.APIKey, e.timeout)

	sections, err := client.Sections(ctx)
	if err != nil {
		return nil, err
	}

	sectionType := "movie"
	if arrType == database.InstanceTypeSonarr {
		sectionType = "show"
	}
	skip := make(map[string]struct{}, len(excluded))
	for _, title := range excluded {
		skip[title] = struct{}{}
	}

	var items []Item
	for _, section := range sections {
		if section.Type != sectionType {
			continue
		}
		if _, ok := skip[section.Title]; ok {
			continue
		}
		metadata, err := client.SectionItems(ctx, section.Key)
		if err != nil {
			return nil, err
		}
		for _, m := range metadata {
			items = append(items, Item{
				InstanceID:   inst.ID,
				InstanceName: inst.Name,
				Title:        m.Title,
				Year:         m.Year,
				Size:         m.Size(),
				OnDisk:       true,
			})
		}
	}
	return items, nil
}
