package reports

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
	"github.com/rmitchellscott/mediamaster/internal/metrics"
	"github.com/rmitchellscott/mediamaster/internal/upstream"
)

// FailedInstance identifies an instance whose fetch failed during a report.
// The report proceeds with the remaining instances' data.
type FailedInstance struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Error string    `json:"error"`
}

// Engine computes the aggregation reports over the configured instances.
type Engine struct {
	instances *database.InstanceService
	settings  *database.SettingService
	matcher   Matcher
	timeout   time.Duration
	limit     int
}

// NewEngine creates a report engine with the default identity matcher.
func NewEngine(db *gorm.DB) *Engine {
	return NewEngineWithMatcher(db, DefaultMatcher{})
}

// NewEngineWithMatcher creates a report engine with a custom identity matcher.
func NewEngineWithMatcher(db *gorm.DB, matcher Matcher) *Engine {
	return &Engine{
		instances: database.NewInstanceService(db),
		settings:  database.NewSettingService(db),
		matcher:   matcher,
		timeout:   config.GetDuration("UPSTREAM_TIMEOUT", upstream.DefaultTimeout),
		limit:     config.GetInt("REPORT_CONCURRENCY", 4),
	}
}

// arrClient builds the API client matching the instance's kind.
func (e *Engine) arrClient(inst database.Instance) *upstream.ArrClient {
	if inst.Type == database.InstanceTypeSonarr {
		return upstream.NewSonarrClient(inst.URL, inst.APIKey, e.timeout)
	}
	return upstream.NewRadarrClient(inst.URL, inst.APIKey, e.timeout)
}

// fetchItems fetches an instance's full media collection as tagged items.
func (e *Engine) fetchItems(ctx context.Context, inst database.Instance) ([]Item, error) {
	media, err := e.arrClient(inst).Items(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(media))
	for _, m := range media {
		items = append(items, arrItem(inst, m))
	}
	return items, nil
}

// arrItem reduces an upstream media record to the report item shape.
func arrItem(inst database.Instance, m upstream.MediaItem) Item {
	kind, externalID := "tmdb", m.TmdbID
	if inst.Type == database.InstanceTypeSonarr {
		kind, externalID = "tvdb", m.TvdbID
	}

	return Item{
		InstanceID:   inst.ID,
		InstanceName: inst.Name,
		ItemID:       m.ID,
		Title:        m.Title,
		Year:         m.Year,
		ExternalKind: kind,
		ExternalID:   externalID,
		Size:         m.Size(),
		Path:         m.Path,
		QualityLabel: m.QualityLabel(),
		ProfileID:    m.QualityProfileID,
		OnDisk:       m.OnDisk(),
	}
}

// sourced pairs a fetched value with the instance it came from.
type sourced[T any] struct {
	instance database.Instance
	value    T
}

// fanOut runs fetch once per instance with bounded concurrency. Failures do
// not cancel the remaining fetches; they are logged, counted, and returned
// so the caller can attach them to the report.
func fanOut[T any](ctx context.Context, instances []database.Instance, limit int, report string,
	fetch func(context.Context, database.Instance) (T, error)) ([]sourced[T], []FailedInstance) {

	if limit < 1 {
		limit = 1
	}

	results := make([]*sourced[T], len(instances))
	failures := make([]*FailedInstance, len(instances))

	g := new(errgroup.Group)
	g.SetLimit(limit)

	for i, inst := range instances {
		g.Go(func() error {
			value, err := fetch(ctx, inst)
			if err != nil {
				logging.WarnWithComponent(logging.ComponentReports, "Instance fetch failed",
					"report", report, "instance", inst.Name, "error", err)
				metrics.ReportFanoutFailures.WithLabelValues(report).Inc()
				failures[i] = &FailedInstance{ID: inst.ID, Name: inst.Name, Error: err.Error()}
				return nil
			}
			results[i] = &sourced[T]{instance: inst, value: value}
			return nil
		})
	}
	_ = g.Wait()

	var ok []sourced[T]
	var failed []FailedInstance
	for i := range instances {
		if results[i] != nil {
			ok = append(ok, *results[i])
		}
		if failures[i] != nil {
			failed = append(failed, *failures[i])
		}
	}
	return ok, failed
}

// enabledByType lists the enabled instances of an automation-server kind.
func (e *Engine) enabledByType(instanceType string) ([]database.Instance, error) {
	if instanceType != database.InstanceTypeSonarr && instanceType != database.InstanceTypeRadarr {
		return nil, fmt.Errorf("unsupported report type: %s", instanceType)
	}
	return e.instances.GetEnabledInstancesByType(instanceType)
}
