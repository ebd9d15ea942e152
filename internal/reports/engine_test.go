package reports

import (
	"context"
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

func addInstance(t *testing.T, db *gorm.DB, name, instanceType, url string) *database.Instance {
	t.Helper()
	inst, err := database.NewInstanceService(db).CreateInstance(name, instanceType, url, "test-key", true)
	if err != nil {
		t.Fatalf("failed to create instance %s: %v", name, err)
	}
	return inst
}

func radarrServer(t *testing.T, moviesJSON string, extra map[string]string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v3/movie", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(moviesJSON))
	})
	for path, body := range extra {
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(body))
		})
	}
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestDuplicatesGroupsAcrossInstances(t *testing.T) {
	db := openTestDB(t)

	serverA := radarrServer(t, `[
		{"id":1,"title":"The Matrix","year":1999,"tmdbId":603,"sizeOnDisk":4000,"hasFile":true},
		{"id":2,"title":"Heat","year":1995,"tmdbId":949,"sizeOnDisk":3000,"hasFile":true}
	]`, nil)
	serverB := radarrServer(t, `[
		{"id":7,"title":"The Matrix","year":1999,"tmdbId":603,"sizeOnDisk":6000,"hasFile":true}
	]`, nil)

	addInstance(t, db, "radarr-a", database.InstanceTypeRadarr, serverA.URL)
	addInstance(t, db, "radarr-b", database.InstanceTypeRadarr, serverB.URL)

	report, err := NewEngine(db).Duplicates(context.Background(), database.InstanceTypeRadarr)
	if err != nil {
		t.Fatalf("Duplicates returned error: %v", err)
	}
	if len(report.FailedInstances) != 0 {
		t.Fatalf("unexpected failed instances: %+v", report.FailedInstances)
	}
	if len(report.Groups) != 1 {
		t.Fatalf("expected 1 duplicate group, got %d", len(report.Groups))
	}

	group := report.Groups[0]
	if group.Key != "tmdb:603" {
		t.Errorf("expected key tmdb:603, got %q", group.Key)
	}
	if len(group.Items) != 2 {
		t.Errorf("expected 2 items in group, got %d", len(group.Items))
	}
	if group.TotalSize != 10000 {
		t.Errorf("expected total size 10000, got %d", group.TotalSize)
	}
}

func TestDuplicatesOmitsFailedInstance(t *testing.T) {
	db := openTestDB(t)

	server := radarrServer(t, `[
		{"id":1,"title":"The Matrix","year":1999,"tmdbId":603,"sizeOnDisk":4000,"hasFile":true}
	]`, nil)
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	deadURL := dead.URL
	dead.Close()

	addInstance(t, db, "radarr-ok", database.InstanceTypeRadarr, server.URL)
	broken := addInstance(t, db, "radarr-down", database.InstanceTypeRadarr, deadURL)

	report, err := NewEngine(db).Duplicates(context.Background(), database.InstanceTypeRadarr)
	if err != nil {
		t.Fatalf("Duplicates returned error: %v", err)
	}
	if len(report.Groups) != 0 {
		t.Errorf("expected no groups with one instance down, got %d", len(report.Groups))
	}
	if len(report.FailedInstances) != 1 {
		t.Fatalf("expected 1 failed instance, got %d", len(report.FailedInstances))
	}
	if report.FailedInstances[0].ID != broken.ID {
		t.Errorf("expected failure for %s, got %s", broken.ID, report.FailedInstances[0].ID)
	}
	if report.FailedInstances[0].Error == "" {
		t.Error("expected failure to carry an error message")
	}
}

func TestDuplicatesRejectsUnsupportedType(t *testing.T) {
	db := openTestDB(t)
	if _, err := NewEngine(db).Duplicates(context.Background(), database.InstanceTypePlex); err == nil {
		t.Error("expected error for plex duplicates report")
	}
}

func TestCutoffUnmetQualityLookup(t *testing.T) {
	db := openTestDB(t)

	server := radarrServer(t, `[
		{"id":1,"title":"The Matrix","year":1999,"tmdbId":603,"hasFile":true,
		 "movieFile":{"id":10,"quality":{"quality":{"id":9,"name":"HD-1080p"}}}}
	]`, map[string]string{
		"/api/v3/wanted/cutoff": `{"page":1,"pageSize":200,"totalRecords":2,"records":[
			{"id":501,"movieId":1,"title":"The Matrix"},
			{"id":502,"movieId":2,"title":"Heat"}
		]}`,
	})

	addInstance(t, db, "radarr-a", database.InstanceTypeRadarr, server.URL)

	report, err := NewEngine(db).CutoffUnmet(context.Background(), database.InstanceTypeRadarr)
	if err != nil {
		t.Fatalf("CutoffUnmet returned error: %v", err)
	}
	if len(report.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(report.Records))
	}

	byTitle := make(map[string]CutoffRecord)
	for _, record := range report.Records {
		byTitle[record.Title] = record
	}
	if got := byTitle["The Matrix"].CurrentQuality; got != "HD-1080p" {
		t.Errorf("expected matched item quality HD-1080p, got %q", got)
	}
	if got := byTitle["Heat"].CurrentQuality; got != UnknownQuality {
		t.Errorf("expected unmatched item quality %q, got %q", UnknownQuality, got)
	}
}

func TestQualityProfilesGrouping(t *testing.T) {
	db := openTestDB(t)

	server := radarrServer(t, `[
		{"id":1,"title":"The Matrix","year":1999,"qualityProfileId":4,"sizeOnDisk":4000,"hasFile":true},
		{"id":2,"title":"Heat","year":1995,"qualityProfileId":4,"sizeOnDisk":3000,"hasFile":true},
		{"id":3,"title":"Alien","year":1979,"qualityProfileId":99,"sizeOnDisk":1000,"hasFile":true}
	]`, map[string]string{
		"/api/v3/qualityprofile": `[{"id":4,"name":"HD-1080p"}]`,
	})

	addInstance(t, db, "radarr-a", database.InstanceTypeRadarr, server.URL)

	report, err := NewEngine(db).QualityProfiles(context.Background(), database.InstanceTypeRadarr)
	if err != nil {
		t.Fatalf("QualityProfiles returned error: %v", err)
	}
	if len(report.Instances) != 1 {
		t.Fatalf("expected 1 instance, got %d", len(report.Instances))
	}

	profiles := report.Instances[0].Profiles
	if len(profiles) != 2 {
		t.Fatalf("expected 2 profile groups, got %d", len(profiles))
	}
	if profiles[0].Name != "HD-1080p" || profiles[0].Count != 2 || profiles[0].TotalSize != 7000 {
		t.Errorf("unexpected first group: %+v", profiles[0])
	}
	if profiles[1].Name != UnknownQuality || profiles[1].ProfileID != 99 {
		t.Errorf("expected unresolved profile placeholder, got %+v", profiles[1])
	}
}

func TestDiskSpaceTagsInstances(t *testing.T) {
	db := openTestDB(t)

	server := radarrServer(t, `[]`, map[string]string{
		"/api/v3/diskspace": `[{"path":"/movies","label":"movies","freeSpace":100,"totalSpace":400}]`,
	})

	addInstance(t, db, "radarr-a", database.InstanceTypeRadarr, server.URL)

	report, err := NewEngine(db).DiskSpace(context.Background(), database.InstanceTypeRadarr)
	if err != nil {
		t.Fatalf("DiskSpace returned error: %v", err)
	}
	if len(report.Instances) != 1 {
		t.Fatalf("expected 1 instance, got %d", len(report.Instances))
	}
	entry := report.Instances[0]
	if entry.InstanceName != "radarr-a" || len(entry.Entries) != 1 {
		t.Fatalf("unexpected disk space entry: %+v", entry)
	}
	if entry.Entries[0].FreeSpace != 100 || entry.Entries[0].TotalSpace != 400 {
		t.Errorf("unexpected volume numbers: %+v", entry.Entries[0])
	}
}
