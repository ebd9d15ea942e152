package upstream

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

// apiPrefix is the versioned path prefix shared by Sonarr and Radarr.
const apiPrefix = "/api/v3"

// ArrClient talks to a Sonarr or Radarr instance. The resource name
// ("series" or "movie") selects the item endpoints.
type ArrClient struct {
	*Client
	resource string
}

// NewSonarrClient creates a client for a Sonarr instance.
func NewSonarrClient(baseURL, apiKey string, timeout time.Duration) *ArrClient {
	return newArrClient(baseURL, apiKey, timeout, "series")
}

// NewRadarrClient creates a client for a Radarr instance.
func NewRadarrClient(baseURL, apiKey string, timeout time.Duration) *ArrClient {
	return newArrClient(baseURL, apiKey, timeout, "movie")
}

func newArrClient(baseURL, apiKey string, timeout time.Duration, resource string) *ArrClient {
	return &ArrClient{
		Client: NewClient(ClientConfig{
			BaseURL:    baseURL,
			APIKey:     apiKey,
			AuthHeader: HeaderArrAPIKey,
			Timeout:    timeout,
		}),
		resource: resource,
	}
}

// SystemStatus is the response of the status endpoint, used for
// connection testing.
type SystemStatus struct {
	AppName string `json:"appName"`
	Version string `json:"version"`
}

// QualityWrapper mirrors the nested quality object of *arr file records.
type QualityWrapper struct {
	Quality struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"quality"`
}

// MediaFile is a file on disk attached to a media item.
type MediaFile struct {
	ID      int64          `json:"id"`
	Path    string         `json:"path"`
	Size    int64          `json:"size"`
	Quality QualityWrapper `json:"quality"`
}

// MediaStatistics carries the aggregate numbers Sonarr reports per series.
type MediaStatistics struct {
	SizeOnDisk       int64 `json:"sizeOnDisk"`
	EpisodeFileCount int   `json:"episodeFileCount"`
}

// MediaItem is the common shape of a Sonarr series or a Radarr movie.
// Fields absent from one kind simply stay zero for the other.
type MediaItem struct {
	ID               int64            `json:"id"`
	Title            string           `json:"title"`
	Year             int              `json:"year"`
	TvdbID           int64            `json:"tvdbId,omitempty"`
	TmdbID           int64            `json:"tmdbId,omitempty"`
	Path             string           `json:"path"`
	RootFolderPath   string           `json:"rootFolderPath,omitempty"`
	QualityProfileID int64            `json:"qualityProfileId"`
	Monitored        bool             `json:"monitored"`
	SizeOnDisk       int64            `json:"sizeOnDisk,omitempty"`
	HasFile          bool             `json:"hasFile,omitempty"`
	MovieFile        *MediaFile       `json:"movieFile,omitempty"`
	Statistics       *MediaStatistics `json:"statistics,omitempty"`
}

// Size returns the on-disk size regardless of media kind.
func (m MediaItem) Size() int64 {
	if m.Statistics != nil {
		return m.Statistics.SizeOnDisk
	}
	return m.SizeOnDisk
}

// OnDisk reports whether the item has at least one file on disk.
func (m MediaItem) OnDisk() bool {
	if m.Statistics != nil {
		return m.Statistics.EpisodeFileCount > 0
	}
	return m.HasFile
}

// QualityLabel returns the on-disk quality name, or "" when no file exists.
func (m MediaItem) QualityLabel() string {
	if m.MovieFile != nil {
		return m.MovieFile.Quality.Quality.Name
	}
	return ""
}

// QualityProfile is one of the instance's configured quality profiles.
type QualityProfile struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Cutoff int64  `json:"cutoff"`
}

// DiskSpaceEntry is one mount reported by the diskspace endpoint.
type DiskSpaceEntry struct {
	Path       string `json:"path"`
	Label      string `json:"label"`
	FreeSpace  int64  `json:"freeSpace"`
	TotalSpace int64  `json:"totalSpace"`
}

// WantedRecord is one entry of the wanted/cutoff listing. Sonarr lists
// episodes (carrying a seriesId), Radarr lists movies directly.
type WantedRecord struct {
	ID       int64  `json:"id"`
	SeriesID int64  `json:"seriesId,omitempty"`
	MovieID  int64  `json:"movieId,omitempty"`
	Title    string `json:"title"`
}

// ItemID resolves the owning media item id for a wanted record.
func (r WantedRecord) ItemID() int64 {
	if r.SeriesID != 0 {
		return r.SeriesID
	}
	if r.MovieID != 0 {
		return r.MovieID
	}
	return r.ID
}

// WantedPage is the paged response of the wanted/cutoff endpoint.
type WantedPage struct {
	Page         int            `json:"page"`
	PageSize     int            `json:"pageSize"`
	TotalRecords int            `json:"totalRecords"`
	Records      []WantedRecord `json:"records"`
}

// Status fetches the system status, confirming reachability and credential.
func (c *ArrClient) Status(ctx context.Context) (*SystemStatus, error) {
	var status SystemStatus
	if err := c.Get(ctx, apiPrefix+"/system/status", &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Items fetches the full media item collection (all series or all movies).
func (c *ArrClient) Items(ctx context.Context) ([]MediaItem, error) {
	var items []MediaItem
	if err := c.Get(ctx, apiPrefix+"/"+c.resource, &items); err != nil {
		return nil, fmt.Errorf("fetching %s list: %w", c.resource, err)
	}
	return items, nil
}

// Item fetches a single media item as a raw document so that updates can
// round-trip fields this client does not model.
func (c *ArrClient) Item(ctx context.Context, id int64) (map[string]interface{}, error) {
	var item map[string]interface{}
	if err := c.Get(ctx, fmt.Sprintf("%s/%s/%d", apiPrefix, c.resource, id), &item); err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateItem writes back a raw item document, optionally asking the server
// to move files when the path changed.
func (c *ArrClient) UpdateItem(ctx context.Context, item map[string]interface{}, moveFiles bool) error {
	id, _ := item["id"].(float64)
	path := fmt.Sprintf("%s/%s/%d?moveFiles=%t", apiPrefix, c.resource, int64(id), moveFiles)
	return c.Put(ctx, path, item, nil)
}

// DeleteItem removes a media item, optionally deleting its files on disk.
func (c *ArrClient) DeleteItem(ctx context.Context, id int64, deleteFiles bool) error {
	return c.Delete(ctx, fmt.Sprintf("%s/%s/%d?deleteFiles=%t", apiPrefix, c.resource, id, deleteFiles))
}

// QualityProfiles fetches the instance's quality profiles.
func (c *ArrClient) QualityProfiles(ctx context.Context) ([]QualityProfile, error) {
	var profiles []QualityProfile
	if err := c.Get(ctx, apiPrefix+"/qualityprofile", &profiles); err != nil {
		return nil, fmt.Errorf("fetching quality profiles: %w", err)
	}
	return profiles, nil
}

// DiskSpace fetches the instance's disk space report.
func (c *ArrClient) DiskSpace(ctx context.Context) ([]DiskSpaceEntry, error) {
	var entries []DiskSpaceEntry
	if err := c.Get(ctx, apiPrefix+"/diskspace", &entries); err != nil {
		return nil, fmt.Errorf("fetching disk space: %w", err)
	}
	return entries, nil
}

// CutoffUnmet fetches one page of items below their quality cutoff.
func (c *ArrClient) CutoffUnmet(ctx context.Context, page, pageSize int) (*WantedPage, error) {
	query := url.Values{}
	query.Set("page", fmt.Sprintf("%d", page))
	query.Set("pageSize", fmt.Sprintf("%d", pageSize))

	var result WantedPage
	if err := c.Get(ctx, apiPrefix+"/wanted/cutoff?"+query.Encode(), &result); err != nil {
		return nil, fmt.Errorf("fetching cutoff unmet page %d: %w", page, err)
	}
	return &result, nil
}
