// Package metadata resolves poster artwork from an external catalog API.
// Lookups are best effort: a missing API key or an upstream failure is
// reported to the caller but never affects the rest of the dashboard.
package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"gorm.io/gorm"

	"github.com/rmitchellscott/mediamaster/internal/config"
	"github.com/rmitchellscott/mediamaster/internal/database"
)

// ErrNoAPIKey is returned when no catalog API key has been configured.
var ErrNoAPIKey = fmt.Errorf("no metadata API key configured")

// ErrNotFound is returned when the catalog has no artwork for the id.
var ErrNotFound = fmt.Errorf("no poster found")

const (
	defaultBaseURL  = "https://api.themoviedb.org/3"
	defaultImageURL = "https://image.tmdb.org/t/p/w500"
)

// Poster is a resolved artwork reference.
type Poster struct {
	MediaType string `json:"media_type"`
	ID        int64  `json:"id"`
	URL       string `json:"url"`
}

// Service looks up posters using the API key stored in settings.
type Service struct {
	settings *database.SettingService
	client   *http.Client
	baseURL  string
	imageURL string
}

// NewService creates a metadata service. The catalog endpoints default to
// TMDB and can be overridden through METADATA_BASE_URL and
// METADATA_IMAGE_URL for testing or alternative catalogs.
func NewService(db *gorm.DB) *Service {
	return &Service{
		settings: database.NewSettingService(db),
		client:   &http.Client{Timeout: config.GetDuration("METADATA_TIMEOUT", 10*time.Second)},
		baseURL:  config.Get("METADATA_BASE_URL", defaultBaseURL),
		imageURL: config.Get("METADATA_IMAGE_URL", defaultImageURL),
	}
}

// Poster resolves the poster for one catalog entry. mediaType is "movie" or
// "series"; id is the catalog's own id for the title (tmdb numbering).
func (s *Service) Poster(ctx context.Context, mediaType string, id int64) (*Poster, error) {
	var resource string
	switch mediaType {
	case "movie":
		resource = "movie"
	case "series":
		resource = "tv"
	default:
		return nil, fmt.Errorf("unsupported media type: %s", mediaType)
	}

	apiKey, err := s.settings.GetString(database.SettingMetadataAPIKey)
	if err != nil {
		return nil, err
	}
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}

	query := url.Values{}
	query.Set("api_key", apiKey)
	endpoint := fmt.Sprintf("%s/%s/%d?%s", s.baseURL, resource, id, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching catalog entry: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("catalog returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	var entry struct {
		PosterPath string `json:"poster_path"`
	}
	if err := json.Unmarshal(body, &entry); err != nil {
		return nil, fmt.Errorf("decoding catalog entry: %w", err)
	}
	if entry.PosterPath == "" {
		return nil, ErrNotFound
	}

	return &Poster{
		MediaType: mediaType,
		ID:        id,
		URL:       s.imageURL + entry.PosterPath,
	}, nil
}
