package upstream

import (
	"context"
	"fmt"
	"time"
)

// PlexClient talks to a Plex media server. Plex answers in XML by default;
// the shared client's Accept header switches it to JSON.
type PlexClient struct {
	*Client
}

// NewPlexClient creates a client for a Plex instance.
func NewPlexClient(baseURL, token string, timeout time.Duration) *PlexClient {
	return &PlexClient{
		Client: NewClient(ClientConfig{
			BaseURL:    baseURL,
			APIKey:     token,
			AuthHeader: HeaderPlexToken,
			Timeout:    timeout,
		}),
	}
}

// PlexIdentity is the response of the identity endpoint.
type PlexIdentity struct {
	MachineIdentifier string `json:"machineIdentifier"`
	Version           string `json:"version"`
}

// PlexSection is one library section (a sub-library such as "Movies").
type PlexSection struct {
	Key   string `json:"key"`
	Title string `json:"title"`
	Type  string `json:"type"` // "movie" or "show"
}

// PlexPart is one file backing a media stream.
type PlexPart struct {
	Size int64  `json:"size"`
	File string `json:"file"`
}

// PlexMedia is one media version of an item.
type PlexMedia struct {
	Part []PlexPart `json:"Part"`
}

// PlexItem is one catalog entry of a library section.
type PlexItem struct {
	RatingKey string      `json:"ratingKey"`
	Title     string      `json:"title"`
	Year      int         `json:"year"`
	Media     []PlexMedia `json:"Media"`
}

// Size sums the file sizes of all parts of all media versions.
func (i PlexItem) Size() int64 {
	var total int64
	for _, media := range i.Media {
		for _, part := range media.Part {
			total += part.Size
		}
	}
	return total
}

// Identity fetches the server identity, confirming reachability and token.
func (c *PlexClient) Identity(ctx context.Context) (*PlexIdentity, error) {
	var envelope struct {
		MediaContainer PlexIdentity `json:"MediaContainer"`
	}
	if err := c.Get(ctx, "/identity", &envelope); err != nil {
		return nil, err
	}
	return &envelope.MediaContainer, nil
}

// Sections fetches all library sections.
func (c *PlexClient) Sections(ctx context.Context) ([]PlexSection, error) {
	var envelope struct {
		MediaContainer struct {
			Directory []PlexSection `json:"Directory"`
		} `json:"MediaContainer"`
	}
	if err := c.Get(ctx, "/library/sections", &envelope); err != nil {
		return nil, fmt.Errorf("fetching library sections: %w", err)
	}
	return envelope.MediaContainer.Directory, nil
}

// SectionItems fetches the full catalog of one library section.
func (c *PlexClient) SectionItems(ctx context.Context, key string) ([]PlexItem, error) {
	var envelope struct {
		MediaContainer struct {
			Metadata []PlexItem `json:"Metadata"`
		} `json:"MediaContainer"`
	}
	if err := c.Get(ctx, "/library/sections/"+key+"/all", &envelope); err != nil {
		return nil, fmt.Errorf("fetching section %s: %w", key, err)
	}
	return envelope.MediaContainer.Metadata, nil
}
