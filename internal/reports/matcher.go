// Package reports computes the cross-instance aggregation views: duplicates,
// cutoff unmet, library compare, quality profiles and disk space. Each report
// fans out to the enabled instances of the relevant kind, merges the results,
// and reports instances whose fetch failed alongside the partial data.
package reports

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// Item is one media entry tagged with its source instance, reduced to the
// attributes the reports need.
type Item struct {
	InstanceID   uuid.UUID `json:"instance_id"`
	InstanceName string    `json:"instance_name"`
	ItemID       int64     `json:"item_id"`
	Title        string    `json:"title"`
	Year         int       `json:"year"`
	ExternalKind string    `json:"external_kind,omitempty"` // "tvdb" or "tmdb"
	ExternalID   int64     `json:"external_id,omitempty"`
	Size         int64     `json:"size"`
	Path         string    `json:"path,omitempty"`
	QualityLabel string    `json:"quality_label,omitempty"`
	ProfileID    int64     `json:"profile_id,omitempty"`
	OnDisk       bool      `json:"on_disk"`
}

// Matcher derives the identity key used to group or join items across
// instances.
type Matcher interface {
	Key(item Item) string
}

// DefaultMatcher prefers the stable external identifier when present (the
// scheme prefix keeps the tvdb and tmdb numbering spaces apart) and falls
// back to a normalized-title + release-year composite. The fallback is a
// heuristic: titles that differ only in punctuation collapse to the same
// key, and re-releases with different years never match.
type DefaultMatcher struct{}

// Key implements Matcher.
func (DefaultMatcher) Key(item Item) string {
	if item.ExternalID > 0 {
		return fmt.Sprintf("%s:%d", item.ExternalKind, item.ExternalID)
	}
	return fmt.Sprintf("%s:%d", NormalizeTitle(item.Title), item.Year)
}

// NormalizeTitle lowercases a title and strips every non-alphanumeric rune.
func NormalizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
