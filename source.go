package sigildex

import (
	"context"
	"net/url"
	"path/filepath"
	"strings"
	"time"
)

// Source represents one scanned historical document from which sigils are
// extracted. A source is acquired either from a remote URL or from a local
// file referenced by a manifest.
type Source struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Year      int       `json:"year"`
	Tradition string    `json:"tradition"`
	URL       string    `json:"url"`
	LocalPath string    `json:"localPath"`
	License   string    `json:"license"`
	Notes     string    `json:"notes"`

	// ContentHash is a fast hash of the acquired file's bytes, used to
	// detect changed remote content on re-ingest. Not related to the
	// SHA-256 pixel hash on cleaned glyphs.
	ContentHash string `json:"contentHash"`

	CreatedAt time.Time `json:"createdAt"`
}

// Validate returns an error if the source contains invalid fields.
func (s *Source) Validate() error {
	if s.Title == "" {
		return Errorf(EINVALID, "source title required")
	}
	return nil
}

// Slug derives the directory-safe identifier for the source's on-disk
// assets. Title wins; local path stem and URL stem are fallbacks.
func (s *Source) Slug() string {
	if s.Title != "" {
		return Slugify(s.Title)
	}
	if s.LocalPath != "" {
		return Slugify(stem(s.LocalPath))
	}
	if s.URL != "" {
		if u, err := url.Parse(s.URL); err == nil {
			if st := stem(u.Path); st != "" {
				return Slugify(st)
			}
			return Slugify(u.Host)
		}
	}
	return "source-" + s.ID
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// SourceService represents a service for managing sources.
type SourceService interface {
	// UpsertSource creates or updates a source. An existing source is
	// matched by URL, then local path, then title. On update only
	// non-zero fields overwrite stored values.
	UpsertSource(ctx context.Context, source *Source) error

	// FindSourceByID retrieves a source by ID.
	// Returns ENOTFOUND if the source does not exist.
	FindSourceByID(ctx context.Context, id string) (*Source, error)

	// FindSources retrieves sources matching the filter.
	FindSources(ctx context.Context, filter SourceFilter) ([]*Source, error)
}

// SourceFilter represents a filter for FindSources.
type SourceFilter struct {
	ID        *string `json:"id"`
	Tradition *string `json:"tradition"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}
