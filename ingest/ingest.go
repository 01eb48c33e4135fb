// Package ingest acquires source documents from a YAML manifest and
// registers them in the catalog.
package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/athanor/sigildex"
	"github.com/cespare/xxhash/v2"
)

// Ingester downloads or locates each manifest entry and upserts it as a
// source. Entries are processed one at a time: acquisition is
// network-bound and archives dislike parallel hammering.
type Ingester struct {
	Sources    sigildex.SourceService
	Downloader sigildex.Downloader
	Logger     *slog.Logger
}

// NewIngester creates an Ingester. A nil logger disables logging.
func NewIngester(sources sigildex.SourceService, downloader sigildex.Downloader, logger *slog.Logger) *Ingester {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Ingester{Sources: sources, Downloader: downloader, Logger: logger}
}

// Result summarizes an ingest run.
type Result struct {
	Ingested int
	Failed   int
}

// Run ingests every entry of the manifest at manifestPath, downloading
// remote documents into rawDir. An unparseable manifest is a hard
// failure; a single bad entry is counted and skipped. Re-running the
// same manifest updates sources in place.
func (i *Ingester) Run(ctx context.Context, manifestPath, rawDir string) (*Result, error) {
	manifest, err := LoadManifest(manifestPath)
	if err != nil {
		return nil, err
	}
	if len(manifest.Entries) == 0 {
		i.Logger.Warn("manifest has no entries", "path", manifestPath)
		return &Result{}, nil
	}

	result := &Result{}
	for _, entry := range manifest.Entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := i.ingestEntry(ctx, entry, rawDir); err != nil {
			i.Logger.Warn("entry failed", "title", entry.Title, "url", entry.URL, "err", err)
			result.Failed++
			continue
		}
		result.Ingested++
	}

	i.Logger.Info("ingest finished", "ingested", result.Ingested, "failed", result.Failed)
	return result, nil
}

func (i *Ingester) ingestEntry(ctx context.Context, entry Entry, rawDir string) error {
	if entry.URL == "" && entry.LocalPath == "" {
		return sigildex.Errorf(sigildex.EINVALID, "entry needs a url or a local_path")
	}

	source := &sigildex.Source{
		Title:     entry.Title,
		Author:    entry.Author,
		Year:      entry.Year,
		Tradition: entry.Tradition,
		URL:       entry.URL,
		LocalPath: entry.LocalPath,
		License:   entry.License,
		Notes:     entry.Notes,
	}
	if source.Title == "" {
		source.Title = deriveTitle(entry)
	}

	if source.URL != "" && source.LocalPath == "" {
		saved, err := i.Downloader.Download(ctx, source.URL, rawDir, source.Slug())
		if err != nil {
			return err
		}
		source.LocalPath = saved
		i.Logger.Info("downloaded source", "title", source.Title, "path", saved)
	}

	hash, err := hashFile(source.LocalPath)
	if err != nil {
		if os.IsNotExist(err) {
			return sigildex.Errorf(sigildex.ENOTFOUND, "local document not found: %s", source.LocalPath)
		}
		return err
	}
	source.ContentHash = hash

	return i.Sources.UpsertSource(ctx, source)
}

// deriveTitle humanizes the document filename when the manifest doesn't
// name the entry.
func deriveTitle(entry Entry) string {
	stem := ""
	if entry.LocalPath != "" {
		base := filepath.Base(entry.LocalPath)
		stem = strings.TrimSuffix(base, filepath.Ext(base))
	} else if u, err := url.Parse(entry.URL); err == nil {
		base := path.Base(u.Path)
		stem = strings.TrimSuffix(base, path.Ext(base))
		if stem == "." || stem == "/" {
			stem = u.Host
		}
	}
	if stem == "" {
		return "untitled"
	}

	words := strings.FieldsFunc(stem, func(r rune) bool {
		return r == '-' || r == '_' || r == '.'
	})
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

// hashFile computes a fast content hash of the file's bytes, used to
// notice changed remote content on re-ingest.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("%016x", h.Sum64()), nil
}
