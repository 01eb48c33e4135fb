// Package batch orchestrates cleaning a directory of candidate crops
// and linking the results into the catalog.
package batch

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/athanor/sigildex"
	"github.com/athanor/sigildex/bloom"
	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"
)

// Config holds batch-run settings.
type Config struct {
	// ThumbPx is the longest side of generated thumbnails. Zero disables
	// thumbnailing.
	ThumbPx int

	// Workers bounds item-level parallelism. Zero means NumCPU.
	Workers int

	// SymbolSlug, when set, links every cleaned image to that one symbol
	// instead of matching filenames. An unknown slug fails the whole run
	// before any image is touched.
	SymbolSlug string
}

// DefaultConfig returns the batch defaults.
func DefaultConfig() Config {
	return Config{
		ThumbPx: 512,
	}
}

// Result summarizes a batch run. An image can be cleaned but not linked
// (no matching symbol), so the counters are independent.
type Result struct {
	Cleaned    int
	Linked     int
	Skipped    int
	Failed     int
	Duplicates int
}

// Runner cleans candidate images in bulk and records the outcomes as
// glyphs.
type Runner struct {
	Cleaner sigildex.Cleaner
	Symbols sigildex.SymbolService
	Glyphs  sigildex.GlyphService
	Logger  *slog.Logger
	Config  Config
}

// NewRunner creates a Runner. A nil logger disables logging.
func NewRunner(cleaner sigildex.Cleaner, symbols sigildex.SymbolService, glyphs sigildex.GlyphService, cfg Config, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Runner{
		Cleaner: cleaner,
		Symbols: symbols,
		Glyphs:  glyphs,
		Logger:  logger,
		Config:  cfg,
	}
}

// Run cleans every image in inDir into outDir and links each result to
// a symbol. Items are independent: one bad input is counted and skipped,
// never aborting its siblings, and an interrupted run leaves previously
// written outputs intact. Thumbnails go to thumbDir when configured.
//
// A missing input directory is a hard failure; an empty one is a no-op
// with a warning.
func (r *Runner) Run(ctx context.Context, inDir, outDir, thumbDir string) (*Result, error) {
	files, err := listImages(inDir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		r.Logger.Warn("no candidate images to clean", "dir", inDir)
		return &Result{}, nil
	}

	// An explicit symbol key must resolve before any work happens.
	var batchSymbol *sigildex.Symbol
	if r.Config.SymbolSlug != "" {
		batchSymbol, err = r.Symbols.FindSymbolBySlug(ctx, r.Config.SymbolSlug)
		if err != nil {
			return nil, err
		}
	}

	workers := r.Config.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	seen := bloom.NewFilter(uint(len(files)*2+1024), 0.01)

	var mu sync.Mutex
	result := &Result{}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, inPath := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			outcome := r.processItem(gctx, inPath, outDir, thumbDir, batchSymbol, seen)

			mu.Lock()
			result.Cleaned += outcome.Cleaned
			result.Linked += outcome.Linked
			result.Skipped += outcome.Skipped
			result.Failed += outcome.Failed
			result.Duplicates += outcome.Duplicates
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	r.Logger.Info("batch finished",
		"cleaned", result.Cleaned,
		"linked", result.Linked,
		"skipped", result.Skipped,
		"failed", result.Failed,
		"duplicates", result.Duplicates,
	)
	return result, nil
}

// processItem cleans and links one candidate image. Failures are
// reported through the returned counters, not as errors.
func (r *Runner) processItem(ctx context.Context, inPath, outDir, thumbDir string, batchSymbol *sigildex.Symbol, seen *bloom.Filter) Result {
	stem := strings.TrimSuffix(filepath.Base(inPath), filepath.Ext(inPath))
	outName := stem + ".png"
	outPath := filepath.Join(outDir, outName)

	res, err := r.Cleaner.Clean(ctx, inPath, outPath)
	if err != nil {
		r.Logger.Warn("cleaning failed", "path", inPath, "err", err)
		return Result{Failed: 1}
	}

	outcome := Result{Cleaned: 1}

	if res.Degenerate {
		r.Logger.Warn("nothing survived segmentation", "path", inPath)
	}
	if seen.TestAndAdd(res.Hash) {
		// Probably the same sigil scanned twice; worth a look, not a
		// failure.
		r.Logger.Warn("duplicate content hash", "path", inPath, "hash", res.Hash)
		outcome.Duplicates = 1
	}

	thumbPath := r.makeThumb(outPath, thumbDir, outName)

	glyph := &sigildex.Glyph{
		Kind:          "cleaned",
		Width:         res.Width,
		Height:        res.Height,
		RasterPath:    outPath,
		ThumbPath:     thumbPath,
		TransparentBG: true,
		BBox:          &res.BBox,
		HashSHA256:    res.Hash,
	}

	// An existing glyph that already references this filename is updated
	// in place rather than duplicated.
	existing, err := r.Glyphs.FindGlyphByRasterSuffix(ctx, outName)
	switch {
	case err == nil:
		glyph.ID = existing.ID
		glyph.SymbolID = existing.SymbolID
	case sigildex.ErrorCode(err) != sigildex.ENOTFOUND:
		r.Logger.Warn("glyph lookup failed", "file", outName, "err", err)
		outcome.Failed = 1
		return outcome
	}

	if batchSymbol != nil {
		glyph.SymbolID = batchSymbol.ID
	}

	if glyph.SymbolID == "" {
		symbol, err := r.Symbols.FindSymbolBySlug(ctx, stem)
		if err != nil {
			if sigildex.ErrorCode(err) == sigildex.ENOTFOUND {
				r.Logger.Warn("no symbol matches cleaned image", "file", outName, "slug", stem)
				outcome.Skipped = 1
				return outcome
			}
			r.Logger.Warn("symbol lookup failed", "slug", stem, "err", err)
			outcome.Failed = 1
			return outcome
		}
		glyph.SymbolID = symbol.ID
	}

	if err := r.Glyphs.UpsertGlyph(ctx, glyph); err != nil {
		r.Logger.Warn("recording glyph failed", "file", outName, "err", err)
		outcome.Failed = 1
		return outcome
	}

	outcome.Linked = 1
	return outcome
}

// makeThumb writes a bounded-size preview of the cleaned image. Thumbs
// are a convenience; failures only warn.
func (r *Runner) makeThumb(cleanedPath, thumbDir, name string) string {
	if r.Config.ThumbPx <= 0 || thumbDir == "" {
		return ""
	}

	img, err := imaging.Open(cleanedPath)
	if err != nil {
		r.Logger.Warn("thumbnail source unreadable", "path", cleanedPath, "err", err)
		return ""
	}
	if err := os.MkdirAll(thumbDir, 0755); err != nil {
		r.Logger.Warn("cannot create thumbnail dir", "dir", thumbDir, "err", err)
		return ""
	}

	thumb := imaging.Fit(img, r.Config.ThumbPx, r.Config.ThumbPx, imaging.Lanczos)
	thumbPath := filepath.Join(thumbDir, name)
	if err := imaging.Save(thumb, thumbPath); err != nil {
		r.Logger.Warn("cannot save thumbnail", "path", thumbPath, "err", err)
		return ""
	}
	return thumbPath
}

var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".tif":  true,
	".tiff": true,
}

// listImages returns the sorted image paths in dir. A missing directory
// maps to ENOTFOUND.
func listImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, sigildex.Errorf(sigildex.ENOTFOUND, "candidate directory not found: %s", dir)
		}
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !imageExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}
