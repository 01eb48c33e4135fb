// Package detect scans rendered page images for sigil-like regions.
// It binarizes each page with an adaptive threshold, traces external
// contours, applies geometric acceptance rules, and emits one cropped
// candidate image plus one metadata record per accepted region.
package detect

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/athanor/sigildex"
	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"
)

// Config holds the detection heuristics. The defaults are tuned for
// 300 DPI scans of printed grimoires; see DefaultConfig.
type Config struct {
	// MinArea is the minimum accepted contour area in pixels.
	MinArea float64

	// MaxArea is the maximum accepted contour area. Values <= 1.0 are
	// interpreted as a fraction of the page's pixel area, which lets one
	// threshold generalize across scan resolutions.
	MaxArea float64

	// BilateralDiameter is the neighborhood diameter of the
	// edge-preserving smoothing filter.
	BilateralDiameter int

	// BilateralSigmaColor and BilateralSigmaSpace control how strongly
	// the bilateral filter mixes across intensity and distance.
	BilateralSigmaColor float64
	BilateralSigmaSpace float64

	// AdaptiveWindow is the side of the local neighborhood used for
	// adaptive binarization. Must be odd.
	AdaptiveWindow int

	// AdaptiveOffset is subtracted from the local mean; pixels at or
	// below mean-offset become foreground.
	AdaptiveOffset float64

	// CompactnessMin rejects contours whose perimeter²/area falls below
	// it. Line-drawn sigils score high; solid blobs and simple outlines
	// score low and are rejected.
	CompactnessMin float64

	// AspectMin and AspectMax bound the accepted w/h ratio, rejecting
	// strip-like noise such as margins or ruling lines.
	AspectMin float64
	AspectMax float64

	// MarginFrac and MarginMin control the crop margin:
	// max(MarginFrac*min(w,h), MarginMin) pixels on every side.
	MarginFrac float64
	MarginMin  int

	// Workers bounds page-level parallelism. Zero means NumCPU.
	Workers int
}

// DefaultConfig returns the detection defaults.
func DefaultConfig() Config {
	return Config{
		MinArea:             800,
		MaxArea:             0.25,
		BilateralDiameter:   9,
		BilateralSigmaColor: 75,
		BilateralSigmaSpace: 75,
		AdaptiveWindow:      41,
		AdaptiveOffset:      5,
		CompactnessMin:      25,
		AspectMin:           1.0 / 6.0,
		AspectMax:           6,
		MarginFrac:          0.05,
		MarginMin:           4,
		Workers:             0,
	}
}

// Detector finds candidate sigils on rendered pages.
type Detector struct {
	Config Config
	Logger *slog.Logger
}

// NewDetector creates a Detector with the given config and logger.
// A nil logger disables logging.
func NewDetector(cfg Config, logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Detector{Config: cfg, Logger: logger}
}

// MetadataFile is the per-source candidate metadata filename.
const MetadataFile = "candidates.jsonl"

// DetectSource scans every page image in scanDir and writes accepted
// candidate crops and a candidates.jsonl metadata file into outDir.
// Input images are never mutated. Pages are processed in parallel; the
// metadata file is written in page order so re-runs on unchanged pages
// are byte-reproducible.
//
// An unreadable page is skipped with a warning. A source with no
// rendered pages is a hard failure. If no page yields a candidate, no
// metadata file is written and a warning is logged.
func (d *Detector) DetectSource(ctx context.Context, sourceID, sourceSlug, scanDir, outDir string) ([]sigildex.Candidate, error) {
	pages, err := listPages(scanDir)
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, sigildex.Errorf(sigildex.ENOTFOUND, "no rendered pages in %s", scanDir)
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, err
	}

	d.Logger.Info("scanning pages for candidate sigils", "source", sourceSlug, "pages", len(pages))

	workers := d.Config.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	perPage := make([][]sigildex.Candidate, len(pages))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, pagePath := range pages {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			found, err := d.detectPage(sourceID, sourceSlug, i+1, pagePath, outDir)
			if err != nil {
				// Unreadable pages are skipped, not retried. A failed crop
				// write means the output directory is broken and aborts the
				// whole source.
				if sigildex.ErrorCode(err) == sigildex.EINVALID {
					d.Logger.Warn("skipping unreadable page", "path", pagePath, "err", err)
					return nil
				}
				return err
			}
			mu.Lock()
			perPage[i] = found
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var candidates []sigildex.Candidate
	for _, found := range perPage {
		candidates = append(candidates, found...)
	}

	if len(candidates) == 0 {
		d.Logger.Warn("no candidates detected", "source", sourceSlug)
		return nil, nil
	}

	if err := writeMetadata(filepath.Join(outDir, MetadataFile), candidates); err != nil {
		return nil, err
	}
	d.Logger.Info("captured candidate crops", "source", sourceSlug, "count", len(candidates))

	return candidates, nil
}

// detectPage runs detection on one page image. It owns the crop files it
// writes; no coordination with other pages is needed.
func (d *Detector) detectPage(sourceID, sourceSlug string, pageIndex int, pagePath, outDir string) ([]sigildex.Candidate, error) {
	img, err := imaging.Open(pagePath)
	if err != nil {
		return nil, sigildex.Errorf(sigildex.EINVALID, "cannot decode page %s: %v", pagePath, err)
	}

	width := img.Bounds().Dx()
	height := img.Bounds().Dy()
	pageArea := float64(width * height)

	gray := grayscale(img)
	smoothed := bilateral(gray, d.Config.BilateralDiameter, d.Config.BilateralSigmaColor, d.Config.BilateralSigmaSpace)
	mask := adaptiveThresholdInv(smoothed, d.Config.AdaptiveWindow, d.Config.AdaptiveOffset)

	contours := externalContours(mask)

	maxAreaPx := d.Config.MaxArea
	if maxAreaPx <= 1.0 {
		maxAreaPx = maxAreaPx * pageArea
	}

	pageStem := strings.TrimSuffix(filepath.Base(pagePath), filepath.Ext(pagePath))

	var candidates []sigildex.Candidate
	for contourIndex, contour := range contours {
		// Ordinals follow extraction order across all contours, accepted
		// or not, so filenames stay stable for a given parameter set.
		ordinal := contourIndex + 1

		area := contourArea(contour)
		if area < d.Config.MinArea || area > maxAreaPx {
			continue
		}

		perimeter := contourPerimeter(contour)
		if perimeter <= 0 {
			continue
		}

		compactness := perimeter * perimeter / (area + 1e-6)
		if compactness < d.Config.CompactnessMin {
			continue
		}

		rect := boundingRect(contour)
		aspect := float64(rect.Dx()) / float64(max(rect.Dy(), 1))
		if aspect > d.Config.AspectMax || aspect < d.Config.AspectMin {
			continue
		}

		margin := int(float64(min(rect.Dx(), rect.Dy())) * d.Config.MarginFrac)
		if margin < d.Config.MarginMin {
			margin = d.Config.MarginMin
		}
		x0 := max(rect.Min.X-margin, 0)
		y0 := max(rect.Min.Y-margin, 0)
		x1 := min(rect.Max.X+margin, width)
		y1 := min(rect.Max.Y+margin, height)

		crop := imaging.Crop(img, image.Rect(x0, y0, x1, y1))
		cropPath := filepath.Join(outDir, fmt.Sprintf("%s_%02d.png", pageStem, ordinal))
		if err := imaging.Save(crop, cropPath); err != nil {
			return nil, fmt.Errorf("saving crop %s: %w", cropPath, err)
		}

		candidates = append(candidates, sigildex.Candidate{
			SourceID:    sourceID,
			SourceSlug:  sourceSlug,
			Page:        pageIndex,
			Contour:     ordinal,
			BBox:        sigildex.BBox{X: x0, Y: y0, W: x1 - x0, H: y1 - y0},
			Area:        area,
			Perimeter:   perimeter,
			Compactness: compactness,
			Path:        cropPath,
		})
	}

	return candidates, nil
}

// listPages returns the sorted page image paths in dir. A missing
// directory maps to ENOTFOUND.
func listPages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, sigildex.Errorf(sigildex.ENOTFOUND, "rendered pages not found in %s", dir)
		}
		return nil, err
	}

	var pages []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".png") {
			continue
		}
		pages = append(pages, filepath.Join(dir, e.Name()))
	}
	sort.Strings(pages)
	return pages, nil
}

// writeMetadata writes one JSON object per candidate, newline delimited.
func writeMetadata(path string, candidates []sigildex.Candidate) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	for i := range candidates {
		if err := enc.Encode(&candidates[i]); err != nil {
			f.Close()
			return err
		}
	}
	return f.Close()
}
