// Package clean converts raster sigil images into cropped, transparent,
// resolution-normalized PNG assets with deterministic content hashes.
package clean

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io/fs"
	"math"
	"os"
	"path/filepath"

	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/paint"
	"github.com/anthonynsimon/bild/segment"
	"github.com/athanor/sigildex"
	"github.com/disintegration/imaging"
)

// Config holds the cleaning heuristics with their documented defaults.
type Config struct {
	// TargetPx is the longest side of the output canvas. Zero disables
	// rescaling.
	TargetPx int

	// KernelFrac scales the background-estimation kernel with image
	// size: kernel = max(KernelMin, round(max(w,h)*KernelFrac)), forced
	// odd. Larger images get more aggressive background removal.
	KernelFrac float64
	KernelMin  int

	// MedianRadius is the speckle-removal median radius; 2 means a 5x5
	// window.
	MedianRadius int

	// MorphRadius is the radius of the opening-then-closing pass that
	// strips stray pixels and fills small gaps; 1 means 3x3.
	MorphRadius int
}

// DefaultConfig returns the cleaning defaults.
func DefaultConfig() Config {
	return Config{
		TargetPx:     2000,
		KernelFrac:   0.015,
		KernelMin:    5,
		MedianRadius: 2,
		MorphRadius:  1,
	}
}

// Compile-time interface verification.
var _ sigildex.Cleaner = (*Cleaner)(nil)

// Cleaner implements sigildex.Cleaner with deterministic segmentation:
// no learned models, no retries, same input always yields the same hash.
type Cleaner struct {
	Config Config
}

// NewCleaner creates a Cleaner with the given config.
func NewCleaner(cfg Config) *Cleaner {
	return &Cleaner{Config: cfg}
}

// Clean reads one raster image and writes a transparent-background,
// rescaled PNG to outPath, returning dimensions, the tight bounding box
// of surviving pixels, and the SHA-256 of the rescaled pixel buffer in
// R,G,B,A order. The output file is written atomically: no partial file
// is ever left at outPath.
func (c *Cleaner) Clean(ctx context.Context, inPath, outPath string) (*sigildex.CleanResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src, err := imaging.Open(inPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, sigildex.Errorf(sigildex.ENOTFOUND, "image not found: %s", inPath)
		}
		return nil, sigildex.Errorf(sigildex.EINVALID, "cannot decode image %s: %v", inPath, err)
	}

	// Strip any pre-existing alpha; the analysis runs on opaque color.
	rgb := imaging.Clone(src)
	w := rgb.Bounds().Dx()
	h := rgb.Bounds().Dy()
	for i := 3; i < len(rgb.Pix); i += 4 {
		rgb.Pix[i] = 0xff
	}

	mask := c.segment(rgb)

	// The denoised mask becomes the alpha channel of the output.
	out := imaging.Clone(rgb)
	for i := 0; i < w*h; i++ {
		out.Pix[i*4+3] = mask.Pix[i]
	}

	out = c.rescale(out)
	outW := out.Bounds().Dx()
	outH := out.Bounds().Dy()

	// The bounding box is recomputed from the rescaled alpha so it lives
	// in the output canvas's coordinate space. A fully transparent
	// result falls back to the full canvas and is flagged degenerate.
	bbox, degenerate := alphaBBox(out)

	if err := writeAtomic(outPath, out); err != nil {
		return nil, err
	}

	sum := sha256.Sum256(out.Pix)

	return &sigildex.CleanResult{
		Path:       outPath,
		Width:      outW,
		Height:     outH,
		BBox:       bbox,
		Hash:       hex.EncodeToString(sum[:]),
		Degenerate: degenerate,
	}, nil
}

// segment produces the binary ink mask for an opaque color image.
func (c *Cleaner) segment(rgb *image.NRGBA) *image.Gray {
	gray := grayOf(rgb)
	w := gray.Bounds().Dx()
	h := gray.Bounds().Dy()

	// Estimate the local background by morphological opening with a
	// kernel that scales with image size, then subtract it to flatten
	// uneven scan lighting before thresholding.
	kernel := int(math.Round(float64(max(w, h)) * c.Config.KernelFrac))
	if kernel < c.Config.KernelMin {
		kernel = c.Config.KernelMin
	}
	if kernel%2 == 0 {
		kernel++
	}
	radius := float64(kernel / 2)
	background := effect.Dilate(effect.Erode(gray, radius), radius)
	normalized := subtract(gray, background)

	// Global data-driven threshold; no per-image tuning.
	level := otsuLevel(normalized)
	mask := segment.Threshold(normalized, clampLevel(int(level)+1))

	mask = removeExteriorBackground(mask)

	// Speckle removal, then opening-then-closing. The order matters:
	// stray pixels are stripped before small gaps are filled.
	den := effect.Median(mask, float64(c.Config.MedianRadius))
	mr := float64(c.Config.MorphRadius)
	opened := effect.Dilate(effect.Erode(den, mr), mr)
	closed := effect.Erode(effect.Dilate(opened, mr), mr)

	return binarize(grayOf(closed))
}

// removeExteriorBackground flood-fills the inverted mask from the
// top-left corner and treats everything the fill reaches as definitive
// background. Enclosed strokes survive; strokes touching the image
// border survive unless they are path-connected to the seed through
// background pixels.
//
// Known limitation, preserved deliberately: when the crop was cut
// exactly to the ink and pixel (0,0) is foreground, the fill has no
// effect and the mask passes through unchanged.
func removeExteriorBackground(mask *image.Gray) *image.Gray {
	w := mask.Bounds().Dx()
	h := mask.Bounds().Dy()
	if w == 0 || h == 0 {
		return mask
	}
	if mask.GrayAt(0, 0).Y != 0 {
		return mask
	}

	inverted := imaging.Invert(mask)
	filled := paint.FloodFill(inverted, image.Pt(0, 0), color.RGBA{A: 0xff}, 0)

	// Pixels the fill cleared are reachable exterior background; keep
	// only mask foreground outside that region.
	out := image.NewGray(mask.Bounds())
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			reached := inverted.NRGBAAt(x, y).R != filled.RGBAAt(x, y).R
			if !reached && mask.GrayAt(x, y).Y != 0 {
				out.SetGray(x, y, color.Gray{Y: 0xff})
			}
		}
	}
	return out
}

// rescale resizes so the longest side equals TargetPx, preserving aspect
// ratio. Shrinking uses an area-averaging filter and enlarging a bicubic
// one; the distinction matters for visual fidelity. Degenerate target
// scales fall back to the original size unscaled.
func (c *Cleaner) rescale(img *image.NRGBA) *image.NRGBA {
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	longest := max(w, h)
	if c.Config.TargetPx <= 0 || longest == c.Config.TargetPx || longest == 0 {
		return img
	}

	scale := float64(c.Config.TargetPx) / float64(longest)
	nw := int(math.Round(float64(w) * scale))
	nh := int(math.Round(float64(h) * scale))
	if nw <= 0 || nh <= 0 {
		return img
	}

	filter := imaging.CatmullRom
	if scale < 1 {
		filter = imaging.Box
	}
	return imaging.Resize(img, nw, nh, filter)
}

// alphaBBox returns the minimal rectangle containing all pixels with
// alpha > 0, or the full canvas (degenerate=true) when none survive.
func alphaBBox(img *image.NRGBA) (sigildex.BBox, bool) {
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()

	minX, minY := w, h
	maxX, maxY := -1, -1
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for x := 0; x < w; x++ {
			if row[x*4+3] > 0 {
				if x < minX {
					minX = x
				}
				if x > maxX {
					maxX = x
				}
				if y < minY {
					minY = y
				}
				if y > maxY {
					maxY = y
				}
			}
		}
	}

	if maxX < 0 {
		return sigildex.BBox{X: 0, Y: 0, W: w, H: h}, true
	}
	return sigildex.BBox{X: minX, Y: minY, W: maxX - minX + 1, H: maxY - minY + 1}, false
}

// writeAtomic encodes the PNG to a temp file in the target directory and
// renames it into place, creating parent directories as needed.
func writeAtomic(path string, img image.Image) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".sigil-*.png")
	if err != nil {
		return err
	}
	if err := png.Encode(tmp, img); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
