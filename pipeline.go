package sigildex

import "context"

// Rasterizer renders a source document into one raster image per page.
// The catalog core consumes only its output: an ordered sequence of page
// images named page0001.png, page0002.png, ... in the output directory.
type Rasterizer interface {
	// RenderPages renders every page of the document at docPath into
	// outDir at the given DPI and returns the saved paths in page order.
	// Returns ENOTFOUND if the document is missing and EINVALID if it
	// cannot be opened.
	RenderPages(ctx context.Context, docPath, outDir string, dpi int) ([]string, error)
}

// CleanResult is the cleaning pipeline's outcome for one input raster.
// Width and Height always reflect the post-rescale canvas; BBox is
// expressed in that same canvas's coordinate space.
type CleanResult struct {
	Path   string `json:"path"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	BBox   BBox   `json:"bbox"`

	// Hash is the SHA-256 digest of the raw rescaled pixel buffer in
	// R, G, B, A channel order. The channel order is part of the hash
	// contract; changing it would break comparability across runs.
	Hash string `json:"hash"`

	// Degenerate reports that no pixel survived segmentation. The BBox
	// then covers the full canvas and downstream consumers must treat
	// the result as low-confidence.
	Degenerate bool `json:"degenerate"`
}

// Cleaner converts a raster sigil image into a cropped, transparent,
// resolution-normalized PNG.
type Cleaner interface {
	// Clean reads the image at inPath and writes the cleaned PNG to
	// outPath, creating parent directories as needed. The output file is
	// only written on full success. Returns EINVALID if the input cannot
	// be decoded and ENOTFOUND if it is missing.
	Clean(ctx context.Context, inPath, outPath string) (*CleanResult, error)
}

// Downloader retrieves a remote source document to local storage.
type Downloader interface {
	// Download fetches rawURL into destDir using baseName plus a suffix
	// guessed from the URL path or response content type. Returns the
	// saved path.
	Download(ctx context.Context, rawURL, destDir, baseName string) (string, error)
}
