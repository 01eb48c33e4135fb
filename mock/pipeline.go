package mock

import (
	"context"

	"github.com/athanor/sigildex"
)

var _ sigildex.Rasterizer = (*Rasterizer)(nil)

// Rasterizer is a mock implementation of sigildex.Rasterizer.
type Rasterizer struct {
	RenderPagesFn func(ctx context.Context, docPath, outDir string, dpi int) ([]string, error)
}

func (r *Rasterizer) RenderPages(ctx context.Context, docPath, outDir string, dpi int) ([]string, error) {
	return r.RenderPagesFn(ctx, docPath, outDir, dpi)
}

var _ sigildex.Cleaner = (*Cleaner)(nil)

// Cleaner is a mock implementation of sigildex.Cleaner.
type Cleaner struct {
	CleanFn func(ctx context.Context, inPath, outPath string) (*sigildex.CleanResult, error)
}

func (c *Cleaner) Clean(ctx context.Context, inPath, outPath string) (*sigildex.CleanResult, error) {
	return c.CleanFn(ctx, inPath, outPath)
}

var _ sigildex.Downloader = (*Downloader)(nil)

// Downloader is a mock implementation of sigildex.Downloader.
type Downloader struct {
	DownloadFn func(ctx context.Context, rawURL, destDir, baseName string) (string, error)
}

func (d *Downloader) Download(ctx context.Context, rawURL, destDir, baseName string) (string, error) {
	return d.DownloadFn(ctx, rawURL, destDir, baseName)
}
