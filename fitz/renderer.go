// Package fitz renders source documents into per-page raster images
// using MuPDF. PDFs, EPUBs and multi-page image formats all come out as
// a uniform sequence of PNG pages.
package fitz

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/athanor/sigildex"
	"github.com/disintegration/imaging"
	"github.com/gen2brain/go-fitz"
)

// Compile-time interface verification.
var _ sigildex.Rasterizer = (*Renderer)(nil)

// Renderer implements sigildex.Rasterizer with go-fitz.
type Renderer struct {
	logger *slog.Logger
}

// NewRenderer creates a Renderer. A nil logger disables logging.
func NewRenderer(logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Renderer{logger: logger}
}

// RenderPages renders every page of the document at docPath into outDir
// at the given DPI, naming pages page0001.png, page0002.png, ... so a
// lexical sort recovers page order. Returns the saved paths.
func (r *Renderer) RenderPages(ctx context.Context, docPath, outDir string, dpi int) ([]string, error) {
	if _, err := os.Stat(docPath); os.IsNotExist(err) {
		return nil, sigildex.Errorf(sigildex.ENOTFOUND, "document not found: %s", docPath)
	}

	doc, err := fitz.New(docPath)
	if err != nil {
		return nil, sigildex.Errorf(sigildex.EINVALID, "cannot open document %s: %v", docPath, err)
	}
	defer doc.Close()

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, err
	}

	total := doc.NumPage()
	r.logger.Info("rendering pages", "doc", filepath.Base(docPath), "pages", total, "dpi", dpi)

	paths := make([]string, 0, total)
	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		img, err := doc.ImageDPI(i, float64(dpi))
		if err != nil {
			return nil, sigildex.Errorf(sigildex.EINTERNAL, "render page %d of %s: %v", i+1, filepath.Base(docPath), err)
		}

		path := filepath.Join(outDir, fmt.Sprintf("page%04d.png", i+1))
		if err := imaging.Save(img, path); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}

	return paths, nil
}
