package main

import (
	"fmt"
	"path/filepath"

	"github.com/athanor/sigildex"
)

// Run executes the render command.
func (c *RenderCmd) Run(deps *Dependencies) error {
	src, err := resolveSource(deps, c.Source)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sigildex.ErrorMessage(err))
		return err
	}

	if src.LocalPath == "" {
		err := sigildex.Errorf(sigildex.EINVALID, "source %q has no local document; ingest it first", src.Title)
		fmt.Fprintf(deps.Stderr, "error: %s\n", sigildex.ErrorMessage(err))
		return err
	}

	outDir := filepath.Join(deps.DataDir, "raw_scans", src.Slug())
	pages, err := deps.Rasterizer.RenderPages(deps.Ctx, src.LocalPath, outDir, c.DPI)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sigildex.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Rendered %d pages to %s\n", len(pages), outDir)
	return nil
}
