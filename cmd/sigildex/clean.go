package main

import (
	"fmt"
	"path/filepath"

	"github.com/athanor/sigildex"
	"github.com/athanor/sigildex/batch"
)

// Run executes the clean command.
func (c *CleanCmd) Run(deps *Dependencies) error {
	cfg := batch.DefaultConfig()
	cfg.SymbolSlug = c.Symbol
	runner := batch.NewRunner(deps.Cleaner, deps.Symbols, deps.Glyphs, cfg, deps.Logger)

	// Thumbnails nest per batch so crops from different sources with the
	// same page-derived names don't overwrite each other.
	thumbDir := filepath.Join(deps.DataDir, "thumbs", filepath.Base(c.Out))

	res, err := runner.Run(deps.Ctx, c.In, c.Out, thumbDir)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sigildex.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Cleaned %d images: %d linked, %d skipped, %d failed\n",
		res.Cleaned, res.Linked, res.Skipped, res.Failed)
	if res.Duplicates > 0 {
		fmt.Fprintf(deps.Stdout, "  %d duplicate content hashes flagged\n", res.Duplicates)
	}
	return nil
}
