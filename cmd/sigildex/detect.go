package main

import (
	"fmt"
	"path/filepath"

	"github.com/athanor/sigildex"
	"github.com/athanor/sigildex/detect"
)

// Run executes the detect command.
func (c *DetectCmd) Run(deps *Dependencies) error {
	src, err := resolveSource(deps, c.Source)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sigildex.ErrorMessage(err))
		return err
	}

	cfg := detect.DefaultConfig()
	cfg.MinArea = c.MinArea
	cfg.MaxArea = c.MaxArea
	d := detect.NewDetector(cfg, deps.Logger)

	scanDir := filepath.Join(deps.DataDir, "raw_scans", src.Slug())
	outDir := filepath.Join(deps.DataDir, "extracted", src.Slug())

	candidates, err := d.DetectSource(deps.Ctx, src.ID, src.Slug(), scanDir, outDir)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sigildex.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Found %d candidate sigils in %s\n", len(candidates), outDir)
	return nil
}
