package main

import (
	"fmt"
	"path/filepath"

	"github.com/athanor/sigildex"
	"github.com/athanor/sigildex/ingest"
)

// Run executes the ingest command.
func (c *IngestCmd) Run(deps *Dependencies) error {
	ing := ingest.NewIngester(deps.Sources, deps.Downloader, deps.Logger)

	res, err := ing.Run(deps.Ctx, c.From, filepath.Join(deps.DataDir, "raw"))
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sigildex.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Ingested %d sources (%d failed)\n", res.Ingested, res.Failed)
	return nil
}
