package main

import (
	"fmt"

	"github.com/athanor/sigildex"
)

// Run executes the list command.
func (c *ListCmd) Run(deps *Dependencies) error {
	sources, err := deps.Sources.FindSources(deps.Ctx, sigildex.SourceFilter{})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sigildex.ErrorMessage(err))
		return err
	}

	if len(sources) == 0 {
		fmt.Fprintln(deps.Stdout, "No sources found. Use 'sigildex ingest' to add some.")
		return nil
	}

	for _, s := range sources {
		fmt.Fprintf(deps.Stdout, "%s  %s  %s  %s\n", s.ID, s.Slug(), s.Title, s.Tradition)
	}

	return nil
}
