package main

import (
	"fmt"

	"github.com/athanor/sigildex"
)

// Run executes the symbols command.
func (c *SymbolsCmd) Run(deps *Dependencies) error {
	symbols, err := deps.Symbols.FindSymbols(deps.Ctx, sigildex.SymbolFilter{Query: c.Query})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sigildex.ErrorMessage(err))
		return err
	}

	if len(symbols) == 0 {
		fmt.Fprintln(deps.Stdout, "No symbols found. Use 'sigildex catalog' to record one.")
		return nil
	}

	for _, s := range symbols {
		fmt.Fprintf(deps.Stdout, "%s  %s  %s  %s\n", s.Slug, s.Name, s.Tradition, s.DeityOrSpirit)
	}

	return nil
}
