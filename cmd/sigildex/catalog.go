package main

import (
	"fmt"
	"strconv"

	"github.com/athanor/sigildex"
)

// Run executes the catalog command.
func (c *CatalogCmd) Run(deps *Dependencies) error {
	src, err := resolveSource(deps, c.Source)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sigildex.ErrorMessage(err))
		return err
	}

	symbol := &sigildex.Symbol{
		Name:            c.Name,
		Slug:            sigildex.Slugify(c.Name),
		Tradition:       c.Tradition,
		Class:           c.Class,
		Function:        c.Function,
		EvokesOrInvokes: c.EvokesOrInvokes,
		DeityOrSpirit:   c.DeityOrSpirit,
		Planet:          c.Planet,
		Element:         c.Element,
		SourceID:        src.ID,
		Tags:            c.Tags,
	}
	if c.Page > 0 {
		symbol.PageHint = strconv.Itoa(c.Page)
	}

	if err := deps.Symbols.UpsertSymbol(deps.Ctx, symbol); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sigildex.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Cataloged %q as %s\n", symbol.Name, symbol.Slug)
	return nil
}
