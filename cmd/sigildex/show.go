package main

import (
	"fmt"
	"strings"

	"github.com/athanor/sigildex"
)

// Run executes the show command.
func (c *ShowCmd) Run(deps *Dependencies) error {
	symbol, err := deps.Symbols.FindSymbolBySlug(deps.Ctx, c.Slug)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sigildex.ErrorMessage(err))
		return err
	}

	glyphs, err := deps.Glyphs.FindGlyphsBySymbol(deps.Ctx, symbol.ID)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sigildex.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "%s (%s)\n", symbol.Name, symbol.Slug)
	field := func(label, value string) {
		if value != "" {
			fmt.Fprintf(deps.Stdout, "  %-16s %s\n", label, value)
		}
	}
	field("Tradition", symbol.Tradition)
	field("Class", symbol.Class)
	field("Function", symbol.Function)
	field("Evokes/invokes", symbol.EvokesOrInvokes)
	field("Deity/spirit", symbol.DeityOrSpirit)
	field("Planet", symbol.Planet)
	field("Element", symbol.Element)
	field("Page", symbol.PageHint)
	field("Tags", strings.Join(symbol.Tags, ", "))

	if len(glyphs) == 0 {
		fmt.Fprintln(deps.Stdout, "  no glyphs")
		return nil
	}

	fmt.Fprintf(deps.Stdout, "  Glyphs (%d):\n", len(glyphs))
	for _, g := range glyphs {
		fmt.Fprintf(deps.Stdout, "    %s  %dx%d  %s\n", g.Kind, g.Width, g.Height, g.RasterPath)
	}

	return nil
}
