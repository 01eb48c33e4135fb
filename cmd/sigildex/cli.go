package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/athanor/sigildex"
	"github.com/athanor/sigildex/sqlite"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx     context.Context
	Stdout  io.Writer
	Stderr  io.Writer
	DB      *sqlite.DB
	DataDir string
	Logger  *slog.Logger

	Sources sigildex.SourceService
	Symbols sigildex.SymbolService
	Glyphs  sigildex.GlyphService
	Rites   sigildex.RiteService

	Rasterizer sigildex.Rasterizer
	Cleaner    sigildex.Cleaner
	Downloader sigildex.Downloader
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Ingest  IngestCmd  `cmd:"" help:"Acquire source documents from a manifest"`
	Render  RenderCmd  `cmd:"" help:"Render a source document into page images"`
	Detect  DetectCmd  `cmd:"" help:"Scan rendered pages for candidate sigils"`
	Clean   CleanCmd   `cmd:"" help:"Clean candidate crops and link them to symbols"`
	Catalog CatalogCmd `cmd:"" help:"Record a symbol's meaning"`
	List    ListCmd    `cmd:"" help:"List cataloged sources"`
	Symbols SymbolsCmd `cmd:"" help:"List symbols, optionally filtered"`
	Show    ShowCmd    `cmd:"" help:"Show a symbol and its glyphs"`
}

// IngestCmd is the "ingest" subcommand.
type IngestCmd struct {
	From string `required:"" help:"YAML manifest of source documents"`
}

// RenderCmd is the "render" subcommand.
type RenderCmd struct {
	Source string `arg:"" help:"Source ID or slug"`
	DPI    int    `default:"300" help:"Render resolution in dots per inch"`
}

// DetectCmd is the "detect" subcommand.
type DetectCmd struct {
	Source  string  `arg:"" help:"Source ID or slug"`
	MinArea float64 `default:"800" help:"Minimum contour area in pixels"`
	MaxArea float64 `default:"0.25" help:"Maximum contour area; values <= 1 are a fraction of the page area"`
}

// CleanCmd is the "clean" subcommand.
type CleanCmd struct {
	In       string `required:"" help:"Directory of candidate crops"`
	Out      string `required:"" help:"Directory for cleaned PNGs"`
	TargetPx int    `name:"target-px" default:"2000" help:"Longest side of the cleaned output"`
	Symbol   string `help:"Link every cleaned image to this symbol slug"`
}

// CatalogCmd is the "catalog" subcommand.
type CatalogCmd struct {
	Source          string   `required:"" help:"Source ID or slug"`
	Name            string   `required:"" help:"Symbol name"`
	Tradition       string   `help:"Magical tradition"`
	Class           string   `help:"Symbol class, e.g. seal, stave, pentacle"`
	Function        string   `help:"What the symbol is for"`
	EvokesOrInvokes string   `name:"evokes-or-invokes" help:"Whether the symbol evokes or invokes"`
	DeityOrSpirit   string   `name:"deity-or-spirit" help:"Associated deity or spirit"`
	Planet          string   `help:"Planetary correspondence"`
	Element         string   `help:"Elemental correspondence"`
	Page            int      `help:"Page of the source where the symbol appears"`
	Tags            []string `help:"Free-form tags (repeatable)"`
}

// ListCmd is the "list" subcommand.
type ListCmd struct{}

// SymbolsCmd is the "symbols" subcommand.
type SymbolsCmd struct {
	Query string `arg:"" optional:"" help:"Filter by name, slug, deity or tradition"`
}

// ShowCmd is the "show" subcommand.
type ShowCmd struct {
	Slug string `arg:"" help:"Symbol slug"`
}
