package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/athanor/sigildex/clean"
	"github.com/athanor/sigildex/fitz"
	sighttp "github.com/athanor/sigildex/http"
	sigslog "github.com/athanor/sigildex/slog"
	"github.com/athanor/sigildex/sqlite"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Root of the on-disk data layout. Set before calling Run().
	DataDir string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DataDir: defaultDataDir(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	// Initialize dependencies struct for Kong binding
	deps := &Dependencies{
		Ctx:     ctx,
		Stdout:  stdout,
		Stderr:  stderr,
		DataDir: m.DataDir,
	}

	// Create Kong parser with dependency binding
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("sigildex"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	// Handle help flags using Kong
	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'sigildex --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	// Parse arguments first to know which command and its flags
	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(m.DataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory %q: %w", m.DataDir, err)
	}

	// Open database
	m.DB = sqlite.NewDB(filepath.Join(m.DataDir, "sigildex.db"))
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set SIGILDEX_DATA to use a different data directory\n")
		return fmt.Errorf("failed to open database in %q: %w", m.DataDir, err)
	}
	defer m.Close()

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	// Wire core services into dependencies
	deps.DB = m.DB
	deps.Logger = logger
	deps.Sources = sqlite.NewSourceService(m.DB)
	deps.Symbols = sqlite.NewSymbolService(m.DB)
	deps.Glyphs = sqlite.NewGlyphService(m.DB)
	deps.Rites = sqlite.NewRiteService(m.DB)

	// Wire command-specific dependencies based on command
	switch cmd {
	case "ingest":
		deps.Downloader = sighttp.NewDownloader(sighttp.WithRateLimit(1.0))
	case "render":
		deps.Rasterizer = sigslog.NewLoggingRasterizer(fitz.NewRenderer(logger), logger)
	case "clean":
		cfg := clean.DefaultConfig()
		cfg.TargetPx = cli.Clean.TargetPx
		deps.Cleaner = sigslog.NewLoggingCleaner(clean.NewCleaner(cfg), logger)
	}

	return kongCtx.Run(deps)
}

func defaultDataDir() string {
	if dir := os.Getenv("SIGILDEX_DATA"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".sigildex"
	}
	return filepath.Join(home, ".sigildex")
}
