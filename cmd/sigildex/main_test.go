package main_test

import (
	"bytes"
	"context"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/athanor/sigildex"
	main "github.com/athanor/sigildex/cmd/sigildex"
	"github.com/athanor/sigildex/mock"
	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCLI executes one command against the given data directory, the way
// a fresh process invocation would.
func runCLI(t *testing.T, dataDir string, args ...string) (string, string, error) {
	t.Helper()

	m := main.NewMain()
	m.DataDir = dataDir

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	err := m.Run(context.Background(), args, stdout, stderr)
	return stdout.String(), stderr.String(), err
}

func TestRun_CatalogWorkflow(t *testing.T) {
	t.Parallel()

	dataDir := t.TempDir()

	doc := filepath.Join(t.TempDir(), "huld.pdf")
	require.NoError(t, os.WriteFile(doc, []byte("scan bytes"), 0644))
	manifest := filepath.Join(t.TempDir(), "sources.yaml")
	require.NoError(t, os.WriteFile(manifest, []byte(
		"- title: Huld Manuscript\n  local_path: "+doc+"\n  tradition: galdrastafir\n"), 0644))

	out, _, err := runCLI(t, dataDir, "ingest", "--from", manifest)
	require.NoError(t, err)
	assert.Contains(t, out, "Ingested 1 sources (0 failed)")

	out, _, err = runCLI(t, dataDir, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "huld-manuscript")
	assert.Contains(t, out, "Huld Manuscript")
	assert.Contains(t, out, "galdrastafir")

	out, _, err = runCLI(t, dataDir, "catalog",
		"--source", "huld-manuscript",
		"--name", "Vegvisir",
		"--tradition", "galdrastafir",
		"--class", "stave",
		"--function", "wayfinding",
		"--page", "27",
	)
	require.NoError(t, err)
	assert.Contains(t, out, `Cataloged "Vegvisir" as vegvisir`)

	out, _, err = runCLI(t, dataDir, "symbols", "vegv")
	require.NoError(t, err)
	assert.Contains(t, out, "Vegvisir")

	out, _, err = runCLI(t, dataDir, "show", "vegvisir")
	require.NoError(t, err)
	assert.Contains(t, out, "Vegvisir (vegvisir)")
	assert.Contains(t, out, "wayfinding")
	assert.Contains(t, out, "27")
	assert.Contains(t, out, "no glyphs")
}

func TestRun_ShowUnknownSymbol(t *testing.T) {
	t.Parallel()

	_, stderr, err := runCLI(t, t.TempDir(), "show", "ghost")
	require.Error(t, err)
	assert.Contains(t, stderr, "not found")
}

func TestRun_ListEmptyCatalog(t *testing.T) {
	t.Parallel()

	out, _, err := runCLI(t, t.TempDir(), "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No sources found")
}

func TestRun_HelpFlag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
	}{
		{"--help flag", []string{"--help"}},
		{"-h flag", []string{"-h"}},
		{"help command", []string{"help"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dataDir := t.TempDir()
			stdout, stderr, err := runCLI(t, dataDir, tt.args...)

			require.NoError(t, err)
			assert.Contains(t, stdout, "Usage: sigildex")
			assert.Contains(t, stdout, "Commands:")
			assert.Empty(t, stderr)

			// Help must not touch the data directory.
			_, statErr := os.Stat(filepath.Join(dataDir, "sigildex.db"))
			assert.True(t, os.IsNotExist(statErr))
		})
	}
}

func TestRun_NoArgs(t *testing.T) {
	t.Parallel()

	stdout, _, err := runCLI(t, t.TempDir())

	require.Error(t, err)
	assert.Contains(t, stdout, "Usage: sigildex")
}

func TestCmdClean_ThumbnailsNestPerBatch(t *testing.T) {
	t.Parallel()

	dataDir := t.TempDir()
	workDir := t.TempDir()
	inDir := filepath.Join(workDir, "crops")
	outDir := filepath.Join(workDir, "extracted-goetia")
	require.NoError(t, os.MkdirAll(inDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(inDir, "page0001_01.png"), []byte("img"), 0644))

	// The cleaner writes a real PNG so the thumbnailer has a source.
	cleaner := &mock.Cleaner{
		CleanFn: func(ctx context.Context, inPath, outPath string) (*sigildex.CleanResult, error) {
			require.NoError(t, os.MkdirAll(filepath.Dir(outPath), 0755))
			require.NoError(t, imaging.Save(imaging.New(8, 8, color.NRGBA{0, 0, 0, 255}), outPath))
			return &sigildex.CleanResult{Path: outPath, Width: 8, Height: 8, Hash: "h1"}, nil
		},
	}

	var upserted *sigildex.Glyph
	glyphs := &mock.GlyphService{
		FindGlyphByRasterSuffixFn: func(ctx context.Context, filename string) (*sigildex.Glyph, error) {
			return nil, sigildex.Errorf(sigildex.ENOTFOUND, "no glyph")
		},
		UpsertGlyphFn: func(ctx context.Context, glyph *sigildex.Glyph) error {
			upserted = glyph
			return nil
		},
	}
	symbols := &mock.SymbolService{
		FindSymbolBySlugFn: func(ctx context.Context, slug string) (*sigildex.Symbol, error) {
			return &sigildex.Symbol{ID: "sym-1", Slug: slug}, nil
		},
	}

	deps := &main.Dependencies{
		Ctx:     context.Background(),
		Stdout:  &bytes.Buffer{},
		Stderr:  &bytes.Buffer{},
		DataDir: dataDir,
		Cleaner: cleaner,
		Symbols: symbols,
		Glyphs:  glyphs,
	}

	cmd := &main.CleanCmd{In: inDir, Out: outDir, TargetPx: 2000}
	require.NoError(t, cmd.Run(deps))

	require.NotNil(t, upserted)
	wantThumb := filepath.Join(dataDir, "thumbs", "extracted-goetia", "page0001_01.png")
	assert.Equal(t, wantThumb, upserted.ThumbPath)
	_, err := os.Stat(wantThumb)
	assert.NoError(t, err)
}

func TestCmdRender(t *testing.T) {
	t.Parallel()

	notFoundByID := func(ctx context.Context, id string) (*sigildex.Source, error) {
		return nil, sigildex.Errorf(sigildex.ENOTFOUND, "source not found")
	}

	t.Run("resolves source by slug", func(t *testing.T) {
		t.Parallel()

		src := &sigildex.Source{ID: "src-1", Title: "Huld Manuscript", LocalPath: "/scans/huld.pdf"}
		sources := &mock.SourceService{
			FindSourceByIDFn: notFoundByID,
			FindSourcesFn: func(ctx context.Context, filter sigildex.SourceFilter) ([]*sigildex.Source, error) {
				return []*sigildex.Source{src}, nil
			},
		}

		var gotDoc, gotOut string
		var gotDPI int
		rasterizer := &mock.Rasterizer{
			RenderPagesFn: func(ctx context.Context, docPath, outDir string, dpi int) ([]string, error) {
				gotDoc, gotOut, gotDPI = docPath, outDir, dpi
				return []string{"page0001.png", "page0002.png"}, nil
			},
		}

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:        context.Background(),
			Stdout:     stdout,
			Stderr:     &bytes.Buffer{},
			DataDir:    "/data",
			Sources:    sources,
			Rasterizer: rasterizer,
		}

		cmd := &main.RenderCmd{Source: "huld-manuscript", DPI: 300}
		require.NoError(t, cmd.Run(deps))

		assert.Equal(t, "/scans/huld.pdf", gotDoc)
		assert.Equal(t, filepath.Join("/data", "raw_scans", "huld-manuscript"), gotOut)
		assert.Equal(t, 300, gotDPI)
		assert.Contains(t, stdout.String(), "Rendered 2 pages")
	})

	t.Run("unknown source", func(t *testing.T) {
		t.Parallel()

		sources := &mock.SourceService{
			FindSourceByIDFn: notFoundByID,
			FindSourcesFn: func(ctx context.Context, filter sigildex.SourceFilter) ([]*sigildex.Source, error) {
				return nil, nil
			},
		}

		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:     context.Background(),
			Stdout:  &bytes.Buffer{},
			Stderr:  stderr,
			Sources: sources,
		}

		cmd := &main.RenderCmd{Source: "ghost"}
		err := cmd.Run(deps)
		assert.Equal(t, sigildex.ENOTFOUND, sigildex.ErrorCode(err))
		assert.Contains(t, stderr.String(), "not found")
	})

	t.Run("source without local document", func(t *testing.T) {
		t.Parallel()

		sources := &mock.SourceService{
			FindSourceByIDFn: func(ctx context.Context, id string) (*sigildex.Source, error) {
				return &sigildex.Source{ID: id, Title: "Remote Only"}, nil
			},
		}

		deps := &main.Dependencies{
			Ctx:     context.Background(),
			Stdout:  &bytes.Buffer{},
			Stderr:  &bytes.Buffer{},
			Sources: sources,
		}

		cmd := &main.RenderCmd{Source: "src-1"}
		err := cmd.Run(deps)
		assert.Equal(t, sigildex.EINVALID, sigildex.ErrorCode(err))
	})
}
