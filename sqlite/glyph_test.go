package sqlite_test

import (
	"context"
	"testing"

	"github.com/athanor/sigildex"
	"github.com/athanor/sigildex/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedSymbol(t *testing.T, db *sqlite.DB, slug string) *sigildex.Symbol {
	t.Helper()
	symbol := &sigildex.Symbol{Name: slug, Slug: slug}
	require.NoError(t, sqlite.NewSymbolService(db).UpsertSymbol(context.Background(), symbol))
	return symbol
}

func TestGlyphService_UpsertGlyph(t *testing.T) {
	t.Parallel()

	t.Run("creates glyph when ID is empty", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewGlyphService(db)
		ctx := context.Background()
		symbol := seedSymbol(t, db, "seal-of-bael")

		glyph := &sigildex.Glyph{
			SymbolID:      symbol.ID,
			Kind:          "extracted",
			Width:         2000,
			Height:        1400,
			RasterPath:    "/data/symbols/seal-of-bael.png",
			TransparentBG: true,
			BBox:          &sigildex.BBox{X: 10, Y: 20, W: 300, H: 400},
			HashSHA256:    "deadbeef",
		}
		require.NoError(t, svc.UpsertGlyph(ctx, glyph))
		assert.NotEmpty(t, glyph.ID)
		assert.False(t, glyph.CreatedAt.IsZero())
	})

	t.Run("updates existing glyph by ID", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewGlyphService(db)
		ctx := context.Background()
		symbol := seedSymbol(t, db, "seal-of-bael")

		glyph := &sigildex.Glyph{SymbolID: symbol.ID, Kind: "extracted", RasterPath: "/a.png"}
		require.NoError(t, svc.UpsertGlyph(ctx, glyph))

		update := &sigildex.Glyph{
			ID:         glyph.ID,
			SymbolID:   symbol.ID,
			Kind:       "extracted",
			HashSHA256: "cafebabe",
			BBox:       &sigildex.BBox{X: 1, Y: 2, W: 3, H: 4},
		}
		require.NoError(t, svc.UpsertGlyph(ctx, update))

		// Merge keeps the original path and applies new fields.
		assert.Equal(t, "/a.png", update.RasterPath)
		assert.Equal(t, "cafebabe", update.HashSHA256)

		glyphs, err := svc.FindGlyphsBySymbol(ctx, symbol.ID)
		require.NoError(t, err)
		require.Len(t, glyphs, 1)
		assert.Equal(t, &sigildex.BBox{X: 1, Y: 2, W: 3, H: 4}, glyphs[0].BBox)
	})

	t.Run("returns ENOTFOUND for update of missing ID", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewGlyphService(db)
		seedSymbol(t, db, "seal-of-bael")

		glyph := &sigildex.Glyph{ID: "ghost", SymbolID: "x", Kind: "extracted"}
		err := svc.UpsertGlyph(context.Background(), glyph)
		require.Error(t, err)
		assert.Equal(t, sigildex.ENOTFOUND, sigildex.ErrorCode(err))
	})

	t.Run("returns EINVALID without symbol ID", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewGlyphService(db)

		err := svc.UpsertGlyph(context.Background(), &sigildex.Glyph{Kind: "extracted"})
		require.Error(t, err)
		assert.Equal(t, sigildex.EINVALID, sigildex.ErrorCode(err))
	})
}

func TestGlyphService_FindGlyphByRasterSuffix(t *testing.T) {
	t.Parallel()

	t.Run("matches stored path by filename", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewGlyphService(db)
		ctx := context.Background()
		symbol := seedSymbol(t, db, "seal-of-bael")

		glyph := &sigildex.Glyph{
			SymbolID:   symbol.ID,
			Kind:       "extracted",
			RasterPath: "/data/symbols/seal-of-bael.png",
		}
		require.NoError(t, svc.UpsertGlyph(ctx, glyph))

		found, err := svc.FindGlyphByRasterSuffix(ctx, "seal-of-bael.png")
		require.NoError(t, err)
		assert.Equal(t, glyph.ID, found.ID)
	})

	t.Run("returns ENOTFOUND when nothing matches", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewGlyphService(db)

		_, err := svc.FindGlyphByRasterSuffix(context.Background(), "missing.png")
		require.Error(t, err)
		assert.Equal(t, sigildex.ENOTFOUND, sigildex.ErrorCode(err))
	})
}

func TestGlyphService_FindGlyphsBySymbol(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	svc := sqlite.NewGlyphService(db)
	ctx := context.Background()
	bael := seedSymbol(t, db, "seal-of-bael")
	paimon := seedSymbol(t, db, "seal-of-paimon")

	for _, path := range []string{"/a.png", "/b.png"} {
		require.NoError(t, svc.UpsertGlyph(ctx, &sigildex.Glyph{
			SymbolID: bael.ID, Kind: "extracted", RasterPath: path,
		}))
	}
	require.NoError(t, svc.UpsertGlyph(ctx, &sigildex.Glyph{
		SymbolID: paimon.ID, Kind: "extracted", RasterPath: "/c.png",
	}))

	glyphs, err := svc.FindGlyphsBySymbol(ctx, bael.ID)
	require.NoError(t, err)
	assert.Len(t, glyphs, 2)
}
