package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/athanor/sigildex"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ sigildex.GlyphService = (*GlyphService)(nil)

// GlyphService implements sigildex.GlyphService using SQLite.
type GlyphService struct {
	db *DB
}

// NewGlyphService creates a new GlyphService.
func NewGlyphService(db *DB) *GlyphService {
	return &GlyphService{db: db}
}

const glyphColumns = "id, symbol_id, kind, width, height, dpi, raster_path, thumb_path, transparent_bg, bbox, hash_sha256, created_at"

// UpsertGlyph creates the glyph when its ID is empty, otherwise updates
// the existing record inside a transaction so concurrent upserts on the
// same glyph can't interleave. Only non-zero incoming fields overwrite
// stored values on update.
func (s *GlyphService) UpsertGlyph(ctx context.Context, glyph *sigildex.Glyph) error {
	if err := glyph.Validate(); err != nil {
		return err
	}

	if glyph.ID == "" {
		glyph.ID = uuid.New().String()
		glyph.CreatedAt = time.Now().UTC()

		_, err := s.db.ExecContext(ctx, `
			INSERT INTO glyph_images (`+glyphColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, glyph.ID, glyph.SymbolID, glyph.Kind, glyph.Width, glyph.Height, glyph.DPI,
			glyph.RasterPath, glyph.ThumbPath, glyph.TransparentBG,
			marshalBBox(glyph.BBox), glyph.HashSHA256,
			glyph.CreatedAt.Format(time.RFC3339))
		return err
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		SELECT `+glyphColumns+` FROM glyph_images WHERE id = ?
	`, glyph.ID)

	existing, err := scanGlyph(row)
	if err == sql.ErrNoRows {
		return sigildex.Errorf(sigildex.ENOTFOUND, "glyph not found")
	}
	if err != nil {
		return err
	}

	mergeGlyph(existing, glyph)
	*glyph = *existing

	_, err = tx.ExecContext(ctx, `
		UPDATE glyph_images
		SET symbol_id = ?, kind = ?, width = ?, height = ?, dpi = ?, raster_path = ?,
			thumb_path = ?, transparent_bg = ?, bbox = ?, hash_sha256 = ?
		WHERE id = ?
	`, glyph.SymbolID, glyph.Kind, glyph.Width, glyph.Height, glyph.DPI,
		glyph.RasterPath, glyph.ThumbPath, glyph.TransparentBG,
		marshalBBox(glyph.BBox), glyph.HashSHA256, glyph.ID)
	if err != nil {
		return err
	}
	return tx.Commit()
}

// FindGlyphByRasterSuffix retrieves the glyph whose raster path ends with
// the given filename, newest first when several match. This is how batch
// results are linked back to glyph records seeded with file references.
func (s *GlyphService) FindGlyphByRasterSuffix(ctx context.Context, filename string) (*sigildex.Glyph, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+glyphColumns+` FROM glyph_images
		WHERE raster_path LIKE '%' || ?
		ORDER BY created_at DESC, id
		LIMIT 1
	`, filename)

	glyph, err := scanGlyph(row)
	if err == sql.ErrNoRows {
		return nil, sigildex.Errorf(sigildex.ENOTFOUND, "no glyph references %q", filename)
	}
	if err != nil {
		return nil, err
	}
	return glyph, nil
}

// FindGlyphsBySymbol retrieves all glyphs attached to a symbol, oldest
// first.
func (s *GlyphService) FindGlyphsBySymbol(ctx context.Context, symbolID string) ([]*sigildex.Glyph, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+glyphColumns+` FROM glyph_images
		WHERE symbol_id = ?
		ORDER BY created_at, id
	`, symbolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var glyphs []*sigildex.Glyph
	for rows.Next() {
		glyph, err := scanGlyph(rows)
		if err != nil {
			return nil, err
		}
		glyphs = append(glyphs, glyph)
	}
	return glyphs, rows.Err()
}

// mergeGlyph overlays non-zero incoming fields onto the stored record.
func mergeGlyph(dst, src *sigildex.Glyph) {
	if src.SymbolID != "" {
		dst.SymbolID = src.SymbolID
	}
	if src.Kind != "" {
		dst.Kind = src.Kind
	}
	if src.Width != 0 {
		dst.Width = src.Width
	}
	if src.Height != 0 {
		dst.Height = src.Height
	}
	if src.DPI != 0 {
		dst.DPI = src.DPI
	}
	if src.RasterPath != "" {
		dst.RasterPath = src.RasterPath
	}
	if src.ThumbPath != "" {
		dst.ThumbPath = src.ThumbPath
	}
	if src.TransparentBG {
		dst.TransparentBG = true
	}
	if src.BBox != nil {
		dst.BBox = src.BBox
	}
	if src.HashSHA256 != "" {
		dst.HashSHA256 = src.HashSHA256
	}
}

func scanGlyph(row rowScanner) (*sigildex.Glyph, error) {
	var glyph sigildex.Glyph
	var bbox, createdAt string

	if err := row.Scan(&glyph.ID, &glyph.SymbolID, &glyph.Kind, &glyph.Width,
		&glyph.Height, &glyph.DPI, &glyph.RasterPath, &glyph.ThumbPath,
		&glyph.TransparentBG, &bbox, &glyph.HashSHA256, &createdAt); err != nil {
		return nil, err
	}

	glyph.BBox = unmarshalBBox(bbox)

	var err error
	glyph.CreatedAt, err = parseRFC3339(createdAt, "created_at")
	if err != nil {
		return nil, err
	}
	return &glyph, nil
}
