package sigildex

import (
	"context"
	"time"
)

// BBox is an axis-aligned bounding box in pixel coordinates. For cleaned
// glyphs it is always expressed in the post-rescale canvas.
type BBox struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Glyph stores one raster representation of a symbol.
type Glyph struct {
	ID            string    `json:"id"`
	SymbolID      string    `json:"symbolId"`
	Kind          string    `json:"kind"`
	Width         int       `json:"width"`
	Height        int       `json:"height"`
	DPI           int       `json:"dpi"`
	RasterPath    string    `json:"rasterPath"`
	ThumbPath     string    `json:"thumbPath"`
	TransparentBG bool      `json:"transparentBg"`
	BBox          *BBox     `json:"bbox"`
	HashSHA256    string    `json:"hashSha256"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Validate returns an error if the glyph contains invalid fields.
func (g *Glyph) Validate() error {
	if g.SymbolID == "" {
		return Errorf(EINVALID, "glyph symbol ID required")
	}
	if g.Kind == "" {
		return Errorf(EINVALID, "glyph kind required")
	}
	return nil
}

// GlyphService represents a service for managing glyph records.
type GlyphService interface {
	// UpsertGlyph creates the glyph when its ID is empty, otherwise
	// updates the existing record. The read-modify-write is atomic with
	// respect to concurrent upserts. Returns ENOTFOUND when updating a
	// glyph that does not exist.
	UpsertGlyph(ctx context.Context, glyph *Glyph) error

	// FindGlyphByRasterSuffix retrieves the glyph whose stored raster
	// path ends with the given filename. Returns ENOTFOUND if no glyph
	// matches.
	FindGlyphByRasterSuffix(ctx context.Context, filename string) (*Glyph, error)

	// FindGlyphsBySymbol retrieves all glyphs attached to a symbol.
	FindGlyphsBySymbol(ctx context.Context, symbolID string) ([]*Glyph, error)
}
