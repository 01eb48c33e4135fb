package mock

import (
	"context"

	"github.com/athanor/sigildex"
)

var _ sigildex.GlyphService = (*GlyphService)(nil)

// GlyphService is a mock implementation of sigildex.GlyphService.
type GlyphService struct {
	UpsertGlyphFn             func(ctx context.Context, glyph *sigildex.Glyph) error
	FindGlyphByRasterSuffixFn func(ctx context.Context, filename string) (*sigildex.Glyph, error)
	FindGlyphsBySymbolFn      func(ctx context.Context, symbolID string) ([]*sigildex.Glyph, error)
}

func (s *GlyphService) UpsertGlyph(ctx context.Context, glyph *sigildex.Glyph) error {
	return s.UpsertGlyphFn(ctx, glyph)
}

func (s *GlyphService) FindGlyphByRasterSuffix(ctx context.Context, filename string) (*sigildex.Glyph, error) {
	return s.FindGlyphByRasterSuffixFn(ctx, filename)
}

func (s *GlyphService) FindGlyphsBySymbol(ctx context.Context, symbolID string) ([]*sigildex.Glyph, error) {
	return s.FindGlyphsBySymbolFn(ctx, symbolID)
}
