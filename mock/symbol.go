package mock

import (
	"context"

	"github.com/athanor/sigildex"
)

var _ sigildex.SymbolService = (*SymbolService)(nil)

// SymbolService is a mock implementation of sigildex.SymbolService.
type SymbolService struct {
	UpsertSymbolFn     func(ctx context.Context, symbol *sigildex.Symbol) error
	FindSymbolBySlugFn func(ctx context.Context, slug string) (*sigildex.Symbol, error)
	FindSymbolsFn      func(ctx context.Context, filter sigildex.SymbolFilter) ([]*sigildex.Symbol, error)
}

func (s *SymbolService) UpsertSymbol(ctx context.Context, symbol *sigildex.Symbol) error {
	return s.UpsertSymbolFn(ctx, symbol)
}

func (s *SymbolService) FindSymbolBySlug(ctx context.Context, slug string) (*sigildex.Symbol, error) {
	return s.FindSymbolBySlugFn(ctx, slug)
}

func (s *SymbolService) FindSymbols(ctx context.Context, filter sigildex.SymbolFilter) ([]*sigildex.Symbol, error) {
	return s.FindSymbolsFn(ctx, filter)
}
