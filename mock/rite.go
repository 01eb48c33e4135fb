package mock

import (
	"context"

	"github.com/athanor/sigildex"
)

var _ sigildex.RiteService = (*RiteService)(nil)

// RiteService is a mock implementation of sigildex.RiteService.
type RiteService struct {
	UpsertRiteFn        func(ctx context.Context, rite *sigildex.Rite) error
	FindRiteByIDFn      func(ctx context.Context, id string) (*sigildex.Rite, error)
	AttachSymbolFn      func(ctx context.Context, riteID, symbolID string) error
	FindSymbolsByRiteFn func(ctx context.Context, riteID string) ([]*sigildex.Symbol, error)
}

func (s *RiteService) UpsertRite(ctx context.Context, rite *sigildex.Rite) error {
	return s.UpsertRiteFn(ctx, rite)
}

func (s *RiteService) FindRiteByID(ctx context.Context, id string) (*sigildex.Rite, error) {
	return s.FindRiteByIDFn(ctx, id)
}

func (s *RiteService) AttachSymbol(ctx context.Context, riteID, symbolID string) error {
	return s.AttachSymbolFn(ctx, riteID, symbolID)
}

func (s *RiteService) FindSymbolsByRite(ctx context.Context, riteID string) ([]*sigildex.Symbol, error) {
	return s.FindSymbolsByRiteFn(ctx, riteID)
}
