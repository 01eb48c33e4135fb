// Package mock provides function-field mock implementations of the
// sigildex service interfaces for testing.
package mock

import (
	"context"

	"github.com/athanor/sigildex"
)

var _ sigildex.SourceService = (*SourceService)(nil)

// SourceService is a mock implementation of sigildex.SourceService.
type SourceService struct {
	UpsertSourceFn   func(ctx context.Context, source *sigildex.Source) error
	FindSourceByIDFn func(ctx context.Context, id string) (*sigildex.Source, error)
	FindSourcesFn    func(ctx context.Context, filter sigildex.SourceFilter) ([]*sigildex.Source, error)
}

func (s *SourceService) UpsertSource(ctx context.Context, source *sigildex.Source) error {
	return s.UpsertSourceFn(ctx, source)
}

func (s *SourceService) FindSourceByID(ctx context.Context, id string) (*sigildex.Source, error) {
	return s.FindSourceByIDFn(ctx, id)
}

func (s *SourceService) FindSources(ctx context.Context, filter sigildex.SourceFilter) ([]*sigildex.Source, error) {
	return s.FindSourcesFn(ctx, filter)
}
