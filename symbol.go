package sigildex

import (
	"context"
	"time"
)

// Symbol represents a cataloged sigil. Meaning is assigned by a human
// reviewer after detection; the pipeline never guesses it.
type Symbol struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Slug            string    `json:"slug"`
	Tradition       string    `json:"tradition"`
	Class           string    `json:"class"`
	Function        string    `json:"function"`
	EvokesOrInvokes string    `json:"evokesOrInvokes"`
	DeityOrSpirit   string    `json:"deityOrSpirit"`
	Planet          string    `json:"planet"`
	Element         string    `json:"element"`
	Correspondence  string    `json:"correspondence"`
	SourceID        string    `json:"sourceId"`
	PageHint        string    `json:"pageHint"`
	Tags            []string  `json:"tags"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Validate returns an error if the symbol contains invalid fields.
func (s *Symbol) Validate() error {
	if s.Name == "" {
		return Errorf(EINVALID, "symbol name required")
	}
	if s.Slug == "" {
		return Errorf(EINVALID, "symbol slug required")
	}
	return nil
}

// SymbolService represents a service for managing symbols.
type SymbolService interface {
	// UpsertSymbol creates or updates a symbol using its slug as the
	// unique key. On update only non-zero fields overwrite stored values.
	UpsertSymbol(ctx context.Context, symbol *Symbol) error

	// FindSymbolBySlug retrieves a symbol by its slug.
	// Returns ENOTFOUND if the symbol does not exist.
	FindSymbolBySlug(ctx context.Context, slug string) (*Symbol, error)

	// FindSymbols retrieves symbols matching the filter, ordered by name.
	FindSymbols(ctx context.Context, filter SymbolFilter) ([]*Symbol, error)
}

// SymbolFilter represents a filter for FindSymbols. Query matches name,
// slug, deity and tradition case-insensitively.
type SymbolFilter struct {
	Query     string  `json:"query"`
	Tradition *string `json:"tradition"`
	SourceID  *string `json:"sourceId"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}
