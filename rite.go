package sigildex

import (
	"context"
	"time"
)

// Rite captures ritual instructions that reference symbols.
type Rite struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Tradition string    `json:"tradition"`
	Purpose   string    `json:"purpose"`
	Steps     []string  `json:"steps"`
	SourceID  string    `json:"sourceId"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"createdAt"`
}

// Validate returns an error if the rite contains invalid fields.
func (r *Rite) Validate() error {
	if r.Name == "" {
		return Errorf(EINVALID, "rite name required")
	}
	return nil
}

// RiteService represents a service for managing rites and their links to
// symbols.
type RiteService interface {
	// UpsertRite creates or updates a rite using its name as the key.
	UpsertRite(ctx context.Context, rite *Rite) error

	// FindRiteByID retrieves a rite by ID.
	// Returns ENOTFOUND if the rite does not exist.
	FindRiteByID(ctx context.Context, id string) (*Rite, error)

	// AttachSymbol links a symbol to a rite. Attaching an already linked
	// symbol is a no-op.
	AttachSymbol(ctx context.Context, riteID, symbolID string) error

	// FindSymbolsByRite retrieves symbols linked to a rite.
	FindSymbolsByRite(ctx context.Context, riteID string) ([]*Symbol, error)
}
