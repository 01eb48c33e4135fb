package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/athanor/sigildex"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ sigildex.RiteService = (*RiteService)(nil)

// RiteService implements sigildex.RiteService using SQLite.
type RiteService struct {
	db *DB
}

// NewRiteService creates a new RiteService.
func NewRiteService(db *DB) *RiteService {
	return &RiteService{db: db}
}

const riteColumns = "id, name, tradition, purpose, steps, source_id, notes, created_at"

// UpsertRite creates or updates a rite keyed by name. On update only
// non-zero incoming fields overwrite stored values.
func (s *RiteService) UpsertRite(ctx context.Context, rite *sigildex.Rite) error {
	if err := rite.Validate(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		SELECT `+riteColumns+` FROM rites WHERE name = ?
	`, rite.Name)

	existing, err := scanRite(row)
	if err == sql.ErrNoRows {
		rite.ID = uuid.New().String()
		rite.CreatedAt = time.Now().UTC()

		_, err = tx.ExecContext(ctx, `
			INSERT INTO rites (`+riteColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, rite.ID, rite.Name, rite.Tradition, rite.Purpose,
			marshalList(rite.Steps), rite.SourceID, rite.Notes,
			rite.CreatedAt.Format(time.RFC3339))
		if err != nil {
			return err
		}
		return tx.Commit()
	}
	if err != nil {
		return err
	}

	mergeRite(existing, rite)
	*rite = *existing

	_, err = tx.ExecContext(ctx, `
		UPDATE rites
		SET tradition = ?, purpose = ?, steps = ?, source_id = ?, notes = ?
		WHERE id = ?
	`, rite.Tradition, rite.Purpose, marshalList(rite.Steps), rite.SourceID,
		rite.Notes, rite.ID)
	if err != nil {
		return err
	}
	return tx.Commit()
}

// FindRiteByID retrieves a rite by ID.
func (s *RiteService) FindRiteByID(ctx context.Context, id string) (*sigildex.Rite, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+riteColumns+` FROM rites WHERE id = ?
	`, id)

	rite, err := scanRite(row)
	if err == sql.ErrNoRows {
		return nil, sigildex.Errorf(sigildex.ENOTFOUND, "rite not found")
	}
	if err != nil {
		return nil, err
	}
	return rite, nil
}

// AttachSymbol links a symbol to a rite. Attaching an already linked
// symbol is a no-op.
func (s *RiteService) AttachSymbol(ctx context.Context, riteID, symbolID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO symbol_rites (rite_id, symbol_id) VALUES (?, ?)
	`, riteID, symbolID)
	return err
}

// FindSymbolsByRite retrieves the symbols linked to a rite, ordered by
// name.
func (s *RiteService) FindSymbolsByRite(ctx context.Context, riteID string) ([]*sigildex.Symbol, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+symbolColumnsPrefixed("s")+`
		FROM symbols s
		JOIN symbol_rites sr ON sr.symbol_id = s.id
		WHERE sr.rite_id = ?
		ORDER BY s.name, s.id
	`, riteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var symbols []*sigildex.Symbol
	for rows.Next() {
		symbol, err := scanSymbol(rows)
		if err != nil {
			return nil, err
		}
		symbols = append(symbols, symbol)
	}
	return symbols, rows.Err()
}

// mergeRite overlays non-zero incoming fields onto the stored record.
func mergeRite(dst, src *sigildex.Rite) {
	if src.Tradition != "" {
		dst.Tradition = src.Tradition
	}
	if src.Purpose != "" {
		dst.Purpose = src.Purpose
	}
	if len(src.Steps) > 0 {
		dst.Steps = src.Steps
	}
	if src.SourceID != "" {
		dst.SourceID = src.SourceID
	}
	if src.Notes != "" {
		dst.Notes = src.Notes
	}
}

func scanRite(row rowScanner) (*sigildex.Rite, error) {
	var rite sigildex.Rite
	var steps, createdAt string

	if err := row.Scan(&rite.ID, &rite.Name, &rite.Tradition, &rite.Purpose,
		&steps, &rite.SourceID, &rite.Notes, &createdAt); err != nil {
		return nil, err
	}

	rite.Steps = unmarshalList(steps)

	var err error
	rite.CreatedAt, err = parseRFC3339(createdAt, "created_at")
	if err != nil {
		return nil, err
	}
	return &rite, nil
}
