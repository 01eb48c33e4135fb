package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/athanor/sigildex"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ sigildex.SymbolService = (*SymbolService)(nil)

// SymbolService implements sigildex.SymbolService using SQLite.
type SymbolService struct {
	db *DB
}

// NewSymbolService creates a new SymbolService.
func NewSymbolService(db *DB) *SymbolService {
	return &SymbolService{db: db}
}

const symbolColumns = "id, name, slug, tradition, class, function, evokes_or_invokes, deity_or_spirit, planet, element, correspondence, source_id, page_hint, tags, created_at"

// symbolColumnsPrefixed qualifies each symbol column with a table alias
// for use in joins.
func symbolColumnsPrefixed(alias string) string {
	cols := strings.Split(symbolColumns, ", ")
	for i, c := range cols {
		cols[i] = alias + "." + c
	}
	return strings.Join(cols, ", ")
}

// UpsertSymbol creates or updates a symbol keyed by slug. On update only
// non-zero incoming fields overwrite stored values; the stored record is
// written back so the caller sees the canonical ID.
func (s *SymbolService) UpsertSymbol(ctx context.Context, symbol *sigildex.Symbol) error {
	if err := symbol.Validate(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		SELECT `+symbolColumns+` FROM symbols WHERE slug = ?
	`, symbol.Slug)

	existing, err := scanSymbol(row)
	if err == sql.ErrNoRows {
		symbol.ID = uuid.New().String()
		symbol.CreatedAt = time.Now().UTC()

		_, err = tx.ExecContext(ctx, `
			INSERT INTO symbols (`+symbolColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, symbol.ID, symbol.Name, symbol.Slug, symbol.Tradition, symbol.Class,
			symbol.Function, symbol.EvokesOrInvokes, symbol.DeityOrSpirit, symbol.Planet,
			symbol.Element, symbol.Correspondence, symbol.SourceID, symbol.PageHint,
			marshalList(symbol.Tags), symbol.CreatedAt.Format(time.RFC3339))
		if err != nil {
			return err
		}
		return tx.Commit()
	}
	if err != nil {
		return err
	}

	mergeSymbol(existing, symbol)
	*symbol = *existing

	_, err = tx.ExecContext(ctx, `
		UPDATE symbols
		SET name = ?, tradition = ?, class = ?, function = ?, evokes_or_invokes = ?,
			deity_or_spirit = ?, planet = ?, element = ?, correspondence = ?,
			source_id = ?, page_hint = ?, tags = ?
		WHERE id = ?
	`, symbol.Name, symbol.Tradition, symbol.Class, symbol.Function,
		symbol.EvokesOrInvokes, symbol.DeityOrSpirit, symbol.Planet, symbol.Element,
		symbol.Correspondence, symbol.SourceID, symbol.PageHint,
		marshalList(symbol.Tags), symbol.ID)
	if err != nil {
		return err
	}
	return tx.Commit()
}

// FindSymbolBySlug retrieves a symbol by its slug.
func (s *SymbolService) FindSymbolBySlug(ctx context.Context, slug string) (*sigildex.Symbol, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+symbolColumns+` FROM symbols WHERE slug = ?
	`, slug)

	symbol, err := scanSymbol(row)
	if err == sql.ErrNoRows {
		return nil, sigildex.Errorf(sigildex.ENOTFOUND, "symbol %q not found", slug)
	}
	if err != nil {
		return nil, err
	}
	return symbol, nil
}

// FindSymbols retrieves symbols matching the filter, ordered by name.
// Query matches name, slug, deity and tradition case-insensitively.
func (s *SymbolService) FindSymbols(ctx context.Context, filter sigildex.SymbolFilter) ([]*sigildex.Symbol, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT " + symbolColumns + " FROM symbols WHERE 1=1")

	if filter.Query != "" {
		needle := "%" + strings.ToLower(filter.Query) + "%"
		query.WriteString(` AND (lower(name) LIKE ? OR lower(slug) LIKE ?
			OR lower(deity_or_spirit) LIKE ? OR lower(tradition) LIKE ?)`)
		args = append(args, needle, needle, needle, needle)
	}
	if filter.Tradition != nil {
		query.WriteString(" AND tradition = ?")
		args = append(args, *filter.Tradition)
	}
	if filter.SourceID != nil {
		query.WriteString(" AND source_id = ?")
		args = append(args, *filter.SourceID)
	}

	query.WriteString(" ORDER BY name, id")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
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

// mergeSymbol overlays non-zero incoming fields onto the stored record.
// Name and slug always survive; meaning fields filled by a reviewer are
// never blanked by a later automated re-ingest.
func mergeSymbol(dst, src *sigildex.Symbol) {
	if src.Name != "" {
		dst.Name = src.Name
	}
	if src.Tradition != "" {
		dst.Tradition = src.Tradition
	}
	if src.Class != "" {
		dst.Class = src.Class
	}
	if src.Function != "" {
		dst.Function = src.Function
	}
	if src.EvokesOrInvokes != "" {
		dst.EvokesOrInvokes = src.EvokesOrInvokes
	}
	if src.DeityOrSpirit != "" {
		dst.DeityOrSpirit = src.DeityOrSpirit
	}
	if src.Planet != "" {
		dst.Planet = src.Planet
	}
	if src.Element != "" {
		dst.Element = src.Element
	}
	if src.Correspondence != "" {
		dst.Correspondence = src.Correspondence
	}
	if src.SourceID != "" {
		dst.SourceID = src.SourceID
	}
	if src.PageHint != "" {
		dst.PageHint = src.PageHint
	}
	if len(src.Tags) > 0 {
		dst.Tags = src.Tags
	}
}

func scanSymbol(row rowScanner) (*sigildex.Symbol, error) {
	var symbol sigildex.Symbol
	var tags, createdAt string

	if err := row.Scan(&symbol.ID, &symbol.Name, &symbol.Slug, &symbol.Tradition,
		&symbol.Class, &symbol.Function, &symbol.EvokesOrInvokes, &symbol.DeityOrSpirit,
		&symbol.Planet, &symbol.Element, &symbol.Correspondence, &symbol.SourceID,
		&symbol.PageHint, &tags, &createdAt); err != nil {
		return nil, err
	}

	symbol.Tags = unmarshalList(tags)

	var err error
	symbol.CreatedAt, err = parseRFC3339(createdAt, "created_at")
	if err != nil {
		return nil, err
	}
	return &symbol, nil
}
