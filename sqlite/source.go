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
var _ sigildex.SourceService = (*SourceService)(nil)

// SourceService implements sigildex.SourceService using SQLite.
type SourceService struct {
	db *DB
}

// NewSourceService creates a new SourceService.
func NewSourceService(db *DB) *SourceService {
	return &SourceService{db: db}
}

const sourceColumns = "id, title, author, year, tradition, url, local_path, license, notes, content_hash, created_at"

// UpsertSource creates or updates a source. An existing source is matched
// by URL, then local path, then title; re-ingesting the same manifest
// never duplicates rows. On update only non-zero incoming fields
// overwrite stored values, and the stored record is written back to
// source so the caller sees the canonical ID and timestamps.
func (s *SourceService) UpsertSource(ctx context.Context, source *sigildex.Source) error {
	if err := source.Validate(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	existing, err := findExistingSource(ctx, tx, source)
	if err != nil {
		return err
	}

	if existing == nil {
		source.ID = uuid.New().String()
		source.CreatedAt = time.Now().UTC()

		_, err = tx.ExecContext(ctx, `
			INSERT INTO sources (`+sourceColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, source.ID, source.Title, source.Author, source.Year, source.Tradition,
			source.URL, source.LocalPath, source.License, source.Notes, source.ContentHash,
			source.CreatedAt.Format(time.RFC3339))
		if err != nil {
			return err
		}
		return tx.Commit()
	}

	mergeSource(existing, source)
	*source = *existing

	_, err = tx.ExecContext(ctx, `
		UPDATE sources
		SET title = ?, author = ?, year = ?, tradition = ?, url = ?, local_path = ?,
			license = ?, notes = ?, content_hash = ?
		WHERE id = ?
	`, source.Title, source.Author, source.Year, source.Tradition, source.URL,
		source.LocalPath, source.License, source.Notes, source.ContentHash, source.ID)
	if err != nil {
		return err
	}
	return tx.Commit()
}

// FindSourceByID retrieves a source by ID.
func (s *SourceService) FindSourceByID(ctx context.Context, id string) (*sigildex.Source, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+sourceColumns+` FROM sources WHERE id = ?
	`, id)

	source, err := scanSource(row)
	if err == sql.ErrNoRows {
		return nil, sigildex.Errorf(sigildex.ENOTFOUND, "source not found")
	}
	if err != nil {
		return nil, err
	}
	return source, nil
}

// FindSources retrieves sources matching the filter, newest first.
func (s *SourceService) FindSources(ctx context.Context, filter sigildex.SourceFilter) ([]*sigildex.Source, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT " + sourceColumns + " FROM sources WHERE 1=1")

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.Tradition != nil {
		query.WriteString(" AND tradition = ?")
		args = append(args, *filter.Tradition)
	}

	query.WriteString(" ORDER BY created_at DESC, id")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sources []*sigildex.Source
	for rows.Next() {
		source, err := scanSource(rows)
		if err != nil {
			return nil, err
		}
		sources = append(sources, source)
	}
	return sources, rows.Err()
}

// findExistingSource locates the row an upsert should update, trying the
// identity keys in priority order.
func findExistingSource(ctx context.Context, tx *sql.Tx, source *sigildex.Source) (*sigildex.Source, error) {
	keys := []struct {
		column string
		value  string
	}{
		{"url", source.URL},
		{"local_path", source.LocalPath},
		{"title", source.Title},
	}

	for _, key := range keys {
		if key.value == "" {
			continue
		}
		row := tx.QueryRowContext(ctx, `
			SELECT `+sourceColumns+` FROM sources WHERE `+key.column+` = ?
		`, key.value)
		existing, err := scanSource(row)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return nil, err
		}
		return existing, nil
	}
	return nil, nil
}

// mergeSource overlays non-zero incoming fields onto the stored record.
func mergeSource(dst, src *sigildex.Source) {
	if src.Title != "" {
		dst.Title = src.Title
	}
	if src.Author != "" {
		dst.Author = src.Author
	}
	if src.Year != 0 {
		dst.Year = src.Year
	}
	if src.Tradition != "" {
		dst.Tradition = src.Tradition
	}
	if src.URL != "" {
		dst.URL = src.URL
	}
	if src.LocalPath != "" {
		dst.LocalPath = src.LocalPath
	}
	if src.License != "" {
		dst.License = src.License
	}
	if src.Notes != "" {
		dst.Notes = src.Notes
	}
	if src.ContentHash != "" {
		dst.ContentHash = src.ContentHash
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSource(row rowScanner) (*sigildex.Source, error) {
	var source sigildex.Source
	var createdAt string

	if err := row.Scan(&source.ID, &source.Title, &source.Author, &source.Year,
		&source.Tradition, &source.URL, &source.LocalPath, &source.License,
		&source.Notes, &source.ContentHash, &createdAt); err != nil {
		return nil, err
	}

	var err error
	source.CreatedAt, err = parseRFC3339(createdAt, "created_at")
	if err != nil {
		return nil, err
	}
	return &source, nil
}
