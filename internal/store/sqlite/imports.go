package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/lavabyrd/ipodyssey/internal/errors"
	"github.com/lavabyrd/ipodyssey/internal/id"
	"github.com/lavabyrd/ipodyssey/pkg/itunesdb"
)

// Import is one saved library.
type Import struct {
	ID            string    `json:"id"`
	Source        string    `json:"source"`
	Version       uint32    `json:"version"`
	ImportedAt    time.Time `json:"imported_at"`
	TrackCount    int       `json:"track_count"`
	PlaylistCount int       `json:"playlist_count"`
	WarningCount  int       `json:"warning_count"`
}

// importColumns is the ordered list of columns selected in imports queries.
const importColumns = `id, source, version, imported_at, track_count, playlist_count, warning_count`

func scanImport(scanner interface{ Scan(dest ...any) error }) (*Import, error) {
	var (
		imp        Import
		importedAt string
	)
	err := scanner.Scan(
		&imp.ID,
		&imp.Source,
		&imp.Version,
		&importedAt,
		&imp.TrackCount,
		&imp.PlaylistCount,
		&imp.WarningCount,
	)
	if err != nil {
		return nil, err
	}
	if imp.ImportedAt, err = parseTime(importedAt); err != nil {
		return nil, err
	}
	return &imp, nil
}

// SaveLibrary stores lib as a new import and returns its ID. The whole
// library is written in one transaction.
func (s *Store) SaveLibrary(ctx context.Context, source string, lib *itunesdb.Library) (string, error) {
	importID, err := id.Generate("imp")
	if err != nil {
		return "", err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO imports (`+importColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		importID,
		source,
		lib.Version,
		formatTime(s.now()),
		len(lib.Tracks),
		len(lib.Playlists),
		len(lib.Warnings),
	)
	if err != nil {
		return "", fmt.Errorf("insert import: %w", err)
	}

	for i, w := range lib.Warnings {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO import_warnings (import_id, position, message) VALUES (?, ?, ?)`,
			importID, i, w,
		); err != nil {
			return "", fmt.Errorf("insert warning: %w", err)
		}
	}

	if err := insertTracks(ctx, tx, importID, lib.Tracks); err != nil {
		return "", err
	}
	if err := insertPlaylists(ctx, tx, importID, lib.Playlists); err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit import: %w", err)
	}

	s.logger.Debug("catalog import saved",
		"import_id", importID,
		"tracks", len(lib.Tracks),
		"playlists", len(lib.Playlists),
	)
	return importID, nil
}

// GetImport retrieves an import by ID.
// Returns a NOT_FOUND error if the import does not exist.
func (s *Store) GetImport(ctx context.Context, importID string) (*Import, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+importColumns+` FROM imports WHERE id = ?`, importID)

	imp, err := scanImport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFoundf("import %s not found", importID)
	}
	if err != nil {
		return nil, err
	}
	return imp, nil
}

// ListImports returns all imports, newest first.
func (s *Store) ListImports(ctx context.Context) ([]*Import, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+importColumns+` FROM imports ORDER BY imported_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var imports []*Import
	for rows.Next() {
		imp, err := scanImport(rows)
		if err != nil {
			return nil, err
		}
		imports = append(imports, imp)
	}
	return imports, rows.Err()
}

// ListWarnings returns the parse warnings recorded with an import.
func (s *Store) ListWarnings(ctx context.Context, importID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT message FROM import_warnings WHERE import_id = ? ORDER BY position`, importID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var msg string
		if err := rows.Scan(&msg); err != nil {
			return nil, err
		}
		out = append(out, msg)
	}
	return out, rows.Err()
}

// DeleteImport removes an import and everything saved with it.
// Returns a NOT_FOUND error if the import does not exist.
func (s *Store) DeleteImport(ctx context.Context, importID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM imports WHERE id = ?`, importID)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.NotFoundf("import %s not found", importID)
	}
	return nil
}
