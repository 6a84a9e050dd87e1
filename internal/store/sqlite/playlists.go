package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lavabyrd/ipodyssey/pkg/itunesdb"
)

func insertPlaylists(ctx context.Context, tx *sql.Tx, importID string, playlists []itunesdb.Playlist) error {
	for pos, pl := range playlists {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO playlists (import_id, position, playlist_id, name, smart, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			importID, pos, pl.ID, pl.Name, boolInt(pl.Smart), nullTimeString(pl.Timestamp),
		)
		if err != nil {
			return fmt.Errorf("insert playlist %d: %w", pl.ID, err)
		}

		for i, trackID := range pl.TrackIDs {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO playlist_tracks (import_id, playlist_position, position, track_id)
				VALUES (?, ?, ?, ?)`,
				importID, pos, i, trackID,
			); err != nil {
				return fmt.Errorf("insert playlist %d entry %d: %w", pl.ID, i, err)
			}
		}
	}
	return nil
}

// ListPlaylists returns the playlists of an import in file order with
// their track references.
func (s *Store) ListPlaylists(ctx context.Context, importID string) ([]itunesdb.Playlist, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT playlist_id, name, smart, created_at
		FROM playlists WHERE import_id = ? ORDER BY position`, importID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var playlists []itunesdb.Playlist
	for rows.Next() {
		var (
			pl        itunesdb.Playlist
			smart     int
			createdAt sql.NullString
		)
		if err := rows.Scan(&pl.ID, &pl.Name, &smart, &createdAt); err != nil {
			return nil, err
		}
		pl.Smart = smart != 0
		if pl.Timestamp, err = parseNullableTime(createdAt); err != nil {
			return nil, err
		}
		pl.TrackIDs = []uint32{}
		playlists = append(playlists, pl)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	entries, err := s.db.QueryContext(ctx, `
		SELECT playlist_position, track_id
		FROM playlist_tracks WHERE import_id = ? ORDER BY playlist_position, position`, importID)
	if err != nil {
		return nil, err
	}
	defer entries.Close()

	for entries.Next() {
		var (
			pos     int
			trackID uint32
		)
		if err := entries.Scan(&pos, &trackID); err != nil {
			return nil, err
		}
		if pos < 0 || pos >= len(playlists) {
			return nil, fmt.Errorf("playlist entry for unknown position %d", pos)
		}
		playlists[pos].TrackIDs = append(playlists[pos].TrackIDs, trackID)
	}
	return playlists, entries.Err()
}
