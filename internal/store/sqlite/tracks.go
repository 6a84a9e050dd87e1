package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"maps"
	"slices"

	"github.com/lavabyrd/ipodyssey/pkg/itunesdb"
)

const trackColumns = `track_id, title, artist, album, genre, path, file_type,
	file_size, duration_ms, track_number, track_count, year, bitrate, sample_rate,
	play_count, rating, bpm, compilation, last_played, date_added`

func scanTrack(scanner interface{ Scan(dest ...any) error }) (itunesdb.Track, error) {
	var (
		t           itunesdb.Track
		compilation int
		lastPlayed  sql.NullString
		dateAdded   sql.NullString
	)
	err := scanner.Scan(
		&t.ID,
		&t.Title,
		&t.Artist,
		&t.Album,
		&t.Genre,
		&t.Path,
		&t.FileType,
		&t.FileSize,
		&t.DurationMS,
		&t.TrackNumber,
		&t.TrackCount,
		&t.Year,
		&t.Bitrate,
		&t.SampleRate,
		&t.PlayCount,
		&t.Rating,
		&t.BPM,
		&compilation,
		&lastPlayed,
		&dateAdded,
	)
	if err != nil {
		return itunesdb.Track{}, err
	}
	t.Compilation = compilation != 0
	if t.LastPlayed, err = parseNullableTime(lastPlayed); err != nil {
		return itunesdb.Track{}, err
	}
	if t.DateAdded, err = parseNullableTime(dateAdded); err != nil {
		return itunesdb.Track{}, err
	}
	return t, nil
}

// insertTracks writes tracks in ID order so imports are reproducible.
func insertTracks(ctx context.Context, tx *sql.Tx, importID string, tracks map[uint32]itunesdb.Track) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO tracks (import_id, `+trackColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare track insert: %w", err)
	}
	defer stmt.Close()

	for _, trackID := range slices.Sorted(maps.Keys(tracks)) {
		t := tracks[trackID]
		_, err := stmt.ExecContext(ctx,
			importID,
			t.ID,
			t.Title,
			t.Artist,
			t.Album,
			t.Genre,
			t.Path,
			t.FileType,
			t.FileSize,
			t.DurationMS,
			t.TrackNumber,
			t.TrackCount,
			t.Year,
			t.Bitrate,
			t.SampleRate,
			t.PlayCount,
			t.Rating,
			t.BPM,
			boolInt(t.Compilation),
			nullTimeString(t.LastPlayed),
			nullTimeString(t.DateAdded),
		)
		if err != nil {
			return fmt.Errorf("insert track %d: %w", t.ID, err)
		}
	}
	return nil
}

// ListTracks returns the tracks of an import ordered by track ID.
func (s *Store) ListTracks(ctx context.Context, importID string) ([]itunesdb.Track, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+trackColumns+` FROM tracks WHERE import_id = ? ORDER BY track_id`, importID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tracks []itunesdb.Track
	for rows.Next() {
		t, err := scanTrack(rows)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, t)
	}
	return tracks, rows.Err()
}
