package itunesdb

import (
	"fmt"
	"time"
)

// Track is a single song record from the track list.
type Track struct {
	ID          uint32     `json:"id"`
	Title       string     `json:"title"`
	Artist      string     `json:"artist"`
	Album       string     `json:"album"`
	Genre       string     `json:"genre"`
	Path        string     `json:"path"` // device path, colon separated
	FileSize    uint32     `json:"file_size"`
	DurationMS  uint32     `json:"duration_ms"`
	TrackNumber uint32     `json:"track_number"`
	TrackCount  uint32     `json:"track_count"`
	Year        uint32     `json:"year"`
	Bitrate     uint32     `json:"bitrate"`     // kbps
	SampleRate  uint32     `json:"sample_rate"` // Hz
	PlayCount   uint32     `json:"play_count"`
	LastPlayed  *time.Time `json:"last_played,omitempty"`
	DateAdded   *time.Time `json:"date_added,omitempty"`
	Rating      uint8      `json:"rating"` // 0-100, 20 per star
	BPM         uint16     `json:"bpm"`
	Compilation bool       `json:"compilation"`
	FileType    string     `json:"file_type"`
}

// Duration returns the track length.
func (t Track) Duration() time.Duration {
	return time.Duration(t.DurationMS) * time.Millisecond
}

// DurationString formats the track length as m:ss.
func (t Track) DurationString() string {
	seconds := t.DurationMS / 1000
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// Stars converts the rating to a 0-5 star count.
func (t Track) Stars() int {
	return int(t.Rating) / 20
}

// Playlist is an ordered list of track references.
// TrackIDs may repeat; order is playback order.
type Playlist struct {
	ID        uint32     `json:"id"`
	Name      string     `json:"name"`
	TrackIDs  []uint32   `json:"track_ids"`
	Smart     bool       `json:"smart"` // rule-based; rules are not decoded
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// Library is the result of parsing a database.
type Library struct {
	Version   uint32           `json:"version"`
	Tracks    map[uint32]Track `json:"tracks"`
	Playlists []Playlist       `json:"playlists"`

	// Warnings contains non-fatal problems encountered during parsing.
	// They indicate partial data loss but don't prevent extraction.
	Warnings []string `json:"warnings,omitempty"`
}

func newLibrary() *Library {
	return &Library{
		Tracks:    make(map[uint32]Track),
		Playlists: []Playlist{},
	}
}

// AddWarning adds a non-fatal warning to the library.
func (l *Library) AddWarning(format string, args ...any) {
	l.Warnings = append(l.Warnings, fmt.Sprintf(format, args...))
}

// Track looks up a track by ID.
func (l *Library) Track(id uint32) (Track, bool) {
	t, ok := l.Tracks[id]
	return t, ok
}
