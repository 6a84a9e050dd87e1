// Package testutil builds small iTunesDB files for tests outside the
// parser package.
package testutil

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

// Track describes one track record.
type Track struct {
	ID         uint32
	Title      string
	Artist     string
	Album      string
	Genre      string
	Path       string // device path, e.g. ":iPod_Control:Music:F00:ABCD.mp3"
	FileSize   uint32
	DurationMS uint32
	Year       uint32
	PlayCount  uint32
	Rating     uint8
}

// Playlist describes one playlist record.
type Playlist struct {
	ID       uint32
	Name     string
	TrackIDs []uint32
	Smart    bool
}

// BuildDB returns a database holding a track dataset and a playlist dataset.
func BuildDB(tracks []Track, playlists []Playlist) []byte {
	var trackRecs [][]byte
	for _, t := range tracks {
		trackRecs = append(trackRecs, trackRecord(t))
	}
	var playlistRecs [][]byte
	for _, p := range playlists {
		playlistRecs = append(playlistRecs, playlistRecord(p))
	}

	trackList := chunk("mhlt", 92, func(h []byte) { put32(h, 12, uint32(len(tracks))) }, trackRecs...)
	playlistList := chunk("mhlp", 92, func(h []byte) { put32(h, 12, uint32(len(playlists))) }, playlistRecs...)

	return chunk("mhbd", 104, func(h []byte) { put32(h, 12, 0x19) },
		chunk("mhsd", 96, func(h []byte) { put32(h, 12, 1) }, trackList),
		chunk("mhsd", 96, func(h []byte) { put32(h, 12, 2) }, playlistList),
	)
}

// WriteDB writes a database built by BuildDB to a temp dir and returns
// its path.
func WriteDB(tb testing.TB, tracks []Track, playlists []Playlist) string {
	tb.Helper()
	path := filepath.Join(tb.TempDir(), "iTunesDB")
	if err := os.WriteFile(path, BuildDB(tracks, playlists), 0o600); err != nil {
		tb.Fatalf("write database: %v", err)
	}
	return path
}

func trackRecord(t Track) []byte {
	var strs [][]byte
	for typ, s := range []string{1: t.Title, 2: t.Path, 3: t.Album, 4: t.Artist, 5: t.Genre} {
		if s != "" {
			strs = append(strs, stringSection(uint32(typ), s))
		}
	}
	return chunk("mhit", 156, func(h []byte) {
		put32(h, 16, t.ID)
		h[31] = t.Rating
		put32(h, 36, t.FileSize)
		put32(h, 40, t.DurationMS)
		put32(h, 52, t.Year)
		put32(h, 80, t.PlayCount)
	}, strs...)
}

func playlistRecord(p Playlist) []byte {
	children := [][]byte{stringSection(1, p.Name)}
	for _, id := range p.TrackIDs {
		children = append(children, chunk("mhip", 76, func(h []byte) { put32(h, 24, id) }))
	}
	// Smart data after the items ends them and marks the playlist.
	if p.Smart {
		children = append(children, stringSection(50, ""))
	}
	return chunk("mhyp", 108, func(h []byte) {
		put32(h, 16, p.ID)
		put32(h, 20, uint32(len(p.TrackIDs)))
	}, children...)
}

// stringSection writes UTF-8 text with the length at 32, encoding at 36 and
// data at 40.
func stringSection(typ uint32, s string) []byte {
	buf := make([]byte, 40, 40+len(s))
	copy(buf, "mhod")
	put32(buf, 4, 24)
	put32(buf, 8, uint32(40+len(s)))
	put32(buf, 12, typ)
	put32(buf, 32, uint32(len(s)))
	put32(buf, 36, 2)
	return append(buf, s...)
}

func chunk(sig string, headerSize int, fill func([]byte), children ...[]byte) []byte {
	hdr := make([]byte, headerSize)
	copy(hdr, sig)
	put32(hdr, 4, uint32(headerSize))
	fill(hdr)

	var buf bytes.Buffer
	buf.Write(hdr)
	for _, c := range children {
		buf.Write(c)
	}
	out := buf.Bytes()
	put32(out, 8, uint32(len(out)))
	return out
}

func put32(b []byte, off int, v uint32) {
	binary.LittleEndian.PutUint32(b[off:], v)
}
