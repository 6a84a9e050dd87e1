package itunesdb

import (
	"github.com/lavabyrd/ipodyssey/pkg/itunesdb/internal/binary"
)

// Kind identifies the role of a chunk.
type Kind int

const (
	KindUnknown Kind = iota
	KindDatabase
	KindDataset
	KindAlbumList
	KindTrackList
	KindTrack
	KindPlaylistList
	KindPlaylist
	KindPlaylistItem
	KindString
)

// signatures maps the four-byte chunk tags to their kind.
var signatures = map[string]Kind{
	"mhbd": KindDatabase,
	"mhsd": KindDataset,
	"mhla": KindAlbumList,
	"mhlt": KindTrackList,
	"mhit": KindTrack,
	"mhlp": KindPlaylistList,
	"mhyp": KindPlaylist,
	"mhip": KindPlaylistItem,
	"mhod": KindString,
}

func (k Kind) String() string {
	switch k {
	case KindDatabase:
		return "database"
	case KindDataset:
		return "dataset"
	case KindAlbumList:
		return "album list"
	case KindTrackList:
		return "track list"
	case KindTrack:
		return "track"
	case KindPlaylistList:
		return "playlist list"
	case KindPlaylist:
		return "playlist"
	case KindPlaylistItem:
		return "playlist item"
	case KindString:
		return "string"
	default:
		return "unknown"
	}
}

func kindOf(sig string) Kind {
	return signatures[sig]
}

const (
	// headerLen is the common prefix: signature, header size, total size.
	headerLen = 12
	// rootHeaderLen adds the format version to the common prefix.
	rootHeaderLen = 16
)

// header is the common prefix of every chunk, plus where it was found.
type header struct {
	Kind       Kind
	Sig        string
	Start      int64
	HeaderSize uint32
	TotalSize  uint32
	Version    uint32 // database root only
}

// body is the offset of the first byte after the chunk's header region.
func (h header) body() int64 { return h.Start + int64(h.HeaderSize) }

// end is the offset of the next sibling.
func (h header) end() int64 { return h.Start + int64(h.TotalSize) }

// readHeader reads the chunk prefix at off. For the database root it also
// reads the format version; the rest of the root header is reserved.
// Sizes are returned as stored and are not checked against the file length.
func readHeader(sr *binary.SafeReader, off int64) (header, error) {
	buf := make([]byte, headerLen)
	if err := sr.ReadAt(buf, off, "chunk header"); err != nil {
		return header{}, err
	}

	sig := decodeSignature(buf[0:4])
	h := header{
		Kind:       kindOf(sig),
		Sig:        sig,
		Start:      off,
		HeaderSize: binary.Field[uint32](buf, 4),
		TotalSize:  binary.Field[uint32](buf, 8),
	}

	if h.Kind == KindDatabase {
		version, err := binary.Read[uint32](sr, off+headerLen, "database version")
		if err != nil {
			return header{}, err
		}
		h.Version = version
	}

	return h, nil
}

// peekKind reads only the signature at off.
func peekKind(sr *binary.SafeReader, off int64) (Kind, string, error) {
	buf := make([]byte, 4)
	if err := sr.ReadAt(buf, off, "chunk signature"); err != nil {
		return KindUnknown, "", err
	}
	sig := decodeSignature(buf)
	return kindOf(sig), sig, nil
}

// decodeSignature turns tag bytes into a string, replacing anything that is
// not printable ASCII with '?'.
func decodeSignature(b []byte) string {
	out := make([]byte, len(b))
	for i, c := range b {
		if c < 0x20 || c > 0x7e {
			c = '?'
		}
		out[i] = c
	}
	return string(out)
}
