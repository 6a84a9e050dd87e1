package itunesdb

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"
	"unicode/utf16"
)

// Fixture builders for synthetic databases. Sizes follow the layouts the
// parser expects; children are appended after each header region.

const (
	testRootHeaderSize     = 104
	testDatasetHeaderSize  = 96
	testListHeaderSize     = 92
	testTrackHeaderSize    = 156
	testStringHeaderSize   = 24
	testPlaylistHeaderSize = 108
	testItemSize           = 76
)

func putU32(buf []byte, off int, v uint32) {
	if off+4 <= len(buf) {
		binary.LittleEndian.PutUint32(buf[off:], v)
	}
}

func putU16(buf []byte, off int, v uint16) {
	if off+2 <= len(buf) {
		binary.LittleEndian.PutUint16(buf[off:], v)
	}
}

// chunk builds a chunk with a zeroed header region of headerSize bytes,
// lets fill set fields in it, and appends the children.
func chunk(sig string, headerSize int, fill func(hdr []byte), children ...[]byte) []byte {
	hdr := make([]byte, headerSize)
	copy(hdr, sig)
	putU32(hdr, 4, uint32(headerSize))
	if fill != nil {
		fill(hdr)
	}

	buf := bytes.NewBuffer(hdr)
	for _, c := range children {
		buf.Write(c)
	}
	out := buf.Bytes()
	putU32(out, 8, uint32(len(out)))
	return out
}

func database(version uint32, datasets ...[]byte) []byte {
	return chunk("mhbd", testRootHeaderSize, func(h []byte) {
		putU32(h, 12, version)
	}, datasets...)
}

func dataset(typ uint32, list []byte) []byte {
	return chunk("mhsd", testDatasetHeaderSize, func(h []byte) {
		putU32(h, 12, typ)
	}, list)
}

func trackList(tracks ...[]byte) []byte {
	return chunk("mhlt", testListHeaderSize, func(h []byte) {
		putU32(h, 12, uint32(len(tracks)))
	}, tracks...)
}

func playlistList(playlists ...[]byte) []byte {
	return chunk("mhlp", testListHeaderSize, func(h []byte) {
		putU32(h, 12, uint32(len(playlists)))
	}, playlists...)
}

// trackFields are the fixed fields of a track record, raw as stored.
type trackFields struct {
	ID          uint32
	FileType    string
	Compilation bool
	Rating      uint8
	FileSize    uint32
	DurationMS  uint32
	TrackNumber uint32
	TrackCount  uint32
	Year        uint32
	Bitrate     uint32
	SampleRate  uint32 // raw, 16.16 fixed point on real devices
	PlayCount   uint32
	LastPlayed  uint32
	DateAdded   uint32
	BPM         uint16
}

func track(f trackFields, strings ...[]byte) []byte {
	return chunk("mhit", testTrackHeaderSize, func(h []byte) {
		putU32(h, trackOffID, f.ID)
		if f.FileType != "" {
			var code [4]byte
			copy(code[:], f.FileType+"    ")
			putU32(h, trackOffFileType, binary.BigEndian.Uint32(code[:]))
		}
		if f.Compilation {
			h[trackOffCompilation] = 1
		}
		h[trackOffRating] = f.Rating
		putU32(h, trackOffFileSize, f.FileSize)
		putU32(h, trackOffDuration, f.DurationMS)
		putU32(h, trackOffTrackNumber, f.TrackNumber)
		putU32(h, trackOffTrackCount, f.TrackCount)
		putU32(h, trackOffYear, f.Year)
		putU32(h, trackOffBitrate, f.Bitrate)
		putU32(h, trackOffSampleRate, f.SampleRate)
		putU32(h, trackOffPlayCount, f.PlayCount)
		putU32(h, trackOffLastPlayed, f.LastPlayed)
		putU32(h, trackOffDateAdded, f.DateAdded)
		putU16(h, trackOffBPM, f.BPM)
	}, strings...)
}

// stringRaw builds a string section with explicit length and encoding
// fields and pad extra bytes after the data.
func stringRaw(typ, length, encoding uint32, data []byte, pad int) []byte {
	body := append(append([]byte{}, data...), make([]byte, pad)...)
	hdr := make([]byte, stringOffData)
	copy(hdr, "mhod")
	putU32(hdr, 4, testStringHeaderSize)
	putU32(hdr, 8, uint32(stringOffData+len(body)))
	putU32(hdr, stringOffType, typ)
	putU32(hdr, stringOffLength, length)
	putU32(hdr, stringOffEncoding, encoding)
	return append(hdr, body...)
}

func utf8String(typ uint32, text string) []byte {
	return stringRaw(typ, uint32(len(text)), 2, []byte(text), 0)
}

func utf16String(typ uint32, text string) []byte {
	data := utf16LE(text)
	return stringRaw(typ, uint32(len(data)), encodingUTF16, data, 0)
}

func utf16LE(text string) []byte {
	units := utf16.Encode([]rune(text))
	out := make([]byte, 2*len(units))
	for i, u := range units {
		binary.LittleEndian.PutUint16(out[2*i:], u)
	}
	return out
}

func playlist(id, timestamp uint32, children ...[]byte) []byte {
	items := 0
	for _, c := range children {
		if string(c[:4]) == "mhip" {
			items++
		}
	}
	return chunk("mhyp", testPlaylistHeaderSize, func(h []byte) {
		putU32(h, playlistOffID, id)
		putU32(h, playlistOffTrackCount, uint32(items))
		putU32(h, playlistOffTimestamp, timestamp)
	}, children...)
}

func playlistItem(trackID uint32) []byte {
	return chunk("mhip", testItemSize, func(h []byte) {
		putU32(h, playlistItemOffTrackID, trackID)
	})
}

// toPlayerTime converts a time to the device epoch.
func toPlayerTime(t time.Time) uint32 {
	return uint32(t.Unix() + playerEpochOffset)
}

// writeDB writes data to a temp file and returns its path.
func writeDB(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "iTunesDB")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// parseBytes parses an in-memory database.
func parseBytes(t *testing.T, data []byte, opts *Options) *Library {
	t.Helper()
	lib, err := ParseReader(bytes.NewReader(data), int64(len(data)), "test.db", opts)
	if err != nil {
		t.Fatalf("ParseReader failed: %v", err)
	}
	return lib
}
