package itunesdb

import (
	"strings"

	"github.com/lavabyrd/ipodyssey/pkg/itunesdb/internal/binary"
)

// maxTrackPayload bounds how much of a track header is read.
const maxTrackPayload = 400

// Track record field offsets, relative to the start of the record.
const (
	trackOffID          = 16
	trackOffFileType    = 24
	trackOffCompilation = 30
	trackOffRating      = 31
	trackOffFileSize    = 36
	trackOffDuration    = 40
	trackOffTrackNumber = 44
	trackOffTrackCount  = 48
	trackOffYear        = 52
	trackOffBitrate     = 56
	trackOffSampleRate  = 60
	trackOffPlayCount   = 80
	trackOffLastPlayed  = 88
	trackOffDateAdded   = 104
	trackOffBPM         = 122
)

// String section types carried by track records.
const (
	stringTitle  = 1
	stringPath   = 2
	stringAlbum  = 3
	stringArtist = 4
	stringGenre  = 5
)

func (p *parser) trackList(s span) {
	lh, count, ok := p.listHeader(s, "track list")
	if !ok {
		return
	}

	limit := min(int(count), p.opts.MaxTracks)
	if int(count) > limit {
		p.warnf("track list declares %d tracks, reading the first %d", count, limit)
	}
	if limit == 0 {
		return
	}

	decoded := 0
	res := p.walk(p.bounded(lh.body(), s.end, s), accepts(KindTrack), func(h header) bool {
		t := p.track(h, s)
		if _, dup := p.lib.Tracks[t.ID]; dup {
			p.warnf("duplicate track id %d at offset %d replaces an earlier record", t.ID, h.Start)
		}
		p.lib.Tracks[t.ID] = t
		decoded++
		return decoded < limit
	})

	if decoded < limit {
		p.corruptf(res.next, "track list ended after %d of %d tracks: %s", decoded, count, res)
	}
	p.log.Debug("read track list", "declared", count, "decoded", decoded)
}

// track decodes one track record: the fixed fields from its header region,
// then the string sections between the header and the end of the record.
func (p *parser) track(h header, parent span) Track {
	payload := p.payload(h, maxTrackPayload, "track payload")
	f := recordFields(payload)

	t := Track{
		ID:          f.u32(trackOffID),
		FileType:    fourCC(f.u32(trackOffFileType)),
		Compilation: f.u8(trackOffCompilation) != 0,
		Rating:      f.u8(trackOffRating),
		FileSize:    f.u32(trackOffFileSize),
		DurationMS:  f.u32(trackOffDuration),
		TrackNumber: f.u32(trackOffTrackNumber),
		TrackCount:  f.u32(trackOffTrackCount),
		Year:        f.u32(trackOffYear),
		Bitrate:     f.u32(trackOffBitrate),
		SampleRate:  sampleRate(f.u32(trackOffSampleRate)),
		PlayCount:   f.u32(trackOffPlayCount),
		LastPlayed:  playerTime(f.u32(trackOffLastPlayed)),
		DateAdded:   playerTime(f.u32(trackOffDateAdded)),
		BPM:         f.u16(trackOffBPM),
	}

	p.walk(p.bounded(h.body(), h.end(), parent), accepts(KindString), func(sh header) bool {
		typ, text := p.stringSection(sh)
		switch typ {
		case stringTitle:
			t.Title = text
		case stringPath:
			t.Path = text
		case stringAlbum:
			t.Album = text
		case stringArtist:
			t.Artist = text
		case stringGenre:
			t.Genre = text
		}
		return true
	})

	return t
}

// payload reads up to limit bytes of a record's header region after the
// common prefix. Truncated files yield a shorter payload.
func (p *parser) payload(h header, limit int, what string) []byte {
	n := min(int(h.HeaderSize)-headerLen, limit)
	if n <= 0 {
		return nil
	}
	buf, err := p.sr.ReadUpTo(h.Start+headerLen, n, what)
	if err != nil {
		p.log.Debug("record payload unreadable", "offset", h.Start, "error", err)
		return nil
	}
	if len(buf) < n {
		p.log.Debug("record payload truncated", "offset", h.Start, "want", n, "got", len(buf))
	}
	return buf
}

// recordFields reads fixed fields from a payload using offsets relative to
// the record start. Fields past the payload read as zero.
type recordFields []byte

func (f recordFields) u8(off int) uint8   { return binary.Field[uint8](f, off-headerLen) }
func (f recordFields) u16(off int) uint16 { return binary.Field[uint16](f, off-headerLen) }
func (f recordFields) u32(off int) uint32 { return binary.Field[uint32](f, off-headerLen) }

// fourCC renders a file type code such as "MP3 " stored as a little-endian
// integer. Zero and non-printable codes give "".
func fourCC(v uint32) string {
	if v == 0 {
		return ""
	}
	b := []byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
	for _, c := range b {
		if c < 0x20 || c > 0x7e {
			return ""
		}
	}
	return strings.TrimSpace(string(b))
}

// sampleRate undoes the 16.16 fixed point encoding used on the device.
// Small values are taken as plain Hz.
func sampleRate(v uint32) uint32 {
	if v > 0xFFFF {
		return v >> 16
	}
	return v
}
