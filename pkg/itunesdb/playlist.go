package itunesdb

import (
	"github.com/lavabyrd/ipodyssey/pkg/itunesdb/internal/binary"
)

const maxPlaylistPayload = 100

// Playlist record field offsets, relative to the start of the record.
const (
	playlistOffID         = 16
	playlistOffTrackCount = 20
	playlistOffTimestamp  = 24
)

// playlistItemOffTrackID follows the common prefix and 12 reserved bytes.
const playlistItemOffTrackID = 24

func (p *parser) playlistList(s span) {
	lh, count, ok := p.listHeader(s, "playlist list")
	if !ok {
		return
	}

	limit := min(int(count), p.opts.MaxPlaylists)
	if int(count) > limit {
		p.warnf("playlist list declares %d playlists, reading the first %d", count, limit)
	}
	if limit == 0 {
		return
	}

	decoded := 0
	res := p.walk(p.bounded(lh.body(), s.end, s), accepts(KindPlaylist), func(h header) bool {
		p.lib.Playlists = append(p.lib.Playlists, p.playlist(h, s))
		decoded++
		return decoded < limit
	})

	if decoded < limit {
		p.corruptf(res.next, "playlist list ended after %d of %d playlists: %s", decoded, count, res)
	}
}

// playlist decodes one playlist record. The first child, when it is a
// string section, names the playlist whatever its type. Playlist items
// follow and are kept in file order; any other chunk ends them. When that
// chunk is a smart playlist string section the playlist is marked smart.
func (p *parser) playlist(h header, parent span) Playlist {
	f := recordFields(p.payload(h, maxPlaylistPayload, "playlist payload"))

	pl := Playlist{
		ID:        f.u32(playlistOffID),
		TrackIDs:  []uint32{},
		Timestamp: playerTime(f.u32(playlistOffTimestamp)),
	}
	declared := f.u32(playlistOffTrackCount)

	first := true
	accept := func(k Kind) bool {
		return k == KindPlaylistItem || (first && k == KindString)
	}
	res := p.walk(p.bounded(h.body(), h.end(), parent), accept, func(c header) bool {
		switch c.Kind {
		case KindString:
			_, pl.Name = p.stringSection(c)
		case KindPlaylistItem:
			trackID, err := binary.Read[uint32](p.sr, c.Start+playlistItemOffTrackID, "playlist item track id")
			if err != nil {
				p.warnf("playlist %d: item at offset %d is truncated", pl.ID, c.Start)
				return false
			}
			pl.TrackIDs = append(pl.TrackIDs, trackID)
		}
		first = false
		return true
	})

	if res.reason == stopKind {
		pl.Smart = p.isSmartSection(res.next)
		p.log.Debug("playlist items ended", "playlist", pl.ID, "offset", res.next, "signature", res.sig)
	}
	if declared != uint32(len(pl.TrackIDs)) {
		p.log.Debug("playlist item count mismatch", "playlist", pl.ID, "declared", declared, "decoded", len(pl.TrackIDs))
	}
	return pl
}

// isSmartSection reports whether the chunk at off is a string section
// holding smart playlist data or rules. Nothing past its type is read.
func (p *parser) isSmartSection(off int64) bool {
	kind, _, err := peekKind(p.sr, off)
	if err != nil || kind != KindString {
		return false
	}
	typ, err := binary.Read[uint32](p.sr, off+stringOffType, "string type")
	if err != nil {
		return false
	}
	return typ == stringSmartData || typ == stringSmartRules
}
