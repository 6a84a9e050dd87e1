package library

import "github.com/lavabyrd/ipodyssey/pkg/itunesdb"

// ResolvedPlaylist is a playlist joined to the track list.
type ResolvedPlaylist struct {
	itunesdb.Playlist

	// Tracks holds the referenced tracks in playlist order, repeats
	// included. References to unknown tracks are left out.
	Tracks []itunesdb.Track

	// Missing lists the references with no matching track, in order.
	Missing []uint32
}

// DurationMS sums the length of the resolved tracks.
func (p ResolvedPlaylist) DurationMS() uint64 {
	var total uint64
	for _, t := range p.Tracks {
		total += uint64(t.DurationMS)
	}
	return total
}

// ResolvePlaylists joins every playlist of lib to its tracks.
func ResolvePlaylists(lib *itunesdb.Library) []ResolvedPlaylist {
	out := make([]ResolvedPlaylist, 0, len(lib.Playlists))
	for _, pl := range lib.Playlists {
		rp := ResolvedPlaylist{
			Playlist: pl,
			Tracks:   make([]itunesdb.Track, 0, len(pl.TrackIDs)),
		}
		for _, id := range pl.TrackIDs {
			if t, ok := lib.Track(id); ok {
				rp.Tracks = append(rp.Tracks, t)
			} else {
				rp.Missing = append(rp.Missing, id)
			}
		}
		out = append(out, rp)
	}
	return out
}
