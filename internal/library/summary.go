package library

import (
	"cmp"
	"slices"
	"time"

	"github.com/lavabyrd/ipodyssey/internal/util"
	"github.com/lavabyrd/ipodyssey/pkg/itunesdb"
)

// ArtistCount is an artist and how many tracks they have.
type ArtistCount struct {
	Artist string
	Tracks int
}

// Summary holds library totals.
type Summary struct {
	Version        uint32
	Tracks         int
	Playlists      int
	SmartPlaylists int
	TotalSize      uint64
	TotalDuration  time.Duration
	TotalPlays     uint64
	TopArtists     []ArtistCount
	MissingRefs    int // playlist entries that name no track
	Warnings       int
}

// Summarize computes totals for lib, listing at most topN artists. Tracks
// without an artist are not counted as an artist. Spellings that share a
// util.NameKey are counted together under the most used spelling.
func Summarize(lib *itunesdb.Library, topN int) Summary {
	sum := Summary{
		Version:   lib.Version,
		Tracks:    len(lib.Tracks),
		Playlists: len(lib.Playlists),
		Warnings:  len(lib.Warnings),
	}

	artists := make(map[string]*artistTally)
	for _, t := range lib.Tracks {
		sum.TotalSize += uint64(t.FileSize)
		sum.TotalDuration += t.Duration()
		sum.TotalPlays += uint64(t.PlayCount)
		if key := util.NameKey(t.Artist); key != "" {
			tally := artists[key]
			if tally == nil {
				tally = &artistTally{spellings: make(map[string]int)}
				artists[key] = tally
			}
			tally.tracks++
			tally.spellings[t.Artist]++
		}
	}

	for _, pl := range lib.Playlists {
		if pl.Smart {
			sum.SmartPlaylists++
		}
		for _, id := range pl.TrackIDs {
			if _, ok := lib.Tracks[id]; !ok {
				sum.MissingRefs++
			}
		}
	}

	sum.TopArtists = topArtists(artists, topN)
	return sum
}

type artistTally struct {
	tracks    int
	spellings map[string]int
}

// name is the most used spelling, the lowest sorting one on a tie.
func (a *artistTally) name() string {
	var best string
	for s, n := range a.spellings {
		if best == "" || n > a.spellings[best] || (n == a.spellings[best] && s < best) {
			best = s
		}
	}
	return best
}

// topArtists orders by track count, then name.
func topArtists(tallies map[string]*artistTally, n int) []ArtistCount {
	if n <= 0 {
		return nil
	}
	out := make([]ArtistCount, 0, len(tallies))
	for _, a := range tallies {
		out = append(out, ArtistCount{Artist: a.name(), Tracks: a.tracks})
	}
	slices.SortFunc(out, func(a, b ArtistCount) int {
		if c := cmp.Compare(b.Tracks, a.Tracks); c != 0 {
			return c
		}
		return cmp.Compare(a.Artist, b.Artist)
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
