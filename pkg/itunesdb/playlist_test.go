package itunesdb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parsePlaylists(t *testing.T, playlists ...[]byte) []Playlist {
	t.Helper()
	data := database(1, dataset(datasetPlaylists, playlistList(playlists...)))
	return parseBytes(t, data, nil).Playlists
}

func TestPlaylist_NameAndItemsInOrder(t *testing.T) {
	pls := parsePlaylists(t, playlist(77, 0,
		utf8String(1, "Road Trip"),
		playlistItem(30), playlistItem(10), playlistItem(20),
	))

	require.Len(t, pls, 1)
	assert.Equal(t, uint32(77), pls[0].ID)
	assert.Equal(t, "Road Trip", pls[0].Name)
	assert.Equal(t, []uint32{30, 10, 20}, pls[0].TrackIDs)
	assert.False(t, pls[0].Smart)
}

func TestPlaylist_DuplicateItemsKept(t *testing.T) {
	pls := parsePlaylists(t, playlist(1, 0,
		utf8String(1, "Repeat"),
		playlistItem(5), playlistItem(5), playlistItem(0),
	))

	require.Len(t, pls, 1)
	assert.Equal(t, []uint32{5, 5, 0}, pls[0].TrackIDs)
}

func TestPlaylist_EmptyAndUnnamedKept(t *testing.T) {
	pls := parsePlaylists(t,
		playlist(1, 0, utf8String(1, "Empty")),
		playlist(2, 0, playlistItem(9)),
		playlist(3, 0),
	)

	require.Len(t, pls, 3)
	assert.Equal(t, "Empty", pls[0].Name)
	assert.NotNil(t, pls[0].TrackIDs)
	assert.Empty(t, pls[0].TrackIDs)
	assert.Empty(t, pls[1].Name)
	assert.Equal(t, []uint32{9}, pls[1].TrackIDs)
	assert.Empty(t, pls[2].Name)
	assert.Empty(t, pls[2].TrackIDs)
}

func TestPlaylist_FirstStringIsNameWhateverItsType(t *testing.T) {
	pls := parsePlaylists(t, playlist(1, 0, utf16String(100, "Typed"), playlistItem(1)))

	require.Len(t, pls, 1)
	assert.Equal(t, "Typed", pls[0].Name)
}

func TestPlaylist_SmartDetection(t *testing.T) {
	pls := parsePlaylists(t,
		playlist(1, 0, utf8String(1, "Recently Added"), playlistItem(4), stringRaw(stringSmartData, 0, 0, nil, 8), stringRaw(stringSmartRules, 0, 0, nil, 8)),
		playlist(2, 0, utf8String(1, "Rules First"), stringRaw(stringSmartRules, 0, 0, nil, 8), playlistItem(4)),
		playlist(3, 0, utf8String(1, "Plain"), playlistItem(4)),
	)

	require.Len(t, pls, 3)
	assert.True(t, pls[0].Smart)
	assert.Equal(t, []uint32{4}, pls[0].TrackIDs)
	assert.True(t, pls[1].Smart)
	assert.Empty(t, pls[1].TrackIDs)
	assert.False(t, pls[2].Smart)
	assert.Equal(t, []uint32{4}, pls[2].TrackIDs)
}

func TestPlaylist_SecondStringEndsItems(t *testing.T) {
	pls := parsePlaylists(t,
		playlist(1, 0, utf8String(1, "Name"), utf8String(100, "column info"), playlistItem(1), playlistItem(2), playlistItem(3)),
		playlist(2, 0, utf8String(1, "Next"), playlistItem(7)),
	)

	require.Len(t, pls, 2)
	assert.Equal(t, "Name", pls[0].Name)
	assert.Empty(t, pls[0].TrackIDs)
	assert.False(t, pls[0].Smart)
	assert.Equal(t, []uint32{7}, pls[1].TrackIDs)
}

func TestPlaylist_ItemThenStringEnds(t *testing.T) {
	pls := parsePlaylists(t, playlist(1, 0, playlistItem(9), utf8String(1, "Late Name"), playlistItem(10)))

	require.Len(t, pls, 1)
	assert.Empty(t, pls[0].Name)
	assert.Equal(t, []uint32{9}, pls[0].TrackIDs)
}

func TestPlaylist_Timestamp(t *testing.T) {
	created := time.Date(2006, 11, 2, 9, 0, 0, 0, time.UTC)
	pls := parsePlaylists(t,
		playlist(1, toPlayerTime(created), utf8String(1, "Dated")),
		playlist(2, 0, utf8String(1, "Undated")),
	)

	require.Len(t, pls, 2)
	require.NotNil(t, pls[0].Timestamp)
	assert.True(t, created.Equal(*pls[0].Timestamp))
	assert.Nil(t, pls[1].Timestamp)
}

func TestPlaylist_UnknownChildEndsPlaylist(t *testing.T) {
	pls := parsePlaylists(t,
		playlist(1, 0, utf8String(1, "Cut"), playlistItem(1), chunk("mhzz", 12, nil), playlistItem(2)),
		playlist(2, 0, utf8String(1, "Next")),
	)

	require.Len(t, pls, 2)
	assert.Equal(t, []uint32{1}, pls[0].TrackIDs)
	assert.Equal(t, "Next", pls[1].Name)
}

func TestPlaylist_WrongTagInListStops(t *testing.T) {
	data := database(1, dataset(datasetPlaylists, playlistList(
		playlist(1, 0, utf8String(1, "One")),
		track(trackFields{ID: 1}),
		playlist(2, 0, utf8String(1, "Two")),
	)))

	lib := parseBytes(t, data, nil)

	require.Len(t, lib.Playlists, 1)
	assert.Equal(t, "One", lib.Playlists[0].Name)
	require.Len(t, lib.Warnings, 1)
	assert.Contains(t, lib.Warnings[0], "1 of 3 playlists")
}
