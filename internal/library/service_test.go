package library

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/lavabyrd/ipodyssey/internal/errors"
	"github.com/lavabyrd/ipodyssey/internal/store/sqlite"
	"github.com/lavabyrd/ipodyssey/internal/testutil"
	"github.com/lavabyrd/ipodyssey/pkg/itunesdb"
)

type fakeCatalog struct {
	saved     []string
	deleted   []string
	err       error
	imports   []*sqlite.Import
	tracks    []itunesdb.Track
	playlists []itunesdb.Playlist
	warnings  []string
}

func (c *fakeCatalog) SaveLibrary(_ context.Context, source string, _ *itunesdb.Library) (string, error) {
	if c.err != nil {
		return "", c.err
	}
	c.saved = append(c.saved, source)
	return "imp-test", nil
}

func (c *fakeCatalog) GetImport(_ context.Context, importID string) (*sqlite.Import, error) {
	if c.err != nil {
		return nil, c.err
	}
	for _, imp := range c.imports {
		if imp.ID == importID {
			return imp, nil
		}
	}
	return nil, apperrors.NotFoundf("import %s not found", importID)
}

func (c *fakeCatalog) ListImports(context.Context) ([]*sqlite.Import, error) {
	return c.imports, c.err
}

func (c *fakeCatalog) ListWarnings(context.Context, string) ([]string, error) {
	return c.warnings, c.err
}

func (c *fakeCatalog) ListTracks(context.Context, string) ([]itunesdb.Track, error) {
	return c.tracks, c.err
}

func (c *fakeCatalog) ListPlaylists(context.Context, string) ([]itunesdb.Playlist, error) {
	return c.playlists, c.err
}

func (c *fakeCatalog) DeleteImport(ctx context.Context, importID string) error {
	if _, err := c.GetImport(ctx, importID); err != nil {
		return err
	}
	c.deleted = append(c.deleted, importID)
	return nil
}

func sampleDB(t *testing.T) string {
	t.Helper()
	return testutil.WriteDB(t,
		[]testutil.Track{
			{ID: 1, Title: "Airbag", Artist: "Radiohead", FileSize: 4_000_000, DurationMS: 284_000},
			{ID: 2, Title: "Karma Police", Artist: "Radiohead", FileSize: 5_000_000, DurationMS: 264_000},
			{ID: 3, Title: "Teardrop", Artist: "Massive Attack", FileSize: 6_000_000, DurationMS: 330_000},
		},
		[]testutil.Playlist{
			{ID: 100, Name: "Mix", TrackIDs: []uint32{3, 1, 99}},
		},
	)
}

func TestService_Load(t *testing.T) {
	svc := NewService(Options{}, nil, nil)

	snap, err := svc.Load(context.Background(), sampleDB(t))
	require.NoError(t, err)

	assert.Len(t, snap.Library.Tracks, 3)
	assert.Len(t, snap.Library.Playlists, 1)
	assert.False(t, snap.LoadedAt.IsZero())
}

func TestService_LoadAppliesCaps(t *testing.T) {
	svc := NewService(Options{MaxTracks: 2}, nil, nil)

	snap, err := svc.Load(context.Background(), sampleDB(t))
	require.NoError(t, err)

	assert.Len(t, snap.Library.Tracks, 2)
	assert.NotEmpty(t, snap.Library.Warnings)
}

func TestService_LoadErrors(t *testing.T) {
	dir := t.TempDir()
	notDB := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(notDB, []byte("definitely not a database"), 0o600))

	tests := []struct {
		name     string
		path     string
		wantCode apperrors.Code
	}{
		{"missing file", filepath.Join(dir, "missing"), apperrors.CodeNotFound},
		{"wrong format", notDB, apperrors.CodeUnsupportedFormat},
	}

	svc := NewService(Options{}, nil, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap, err := svc.Load(context.Background(), tt.path)
			require.Error(t, err)
			assert.Nil(t, snap)

			var appErr *apperrors.Error
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, tt.wantCode, appErr.Code)
		})
	}
}

func TestService_LoadCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewService(Options{}, nil, nil).Load(ctx, sampleDB(t))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestService_LoadAll(t *testing.T) {
	paths := []string{
		sampleDB(t),
		testutil.WriteDB(t, []testutil.Track{{ID: 7, Title: "Solo"}}, nil),
		sampleDB(t),
	}
	svc := NewService(Options{MaxConcurrent: 2}, nil, nil)

	snaps, err := svc.LoadAll(context.Background(), paths)
	require.NoError(t, err)

	require.Len(t, snaps, 3)
	for i, snap := range snaps {
		assert.Equal(t, paths[i], snap.Path)
	}
	assert.Len(t, snaps[0].Library.Tracks, 3)
	assert.Len(t, snaps[1].Library.Tracks, 1)
}

func TestService_LoadAllFailsOnAnyError(t *testing.T) {
	svc := NewService(Options{MaxConcurrent: 4}, nil, nil)

	snaps, err := svc.LoadAll(context.Background(), []string{sampleDB(t), "/does/not/exist"})
	require.Error(t, err)
	assert.Nil(t, snaps)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestService_Import(t *testing.T) {
	catalog := &fakeCatalog{}
	svc := NewService(Options{}, catalog, nil)
	snap, err := svc.Load(context.Background(), sampleDB(t))
	require.NoError(t, err)

	importID, err := svc.Import(context.Background(), snap)
	require.NoError(t, err)

	assert.Equal(t, "imp-test", importID)
	assert.Equal(t, []string{snap.Path}, catalog.saved)
}

func TestService_ImportErrors(t *testing.T) {
	snap := &Snapshot{Path: "x", Library: &itunesdb.Library{}}

	_, err := NewService(Options{}, nil, nil).Import(context.Background(), snap)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	failing := &fakeCatalog{err: errors.New("disk full")}
	_, err = NewService(Options{}, failing, nil).Import(context.Background(), snap)
	assert.ErrorIs(t, err, apperrors.ErrInternal)
	assert.ErrorContains(t, err, "disk full")
}

func TestService_Imports(t *testing.T) {
	catalog := &fakeCatalog{imports: []*sqlite.Import{{ID: "imp-b"}, {ID: "imp-a"}}}

	imports, err := NewService(Options{}, catalog, nil).Imports(context.Background())
	require.NoError(t, err)

	require.Len(t, imports, 2)
	assert.Equal(t, "imp-b", imports[0].ID)
}

func TestService_Restore(t *testing.T) {
	importedAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	catalog := &fakeCatalog{
		imports: []*sqlite.Import{{ID: "imp-1", Source: "/mnt/ipod/iTunesDB", Version: 0x19, ImportedAt: importedAt, TrackCount: 2}},
		tracks: []itunesdb.Track{
			{ID: 1, Title: "Airbag"},
			{ID: 3, Title: "Teardrop"},
		},
		playlists: []itunesdb.Playlist{{ID: 100, Name: "Mix", TrackIDs: []uint32{3, 1}}},
		warnings:  []string{"track list ended early"},
	}

	snap, err := NewService(Options{}, catalog, nil).Restore(context.Background(), "imp-1")
	require.NoError(t, err)

	assert.Equal(t, "/mnt/ipod/iTunesDB", snap.Path)
	assert.Equal(t, importedAt, snap.LoadedAt)
	assert.Zero(t, snap.Elapsed)
	assert.Equal(t, uint32(0x19), snap.Library.Version)
	assert.Equal(t, "Teardrop", snap.Library.Tracks[3].Title)
	assert.Len(t, snap.Library.Tracks, 2)
	assert.Equal(t, []uint32{3, 1}, snap.Library.Playlists[0].TrackIDs)
	assert.Equal(t, []string{"track list ended early"}, snap.Library.Warnings)
}

func TestService_RestoreEmptyImport(t *testing.T) {
	catalog := &fakeCatalog{imports: []*sqlite.Import{{ID: "imp-1"}}}

	snap, err := NewService(Options{}, catalog, nil).Restore(context.Background(), "imp-1")
	require.NoError(t, err)

	assert.Empty(t, snap.Library.Tracks)
	assert.NotNil(t, snap.Library.Playlists)
}

func TestService_CatalogErrors(t *testing.T) {
	ctx := context.Background()

	_, err := NewService(Options{}, &fakeCatalog{}, nil).Restore(ctx, "imp-missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	err = NewService(Options{}, &fakeCatalog{}, nil).DeleteImport(ctx, "imp-missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	failing := &fakeCatalog{err: errors.New("database is locked")}
	_, err = NewService(Options{}, failing, nil).Imports(ctx)
	assert.ErrorIs(t, err, apperrors.ErrInternal)
	assert.ErrorContains(t, err, "database is locked")

	none := NewService(Options{}, nil, nil)
	_, err = none.Imports(ctx)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	_, err = none.Restore(ctx, "imp-1")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.ErrorIs(t, none.DeleteImport(ctx, "imp-1"), apperrors.ErrValidation)
}

func TestService_DeleteImport(t *testing.T) {
	catalog := &fakeCatalog{imports: []*sqlite.Import{{ID: "imp-1"}}}

	require.NoError(t, NewService(Options{}, catalog, nil).DeleteImport(context.Background(), "imp-1"))
	assert.Equal(t, []string{"imp-1"}, catalog.deleted)
}
