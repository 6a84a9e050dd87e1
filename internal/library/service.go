// Package library loads iTunesDB files and derives the views the ipodb
// command prints: resolved playlists, summaries and host file paths.
package library

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/lavabyrd/ipodyssey/internal/errors"
	"github.com/lavabyrd/ipodyssey/internal/store/sqlite"
	"github.com/lavabyrd/ipodyssey/pkg/itunesdb"
)

// Catalog persists parsed libraries. The SQLite store implements it.
type Catalog interface {
	SaveLibrary(ctx context.Context, source string, lib *itunesdb.Library) (string, error)
	GetImport(ctx context.Context, importID string) (*sqlite.Import, error)
	ListImports(ctx context.Context) ([]*sqlite.Import, error)
	ListWarnings(ctx context.Context, importID string) ([]string, error)
	ListTracks(ctx context.Context, importID string) ([]itunesdb.Track, error)
	ListPlaylists(ctx context.Context, importID string) ([]itunesdb.Playlist, error)
	DeleteImport(ctx context.Context, importID string) error
}

// Options configures a Service.
type Options struct {
	MaxTracks       int
	MaxPlaylists    int
	IncludePodcasts bool

	// MaxConcurrent bounds LoadAll. Values below 1 mean one at a time.
	MaxConcurrent int
}

// Snapshot is one parsed database.
type Snapshot struct {
	Path     string
	Library  *itunesdb.Library
	LoadedAt time.Time
	Elapsed  time.Duration
}

// Service loads databases and optionally records them in a catalog.
type Service struct {
	opts    Options
	catalog Catalog
	logger  *slog.Logger
	now     func() time.Time
}

// NewService creates a library service. catalog may be nil.
func NewService(opts Options, catalog Catalog, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		opts:    opts,
		catalog: catalog,
		logger:  logger,
		now:     time.Now,
	}
}

// Load parses the database at path.
//
// A missing file is a NOT_FOUND error and a file that is not a database is
// UNSUPPORTED_FORMAT. Recoverable damage is not an error: it shows up in
// the library's warnings.
func (s *Service) Load(ctx context.Context, path string) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := s.now()
	lib, err := itunesdb.Parse(path, &itunesdb.Options{
		Logger:          s.logger,
		MaxTracks:       s.opts.MaxTracks,
		MaxPlaylists:    s.opts.MaxPlaylists,
		IncludePodcasts: s.opts.IncludePodcasts,
	})
	if err != nil {
		return nil, classify(path, err)
	}

	snap := &Snapshot{
		Path:     path,
		Library:  lib,
		LoadedAt: start,
		Elapsed:  s.now().Sub(start),
	}
	if len(lib.Warnings) > 0 {
		s.logger.Warn("database parsed with warnings",
			"path", path,
			"warnings", len(lib.Warnings),
		)
	}
	return snap, nil
}

// LoadAll parses several databases concurrently. Results are in the order
// of paths. The first failure cancels the loads that have not started.
func (s *Service) LoadAll(ctx context.Context, paths []string) ([]*Snapshot, error) {
	out := make([]*Snapshot, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(s.opts.MaxConcurrent, 1))
	for i, path := range paths {
		g.Go(func() error {
			snap, err := s.Load(gctx, path)
			if err != nil {
				return err
			}
			out[i] = snap
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Import records a snapshot in the catalog and returns the import ID.
func (s *Service) Import(ctx context.Context, snap *Snapshot) (string, error) {
	if s.catalog == nil {
		return "", errNoCatalog
	}
	importID, err := s.catalog.SaveLibrary(ctx, snap.Path, snap.Library)
	if err != nil {
		return "", catalogError(err, "import "+snap.Path)
	}

	s.logger.Info("library imported",
		"import_id", importID,
		"path", snap.Path,
		"tracks", len(snap.Library.Tracks),
		"playlists", len(snap.Library.Playlists),
	)
	return importID, nil
}

// Imports lists the catalog's imports, newest first.
func (s *Service) Imports(ctx context.Context) ([]*sqlite.Import, error) {
	if s.catalog == nil {
		return nil, errNoCatalog
	}
	imports, err := s.catalog.ListImports(ctx)
	if err != nil {
		return nil, catalogError(err, "list imports")
	}
	return imports, nil
}

// Restore rebuilds the snapshot saved as importID. Its Path is the source
// the import was read from and its Elapsed is zero.
func (s *Service) Restore(ctx context.Context, importID string) (*Snapshot, error) {
	if s.catalog == nil {
		return nil, errNoCatalog
	}

	imp, err := s.catalog.GetImport(ctx, importID)
	if err != nil {
		return nil, catalogError(err, "get import "+importID)
	}

	lib := &itunesdb.Library{
		Version: imp.Version,
		Tracks:  make(map[uint32]itunesdb.Track, imp.TrackCount),
	}
	tracks, err := s.catalog.ListTracks(ctx, importID)
	if err != nil {
		return nil, catalogError(err, "list tracks")
	}
	for _, t := range tracks {
		lib.Tracks[t.ID] = t
	}
	if lib.Playlists, err = s.catalog.ListPlaylists(ctx, importID); err != nil {
		return nil, catalogError(err, "list playlists")
	}
	if lib.Playlists == nil {
		lib.Playlists = []itunesdb.Playlist{}
	}
	if lib.Warnings, err = s.catalog.ListWarnings(ctx, importID); err != nil {
		return nil, catalogError(err, "list warnings")
	}

	return &Snapshot{
		Path:     imp.Source,
		Library:  lib,
		LoadedAt: imp.ImportedAt,
	}, nil
}

// DeleteImport removes an import from the catalog.
func (s *Service) DeleteImport(ctx context.Context, importID string) error {
	if s.catalog == nil {
		return errNoCatalog
	}
	if err := s.catalog.DeleteImport(ctx, importID); err != nil {
		return catalogError(err, "delete import "+importID)
	}
	s.logger.Info("import deleted", "import_id", importID)
	return nil
}

var errNoCatalog = apperrors.Validation("no catalog configured")

// catalogError keeps coded errors from the store and marks anything else
// as internal.
func catalogError(err error, msg string) error {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperrors.Wrap(err, apperrors.CodeInternal, msg)
}

// classify maps parser failures to application error codes.
func classify(path string, err error) error {
	var unsupported *itunesdb.UnsupportedFormatError
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return apperrors.Wrapf(err, apperrors.CodeNotFound, "database %s not found", path)
	case errors.As(err, &unsupported):
		return apperrors.Wrap(err, apperrors.CodeUnsupportedFormat, "read database")
	default:
		return apperrors.Wrap(err, apperrors.CodeInternal, fmt.Sprintf("read database %s", path))
	}
}
