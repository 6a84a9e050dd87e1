package itunesdb

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/lavabyrd/ipodyssey/pkg/itunesdb/internal/binary"
)

// Default safety caps. They guard against corrupt count fields and are not
// limits of the format.
const (
	DefaultMaxTracks    = 10000
	DefaultMaxPlaylists = 100
)

// Dataset types stored at offset 12 of a dataset header.
const (
	datasetTracks    = 1
	datasetPlaylists = 2
	datasetPodcasts  = 3
)

// Options tunes a parse. The zero value is usable.
type Options struct {
	// Logger receives per-record diagnostics. Nil discards them.
	Logger *slog.Logger

	// MaxTracks caps how many track records are read from a track list.
	MaxTracks int

	// MaxPlaylists caps how many playlist records are read from a playlist list.
	MaxPlaylists int

	// IncludePodcasts also reads the podcast dataset. It repeats the
	// playlist list with podcast grouping, so it is skipped by default.
	IncludePodcasts bool
}

func (o *Options) withDefaults() Options {
	var out Options
	if o != nil {
		out = *o
	}
	if out.Logger == nil {
		out.Logger = slog.New(slog.DiscardHandler)
	}
	if out.MaxTracks <= 0 {
		out.MaxTracks = DefaultMaxTracks
	}
	if out.MaxPlaylists <= 0 {
		out.MaxPlaylists = DefaultMaxPlaylists
	}
	return out
}

// Parse reads the iTunesDB at path.
//
// Only two conditions are fatal: the file cannot be opened, or it does not
// start with a database header. Everything else degrades to a smaller
// result, with the details in Library.Warnings.
func Parse(path string, opts *Options) (*Library, error) {
	file, err := os.Open(path) //#nosec G304 -- reading a user supplied database is the point
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat database: %w", err)
	}

	return ParseReader(file, stat.Size(), path, opts)
}

// ParseReader parses a database held by r. path is used in messages only.
func ParseReader(r io.ReaderAt, size int64, path string, opts *Options) (*Library, error) {
	o := opts.withDefaults()
	p := &parser{
		sr:   binary.NewSafeReader(r, size, path),
		opts: o,
		log:  o.Logger.With("path", path),
		lib:  newLibrary(),
	}
	return p.run()
}

// parser holds the state of one parse. It is never shared.
type parser struct {
	sr   *binary.SafeReader
	opts Options
	log  *slog.Logger
	lib  *Library
}

func (p *parser) run() (*Library, error) {
	root, err := p.readRoot()
	if err != nil {
		return nil, err
	}
	p.lib.Version = root.Version
	p.log.Debug("parsing database", "version", root.Version, "size", p.sr.Size())

	// Datasets run to the end of the file. The root's total size is not
	// trusted as a bound.
	file := span{start: 0, end: p.sr.Size()}
	res := p.walk(p.bounded(root.body(), file.end, file), accepts(KindDataset), func(h header) bool {
		p.dataset(h, file)
		return true
	})
	if res.reason != stopEnd {
		p.log.Debug("stopped reading datasets", "offset", res.next, "reason", res.reason.String(), "signature", res.sig)
	}

	p.log.Info("parsed database",
		"version", p.lib.Version,
		"tracks", len(p.lib.Tracks),
		"playlists", len(p.lib.Playlists),
		"warnings", len(p.lib.Warnings),
	)
	return p.lib, nil
}

func (p *parser) readRoot() (header, error) {
	if p.sr.Size() < rootHeaderLen {
		return header{}, &UnsupportedFormatError{
			Path:   p.sr.Path(),
			Reason: "file too small to be an iTunesDB",
		}
	}

	root, err := readHeader(p.sr, 0)
	if err != nil {
		return header{}, &UnsupportedFormatError{
			Path:   p.sr.Path(),
			Reason: fmt.Sprintf("failed to read database header: %v", err),
		}
	}
	if root.Kind != KindDatabase {
		return header{}, &UnsupportedFormatError{
			Path:   p.sr.Path(),
			Reason: fmt.Sprintf("invalid database signature %q", root.Sig),
		}
	}
	return root, nil
}

// datasetDecoders dispatches on the kind of the chunk that follows a
// dataset header. Kinds without an entry are skipped.
var datasetDecoders = map[Kind]func(p *parser, s span){
	KindTrackList:    (*parser).trackList,
	KindPlaylistList: (*parser).playlistList,
	KindAlbumList:    (*parser).albumList,
}

func (p *parser) dataset(h header, parent span) {
	s := p.bounded(h.body(), h.end(), parent)

	kind, sig, err := peekKind(p.sr, s.start)
	if err != nil || s.end-s.start < headerLen {
		p.corruptf(h.Start, "dataset is empty or truncated")
		return
	}

	// The podcast dataset is the one place the dataset type, not the
	// payload tag, decides what happens: its playlist list repeats the
	// main one.
	if h.HeaderSize >= rootHeaderLen && !p.opts.IncludePodcasts {
		dsType, err := binary.Read[uint32](p.sr, h.Start+headerLen, "dataset type")
		if err == nil && dsType == datasetPodcasts {
			p.log.Debug("skipping podcast dataset", "offset", h.Start, "payload", sig)
			return
		}
	}

	decode, ok := datasetDecoders[kind]
	if !ok {
		p.warnf("skipping dataset at offset %d with unknown content %q", h.Start, sig)
		return
	}
	decode(p, s)
}

// albumList is a no-op: album lists are not decoded.
func (p *parser) albumList(s span) {
	p.log.Debug("skipping album list", "offset", s.start)
}

// listHeader reads a track or playlist list header and its child count.
func (p *parser) listHeader(s span, what string) (header, uint32, bool) {
	h, err := readHeader(p.sr, s.start)
	if err != nil {
		p.warnf("failed to read %s header at offset %d: %v", what, s.start, err)
		return header{}, 0, false
	}
	count, err := binary.Read[uint32](p.sr, s.start+headerLen, what+" count")
	if err != nil {
		p.warnf("failed to read %s count at offset %d", what, s.start)
		return header{}, 0, false
	}
	return h, count, true
}

// corruptf records a structural problem found at off.
func (p *parser) corruptf(off int64, format string, args ...any) {
	err := &CorruptedFileError{Path: p.sr.Path(), Offset: off, Reason: fmt.Sprintf(format, args...)}
	p.warnf("%s", err.Error())
}

// warnf records a recoverable problem on the result and logs it.
func (p *parser) warnf(format string, args ...any) {
	p.lib.AddWarning(format, args...)
	p.log.Warn(fmt.Sprintf(format, args...))
}
