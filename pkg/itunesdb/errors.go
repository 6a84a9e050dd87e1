// Package itunesdb reads track and playlist metadata from an iPod iTunesDB file.
package itunesdb

import (
	"fmt"

	"github.com/lavabyrd/ipodyssey/pkg/itunesdb/internal/binary"
)

// OutOfBoundsError is returned when attempting to read beyond file bounds.
type OutOfBoundsError = binary.OutOfBoundsError

// UnsupportedFormatError is returned when the file is not an iTunesDB.
type UnsupportedFormatError struct {
	Path   string
	Reason string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("%s: unsupported format: %s", e.Path, e.Reason)
}

// CorruptedFileError describes a structural problem at a given offset.
// Parse never returns it; its message is recorded in Library.Warnings.
type CorruptedFileError struct {
	Path   string
	Offset int64
	Reason string
}

func (e *CorruptedFileError) Error() string {
	return fmt.Sprintf("%s: corrupted file at offset %d: %s", e.Path, e.Offset, e.Reason)
}
