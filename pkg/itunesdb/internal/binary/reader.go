// Package binary provides bounds-checked little-endian reads over an io.ReaderAt.
package binary

import (
	"encoding/binary"
	"fmt"
	"io"
)

// OutOfBoundsError is returned when a read would go past the end of the file.
type OutOfBoundsError struct {
	Path   string
	Offset int64
	Length int
	Size   int64
	What   string // Context: what was being read
}

func (e *OutOfBoundsError) Error() string {
	if e.Offset >= e.Size {
		return fmt.Sprintf("%s: offset %d out of bounds (file size: %d) while reading %s",
			e.Path, e.Offset, e.Size, e.What)
	}
	return fmt.Sprintf("%s: read of %d bytes at offset %d would exceed file size %d while reading %s",
		e.Path, e.Length, e.Offset, e.Size, e.What)
}

// SafeReader wraps an io.ReaderAt and refuses reads outside [0, size).
type SafeReader struct {
	r    io.ReaderAt
	size int64
	path string
}

// NewSafeReader creates a SafeReader over r, which holds size bytes.
// path is only used in error messages.
func NewSafeReader(r io.ReaderAt, size int64, path string) *SafeReader {
	return &SafeReader{r: r, size: size, path: path}
}

// Size returns the total number of readable bytes.
func (sr *SafeReader) Size() int64 { return sr.size }

// Path returns the path the reader was created with.
func (sr *SafeReader) Path() string { return sr.path }

// Clamp limits offset to the readable range.
func (sr *SafeReader) Clamp(offset int64) int64 {
	if offset < 0 {
		return 0
	}
	if offset > sr.size {
		return sr.size
	}
	return offset
}

// ReadAt fills buf from offset. The whole buffer must fit inside the file.
func (sr *SafeReader) ReadAt(buf []byte, offset int64, what string) error {
	if offset < 0 || offset+int64(len(buf)) > sr.size {
		return &OutOfBoundsError{
			Path:   sr.path,
			Offset: offset,
			Length: len(buf),
			Size:   sr.size,
			What:   what,
		}
	}
	if _, err := sr.r.ReadAt(buf, offset); err != nil && err != io.EOF {
		return fmt.Errorf("%s: read %s at offset %d: %w", sr.path, what, offset, err)
	}
	return nil
}

// ReadUpTo reads at most n bytes from offset, stopping at the end of the file.
// The returned slice is shorter than n when the file is truncated.
func (sr *SafeReader) ReadUpTo(offset int64, n int, what string) ([]byte, error) {
	if n <= 0 {
		return nil, nil
	}
	if avail := sr.size - offset; avail < int64(n) {
		if avail <= 0 {
			return nil, &OutOfBoundsError{Path: sr.path, Offset: offset, Length: n, Size: sr.size, What: what}
		}
		n = int(avail)
	}
	buf := make([]byte, n)
	if err := sr.ReadAt(buf, offset, what); err != nil {
		return nil, err
	}
	return buf, nil
}

// Integer is the set of fixed-width unsigned types Read can decode.
type Integer interface {
	uint8 | uint16 | uint32 | uint64
}

// Read decodes a little-endian integer at offset.
func Read[T Integer](sr *SafeReader, offset int64, what string) (T, error) {
	var zero T
	buf := make([]byte, sizeOf[T]())
	if err := sr.ReadAt(buf, offset, what); err != nil {
		return zero, err
	}
	return decode[T](buf), nil
}

// Field decodes a little-endian integer at off inside buf.
// Fields that do not fit in buf decode as zero.
func Field[T Integer](buf []byte, off int) T {
	var zero T
	n := sizeOf[T]()
	if off < 0 || off+n > len(buf) {
		return zero
	}
	return decode[T](buf[off : off+n])
}

func sizeOf[T Integer]() int {
	var v T
	switch any(v).(type) {
	case uint8:
		return 1
	case uint16:
		return 2
	case uint32:
		return 4
	default:
		return 8
	}
}

func decode[T Integer](b []byte) T {
	switch len(b) {
	case 1:
		return T(b[0])
	case 2:
		return T(binary.LittleEndian.Uint16(b))
	case 4:
		return T(binary.LittleEndian.Uint32(b))
	default:
		return T(binary.LittleEndian.Uint64(b))
	}
}
