package itunesdb

import (
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/lavabyrd/ipodyssey/pkg/itunesdb/internal/binary"
)

// String section layout, relative to the section start.
const (
	stringOffType     = 12
	stringOffLength   = 32 // after 16 reserved bytes
	stringOffEncoding = 36
	stringOffData     = 40

	// maxStringLen rejects lengths that can only come from corrupt data.
	maxStringLen = 9999

	encodingUTF16 = 1
)

// Smart playlist sections. Their content is not decoded.
const (
	stringSmartData  = 50
	stringSmartRules = 51
)

// stringSection decodes a string section and returns its type and text.
// A length outside the sane range, or one that does not fit in the section,
// yields an empty string rather than an error.
func (p *parser) stringSection(h header) (uint32, string) {
	typ, err := binary.Read[uint32](p.sr, h.Start+stringOffType, "string type")
	if err != nil {
		return 0, ""
	}
	length, err := binary.Read[uint32](p.sr, h.Start+stringOffLength, "string length")
	if err != nil {
		return typ, ""
	}
	encoding, err := binary.Read[uint32](p.sr, h.Start+stringOffEncoding, "string encoding")
	if err != nil {
		return typ, ""
	}

	if length == 0 {
		return typ, ""
	}
	if length > maxStringLen || h.Start+stringOffData+int64(length) > h.end() {
		p.log.Debug("ignoring string with bad length", "offset", h.Start, "type", typ, "length", length)
		return typ, ""
	}

	buf := make([]byte, length)
	if err := p.sr.ReadAt(buf, h.Start+stringOffData, "string data"); err != nil {
		p.log.Debug("string data truncated", "offset", h.Start, "error", err)
		return typ, ""
	}

	return typ, decodeText(buf, encoding)
}

// decodeText decodes UTF-16LE (encoding 1) or UTF-8 text. Invalid sequences
// are replaced or dropped and trailing NULs are removed.
func decodeText(b []byte, encoding uint32) string {
	var s string
	if encoding == encodingUTF16 {
		// A dangling odd byte cannot form a code unit.
		b = b[:len(b)&^1]
		dec := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
		out, _, err := transform.Bytes(dec, b)
		if err != nil {
			return ""
		}
		s = string(out)
	} else {
		s = strings.ToValidUTF8(string(b), "")
	}
	return strings.TrimRight(s, "\x00")
}
