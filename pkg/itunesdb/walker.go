package itunesdb

import "strconv"

// span is the half-open byte range [start, end) a walk may cover.
type span struct {
	start, end int64
}

// stopReason says why a walk ended.
type stopReason int

const (
	stopEnd        stopReason = iota // reached the end of the span
	stopKind                         // next chunk is not an accepted kind
	stopTruncated                    // a header could not be read
	stopNoProgress                   // total size would not move the cursor forward
	stopVisitor                      // the visitor asked to stop
)

func (r stopReason) String() string {
	switch r {
	case stopEnd:
		return "end of chunk"
	case stopKind:
		return "unexpected chunk"
	case stopTruncated:
		return "truncated"
	case stopNoProgress:
		return "invalid chunk size"
	default:
		return "limit reached"
	}
}

// walkResult describes where and why a walk stopped.
type walkResult struct {
	next   int64
	reason stopReason
	sig    string // signature found at next, when reason is stopKind
}

// accepts builds a kind filter for walk.
func accepts(kinds ...Kind) func(Kind) bool {
	return func(k Kind) bool {
		for _, want := range kinds {
			if k == want {
				return true
			}
		}
		return false
	}
}

// walk visits consecutive sibling chunks starting at s.start.
//
// The offset of each sibling is always start + total_size of the previous
// chunk, whatever the visitor read. Decoders therefore never position the
// cursor themselves; unknown trailing fields and partially understood
// children are skipped here.
func (p *parser) walk(s span, accept func(Kind) bool, visit func(h header) bool) walkResult {
	off := s.start
	for {
		if s.end-off < 4 {
			return walkResult{next: off, reason: stopEnd}
		}

		kind, sig, err := peekKind(p.sr, off)
		if err != nil {
			return walkResult{next: off, reason: stopTruncated}
		}
		if !accept(kind) {
			return walkResult{next: off, reason: stopKind, sig: sig}
		}

		h, err := readHeader(p.sr, off)
		if err != nil {
			return walkResult{next: off, reason: stopTruncated}
		}
		if h.TotalSize == 0 {
			return walkResult{next: off, reason: stopNoProgress, sig: sig}
		}

		if !visit(h) {
			return walkResult{next: h.end(), reason: stopVisitor}
		}

		off = h.end()
	}
}

// bounded returns the span from off to end, clamped to the file and to the
// parent span.
func (p *parser) bounded(off, end int64, parent span) span {
	end = min(end, parent.end)
	return span{start: p.sr.Clamp(off), end: p.sr.Clamp(end)}
}

func (r walkResult) String() string {
	if r.reason == stopKind || r.reason == stopNoProgress {
		return r.reason.String() + " " + strconv.Quote(r.sig)
	}
	return r.reason.String()
}
