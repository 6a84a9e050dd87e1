package itunesdb

import (
	"fmt"
	"io"
	"os"

	"github.com/lavabyrd/ipodyssey/pkg/itunesdb/internal/binary"
)

// Node is one chunk in a database outline.
type Node struct {
	Kind       Kind   `json:"kind"`
	Signature  string `json:"signature"`
	Offset     int64  `json:"offset"`
	HeaderSize uint32 `json:"header_size"`
	TotalSize  uint32 `json:"total_size"`
	Children   []Node `json:"children,omitempty"`
}

// listKinds hold their children after the header but their size fields are
// not a reliable bound, so children run to the end of the parent.
var listKinds = map[Kind]bool{
	KindTrackList:    true,
	KindPlaylistList: true,
	KindAlbumList:    true,
}

// Outline returns the chunk tree of the database at path down to depth
// levels below the root. It is meant for inspecting unfamiliar files.
func Outline(path string, depth int) (*Node, error) {
	file, err := os.Open(path) //#nosec G304 -- reading a user supplied database is the point
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat database: %w", err)
	}

	return OutlineReader(file, stat.Size(), path, depth)
}

// OutlineReader is Outline over an io.ReaderAt.
func OutlineReader(r io.ReaderAt, size int64, path string, depth int) (*Node, error) {
	o := (*Options)(nil).withDefaults()
	p := &parser{
		sr:   binary.NewSafeReader(r, size, path),
		opts: o,
		log:  o.Logger,
		lib:  newLibrary(),
	}

	root, err := p.readRoot()
	if err != nil {
		return nil, err
	}

	node := nodeOf(root)
	file := span{start: 0, end: size}
	node.Children = p.outline(p.bounded(root.body(), size, file), depth)
	return &node, nil
}

func (p *parser) outline(s span, depth int) []Node {
	if depth <= 0 {
		return nil
	}

	var nodes []Node
	known := func(k Kind) bool { return k != KindUnknown && k != KindDatabase }
	p.walk(s, known, func(h header) bool {
		n := nodeOf(h)
		end := h.end()
		if listKinds[h.Kind] {
			end = s.end
		}
		n.Children = p.outline(p.bounded(h.body(), end, s), depth-1)
		nodes = append(nodes, n)
		return true
	})
	return nodes
}

func nodeOf(h header) Node {
	return Node{
		Kind:       h.Kind,
		Signature:  h.Sig,
		Offset:     h.Start,
		HeaderSize: h.HeaderSize,
		TotalSize:  h.TotalSize,
	}
}
