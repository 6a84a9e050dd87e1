package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/lavabyrd/ipodyssey/pkg/itunesdb"
)

// writeOutline prints the chunk tree, one chunk per line, indented by depth.
func writeOutline(w io.Writer, root *itunesdb.Node) error {
	bw := bufio.NewWriter(w)
	writeNode(bw, *root, 0)
	return bw.Flush()
}

func writeNode(w *bufio.Writer, n itunesdb.Node, depth int) {
	fmt.Fprintf(w, "%s%s %-13s offset=%d header=%d total=%d\n",
		strings.Repeat("  ", depth), n.Signature, n.Kind, n.Offset, n.HeaderSize, n.TotalSize)
	for _, c := range n.Children {
		writeNode(w, c, depth+1)
	}
}
