package library

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// ReportOptions controls WriteReport.
type ReportOptions struct {
	TopArtists int
	DeviceRoot string // when set, unreachable track files are counted
}

// WriteReport prints a plain-text summary of snap.
func WriteReport(w io.Writer, snap *Snapshot, opts ReportOptions) error {
	lib := snap.Library
	sum := Summarize(lib, opts.TopArtists)

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", snap.Path)
	fmt.Fprintf(&b, "  format version  0x%x\n", sum.Version)
	fmt.Fprintf(&b, "  tracks          %s\n", humanize.Comma(int64(sum.Tracks)))
	fmt.Fprintf(&b, "  playlists       %s (%d smart)\n", humanize.Comma(int64(sum.Playlists)), sum.SmartPlaylists)
	fmt.Fprintf(&b, "  total size      %s\n", humanize.Bytes(sum.TotalSize))
	fmt.Fprintf(&b, "  total duration  %s\n", formatDuration(sum.TotalDuration))
	fmt.Fprintf(&b, "  total plays     %s\n", humanize.Comma(int64(sum.TotalPlays)))
	switch {
	case snap.Elapsed > 0:
		fmt.Fprintf(&b, "  parsed in       %s\n", snap.Elapsed.Round(time.Millisecond))
	case !snap.LoadedAt.IsZero():
		// Restored from the catalog.
		fmt.Fprintf(&b, "  saved           %s\n", snap.LoadedAt.UTC().Format(time.DateTime))
	}

	if len(sum.TopArtists) > 0 {
		b.WriteString("\ntop artists\n")
		for i, a := range sum.TopArtists {
			fmt.Fprintf(&b, "  %2d. %s (%s)\n", i+1, a.Artist, pluralTracks(a.Tracks))
		}
	}

	resolved := ResolvePlaylists(lib)
	if len(resolved) > 0 {
		b.WriteString("\nplaylists\n")
		for _, pl := range resolved {
			name := pl.Name
			if name == "" {
				name = fmt.Sprintf("(unnamed %d)", pl.ID)
			}
			fmt.Fprintf(&b, "  %-32s %s, %s", name, pluralTracks(len(pl.Tracks)),
				formatDuration(time.Duration(pl.DurationMS())*time.Millisecond))
			if pl.Smart {
				b.WriteString(", smart")
			}
			if len(pl.Missing) > 0 {
				fmt.Fprintf(&b, ", %d missing", len(pl.Missing))
			}
			b.WriteByte('\n')
		}
	}

	if opts.DeviceRoot != "" {
		missing, checked := missingFiles(lib, opts.DeviceRoot)
		fmt.Fprintf(&b, "\ndevice files    %s of %s tracks found under %s\n",
			humanize.Comma(int64(checked-missing)), humanize.Comma(int64(checked)), opts.DeviceRoot)
	}

	if sum.MissingRefs > 0 {
		fmt.Fprintf(&b, "\n%d playlist entries reference unknown tracks\n", sum.MissingRefs)
	}
	if len(lib.Warnings) > 0 {
		fmt.Fprintf(&b, "\nwarnings (%d)\n", len(lib.Warnings))
		for _, warning := range lib.Warnings {
			fmt.Fprintf(&b, "  - %s\n", warning)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func pluralTracks(n int) string {
	if n == 1 {
		return "1 track"
	}
	return humanize.Comma(int64(n)) + " tracks"
}

// formatDuration renders h:mm:ss, or m:ss under an hour.
func formatDuration(d time.Duration) string {
	secs := int64(d / time.Second)
	h, m, s := secs/3600, secs/60%60, secs%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
