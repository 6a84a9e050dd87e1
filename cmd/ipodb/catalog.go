package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/lavabyrd/ipodyssey/internal/config"
	"github.com/lavabyrd/ipodyssey/internal/library"
	"github.com/lavabyrd/ipodyssey/internal/store/sqlite"
)

// runCatalogCommand runs the one catalog command set in cfg.
func runCatalogCommand(ctx context.Context, svc *library.Service, cfg *config.Config, w io.Writer) error {
	switch {
	case cfg.Catalog.List:
		imports, err := svc.Imports(ctx)
		if err != nil {
			return err
		}
		return writeImports(w, imports)

	case cfg.Catalog.Show != "":
		snap, err := svc.Restore(ctx, cfg.Catalog.Show)
		if err != nil {
			return err
		}
		return library.WriteReport(w, snap, library.ReportOptions{
			TopArtists: cfg.Output.TopArtists,
			DeviceRoot: cfg.Database.DeviceRoot,
		})

	default:
		if err := svc.DeleteImport(ctx, cfg.Catalog.Delete); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w, "deleted %s\n", cfg.Catalog.Delete)
		return err
	}
}

func writeImports(w io.Writer, imports []*sqlite.Import) error {
	if len(imports) == 0 {
		_, err := fmt.Fprintln(w, "no imports")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSAVED\tTRACKS\tPLAYLISTS\tWARNINGS\tSOURCE")
	for _, imp := range imports {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
			imp.ID,
			humanize.Time(imp.ImportedAt),
			humanize.Comma(int64(imp.TrackCount)),
			humanize.Comma(int64(imp.PlaylistCount)),
			imp.WarningCount,
			imp.Source,
		)
	}
	return tw.Flush()
}
