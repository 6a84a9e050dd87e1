// Command ipodb reads an iPod iTunesDB and prints what it holds.
//
//	ipodb [flags] [iTunesDB ...]
//
// With -device-root and no database argument the database on the device is
// read. With -catalog every database read is also saved to a SQLite catalog,
// and -imports, -show-import and -delete-import work on what was saved.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"

	"github.com/lavabyrd/ipodyssey/internal/config"
	"github.com/lavabyrd/ipodyssey/internal/di"
	apperrors "github.com/lavabyrd/ipodyssey/internal/errors"
	"github.com/lavabyrd/ipodyssey/internal/library"
	"github.com/lavabyrd/ipodyssey/internal/logger"
	"github.com/lavabyrd/ipodyssey/pkg/itunesdb"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command and returns the process exit status.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := config.LoadConfig(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "ipodb: %v\n", err)
		return apperrors.ExitCode(err)
	}

	injector := di.NewContainer(cfg)
	defer injector.Shutdown()

	if err := di.Bootstrap(injector); err != nil {
		fmt.Fprintf(stderr, "ipodb: startup failed: %v\n", err)
		return 1
	}

	log := do.MustInvoke[*logger.Logger](injector)
	svc := do.MustInvoke[*library.Service](injector)

	if cfg.Catalog.HasCommand() {
		if err := runCatalogCommand(ctx, svc, cfg, stdout); err != nil {
			log.WithError(err).Error("catalog command failed")
			fmt.Fprintf(stderr, "ipodb: %v\n", err)
			return apperrors.ExitCode(err)
		}
		return 0
	}

	snaps, err := svc.LoadAll(ctx, cfg.Database.Paths)
	if err != nil {
		log.WithError(err).Error("load failed")
		fmt.Fprintf(stderr, "ipodb: %v\n", err)
		return apperrors.ExitCode(err)
	}

	for i, snap := range snaps {
		if i > 0 {
			fmt.Fprintln(stdout)
		}

		if cfg.Output.Outline > 0 {
			root, err := itunesdb.Outline(snap.Path, cfg.Output.Outline)
			if err != nil {
				fmt.Fprintf(stderr, "ipodb: outline: %v\n", err)
				return apperrors.ExitCode(err)
			}
			if err := writeOutline(stdout, root); err != nil {
				return 1
			}
			fmt.Fprintln(stdout)
		}

		err := library.WriteReport(stdout, snap, library.ReportOptions{
			TopArtists: cfg.Output.TopArtists,
			DeviceRoot: cfg.Database.DeviceRoot,
		})
		if err != nil {
			return 1
		}

		if cfg.Catalog.Path != "" {
			importID, err := svc.Import(ctx, snap)
			if err != nil {
				fmt.Fprintf(stderr, "ipodb: %v\n", err)
				return apperrors.ExitCode(err)
			}
			fmt.Fprintf(stdout, "\nsaved to catalog as %s\n", importID)
		}
	}

	return 0
}
