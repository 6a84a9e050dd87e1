package providers

import (
	"github.com/samber/do/v2"

	"github.com/lavabyrd/ipodyssey/internal/config"
	"github.com/lavabyrd/ipodyssey/internal/library"
	"github.com/lavabyrd/ipodyssey/internal/logger"
)

// ProvideLibraryService provides the library service.
func ProvideLibraryService(i do.Injector) (*library.Service, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	catalog := do.MustInvoke[*CatalogHandle](i)

	opts := library.Options{
		MaxTracks:       cfg.Parser.MaxTracks,
		MaxPlaylists:    cfg.Parser.MaxPlaylists,
		IncludePodcasts: cfg.Parser.IncludePodcasts,
		MaxConcurrent:   cfg.Library.MaxConcurrent,
	}

	// A nil *sqlite.Store must not become a non-nil interface.
	var c library.Catalog
	if catalog.Store != nil {
		c = catalog.Store
	}

	return library.NewService(opts, c, log.Logger), nil
}
