package providers

import (
	"github.com/samber/do/v2"

	"github.com/lavabyrd/ipodyssey/internal/config"
	"github.com/lavabyrd/ipodyssey/internal/logger"
	"github.com/lavabyrd/ipodyssey/internal/store/sqlite"
)

// CatalogHandle wraps the catalog store with shutdown capability. Store is
// nil when no catalog is configured.
type CatalogHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *CatalogHandle) Shutdown() error {
	if h.Store == nil {
		return nil
	}
	return h.Close()
}

// ProvideCatalog opens the SQLite catalog when a path is configured.
func ProvideCatalog(i do.Injector) (*CatalogHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Catalog.Path == "" {
		return &CatalogHandle{}, nil
	}

	s, err := sqlite.Open(cfg.Catalog.Path, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("catalog opened", "path", cfg.Catalog.Path)
	return &CatalogHandle{Store: s}, nil
}
