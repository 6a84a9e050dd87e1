// Package di provides dependency injection configuration for the ipodb command.
package di

import (
	"github.com/samber/do/v2"

	"github.com/lavabyrd/ipodyssey/internal/config"
	"github.com/lavabyrd/ipodyssey/internal/di/providers"
	"github.com/lavabyrd/ipodyssey/internal/library"
	"github.com/lavabyrd/ipodyssey/internal/logger"
)

// NewContainer creates the DI container around an already loaded
// configuration, so flag and validation errors are reported before any
// service exists.
func NewContainer(cfg *config.Config) *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.ProvideValue(injector, cfg)
	do.Provide(injector, providers.ProvideLogger)

	// Storage
	do.Provide(injector, providers.ProvideCatalog)

	// Services
	do.Provide(injector, providers.ProvideLibraryService)

	return injector
}

// Bootstrap resolves every service so storage errors surface before any
// work starts.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*logger.Logger](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.CatalogHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*library.Service](injector); err != nil {
		return err
	}
	return nil
}
