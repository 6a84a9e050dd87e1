// Package providers contains dependency injection providers for the ipodb command.
package providers

import (
	"github.com/samber/do/v2"

	"github.com/lavabyrd/ipodyssey/internal/config"
	"github.com/lavabyrd/ipodyssey/internal/logger"
)

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.Logger.Level == "debug",
		Environment: cfg.App.Environment,
	})

	log.Debug("configuration loaded",
		"environment", cfg.App.Environment,
		"databases", len(cfg.Database.Paths),
		"device_root", cfg.Database.DeviceRoot,
		"catalog", cfg.Catalog.Path,
		"max_tracks", cfg.Parser.MaxTracks,
		"max_playlists", cfg.Parser.MaxPlaylists,
	)

	return log, nil
}
