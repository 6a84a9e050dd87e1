// Package config loads ipodb configuration from command-line flags,
// environment variables and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	apperrors "github.com/lavabyrd/ipodyssey/internal/errors"
	"github.com/lavabyrd/ipodyssey/internal/validation"
)

// DatabaseRelPath is where the database lives under a mounted device root.
var DatabaseRelPath = filepath.Join("iPod_Control", "iTunes", "iTunesDB")

// Config holds the application configuration.
type Config struct {
	App      AppConfig      `name:"app"`
	Logger   LoggerConfig   `name:"logger"`
	Database DatabaseConfig `name:"database"`
	Parser   ParserConfig   `name:"parser"`
	Catalog  CatalogConfig  `name:"catalog"`
	Library  LibraryConfig  `name:"library"`
	Output   OutputConfig   `name:"output"`
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string `name:"env" validate:"required,oneof=development staging production"`
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string `name:"level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig says which databases to read.
type DatabaseConfig struct {
	// Paths are iTunesDB files. When empty and DeviceRoot is set, the
	// database under the device root is used.
	// Required unless a catalog command is given.
	Paths []string `name:"paths" validate:"dive,required"`

	// DeviceRoot is the mount point of the device, used to map track paths
	// to host files. Optional.
	DeviceRoot string `name:"device_root"`
}

// ParserConfig holds parser safety caps.
type ParserConfig struct {
	MaxTracks       int  `name:"max_tracks" validate:"gte=1,lte=1000000"`
	MaxPlaylists    int  `name:"max_playlists" validate:"gte=1,lte=100000"`
	IncludePodcasts bool `name:"include_podcasts"`
}

// CatalogConfig holds the SQLite catalog location and the catalog commands.
// An empty Path disables the catalog.
type CatalogConfig struct {
	Path string `name:"path" validate:"required_with=List Show Delete"`

	// At most one command may be set. A command replaces reading databases.
	List   bool   `name:"list"`
	Show   string `name:"show"`
	Delete string `name:"delete"`
}

// HasCommand reports whether a catalog command was requested.
func (c CatalogConfig) HasCommand() bool {
	return c.List || c.Show != "" || c.Delete != ""
}

// LibraryConfig holds library service configuration.
type LibraryConfig struct {
	// MaxConcurrent bounds how many databases are parsed at once.
	MaxConcurrent int `name:"max_concurrent" validate:"gte=1,lte=64"`
}

// OutputConfig controls what the CLI prints.
type OutputConfig struct {
	Outline    int `name:"outline" validate:"gte=0,lte=16"` // chunk tree depth, 0 for none
	TopArtists int `name:"top_artists" validate:"gte=0,lte=1000"`
}

// LoadConfig loads configuration with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
//
// args excludes the program name. Remaining positional arguments are
// database paths. flag.ErrHelp is returned as is when -h is given.
func LoadConfig(args []string, usage io.Writer) (*Config, error) {
	fs := flag.NewFlagSet("ipodb", flag.ContinueOnError)
	fs.SetOutput(usage)
	fs.Usage = func() {
		fmt.Fprintf(usage, "usage: ipodb [flags] [iTunesDB ...]\n\nflags:\n")
		fs.PrintDefaults()
	}

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	envFile := fs.String("env-file", ".env", "Path to .env file")
	deviceRoot := fs.String("device-root", "", "Mount point of the device")
	maxTracks := fs.String("max-tracks", "", "Maximum track records read per database (default: 10000)")
	maxPlaylists := fs.String("max-playlists", "", "Maximum playlist records read per database (default: 100)")
	podcasts := fs.String("include-podcasts", "", "Also read the podcast dataset (default: false)")
	catalog := fs.String("catalog", "", "SQLite catalog to import into (default: none)")
	maxConcurrent := fs.String("max-concurrent", "", "Databases parsed at once (default: 4)")
	outline := fs.String("outline", "", "Print the chunk tree to this depth (default: 0)")
	topArtists := fs.String("top-artists", "", "Artists listed in the summary (default: 10)")
	listImports := fs.Bool("imports", false, "List the imports saved in the catalog")
	showImport := fs.String("show-import", "", "Print the summary of a saved import")
	deleteImport := fs.String("delete-import", "", "Delete a saved import")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, err
		}
		return nil, apperrors.Wrap(err, apperrors.CodeValidation, "parse flags")
	}

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: strings.ToLower(getConfigValue(*logLevel, "LOG_LEVEL", "info")),
		},
		Database: DatabaseConfig{
			Paths:      fs.Args(),
			DeviceRoot: getConfigValue(*deviceRoot, "IPODB_DEVICE_ROOT", ""),
		},
		Catalog: CatalogConfig{
			Path:   getConfigValue(*catalog, "IPODB_CATALOG", ""),
			List:   *listImports,
			Show:   *showImport,
			Delete: *deleteImport,
		},
	}

	if len(cfg.Database.Paths) == 0 {
		if v := os.Getenv("IPODB_DATABASE"); v != "" {
			cfg.Database.Paths = filepath.SplitList(v)
		}
	}

	var err error
	ints := []struct {
		dst        *int
		flag, key  string
		defaultVal int
	}{
		{&cfg.Parser.MaxTracks, *maxTracks, "IPODB_MAX_TRACKS", 10000},
		{&cfg.Parser.MaxPlaylists, *maxPlaylists, "IPODB_MAX_PLAYLISTS", 100},
		{&cfg.Library.MaxConcurrent, *maxConcurrent, "IPODB_MAX_CONCURRENT", 4},
		{&cfg.Output.Outline, *outline, "IPODB_OUTLINE", 0},
		{&cfg.Output.TopArtists, *topArtists, "IPODB_TOP_ARTISTS", 10},
	}
	for _, v := range ints {
		if *v.dst, err = getIntConfigValue(v.flag, v.key, v.defaultVal); err != nil {
			return nil, err
		}
	}
	cfg.Parser.IncludePodcasts = getBoolConfigValue(*podcasts, "IPODB_INCLUDE_PODCASTS", false)

	if err := cfg.expandPaths(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeValidation, "invalid path")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that all config values are present and in range.
func (c *Config) Validate() error {
	if err := validation.New().Validate(c); err != nil {
		return err
	}

	commands := 0
	for _, set := range []bool{c.Catalog.List, c.Catalog.Show != "", c.Catalog.Delete != ""} {
		if set {
			commands++
		}
	}
	switch {
	case commands > 1:
		return apperrors.Validation("invalid configuration: -imports, -show-import and -delete-import cannot be combined")
	case commands == 0 && len(c.Database.Paths) == 0:
		return apperrors.ValidationWithDetails("invalid configuration: database.paths is required",
			map[string]string{"database.paths": "is required"})
	}
	return nil
}

// expandPaths makes every configured path absolute and derives the database
// path from the device root when none was given.
func (c *Config) expandPaths() error {
	var err error
	if c.Database.DeviceRoot, err = expandPath(c.Database.DeviceRoot); err != nil {
		return err
	}
	if len(c.Database.Paths) == 0 && c.Database.DeviceRoot != "" {
		c.Database.Paths = []string{filepath.Join(c.Database.DeviceRoot, DatabaseRelPath)}
	}
	for i, p := range c.Database.Paths {
		if c.Database.Paths[i], err = expandPath(p); err != nil {
			return err
		}
	}
	if c.Catalog.Path, err = expandPath(c.Catalog.Path); err != nil {
		return err
	}
	return nil
}

// expandPath expands ~ and makes the path absolute. Empty stays empty.
func expandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}
	return absPath, nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getBoolConfigValue accepts "true", "1" and "yes" (any case) as true.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getIntConfigValue returns an int from flag, env var, or default. A value
// that is not a number is a validation error.
func getIntConfigValue(flagValue, envKey string, defaultValue int) (int, error) {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(strValue)
	if err != nil {
		return 0, apperrors.Validation(fmt.Sprintf("invalid value %q for %s: not a number", strValue, envKey))
	}
	return n, nil
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		// Real environment variables win over the file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
