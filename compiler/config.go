package compiler

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/rubiojr/party/resolver"
)

// ConfigFile is the project configuration file looked up from the working
// directory upwards.
const ConfigFile = "party.toml"

// Config holds the build settings of a project.
type Config struct {
	Build   BuildConfig   `toml:"build"`
	Resolve ResolveConfig `toml:"resolve"`
	Cache   CacheConfig   `toml:"cache"`

	// Path is the file the configuration was read from, empty for defaults.
	Path string `toml:"-"`
}

// BuildConfig controls how sources are found and compiled.
type BuildConfig struct {
	// Output is the directory receiving compiled modules. Empty compiles in
	// place: outputs land next to their sources.
	Output      string   `toml:"output"`
	SourceMaps  bool     `toml:"source_maps"`
	Recurse     bool     `toml:"recurse"`
	Jobs        int      `toml:"jobs"`
	Extensions  []string `toml:"extensions"`
	Positions   bool     `toml:"positions"`
	SharedTemps bool     `toml:"shared_temps"`
}

// ResolveConfig controls dependency resolution.
type ResolveConfig struct {
	Escape resolver.Policy `toml:"escape"`
}

// CacheConfig controls the on-disk compile cache.
type CacheConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

// DefaultConfig returns the settings used when no party.toml exists.
func DefaultConfig() Config {
	return Config{
		Build: BuildConfig{
			Recurse:    true,
			Positions:  true,
			Extensions: []string{".es6", ".js"},
		},
		Resolve: ResolveConfig{Escape: resolver.Warn},
		Cache:   CacheConfig{Enabled: true},
	}
}

// InPlace reports whether compiled modules are written next to their
// sources.
func (c Config) InPlace() bool { return c.Build.Output == "" }

// SourceExtensions returns the extensions scanned for in directories. When
// compiling in place only .es6 files are sources, so earlier outputs are not
// compiled again.
func (c Config) SourceExtensions() []string {
	if !c.InPlace() {
		return c.Build.Extensions
	}
	var out []string
	for _, ext := range c.Build.Extensions {
		if ext != ".js" {
			out = append(out, ext)
		}
	}
	return out
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.Build.Jobs < 0 {
		return fmt.Errorf("build.jobs must not be negative, got %d", c.Build.Jobs)
	}
	if len(c.Build.Extensions) == 0 {
		return errors.New("build.extensions must not be empty")
	}
	for _, ext := range c.Build.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("build.extensions: %q must start with a dot", ext)
		}
	}
	return nil
}

// FindConfig walks up from startDir looking for party.toml.
func FindConfig(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ConfigFile)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}

// LoadConfig reads path over the defaults. Keys missing from the file keep
// their default value.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%s: unknown key %s", path, undecoded[0])
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Path = path
	return cfg, nil
}

// LoadProjectConfig finds and loads the party.toml governing startDir, or
// returns the defaults when there is none.
func LoadProjectConfig(startDir string) (Config, error) {
	path, ok, err := FindConfig(startDir)
	if err != nil {
		return Config{}, err
	}
	if !ok {
		return DefaultConfig(), nil
	}
	return LoadConfig(path)
}
