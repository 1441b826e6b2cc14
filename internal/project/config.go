package project

import (
	"cmp"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// ConfigFileName is the project configuration file Discover looks for.
const ConfigFileName = "slotwise.toml"

// ErrInvalidConfig indicates a slotwise.toml with out-of-range values.
var ErrInvalidConfig = errors.New("invalid project configuration")

// Config is the decoded slotwise.toml.
type Config struct {
	Resolve ResolveConfig `toml:"resolve"`
	Trace   TraceConfig   `toml:"trace"`
	Cache   CacheConfig   `toml:"cache"`
	UI      UIConfig      `toml:"ui"`

	// Path is the file the config was read from; empty for defaults.
	Path string `toml:"-"`
}

type ResolveConfig struct {
	Jobs           int      `toml:"jobs"`
	MaxDiagnostics int      `toml:"max_diagnostics"`
	Manifests      []string `toml:"manifests"`
}

type TraceConfig struct {
	Level    string `toml:"level"`
	Mode     string `toml:"mode"`
	Output   string `toml:"output"`
	Format   string `toml:"format"`
	RingSize int    `toml:"ring_size"`
}

type CacheConfig struct {
	Enable bool   `toml:"enable"`
	Dir    string `toml:"dir"`
}

type UIConfig struct {
	Mode  string `toml:"mode"`  // auto | on | off
	Color string `toml:"color"` // auto | on | off
}

// Default returns the configuration used when no slotwise.toml exists.
func Default() Config {
	return Config{
		Resolve: ResolveConfig{MaxDiagnostics: 100},
		Trace:   TraceConfig{Level: "off", Mode: "ring", Output: "-", Format: "auto", RingSize: 4096},
		Cache:   CacheConfig{Enable: true},
		UI:      UIConfig{Mode: "auto", Color: "auto"},
	}
}

// LoadConfig decodes path over Default. It returns the keys it did not
// recognize alongside the config.
func LoadConfig(path string) (Config, []string, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	cfg.Path = path
	var unknown []string
	for _, key := range meta.Undecoded() {
		unknown = append(unknown, key.String())
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, unknown, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, unknown, nil
}

// Discover finds slotwise.toml above startDir and loads it. Without one it
// returns Default and ok=false.
func Discover(startDir string) (cfg Config, unknown []string, ok bool, err error) {
	path, ok, err := FindConfig(startDir)
	if err != nil {
		return Config{}, nil, false, err
	}
	if !ok {
		return Default(), nil, false, nil
	}
	cfg, unknown, err = LoadConfig(path)
	return cfg, unknown, true, err
}

// FindConfig returns the nearest slotwise.toml in startDir or one of its
// parents. Directories with that name are ignored.
func FindConfig(startDir string) (string, bool, error) {
	dir, err := filepath.Abs(cmp.Or(startDir, "."))
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for ; ; dir = filepath.Dir(dir) {
		candidate := filepath.Join(dir, ConfigFileName)
		info, err := os.Stat(candidate)
		switch {
		case err == nil && info.Mode().IsRegular():
			return candidate, true, nil
		case err != nil && !errors.Is(err, fs.ErrNotExist):
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		if filepath.Dir(dir) == dir {
			return "", false, nil
		}
	}
}

// Validate checks value ranges and enumerations.
func (c Config) Validate() error {
	var errs []error
	if c.Resolve.Jobs < 0 {
		errs = append(errs, fmt.Errorf("resolve.jobs must be >= 0, got %d", c.Resolve.Jobs))
	}
	if c.Resolve.MaxDiagnostics < 0 {
		errs = append(errs, fmt.Errorf("resolve.max_diagnostics must be >= 0, got %d", c.Resolve.MaxDiagnostics))
	}
	if c.Trace.RingSize < 0 {
		errs = append(errs, fmt.Errorf("trace.ring_size must be >= 0, got %d", c.Trace.RingSize))
	}
	for key, v := range map[string]string{"ui.mode": c.UI.Mode, "ui.color": c.UI.Color} {
		switch strings.ToLower(v) {
		case "", "auto", "on", "off":
		default:
			errs = append(errs, fmt.Errorf("%s must be auto, on or off, got %q", key, v))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}

// ManifestPaths returns [resolve].manifests resolved against the config's
// directory.
func (c Config) ManifestPaths() []string {
	out := make([]string, 0, len(c.Resolve.Manifests))
	base := filepath.Dir(c.Path)
	for _, p := range c.Resolve.Manifests {
		if !filepath.IsAbs(p) && c.Path != "" {
			p = filepath.Join(base, p)
		}
		out = append(out, p)
	}
	return out
}

// CacheDir returns the cache directory, relative entries resolved against
// the config's directory. Empty means the user cache default.
func (c Config) CacheDir() string {
	dir := c.Cache.Dir
	if dir == "" || filepath.IsAbs(dir) || c.Path == "" {
		return dir
	}
	return filepath.Join(filepath.Dir(c.Path), dir)
}
