package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Default remote sources.
const (
	DefaultDataURL = "https://unpkg.com/simple-icons/data/simple-icons.json"
	DefaultCDNURL  = "https://cdn.simpleicons.org"
)

// Limits enforced by Validate.
const (
	MaxSize = 4096
)

// Config holds application configuration.
//
// Every field can be set in config.json and overridden by the SICON_*
// environment variable named in its env tag. Zero values mean "not set" so
// that layers can be merged.
type Config struct {
	// DataURL is the remote JSON catalog fetched on a cache miss.
	DataURL string `json:"data_url,omitempty" env:"SICON_DATA_URL"`

	// CDNURL is the base URL for icon documents (<base>/<slug>[/<hex>]).
	CDNURL string `json:"cdn_url,omitempty" env:"SICON_CDN_URL"`

	// CacheDir holds the catalog cache file (data.json).
	// Empty disables the cache entirely.
	CacheDir string `json:"cache_dir,omitempty" env:"SICON_CACHE_DIR"`

	// DefaultFormat is used when neither --format nor the output extension picks one.
	DefaultFormat string `json:"default_format,omitempty" env:"SICON_FORMAT"`

	// DefaultSize is the raster edge length in pixels.
	DefaultSize int `json:"default_size,omitempty" env:"SICON_SIZE"`

	// FuzzyThreshold is the minimum similarity score (0-100) for a fuzzy match.
	FuzzyThreshold int `json:"fuzzy_threshold,omitempty" env:"SICON_FUZZY_THRESHOLD"`

	// HTTPTimeoutSeconds bounds each remote request.
	HTTPTimeoutSeconds int `json:"http_timeout_seconds,omitempty" env:"SICON_HTTP_TIMEOUT"`

	// Quiet suppresses spinners and informational output in the CLI.
	Quiet bool `json:"quiet,omitempty" env:"SICON_QUIET"`

	// PackagerCommand is the external tool that merges an iconset into an .icns bundle.
	PackagerCommand string `json:"packager_command,omitempty" env:"SICON_PACKAGER"`

	// DisableHistory turns off the download history ledger.
	DisableHistory bool `json:"disable_history,omitempty" env:"SICON_NO_HISTORY"`

	// AllowedOutputDirs lists extra directories MCP downloads may write under.
	// The server's working directory is always allowed.
	AllowedOutputDirs []string `json:"allowed_output_dirs,omitempty" env:"SICON_ALLOWED_OUTPUT_DIRS" envSeparator:","`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty" env:"SICON_DISABLED_TOOLS" envSeparator:","`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		DataURL:            DefaultDataURL,
		CDNURL:             DefaultCDNURL,
		CacheDir:           defaultCacheDir(),
		DefaultFormat:      "svg",
		DefaultSize:        256,
		FuzzyThreshold:     60,
		HTTPTimeoutSeconds: 30,
		PackagerCommand:    "iconutil",
	}
}

// defaultCacheDir returns the per-user cache location, or "" when the
// platform has none.
func defaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "sicon")
}

// CacheFile returns the catalog cache path, or "" when caching is disabled.
func (c *Config) CacheFile() string {
	if c.CacheDir == "" {
		return ""
	}
	return filepath.Join(c.CacheDir, "data.json")
}

// Validate checks that merged values are usable.
func (c *Config) Validate() error {
	if c.FuzzyThreshold < 0 || c.FuzzyThreshold > 100 {
		return fmt.Errorf("fuzzy_threshold must be between 0 and 100, got %d", c.FuzzyThreshold)
	}
	if c.DefaultSize < 1 || c.DefaultSize > MaxSize {
		return fmt.Errorf("default_size must be between 1 and %d, got %d", MaxSize, c.DefaultSize)
	}
	if c.HTTPTimeoutSeconds < 1 {
		return fmt.Errorf("http_timeout_seconds must be positive, got %d", c.HTTPTimeoutSeconds)
	}
	if c.DataURL == "" || c.CDNURL == "" {
		return fmt.Errorf("data_url and cdn_url must not be empty")
	}
	return nil
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.sicon.
func Load(baseDir string) (*Config, error) {
	return loadFile(filepath.Join(baseDir, "config.json"))
}

// LoadWithRepo loads configuration from both global (~/.sicon) and project (.sicon) directories.
// Project config is found by walking upward from startDir to find the nearest .sicon/config.json.
// Project config takes precedence for scalar values; arrays are merged (deduplicated).
// Either or both configs may be missing.
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	global, err := loadFileRaw(filepath.Join(globalDir, "config.json"))
	if err != nil {
		return nil, err
	}

	repo, err := loadFileRaw(FindRepoConfig(startDir))
	if err != nil {
		return nil, err
	}

	return Merge(Merge(DefaultConfig(), global), repo), nil
}

// ApplyEnv overlays SICON_* environment variables on cfg.
func ApplyEnv(cfg *Config) (*Config, error) {
	overlay := &Config{}
	if err := env.Parse(overlay); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return Merge(cfg, overlay), nil
}

// FindRepoConfig walks upward from startDir to find the nearest .sicon/config.json.
// Returns the path if found, or empty string if not found.
func FindRepoConfig(startDir string) string {
	if startDir == "" {
		return ""
	}
	dir := startDir
	for {
		configPath := filepath.Join(dir, ".sicon", "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	if configPath == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", configPath, err)
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{
		DataURL:            pickString(overlay.DataURL, base.DataURL),
		CDNURL:             pickString(overlay.CDNURL, base.CDNURL),
		CacheDir:           pickString(overlay.CacheDir, base.CacheDir),
		DefaultFormat:      pickString(overlay.DefaultFormat, base.DefaultFormat),
		PackagerCommand:    pickString(overlay.PackagerCommand, base.PackagerCommand),
		DefaultSize:        pickInt(overlay.DefaultSize, base.DefaultSize),
		FuzzyThreshold:     pickInt(overlay.FuzzyThreshold, base.FuzzyThreshold),
		HTTPTimeoutSeconds: pickInt(overlay.HTTPTimeoutSeconds, base.HTTPTimeoutSeconds),
	}

	// Booleans: overlay wins if true, else base
	result.Quiet = base.Quiet || overlay.Quiet
	result.DisableHistory = base.DisableHistory || overlay.DisableHistory

	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)
	result.AllowedOutputDirs = mergeStringSlice(base.AllowedOutputDirs, overlay.AllowedOutputDirs)

	return result
}

func pickString(overlay, base string) string {
	if strings.TrimSpace(overlay) != "" {
		return strings.TrimSpace(overlay)
	}
	return base
}

func pickInt(overlay, base int) int {
	if overlay != 0 {
		return overlay
	}
	return base
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range append(append([]string{}, a...), b...) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
