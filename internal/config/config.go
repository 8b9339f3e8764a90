package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration.
type Config struct {
	// Rule file location
	Rules RulesConfig `toml:"rules"`

	// Classification thresholds
	Classifier ClassifierConfig `toml:"classifier"`

	// Batch classification
	Batch BatchConfig `toml:"batch"`

	// Run persistence
	Storage StorageConfig `toml:"storage"`

	// Rule reloading
	Watch WatchConfig `toml:"watch"`

	// Application configuration
	App AppConfig `toml:"app"`
}

// RulesConfig locates the rule files.
type RulesConfig struct {
	Dir    string `toml:"dir"`    // Directory holding one subdirectory per format
	Format string `toml:"format"` // Format to classify, e.g. "Modern"
}

// ClassifierConfig contains classification settings.
type ClassifierConfig struct {
	FallbackMinOverlap float64 `toml:"fallback_min_overlap"` // Minimum signature overlap (0-1]
	ColorMinShare      float64 `toml:"color_min_share"`      // Minimum colored-card share per color (0-1]
	ColorOnlyFallback  bool    `toml:"color_only_fallback"`  // Label unmatched decks by colors alone
	CardColors         string  `toml:"card_colors"`          // Card color table or Scryfall bulk file
}

// BatchConfig contains batch runner settings.
type BatchConfig struct {
	Workers int `toml:"workers"` // Concurrent classifications (0 = GOMAXPROCS)
}

// StorageConfig contains results database settings.
type StorageConfig struct {
	Enabled bool   `toml:"enabled"` // Persist runs by default
	DBPath  string `toml:"db_path"` // SQLite database file
}

// WatchConfig contains rule watcher settings.
type WatchConfig struct {
	Debounce string `toml:"debounce"` // Quiet period before reload (e.g., "500ms")
}

// AppConfig contains general application settings.
type AppConfig struct {
	DebugMode bool `toml:"debug_mode"` // Enable debug logging
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Rules: RulesConfig{
			Dir:    "rules",
			Format: "Modern",
		},
		Classifier: ClassifierConfig{
			FallbackMinOverlap: 0.10,
			ColorMinShare:      0.10,
			ColorOnlyFallback:  false,
		},
		Batch: BatchConfig{
			Workers: 0,
		},
		Storage: StorageConfig{
			Enabled: false,
			DBPath:  filepath.Join(defaultDir(), "metagame.db"),
		},
		Watch: WatchConfig{
			Debounce: "500ms",
		},
		App: AppConfig{
			DebugMode: false,
		},
	}
}

func defaultDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".metagame"
	}
	return filepath.Join(homeDir, ".metagame")
}

// DefaultPath returns the default configuration file path.
func DefaultPath() string {
	return filepath.Join(defaultDir(), "config.toml")
}

// Load loads the configuration from path, or DefaultPath when path is empty.
// A missing file yields the default config; keys absent from the file keep
// their defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return config, nil
}

// Save writes the configuration to path, creating its directory.
func (c *Config) Save(path string) error {
	if path == "" {
		path = DefaultPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if c.Rules.Dir == "" {
		return fmt.Errorf("rules directory is required")
	}
	if c.Rules.Format == "" {
		return fmt.Errorf("rules format is required")
	}

	if c.Classifier.FallbackMinOverlap <= 0 || c.Classifier.FallbackMinOverlap > 1 {
		return fmt.Errorf("fallback min overlap must be within (0, 1]: %v", c.Classifier.FallbackMinOverlap)
	}
	if c.Classifier.ColorMinShare <= 0 || c.Classifier.ColorMinShare > 1 {
		return fmt.Errorf("color min share must be within (0, 1]: %v", c.Classifier.ColorMinShare)
	}

	if c.Batch.Workers < 0 {
		return fmt.Errorf("batch workers cannot be negative: %d", c.Batch.Workers)
	}

	if c.Storage.Enabled && c.Storage.DBPath == "" {
		return fmt.Errorf("storage is enabled but db_path is empty")
	}

	debounce, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil {
		return fmt.Errorf("invalid watch debounce %q: %w", c.Watch.Debounce, err)
	}
	if debounce <= 0 {
		return fmt.Errorf("watch debounce must be positive: %s", c.Watch.Debounce)
	}

	return nil
}

// GetWatchDebounce returns the watch debounce as a duration.
func (c *Config) GetWatchDebounce() (time.Duration, error) {
	return time.ParseDuration(c.Watch.Debounce)
}
