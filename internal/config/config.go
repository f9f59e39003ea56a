// Package config loads the engine configuration from config.json plus
// environment overrides, with the usual precedence: explicit flags >
// environment > config file > defaults.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config is the complete symsrv configuration.
type Config struct {
	Version int `json:"version" mapstructure:"version"`

	// SymbolPath is the search path configuration string. When empty the
	// _NT_SYMBOL_PATH environment variable is consulted.
	SymbolPath string `json:"symbolPath" mapstructure:"symbolPath"`

	// CacheDir is the default cache directory for server elements that do
	// not carry their own override.
	CacheDir string `json:"cacheDir" mapstructure:"cacheDir"`

	// TimeoutMs bounds each fetch attempt.
	TimeoutMs int `json:"timeoutMs" mapstructure:"timeoutMs"`

	Inventory InventoryConfig `json:"inventory" mapstructure:"inventory"`
	Logging   LoggingConfig   `json:"logging" mapstructure:"logging"`
}

// InventoryConfig controls the sqlite cache inventory.
type InventoryConfig struct {
	Enabled bool `json:"enabled" mapstructure:"enabled"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level string `json:"level" mapstructure:"level"`
	File  string `json:"file,omitempty" mapstructure:"file"`
}

const currentVersion = 1

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Version:   currentVersion,
		CacheDir:  defaultCacheDir(),
		TimeoutMs: 10000,
		Inventory: InventoryConfig{Enabled: true},
		Logging:   LoggingConfig{Level: "info"},
	}
}

func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "symsrv")
	}
	return filepath.Join(home, ".symsrv", "cache")
}

// DefaultDir returns the configuration directory (~/.symsrv).
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".symsrv"
	}
	return filepath.Join(home, ".symsrv")
}

// Load reads config.json from dir, applying SYMSRV_* environment
// overrides. A missing file yields the defaults.
func Load(dir string) (*Config, error) {
	v := viper.New()

	def := DefaultConfig()
	v.SetDefault("version", def.Version)
	v.SetDefault("symbolPath", def.SymbolPath)
	v.SetDefault("cacheDir", def.CacheDir)
	v.SetDefault("timeoutMs", def.TimeoutMs)
	v.SetDefault("inventory.enabled", def.Inventory.Enabled)
	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("logging.file", "")

	v.SetEnvPrefix("SYMSRV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(dir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// The conventional debugger environment variable is the fallback when
	// nothing else configured a search path.
	if cfg.SymbolPath == "" {
		cfg.SymbolPath = os.Getenv("_NT_SYMBOL_PATH")
	}

	return &cfg, nil
}

// Save writes the configuration to config.json in dir.
func (c *Config) Save(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Version != currentVersion {
		return &Error{Field: "version", Message: "unsupported config version"}
	}
	if c.TimeoutMs <= 0 {
		return &Error{Field: "timeoutMs", Message: "timeout must be positive"}
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &Error{Field: "logging.level", Message: "unknown log level"}
	}
	return nil
}

// Error represents a configuration error.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
