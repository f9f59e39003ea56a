package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsWhenMissing(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Version != currentVersion {
		t.Errorf("version = %d, want %d", cfg.Version, currentVersion)
	}
	if cfg.TimeoutMs != 10000 {
		t.Errorf("timeoutMs = %d, want 10000", cfg.TimeoutMs)
	}
	if !cfg.Inventory.Enabled {
		t.Error("inventory should default to enabled")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	content := `{
  "version": 1,
  "symbolPath": "/sym;srv*https://symbols.example.com",
  "cacheDir": "/var/cache/symsrv",
  "timeoutMs": 3000,
  "logging": {"level": "debug"}
}`
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.SymbolPath != "/sym;srv*https://symbols.example.com" {
		t.Errorf("symbolPath = %q", cfg.SymbolPath)
	}
	if cfg.CacheDir != "/var/cache/symsrv" {
		t.Errorf("cacheDir = %q", cfg.CacheDir)
	}
	if cfg.TimeoutMs != 3000 {
		t.Errorf("timeoutMs = %d", cfg.TimeoutMs)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("logging.level = %q", cfg.Logging.Level)
	}
}

func TestSymbolPathEnvFallback(t *testing.T) {
	t.Setenv("_NT_SYMBOL_PATH", "srv*/cache*https://env.example.com")

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.SymbolPath != "srv*/cache*https://env.example.com" {
		t.Errorf("symbolPath = %q, want env fallback", cfg.SymbolPath)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.SymbolPath = "/some/dir"
	if err := cfg.Save(dir); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.SymbolPath != "/some/dir" {
		t.Errorf("symbolPath = %q after round trip", loaded.SymbolPath)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default ok", func(c *Config) {}, false},
		{"bad version", func(c *Config) { c.Version = 99 }, true},
		{"zero timeout", func(c *Config) { c.TimeoutMs = 0 }, true},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, true},
		{"warning alias ok", func(c *Config) { c.Logging.Level = "warning" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
