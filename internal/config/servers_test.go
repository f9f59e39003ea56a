package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestLoadServersMissingFile(t *testing.T) {
	reg, err := LoadServers(filepath.Join(t.TempDir(), "servers.toml"))
	if err != nil {
		t.Fatalf("missing registry should not error: %v", err)
	}
	if len(reg.Servers) != 0 {
		t.Errorf("expected empty registry, got %d entries", len(reg.Servers))
	}
}

func TestServerRegistryRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "servers.toml")

	reg := &ServerRegistry{}
	reg.Add(ServerEntry{
		Name:    "corp",
		Target:  "https://symbols.corp.example.com",
		Cache:   "/var/cache/corp-sym",
		Enabled: true,
		AddedAt: time.Now().UTC(),
	})
	reg.Add(ServerEntry{
		Name:    "disabled",
		Target:  "https://old.example.com",
		Enabled: false,
	})
	if err := reg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := LoadServers(path)
	if err != nil {
		t.Fatalf("LoadServers failed: %v", err)
	}
	if len(loaded.Servers) != 2 {
		t.Fatalf("expected 2 servers, got %d", len(loaded.Servers))
	}
	if loaded.Servers[0].Name != "corp" || loaded.Servers[0].Cache != "/var/cache/corp-sym" {
		t.Errorf("unexpected first entry: %+v", loaded.Servers[0])
	}
}

func TestAddReplacesByName(t *testing.T) {
	reg := &ServerRegistry{}
	reg.Add(ServerEntry{Name: "corp", Target: "https://a.example.com", Enabled: true})
	reg.Add(ServerEntry{Name: "corp", Target: "https://b.example.com", Enabled: true})

	if len(reg.Servers) != 1 {
		t.Fatalf("expected 1 entry after replace, got %d", len(reg.Servers))
	}
	if reg.Servers[0].Target != "https://b.example.com" {
		t.Errorf("entry not replaced: %+v", reg.Servers[0])
	}
}

func TestElementsSkipsDisabled(t *testing.T) {
	reg := &ServerRegistry{Servers: []ServerEntry{
		{Name: "on", Target: "https://on.example.com", Cache: "/c", Enabled: true},
		{Name: "off", Target: "https://off.example.com", Enabled: false},
		{Name: "empty", Target: "", Enabled: true},
	}}

	els := reg.Elements()
	if len(els) != 1 {
		t.Fatalf("expected 1 element, got %d", len(els))
	}
	if els[0].Target != "https://on.example.com" || els[0].Cache != "/c" {
		t.Errorf("unexpected element: %+v", els[0])
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("SYM_HOST", "symbols.example.com")

	tests := []struct {
		input    string
		expected string
	}{
		{"plain", "plain"},
		{"https://${SYM_HOST}/", "https://symbols.example.com/"},
		{"${UNDEFINED_SYM_VAR}", ""},
	}
	for _, tt := range tests {
		if got := ExpandEnvVars(tt.input); got != tt.expected {
			t.Errorf("ExpandEnvVars(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
