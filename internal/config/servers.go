package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/BurntSushi/toml"

	"symsrv/internal/searchpath"
)

// ServerEntry is one named symbol server in servers.toml. Registry entries
// are appended after the elements parsed from the search path string.
type ServerEntry struct {
	// Name is the unique identifier for this server.
	Name string `toml:"name"`

	// Target is the server URL or share path.
	Target string `toml:"target"`

	// Cache overrides the default cache directory for this server.
	Cache string `toml:"cache,omitempty"`

	// Enabled controls whether the server participates in resolution.
	Enabled bool `toml:"enabled"`

	// AddedAt is when this server was registered.
	AddedAt time.Time `toml:"added_at"`
}

// ServerRegistry is the servers.toml document.
type ServerRegistry struct {
	Servers []ServerEntry `toml:"servers"`
}

// LoadServers reads a server registry. A missing file yields an empty
// registry.
func LoadServers(path string) (*ServerRegistry, error) {
	var reg ServerRegistry
	if _, err := toml.DecodeFile(path, &reg); err != nil {
		if os.IsNotExist(err) {
			return &ServerRegistry{}, nil
		}
		return nil, fmt.Errorf("failed to read server registry: %w", err)
	}
	return &reg, nil
}

// Save writes the registry to path.
func (r *ServerRegistry) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to write server registry: %w", err)
	}
	defer func() { _ = f.Close() }()

	return toml.NewEncoder(f).Encode(r)
}

// Add registers a server, replacing any entry with the same name.
func (r *ServerRegistry) Add(entry ServerEntry) {
	for i, s := range r.Servers {
		if s.Name == entry.Name {
			r.Servers[i] = entry
			return
		}
	}
	r.Servers = append(r.Servers, entry)
}

// Elements converts the enabled registry entries to search path elements,
// in registry order.
func (r *ServerRegistry) Elements() []searchpath.Element {
	var elements []searchpath.Element
	for _, s := range r.Servers {
		if !s.Enabled || s.Target == "" {
			continue
		}
		elements = append(elements, searchpath.Element{
			Target: ExpandEnvVars(s.Target),
			Cache:  s.Cache,
		})
	}
	return elements
}

// envVarPattern matches ${ENV_VAR} patterns for expansion.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// ExpandEnvVars expands ${ENV_VAR} patterns in a string. Undefined
// variables expand to the empty string.
func ExpandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := match[2 : len(match)-1]
		if value, ok := os.LookupEnv(name); ok {
			return value
		}
		return ""
	})
}
