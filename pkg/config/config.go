// Package config handles loading and saving ortho configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/ortho/config.yaml
//   - Data:    ~/.local/share/ortho/ (response cache database)
//   - State:   ~/.local/state/ortho/ (tree view state)
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

var validate = validator.New()

// EnvServiceURL overrides ServiceConfig.BaseURL when set.
const EnvServiceURL = "ORTHO_SERVICE_URL"

// DefaultServiceURL is the public OrthoMCL WDK service.
const DefaultServiceURL = "https://orthomcl.org/orthomcl/service"

// CacheConfig controls the service response cache.
type CacheConfig struct {
	Enabled    bool          `yaml:"enabled"`
	Size       int           `yaml:"size,omitempty" validate:"gte=0"` // In-memory LRU entries
	SQLitePath string        `yaml:"sqlite_path,omitempty"`           // Persistent cache; empty disables it
	TTL        time.Duration `yaml:"ttl,omitempty" validate:"gte=0"`
}

// ServiceConfig describes the WDK service endpoint.
type ServiceConfig struct {
	BaseURL string        `yaml:"base_url,omitempty" validate:"required,url"`
	Timeout time.Duration `yaml:"timeout,omitempty" validate:"gte=0"`
	Cache   CacheConfig   `yaml:"cache,omitempty"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr string `yaml:"addr,omitempty" validate:"omitempty,hostname_port"`
}

// GraphConfig holds cluster graph rendering defaults.
type GraphConfig struct {
	Format    string   `yaml:"format,omitempty" validate:"omitempty,oneof=svg png"`
	Display   string   `yaml:"display,omitempty" validate:"omitempty,oneof=taxa ec-numbers pfam-domains"`
	EdgeTypes []string `yaml:"edge_types,omitempty" validate:"dive,oneof=O C P L M N"`
}

// Config is the top-level configuration for ortho.
type Config struct {
	Service   ServiceConfig `yaml:"service,omitempty"`
	TaxonFile string        `yaml:"taxon_file,omitempty"` // Local taxon JSON used instead of the service
	Server    ServerConfig  `yaml:"server,omitempty"`
	Graph     GraphConfig   `yaml:"graph,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Service: ServiceConfig{
			BaseURL: DefaultServiceURL,
			Timeout: 30 * time.Second,
			Cache: CacheConfig{
				Enabled: true,
				Size:    128,
				TTL:     24 * time.Hour,
			},
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Graph: GraphConfig{
			Format:  "svg",
			Display: "taxa",
		},
	}
}

// ConfigDir returns the XDG config directory for ortho.
func ConfigDir() string {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// DataDir returns the XDG data directory for ortho.
func DataDir() string {
	return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

// StateDir returns the XDG state directory for ortho.
func StateDir() string {
	return xdgDir("XDG_STATE_HOME", filepath.Join(".local", "state"))
}

func xdgDir(env, fallback string) string {
	if dir := os.Getenv(env); dir != "" {
		return filepath.Join(dir, "ortho")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, fallback, "ortho")
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return applyEnv(DefaultConfig()), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
// Environment overrides are applied in both cases.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return applyEnv(cfg), nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	cfg.TaxonFile = expandHome(cfg.TaxonFile)
	cfg.Service.Cache.SQLitePath = expandHome(cfg.Service.Cache.SQLitePath)
	cfg.Service.BaseURL = strings.TrimRight(cfg.Service.BaseURL, "/")

	cfg = applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks field ranges and the graph defaults against the known
// formats, display types and edge types.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, fmt.Sprintf("%s fails %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
}

func applyEnv(cfg Config) Config {
	if u := os.Getenv(EnvServiceURL); u != "" {
		cfg.Service.BaseURL = strings.TrimRight(u, "/")
	}
	return cfg
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// DefaultCachePath returns the default SQLite cache location under DataDir.
func DefaultCachePath() string {
	dir := DataDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "responses.db")
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
