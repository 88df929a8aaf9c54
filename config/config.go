// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the configuration file read when none is named.
const DefaultPath = "cloudrest.yaml"

// Services lists the services cloudrest can serve.
var Services = []string{"compute", "dns", "loadbalancer", "storage"}

// Config is the root configuration structure.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	OpenAPI   OpenAPIConfig   `yaml:"openapi"`
	Storage   StorageConfig   `yaml:"storage"`
	Providers ProvidersConfig `yaml:"providers"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + strconv.Itoa(s.Port)
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "console"
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"` // default: /metrics
}

// OpenAPIConfig configures the generated OpenAPI document and Swagger UI.
type OpenAPIConfig struct {
	Enabled bool `yaml:"enabled"`
}

// StorageConfig configures the SQLite storage provider.
type StorageConfig struct {
	// Path of the database used when a request names none. Requests may
	// name other databases in the same directory.
	Path string `yaml:"path"`
	// MaxDatabases bounds the databases open at once.
	MaxDatabases int `yaml:"max_databases"`
}

// ProvidersConfig selects the services to serve.
type ProvidersConfig struct {
	Services []string `yaml:"services"`
}

// Enabled reports whether service is served.
func (p ProvidersConfig) Enabled(service string) bool {
	for _, s := range p.Services {
		if s == service {
			return true
		}
	}
	return false
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	data = []byte(os.ExpandEnv(string(data)))

	cfg := Config{
		Metrics: MetricsConfig{Enabled: true},
		OpenAPI: OpenAPIConfig{Enabled: true},
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// LoadFromEnv creates configuration entirely from environment variables.
//
// Environment variables:
//
//	CLOUDREST_SERVER_HOST      - Server host (default: 0.0.0.0)
//	CLOUDREST_SERVER_PORT      - Server port (default: 5000)
//	CLOUDREST_LOG_LEVEL        - Log level: debug, info, warn, error (default: info)
//	CLOUDREST_LOG_FORMAT       - Log format: json or console (default: json)
//	CLOUDREST_METRICS_ENABLED  - Enable /metrics endpoint (default: true)
//	CLOUDREST_OPENAPI_ENABLED  - Enable OpenAPI/Swagger (default: true)
//	CLOUDREST_STORAGE_PATH     - SQLite storage database (default: cloudrest-storage.db)
//	CLOUDREST_STORAGE_MAX_DATABASES - Open storage databases limit (default: 16)
//	CLOUDREST_SERVICES         - Comma separated services to serve (default: all)
func LoadFromEnv() (*Config, error) {
	cfg := Config{
		Metrics: MetricsConfig{Enabled: true},
		OpenAPI: OpenAPIConfig{Enabled: true},
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// LoadWithFallback loads path when it exists and falls back to the
// environment otherwise.
func LoadWithFallback(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return LoadFromEnv()
}

// HasEnvConfig reports whether any CLOUDREST_* variable is set.
func HasEnvConfig() bool {
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, envPrefix) {
			return true
		}
	}
	return false
}

const envPrefix = "CLOUDREST_"

// applyEnvOverrides applies CLOUDREST_* environment variables to the config.
// Environment variables always override file-based configuration.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CLOUDREST_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("CLOUDREST_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("CLOUDREST_SERVER_READ_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if v := os.Getenv("CLOUDREST_SERVER_WRITE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}

	if v := os.Getenv("CLOUDREST_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("CLOUDREST_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}

	if v := os.Getenv("CLOUDREST_METRICS_ENABLED"); v != "" {
		cfg.Metrics.Enabled = parseBool(v)
	}
	if v := os.Getenv("CLOUDREST_METRICS_PATH"); v != "" {
		cfg.Metrics.Path = v
	}

	if v := os.Getenv("CLOUDREST_OPENAPI_ENABLED"); v != "" {
		cfg.OpenAPI.Enabled = parseBool(v)
	}

	if v := os.Getenv("CLOUDREST_STORAGE_PATH"); v != "" {
		cfg.Storage.Path = v
	}

	if v := os.Getenv("CLOUDREST_STORAGE_MAX_DATABASES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Storage.MaxDatabases = n
		}
	}

	if v := os.Getenv("CLOUDREST_SERVICES"); v != "" {
		cfg.Providers.Services = nil
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				cfg.Providers.Services = append(cfg.Providers.Services, s)
			}
		}
	}
}

// parseBool parses a boolean from common string values.
func parseBool(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "true" || v == "1" || v == "yes" || v == "on"
}

func setDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 5000
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 60 * time.Second
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}

	if cfg.Storage.Path == "" {
		cfg.Storage.Path = "cloudrest-storage.db"
	}
	if cfg.Storage.MaxDatabases == 0 {
		cfg.Storage.MaxDatabases = 16
	}

	if len(cfg.Providers.Services) == 0 {
		cfg.Providers.Services = append([]string(nil), Services...)
	}
}

func validate(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", cfg.Server.Port)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error, got %q", cfg.Logging.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("logging.format must be 'json' or 'console', got %q", cfg.Logging.Format)
	}

	if !strings.HasPrefix(cfg.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with '/', got %q", cfg.Metrics.Path)
	}

	if strings.ContainsAny(cfg.Storage.Path, "?#") {
		return fmt.Errorf("storage.path must be a plain file path, got %q", cfg.Storage.Path)
	}
	if cfg.Storage.MaxDatabases < 1 {
		return fmt.Errorf("storage.max_databases must be positive, got %d", cfg.Storage.MaxDatabases)
	}

	known := make(map[string]bool, len(Services))
	for _, s := range Services {
		known[s] = true
	}
	for i, s := range cfg.Providers.Services {
		if !known[s] {
			return fmt.Errorf("providers.services[%d]: unknown service %q", i, s)
		}
	}

	return nil
}
