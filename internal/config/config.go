// Package config loads the application configuration from a YAML file,
// an optional .env file and TEXTORDER_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"textorder/internal/models/providers"
)

// EnvPrefix starts every environment override
const EnvPrefix = "TEXTORDER_"

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	LLM      LLMConfig      `yaml:"llm"`
	Auth     AuthConfig     `yaml:"auth"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	LogLevel string         `yaml:"log_level"`
}

type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	AccessLog       bool          `yaml:"access_log"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Addr is the listen address
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig enables persistence when DSN is set
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// Enabled reports whether a database is configured
func (d DatabaseConfig) Enabled() bool {
	return d.DSN != ""
}

// CatalogConfig selects the menu data. An empty path uses the built-in catalog.
type CatalogConfig struct {
	Path         string `yaml:"path"`
	FromDatabase bool   `yaml:"from_database"`
}

// LLMConfig selects the LLM backend. Empty model and base URL use the
// provider defaults.
type LLMConfig struct {
	Enabled     bool          `yaml:"enabled"`
	Provider    string        `yaml:"provider"`
	Model       string        `yaml:"model"`
	BaseURL     string        `yaml:"base_url"`
	APIKey      string        `yaml:"api_key"`
	Temperature float64       `yaml:"temperature"`
	MaxTokens   int           `yaml:"max_tokens"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxRetries  int           `yaml:"max_retries"`
}

// Settings converts the section into provider settings
func (l LLMConfig) Settings() providers.Settings {
	return providers.Settings{
		Type:        providers.Type(l.Provider),
		Model:       l.Model,
		BaseURL:     l.BaseURL,
		APIKey:      l.APIKey,
		Temperature: l.Temperature,
		MaxTokens:   l.MaxTokens,
	}
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Port    int    `yaml:"port"`
	Path    string `yaml:"path"`
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			AccessLog:       true,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{Driver: "sqlite3"},
		LLM: LLMConfig{
			Provider:    string(providers.TypeOllama),
			Temperature: 0.1,
			MaxTokens:   1000,
			Timeout:     30 * time.Second,
			MaxRetries:  3,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		LogLevel: "info",
	}
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDotEnv loads .env files into the environment; missing files are skipped
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides fields from TEXTORDER_* variables
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"SERVER_HOST":     &c.Server.Host,
		"DATABASE_DRIVER": &c.Database.Driver,
		"DATABASE_DSN":    &c.Database.DSN,
		"CATALOG_PATH":    &c.Catalog.Path,
		"LLM_PROVIDER":    &c.LLM.Provider,
		"LLM_MODEL":       &c.LLM.Model,
		"LLM_BASE_URL":    &c.LLM.BaseURL,
		"LLM_API_KEY":     &c.LLM.APIKey,
		"AUTH_JWT_SECRET": &c.Auth.JWTSecret,
		"LOG_LEVEL":       &c.LogLevel,
	}
	for key, field := range strs {
		if v, ok := lookup(EnvPrefix + key); ok {
			*field = v
		}
	}

	ints := map[string]*int{
		"SERVER_PORT":     &c.Server.Port,
		"LLM_MAX_TOKENS":  &c.LLM.MaxTokens,
		"LLM_MAX_RETRIES": &c.LLM.MaxRetries,
		"METRICS_PORT":    &c.Metrics.Port,
	}
	for key, field := range ints {
		if v, ok := lookup(EnvPrefix + key); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("invalid %s%s: %w", EnvPrefix, key, err)
			}
			*field = n
		}
	}

	bools := map[string]*bool{
		"LLM_ENABLED":     &c.LLM.Enabled,
		"METRICS_ENABLED": &c.Metrics.Enabled,
		"CATALOG_FROM_DB": &c.Catalog.FromDatabase,
	}
	for key, field := range bools {
		if v, ok := lookup(EnvPrefix + key); ok {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("invalid %s%s: %w", EnvPrefix, key, err)
			}
			*field = b
		}
	}

	if v, ok := lookup(EnvPrefix + "LLM_TIMEOUT"); ok {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %sLLM_TIMEOUT: %w", EnvPrefix, err)
		}
		c.LLM.Timeout = d
	}
	if v, ok := lookup(EnvPrefix + "LLM_TEMPERATURE"); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("invalid %sLLM_TEMPERATURE: %w", EnvPrefix, err)
		}
		c.LLM.Temperature = f
	}
	return nil
}

// Validate checks the configuration for values the application cannot use
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d is out of range", c.Server.Port))
	}
	if c.Metrics.Port < 0 || c.Metrics.Port > 65535 {
		errs = append(errs, fmt.Errorf("metrics.port %d is out of range", c.Metrics.Port))
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		errs = append(errs, fmt.Errorf("metrics.path %q must start with /", c.Metrics.Path))
	}
	switch c.Database.Driver {
	case "", "sqlite", "sqlite3", "postgres":
	default:
		errs = append(errs, fmt.Errorf("database.driver %q is not supported", c.Database.Driver))
	}
	if c.Catalog.FromDatabase && !c.Database.Enabled() {
		errs = append(errs, errors.New("catalog.from_database requires database.dsn"))
	}
	switch providers.Type(c.LLM.Provider) {
	case "", providers.TypeOllama, providers.TypeOpenAI, providers.TypeGitHubModels, providers.TypeAzureOpenAI:
	default:
		errs = append(errs, fmt.Errorf("llm.provider %q is not supported", c.LLM.Provider))
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errs = append(errs, fmt.Errorf("llm.temperature %v must be between 0 and 2", c.LLM.Temperature))
	}
	if c.LLM.MaxTokens < 0 || c.LLM.MaxRetries < 0 || c.LLM.Timeout < 0 {
		errs = append(errs, errors.New("llm.max_tokens, llm.max_retries and llm.timeout must not be negative"))
	}
	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("log_level %q is not supported", c.LogLevel))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
