// Package config loads the service configuration from YAML and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/marshallshelly/agroexport/pkg/runtime"
)

// DefaultPath is the config file looked up when --config is not given.
const DefaultPath = "agroexport.yaml"

// Config holds all service configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Related  RelatedConfig  `yaml:"related"`
	Admin    AdminConfig    `yaml:"admin"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr            string `yaml:"addr"`
	ReadTimeout     string `yaml:"read_timeout"`
	WriteTimeout    string `yaml:"write_timeout"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

// DatabaseConfig configures the PostgreSQL pool. URL wins over the discrete fields.
type DatabaseConfig struct {
	URL            string `yaml:"url"`
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	Name           string `yaml:"name"`
	User           string `yaml:"user"`
	Password       string `yaml:"password"`
	SSLMode        string `yaml:"sslmode"`
	MaxConns       int32  `yaml:"max_conns"`
	MinConns       int32  `yaml:"min_conns"`
	ConnectTimeout string `yaml:"connect_timeout"`
}

// RelatedConfig configures related-item resolution.
type RelatedConfig struct {
	Timeout      string `yaml:"timeout"`
	ProductLimit int    `yaml:"product_limit"`
	BlogLimit    int    `yaml:"blog_limit"`
}

// AdminConfig configures the admin API.
type AdminConfig struct {
	// Token is the bearer token for /api/admin. Empty disables the admin API.
	Token string `yaml:"token"`
}

// LoggingConfig configures zap.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or console
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     "15s",
			WriteTimeout:    "30s",
			ShutdownTimeout: "10s",
		},
		Database: DatabaseConfig{
			Host:           "localhost",
			Port:           5432,
			Name:           "agroexport",
			User:           "postgres",
			SSLMode:        "disable",
			MaxConns:       10,
			ConnectTimeout: "5s",
		},
		Related: RelatedConfig{
			Timeout:      "8s",
			ProductLimit: 4,
			BlogLimit:    3,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults. Environment overrides are applied in both cases.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	// AGROEXPORT_DATABASE_URL takes priority over the generic DATABASE_URL.
	if url := os.Getenv("DATABASE_URL"); url != "" {
		c.Database.URL = url
	}
	if url := os.Getenv("AGROEXPORT_DATABASE_URL"); url != "" {
		c.Database.URL = url
	}

	if token := os.Getenv("AGROEXPORT_ADMIN_TOKEN"); token != "" {
		c.Admin.Token = token
	}

	if port := os.Getenv("PORT"); port != "" {
		c.Server.Addr = ":" + port
	}
	if addr := os.Getenv("AGROEXPORT_ADDR"); addr != "" {
		c.Server.Addr = addr
	}

	if level := os.Getenv("AGROEXPORT_LOG_LEVEL"); level != "" {
		c.Logging.Level = strings.ToLower(level)
	}
}

// Validate reports configuration that cannot work.
func (c *Config) Validate() error {
	var errs []error
	if c.Database.URL == "" && (c.Database.Host == "" || c.Database.Name == "") {
		errs = append(errs, errors.New("database: url or host and name are required"))
	}
	if c.Related.ProductLimit <= 0 {
		errs = append(errs, fmt.Errorf("related.product_limit must be positive, got %d", c.Related.ProductLimit))
	}
	if c.Related.BlogLimit <= 0 {
		errs = append(errs, fmt.Errorf("related.blog_limit must be positive, got %d", c.Related.BlogLimit))
	}
	for name, v := range map[string]string{
		"server.read_timeout":      c.Server.ReadTimeout,
		"server.write_timeout":     c.Server.WriteTimeout,
		"server.shutdown_timeout":  c.Server.ShutdownTimeout,
		"database.connect_timeout": c.Database.ConnectTimeout,
		"related.timeout":          c.Related.Timeout,
	} {
		if v == "" {
			continue
		}
		if _, err := time.ParseDuration(v); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	switch c.Logging.Format {
	case "", "json", "console":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format))
	}
	return errors.Join(errs...)
}

// RuntimeConfig converts the database section to a connection config.
func (c *Config) RuntimeConfig() *runtime.Config {
	return &runtime.Config{
		URL:            c.Database.URL,
		Host:           c.Database.Host,
		Port:           c.Database.Port,
		Database:       c.Database.Name,
		User:           c.Database.User,
		Password:       c.Database.Password,
		SSLMode:        c.Database.SSLMode,
		MaxConns:       c.Database.MaxConns,
		MinConns:       c.Database.MinConns,
		ConnectTimeout: duration(c.Database.ConnectTimeout, 5*time.Second),
	}
}

// RelatedTimeout returns the resolver timeout.
func (c *Config) RelatedTimeout() time.Duration {
	return duration(c.Related.Timeout, 8*time.Second)
}

// ReadTimeout returns the HTTP read timeout.
func (c *Config) ReadTimeout() time.Duration {
	return duration(c.Server.ReadTimeout, 15*time.Second)
}

// WriteTimeout returns the HTTP write timeout.
func (c *Config) WriteTimeout() time.Duration {
	return duration(c.Server.WriteTimeout, 30*time.Second)
}

// ShutdownTimeout returns how long a graceful shutdown may take.
func (c *Config) ShutdownTimeout() time.Duration {
	return duration(c.Server.ShutdownTimeout, 10*time.Second)
}

func duration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
