// Package config loads and validates the application configuration from a
// YAML file. Environment variables referenced as ${VAR} in the file are
// expanded before parsing; a .env file in the working directory is loaded
// first without overriding the process environment.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/chriserikbarnes/medrecpro/internal/events"
)

// Config is the top-level application configuration.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging"`
	Database DatabaseConfig `yaml:"database"`
	Ingest   IngestConfig   `yaml:"ingest"`
	Events   events.Config  `yaml:"events"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// LoggingConfig selects log level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DatabaseConfig locates the SQLite database file.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// IngestConfig tunes the ingestion pipeline.
type IngestConfig struct {
	// AutoResolve runs a pending-reference resolution pass after every
	// ingested document instead of waiting for an explicit resolve run.
	AutoResolve bool `yaml:"auto_resolve"`
}

// MetricsConfig gates the Prometheus exposition endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// Default returns the configuration used when no config file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads, expands, and validates the configuration file.
func Load(path string) (*Config, error) {
	// Missing .env files are fine; only the process env is required.
	_ = godotenv.Load(".env")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = string(LogLevelInfo)
	}
	if c.Logging.Format == "" {
		c.Logging.Format = string(LogFormatText)
	}
	if c.Database.Path == "" {
		c.Database.Path = "medrecpro.db"
	}
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		c.Metrics.Addr = ":9090"
	}
	if c.Events.Enabled && c.Events.Subject == "" {
		c.Events.Subject = "medrecpro.ingest.completed"
	}
}

// Validate rejects configurations that cannot be acted on.
func (c *Config) Validate() error {
	if c.Events.Enabled && c.Events.NATSURL == "" {
		return fmt.Errorf("events.nats_url is required when events are enabled")
	}
	return nil
}

const exampleConfig = `# medrecpro configuration
logging:
  level: info    # debug, info, warn, error
  format: text   # text, json

database:
  path: medrecpro.db

ingest:
  auto_resolve: false

events:
  enabled: false
  nats_url: nats://localhost:4222
  subject: medrecpro.ingest.completed

metrics:
  enabled: false
  addr: :9090
`

// Init writes an example configuration file.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", path)
	}
	if err := os.WriteFile(path, []byte(exampleConfig), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
