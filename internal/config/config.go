package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Dataset source kinds
const (
	SourceCSV    = "csv"
	SourceHTTP   = "http"
	SourceSQLite = "sqlite"
)

// Default values
const (
	DefaultHost           = "0.0.0.0"
	DefaultPort           = 8050
	DefaultDatasetPath    = "spacex_launch_dash.csv"
	DefaultSQLitePath     = "launchboard.db"
	DefaultCacheSize      = 256
	DefaultMaxConnections = 256
)

// Config is the root TOML document
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Dataset DatasetConfig `toml:"dataset"`
	Cache   CacheConfig   `toml:"cache"`
	Logging LoggingConfig `toml:"logging"`
}

// ServerConfig controls the HTTP listener
type ServerConfig struct {
	Host                   string   `toml:"host"`
	Port                   int      `toml:"port"`
	CORSAllowedOrigins     []string `toml:"cors_allowed_origins"`
	MaxConnections         int      `toml:"max_connections"` // 0 = unlimited
	ReadTimeoutSeconds     int      `toml:"read_timeout_seconds"`
	WriteTimeoutSeconds    int      `toml:"write_timeout_seconds"`
	ShutdownTimeoutSeconds int      `toml:"shutdown_timeout_seconds"`
}

// DatasetConfig says where the launch table comes from and how to parse it
type DatasetConfig struct {
	Source              string `toml:"source"` // csv, http, sqlite
	Path                string `toml:"path"`
	URL                 string `toml:"url"`
	SQLitePath          string `toml:"sqlite_path"`
	MalformedRows       string `toml:"malformed_rows"` // fail, skip
	FetchTimeoutSeconds int    `toml:"fetch_timeout_seconds"`
	FetchMaxRetries     int    `toml:"fetch_max_retries"`
	// UseObservedBounds lays the payload slider out on the data's own
	// min/max instead of the fixed [0, 10000]
	UseObservedBounds bool `toml:"use_observed_bounds"`
}

// CacheConfig sizes the query memo caches
type CacheConfig struct {
	Size int `toml:"size"`
}

// LoggingConfig mirrors logger.Config
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Addr returns host:port
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// ReadTimeout returns the read timeout as a duration
func (s ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(s.ReadTimeoutSeconds) * time.Second
}

// WriteTimeout returns the write timeout as a duration
func (s ServerConfig) WriteTimeout() time.Duration {
	return time.Duration(s.WriteTimeoutSeconds) * time.Second
}

// ShutdownTimeout returns the graceful shutdown budget
func (s ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(s.ShutdownTimeoutSeconds) * time.Second
}

// FetchTimeout returns the per-attempt HTTP timeout for remote datasets
func (d DatasetConfig) FetchTimeout() time.Duration {
	return time.Duration(d.FetchTimeoutSeconds) * time.Second
}

// Load reads the TOML file at path on top of the defaults. A missing file is
// not an error: the defaults are returned.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to stat config: %w", err)
			}
		} else if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Default returns a Config populated with default values
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:                   DefaultHost,
			Port:                   DefaultPort,
			MaxConnections:         DefaultMaxConnections,
			ReadTimeoutSeconds:     15,
			WriteTimeoutSeconds:    15,
			ShutdownTimeoutSeconds: 10,
		},
		Dataset: DatasetConfig{
			Source:              SourceCSV,
			Path:                DefaultDatasetPath,
			SQLitePath:          DefaultSQLitePath,
			MalformedRows:       "fail",
			FetchTimeoutSeconds: 30,
			FetchMaxRetries:     3,
		},
		Cache: CacheConfig{
			Size: DefaultCacheSize,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate checks structural constraints
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	if c.Server.MaxConnections < 0 {
		return fmt.Errorf("server.max_connections must not be negative")
	}
	if c.Server.ReadTimeoutSeconds < 0 || c.Server.WriteTimeoutSeconds < 0 || c.Server.ShutdownTimeoutSeconds < 0 {
		return fmt.Errorf("server timeouts must not be negative")
	}

	switch c.Dataset.Source {
	case SourceCSV:
		if c.Dataset.Path == "" {
			return fmt.Errorf("dataset.path is required for source %q", SourceCSV)
		}
	case SourceHTTP:
		if c.Dataset.URL == "" {
			return fmt.Errorf("dataset.url is required for source %q", SourceHTTP)
		}
	case SourceSQLite:
		if c.Dataset.SQLitePath == "" {
			return fmt.Errorf("dataset.sqlite_path is required for source %q", SourceSQLite)
		}
	default:
		return fmt.Errorf("dataset.source %q unknown: want csv|http|sqlite", c.Dataset.Source)
	}

	switch c.Dataset.MalformedRows {
	case "fail", "skip":
	default:
		return fmt.Errorf("dataset.malformed_rows %q unknown: want fail|skip", c.Dataset.MalformedRows)
	}
	if c.Dataset.FetchMaxRetries < 1 {
		return fmt.Errorf("dataset.fetch_max_retries must be at least 1")
	}
	if c.Cache.Size < 0 {
		return fmt.Errorf("cache.size must not be negative")
	}

	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format %q unknown: want json|console", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q unknown: want debug|info|warn|error", c.Logging.Level)
	}
	return nil
}
