// Package config loads the application configuration from YAML and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"orderdesk/infrastructure/logging"
	"orderdesk/infrastructure/repository"
)

// Storage backends.
const (
	StorageMongoDB = "mongodb"
	StorageMemory  = "memory"
)

// envPrefix is prepended to every environment override.
const envPrefix = "ORDERDESK_"

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the root of the application configuration file.
type Config struct {
	// Storage selects the repository backend: "mongodb" or "memory".
	Storage  string         `yaml:"storage"`
	MongoDB  MongoDBConfig  `yaml:"mongodb"`
	Logging  LoggingConfig  `yaml:"logging"`
	EventBus EventBusConfig `yaml:"eventbus"`
	Seed     SeedConfig     `yaml:"seed"`
}

// MongoDBConfig is the mongodb section.
type MongoDBConfig struct {
	URI            string   `yaml:"uri"`
	Database       string   `yaml:"database"`
	ConnectTimeout Duration `yaml:"connect_timeout"`
	PingTimeout    Duration `yaml:"ping_timeout"`
}

// LoggingConfig is the logging section.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	Dir        string `yaml:"dir"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
	AddSource  bool   `yaml:"add_source"`
	JSON       bool   `yaml:"json"`
}

// EventBusConfig is the eventbus section.
type EventBusConfig struct {
	// FailFast stops a dispatch at the first failing listener.
	FailFast bool `yaml:"fail_fast"`
}

// SeedConfig is the seed section.
type SeedConfig struct {
	// Enabled loads fixture data on start.
	Enabled bool `yaml:"enabled"`
	// Dir holds seed YAML files; empty uses the embedded demo data.
	Dir string `yaml:"dir"`
}

// Duration is a time.Duration written as a string such as "10s" in YAML.
type Duration time.Duration

// UnmarshalYAML parses a duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML writes the duration as a string.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Default returns a configuration that works against a local MongoDB.
func Default() *Config {
	mongoCfg := repository.DefaultMongoDBConfig()
	logCfg := logging.DefaultConfig()

	return &Config{
		Storage: StorageMongoDB,
		MongoDB: MongoDBConfig{
			URI:            mongoCfg.URI,
			Database:       mongoCfg.Database,
			ConnectTimeout: Duration(mongoCfg.ConnectTimeout),
			PingTimeout:    Duration(mongoCfg.PingTimeout),
		},
		Logging: LoggingConfig{
			Level:      "info",
			File:       logCfg.File,
			MaxSizeMB:  logCfg.MaxSizeMB,
			MaxBackups: logCfg.MaxBackups,
			MaxAgeDays: logCfg.MaxAgeDays,
			Compress:   logCfg.Compress,
		},
	}
}

// Load reads the YAML file at path over the defaults, then applies environment overrides.
// An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := cfg.Parse(data); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
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

// Parse overlays YAML data onto c. Keys missing from data keep their current values.
func (c *Config) Parse(data []byte) error {
	return yaml.Unmarshal(data, c)
}

// ApplyEnv overlays ORDERDESK_* variables obtained through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(envPrefix + key); ok {
			*dst = v
		}
	}
	str("STORAGE", &c.Storage)
	str("MONGODB_URI", &c.MongoDB.URI)
	str("MONGODB_DATABASE", &c.MongoDB.Database)
	str("LOG_LEVEL", &c.Logging.Level)
	str("LOG_DIR", &c.Logging.Dir)
	str("SEED_DIR", &c.Seed.Dir)

	boolean := func(key string, dst *bool) error {
		v, ok := lookup(envPrefix + key)
		if !ok {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, key, err)
		}
		*dst = b
		return nil
	}
	if err := boolean("EVENTBUS_FAIL_FAST", &c.EventBus.FailFast); err != nil {
		return err
	}
	return boolean("SEED", &c.Seed.Enabled)
}

// Validate checks that the selected backend is fully configured.
func (c *Config) Validate() error {
	switch c.Storage {
	case StorageMemory:
	case StorageMongoDB:
		if c.MongoDB.URI == "" {
			return fmt.Errorf("%w: mongodb.uri is required", ErrInvalidConfig)
		}
		if c.MongoDB.Database == "" {
			return fmt.Errorf("%w: mongodb.database is required", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown storage %q", ErrInvalidConfig, c.Storage)
	}

	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// MongoDBOptions converts the mongodb section for repository.NewMongoDB.
func (c *Config) MongoDBOptions() *repository.MongoDBConfig {
	return &repository.MongoDBConfig{
		URI:            c.MongoDB.URI,
		Database:       c.MongoDB.Database,
		ConnectTimeout: time.Duration(c.MongoDB.ConnectTimeout),
		PingTimeout:    time.Duration(c.MongoDB.PingTimeout),
	}
}

// LoggingOptions converts the logging section for logging.Setup.
func (c *Config) LoggingOptions() (*logging.Config, error) {
	level, err := logging.ParseLevel(c.Logging.Level)
	if err != nil {
		return nil, err
	}
	return &logging.Config{
		Level:      level,
		Dir:        c.Logging.Dir,
		File:       c.Logging.File,
		MaxSizeMB:  c.Logging.MaxSizeMB,
		MaxBackups: c.Logging.MaxBackups,
		MaxAgeDays: c.Logging.MaxAgeDays,
		Compress:   c.Logging.Compress,
		AddSource:  c.Logging.AddSource,
		JSON:       c.Logging.JSON,
	}, nil
}
