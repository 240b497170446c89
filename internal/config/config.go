// Package config loads the daemon configuration: defaults, then an
// optional TOML file, then LEDGERD_-prefixed environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full daemon configuration.
type Config struct {
	Log     LogConfig     `mapstructure:"log"`
	Storage StorageConfig `mapstructure:"storage"`
	Engine  EngineConfig  `mapstructure:"engine"`
	Events  EventsConfig  `mapstructure:"events"`
}

type LogConfig struct {
	// Level is a zerolog level name: trace, debug, info, warn, error.
	Level string `mapstructure:"level"`
	// Pretty switches to console output instead of JSON.
	Pretty bool `mapstructure:"pretty"`
}

type StorageConfig struct {
	// Backend selects the state store: memory, bbolt or pebble.
	Backend string `mapstructure:"backend"`
	// Path is the data directory for persistent backends.
	Path string `mapstructure:"path"`
	// CacheSize is the number of hot entries kept in memory.
	CacheSize int `mapstructure:"cache_size"`
}

type EngineConfig struct {
	SkipSignatureVerification bool          `mapstructure:"skip_signature_verification"`
	TimelockMinDelay          time.Duration `mapstructure:"timelock_min_delay"`
	TimelockMaxDelay          time.Duration `mapstructure:"timelock_max_delay"`
	TimelockGracePeriod       time.Duration `mapstructure:"timelock_grace_period"`
	MaxCampaignDuration       time.Duration `mapstructure:"max_campaign_duration"`
}

type EventsConfig struct {
	// Journal enables the SQL event journal.
	Journal bool `mapstructure:"journal"`
	// Driver is sqlite or postgres.
	Driver string `mapstructure:"driver"`
	// DSN is the database connection string.
	DSN string `mapstructure:"dsn"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("storage.backend", "memory")
	v.SetDefault("storage.path", "data")
	v.SetDefault("storage.cache_size", 16384)
	v.SetDefault("engine.skip_signature_verification", false)
	v.SetDefault("engine.timelock_min_delay", 24*time.Hour)
	v.SetDefault("engine.timelock_max_delay", 30*24*time.Hour)
	v.SetDefault("engine.timelock_grace_period", 14*24*time.Hour)
	v.SetDefault("engine.max_campaign_duration", 90*24*time.Hour)
	v.SetDefault("events.journal", false)
	v.SetDefault("events.driver", "sqlite")
	v.SetDefault("events.dsn", "file:events.db")
}

// Load reads the configuration. path may be empty, in which case only
// defaults and environment variables apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("LEDGERD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Backend {
	case "memory", "bbolt", "pebble":
	default:
		return fmt.Errorf("config: unknown storage backend %q", c.Storage.Backend)
	}
	switch c.Events.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("config: unknown events driver %q", c.Events.Driver)
	}
	if c.Engine.TimelockMinDelay <= 0 || c.Engine.TimelockMaxDelay < c.Engine.TimelockMinDelay {
		return fmt.Errorf("config: timelock delays out of order")
	}
	return nil
}
