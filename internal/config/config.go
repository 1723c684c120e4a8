package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/bereanapp/berean/internal/logger"
	"github.com/spf13/viper"
)

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Port               int           `mapstructure:"port"`
	ReadTimeout        time.Duration `mapstructure:"read_timeout"`
	WriteTimeout       time.Duration `mapstructure:"write_timeout"`
	IdleTimeout        time.Duration `mapstructure:"idle_timeout"`
	ShutDownTimeout    time.Duration `mapstructure:"shutdown_timeout"`
	RequestTimeout     time.Duration `mapstructure:"request_timeout"`
	CORSAllowedOrigins string        `mapstructure:"cors_allowed_origins"`
}

// CacheConfig holds the offline cache engine settings.
type CacheConfig struct {
	// Prefix is the recognized cache-name prefix, e.g. "berean-".
	Prefix string `mapstructure:"prefix"`
	// PrecacheManifest is the path of the per-version precache manifest.
	PrecacheManifest string `mapstructure:"precache_manifest"`
	// WebManifest is the path of the installability manifest served to pages.
	WebManifest string `mapstructure:"web_manifest"`
	// UpdatePoll is the fixed interval between update checks.
	UpdatePoll time.Duration `mapstructure:"update_poll"`
	// WatchManifest enables the fsnotify watcher on the precache manifest.
	WatchManifest bool `mapstructure:"watch_manifest"`
}

// OriginConfig holds the upstream the engine fetches fresh content from.
type OriginConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// MiscConfig holds everything else.
type MiscConfig struct {
	GinMode  string `mapstructure:"gin_mode"`
	LogLevel string `mapstructure:"log_level"`
}

// Config is the full application configuration.
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Cache  CacheConfig  `mapstructure:"cache"`
	Origin OriginConfig `mapstructure:"origin"`
	Misc   MiscConfig   `mapstructure:"misc"`
}

// LoadConfig reads config.yaml from ./config (if present), applies
// defaults, lets BEREAN_* environment variables override everything, and
// validates the result.
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 10*time.Second)
	viper.SetDefault("server.write_timeout", 10*time.Second)
	viper.SetDefault("server.idle_timeout", 120*time.Second)
	viper.SetDefault("server.shutdown_timeout", 5*time.Second)
	viper.SetDefault("server.request_timeout", 15*time.Second)
	viper.SetDefault("server.cors_allowed_origins", "*")

	viper.SetDefault("cache.prefix", "berean-")
	viper.SetDefault("cache.precache_manifest", "./config/precache.json")
	viper.SetDefault("cache.web_manifest", "./config/manifest.webmanifest")
	viper.SetDefault("cache.update_poll", 60*time.Second)
	viper.SetDefault("cache.watch_manifest", true)

	viper.SetDefault("origin.request_timeout", 30*time.Second)

	viper.SetDefault("misc.gin_mode", "release")
	viper.SetDefault("misc.log_level", "info")

	viper.AutomaticEnv()
	viper.SetEnvPrefix("BEREAN")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logger.WithComponent("config").Info("no config file found, using defaults and env vars")
		} else {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 || c.Server.IdleTimeout <= 0 {
		return errors.New("server timeouts must be positive")
	}
	if c.Server.ShutDownTimeout <= 0 {
		return errors.New("shutdown timeout must be positive")
	}
	if c.Cache.Prefix == "" {
		return errors.New("cache prefix is required")
	}
	if c.Cache.PrecacheManifest == "" {
		return errors.New("precache manifest path is required")
	}
	if c.Cache.UpdatePoll <= 0 {
		return errors.New("update poll interval must be positive")
	}
	if c.Origin.BaseURL == "" {
		return errors.New("origin base URL is required")
	}
	if c.Origin.RequestTimeout <= 0 {
		return errors.New("origin request timeout must be positive")
	}
	return nil
}
