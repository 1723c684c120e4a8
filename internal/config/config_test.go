package config

import (
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:               8080,
			ReadTimeout:        10 * time.Second,
			WriteTimeout:       10 * time.Second,
			IdleTimeout:        120 * time.Second,
			ShutDownTimeout:    5 * time.Second,
			RequestTimeout:     15 * time.Second,
			CORSAllowedOrigins: "*",
		},
		Cache: CacheConfig{
			Prefix:           "berean-",
			PrecacheManifest: "./config/precache.json",
			WebManifest:      "./config/manifest.webmanifest",
			UpdatePoll:       60 * time.Second,
			WatchManifest:    true,
		},
		Origin: OriginConfig{
			BaseURL:        "https://origin.example.com",
			RequestTimeout: 30 * time.Second,
		},
		Misc: MiscConfig{
			GinMode:  "release",
			LogLevel: "info",
		},
	}
}

func TestConfig_Validate_Valid(t *testing.T) {
	cfg := validConfig()
	if err := cfg.validate(); err != nil {
		t.Errorf("expected valid config, got error: %v", err)
	}
}

func TestConfig_Validate_InvalidPort(t *testing.T) {
	tests := []struct {
		name string
		port int
	}{
		{"zero port", 0},
		{"negative port", -1},
		{"too high port", 65536},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Server.Port = tt.port
			if err := cfg.validate(); err == nil {
				t.Errorf("expected error for port %d", tt.port)
			}
		})
	}
}

func TestConfig_Validate_MissingFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty cache prefix", func(c *Config) { c.Cache.Prefix = "" }},
		{"empty manifest path", func(c *Config) { c.Cache.PrecacheManifest = "" }},
		{"zero update poll", func(c *Config) { c.Cache.UpdatePoll = 0 }},
		{"empty origin base URL", func(c *Config) { c.Origin.BaseURL = "" }},
		{"zero origin timeout", func(c *Config) { c.Origin.RequestTimeout = 0 }},
		{"zero read timeout", func(c *Config) { c.Server.ReadTimeout = 0 }},
		{"zero shutdown timeout", func(c *Config) { c.Server.ShutDownTimeout = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			if err := cfg.validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
