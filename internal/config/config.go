package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Map       MapConfig       `yaml:"map"`
	Sandbox   SandboxConfig   `yaml:"sandbox"`
	Logging   LogConfig       `yaml:"logging"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000" yaml:"port"`
	Host string `envconfig:"HOST" default:"0.0.0.0" yaml:"host"`
}

// MapConfig holds map bridge configuration.
type MapConfig struct {
	DefaultZoom float64 `envconfig:"MAP_DEFAULT_ZOOM" default:"15" yaml:"default_zoom"`
	Debug       bool    `envconfig:"MAP_DEBUG" default:"false" yaml:"debug"`
}

// SandboxConfig holds engine runtime limits.
type SandboxConfig struct {
	TimeoutMS     int  `envconfig:"SANDBOX_TIMEOUT_MS" default:"5000" yaml:"timeout_ms"`
	MaxCallStack  int  `envconfig:"SANDBOX_MAX_CALL_STACK" default:"1024" yaml:"max_call_stack"`
	EnableConsole bool `envconfig:"SANDBOX_CONSOLE" default:"true" yaml:"enable_console"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info" yaml:"level"`
	Development bool   `envconfig:"LOG_DEV" default:"false" yaml:"development"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100" yaml:"requests_per_second"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200" yaml:"burst"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true" yaml:"enabled"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadWithFile loads configuration from the environment, then overlays
// values from a YAML file when path is non-empty. File values win.
func LoadWithFile(path string) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8000",
			Host: "0.0.0.0",
		},
		Map: MapConfig{
			DefaultZoom: 15,
		},
		Sandbox: SandboxConfig{
			TimeoutMS:     5000,
			MaxCallStack:  1024,
			EnableConsole: true,
		},
		Logging: LogConfig{
			Level: "info",
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
	}
}
