// SPDX-License-Identifier: Apache-2.0

// Package config loads aletheia settings from YAML and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/goccy/go-yaml"
)

// Environment variables that override file settings.
const (
	EnvLogLevel      = "ALETHEIA_LOG_LEVEL"
	EnvEngineCommand = "ALETHEIA_ENGINE_COMMAND"
	EnvRedisAddr     = "ALETHEIA_REDIS_ADDR"
)

// Cache backends.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

var (
	validLogLevels  = []string{"debug", "info", "warn", "error"}
	validLogFormats = []string{"json", "console"}
	validBackends   = []string{CacheNone, CacheMemory, CacheRedis}
)

// Config is the root configuration document.
type Config struct {
	Log    LogConfig    `yaml:"log"`
	Engine EngineConfig `yaml:"engine"`
	Cache  CacheConfig  `yaml:"cache"`
	Stats  StatsConfig  `yaml:"stats"`
	HTTP   HTTPConfig   `yaml:"http"`
	Batch  BatchConfig  `yaml:"batch"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// EngineConfig configures the external trust verification engine.
type EngineConfig struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
	Timeout string   `yaml:"timeout"`
}

type CacheConfig struct {
	Backend    string      `yaml:"backend"`
	TTL        string      `yaml:"ttl"`
	MaxEntries int         `yaml:"max_entries"`
	Redis      RedisConfig `yaml:"redis"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// StatsConfig selects where counters persist. An empty Path keeps them in
// memory for the life of the process.
type StatsConfig struct {
	Path string `yaml:"path"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

type BatchConfig struct {
	Concurrency int `yaml:"concurrency"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Engine: EngineConfig{
			Command: "c2patool",
			Timeout: "30s",
		},
		Cache: CacheConfig{
			Backend:    CacheMemory,
			TTL:        "1h",
			MaxEntries: 1024,
			Redis: RedisConfig{
				Addr: "localhost:6379",
			},
		},
		HTTP: HTTPConfig{
			Addr: ":8080",
		},
		Batch: BatchConfig{
			Concurrency: 4,
		},
	}
}

// Load reads the configuration at path over the defaults and applies
// environment overrides. An empty path or a missing file yields the
// defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.UnmarshalWithOptions(data, cfg, yaml.DisallowUnknownField()); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	cfg.applyEnvOverrides(os.Getenv)
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides(getenv func(string) string) {
	if level := getenv(EnvLogLevel); level != "" {
		c.Log.Level = level
	}
	if command := getenv(EnvEngineCommand); command != "" {
		c.Engine.Command = command
	}
	if addr := getenv(EnvRedisAddr); addr != "" {
		c.Cache.Redis.Addr = addr
	}
}

// EngineTimeout returns engine.timeout as a duration. Zero means no limit.
func (c *Config) EngineTimeout() time.Duration {
	return parseDuration(c.Engine.Timeout)
}

// CacheTTL returns cache.ttl as a duration. Zero means entries never expire.
func (c *Config) CacheTTL() time.Duration {
	return parseDuration(c.Cache.TTL)
}

func parseDuration(s string) time.Duration {
	if s == "" {
		return 0
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return d
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if !slices.Contains(validLogLevels, c.Log.Level) {
		return fmt.Errorf("invalid log.level %q (valid: %v)", c.Log.Level, validLogLevels)
	}
	if !slices.Contains(validLogFormats, c.Log.Format) {
		return fmt.Errorf("invalid log.format %q (valid: %v)", c.Log.Format, validLogFormats)
	}
	if c.Engine.Command == "" {
		return fmt.Errorf("engine.command is required")
	}
	if err := checkDuration("engine.timeout", c.Engine.Timeout); err != nil {
		return err
	}
	if !slices.Contains(validBackends, c.Cache.Backend) {
		return fmt.Errorf("invalid cache.backend %q (valid: %v)", c.Cache.Backend, validBackends)
	}
	if err := checkDuration("cache.ttl", c.Cache.TTL); err != nil {
		return err
	}
	if c.Cache.Backend == CacheMemory && c.Cache.MaxEntries < 0 {
		return fmt.Errorf("cache.max_entries must not be negative, got %d", c.Cache.MaxEntries)
	}
	if c.Cache.Backend == CacheRedis && c.Cache.Redis.Addr == "" {
		return fmt.Errorf("cache.redis.addr is required for the redis backend")
	}
	if c.Batch.Concurrency < 1 {
		return fmt.Errorf("batch.concurrency must be at least 1, got %d", c.Batch.Concurrency)
	}
	return nil
}

func checkDuration(key, value string) error {
	if value == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("invalid %s %s: %w", key, strconv.Quote(value), err)
	}
	if d < 0 {
		return fmt.Errorf("%s must not be negative, got %s", key, value)
	}
	return nil
}
