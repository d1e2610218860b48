package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all bananimon configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Game     GameConfig     `yaml:"game"`
	Avatar   AvatarConfig   `yaml:"avatar"`
	Session  SessionConfig  `yaml:"session"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	Bind string `yaml:"bind"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type GameConfig struct {
	Timezone       string        `yaml:"timezone"`        // zone used for calendar-day streak checks
	DecayInterval  time.Duration `yaml:"decay_interval"`  // hourly sweep by default
	StreakInterval time.Duration `yaml:"streak_interval"` // daily sweep by default
}

type AvatarConfig struct {
	Provider string `yaml:"provider"` // "gemini", "mock"
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url"`
	Variants int    `yaml:"variants"`
}

type SessionConfig struct {
	Secret     string        `yaml:"secret"`
	CookieName string        `yaml:"cookie_name"`
	TTL        time.Duration `yaml:"ttl"`
}

type LogConfig struct {
	Mode string `yaml:"mode"` // "dev" or "prod"
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Bind: "127.0.0.1",
			Port: 3000,
		},
		Database: DatabaseConfig{
			Path: "", // resolved at runtime via store.DefaultDBPath()
		},
		Game: GameConfig{
			Timezone:       "UTC",
			DecayInterval:  time.Hour,
			StreakInterval: 24 * time.Hour,
		},
		Avatar: AvatarConfig{
			Provider: "mock",
			Model:    "gemini-2.5-flash-image-preview",
			BaseURL:  "https://generativelanguage.googleapis.com/v1beta",
			Variants: 4,
		},
		Session: SessionConfig{
			CookieName: "bananimon_session",
			TTL:        90 * 24 * time.Hour,
		},
		Log: LogConfig{
			Mode: "dev",
		},
	}
}

// Load reads a YAML file over the defaults and then applies environment
// overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("BANANIMON_DB"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("BANANIMON_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("BANANIMON_PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("BANANIMON_TZ"); v != "" {
		c.Game.Timezone = v
	}
	if v := os.Getenv("BANANIMON_SESSION_SECRET"); v != "" {
		c.Session.Secret = v
	}
	// A Gemini key switches the avatar provider on.
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.Avatar.Provider = "gemini"
		c.Avatar.APIKey = v
	}
	return nil
}

// Validate checks values that would otherwise fail late at runtime.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.Game.DecayInterval <= 0 || c.Game.StreakInterval <= 0 {
		return fmt.Errorf("sweep intervals must be positive")
	}
	if c.Avatar.Variants <= 0 {
		return fmt.Errorf("avatar variants must be positive")
	}
	return nil
}

// Location resolves the configured game timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Game.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Game.Timezone, err)
	}
	return loc, nil
}

// ListenAddr returns the bind:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}
