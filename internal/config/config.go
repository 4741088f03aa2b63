// Package config loads waggy-wizard settings from YAML with environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "WAGGY_"

// Session store kinds.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

var (
	// ErrInvalid reports a configuration that fails validation.
	ErrInvalid = errors.New("config: invalid configuration")
)

// Config is the full runtime configuration.
type Config struct {
	Backend Backend `yaml:"backend"`
	Locale  Locale  `yaml:"locale"`
	Server  Server  `yaml:"server"`
	Session Session `yaml:"session"`
	Theme   Theme   `yaml:"theme"`
	UI      UI      `yaml:"ui"`
	Log     Log     `yaml:"log"`
}

// Backend describes the wizard API.
type Backend struct {
	BaseURL          string        `yaml:"base_url"`
	Token            string        `yaml:"token"`
	Timeout          time.Duration `yaml:"timeout"`
	ValidateContract bool          `yaml:"validate_contract"`
}

// Locale selects the display language.
type Locale struct {
	Default  string `yaml:"default"`
	Fallback string `yaml:"fallback"`
}

// Server configures the HTTP frontend.
type Server struct {
	Addr         string `yaml:"addr"`
	SecureCookie bool   `yaml:"secure_cookie"`
	Metrics      bool   `yaml:"metrics"`
}

// Session selects where drafts live.
type Session struct {
	Store  string        `yaml:"store"`
	Redis  Redis         `yaml:"redis"`
	Prefix string        `yaml:"prefix"`
	TTL    time.Duration `yaml:"ttl"`
}

// Redis holds connection settings for the redis draft store.
type Redis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// Theme names the go-theme manifest and variant.
type Theme struct {
	Name    string `yaml:"name"`
	Variant string `yaml:"variant"`
}

// UI points at optional step overlay files.
type UI struct {
	Overlays string `yaml:"overlays"`
}

// Log configures logrus.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Backend: Backend{
			BaseURL: "http://localhost:8081",
			Timeout: 15 * time.Second,
		},
		Locale: Locale{Default: "en", Fallback: "en"},
		Server: Server{Addr: ":8080", Metrics: true},
		Session: Session{
			Store: StoreMemory,
			Redis: Redis{Addr: "localhost:6379"},
			TTL:   24 * time.Hour,
		},
		Theme: Theme{Name: "waggy"},
		Log:   Log{Level: "info", Format: "text"},
	}
}

// Load reads path (optional), applies environment overrides from the process
// environment and validates the result.
func Load(path string) (Config, error) {
	return LoadWithEnv(path, os.LookupEnv)
}

// LoadWithEnv is Load with an explicit environment lookup.
func LoadWithEnv(path string, lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	if path = strings.TrimSpace(path); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if lookup != nil {
		if err := cfg.applyEnv(lookup); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings that have no usable fallback.
func (c Config) Validate() error {
	var problems []string
	if strings.TrimSpace(c.Backend.BaseURL) == "" {
		problems = append(problems, "backend.base_url is required")
	}
	if c.Backend.Timeout < 0 {
		problems = append(problems, "backend.timeout must not be negative")
	}
	switch c.Session.Store {
	case StoreMemory:
	case StoreRedis:
		if strings.TrimSpace(c.Session.Redis.Addr) == "" {
			problems = append(problems, "session.redis.addr is required for the redis store")
		}
	default:
		problems = append(problems, fmt.Sprintf("session.store %q is not one of memory, redis", c.Session.Store))
	}
	if c.Session.TTL < 0 {
		problems = append(problems, "session.ttl must not be negative")
	}
	if strings.TrimSpace(c.Locale.Default) == "" {
		problems = append(problems, "locale.default is required")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"BACKEND_URL":     &c.Backend.BaseURL,
		"BACKEND_TOKEN":   &c.Backend.Token,
		"LOCALE":          &c.Locale.Default,
		"FALLBACK_LOCALE": &c.Locale.Fallback,
		"ADDR":            &c.Server.Addr,
		"SESSION_STORE":   &c.Session.Store,
		"SESSION_PREFIX":  &c.Session.Prefix,
		"REDIS_ADDR":      &c.Session.Redis.Addr,
		"REDIS_PASSWORD":  &c.Session.Redis.Password,
		"THEME":           &c.Theme.Name,
		"THEME_VARIANT":   &c.Theme.Variant,
		"OVERLAYS":        &c.UI.Overlays,
		"LOG_LEVEL":       &c.Log.Level,
		"LOG_FORMAT":      &c.Log.Format,
	}
	for name, target := range strs {
		if value, ok := lookup(EnvPrefix + name); ok {
			*target = strings.TrimSpace(value)
		}
	}

	durations := map[string]*time.Duration{
		"BACKEND_TIMEOUT": &c.Backend.Timeout,
		"SESSION_TTL":     &c.Session.TTL,
	}
	for name, target := range durations {
		value, ok := lookup(EnvPrefix + name)
		if !ok {
			continue
		}
		parsed, err := time.ParseDuration(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("config: %s%s: %w", EnvPrefix, name, err)
		}
		*target = parsed
	}

	bools := map[string]*bool{
		"VALIDATE_CONTRACT": &c.Backend.ValidateContract,
		"SECURE_COOKIE":     &c.Server.SecureCookie,
		"METRICS":           &c.Server.Metrics,
	}
	for name, target := range bools {
		value, ok := lookup(EnvPrefix + name)
		if !ok {
			continue
		}
		parsed, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("config: %s%s: %w", EnvPrefix, name, err)
		}
		*target = parsed
	}

	if value, ok := lookup(EnvPrefix + "REDIS_DB"); ok {
		db, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("config: %sREDIS_DB: %w", EnvPrefix, err)
		}
		c.Session.Redis.DB = db
	}
	return nil
}
