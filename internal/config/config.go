// Package config loads the settings of the ghapi command.
//
// Values are resolved in this order, later sources winning:
//   - built-in defaults
//   - the YAML file given by --config (optional)
//   - environment variables (GH_USER, GH_PASS, GH_API_URL, GH_USER_AGENT,
//     LOG_LEVEL, REDIS_URL)
//   - command line flags, applied by the caller
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Sternrassler/github-api-client/pkg/client"
	"github.com/Sternrassler/github-api-client/pkg/logging"
	"github.com/redis/go-redis/v9"
	"gopkg.in/yaml.v3"
)

// DefaultUserAgent identifies the command to GitHub when none is configured.
const DefaultUserAgent = "ghapi/0.1.0 (+https://github.com/Sternrassler/github-api-client)"

// Config is the command configuration.
type Config struct {
	// BaseURL of the API. Default: https://api.github.com
	BaseURL string `yaml:"base_url"`

	// Username and Password for basic auth. A personal access token works
	// as password.
	Username string `yaml:"username"`
	Password string `yaml:"password"`

	UserAgent string        `yaml:"user_agent"`
	Timeout   time.Duration `yaml:"timeout"`
	PerPage   int           `yaml:"per_page"`

	// CheckStatus fails on non-2xx responses instead of decoding them.
	CheckStatus bool `yaml:"check_status"`

	// Client-side pacing. 0 disables it.
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`

	// BlockWhenExhausted refuses requests while the quota is spent. Default: true
	BlockWhenExhausted *bool `yaml:"block_when_exhausted,omitempty"`

	// RedisURL enables the shared rate limit store, e.g. redis://localhost:6379/0
	// or host:port.
	RedisURL string `yaml:"redis_url"`

	Log LogConfig `yaml:"log"`

	// MetricsAddr serves /metrics when set, e.g. :9090
	MetricsAddr string `yaml:"metrics_addr"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		BaseURL:   client.DefaultBaseURL,
		UserAgent: DefaultUserAgent,
		Timeout:   client.DefaultTimeout,
		PerPage:   client.DefaultPerPage,
		Log:       LogConfig{Level: string(logging.LevelInfo)},
	}
}

// Load reads path (if not empty) over the defaults, then applies environment
// overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Username = getEnv("GH_USER", c.Username)
	c.Password = getEnv("GH_PASS", c.Password)
	c.BaseURL = getEnv("GH_API_URL", c.BaseURL)
	c.UserAgent = getEnv("GH_USER_AGENT", c.UserAgent)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.RedisURL = getEnv("REDIS_URL", c.RedisURL)
}

// Validate checks the values the client cannot check itself.
func (c Config) Validate() error {
	var errs []error
	if c.Username == "" {
		errs = append(errs, errors.New("username is required (set GH_USER or username)"))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if c.Burst < 0 {
		errs = append(errs, fmt.Errorf("burst must be >= 0 (got %d)", c.Burst))
	}
	return errors.Join(errs...)
}

// ClientConfig converts the settings to a client.Config. The rate limit
// store and logger are left for the caller.
func (c Config) ClientConfig() client.Config {
	cfg := client.DefaultConfig(c.Username, c.Password, c.UserAgent)
	cfg.BaseURL = c.BaseURL
	cfg.Timeout = c.Timeout
	cfg.PerPage = c.PerPage
	cfg.CheckStatus = c.CheckStatus
	cfg.RequestsPerSecond = c.RequestsPerSecond
	cfg.Burst = c.Burst
	if c.BlockWhenExhausted != nil {
		cfg.BlockWhenExhausted = *c.BlockWhenExhausted
	}
	return cfg
}

// RedisOptions parses RedisURL. A bare host:port is accepted.
func (c Config) RedisOptions() (*redis.Options, error) {
	if c.RedisURL == "" {
		return nil, errors.New("redis url is empty")
	}
	if !strings.Contains(c.RedisURL, "://") {
		return &redis.Options{Addr: c.RedisURL}, nil
	}
	opts, err := redis.ParseURL(c.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return opts, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
