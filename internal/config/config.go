package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds settings for both folioterm and folioapi.
type Config struct {
	// Client
	APIURL        string `yaml:"api_url"`
	Admin         bool   `yaml:"admin"`
	ContentFile   string `yaml:"content_file"`
	NavBreakpoint int    `yaml:"nav_breakpoint"` // columns

	Logging LoggingConfig `yaml:"logging"`
	Server  ServerConfig  `yaml:"server"`
}

type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`
}

// ServerConfig configures the development API.
type ServerConfig struct {
	Addr        string `yaml:"addr"`
	DatabaseURL string `yaml:"database_url"` // sqlite path or postgres:// DSN
	RateLimit   int    `yaml:"rate_limit"`   // submissions per client per RateWindow
	RateWindow  string `yaml:"rate_window"`
	AllowOrigin string `yaml:"allow_origin"`
	// TrustedProxies is how many reverse proxies append to X-Forwarded-For.
	// Zero means the header is ignored and the peer address is the client.
	TrustedProxies int    `yaml:"trusted_proxies"`
	GmailDir       string `yaml:"gmail_dir"` // credentials.json and token.json; empty disables notifications
	NotifyFrom     string `yaml:"notify_from"`
}

// Dir is where folioterm keeps its config, log and dev database.
func Dir() string {
	if d, err := os.UserConfigDir(); err == nil {
		return filepath.Join(d, "folioterm")
	}
	return ".folioterm"
}

// DefaultPath is the config file read when --config is not given.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// Default returns the built in configuration.
func Default() *Config {
	dir := Dir()
	return &Config{
		APIURL:        "http://localhost:5000",
		NavBreakpoint: 80,
		Logging: LoggingConfig{
			Level: "info",
			File:  filepath.Join(dir, "folioterm.log"),
		},
		Server: ServerConfig{
			Addr:        ":5000",
			DatabaseURL: filepath.Join(dir, "folioapi.db"),
			RateLimit:   5,
			RateWindow:  "1m",
			AllowOrigin: "*",
		},
	}
}

// Load applies, in order, the defaults, the YAML file at path (a missing file
// is not an error), a .env file in the working directory and the FOLIO*
// environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	// .env never overrides variables already set in the environment.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("FOLIO_API_URL"); v != "" {
		c.APIURL = v
	}
	if v := os.Getenv("FOLIO_ADMIN"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("FOLIO_ADMIN: %w", err)
		}
		c.Admin = b
	}
	if v := os.Getenv("FOLIO_CONTENT"); v != "" {
		c.ContentFile = v
	}
	if v := os.Getenv("FOLIO_LOG_FILE"); v != "" {
		c.Logging.File = v
	}
	if v := os.Getenv("FOLIO_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("FOLIO_NAV_BREAKPOINT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("FOLIO_NAV_BREAKPOINT: %w", err)
		}
		c.NavBreakpoint = n
	}

	if v := os.Getenv("FOLIOAPI_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Server.DatabaseURL = v
	}
	if v := os.Getenv("FOLIOAPI_RATE_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("FOLIOAPI_RATE_LIMIT: %w", err)
		}
		c.Server.RateLimit = n
	}
	if v := os.Getenv("FOLIOAPI_ALLOW_ORIGIN"); v != "" {
		c.Server.AllowOrigin = v
	}
	if v := os.Getenv("FOLIOAPI_TRUSTED_PROXIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("FOLIOAPI_TRUSTED_PROXIES: %w", err)
		}
		c.Server.TrustedProxies = n
	}
	if v := os.Getenv("FOLIOAPI_GMAIL_DIR"); v != "" {
		c.Server.GmailDir = v
	}
	if v := os.Getenv("FOLIOAPI_NOTIFY_FROM"); v != "" {
		c.Server.NotifyFrom = v
	}
	return nil
}

// Validate checks the values that would otherwise fail late.
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("api_url must not be empty")
	}
	if c.NavBreakpoint <= 0 {
		return fmt.Errorf("nav_breakpoint must be positive, got %d", c.NavBreakpoint)
	}
	if c.Server.RateLimit <= 0 {
		return fmt.Errorf("server.rate_limit must be positive, got %d", c.Server.RateLimit)
	}
	if c.Server.TrustedProxies < 0 {
		return fmt.Errorf("server.trusted_proxies must not be negative, got %d", c.Server.TrustedProxies)
	}
	if _, err := time.ParseDuration(c.Server.RateWindow); err != nil {
		return fmt.Errorf("server.rate_window: %w", err)
	}
	return nil
}

// Window is the rate limit window. Validate has already checked it.
func (s ServerConfig) Window() time.Duration {
	d, _ := time.ParseDuration(s.RateWindow)
	return d
}
