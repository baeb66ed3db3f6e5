package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"server"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Symbols struct {
		SourceFile string `yaml:"source_file"`
		MaxCount   int    `yaml:"max_count"`
	} `yaml:"symbols"`
	Fetch struct {
		WindowDays  int     `yaml:"window_days"`
		Workers     int     `yaml:"workers"`
		RatePerSec  float64 `yaml:"rate_per_sec"`
		MaxRetries  int     `yaml:"max_retries"`
		BaseURL     string  `yaml:"base_url"`
		RefreshCron string  `yaml:"refresh_cron"`
	} `yaml:"fetch"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = p
		}
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("SYMBOL_SOURCE"); v != "" {
		cfg.Symbols.SourceFile = v
	}
	if v := os.Getenv("SYMBOL_MAX_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Symbols.MaxCount = n
		}
	}
	if v := os.Getenv("FETCH_BASE_URL"); v != "" {
		cfg.Fetch.BaseURL = v
	}
	if v := os.Getenv("FETCH_REFRESH_CRON"); v != "" {
		cfg.Fetch.RefreshCron = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}

	// Defaults
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/pricepulse.db"
	}
	if cfg.Symbols.SourceFile == "" {
		cfg.Symbols.SourceFile = "data/symbols.html"
	}
	if cfg.Symbols.MaxCount == 0 {
		cfg.Symbols.MaxCount = 200
	}
	if cfg.Fetch.WindowDays == 0 {
		cfg.Fetch.WindowDays = 30
	}
	if cfg.Fetch.Workers == 0 {
		cfg.Fetch.Workers = 4
	}
	if cfg.Fetch.RatePerSec == 0 {
		cfg.Fetch.RatePerSec = 2
	}
	if cfg.Fetch.MaxRetries == 0 {
		cfg.Fetch.MaxRetries = 3
	}

	return cfg, nil
}

// Validate checks that all required fields are usable.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535, got %d", c.Server.Port)
	}
	if c.Database.SQLitePath == "" {
		return fmt.Errorf("database.sqlite_path is required")
	}
	if c.Symbols.MaxCount < 0 {
		return fmt.Errorf("symbols.max_count must not be negative")
	}
	if c.Fetch.WindowDays <= 0 {
		return fmt.Errorf("fetch.window_days must be positive")
	}
	if c.Fetch.Workers <= 0 {
		return fmt.Errorf("fetch.workers must be positive")
	}
	return nil
}
