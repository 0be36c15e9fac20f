package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for the upfolio proxy and dashboard.
type Config struct {
	Server    Server    `yaml:"server"`
	Upstream  Upstream  `yaml:"upstream"`
	Storage   Storage   `yaml:"storage"`
	Logging   Logging   `yaml:"logging"`
	Dashboard Dashboard `yaml:"dashboard"`
}

// Server holds the proxy listener and the origin the auth callback
// redirects to after a successful token exchange.
type Server struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	FrontendOrigin string `yaml:"frontend_origin"`
}

// Upstream holds the brokerage API endpoint and OAuth credentials. A
// missing key or secret is not an error at load time; the token exchange
// fails at call time instead.
type Upstream struct {
	BaseURL     string `yaml:"base_url"`
	APIKey      string `yaml:"api_key"`
	APISecret   string `yaml:"api_secret"`
	RedirectURI string `yaml:"redirect_uri"`
}

// Storage holds paths for optional persistence. An empty SQLitePath
// disables the snapshot recorder.
type Storage struct {
	SQLitePath string `yaml:"sqlite_path"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Dashboard configures the terminal client.
type Dashboard struct {
	ServerURL        string `yaml:"server_url"`
	PollIntervalSecs int    `yaml:"poll_interval_secs"`
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Default returns the built-in configuration, matching the development
// setup: proxy on :5000, dashboard polling it every 15 seconds.
func Default() *Config {
	return &Config{
		Server: Server{
			Host:           "0.0.0.0",
			Port:           5000,
			FrontendOrigin: "http://localhost:3000",
		},
		Logging: Logging{
			Level:  "info",
			Format: "json",
		},
		Dashboard: Dashboard{
			ServerURL:        "http://localhost:5000",
			PollIntervalSecs: 15,
		},
	}
}

// Load builds the configuration: defaults, then the YAML file at path (if
// path is non-empty), then environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// applyEnvOverrides checks well-known environment variables and overrides
// the corresponding configuration fields when they are set. The UPSTOX_*
// names match the upstream credentials as issued by the brokerage console.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = p
		}
	}
	if v := os.Getenv("FRONTEND_ORIGIN"); v != "" {
		cfg.Server.FrontendOrigin = v
	}

	if v := os.Getenv("UPSTOX_BASE_URL"); v != "" {
		cfg.Upstream.BaseURL = v
	}
	if v := os.Getenv("UPSTOX_API_KEY"); v != "" {
		cfg.Upstream.APIKey = v
	}
	if v := os.Getenv("UPSTOX_API_SECRET"); v != "" {
		cfg.Upstream.APISecret = v
	}
	if v := os.Getenv("UPSTOX_REDIRECT_URI"); v != "" {
		cfg.Upstream.RedirectURI = v
	}

	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	if v := os.Getenv("UPFOLIO_SERVER_URL"); v != "" {
		cfg.Dashboard.ServerURL = v
	}
}
