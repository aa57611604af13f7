package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the configuration for the curio backend.
// Environment variables are parsed from the CURIO_BACKEND_ prefix.
type Config struct {
	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// Storage driver: postgres or sqlite. "auto" picks postgres when a DSN
	// is set and falls back to sqlite otherwise.
	DBDriver    string `envconfig:"DB_DRIVER" default:"auto"`
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:"curio.db"`

	// API authentication mode: "static" accepts the single dev key.
	AuthMode string `envconfig:"AUTH_MODE" default:"static"`

	// Search provider credentials and endpoints. Base URLs are overridable
	// so tests can point the clients at local servers.
	SerpAPIKey  string `envconfig:"SERP_API_KEY" default:""`
	SerpBaseURL string `envconfig:"SERP_BASE_URL" default:"https://serpapi.com"`

	PexelsAPIKey  string `envconfig:"PEXELS_API_KEY" default:""`
	PexelsBaseURL string `envconfig:"PEXELS_BASE_URL" default:"https://api.pexels.com"`

	GitHubToken   string `envconfig:"GITHUB_TOKEN" default:""`
	GitHubBaseURL string `envconfig:"GITHUB_BASE_URL" default:"https://api.github.com"`

	// Cap on results fetched by the live re-search fallback and by the
	// search request path.
	SearchResultLimit int `envconfig:"SEARCH_RESULT_LIMIT" default:"20"`

	// Workflow summarization
	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY" default:""`
	OpenAIModel  string `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`

	// Health checking
	HealthIntervalSeconds     int `envconfig:"HEALTH_INTERVAL_SECONDS" default:"10"`
	HealthProbeTimeoutSeconds int `envconfig:"HEALTH_PROBE_TIMEOUT_SECONDS" default:"2"`
}

// ResolveDefaults derives the storage driver when set to "auto" and rejects
// unsupported values.
func (c *Config) ResolveDefaults() error {
	if c.DBDriver == "" || c.DBDriver == "auto" {
		if c.PostgresDSN != "" {
			c.DBDriver = "postgres"
		} else {
			c.DBDriver = "sqlite"
		}
	}
	switch c.DBDriver {
	case "postgres":
		if c.PostgresDSN == "" {
			return fmt.Errorf("DB_DRIVER=postgres requires POSTGRES_DSN")
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return fmt.Errorf("DB_DRIVER=sqlite requires SQLITE_PATH")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}
	if c.SearchResultLimit <= 0 {
		return fmt.Errorf("SEARCH_RESULT_LIMIT must be positive")
	}
	return nil
}

// New creates a Config by parsing environment variables.
// Example: CURIO_BACKEND_HTTP_PORT, CURIO_BACKEND_POSTGRES_DSN.
func New() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("CURIO_BACKEND", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
