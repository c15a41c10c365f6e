package config

import (
	"fmt"
	"os"
	"strings"

	"deal-observer/src/models"

	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// NewConfig creates a new MConfig instance from YAML file
func NewConfig(configPath string) (*Config, error) {
	// 1. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	// 2. Unmarshal data into the models struct
	var modelConfig models.MConfig
	if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	config := &Config{MConfig: &modelConfig}
	config.applyDefaults()

	// The credential is a secret: the environment always wins over the file
	// so deployments never have to write it to disk.
	if key := strings.TrimSpace(os.Getenv("ITAD_API_KEY")); key != "" {
		config.Deals.APIKey = key
	}

	// 3. Validate the loaded configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

func (c *Config) applyDefaults() {
	if c.Network.RequestTimeout == 0 {
		c.Network.RequestTimeout = 20
	}
	if c.Network.MaxRetries == 0 {
		c.Network.MaxRetries = 2
	}
	if c.Network.RetryDelayMs == 0 {
		c.Network.RetryDelayMs = 600
	}
	if c.Deals.BaseURL == "" {
		c.Deals.BaseURL = "https://api.isthereanydeal.com"
	}
	if c.Deals.Country == "" {
		c.Deals.Country = "JP"
	}
	if len(c.Deals.Shops) == 0 {
		// Steam, Epic Games Store, GOG, Humble Store, Microsoft Store,
		// Fanatical, GreenManGaming
		c.Deals.Shops = []int{61, 16, 35, 37, 48, 6, 36}
	}
	if c.Deals.SearchResults == 0 {
		c.Deals.SearchResults = 20
	}
	if c.Watcher.UpdateIntervalSeconds == 0 {
		c.Watcher.UpdateIntervalSeconds = 300
	}
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	// Validate App configuration (Flattened)
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}

	// Validate Server configuration (Flattened)
	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}

	// Validate Storage configuration
	if c.Storage.DBType == "" {
		return fmt.Errorf("database type cannot be empty")
	}
	if c.Storage.DBType == "sqlite" && c.Storage.DBPath == "" {
		return fmt.Errorf("database path cannot be empty for sqlite")
	}
	if c.Storage.DBType == "postgres" && c.Storage.DBConnectionString == "" {
		return fmt.Errorf("connection string cannot be empty for postgres")
	}

	// Validate Network configuration
	if c.Network.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be greater than 0")
	}
	if c.Network.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}
	if c.Network.RetryDelayMs <= 0 {
		return fmt.Errorf("retry delay must be greater than 0")
	}

	// Validate Deals configuration
	if c.Deals.BaseURL == "" {
		return fmt.Errorf("deals base url cannot be empty")
	}
	if c.Deals.APIKey == "" && !c.Deals.DemoMode {
		return fmt.Errorf("deals api key is required outside demo mode (set ITAD_API_KEY)")
	}
	if c.Deals.Country == "" {
		return fmt.Errorf("country code cannot be empty")
	}
	if len(c.Deals.Shops) == 0 {
		return fmt.Errorf("at least one shop id must be configured")
	}
	for i, shop := range c.Deals.Shops {
		if shop <= 0 {
			return fmt.Errorf("shop id %d at position %d must be a positive store identifier", shop, i)
		}
	}

	// Validate Watcher configuration
	if c.Watcher.Enabled && c.Watcher.UpdateIntervalSeconds <= 0 {
		return fmt.Errorf("watcher update interval must be greater than 0")
	}

	return nil
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path.
// The API key is not written out; it belongs in the environment.
func (c *Config) Save(configPath string) error {
	redacted := *c.MConfig
	redacted.Deals.APIKey = ""

	// 1. Marshal the struct to YAML
	data, err := yaml.Marshal(&redacted)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	// 2. Write to file (0644 permissions)
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
