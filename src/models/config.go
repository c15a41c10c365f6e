package models

// MConfig Structure
type MConfig struct {
	Name     string         `yaml:"name"`
	Host     string         `yaml:"host"`
	Port     int            `yaml:"port"`
	LogLevel string         `yaml:"log_level"`
	Storage  MStorageConfig `yaml:"storage"`
	Network  MNetworkConfig `yaml:"network"`
	Deals    MDealsConfig   `yaml:"deals"`
	Watcher  MWatcherConfig `yaml:"watcher"`
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type"`
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
}

type MNetworkConfig struct {
	RequestTimeout int    `yaml:"timeout"`        // seconds, per attempt
	MaxRetries     int    `yaml:"retries"`        // retries after the first attempt
	RetryDelayMs   int    `yaml:"retry_delay_ms"` // initial backoff, doubles each retry
	UserAgent      string `yaml:"user_agent"`
}

type MDealsConfig struct {
	BaseURL       string `yaml:"base_url"`
	APIKey        string `yaml:"api_key"` // Overridden by ITAD_API_KEY env var
	Country       string `yaml:"country"`
	Shops         []int  `yaml:"shops"`
	SearchResults int    `yaml:"search_results"`
	DemoMode      bool   `yaml:"demo_mode"` // Fabricated data, never enable in production
}

type MWatcherConfig struct {
	Enabled               bool `yaml:"enabled"`
	UpdateIntervalSeconds int  `yaml:"update_interval_seconds"`
}
