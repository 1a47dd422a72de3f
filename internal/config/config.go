package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the gateway configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Backend BackendConfig `yaml:"backend"`
	Session SessionConfig `yaml:"session"`
	Polling PollingConfig `yaml:"polling"`
	Log     LogConfig     `yaml:"log"`
	Jobs    JobsConfig    `yaml:"jobs"`
}

// ServerConfig contains the local HTTP surface settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// BackendConfig selects which Mattter backend instance to talk to
type BackendConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// SessionConfig contains credential persistence settings
type SessionConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
}

// PollingConfig contains refresh loop settings
type PollingConfig struct {
	MessageIntervalSeconds int `yaml:"message_interval_seconds"`
	ThreadIdleMinutes      int `yaml:"thread_idle_minutes"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// JobsConfig contains cron schedule settings
type JobsConfig struct {
	RevalidateIdentity string `yaml:"revalidate_identity"`
	PruneIdleThreads   string `yaml:"prune_idle_threads"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	if val := os.Getenv("MATTTER_API_BASE_URL"); val != "" {
		c.Backend.BaseURL = val
	}
	if val := os.Getenv("MATTTER_API_TIMEOUT_SECONDS"); val != "" {
		fmt.Sscanf(val, "%d", &c.Backend.TimeoutSeconds)
	}
	if val := os.Getenv("MATTTER_CREDENTIALS_FILE"); val != "" {
		c.Session.CredentialsFile = val
	}

	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}

	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend base URL is required")
	}
	if c.Backend.TimeoutSeconds <= 0 {
		c.Backend.TimeoutSeconds = 10
	}

	if c.Session.CredentialsFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("credentials file is required when no home directory is available")
		}
		c.Session.CredentialsFile = filepath.Join(home, ".mattter", "credentials.json")
	}

	if c.Polling.MessageIntervalSeconds <= 0 {
		c.Polling.MessageIntervalSeconds = 5
	}
	if c.Polling.ThreadIdleMinutes <= 0 {
		c.Polling.ThreadIdleMinutes = 10
	}

	// Jobs defaults
	if c.Jobs.RevalidateIdentity == "" {
		c.Jobs.RevalidateIdentity = "0 0 * * * *" // hourly
	}
	if c.Jobs.PruneIdleThreads == "" {
		c.Jobs.PruneIdleThreads = "0 */5 * * * *" // every 5 minutes
	}

	return nil
}

// RequestTimeout returns the bound applied to every backend call.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Backend.TimeoutSeconds) * time.Second
}

// MessageInterval returns the messaging poll period.
func (c *Config) MessageInterval() time.Duration {
	return time.Duration(c.Polling.MessageIntervalSeconds) * time.Second
}

// ThreadIdleLimit returns how long an untouched conversation keeps polling.
func (c *Config) ThreadIdleLimit() time.Duration {
	return time.Duration(c.Polling.ThreadIdleMinutes) * time.Minute
}

// GetServerAddress returns the local listen address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
