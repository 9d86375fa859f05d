package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every configuration environment variable
const EnvPrefix = "TWFOLLOWERS_"

// Config holds all configuration options for the follower viewer
type Config struct {
	// Follower API settings
	Twitter TwitterConfig `yaml:"twitter" json:"twitter"`

	// HTTP surface
	Server ServerConfig `yaml:"server" json:"server"`

	// Follower List location
	Storage StorageConfig `yaml:"storage" json:"storage"`

	// Pacing of account lookups
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Report generation
	Report ReportConfig `yaml:"report" json:"report"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// TwitterConfig holds follower API configuration
type TwitterConfig struct {
	BaseURL             string        `yaml:"base_url" json:"base_url"`
	Timeout             time.Duration `yaml:"timeout" json:"timeout"`
	UserAgent           string        `yaml:"user_agent" json:"user_agent"`
	FollowersMaxResults int           `yaml:"followers_max_results" json:"followers_max_results"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr            string        `yaml:"addr" json:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" json:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

// StorageConfig holds the Follower List file location
type StorageConfig struct {
	DataFile string `yaml:"data_file" json:"data_file"`
}

// RateLimitConfig holds lookup pacing configuration
type RateLimitConfig struct {
	Strategy         string        `yaml:"strategy" json:"strategy"`
	LookupsPerWindow int           `yaml:"lookups_per_window" json:"lookups_per_window"`
	Window           time.Duration `yaml:"window" json:"window"`
}

// ReportConfig holds report generation settings
type ReportConfig struct {
	Concurrency int  `yaml:"concurrency" json:"concurrency"`
	FailFast    bool `yaml:"fail_fast" json:"fail_fast"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Twitter: TwitterConfig{
			BaseURL:             "https://api.twitter.com",
			Timeout:             30 * time.Second,
			UserAgent:           "twfollowers/1.0",
			FollowersMaxResults: 0, // API default page size
		},
		Server: ServerConfig{
			Addr:            ":8000",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    2 * time.Minute,
			ShutdownTimeout: 5 * time.Second,
		},
		Storage: StorageConfig{
			DataFile: "data.json",
		},
		RateLimit: RateLimitConfig{
			Strategy:         "token_bucket",
			LookupsPerWindow: 900,
			Window:           15 * time.Minute,
		},
		Report: ReportConfig{
			Concurrency: 4,
			FailFast:    false,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	var errs []error

	if baseURL := os.Getenv(EnvPrefix + "API_BASE_URL"); baseURL != "" {
		c.Twitter.BaseURL = baseURL
	}
	if timeout := os.Getenv(EnvPrefix + "API_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid %sAPI_TIMEOUT: %w", EnvPrefix, err))
		} else {
			c.Twitter.Timeout = d
		}
	}
	if maxResults := os.Getenv(EnvPrefix + "FOLLOWERS_MAX_RESULTS"); maxResults != "" {
		var val int
		fmt.Sscanf(maxResults, "%d", &val)
		if val > 0 {
			c.Twitter.FollowersMaxResults = val
		}
	}

	if addr := os.Getenv(EnvPrefix + "ADDR"); addr != "" {
		c.Server.Addr = addr
	}

	if dataFile := os.Getenv(EnvPrefix + "DATA_FILE"); dataFile != "" {
		c.Storage.DataFile = dataFile
	}

	if lookups := os.Getenv(EnvPrefix + "LOOKUPS_PER_WINDOW"); lookups != "" {
		var val int
		fmt.Sscanf(lookups, "%d", &val)
		if val > 0 {
			c.RateLimit.LookupsPerWindow = val
		}
	}

	if concurrency := os.Getenv(EnvPrefix + "REPORT_CONCURRENCY"); concurrency != "" {
		var val int
		fmt.Sscanf(concurrency, "%d", &val)
		if val > 0 {
			c.Report.Concurrency = val
		}
	}
	if failFast := os.Getenv(EnvPrefix + "REPORT_FAIL_FAST"); failFast != "" {
		c.Report.FailFast = strings.ToLower(failFast) == "true"
	}

	if logLevel := os.Getenv(EnvPrefix + "LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFile := os.Getenv(EnvPrefix + "LOG_FILE"); logFile != "" {
		c.Logging.File = logFile
	}

	return errors.Join(errs...)
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		".twfollowers.yaml",
		".twfollowers.yml",
		filepath.Join(home, ".config", "twfollowers", "config.yaml"),
		filepath.Join(home, ".config", "twfollowers", "config.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Twitter.BaseURL == "" {
		errs = append(errs, errors.New("API base URL is required"))
	} else if u, err := url.Parse(c.Twitter.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, errors.New("API base URL must be an absolute URL"))
	}
	if c.Twitter.Timeout <= 0 {
		errs = append(errs, errors.New("API timeout must be positive"))
	}
	if c.Twitter.FollowersMaxResults < 0 || c.Twitter.FollowersMaxResults > 1000 {
		errs = append(errs, errors.New("followers max results must be between 0 and 1000"))
	}

	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server address is required"))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("shutdown timeout must be positive"))
	}

	if c.Storage.DataFile == "" {
		errs = append(errs, errors.New("data file is required"))
	}

	validStrategies := map[string]bool{
		"token_bucket": true, "sliding_window": true,
	}
	if !validStrategies[strings.ToLower(c.RateLimit.Strategy)] {
		errs = append(errs, errors.New("invalid rate limit strategy"))
	}
	if c.RateLimit.LookupsPerWindow <= 0 {
		errs = append(errs, errors.New("lookups per window must be positive"))
	}
	if c.RateLimit.Window <= 0 {
		errs = append(errs, errors.New("rate limit window must be positive"))
	}

	if c.Report.Concurrency <= 0 {
		errs = append(errs, errors.New("report concurrency must be positive"))
	}
	if c.Report.Concurrency > 10 {
		errs = append(errs, errors.New("report concurrency should not exceed 10"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if addr, ok := flags["addr"].(string); ok && addr != "" {
		c.Server.Addr = addr
	}
	if dataFile, ok := flags["data-file"].(string); ok && dataFile != "" {
		c.Storage.DataFile = dataFile
	}
	if baseURL, ok := flags["api-base-url"].(string); ok && baseURL != "" {
		c.Twitter.BaseURL = baseURL
	}
	if concurrency, ok := flags["concurrency"].(int); ok && concurrency > 0 {
		c.Report.Concurrency = concurrency
	}
	if failFast, ok := flags["fail-fast"].(bool); ok {
		c.Report.FailFast = failFast
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// .env also carries the API credentials read by pkg/auth
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".twfollowers.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
