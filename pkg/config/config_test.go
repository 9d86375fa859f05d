package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "https://api.twitter.com", cfg.Twitter.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Twitter.Timeout)
	assert.Equal(t, "data.json", cfg.Storage.DataFile)
	assert.Equal(t, "token_bucket", cfg.RateLimit.Strategy)
	assert.Equal(t, 900, cfg.RateLimit.LookupsPerWindow)
	assert.Equal(t, 15*time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, 4, cfg.Report.Concurrency)
	assert.False(t, cfg.Report.FailFast)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("TWFOLLOWERS_API_BASE_URL", "http://127.0.0.1:9999")
	t.Setenv("TWFOLLOWERS_API_TIMEOUT", "5s")
	t.Setenv("TWFOLLOWERS_FOLLOWERS_MAX_RESULTS", "200")
	t.Setenv("TWFOLLOWERS_ADDR", ":9090")
	t.Setenv("TWFOLLOWERS_DATA_FILE", "/tmp/followers.json")
	t.Setenv("TWFOLLOWERS_LOOKUPS_PER_WINDOW", "30")
	t.Setenv("TWFOLLOWERS_REPORT_CONCURRENCY", "2")
	t.Setenv("TWFOLLOWERS_REPORT_FAIL_FAST", "TRUE")
	t.Setenv("TWFOLLOWERS_LOG_LEVEL", "debug")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, "http://127.0.0.1:9999", cfg.Twitter.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Twitter.Timeout)
	assert.Equal(t, 200, cfg.Twitter.FollowersMaxResults)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "/tmp/followers.json", cfg.Storage.DataFile)
	assert.Equal(t, 30, cfg.RateLimit.LookupsPerWindow)
	assert.Equal(t, 2, cfg.Report.Concurrency)
	assert.True(t, cfg.Report.FailFast)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFromEnvInvalidTimeout(t *testing.T) {
	t.Setenv("TWFOLLOWERS_API_TIMEOUT", "soon")

	cfg := DefaultConfig()
	err := cfg.LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API_TIMEOUT")
	assert.Equal(t, 30*time.Second, cfg.Twitter.Timeout)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *Config)
		wantError bool
	}{
		{
			name:      "valid config",
			mutate:    func(c *Config) {},
			wantError: false,
		},
		{
			name:      "relative base URL",
			mutate:    func(c *Config) { c.Twitter.BaseURL = "api.twitter.com" },
			wantError: true,
		},
		{
			name:      "zero timeout",
			mutate:    func(c *Config) { c.Twitter.Timeout = 0 },
			wantError: true,
		},
		{
			name:      "max results above API limit",
			mutate:    func(c *Config) { c.Twitter.FollowersMaxResults = 5000 },
			wantError: true,
		},
		{
			name:      "missing data file",
			mutate:    func(c *Config) { c.Storage.DataFile = "" },
			wantError: true,
		},
		{
			name:      "unknown rate limit strategy",
			mutate:    func(c *Config) { c.RateLimit.Strategy = "leaky" },
			wantError: true,
		},
		{
			name:      "sliding window strategy",
			mutate:    func(c *Config) { c.RateLimit.Strategy = "sliding_window" },
			wantError: false,
		},
		{
			name:      "concurrency too high",
			mutate:    func(c *Config) { c.Report.Concurrency = 15 },
			wantError: true,
		},
		{
			name:      "invalid log level",
			mutate:    func(c *Config) { c.Logging.Level = "verbose" },
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMergeCommandLineFlags(t *testing.T) {
	cfg := DefaultConfig()

	cfg.MergeCommandLineFlags(map[string]interface{}{
		"addr":         ":7000",
		"data-file":    "followers.json",
		"api-base-url": "http://localhost:1234",
		"concurrency":  6,
		"fail-fast":    true,
		"log-level":    "error",
	})

	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, "followers.json", cfg.Storage.DataFile)
	assert.Equal(t, "http://localhost:1234", cfg.Twitter.BaseURL)
	assert.Equal(t, 6, cfg.Report.Concurrency)
	assert.True(t, cfg.Report.FailFast)
	assert.Equal(t, "error", cfg.Logging.Level)
}

func TestSaveAndLoadFromFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Storage.DataFile = "/var/lib/twfollowers/data.json"
	cfg.Twitter.Timeout = 12 * time.Second
	cfg.Report.Concurrency = 8
	require.NoError(t, cfg.Save(configPath))

	info, err := os.Stat(configPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded := DefaultConfig()
	require.NoError(t, loaded.LoadFromFile(configPath))
	assert.Equal(t, "/var/lib/twfollowers/data.json", loaded.Storage.DataFile)
	assert.Equal(t, 12*time.Second, loaded.Twitter.Timeout)
	assert.Equal(t, 8, loaded.Report.Concurrency)
}

func TestLoadFromFileDurationStrings(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	content := `
twitter:
  timeout: 45s
rate_limit:
  strategy: sliding_window
  window: 1m
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0600))

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromFile(configPath))
	assert.Equal(t, 45*time.Second, cfg.Twitter.Timeout)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, "sliding_window", cfg.RateLimit.Strategy)
	// Untouched sections keep their defaults
	assert.Equal(t, "data.json", cfg.Storage.DataFile)
}

func TestLoadPrecedence(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("server:\n  addr: \":7001\"\nstorage:\n  data_file: file.json\n"), 0600))
	t.Setenv("TWFOLLOWERS_DATA_FILE", "env.json")

	cfg, err := Load(configPath, map[string]interface{}{"addr": ":7002"})
	require.NoError(t, err)
	assert.Equal(t, ":7002", cfg.Server.Addr)
	assert.Equal(t, "env.json", cfg.Storage.DataFile)
}
