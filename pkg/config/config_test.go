package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Empty(t, cfg.Accounts)

	// Collection defaults
	assert.Equal(t, 24, cfg.Collect.WindowHours)
	assert.Equal(t, 10, cfg.Collect.MaxIterations)
	assert.Equal(t, 0.8, cfg.Collect.ScrollFraction)
	assert.Equal(t, 2*time.Second, cfg.Collect.SettleDelay)
	assert.Equal(t, 15*time.Second, cfg.Collect.ItemWait)
	assert.Equal(t, 3, cfg.Collect.Concurrency)
	assert.Equal(t, time.Second, cfg.Collect.AccountDelay)

	// Browser defaults
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, DefaultUserAgent, cfg.Browser.UserAgent)
	assert.Equal(t, 1920, cfg.Browser.ViewportWidth)
	assert.Equal(t, 1080, cfg.Browser.ViewportHeight)
	assert.Equal(t, 30*time.Second, cfg.Browser.PageLoadTimeout)
	assert.Equal(t, 10*time.Second, cfg.Browser.AuthWait)
	assert.Equal(t, "https://x.com", cfg.Browser.BaseURL)

	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)

	assert.Equal(t, "session.json", filepath.Base(cfg.Session.File))
	assert.Equal(t, "info", cfg.Logging.Level)

	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("FEEDSCRAPER_ACCOUNTS", "@Alice, bob ,,carol")
	t.Setenv("FEEDSCRAPER_SESSION_FILE", "/tmp/session.json")
	t.Setenv("FEEDSCRAPER_CHROME_PATH", "/usr/bin/chromium")
	t.Setenv("FEEDSCRAPER_HEADLESS", "false")
	t.Setenv("FEEDSCRAPER_WINDOW_HOURS", "6")
	t.Setenv("FEEDSCRAPER_CACHE_TTL", "90s")
	t.Setenv("FEEDSCRAPER_OUTPUT_DIR", "/tmp/reports")
	t.Setenv("FEEDSCRAPER_LOG_LEVEL", "debug")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, []string{"Alice", "bob", "carol"}, cfg.Accounts)
	assert.Equal(t, "/tmp/session.json", cfg.Session.File)
	assert.Equal(t, "/usr/bin/chromium", cfg.Browser.ExecPath)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, 6, cfg.Collect.WindowHours)
	assert.Equal(t, 90*time.Second, cfg.Cache.TTL)
	assert.Equal(t, "/tmp/reports", cfg.Output.Directory)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFromEnvInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"window hours not a number", "FEEDSCRAPER_WINDOW_HOURS", "abc"},
		{"cache ttl not a duration", "FEEDSCRAPER_CACHE_TTL", "five minutes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			cfg := DefaultConfig()
			assert.Error(t, cfg.LoadFromEnv())
		})
	}
}

func TestParseAccounts(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"", []string{}},
		{"elonmusk", []string{"elonmusk"}},
		{"a,b,c", []string{"a", "b", "c"}},
		{" @a ,\n@b\tc ", []string{"a", "b", "c"}},
		{",,,", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseAccounts(tt.raw))
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
accounts:
  - OpenAI
  - AnthropicAI
collect:
  window_hours: 12
  max_iterations: 4
  concurrency: 2
cache:
  ttl: 1m
logging:
  level: warn
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromFile(path))

	assert.Equal(t, []string{"OpenAI", "AnthropicAI"}, cfg.Accounts)
	assert.Equal(t, 12, cfg.Collect.WindowHours)
	assert.Equal(t, 4, cfg.Collect.MaxIterations)
	assert.Equal(t, 2, cfg.Collect.Concurrency)
	assert.Equal(t, time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "warn", cfg.Logging.Level)

	// Untouched sections keep their defaults
	assert.Equal(t, 0.8, cfg.Collect.ScrollFraction)
	assert.Equal(t, 1920, cfg.Browser.ViewportWidth)
}

func TestLoadFromFileErrors(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("accounts: [unterminated"), 0644))
	err = cfg.LoadFromFile(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(*Config)
		wantError string
	}{
		{
			name:   "valid defaults",
			modify: func(c *Config) {},
		},
		{
			name:      "empty account",
			modify:    func(c *Config) { c.Accounts = []string{"a", " "} },
			wantError: "account 1 is empty",
		},
		{
			name:      "zero window",
			modify:    func(c *Config) { c.Collect.WindowHours = 0 },
			wantError: "window hours must be positive",
		},
		{
			name:      "scroll fraction too large",
			modify:    func(c *Config) { c.Collect.ScrollFraction = 1.5 },
			wantError: "scroll fraction",
		},
		{
			name:      "zero concurrency",
			modify:    func(c *Config) { c.Collect.Concurrency = 0 },
			wantError: "concurrency must be positive",
		},
		{
			name:      "excessive concurrency",
			modify:    func(c *Config) { c.Collect.Concurrency = 20 },
			wantError: "concurrency should not exceed 10",
		},
		{
			name:      "cache enabled without ttl",
			modify:    func(c *Config) { c.Cache.TTL = 0 },
			wantError: "cache TTL must be positive",
		},
		{
			name: "cache disabled without ttl",
			modify: func(c *Config) {
				c.Cache.Enabled = false
				c.Cache.TTL = 0
			},
		},
		{
			name: "no session source",
			modify: func(c *Config) {
				c.Session.File = ""
			},
			wantError: "a session source is required",
		},
		{
			name: "keyring only session",
			modify: func(c *Config) {
				c.Session.File = ""
				c.Session.UseKeyring = true
			},
		},
		{
			name:      "invalid log level",
			modify:    func(c *Config) { c.Logging.Level = "verbose" },
			wantError: "invalid log level",
		},
		{
			name:      "short schedule interval",
			modify:    func(c *Config) { c.Schedule.Interval = time.Second },
			wantError: "schedule interval",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantError == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantError)
		})
	}
}

func TestValidateJoinsAllErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Collect.WindowHours = -1
	cfg.Collect.Concurrency = 0
	cfg.Logging.Level = "loud"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "window hours")
	assert.Contains(t, err.Error(), "concurrency")
	assert.Contains(t, err.Error(), "log level")
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Accounts = []string{"nasa"}
	cfg.Collect.WindowHours = 48
	require.NoError(t, cfg.Save(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var raw map[string]interface{}
	require.NoError(t, yaml.Unmarshal(data, &raw))
	assert.Contains(t, raw, "collect")

	loaded := DefaultConfig()
	require.NoError(t, loaded.LoadFromFile(path))
	assert.Equal(t, []string{"nasa"}, loaded.Accounts)
	assert.Equal(t, 48, loaded.Collect.WindowHours)
}

func TestMergeCommandLineFlags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MergeCommandLineFlags(map[string]interface{}{
		"accounts":    []string{"x", "y"},
		"hours":       3,
		"session":     "/tmp/s.json",
		"output":      "/tmp/out",
		"concurrency": 2,
		"headless":    false,
		"log-level":   "error",
		"every":       10 * time.Minute,
		"unknown":     "ignored",
	})

	assert.Equal(t, []string{"x", "y"}, cfg.Accounts)
	assert.Equal(t, 3, cfg.Collect.WindowHours)
	assert.Equal(t, "/tmp/s.json", cfg.Session.File)
	assert.Equal(t, "/tmp/out", cfg.Output.Directory)
	assert.Equal(t, 2, cfg.Collect.Concurrency)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, "error", cfg.Logging.Level)
	assert.Equal(t, 10*time.Minute, cfg.Schedule.Interval)
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("accounts: [fromfile]\ncollect:\n  window_hours: 2\n"), 0644))

	t.Setenv("FEEDSCRAPER_WINDOW_HOURS", "5")
	t.Setenv("FEEDSCRAPER_ACCOUNTS", "")

	cfg, err := Load(path, map[string]interface{}{"concurrency": 1})
	require.NoError(t, err)

	assert.Equal(t, []string{"fromfile"}, cfg.Accounts)
	assert.Equal(t, 5, cfg.Collect.WindowHours)
	assert.Equal(t, 1, cfg.Collect.Concurrency)
}

func TestLoadValidationFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("collect:\n  concurrency: 50\n"), 0644))

	_, err := Load(path, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration validation failed")
}
