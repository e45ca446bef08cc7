package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the feed scraper
type Config struct {
	// Accounts to collect from, in dispatch order
	Accounts []string `yaml:"accounts" json:"accounts"`

	// Scrolling and window settings
	Collect CollectConfig `yaml:"collect" json:"collect"`

	// Headless browser settings
	Browser BrowserConfig `yaml:"browser" json:"browser"`

	// Result cache settings
	Cache CacheConfig `yaml:"cache" json:"cache"`

	// Session bundle location and copies
	Session SessionConfig `yaml:"session" json:"session"`

	// Report output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Periodic collection settings
	Schedule ScheduleConfig `yaml:"schedule" json:"schedule"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// CollectConfig holds the incremental collection settings
type CollectConfig struct {
	WindowHours    int           `yaml:"window_hours" json:"window_hours"`
	MaxIterations  int           `yaml:"max_iterations" json:"max_iterations"`
	ScrollFraction float64       `yaml:"scroll_fraction" json:"scroll_fraction"`
	SettleDelay    time.Duration `yaml:"settle_delay" json:"settle_delay"`
	ItemWait       time.Duration `yaml:"item_wait" json:"item_wait"`
	Concurrency    int           `yaml:"concurrency" json:"concurrency"`
	AccountDelay   time.Duration `yaml:"account_delay" json:"account_delay"`
}

// BrowserConfig holds headless browser configuration
type BrowserConfig struct {
	ExecPath        string        `yaml:"exec_path" json:"exec_path"`
	Headless        bool          `yaml:"headless" json:"headless"`
	UserAgent       string        `yaml:"user_agent" json:"user_agent"`
	ViewportWidth   int           `yaml:"viewport_width" json:"viewport_width"`
	ViewportHeight  int           `yaml:"viewport_height" json:"viewport_height"`
	PageLoadTimeout time.Duration `yaml:"page_load_timeout" json:"page_load_timeout"`
	AuthWait        time.Duration `yaml:"auth_wait" json:"auth_wait"`
	BaseURL         string        `yaml:"base_url" json:"base_url"`
	LaunchRetries   int           `yaml:"launch_retries" json:"launch_retries"`
}

// CacheConfig holds result cache configuration
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" json:"enabled"`
	TTL     time.Duration `yaml:"ttl" json:"ttl"`
}

// SessionConfig holds where the session bundle is read from
type SessionConfig struct {
	File          string `yaml:"file" json:"file"`
	EncryptedFile string `yaml:"encrypted_file" json:"encrypted_file"`
	UseKeyring    bool   `yaml:"use_keyring" json:"use_keyring"`
}

// OutputConfig holds report output configuration
type OutputConfig struct {
	Directory string `yaml:"directory" json:"directory"`
	JSON      bool   `yaml:"json" json:"json"`
	Markdown  bool   `yaml:"markdown" json:"markdown"`
}

// ScheduleConfig holds the watch command interval
type ScheduleConfig struct {
	Interval time.Duration `yaml:"interval" json:"interval"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	File   string `yaml:"file" json:"file"`
	Format string `yaml:"format" json:"format"`
}

// DefaultUserAgent is the desktop browser identity presented to the site
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// DefaultSessionFile returns the well-known session bundle path
func DefaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		dir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(dir, "feedscraper", "session.json")
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Accounts: []string{},
		Collect: CollectConfig{
			WindowHours:    24,
			MaxIterations:  10,
			ScrollFraction: 0.8,
			SettleDelay:    2 * time.Second,
			ItemWait:       15 * time.Second,
			Concurrency:    3,
			AccountDelay:   1 * time.Second,
		},
		Browser: BrowserConfig{
			Headless:        true,
			UserAgent:       DefaultUserAgent,
			ViewportWidth:   1920,
			ViewportHeight:  1080,
			PageLoadTimeout: 30 * time.Second,
			AuthWait:        10 * time.Second,
			BaseURL:         "https://x.com",
			LaunchRetries:   3,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     5 * time.Minute,
		},
		Session: SessionConfig{
			File: DefaultSessionFile(),
		},
		Output: OutputConfig{
			Directory: "./reports",
			JSON:      true,
			Markdown:  true,
		},
		Schedule: ScheduleConfig{
			Interval: 30 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			File:   "",
			Format: "auto",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if accounts := os.Getenv("FEEDSCRAPER_ACCOUNTS"); accounts != "" {
		c.Accounts = ParseAccounts(accounts)
	}

	if sessionFile := os.Getenv("FEEDSCRAPER_SESSION_FILE"); sessionFile != "" {
		c.Session.File = sessionFile
	}
	if encrypted := os.Getenv("FEEDSCRAPER_ENCRYPTED_SESSION_FILE"); encrypted != "" {
		c.Session.EncryptedFile = encrypted
	}

	if chromePath := os.Getenv("FEEDSCRAPER_CHROME_PATH"); chromePath != "" {
		c.Browser.ExecPath = chromePath
	}
	if userAgent := os.Getenv("FEEDSCRAPER_USER_AGENT"); userAgent != "" {
		c.Browser.UserAgent = userAgent
	}
	if headless := os.Getenv("FEEDSCRAPER_HEADLESS"); headless != "" {
		c.Browser.Headless = strings.ToLower(headless) != "false"
	}

	if hours := os.Getenv("FEEDSCRAPER_WINDOW_HOURS"); hours != "" {
		val, err := strconv.Atoi(hours)
		if err != nil {
			return fmt.Errorf("invalid FEEDSCRAPER_WINDOW_HOURS %q: %w", hours, err)
		}
		if val > 0 {
			c.Collect.WindowHours = val
		}
	}

	if ttl := os.Getenv("FEEDSCRAPER_CACHE_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			return fmt.Errorf("invalid FEEDSCRAPER_CACHE_TTL %q: %w", ttl, err)
		}
		c.Cache.TTL = d
	}

	if outputDir := os.Getenv("FEEDSCRAPER_OUTPUT_DIR"); outputDir != "" {
		c.Output.Directory = outputDir
	}

	if logLevel := os.Getenv("FEEDSCRAPER_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFile := os.Getenv("FEEDSCRAPER_LOG_FILE"); logFile != "" {
		c.Logging.File = logFile
	}

	return nil
}

// ParseAccounts splits a comma or whitespace separated handle list,
// dropping empties and any leading "@".
func ParseAccounts(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\n' || r == '\t'
	})
	accounts := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimPrefix(strings.TrimSpace(f), "@")
		if f != "" {
			accounts = append(accounts, f)
		}
	}
	return accounts
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
		".feedscraper.yaml",
		".feedscraper.yml",
		filepath.Join(home, ".config", "feedscraper", "config.yaml"),
		filepath.Join(home, ".config", "feedscraper", "config.yml"),
		filepath.Join(home, ".feedscraper.yaml"),
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

	for i, account := range c.Accounts {
		if strings.TrimSpace(account) == "" {
			errs = append(errs, fmt.Errorf("account %d is empty", i))
		}
	}

	// Collection
	if c.Collect.WindowHours <= 0 {
		errs = append(errs, errors.New("window hours must be positive"))
	}
	if c.Collect.MaxIterations < 0 {
		errs = append(errs, errors.New("max iterations cannot be negative"))
	}
	if c.Collect.ScrollFraction <= 0 || c.Collect.ScrollFraction > 1 {
		errs = append(errs, errors.New("scroll fraction must be in (0, 1]"))
	}
	if c.Collect.Concurrency <= 0 {
		errs = append(errs, errors.New("concurrency must be positive"))
	}
	if c.Collect.Concurrency > 10 {
		errs = append(errs, errors.New("concurrency should not exceed 10"))
	}
	if c.Collect.AccountDelay < 0 {
		errs = append(errs, errors.New("account delay cannot be negative"))
	}
	if c.Collect.ItemWait <= 0 {
		errs = append(errs, errors.New("item wait must be positive"))
	}

	// Browser
	if c.Browser.ViewportWidth <= 0 || c.Browser.ViewportHeight <= 0 {
		errs = append(errs, errors.New("viewport dimensions must be positive"))
	}
	if c.Browser.PageLoadTimeout <= 0 {
		errs = append(errs, errors.New("page load timeout must be positive"))
	}
	if c.Browser.AuthWait <= 0 {
		errs = append(errs, errors.New("auth wait must be positive"))
	}
	if c.Browser.BaseURL == "" {
		errs = append(errs, errors.New("base URL is required"))
	}
	if c.Browser.LaunchRetries < 1 {
		errs = append(errs, errors.New("launch retries must be at least 1"))
	}

	// Cache
	if c.Cache.Enabled && c.Cache.TTL <= 0 {
		errs = append(errs, errors.New("cache TTL must be positive when the cache is enabled"))
	}

	if c.Session.File == "" && c.Session.EncryptedFile == "" && !c.Session.UseKeyring {
		errs = append(errs, errors.New("a session source is required"))
	}

	if c.Output.Directory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}

	if c.Schedule.Interval < time.Minute {
		errs = append(errs, errors.New("schedule interval must be at least one minute"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}
	validFormats := map[string]bool{
		"": true, "auto": true, "console": true, "json": true,
	}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, errors.New("invalid log format"))
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
	if accounts, ok := flags["accounts"].([]string); ok && len(accounts) > 0 {
		c.Accounts = accounts
	}
	if hours, ok := flags["hours"].(int); ok && hours > 0 {
		c.Collect.WindowHours = hours
	}
	if sessionFile, ok := flags["session"].(string); ok && sessionFile != "" {
		c.Session.File = sessionFile
	}
	if outputDir, ok := flags["output"].(string); ok && outputDir != "" {
		c.Output.Directory = outputDir
	}
	if concurrency, ok := flags["concurrency"].(int); ok && concurrency > 0 {
		c.Collect.Concurrency = concurrency
	}
	if headless, ok := flags["headless"].(bool); ok {
		c.Browser.Headless = headless
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
	if interval, ok := flags["every"].(time.Duration); ok && interval > 0 {
		c.Schedule.Interval = interval
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".feedscraper.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Includes values from .env
	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
