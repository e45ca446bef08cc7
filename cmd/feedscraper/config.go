package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"feedscraper/pkg/config"
	"feedscraper/pkg/ui"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage feedscraper configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (FEEDSCRAPER_*)
  - .env files
  - Configuration file
  - Default values (lowest priority)`,
}

// initCmd represents the config init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file will be created in the current directory as '.feedscraper.yaml'
unless a different path is specified with the --config flag.`,
	Run: runConfigInit,
}

// showCmd represents the config show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the effective configuration after merging every source.

Session file paths are shown; cookie values never are.`,
	Run: runConfigShow,
}

// validateCmd represents the config validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration",
	Long: `Validate the effective configuration.

This command checks:
  - YAML syntax
  - Value ranges
  - Session and output path accessibility`,
	Run: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)
}

const exampleConfig = `# feedscraper configuration file
#
# Every option can also be set through environment variables prefixed
# with FEEDSCRAPER_, for example FEEDSCRAPER_ACCOUNTS=nasa,esa

# Accounts to collect, in dispatch order
accounts:
  - nasa
  - esa

collect:
  # Only posts from the last N hours are kept
  window_hours: 24
  # Scroll passes after the first extraction
  max_iterations: 10
  # Fraction of the viewport scrolled per pass, in (0, 1]
  scroll_fraction: 0.8
  # Pause after each scroll so new posts can render
  settle_delay: 2s
  # How long to wait for the first post before giving up on a profile
  item_wait: 15s
  # Accounts collected in parallel (1-10)
  concurrency: 3
  # Minimum delay between starting two accounts
  account_delay: 1s

browser:
  # Chrome or Chromium binary, empty to auto-detect
  exec_path: ""
  headless: true
  user_agent: ""
  viewport_width: 1920
  viewport_height: 1080
  page_load_timeout: 30s
  # How long to wait for the signed-in marker after applying the session
  auth_wait: 10s
  base_url: "https://x.com"
  launch_retries: 3

cache:
  enabled: true
  ttl: 5m

session:
  # Cookie export written by 'feedscraper session import'
  file: "~/.config/feedscraper/session.json"
  # Optional encrypted copy
  encrypted_file: ""
  # Also look in the system keychain
  use_keyring: false

output:
  directory: "./reports"
  json: true
  markdown: true

schedule:
  # Interval used by 'feedscraper watch'
  interval: 30m

logging:
  # debug, info, warn, error
  level: "info"
  # auto, console, json
  format: "auto"
  # Optional log file, JSON lines
  file: ""
`

func runConfigInit(cmd *cobra.Command, args []string) {
	configPath := configFile
	if configPath == "" {
		configPath = ".feedscraper.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		ui.PrintError("Configuration file already exists", configPath)
		fmt.Println("\nTo overwrite, first remove the existing file:")
		fmt.Printf("  rm %s\n", configPath)
		os.Exit(1)
	}

	content := strings.Replace(exampleConfig, `"~/.config/feedscraper/session.json"`, strconv.Quote(config.DefaultSessionFile()), 1)
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		ui.PrintError("Failed to create configuration file", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Edit the accounts list")
	fmt.Println("2. Import a session with 'feedscraper session import cookies.json'")
	fmt.Println("3. Run 'feedscraper config validate' to check the configuration")
	fmt.Println("4. Collect with 'feedscraper collect'")
}

func runConfigShow(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		ui.PrintError("Failed to format configuration", err.Error())
		os.Exit(1)
	}

	ui.PrintHighlight("Current Configuration")
	fmt.Println()
	fmt.Print(string(data))

	fmt.Println("\nConfiguration sources (in order of priority):")
	fmt.Println("1. Command line flags")
	fmt.Println("2. Environment variables (FEEDSCRAPER_*)")
	fmt.Println("3. .env files")
	if configFile != "" {
		fmt.Printf("4. Configuration file: %s\n", configFile)
	} else {
		fmt.Println("4. Configuration file: (searched in default locations)")
	}
	fmt.Println("5. Default values")
}

func runConfigValidate(cmd *cobra.Command, args []string) {
	if configFile != "" {
		ui.PrintInfo("Validating configuration", configFile)
	}

	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Configuration validation failed", err.Error())
		os.Exit(1)
	}

	warnings := []string{}
	errors := []string{}

	if err := cfg.Validate(); err != nil {
		errors = append(errors, strings.Split(err.Error(), "\n")...)
	}

	if len(cfg.Accounts) == 0 {
		warnings = append(warnings, "no accounts configured, they must be passed on the command line")
	}

	if cfg.Session.File != "" {
		if _, err := os.Stat(cfg.Session.File); os.IsNotExist(err) {
			warnings = append(warnings, fmt.Sprintf("session file %s does not exist yet", cfg.Session.File))
		}
	}

	if cfg.Output.Directory != "" {
		if err := os.MkdirAll(cfg.Output.Directory, 0755); err != nil {
			errors = append(errors, fmt.Sprintf("Cannot create output directory: %v", err))
		}
	}

	if cfg.Logging.File != "" {
		dir := filepath.Dir(cfg.Logging.File)
		if err := os.MkdirAll(dir, 0755); err != nil {
			errors = append(errors, fmt.Sprintf("Cannot create log directory: %v", err))
		}
	}

	if len(errors) > 0 {
		ui.PrintError("Configuration has errors:", "")
		for _, err := range errors {
			fmt.Printf("  - %s\n", err)
		}
		os.Exit(1)
	}

	if len(warnings) > 0 {
		ui.PrintWarning("Configuration warnings:", "")
		for _, warn := range warnings {
			fmt.Printf("  - %s\n", warn)
		}
		fmt.Println()
	}

	ui.PrintSuccess("Configuration is valid")

	fmt.Println("\nConfiguration summary:")
	fmt.Printf("  Accounts: %s\n", strings.Join(cfg.Accounts, ", "))
	fmt.Printf("  Window: %dh\n", cfg.Collect.WindowHours)
	fmt.Printf("  Concurrency: %d\n", cfg.Collect.Concurrency)
	fmt.Printf("  Cache: %v (ttl %s)\n", cfg.Cache.Enabled, cfg.Cache.TTL)
	fmt.Printf("  Output directory: %s\n", cfg.Output.Directory)
	fmt.Printf("  Log level: %s\n", cfg.Logging.Level)
}
