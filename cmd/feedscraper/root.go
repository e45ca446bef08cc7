package main

import (
	"fmt"
	"os"
	"runtime"

	"feedscraper/pkg/ui"

	"github.com/spf13/cobra"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
	quiet      bool
	noLogo     bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "feedscraper",
	Short: "Collect recent timeline posts from a list of accounts",
	Long: `feedscraper drives a headless browser with a saved login session to read
the recent timeline of each configured account.

Features:
  - Incremental scrolling that stops once the feed runs dry
  - Time-window filtering and per-run deduplication
  - Bounded concurrency with polite pacing between accounts
  - Short-lived result cache keyed by window
  - JSON, Markdown and summary-input reports
  - Periodic collection with the watch command`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if quiet || logLevel == "error" {
			ui.SetQuietMode(true)
		}

		// Don't show logo for certain commands
		if noLogo {
			return
		}
		switch cmd.Name() {
		case "version", "help", "completion", "show":
			return
		}
		ui.PrintLogo()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is ./.feedscraper.yaml or $HOME/.config/feedscraper/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&noLogo, "no-logo", false, "do not print the banner")

	// Version template
	rootCmd.SetVersionTemplate(`feedscraper {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	// Disable default completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
