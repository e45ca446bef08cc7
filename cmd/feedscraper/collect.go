package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"feedscraper/pkg/config"
	"feedscraper/pkg/digest"
	"feedscraper/pkg/logger"
	"feedscraper/pkg/scraper"
	"feedscraper/pkg/ui"

	"github.com/spf13/cobra"
)

var (
	// Collect command flags
	windowHours  int
	jsonOut      string
	markdownOut  string
	summaryOut   string
	outputDir    string
	concurrency  int
	sessionFile  string
	headless     bool
	showMessages bool
)

// collectCmd represents the collect command
var collectCmd = &cobra.Command{
	Use:   "collect [accounts...]",
	Short: "Collect recent posts from one or more accounts",
	Long: `Collect the posts each account published within the time window.

Accounts can be given as arguments, as a comma-separated FEEDSCRAPER_ACCOUNTS
variable or in the configuration file. Every account appears in the result,
with an empty list when nothing could be collected for it.

A login session is required. Import one with 'feedscraper session import'.`,
	Example: `  # Last 24 hours from two accounts
  feedscraper collect nasa esa

  # Last 6 hours, written to explicit report files
  feedscraper collect nasa --hours 6 --json out.json --markdown out.md

  # Produce the text handed to a summarizer
  feedscraper collect nasa esa --summary-input digest.txt`,
	Run: runCollect,
}

func init() {
	rootCmd.AddCommand(collectCmd)

	addCollectFlags(collectCmd)
	collectCmd.Flags().StringVar(&jsonOut, "json", "", "write the JSON report to this path")
	collectCmd.Flags().StringVar(&markdownOut, "markdown", "", "write the Markdown report to this path")
	collectCmd.Flags().StringVar(&summaryOut, "summary-input", "", "write summarizer input text to this path")
	collectCmd.Flags().BoolVar(&showMessages, "messages", false, "print the result as chat-sized message chunks")
}

// addCollectFlags registers the flags shared by collect and watch
func addCollectFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&windowHours, "hours", 0, "time window in hours (default from config, 24)")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "report output directory")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "accounts collected in parallel")
	cmd.Flags().StringVar(&sessionFile, "session", "", "session cookie file")
	cmd.Flags().BoolVar(&headless, "headless", true, "run the browser without a window")
}

// collectFlags builds the flags map handed to config.Load
func collectFlags(cmd *cobra.Command, accounts []string) map[string]interface{} {
	flags := make(map[string]interface{})
	if len(accounts) > 0 {
		flags["accounts"] = config.ParseAccounts(strings.Join(accounts, ","))
	}
	if windowHours > 0 {
		flags["hours"] = windowHours
	}
	if outputDir != "" {
		flags["output"] = outputDir
	}
	if concurrency > 0 {
		flags["concurrency"] = concurrency
	}
	if sessionFile != "" {
		flags["session"] = sessionFile
	}
	if cmd.Flags().Changed("headless") {
		flags["headless"] = headless
	}
	if logLevel != "" {
		flags["log-level"] = logLevel
	}
	return flags
}

// loadRuntime loads configuration and initializes the global logger
func loadRuntime(flags map[string]interface{}) *config.Config {
	cfg, err := config.Load(configFile, flags)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		ui.PrintError("Failed to initialize logger", err.Error())
		os.Exit(1)
	}

	if len(cfg.Accounts) == 0 {
		ui.PrintError("No accounts to collect", "pass them as arguments or set FEEDSCRAPER_ACCOUNTS")
		os.Exit(1)
	}
	return cfg
}

func runCollect(cmd *cobra.Command, args []string) {
	cfg := loadRuntime(collectFlags(cmd, args))
	log := logger.GetLogger()
	log.WithField("version", version).Info("feedscraper starting")

	ui.PrintInfo("Accounts", strings.Join(cfg.Accounts, ", "))
	ui.PrintInfo("Window", fmt.Sprintf("%dh", cfg.Collect.WindowHours))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := scraper.New(cfg, log)
	started := time.Now()
	result := s.CollectAll(ctx, cfg.Accounts, cfg.Collect.WindowHours)

	if ctx.Err() != nil {
		ui.PrintWarning("Collection interrupted, results are partial")
	}

	written, err := writeReports(cfg, result, cfg.Collect.WindowHours, started, reportTargets{
		JSON:         jsonOut,
		Markdown:     markdownOut,
		SummaryInput: summaryOut,
	})
	for _, path := range written {
		ui.PrintInfo("Report", path)
	}
	if err != nil {
		log.WithError(err).Error("Failed to write reports")
		ui.PrintError("Failed to write reports", err.Error())
		os.Exit(1)
	}

	fmt.Println()
	ui.PrintAccountTable(result)

	if showMessages {
		for _, msg := range digest.FormatMessages(result, digest.DefaultMessageLimit) {
			fmt.Println()
			fmt.Println(msg)
		}
	}

	ui.PrintSuccess(fmt.Sprintf("Collected %d item(s) from %d account(s) in %s",
		result.TotalItems(), len(result), time.Since(started).Round(time.Millisecond)))
}
