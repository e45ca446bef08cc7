package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"feedscraper/pkg/cache"
	"feedscraper/pkg/config"
	"feedscraper/pkg/logger"
	"feedscraper/pkg/schedule"
	"feedscraper/pkg/scraper"
	"feedscraper/pkg/ui"

	"github.com/spf13/cobra"
)

var (
	// Watch command flags
	every  time.Duration
	notify bool
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch [accounts...]",
	Short: "Collect periodically until interrupted",
	Long: `Run a collection immediately and then again every interval, writing
timestamped reports into the output directory after each run.

A run that is still going when the next one is due delays it; runs never
overlap. Results are cached across runs for the configured TTL. The
session is re-read before every run, so a refreshed cookie export is
picked up without a restart. Ctrl+C stops after the current run; press it
again to abort immediately.`,
	Example: `  # Every 30 minutes (the default)
  feedscraper watch nasa esa

  # Every 2 hours over a 6 hour window, with desktop notifications
  feedscraper watch nasa --every 2h --hours 6 --notify`,
	Run: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	addCollectFlags(watchCmd)
	watchCmd.Flags().DurationVar(&every, "every", 0, "interval between runs (default from config, 30m)")
	watchCmd.Flags().BoolVar(&notify, "notify", false, "send a desktop notification after each run")
}

func runWatch(cmd *cobra.Command, args []string) {
	flags := collectFlags(cmd, args)
	if every > 0 {
		flags["every"] = every
	}
	cfg := loadRuntime(flags)
	if cfg.Schedule.Interval < time.Minute {
		ui.PrintError("Invalid interval", "must be at least one minute")
		os.Exit(1)
	}

	log := logger.GetLogger()
	log.WithFields(map[string]interface{}{
		"version":  version,
		"accounts": len(cfg.Accounts),
		"interval": cfg.Schedule.Interval.String(),
	}).Info("feedscraper watch starting")

	ui.PrintInfo("Accounts", strings.Join(cfg.Accounts, ", "))
	ui.PrintInfo("Interval", cfg.Schedule.Interval.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var notifier *ui.Notifier
	if notify {
		notifier = ui.NewNotifier()
	}

	shared := newRunCache(cfg)
	newScraper := func() *scraper.Scraper {
		return scraper.New(cfg, log).WithCache(shared)
	}

	// Jobs run on their own context so an interrupt lets the current run
	// finish; Stop cancels it once the run has returned.
	scheduler := schedule.NewScheduler(context.Background(), log)
	nextRun := func() (time.Time, bool) { return scheduler.NextRun("collect") }
	if err := scheduler.ScheduleInterval("collect", cfg.Schedule.Interval, watchJob(cfg, notifier, nextRun, newScraper)); err != nil {
		ui.PrintError("Failed to schedule collection", err.Error())
		os.Exit(1)
	}
	scheduler.Start()

	<-ctx.Done()
	// A second interrupt terminates the process
	stop()
	ui.PrintWarning("Stopping, waiting for the current run to finish (Ctrl+C again to abort)")
	scheduler.Stop()
	ui.PrintSuccess("Watch stopped")
}

// newRunCache returns the result cache shared by every watch run
func newRunCache(cfg *config.Config) cache.Cache {
	if !cfg.Cache.Enabled {
		return cache.Disabled{}
	}
	return cache.NewMemoryCache(cfg.Cache.TTL)
}

// watchJob returns the scheduled job. Each run builds a fresh scraper
// with newScraper so the session stores are read again; the result cache
// is shared across runs.
func watchJob(cfg *config.Config, notifier *ui.Notifier, nextRun func() (time.Time, bool), newScraper func() *scraper.Scraper) schedule.Job {
	return func(ctx context.Context) error {
		started := time.Now()
		result := newScraper().CollectAll(ctx, cfg.Accounts, cfg.Collect.WindowHours)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		written, err := writeReports(cfg, result, cfg.Collect.WindowHours, started, reportTargets{})
		if err != nil {
			if notifier != nil {
				notifier.SendError("feedscraper", err.Error())
			}
			return fmt.Errorf("failed to write reports: %w", err)
		}

		for _, path := range written {
			ui.PrintInfo("Report", path)
		}
		ui.PrintAccountTable(result)
		if notifier != nil {
			notifier.NotifyRun(result)
		}

		if nextRun == nil {
			return nil
		}
		if next, ok := nextRun(); ok {
			ui.PrintInfo("Next run", next.Format(time.RFC1123))
		}
		return nil
	}
}
