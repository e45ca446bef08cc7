package collector

import (
	"context"
	"time"

	"feedscraper/pkg/browser"
	"feedscraper/pkg/config"
	errs "feedscraper/pkg/errors"
	"feedscraper/pkg/extract"
	"feedscraper/pkg/logger"
	"feedscraper/pkg/models"
	"feedscraper/pkg/retry"
)

// StopReason explains why a collection stopped scrolling
type StopReason string

const (
	// StopNoItems means no item container rendered within the wait
	StopNoItems StopReason = "no_items"
	// StopIdle means a scroll pass accepted nothing new
	StopIdle StopReason = "idle"
	// StopMaxIterations means the scroll cap was reached
	StopMaxIterations StopReason = "max_iterations"
)

// Stats describes one account's collection
type Stats struct {
	Passes   int
	Scrolls  int
	Accepted int
	Reason   StopReason
	Duration time.Duration
}

// Collector pages through a rendered feed, scrolling until the feed
// stops yielding new in-window items.
type Collector struct {
	cfg       config.CollectConfig
	extractor extract.Extractor
	log       logger.Logger
}

// New creates a collector with the given scroll settings
func New(cfg config.CollectConfig, extractor extract.Extractor, log logger.Logger) *Collector {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Collector{
		cfg:       cfg,
		extractor: extractor,
		log:       log.WithField("component", "collector"),
	}
}

// Collect gathers the items on page created at or after windowStart. The
// page must already show the account's feed. Items are returned in the
// order they were first seen, each id at most once.
func (c *Collector) Collect(ctx context.Context, page browser.Page, account string, windowStart time.Time) ([]models.ContentItem, Stats, error) {
	start := time.Now()
	stats := Stats{}
	items := []models.ContentItem{}
	log := c.log.WithField("account", account)

	finish := func(reason StopReason) Stats {
		stats.Reason = reason
		stats.Accepted = len(items)
		stats.Duration = time.Since(start)
		log.DebugWithFields("Collection stopped", map[string]interface{}{
			"reason":   string(reason),
			"passes":   stats.Passes,
			"scrolls":  stats.Scrolls,
			"accepted": stats.Accepted,
		})
		return stats
	}

	found, err := page.WaitFor(ctx, browser.ItemContainer, c.cfg.ItemWait)
	if err != nil {
		return items, finish(StopNoItems), errs.ForAccount(account, err)
	}
	if !found {
		log.Info("No items rendered on profile page")
		return items, finish(StopNoItems), nil
	}

	seen := make(map[string]bool)
	pass := func() (int, error) {
		batch, err := c.extractor.Extract(ctx, page, account)
		stats.Passes++
		if err != nil {
			return 0, err
		}
		accepted := 0
		for _, item := range batch {
			if seen[item.ID] || item.CreatedAt.Before(windowStart) {
				continue
			}
			seen[item.ID] = true
			items = append(items, item)
			accepted++
		}
		return accepted, nil
	}

	if _, err := pass(); err != nil {
		return []models.ContentItem{}, finish(StopNoItems), errs.ForAccount(account, err)
	}

	for i := 0; i < c.cfg.MaxIterations; i++ {
		if err := ctx.Err(); err != nil {
			return items, finish(StopIdle), err
		}

		if err := page.ScrollBy(ctx, c.cfg.ScrollFraction); err != nil {
			return []models.ContentItem{}, finish(StopIdle), errs.ForAccount(account, err)
		}
		stats.Scrolls++

		if err := retry.Wait(ctx, c.cfg.SettleDelay); err != nil {
			return items, finish(StopIdle), err
		}

		accepted, err := pass()
		if err != nil {
			return []models.ContentItem{}, finish(StopIdle), errs.ForAccount(account, err)
		}
		log.DebugWithFields("Scroll pass finished", map[string]interface{}{
			"scroll":   i + 1,
			"accepted": accepted,
			"total":    len(items),
		})
		if accepted == 0 {
			return items, finish(StopIdle), nil
		}
	}

	return items, finish(StopMaxIterations), nil
}
