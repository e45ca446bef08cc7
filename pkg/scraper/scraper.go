package scraper

import (
	"context"
	"fmt"
	"sync"
	"time"

	"feedscraper/internal/pool"
	"feedscraper/pkg/browser"
	"feedscraper/pkg/cache"
	"feedscraper/pkg/collector"
	"feedscraper/pkg/config"
	errs "feedscraper/pkg/errors"
	"feedscraper/pkg/extract"
	"feedscraper/pkg/logger"
	"feedscraper/pkg/models"
	"feedscraper/pkg/ratelimit"
	"feedscraper/pkg/session"

	"github.com/google/uuid"
)

// Scraper orchestrates multi-account collection runs
type Scraper struct {
	config    *config.Config
	browsers  BrowserManager
	sessions  SessionSource
	collector FeedCollector
	cache     cache.Cache
	pacer     ratelimit.Limiter
	logger    logger.Logger
	now       func() time.Time

	sessionOnce sync.Once
	bundle      *session.Bundle
	sessionErr  error
}

// New wires a Scraper from configuration: chromedp browsers, the
// configured session stores, an in-memory cache and the polite pacer.
func New(cfg *config.Config, log logger.Logger) *Scraper {
	if log == nil {
		log = logger.GetLogger()
	}

	parser := extract.NewParser(cfg.Browser.BaseURL, log)

	var c cache.Cache = cache.Disabled{}
	if cfg.Cache.Enabled {
		c = cache.NewMemoryCache(cfg.Cache.TTL)
	}

	return &Scraper{
		config:    cfg,
		browsers:  browser.NewManager(cfg.Browser, log),
		sessions:  session.NewManagerFromConfig(cfg, log),
		collector: collector.New(cfg.Collect, parser, log),
		cache:     c,
		pacer:     ratelimit.NewPacer(cfg.Collect.AccountDelay),
		logger:    log.WithField("component", "scraper"),
		now:       time.Now,
	}
}

// WithBrowsers replaces the browser manager
func (s *Scraper) WithBrowsers(b BrowserManager) *Scraper {
	s.browsers = b
	return s
}

// WithSessions replaces the session source
func (s *Scraper) WithSessions(src SessionSource) *Scraper {
	s.sessions = src
	return s
}

// WithCollector replaces the per-account collector
func (s *Scraper) WithCollector(c FeedCollector) *Scraper {
	s.collector = c
	return s
}

// WithCache replaces the result cache
func (s *Scraper) WithCache(c cache.Cache) *Scraper {
	s.cache = c
	return s
}

// WithPacer replaces the dispatch pacer
func (s *Scraper) WithPacer(p ratelimit.Limiter) *Scraper {
	s.pacer = p
	return s
}

// WithClock replaces the clock used to compute the window start
func (s *Scraper) WithClock(now func() time.Time) *Scraper {
	s.now = now
	return s
}

// loadSession loads the bundle on first use. The bundle is shared read-only
// by every task for the Scraper's lifetime.
func (s *Scraper) loadSession() (*session.Bundle, error) {
	s.sessionOnce.Do(func() {
		s.bundle, s.sessionErr = s.sessions.Load()
		if s.bundle == nil {
			s.bundle = &session.Bundle{}
		}
	})
	return s.bundle, s.sessionErr
}

// CollectAll returns the recent items of every account, keyed by the
// lower-cased handle. Accounts that fail map to an empty list; CollectAll
// itself never fails.
//
// The cache is keyed by window only. A fresh cache hit returns the stored
// mapping as is, so its keys are the accounts of the run that filled it,
// which may differ from accounts. On a miss every requested account is
// present in the result.
func (s *Scraper) CollectAll(ctx context.Context, accounts []string, windowHours int) models.CollectionResult {
	accounts = uniqueAccounts(accounts)
	result := models.NewCollectionResult(accounts)

	runID := uuid.NewString()
	log := s.logger.WithFields(map[string]interface{}{
		"run_id":       runID,
		"window_hours": windowHours,
	})

	if windowHours <= 0 {
		log.Error("Window must be a positive number of hours, nothing collected")
		return result
	}

	if cached, ok := s.cache.Get(windowHours); ok {
		logger.LogCacheEvent(log, windowHours, true)
		return cached
	}
	logger.LogCacheEvent(log, windowHours, false)

	bundle, err := s.loadSession()
	if err != nil {
		log.WithError(err).Error("No usable session, every account will be empty")
		return result
	}

	start := time.Now()
	windowStart := s.now().Add(-time.Duration(windowHours) * time.Hour)

	fields := map[string]interface{}{
		"accounts":     len(accounts),
		"window_start": windowStart,
		"workers":      s.config.Collect.Concurrency,
	}
	if p, ok := s.pacer.(interface{ Interval() time.Duration }); ok {
		fields["account_delay"] = p.Interval()
	}
	log.InfoWithFields("Starting collection run", fields)

	handler := func(ctx context.Context, task accountTask) ([]models.ContentItem, error) {
		return s.collectAccount(ctx, log, task, bundle, windowStart)
	}

	tasks := make([]accountTask, len(accounts))
	for i, account := range accounts {
		tasks[i] = accountTask{index: i, account: account}
	}

	results := pool.Run(ctx, s.config.Collect.Concurrency, tasks, s.pacer, pool.Handler[accountTask, []models.ContentItem](handler), log)

	failed := 0
	for _, r := range results {
		account := r.Job.Payload.account
		items := r.Value
		if r.Err != nil {
			failed++
			items = []models.ContentItem{}
		}
		if items == nil {
			items = []models.ContentItem{}
		}
		logger.LogAccountResult(log, account, len(items), r.Duration, r.Err)
		result[account] = items
	}

	logger.LogRunSummary(log, len(accounts), result.TotalItems(), failed, time.Since(start))

	if ctx.Err() != nil {
		log.WithError(ctx.Err()).Warn("Run cancelled, result not cached")
		return result
	}

	s.cache.Put(windowHours, result)
	return result
}

type accountTask struct {
	index   int
	account string
}

// collectAccount runs one account end to end on its own tab
func (s *Scraper) collectAccount(ctx context.Context, log logger.Logger, task accountTask, bundle *session.Bundle, windowStart time.Time) (items []models.ContentItem, err error) {
	logger.LogAccountStart(log, task.account, task.index)

	page, err := s.browsers.Acquire(ctx)
	if err != nil {
		return nil, errs.ForAccount(task.account, err)
	}
	defer s.browsers.Release(page)

	defer func() {
		if r := recover(); r != nil {
			items = nil
			err = errs.ForAccount(task.account, fmt.Errorf("panic: %v", r))
		}
	}()

	if !s.browsers.ApplySession(ctx, page, bundle) {
		return nil, errs.ForAccount(task.account, errs.ErrSessionRejected)
	}

	if err := page.Navigate(ctx, s.browsers.ProfileURL(task.account)); err != nil {
		return nil, errs.ForAccount(task.account, err)
	}

	items, stats, err := s.collector.Collect(ctx, page, task.account, windowStart)
	if err != nil {
		return nil, errs.ForAccount(task.account, err)
	}

	log.DebugWithFields("Account feed collected", map[string]interface{}{
		"account": task.account,
		"passes":  stats.Passes,
		"scrolls": stats.Scrolls,
		"reason":  string(stats.Reason),
	})
	return items, nil
}

// uniqueAccounts normalizes handles and drops blanks and repeats,
// keeping first-seen order.
func uniqueAccounts(accounts []string) []string {
	seen := make(map[string]bool, len(accounts))
	out := make([]string, 0, len(accounts))
	for _, account := range accounts {
		account = models.NormalizeAccount(account)
		if account == "" || seen[account] {
			continue
		}
		seen[account] = true
		out = append(out, account)
	}
	return out
}
