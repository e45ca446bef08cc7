package browser

import (
	"context"
	"time"

	"feedscraper/pkg/config"
	errs "feedscraper/pkg/errors"
	"feedscraper/pkg/logger"
	"feedscraper/pkg/retry"
	"feedscraper/pkg/session"
)

// Launcher starts one isolated browser tab
type Launcher func(ctx context.Context) (Page, error)

// Manager owns browser lifecycles: acquiring a fresh tab per collection
// task, applying the stored session to it, and releasing it.
type Manager struct {
	cfg      config.BrowserConfig
	log      logger.Logger
	launcher Launcher
	backoff  retry.BackoffStrategy
}

// NewManager creates a manager that launches headless Chrome via chromedp
func NewManager(cfg config.BrowserConfig, log logger.Logger) *Manager {
	if log == nil {
		log = logger.NewNopLogger()
	}
	m := &Manager{
		cfg:     cfg,
		log:     log.WithField("component", "browser"),
		backoff: retry.DefaultExponentialBackoff(),
	}
	m.launcher = func(ctx context.Context) (Page, error) {
		h, err := launch(ctx, m.cfg)
		if err != nil {
			return nil, err
		}
		return h, nil
	}
	return m
}

// WithLauncher replaces how tabs are started
func (m *Manager) WithLauncher(l Launcher) *Manager {
	m.launcher = l
	return m
}

// WithBackoff replaces the launch retry backoff
func (m *Manager) WithBackoff(b retry.BackoffStrategy) *Manager {
	m.backoff = b
	return m
}

// Acquire launches an isolated browser tab, retrying launch failures with
// backoff.
func (m *Manager) Acquire(ctx context.Context) (Page, error) {
	attempts := m.cfg.LaunchRetries
	if attempts < 1 {
		attempts = 1
	}

	start := time.Now()
	page, err := retry.DoWithResult(func() (Page, error) {
		return m.launcher(ctx)
	}, &retry.Config{
		MaxAttempts: attempts,
		Backoff:     m.backoff,
		RetryIf:     retry.DefaultRetryIf,
		Context:     ctx,
		Logger:      m.log,
	})
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeBrowserLaunch, err, "acquire browser")
	}

	m.log.DebugWithFields("Browser acquired", map[string]interface{}{
		"duration": time.Since(start),
	})
	return page, nil
}

// ApplySession loads the site root, installs the bundle's cookies, reloads
// and waits for the signed-in marker. It returns false, never an error,
// when the session is empty or the marker does not appear in time.
func (m *Manager) ApplySession(ctx context.Context, page Page, bundle *session.Bundle) bool {
	if bundle.Empty() {
		m.log.Debug("No session cookies to apply")
		return false
	}

	log := m.log.WithField("cookies", len(bundle.Cookies))

	if err := page.Navigate(ctx, m.cfg.BaseURL); err != nil {
		log.WithError(err).Warn("Failed to load site root before applying session")
		return false
	}
	if err := page.SetCookies(ctx, bundle.Normalized()); err != nil {
		log.WithError(err).Warn("Failed to install session cookies")
		return false
	}
	if err := page.Reload(ctx); err != nil {
		log.WithError(err).Warn("Failed to reload after applying session")
		return false
	}

	ok, err := page.WaitFor(ctx, AuthMarker, m.cfg.AuthWait)
	if err != nil {
		log.WithError(err).Warn("Failed waiting for signed-in marker")
		return false
	}
	if !ok {
		log.WithError(errs.ErrSessionRejected).Warn("Session rejected, signed-in marker never appeared")
		return false
	}
	return true
}

// Release tears the tab down. It is safe with a nil page.
func (m *Manager) Release(page Page) {
	if page == nil {
		return
	}
	page.Close()
}

// ProfileURL returns the profile page for an account
func (m *Manager) ProfileURL(account string) string {
	return ProfileURL(m.cfg.BaseURL, account)
}

// ProfileURL joins the site root and an account handle
func ProfileURL(baseURL, account string) string {
	for len(baseURL) > 0 && baseURL[len(baseURL)-1] == '/' {
		baseURL = baseURL[:len(baseURL)-1]
	}
	return baseURL + "/" + account
}
