package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"feedscraper/pkg/config"
	errs "feedscraper/pkg/errors"
	"feedscraper/pkg/session"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// Handle is a chromedp-backed Page with its own browser process
type Handle struct {
	ctx         context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
	loadTimeout time.Duration
	closeOnce   sync.Once
}

// allocatorOptions builds the exec allocator flags for a headless,
// fixed-viewport browser.
func allocatorOptions(cfg config.BrowserConfig) []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(cfg.ViewportWidth, cfg.ViewportHeight),
	)
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}
	return opts
}

// launch starts a new browser process and opens one tab in it. The
// allocator is derived from ctx so cancelling ctx kills the process.
func launch(ctx context.Context, cfg config.BrowserConfig) (*Handle, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocatorOptions(cfg)...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)

	// The first Run allocates the browser, so it must use the tab context
	// itself rather than a derived timeout context.
	err := chromedp.Run(tabCtx,
		chromedp.EmulateViewport(int64(cfg.ViewportWidth), int64(cfg.ViewportHeight)),
	)
	if err != nil {
		cancelTab()
		cancelAlloc()
		return nil, errs.Wrap(errs.ErrorTypeBrowserLaunch, err, "start browser")
	}

	return &Handle{
		ctx:         tabCtx,
		cancelTab:   cancelTab,
		cancelAlloc: cancelAlloc,
		loadTimeout: cfg.PageLoadTimeout,
	}, nil
}

// run executes actions on the tab, bounded by timeout and by ctx
func (h *Handle) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var runCtx context.Context
	var cancel context.CancelFunc
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(h.ctx, timeout)
	} else {
		runCtx, cancel = context.WithCancel(h.ctx)
	}
	defer cancel()

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

func (h *Handle) Navigate(ctx context.Context, url string) error {
	err := h.run(ctx, h.loadTimeout, chromedp.Navigate(url))
	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		return errs.Wrap(errs.ErrorTypePageLoadTimeout, err, "navigate %s", url)
	}
	if err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

func (h *Handle) Reload(ctx context.Context) error {
	err := h.run(ctx, h.loadTimeout, chromedp.Reload())
	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		return errs.Wrap(errs.ErrorTypePageLoadTimeout, err, "reload")
	}
	return err
}

func (h *Handle) SetCookies(ctx context.Context, cookies []session.Cookie) error {
	return h.run(ctx, h.loadTimeout, chromedp.ActionFunc(func(ctx context.Context) error {
		for _, c := range cookies {
			if err := cookieParams(c).Do(ctx); err != nil {
				return fmt.Errorf("set cookie %s: %w", c.Name, err)
			}
		}
		return nil
	}))
}

// cookieParams builds the CDP call installing c
func cookieParams(c session.Cookie) *network.SetCookieParams {
	params := network.SetCookie(c.Name, c.Value).
		WithDomain(c.Domain).
		WithPath(c.Path).
		WithSecure(c.Secure).
		WithHTTPOnly(c.HTTPOnly)
	if c.Expiry > 0 {
		expires := cdp.TimeSinceEpoch(time.Unix(c.Expiry, 0))
		params = params.WithExpires(&expires)
	}
	if sameSite, ok := cookieSameSite(c.SameSite); ok {
		params = params.WithSameSite(sameSite)
	}
	return params
}

// cookieSameSite maps exporter spellings ("Lax", "strict",
// "no_restriction") onto CDP values. Unknown or "unspecified" values
// leave the attribute unset.
func cookieSameSite(value string) (network.CookieSameSite, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "strict":
		return network.CookieSameSiteStrict, true
	case "lax":
		return network.CookieSameSiteLax, true
	case "none", "no_restriction":
		return network.CookieSameSiteNone, true
	default:
		return "", false
	}
}

func (h *Handle) WaitFor(ctx context.Context, selector string, timeout time.Duration) (bool, error) {
	err := h.run(ctx, timeout, chromedp.WaitReady(selector, chromedp.ByQuery))
	switch {
	case err == nil:
		return true, nil
	case ctx.Err() != nil:
		return false, ctx.Err()
	case errors.Is(err, context.DeadlineExceeded):
		return false, nil
	default:
		return false, err
	}
}

func (h *Handle) ScrollBy(ctx context.Context, fraction float64) error {
	script := fmt.Sprintf("window.scrollBy(0, Math.floor(window.innerHeight * %g))", fraction)
	return h.run(ctx, h.loadTimeout, chromedp.Evaluate(script, nil))
}

func (h *Handle) Snapshot(ctx context.Context) (string, error) {
	var html string
	if err := h.run(ctx, h.loadTimeout, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("snapshot: %w", err)
	}
	return html, nil
}

// Close cancels the tab and allocator contexts, which closes the tab and
// kills the browser process.
func (h *Handle) Close() {
	h.closeOnce.Do(func() {
		h.cancelTab()
		h.cancelAlloc()
	})
}

var _ Page = (*Handle)(nil)
