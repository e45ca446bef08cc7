package browser

import (
	"context"
	"time"

	"feedscraper/pkg/session"
)

// Page is one isolated browser tab. Each Page is owned by exactly one
// collection task and must be closed through Manager.Release.
type Page interface {
	// Navigate loads url and waits for the load event
	Navigate(ctx context.Context, url string) error
	// Reload reloads the current document
	Reload(ctx context.Context) error
	// SetCookies installs cookies into the browser's cookie jar
	SetCookies(ctx context.Context, cookies []session.Cookie) error
	// WaitFor reports whether selector matched within timeout. A timeout
	// is not an error.
	WaitFor(ctx context.Context, selector string, timeout time.Duration) (bool, error)
	// ScrollBy scrolls down by fraction of the viewport height
	ScrollBy(ctx context.Context, fraction float64) error
	// Snapshot returns the rendered document as HTML
	Snapshot(ctx context.Context) (string, error)
	// Close tears the tab and its browser process down. Safe to call twice.
	Close()
}
