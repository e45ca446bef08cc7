package scraper

import (
	"context"
	"time"

	"feedscraper/pkg/browser"
	"feedscraper/pkg/collector"
	"feedscraper/pkg/models"
	"feedscraper/pkg/session"
)

// BrowserManager acquires, authenticates and releases browser tabs
type BrowserManager interface {
	Acquire(ctx context.Context) (browser.Page, error)
	ApplySession(ctx context.Context, page browser.Page, bundle *session.Bundle) bool
	Release(page browser.Page)
	ProfileURL(account string) string
}

// SessionSource supplies the persisted session bundle
type SessionSource interface {
	Load() (*session.Bundle, error)
}

// FeedCollector gathers one account's in-window items from an open page
type FeedCollector interface {
	Collect(ctx context.Context, page browser.Page, account string, windowStart time.Time) ([]models.ContentItem, collector.Stats, error)
}
