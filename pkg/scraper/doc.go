// Package scraper collects recent posts for a set of accounts.
//
// A Scraper fans accounts out to a small worker pool. Each task owns one
// browser tab for its whole life: it applies the stored session, opens
// the account's profile and hands the page to the incremental collector.
// The tab is released on every path.
//
// CollectAll never returns an error. A failed account shows up as an
// empty list under its key, and the reason is logged. Whole results are
// cached per window size for a short TTL, so repeated calls with the same
// window do not touch the browser.
//
// Usage:
//
//	cfg := config.DefaultConfig()
//	s := scraper.New(cfg, logger.GetLogger())
//	result := s.CollectAll(ctx, []string{"nasa", "esa"}, 24)
//	for _, account := range result.Accounts() {
//	    fmt.Println(account, len(result[account]))
//	}
package scraper
