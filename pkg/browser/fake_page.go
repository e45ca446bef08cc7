package browser

import (
	"context"
	"sync"
	"time"

	"feedscraper/pkg/session"
)

// FakePage implements Page in memory for tests. Snapshots are served in
// order; the last one repeats once the list is exhausted.
type FakePage struct {
	mu sync.Mutex

	Snapshots []string
	// Present lists selectors WaitFor reports as found
	Present map[string]bool

	NavigateError error
	SetCookieErr  error
	SnapshotError error

	Visited       []string
	Cookies       []session.Cookie
	Scrolls       int
	Reloads       int
	SnapshotCalls int
	Closed        int
}

// NewFakePage creates a fake page on which the given selectors are present
func NewFakePage(present ...string) *FakePage {
	p := &FakePage{Present: map[string]bool{}}
	for _, sel := range present {
		p.Present[sel] = true
	}
	return p
}

func (p *FakePage) Navigate(ctx context.Context, url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.NavigateError != nil {
		return p.NavigateError
	}
	p.Visited = append(p.Visited, url)
	return nil
}

func (p *FakePage) Reload(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Reloads++
	return nil
}

func (p *FakePage) SetCookies(ctx context.Context, cookies []session.Cookie) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.SetCookieErr != nil {
		return p.SetCookieErr
	}
	p.Cookies = append(p.Cookies, cookies...)
	return nil
}

func (p *FakePage) WaitFor(ctx context.Context, selector string, timeout time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Present[selector], nil
}

func (p *FakePage) ScrollBy(ctx context.Context, fraction float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Scrolls++
	return nil
}

func (p *FakePage) Snapshot(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.SnapshotError != nil {
		return "", p.SnapshotError
	}
	if len(p.Snapshots) == 0 {
		return "<html><body></body></html>", nil
	}
	i := p.SnapshotCalls
	if i >= len(p.Snapshots) {
		i = len(p.Snapshots) - 1
	}
	p.SnapshotCalls++
	return p.Snapshots[i], nil
}

func (p *FakePage) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Closed++
}

var _ Page = (*FakePage)(nil)
