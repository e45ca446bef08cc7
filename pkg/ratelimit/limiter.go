package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter defines the interface for pacing work
type Limiter interface {
	// Allow reports whether an event may happen now, consuming a slot if so
	Allow() bool
	// Wait blocks until the next slot or until ctx is done
	Wait(ctx context.Context) error
	// Reset restores the initial state so the next Wait returns immediately
	Reset()
}

// Pacer spaces events at least interval apart. The first event is never
// delayed. A zero interval disables pacing.
type Pacer struct {
	mu       sync.Mutex
	interval time.Duration
	limiter  *rate.Limiter
}

// NewPacer creates a pacer with the given minimum spacing between events
func NewPacer(interval time.Duration) *Pacer {
	p := &Pacer{interval: interval}
	p.limiter = p.newLimiter()
	return p
}

func (p *Pacer) newLimiter() *rate.Limiter {
	if p.interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(p.interval), 1)
}

// Interval returns the configured spacing
func (p *Pacer) Interval() time.Duration {
	return p.interval
}

func (p *Pacer) current() *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.limiter
}

// Allow checks if an event can happen now
func (p *Pacer) Allow() bool {
	return p.current().Allow()
}

// Wait blocks until the next event may happen
func (p *Pacer) Wait(ctx context.Context) error {
	return p.current().Wait(ctx)
}

// Reset forgets previous events
func (p *Pacer) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.limiter = p.newLimiter()
}
