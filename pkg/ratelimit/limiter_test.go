package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestPacerFirstEventImmediate(t *testing.T) {
	p := NewPacer(time.Hour)

	start := time.Now()
	if err := p.Wait(context.Background()); err != nil {
		t.Fatalf("Wait returned error: %v", err)
	}
	if time.Since(start) > 100*time.Millisecond {
		t.Error("Expected first event to pass without delay")
	}

	if p.Allow() {
		t.Error("Expected second event to be paced")
	}
}

func TestPacerInterval(t *testing.T) {
	if got := NewPacer(time.Second).Interval(); got != time.Second {
		t.Errorf("Expected interval 1s, got %v", got)
	}
	if got := NewPacer(0).Interval(); got != 0 {
		t.Errorf("Expected zero interval, got %v", got)
	}
}

func TestPacerSpacing(t *testing.T) {
	interval := 50 * time.Millisecond
	p := NewPacer(interval)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := p.Wait(ctx); err != nil {
			t.Fatalf("Wait returned error: %v", err)
		}
	}

	// Three events need two intervals between them
	if elapsed := time.Since(start); elapsed < 2*interval-10*time.Millisecond {
		t.Errorf("Expected at least %v between three events, got %v", 2*interval, elapsed)
	}
}

func TestPacerZeroInterval(t *testing.T) {
	p := NewPacer(0)
	for i := 0; i < 100; i++ {
		if !p.Allow() {
			t.Fatalf("Expected event %d to be allowed with pacing disabled", i)
		}
	}
}

func TestPacerWaitCancelled(t *testing.T) {
	p := NewPacer(time.Hour)
	_ = p.Allow()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := p.Wait(ctx); err == nil {
		t.Error("Expected error when context is cancelled")
	}
}

func TestPacerReset(t *testing.T) {
	p := NewPacer(time.Hour)
	_ = p.Allow()
	if p.Allow() {
		t.Fatal("Expected event to be paced before reset")
	}

	p.Reset()
	if !p.Allow() {
		t.Error("Expected event to be allowed after reset")
	}
}

var _ Limiter = (*Pacer)(nil)
