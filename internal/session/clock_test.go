package session

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestTurnClockFiresOnce(t *testing.T) {
	c := NewTurnClock()
	fired := make(chan uint64, 4)
	c.Start(10*time.Millisecond, func(gen uint64) { fired <- gen })

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatalf("expiry never fired")
	}
	select {
	case <-fired:
		t.Fatalf("expiry fired more than once")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestTurnClockResetPreemptsPendingExpiry(t *testing.T) {
	c := NewTurnClock()
	var fires int32
	var lastGen atomic.Uint64
	done := make(chan struct{}, 1)
	c.Start(30*time.Millisecond, func(gen uint64) {
		atomic.AddInt32(&fires, 1)
		lastGen.Store(gen)
		done <- struct{}{}
	})

	// Reset well before the first deadline; only the second cycle may fire.
	time.Sleep(5 * time.Millisecond)
	_, gen2 := c.Reset(30 * time.Millisecond)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("reset countdown never fired")
	}
	if got := atomic.LoadInt32(&fires); got != 1 {
		t.Fatalf("fires = %d, want 1", got)
	}
	if lastGen.Load() != gen2 {
		t.Fatalf("fired gen = %d, want %d (no stale expiry)", lastGen.Load(), gen2)
	}
}

func TestTurnClockCancelIsIdempotent(t *testing.T) {
	c := NewTurnClock()
	fired := make(chan uint64, 1)
	c.Start(20*time.Millisecond, func(gen uint64) { fired <- gen })

	c.Cancel()
	c.Cancel() // no panic, no error

	select {
	case <-fired:
		t.Fatalf("cancelled clock must not fire")
	case <-time.After(80 * time.Millisecond):
	}

	// Arming after cancel is a no-op.
	if deadline, gen := c.Start(time.Millisecond, func(uint64) {}); !deadline.IsZero() || gen != 0 {
		t.Fatalf("start after cancel armed the clock")
	}
}

func TestTurnClockGenerationAdvances(t *testing.T) {
	c := NewTurnClock()
	_, g1 := c.Start(time.Hour, func(uint64) {})
	_, g2 := c.Reset(time.Hour)
	if g2 <= g1 {
		t.Fatalf("generations %d -> %d, want strictly increasing", g1, g2)
	}
	if c.Generation() != g2 {
		t.Fatalf("Generation() = %d, want %d", c.Generation(), g2)
	}
	c.Cancel()
}
