// Package session hosts the per-context game runtime: a single-goroutine
// actor that serializes every event touching one session, the turn clock
// driving move deadlines, and the registry that keys live sessions by chat
// context.
package session

import (
	"sync"
	"time"
)

// TurnClock is a restartable per-session countdown. Expiry callbacks carry a
// generation number so the session loop can discard an expiry that lost the
// race against a move which already reset the clock.
type TurnClock struct {
	mu        sync.Mutex
	timer     *time.Timer
	gen       uint64
	onExpire  func(gen uint64)
	cancelled bool
}

// NewTurnClock returns an idle clock.
func NewTurnClock() *TurnClock {
	return &TurnClock{}
}

// Start begins a countdown, replacing any pending one. onExpire fires at most
// once per Start/Reset cycle, with the generation current at arming time.
// Returns the deadline and the generation, or zeros if the clock was cancelled.
func (c *TurnClock) Start(d time.Duration, onExpire func(gen uint64)) (time.Time, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancelled {
		return time.Time{}, 0
	}
	c.onExpire = onExpire
	return c.armLocked(d)
}

// Reset cancels any pending expiry and starts a fresh countdown with the
// callback supplied to Start. Used after every accepted move.
func (c *TurnClock) Reset(d time.Duration) (time.Time, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancelled || c.onExpire == nil {
		return time.Time{}, 0
	}
	return c.armLocked(d)
}

func (c *TurnClock) armLocked(d time.Duration) (time.Time, uint64) {
	if c.timer != nil {
		c.timer.Stop()
	}
	c.gen++
	gen := c.gen
	c.timer = time.AfterFunc(d, func() {
		c.fire(gen)
	})
	return time.Now().Add(d), gen
}

func (c *TurnClock) fire(gen uint64) {
	c.mu.Lock()
	if c.cancelled || gen != c.gen {
		c.mu.Unlock()
		return
	}
	fn := c.onExpire
	c.mu.Unlock()
	fn(gen)
}

// Generation returns the generation of the most recent arming. An expiry
// whose generation differs is stale.
func (c *TurnClock) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// Cancel stops the clock permanently. Idempotent; safe after expiry.
func (c *TurnClock) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelled = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
