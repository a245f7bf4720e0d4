package llm

import (
	"context"
	"sync"
	"time"
)

// Limiter spaces request starts at least one interval apart across all
// goroutines sharing it. Each caller reserves the next free slot under the
// lock and sleeps outside it, so waiting callers do not block each other's
// reservations.
type Limiter struct {
	mu       sync.Mutex
	interval time.Duration
	next     time.Time

	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

// NewLimiter returns a limiter allowing rpm request starts per minute. A
// non-positive rpm disables limiting.
func NewLimiter(rpm int) *Limiter {
	l := &Limiter{now: time.Now, sleep: sleepContext}
	if rpm > 0 {
		l.interval = time.Minute / time.Duration(rpm)
	}
	return l
}

// Interval is the minimum spacing between request starts.
func (l *Limiter) Interval() time.Duration {
	if l == nil {
		return 0
	}
	return l.interval
}

// Wait blocks until the caller's reserved slot arrives or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if l == nil || l.interval <= 0 {
		return nil
	}
	l.mu.Lock()
	now := l.now()
	slot := now
	if l.next.After(now) {
		slot = l.next
	}
	l.next = slot.Add(l.interval)
	l.mu.Unlock()

	if wait := slot.Sub(now); wait > 0 {
		return l.sleep(ctx, wait)
	}
	return nil
}
