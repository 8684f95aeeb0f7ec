package reservation

import (
	"sync"
	"time"
)

// holdTimer mirrors the server-side hold TTL as a client-side courtesy
// countdown. The server stays authoritative; when this fires the coordinator
// releases the selection and the next reconcile reflects whatever the server
// already decided.
//
// The timer is armed only when held-set membership changes, never resynced on
// every poll, so the visible countdown does not flicker when the server
// refreshes remainingSeconds mid-hold.
type holdTimer struct {
	mu       sync.Mutex
	deadline time.Time // zero while idle
	onExpire func()

	ticker   *time.Ticker
	done     chan struct{}
	stopOnce sync.Once
}

func newHoldTimer(onExpire func()) *holdTimer {
	t := &holdTimer{
		onExpire: onExpire,
		ticker:   time.NewTicker(time.Second),
		done:     make(chan struct{}),
	}
	go t.run()
	return t
}

func (t *holdTimer) run() {
	for {
		select {
		case <-t.done:
			return
		case now := <-t.ticker.C:
			t.tick(now)
		}
	}
}

// Arm starts the countdown from the given number of seconds, floored at
// zero. An already-expired hold fires on the next tick.
func (t *holdTimer) Arm(seconds int) {
	if seconds < 0 {
		seconds = 0
	}
	t.mu.Lock()
	t.deadline = time.Now().Add(time.Duration(seconds) * time.Second)
	t.mu.Unlock()
}

// Disarm idles the timer. Safe whether or not it was armed.
func (t *holdTimer) Disarm() {
	t.mu.Lock()
	t.deadline = time.Time{}
	t.mu.Unlock()
}

// Remaining returns whole seconds until expiry, 0 when idle or expired.
func (t *holdTimer) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.deadline.IsZero() {
		return 0
	}
	left := int(time.Until(t.deadline).Seconds())
	if left < 0 {
		return 0
	}
	return left
}

// tick fires onExpire at most once per armed deadline. Once fired the
// transition is forced; re-arming requires a new membership change.
func (t *holdTimer) tick(now time.Time) {
	t.mu.Lock()
	fire := !t.deadline.IsZero() && !now.Before(t.deadline)
	if fire {
		t.deadline = time.Time{}
	}
	t.mu.Unlock()
	if fire {
		t.onExpire()
	}
}

// Stop releases the ticking goroutine. Safe to call repeatedly and from
// teardown paths that never armed the timer.
func (t *holdTimer) Stop() {
	t.stopOnce.Do(func() {
		t.ticker.Stop()
		close(t.done)
	})
}
