package security

import (
	"sync"
	"time"
)

type attemptRecord struct {
	failures    int
	windowStart time.Time
	lockedUntil time.Time
}

// LoginThrottle limits failed logins per client IP. Up to maxFailures
// failures are tolerated inside a window; the next attempt locks the IP for
// the lockout duration whatever its credentials. Attempts in flight count as
// failures.
type LoginThrottle struct {
	mu          sync.Mutex
	entries     map[string]*attemptRecord
	maxFailures int
	window      time.Duration
	lockout     time.Duration
	clock       Clock
}

// NewLoginThrottle creates a throttle. A maxFailures of 0 disables it.
func NewLoginThrottle(maxFailures int, window, lockout time.Duration, clock Clock) *LoginThrottle {
	return &LoginThrottle{
		entries:     make(map[string]*attemptRecord),
		maxFailures: maxFailures,
		window:      window,
		lockout:     lockout,
		clock:       clock,
	}
}

// Acquire reserves a login attempt for ip before credentials are checked.
// The attempt counts as a failure until Release or Reset says otherwise, so
// concurrent guesses cannot slip past the limit. It reports whether ip is
// locked and for how long; an IP that already used up its attempts in the
// current window becomes locked here.
func (t *LoginThrottle) Acquire(ip string) (bool, time.Duration) {
	if t.maxFailures <= 0 {
		return false, 0
	}
	now := t.clock.now()

	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[ip]
	if ok {
		if now.Before(e.lockedUntil) {
			return true, e.lockedUntil.Sub(now)
		}
		if !e.lockedUntil.IsZero() || now.Sub(e.windowStart) >= t.window {
			// lock served or window elapsed: start over
			ok = false
		}
	}
	if !ok {
		e = &attemptRecord{windowStart: now}
		t.entries[ip] = e
	}

	if e.failures >= t.maxFailures {
		e.lockedUntil = now.Add(t.lockout)
		return true, t.lockout
	}
	e.failures++
	return false, 0
}

// Release gives back an attempt reserved by Acquire that did not end in
// wrong credentials (a malformed request or a server error).
func (t *LoginThrottle) Release(ip string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if e, ok := t.entries[ip]; ok && e.failures > 0 && e.lockedUntil.IsZero() {
		e.failures--
	}
}

// Reset clears the record of ip after a successful login.
func (t *LoginThrottle) Reset(ip string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, ip)
}

// Sweep drops records whose window and lock have both passed.
func (t *LoginThrottle) Sweep() int {
	now := t.clock.now()

	t.mu.Lock()
	defer t.mu.Unlock()

	removed := 0
	for ip, e := range t.entries {
		if now.Sub(e.windowStart) >= t.window && !now.Before(e.lockedUntil) {
			delete(t.entries, ip)
			removed++
		}
	}
	return removed
}

// Len reports the number of tracked IPs.
func (t *LoginThrottle) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}
